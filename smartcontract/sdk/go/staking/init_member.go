package staking

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// InitMemberInstructionConfig names the accounts used to create a member record.
type InitMemberInstructionConfig struct {
	Owner  solana.PublicKey
	Member solana.PublicKey
	Pool   solana.PublicKey
}

func (c *InitMemberInstructionConfig) Validate() error {
	return requireKeys(
		namedKey{"owner", c.Owner},
		namedKey{"member", c.Member},
		namedKey{"pool", c.Pool},
	)
}

// BuildInitMemberAccountInstruction allocates the member account. It must
// precede BuildInitMemberDataInstruction in the same transaction.
func BuildInitMemberAccountInstruction(program Program, config InitMemberInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	accounts := []*solana.AccountMeta{
		readonly(solana.SystemProgramID),
		readonly(solana.SysVarRentPubkey),
		writableSigner(config.Owner),
		writable(config.Member),
		readonly(config.Pool),
	}
	return buildInstruction(program, OpInitMemberAccount, accounts, nil)
}

// BuildInitMemberDataInstruction initializes the fields of an allocated member account.
func BuildInitMemberDataInstruction(program Program, config InitMemberInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	accounts := []*solana.AccountMeta{
		writable(config.Member),
		readonly(config.Pool),
		readonly(config.Owner),
		readonly(solana.SysVarRentPubkey),
	}
	return buildInstruction(program, OpInitMemberData, accounts, nil)
}
