package staking

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/solstake/smartcontract/sdk/go/layout"
)

// StakeInstructionConfig describes a stake or unstake of Amount raw token X units.
type StakeInstructionConfig struct {
	Pool        solana.PublicKey
	Authority   solana.PublicKey
	Owner       solana.PublicKey
	UserTokenX  solana.PublicKey
	UserTokenY  solana.PublicKey
	StakeVault  solana.PublicKey
	RewardVault solana.PublicKey
	Member      solana.PublicKey
	Amount      *big.Int
}

func (c *StakeInstructionConfig) Validate() error {
	if err := requireKeys(
		namedKey{"pool", c.Pool},
		namedKey{"authority", c.Authority},
		namedKey{"owner", c.Owner},
		namedKey{"user token X", c.UserTokenX},
		namedKey{"user token Y", c.UserTokenY},
		namedKey{"stake vault", c.StakeVault},
		namedKey{"reward vault", c.RewardVault},
		namedKey{"member", c.Member},
	); err != nil {
		return err
	}
	if c.Amount == nil {
		return fmt.Errorf("amount is required")
	}
	return nil
}

func (c *StakeInstructionConfig) accounts() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		writable(c.Pool),
		readonly(c.Authority),
		signer(c.Owner),
		writable(c.UserTokenX),
		writable(c.UserTokenY),
		writable(c.StakeVault),
		writable(c.RewardVault),
		writable(c.Member),
		readonly(solana.TokenProgramID),
		readonly(solana.SysVarClockPubkey),
	}
}

// BuildStakeInstruction moves Amount from UserTokenX into the stake vault.
func BuildStakeInstruction(program Program, config StakeInstructionConfig) (solana.Instruction, error) {
	return buildAmountInstruction(program, OpStake, config)
}

// BuildUnstakeInstruction returns Amount from the stake vault to UserTokenX. Only v1 pools support it.
func BuildUnstakeInstruction(program Program, config StakeInstructionConfig) (solana.Instruction, error) {
	return buildAmountInstruction(program, OpUnstake, config)
}

func buildAmountInstruction(program Program, op Operation, config StakeInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	amount, err := layout.BigToU64(config.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to encode amount: %w", err)
	}
	return buildInstruction(program, op, config.accounts(), func(opcode uint8) any {
		return amountArgs{Instruction: opcode, Amount: amount}
	})
}
