package staking

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// InitPoolInstructionConfig names the accounts of a new pool.
type InitPoolInstructionConfig struct {
	Pool        solana.PublicKey
	Authority   solana.PublicKey
	StakeVault  solana.PublicKey
	RewardVault solana.PublicKey
	Admin       solana.PublicKey
	Nonce       uint8
}

func (c *InitPoolInstructionConfig) Validate() error {
	return requireKeys(
		namedKey{"pool", c.Pool},
		namedKey{"authority", c.Authority},
		namedKey{"stake vault", c.StakeVault},
		namedKey{"reward vault", c.RewardVault},
		namedKey{"admin", c.Admin},
	)
}

// BuildInitPoolInstruction initializes an allocated pool account.
func BuildInitPoolInstruction(program Program, config InitPoolInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	accounts := []*solana.AccountMeta{
		writable(config.Pool),
		readonly(config.Authority),
		readonly(config.StakeVault),
		readonly(config.RewardVault),
		readonly(config.Admin),
		readonly(solana.SysVarClockPubkey),
	}

	return buildInstruction(program, OpInitPool, accounts, func(opcode uint8) any {
		return struct {
			Instruction uint8
			Nonce       uint8
		}{opcode, config.Nonce}
	})
}
