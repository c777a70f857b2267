package staking

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/solstake/smartcontract/sdk/go/layout"
)

// DistributeRewardInstructionConfig describes a deposit of Amount raw token Y units as a new snapshot.
type DistributeRewardInstructionConfig struct {
	Pool        solana.PublicKey
	Authority   solana.PublicKey
	Admin       solana.PublicKey
	AdminTokenY solana.PublicKey
	StakeVault  solana.PublicKey
	RewardVault solana.PublicKey
	Amount      *big.Int
}

func (c *DistributeRewardInstructionConfig) Validate() error {
	if err := requireKeys(
		namedKey{"pool", c.Pool},
		namedKey{"authority", c.Authority},
		namedKey{"admin", c.Admin},
		namedKey{"admin token Y", c.AdminTokenY},
		namedKey{"stake vault", c.StakeVault},
		namedKey{"reward vault", c.RewardVault},
	); err != nil {
		return err
	}
	if c.Amount == nil {
		return fmt.Errorf("amount is required")
	}
	return nil
}

// BuildDistributeRewardInstruction moves Amount from the admin into the reward vault.
func BuildDistributeRewardInstruction(program Program, config DistributeRewardInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	amount, err := layout.BigToU64(config.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to encode amount: %w", err)
	}

	accounts := []*solana.AccountMeta{
		writable(config.Pool),
		readonly(config.Authority),
		writableSigner(config.Admin),
		writable(config.AdminTokenY),
		readonly(config.StakeVault),
		writable(config.RewardVault),
		readonly(solana.TokenProgramID),
		readonly(solana.SysVarClockPubkey),
	}
	return buildInstruction(program, OpDistributeReward, accounts, func(opcode uint8) any {
		return amountArgs{Instruction: opcode, Amount: amount}
	})
}
