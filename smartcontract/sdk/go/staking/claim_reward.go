package staking

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ClaimRewardInstructionConfig names the accounts of a reward claim.
type ClaimRewardInstructionConfig struct {
	Pool        solana.PublicKey
	Authority   solana.PublicKey
	Owner       solana.PublicKey
	UserTokenY  solana.PublicKey
	RewardVault solana.PublicKey
	Member      solana.PublicKey
}

func (c *ClaimRewardInstructionConfig) Validate() error {
	return requireKeys(
		namedKey{"pool", c.Pool},
		namedKey{"authority", c.Authority},
		namedKey{"owner", c.Owner},
		namedKey{"user token Y", c.UserTokenY},
		namedKey{"reward vault", c.RewardVault},
		namedKey{"member", c.Member},
	)
}

// BuildClaimRewardInstruction pays the member's accrued reward into its token Y account.
func BuildClaimRewardInstruction(program Program, config ClaimRewardInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	accounts := []*solana.AccountMeta{
		writable(config.Pool),
		readonly(config.Authority),
		signer(config.Owner),
		writable(config.UserTokenY),
		writable(config.RewardVault),
		writable(config.Member),
		readonly(solana.TokenProgramID),
		readonly(solana.SysVarClockPubkey),
	}
	return buildInstruction(program, OpClaimReward, accounts, nil)
}
