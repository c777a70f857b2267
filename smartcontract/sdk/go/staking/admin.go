package staking

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// TransferPoolAdminInstructionConfig hands the pool admin role to NewAdmin.
type TransferPoolAdminInstructionConfig struct {
	Pool     solana.PublicKey
	Admin    solana.PublicKey
	NewAdmin solana.PublicKey
}

func (c *TransferPoolAdminInstructionConfig) Validate() error {
	return requireKeys(
		namedKey{"pool", c.Pool},
		namedKey{"admin", c.Admin},
		namedKey{"new admin", c.NewAdmin},
	)
}

// BuildTransferPoolAdminInstruction must be signed by the current admin.
func BuildTransferPoolAdminInstruction(program Program, config TransferPoolAdminInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	accounts := []*solana.AccountMeta{
		writable(config.Pool),
		writableSigner(config.Admin),
		writable(config.NewAdmin),
	}
	return buildInstruction(program, OpTransferPoolAdmin, accounts, nil)
}

// TransferRootAdminInstructionConfig hands the v2 root admin role to NewRootAdmin.
type TransferRootAdminInstructionConfig struct {
	Pool         solana.PublicKey
	RootAdmin    solana.PublicKey
	NewRootAdmin solana.PublicKey
	Authority    solana.PublicKey
}

func (c *TransferRootAdminInstructionConfig) Validate() error {
	return requireKeys(
		namedKey{"pool", c.Pool},
		namedKey{"root admin", c.RootAdmin},
		namedKey{"new root admin", c.NewRootAdmin},
		namedKey{"authority", c.Authority},
	)
}

// BuildTransferRootAdminInstruction must be signed by the current root admin.
func BuildTransferRootAdminInstruction(program Program, config TransferRootAdminInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	accounts := []*solana.AccountMeta{
		writable(config.Pool),
		writableSigner(config.RootAdmin),
		writable(config.NewRootAdmin),
		readonly(config.Authority),
	}
	return buildInstruction(program, OpTransferRootAdmin, accounts, nil)
}

// UpdateFeeInstructionConfig sets the v2 pool fee.
type UpdateFeeInstructionConfig struct {
	Pool      solana.PublicKey
	Admin     solana.PublicKey
	Authority solana.PublicKey
	Fee       uint64
}

func (c *UpdateFeeInstructionConfig) Validate() error {
	return requireKeys(
		namedKey{"pool", c.Pool},
		namedKey{"admin", c.Admin},
		namedKey{"authority", c.Authority},
	)
}

// BuildUpdateFeeInstruction encodes the new fee after the opcode.
func BuildUpdateFeeInstruction(program Program, config UpdateFeeInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	accounts := []*solana.AccountMeta{
		writable(config.Pool),
		writableSigner(config.Admin),
		readonly(config.Authority),
	}
	return buildInstruction(program, OpUpdateFee, accounts, func(opcode uint8) any {
		return amountArgs{Instruction: opcode, Amount: config.Fee}
	})
}

// UpdatePenaltyInstructionConfig sets the v2 early unstake penalty.
type UpdatePenaltyInstructionConfig struct {
	Pool          solana.PublicKey
	Admin         solana.PublicKey
	Authority     solana.PublicKey
	PenaltyFee    uint32
	MinStakeHours uint32
}

func (c *UpdatePenaltyInstructionConfig) Validate() error {
	return requireKeys(
		namedKey{"pool", c.Pool},
		namedKey{"admin", c.Admin},
		namedKey{"authority", c.Authority},
	)
}

// BuildUpdatePenaltyInstruction encodes the penalty fee and minimum stake hours after the opcode.
func BuildUpdatePenaltyInstruction(program Program, config UpdatePenaltyInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	accounts := []*solana.AccountMeta{
		writable(config.Pool),
		writableSigner(config.Admin),
		readonly(config.Authority),
	}
	return buildInstruction(program, OpUpdatePenalty, accounts, func(opcode uint8) any {
		return struct {
			Instruction   uint8
			PenaltyFee    uint32
			MinStakeHours uint32
		}{opcode, config.PenaltyFee, config.MinStakeHours}
	})
}

// WithdrawFeeInstructionConfig names the accounts of a v2 fee withdrawal.
type WithdrawFeeInstructionConfig struct {
	Pool        solana.PublicKey
	Authority   solana.PublicKey
	Admin       solana.PublicKey
	StakeVault  solana.PublicKey
	AdminTokenX solana.PublicKey
}

func (c *WithdrawFeeInstructionConfig) Validate() error {
	return requireKeys(
		namedKey{"pool", c.Pool},
		namedKey{"authority", c.Authority},
		namedKey{"admin", c.Admin},
		namedKey{"stake vault", c.StakeVault},
		namedKey{"admin token X", c.AdminTokenX},
	)
}

// BuildWithdrawFeeInstruction moves the collected fee to the admin's token X account.
func BuildWithdrawFeeInstruction(program Program, config WithdrawFeeInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	accounts := []*solana.AccountMeta{
		writable(config.Pool),
		readonly(config.Authority),
		writableSigner(config.Admin),
		writable(config.StakeVault),
		writable(config.AdminTokenX),
		readonly(solana.TokenProgramID),
	}
	return buildInstruction(program, OpWithdrawFee, accounts, nil)
}
