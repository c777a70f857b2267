package staking

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/solstake/internal/metrics"
	"github.com/malbeclabs/solstake/smartcontract/sdk/go/layout"
)

// Action names used in errors, logs and metrics.
const (
	ActionCreatePool            = "create_pool"
	ActionInitStakeMember       = "init_stake_member"
	ActionStake                 = "stake"
	ActionUnstake               = "unstake"
	ActionClaimReward           = "claim_reward"
	ActionDistributeReward      = "distribute_reward"
	ActionTransferPoolAdmin     = "transfer_pool_admin"
	ActionTransferRootAdmin     = "transfer_root_admin"
	ActionUpdateFee             = "update_fee"
	ActionUpdatePenalty         = "update_penalty"
	ActionWithdrawFee           = "withdraw_fee"
	ActionCreateAssociatedToken = "create_associated_token_account"
	ActionCloseAssociatedToken  = "close_associated_token_account"
)

func actionResult(action string, tx *UnsignedTransaction, err error) (*UnsignedTransaction, error) {
	if err != nil {
		metrics.Errors.WithLabelValues(metrics.ErrorTypeAssembleAction).Inc()
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return tx, nil
}

// CreatePoolRequest describes a new pool. Program selects the deployed
// program and the protocol version of the pool layout.
type CreatePoolRequest struct {
	Payer      solana.PublicKey
	Admin      solana.PublicKey
	TokenXMint solana.PublicKey
	TokenYMint solana.PublicKey
	Program    Program
}

func (r *CreatePoolRequest) Validate() error {
	if err := requireKeys(
		namedKey{"payer", r.Payer},
		namedKey{"admin", r.Admin},
		namedKey{"token X mint", r.TokenXMint},
		namedKey{"token Y mint", r.TokenYMint},
	); err != nil {
		return err
	}
	return r.Program.Validate()
}

// CreatedPool carries the generated pool and vault keys. The transaction is
// already signed by all three; only the payer signature is missing.
type CreatedPool struct {
	Transaction *UnsignedTransaction
	Pool        solana.PrivateKey
	StakeVault  solana.PrivateKey
	RewardVault solana.PrivateKey
	Authority   solana.PublicKey
}

func (c *Client) CreatePool(ctx context.Context, req CreatePoolRequest) (*CreatedPool, error) {
	created, err := c.createPool(ctx, req)
	if err != nil {
		metrics.Errors.WithLabelValues(metrics.ErrorTypeAssembleAction).Inc()
		return nil, fmt.Errorf("%s: %w", ActionCreatePool, err)
	}
	return created, nil
}

func (c *Client) createPool(ctx context.Context, req CreatePoolRequest) (*CreatedPool, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate request: %w", err)
	}
	poolLayout, err := PoolLayout(req.Program.Version)
	if err != nil {
		return nil, err
	}

	keys := make([]solana.PrivateKey, 3)
	for i := range keys {
		keys[i], err = solana.NewRandomPrivateKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate key: %w", err)
		}
	}
	pool, stakeVault, rewardVault := keys[0], keys[1], keys[2]

	authority, nonce, err := DerivePoolAuthority(pool.PublicKey(), req.Program.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive pool authority: %w", err)
	}

	poolRent, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, uint64(poolLayout.Span()), c.commitment)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool rent exemption: %w", err)
	}
	tokenRent, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, TokenAccountSize, c.commitment)
	if err != nil {
		return nil, fmt.Errorf("failed to get token account rent exemption: %w", err)
	}

	instructions := []solana.Instruction{
		BuildCreateAccountInstruction(req.Payer, pool.PublicKey(), req.Program.ID, poolRent, uint64(poolLayout.Span())),
	}
	for _, vault := range []struct {
		key  solana.PrivateKey
		mint solana.PublicKey
	}{
		{stakeVault, req.TokenXMint},
		{rewardVault, req.TokenYMint},
	} {
		initIx, err := BuildInitTokenAccountInstruction(vault.key.PublicKey(), vault.mint, authority)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions,
			BuildCreateAccountInstruction(req.Payer, vault.key.PublicKey(), solana.TokenProgramID, tokenRent, TokenAccountSize),
			initIx,
		)
	}

	initPoolIx, err := BuildInitPoolInstruction(req.Program, InitPoolInstructionConfig{
		Pool:        pool.PublicKey(),
		Authority:   authority,
		StakeVault:  stakeVault.PublicKey(),
		RewardVault: rewardVault.PublicKey(),
		Admin:       req.Admin,
		Nonce:       nonce,
	})
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, initPoolIx)

	tx, err := c.assemble(ctx, ActionCreatePool, req.Payer, instructions, pool, stakeVault, rewardVault)
	if err != nil {
		return nil, err
	}
	return &CreatedPool{
		Transaction: tx,
		Pool:        pool,
		StakeVault:  stakeVault,
		RewardVault: rewardVault,
		Authority:   authority,
	}, nil
}

// InitStakeMember creates the member account of owner in pool.
func (c *Client) InitStakeMember(ctx context.Context, payer, owner, pool solana.PublicKey) (*UnsignedTransaction, error) {
	tx, err := c.initStakeMember(ctx, payer, owner, pool)
	return actionResult(ActionInitStakeMember, tx, err)
}

func (c *Client) initStakeMember(ctx context.Context, payer, owner, pool solana.PublicKey) (*UnsignedTransaction, error) {
	view, err := c.ReadPool(ctx, pool)
	if err != nil {
		return nil, err
	}
	member, err := c.readMember(ctx, owner, view)
	if err != nil {
		return nil, err
	}
	if member.Exists {
		return nil, fmt.Errorf("%w: %s", ErrMemberExists, member.Address)
	}
	instructions, err := initMemberInstructions(view.Program(), owner, member.Address, pool)
	if err != nil {
		return nil, err
	}
	return c.assemble(ctx, ActionInitStakeMember, payer, instructions)
}

func initMemberInstructions(program Program, owner, member, pool solana.PublicKey) ([]solana.Instruction, error) {
	config := InitMemberInstructionConfig{Owner: owner, Member: member, Pool: pool}
	accountIx, err := BuildInitMemberAccountInstruction(program, config)
	if err != nil {
		return nil, err
	}
	dataIx, err := BuildInitMemberDataInstruction(program, config)
	if err != nil {
		return nil, err
	}
	return []solana.Instruction{accountIx, dataIx}, nil
}

// memberInstructions returns the member view and, when the account does not
// exist yet, the instructions that create it.
func (c *Client) memberInstructions(ctx context.Context, owner solana.PublicKey, view *PoolView) (*MemberView, []solana.Instruction, error) {
	member, err := c.readMember(ctx, owner, view)
	if err != nil {
		return nil, nil, err
	}
	if member.Exists {
		return member, nil, nil
	}
	c.log.Debug("Member account missing, prepending init", "owner", owner, "pool", view.Address, "member", member.Address)
	instructions, err := initMemberInstructions(view.Program(), owner, member.Address, view.Address)
	if err != nil {
		return nil, nil, err
	}
	return member, instructions, nil
}

// StakeByUser stakes amount token X display units from owner's associated
// token account.
func (c *Client) StakeByUser(ctx context.Context, payer, owner, pool solana.PublicKey, amount float64) (*UnsignedTransaction, error) {
	tx, err := c.stakeOrUnstake(ctx, ActionStake, payer, owner, pool, amount)
	return actionResult(ActionStake, tx, err)
}

// UnstakeByUser withdraws amount token X display units back to owner.
func (c *Client) UnstakeByUser(ctx context.Context, payer, owner, pool solana.PublicKey, amount float64) (*UnsignedTransaction, error) {
	tx, err := c.stakeOrUnstake(ctx, ActionUnstake, payer, owner, pool, amount)
	return actionResult(ActionUnstake, tx, err)
}

func (c *Client) stakeOrUnstake(ctx context.Context, action string, payer, owner, pool solana.PublicKey, amount float64) (*UnsignedTransaction, error) {
	view, err := c.ReadPool(ctx, pool)
	if err != nil {
		return nil, err
	}
	member, instructions, err := c.memberInstructions(ctx, owner, view)
	if err != nil {
		return nil, err
	}

	raw, err := ToRawAmount(amount, view.TokenXDecimals)
	if err != nil {
		return nil, err
	}
	userTokenX, _, err := DeriveAssociatedTokenAddress(owner, view.TokenXMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive token X address: %w", err)
	}
	userTokenY, _, err := DeriveAssociatedTokenAddress(owner, view.TokenYMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive token Y address: %w", err)
	}

	config := StakeInstructionConfig{
		Pool:        pool,
		Authority:   view.Authority,
		Owner:       owner,
		UserTokenX:  userTokenX,
		UserTokenY:  userTokenY,
		StakeVault:  view.TokenXStakeAccount,
		RewardVault: view.TokenYRewardAccount,
		Member:      member.Address,
		Amount:      raw,
	}

	if action == ActionStake {
		approveIx, err := BuildApproveInstruction(ApproveInstructionConfig{
			Source:   userTokenX,
			Delegate: view.Authority,
			Owner:    owner,
			Signers:  []solana.PublicKey{owner},
			Amount:   raw,
		})
		if err != nil {
			return nil, err
		}
		stakeIx, err := BuildStakeInstruction(view.Program(), config)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, approveIx, stakeIx)
	} else {
		unstakeIx, err := BuildUnstakeInstruction(view.Program(), config)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, unstakeIx)
	}
	return c.assemble(ctx, action, payer, instructions)
}

// ClaimReward withdraws owner's accumulated reward into owner's token Y
// account. Wrapped SOL rewards are unwrapped by closing the account afterwards.
func (c *Client) ClaimReward(ctx context.Context, payer, owner, pool solana.PublicKey) (*UnsignedTransaction, error) {
	tx, err := c.claimReward(ctx, payer, owner, pool)
	return actionResult(ActionClaimReward, tx, err)
}

func (c *Client) claimReward(ctx context.Context, payer, owner, pool solana.PublicKey) (*UnsignedTransaction, error) {
	view, err := c.ReadPool(ctx, pool)
	if err != nil {
		return nil, err
	}
	member, instructions, err := c.memberInstructions(ctx, owner, view)
	if err != nil {
		return nil, err
	}

	userTokenY, err := c.GetAssociatedAccountInfo(ctx, owner, view.TokenYMint)
	if err != nil {
		return nil, err
	}
	if !userTokenY.Exists {
		createIx, _, err := BuildCreateAssociatedTokenAccountInstruction(CreateAssociatedTokenAccountInstructionConfig{
			Payer: payer,
			Owner: owner,
			Mint:  view.TokenYMint,
		})
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, createIx)
	}

	claimIx, err := BuildClaimRewardInstruction(view.Program(), ClaimRewardInstructionConfig{
		Pool:        pool,
		Authority:   view.Authority,
		Owner:       owner,
		UserTokenY:  userTokenY.Address,
		RewardVault: view.TokenYRewardAccount,
		Member:      member.Address,
	})
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, claimIx)

	if view.TokenYMint.Equals(NativeMint) {
		closeIx, err := BuildCloseAccountInstruction(CloseAccountInstructionConfig{
			Account:     userTokenY.Address,
			Destination: owner,
			Owner:       owner,
		})
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, closeIx)
	}
	return c.assemble(ctx, ActionClaimReward, payer, instructions)
}

// DistributeReward moves amount token Y display units from admin into the
// pool's reward vault and records a snapshot. Wrapped SOL rewards are
// wrapped from admin's lamports first and the temporary account is closed
// afterwards.
func (c *Client) DistributeReward(ctx context.Context, payer, admin, pool solana.PublicKey, amount float64) (*UnsignedTransaction, error) {
	tx, err := c.distributeReward(ctx, payer, admin, pool, amount)
	return actionResult(ActionDistributeReward, tx, err)
}

func (c *Client) distributeReward(ctx context.Context, payer, admin, pool solana.PublicKey, amount float64) (*UnsignedTransaction, error) {
	view, err := c.ReadPool(ctx, pool)
	if err != nil {
		return nil, err
	}
	raw, err := ToRawAmount(amount, view.TokenYDecimals)
	if err != nil {
		return nil, err
	}
	adminTokenY, err := c.GetAssociatedAccountInfo(ctx, admin, view.TokenYMint)
	if err != nil {
		return nil, err
	}

	wrap := view.TokenYMint.Equals(NativeMint)
	var instructions []solana.Instruction
	if wrap {
		wrapIxs, err := c.wrapSOLInstructions(ctx, payer, admin, adminTokenY, raw)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, wrapIxs...)
	} else if !adminTokenY.Exists {
		createIx, _, err := BuildCreateAssociatedTokenAccountInstruction(CreateAssociatedTokenAccountInstructionConfig{
			Payer: payer,
			Owner: admin,
			Mint:  view.TokenYMint,
		})
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, createIx)
	}

	approveIx, err := BuildApproveInstruction(ApproveInstructionConfig{
		Source:   adminTokenY.Address,
		Delegate: view.Authority,
		Owner:    admin,
		Signers:  []solana.PublicKey{admin},
		Amount:   raw,
	})
	if err != nil {
		return nil, err
	}
	distributeIx, err := BuildDistributeRewardInstruction(view.Program(), DistributeRewardInstructionConfig{
		Pool:        pool,
		Authority:   view.Authority,
		Admin:       admin,
		AdminTokenY: adminTokenY.Address,
		StakeVault:  view.TokenXStakeAccount,
		RewardVault: view.TokenYRewardAccount,
		Amount:      raw,
	})
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, approveIx, distributeIx)

	if wrap {
		closeIx, err := BuildCloseAccountInstruction(CloseAccountInstructionConfig{
			Account:     adminTokenY.Address,
			Destination: admin,
			Owner:       admin,
		})
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, closeIx)
	}
	return c.assemble(ctx, ActionDistributeReward, payer, instructions)
}

// wrapSOLInstructions funds owner's wrapped SOL account with raw lamports.
// A missing account is funded with its rent as well and then created.
func (c *Client) wrapSOLInstructions(ctx context.Context, payer, owner solana.PublicKey, account *AssociatedAccount, raw *big.Int) ([]solana.Instruction, error) {
	if account.Exists {
		lamports, err := layout.BigToU64(raw)
		if err != nil {
			return nil, err
		}
		syncIx, err := BuildSyncNativeInstruction(account.Address)
		if err != nil {
			return nil, err
		}
		return []solana.Instruction{BuildTransferInstruction(owner, account.Address, lamports), syncIx}, nil
	}

	rent, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, TokenAccountSize, c.commitment)
	if err != nil {
		return nil, fmt.Errorf("failed to get token account rent exemption: %w", err)
	}
	lamports, err := layout.BigToU64(new(big.Int).Add(raw, new(big.Int).SetUint64(rent)))
	if err != nil {
		return nil, err
	}
	createIx, _, err := BuildCreateAssociatedTokenAccountInstruction(CreateAssociatedTokenAccountInstructionConfig{
		Payer: payer,
		Owner: owner,
		Mint:  NativeMint,
	})
	if err != nil {
		return nil, err
	}
	return []solana.Instruction{BuildTransferInstruction(owner, account.Address, lamports), createIx}, nil
}

func (c *Client) TransferPoolAdmin(ctx context.Context, admin, newAdmin, pool solana.PublicKey) (*UnsignedTransaction, error) {
	tx, err := c.adminAction(ctx, ActionTransferPoolAdmin, admin, pool, func(view *PoolView) (solana.Instruction, error) {
		return BuildTransferPoolAdminInstruction(view.Program(), TransferPoolAdminInstructionConfig{
			Pool:     pool,
			Admin:    admin,
			NewAdmin: newAdmin,
		})
	})
	return actionResult(ActionTransferPoolAdmin, tx, err)
}

func (c *Client) TransferRootAdmin(ctx context.Context, rootAdmin, newRootAdmin, pool solana.PublicKey) (*UnsignedTransaction, error) {
	tx, err := c.adminAction(ctx, ActionTransferRootAdmin, rootAdmin, pool, func(view *PoolView) (solana.Instruction, error) {
		return BuildTransferRootAdminInstruction(view.Program(), TransferRootAdminInstructionConfig{
			Pool:         pool,
			RootAdmin:    rootAdmin,
			NewRootAdmin: newRootAdmin,
			Authority:    view.Authority,
		})
	})
	return actionResult(ActionTransferRootAdmin, tx, err)
}

// UpdateFee sets the pool fee. Available from protocol v2.
func (c *Client) UpdateFee(ctx context.Context, admin, pool solana.PublicKey, fee uint64) (*UnsignedTransaction, error) {
	tx, err := c.adminAction(ctx, ActionUpdateFee, admin, pool, func(view *PoolView) (solana.Instruction, error) {
		return BuildUpdateFeeInstruction(view.Program(), UpdateFeeInstructionConfig{
			Pool:      pool,
			Admin:     admin,
			Authority: view.Authority,
			Fee:       fee,
		})
	})
	return actionResult(ActionUpdateFee, tx, err)
}

// UpdatePenalty sets the early-unstake penalty. Available from protocol v2.
func (c *Client) UpdatePenalty(ctx context.Context, admin, pool solana.PublicKey, penaltyFee, minStakeHours uint32) (*UnsignedTransaction, error) {
	tx, err := c.adminAction(ctx, ActionUpdatePenalty, admin, pool, func(view *PoolView) (solana.Instruction, error) {
		return BuildUpdatePenaltyInstruction(view.Program(), UpdatePenaltyInstructionConfig{
			Pool:          pool,
			Admin:         admin,
			Authority:     view.Authority,
			PenaltyFee:    penaltyFee,
			MinStakeHours: minStakeHours,
		})
	})
	return actionResult(ActionUpdatePenalty, tx, err)
}

// WithdrawFee moves collected fees from the stake vault to admin's token X
// account, creating that account when missing.
func (c *Client) WithdrawFee(ctx context.Context, admin, pool solana.PublicKey) (*UnsignedTransaction, error) {
	tx, err := c.withdrawFee(ctx, admin, pool)
	return actionResult(ActionWithdrawFee, tx, err)
}

func (c *Client) withdrawFee(ctx context.Context, admin, pool solana.PublicKey) (*UnsignedTransaction, error) {
	view, err := c.ReadPool(ctx, pool)
	if err != nil {
		return nil, err
	}
	adminTokenX, err := c.GetAssociatedAccountInfo(ctx, admin, view.TokenXMint)
	if err != nil {
		return nil, err
	}
	var instructions []solana.Instruction
	if !adminTokenX.Exists {
		createIx, _, err := BuildCreateAssociatedTokenAccountInstruction(CreateAssociatedTokenAccountInstructionConfig{
			Payer: admin,
			Owner: admin,
			Mint:  view.TokenXMint,
		})
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, createIx)
	}
	withdrawIx, err := BuildWithdrawFeeInstruction(view.Program(), WithdrawFeeInstructionConfig{
		Pool:        pool,
		Authority:   view.Authority,
		Admin:       admin,
		StakeVault:  view.TokenXStakeAccount,
		AdminTokenX: adminTokenX.Address,
	})
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, withdrawIx)
	return c.assemble(ctx, ActionWithdrawFee, admin, instructions)
}

func (c *Client) adminAction(
	ctx context.Context,
	action string,
	admin, pool solana.PublicKey,
	build func(view *PoolView) (solana.Instruction, error),
) (*UnsignedTransaction, error) {
	view, err := c.ReadPool(ctx, pool)
	if err != nil {
		return nil, err
	}
	ix, err := build(view)
	if err != nil {
		return nil, err
	}
	return c.assemble(ctx, action, admin, []solana.Instruction{ix})
}

// CreateAssociatedTokenAccount creates the associated token account of owner for mint.
func (c *Client) CreateAssociatedTokenAccount(ctx context.Context, payer, owner, mint solana.PublicKey) (*UnsignedTransaction, error) {
	ix, _, err := BuildCreateAssociatedTokenAccountInstruction(CreateAssociatedTokenAccountInstructionConfig{
		Payer: payer,
		Owner: owner,
		Mint:  mint,
	})
	if err != nil {
		return actionResult(ActionCreateAssociatedToken, nil, err)
	}
	tx, err := c.assemble(ctx, ActionCreateAssociatedToken, payer, []solana.Instruction{ix})
	return actionResult(ActionCreateAssociatedToken, tx, err)
}

// CloseResult reports whether an account needed closing and, if so, the
// transaction that closes it.
type CloseResult struct {
	NeedClose   bool
	Transaction *UnsignedTransaction
}

// CloseAssociatedTokenAccount closes owner's associated token account for
// mint, returning its lamports to owner. Nothing is assembled when the
// account does not exist.
func (c *Client) CloseAssociatedTokenAccount(ctx context.Context, payer, owner, mint solana.PublicKey) (*CloseResult, error) {
	account, err := c.GetAssociatedAccountInfo(ctx, owner, mint)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ActionCloseAssociatedToken, err)
	}
	if !account.Exists {
		return &CloseResult{NeedClose: false}, nil
	}
	ix, err := BuildCloseAccountInstruction(CloseAccountInstructionConfig{
		Account:     account.Address,
		Destination: owner,
		Owner:       owner,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ActionCloseAssociatedToken, err)
	}
	tx, err := c.assemble(ctx, ActionCloseAssociatedToken, payer, []solana.Instruction{ix})
	if _, err := actionResult(ActionCloseAssociatedToken, tx, err); err != nil {
		return nil, err
	}
	return &CloseResult{NeedClose: true, Transaction: tx}, nil
}
