package staking

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/jellydator/ttlcache/v3"
	"github.com/malbeclabs/solstake/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// PoolView is a decoded pool with its vault mints resolved and amounts in
// display units.
type PoolView struct {
	*Pool

	Address   solana.PublicKey
	ProgramID solana.PublicKey
	Authority solana.PublicKey

	TokenXMint     solana.PublicKey
	TokenYMint     solana.PublicKey
	TokenXDecimals uint8
	TokenYDecimals uint8

	// TokenXStakeAmount is the stake vault balance.
	TokenXStakeAmount float64

	// SnapshotReward is the raw sum of every snapshot reward; RewardAmount
	// is the same value in reward token units.
	SnapshotReward *big.Int
	RewardAmount   float64
}

// Program returns the program and protocol version that own the pool.
func (v *PoolView) Program() Program {
	return Program{ID: v.ProgramID, Version: v.Protocol}
}

// MemberView is a member account, or the empty member when the account does
// not exist yet.
type MemberView struct {
	Member

	Address solana.PublicKey
	Exists  bool
}

type vaultInfo struct {
	mint     solana.PublicKey
	decimals uint8
	amount   uint64
}

// ReadPool fetches and decodes pool together with its vault mints and balances.
func (c *Client) ReadPool(ctx context.Context, pool solana.PublicKey) (*PoolView, error) {
	account, err := c.getAccount(ctx, pool)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			metrics.Errors.WithLabelValues(metrics.ErrorTypePoolNotFound).Inc()
			return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, pool)
		}
		metrics.Errors.WithLabelValues(metrics.ErrorTypeGetAccount).Inc()
		return nil, err
	}
	c.owners.Set(pool, account.Owner, ttlcache.DefaultTTL)

	data := account.Data.GetBinary()
	var record *Pool
	if c.forcedVersion != 0 {
		record, err = DecodePoolVersion(data, c.forcedVersion)
	} else {
		record, err = DecodePool(data)
	}
	if err != nil {
		metrics.Errors.WithLabelValues(metrics.ErrorTypeDecodeAccount).Inc()
		return nil, fmt.Errorf("failed to deserialize pool %s: %w", pool, err)
	}

	authority, _, err := DerivePoolAuthority(pool, account.Owner)
	if err != nil {
		return nil, fmt.Errorf("failed to derive pool authority: %w", err)
	}

	var stakeVault, rewardVault vaultInfo
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := c.readVault(gctx, record.TokenXStakeAccount)
		stakeVault = v
		return err
	})
	g.Go(func() error {
		v, err := c.readVault(gctx, record.TokenYRewardAccount)
		rewardVault = v
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.Errors.WithLabelValues(metrics.ErrorTypeResolveMints).Inc()
		return nil, fmt.Errorf("failed to resolve pool vaults: %w", err)
	}

	snapshotReward := record.TotalSnapshotReward()
	view := &PoolView{
		Pool:              record,
		Address:           pool,
		ProgramID:         account.Owner,
		Authority:         authority,
		TokenXMint:        stakeVault.mint,
		TokenYMint:        rewardVault.mint,
		TokenXDecimals:    stakeVault.decimals,
		TokenYDecimals:    rewardVault.decimals,
		TokenXStakeAmount: ToUIAmountU64(stakeVault.amount, stakeVault.decimals),
		SnapshotReward:    snapshotReward,
		RewardAmount:      ToUIAmount(snapshotReward, rewardVault.decimals),
	}
	c.log.Debug("Read pool", "pool", pool, "program", view.ProgramID, "protocol", view.Protocol, "snapshots", len(record.Snapshots))
	return view, nil
}

func (c *Client) readVault(ctx context.Context, vault solana.PublicKey) (vaultInfo, error) {
	account, err := c.GetTokenAccount(ctx, vault)
	if err != nil {
		return vaultInfo{}, err
	}
	decimals, err := c.GetMintDecimals(ctx, account.Mint)
	if err != nil {
		return vaultInfo{}, err
	}
	return vaultInfo{mint: account.Mint, decimals: decimals, amount: account.Amount}, nil
}

// ReadMember fetches the member account of owner in pool. A missing account
// is not an error: the returned view has Exists false and zero fields.
func (c *Client) ReadMember(ctx context.Context, owner, pool solana.PublicKey) (*MemberView, error) {
	view, err := c.ReadPool(ctx, pool)
	if err != nil {
		return nil, err
	}
	return c.readMember(ctx, owner, view)
}

func (c *Client) readMember(ctx context.Context, owner solana.PublicKey, pool *PoolView) (*MemberView, error) {
	address, _, err := DeriveMemberAddress(owner, pool.Address, pool.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive member address: %w", err)
	}

	account, err := c.getAccount(ctx, address)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return &MemberView{Address: address, Member: Member{Protocol: pool.Protocol}}, nil
		}
		metrics.Errors.WithLabelValues(metrics.ErrorTypeGetAccount).Inc()
		return nil, err
	}

	member, err := DecodeMember(account.Data.GetBinary(), pool.Protocol)
	if err != nil {
		metrics.Errors.WithLabelValues(metrics.ErrorTypeDecodeAccount).Inc()
		return nil, fmt.Errorf("failed to deserialize member %s: %w", address, err)
	}
	return &MemberView{Member: *member, Address: address, Exists: true}, nil
}

// ClaimableReward estimates the raw reward owner could claim from pool. It is
// zero when owner has never staked.
func (c *Client) ClaimableReward(ctx context.Context, owner, pool solana.PublicKey) (float64, error) {
	view, err := c.ReadPool(ctx, pool)
	if err != nil {
		return 0, err
	}
	member, err := c.readMember(ctx, owner, view)
	if err != nil {
		return 0, err
	}
	return ComputeClaimable(member, view), nil
}
