package staking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/jellydator/ttlcache/v3"
)

const (
	defaultOwnerCacheTTL = 5 * time.Minute
	defaultMintCacheTTL  = time.Hour
)

// Client reads staking accounts and assembles unsigned transactions. It
// never signs on behalf of users.
type Client struct {
	log        *slog.Logger
	rpc        RPCClient
	commitment solanarpc.CommitmentType

	// forcedVersion overrides version detection when non-zero.
	forcedVersion ProtocolVersion

	owners   *ttlcache.Cache[solana.PublicKey, solana.PublicKey]
	decimals *ttlcache.Cache[solana.PublicKey, uint8]
}

type Option func(*Client)

// WithCommitment sets the commitment used for reads. Defaults to confirmed.
func WithCommitment(commitment solanarpc.CommitmentType) Option {
	return func(c *Client) {
		c.commitment = commitment
	}
}

// WithProtocolVersion decodes every pool with v instead of reading its version byte.
func WithProtocolVersion(v ProtocolVersion) Option {
	return func(c *Client) {
		c.forcedVersion = v
	}
}

// WithOwnerCacheTTL sets how long a resolved account owner is reused.
func WithOwnerCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.owners = ttlcache.New(ttlcache.WithTTL[solana.PublicKey, solana.PublicKey](ttl))
	}
}

func New(log *slog.Logger, rpc RPCClient, opts ...Option) *Client {
	c := &Client{
		log:        log,
		rpc:        rpc,
		commitment: solanarpc.CommitmentConfirmed,
		owners:     ttlcache.New(ttlcache.WithTTL[solana.PublicKey, solana.PublicKey](defaultOwnerCacheTTL)),
		decimals:   ttlcache.New(ttlcache.WithTTL[solana.PublicKey, uint8](defaultMintCacheTTL)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getAccount returns the account at address, or ErrAccountNotFound.
func (c *Client) getAccount(ctx context.Context, address solana.PublicKey) (*solanarpc.Account, error) {
	account, err := c.rpc.GetAccountInfo(ctx, address)
	if err != nil {
		if errors.Is(err, solanarpc.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account data: %w", err)
	}
	if account == nil || account.Value == nil {
		return nil, ErrAccountNotFound
	}
	return account.Value, nil
}

// GetOwner returns the program that owns address.
func (c *Client) GetOwner(ctx context.Context, address solana.PublicKey) (solana.PublicKey, error) {
	if item := c.owners.Get(address); item != nil {
		return item.Value(), nil
	}
	account, err := c.getAccount(ctx, address)
	if err != nil {
		return solana.PublicKey{}, err
	}
	c.log.Debug("Resolved account owner", "address", address, "owner", account.Owner)
	c.owners.Set(address, account.Owner, ttlcache.DefaultTTL)
	return account.Owner, nil
}

// ResolveProgramID returns the staking program that owns pool.
func (c *Client) ResolveProgramID(ctx context.Context, pool solana.PublicKey) (solana.PublicKey, error) {
	programID, err := c.GetOwner(ctx, pool)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrPoolNotFound, pool)
		}
		return solana.PublicKey{}, err
	}
	return programID, nil
}

// FindPoolAuthority derives the vault authority of pool under its owning program.
func (c *Client) FindPoolAuthority(ctx context.Context, pool solana.PublicKey) (solana.PublicKey, error) {
	programID, err := c.ResolveProgramID(ctx, pool)
	if err != nil {
		return solana.PublicKey{}, err
	}
	authority, _, err := DerivePoolAuthority(pool, programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive pool authority: %w", err)
	}
	return authority, nil
}

// AssociatedAccount is a derived address and whether it exists on chain.
type AssociatedAccount struct {
	Address solana.PublicKey
	Exists  bool
}

// GetAssociatedAccountInfo derives the associated token account of owner for mint and checks whether it exists.
func (c *Client) GetAssociatedAccountInfo(ctx context.Context, owner, mint solana.PublicKey) (*AssociatedAccount, error) {
	ata, _, err := DeriveAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive associated token address: %w", err)
	}
	return c.accountExists(ctx, ata)
}

// GetStakePoolAssociatedAccountInfo derives the member account of owner in pool and checks whether it exists.
func (c *Client) GetStakePoolAssociatedAccountInfo(ctx context.Context, owner, pool solana.PublicKey) (*AssociatedAccount, error) {
	programID, err := c.ResolveProgramID(ctx, pool)
	if err != nil {
		return nil, err
	}
	member, _, err := DeriveMemberAddress(owner, pool, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive member address: %w", err)
	}
	return c.accountExists(ctx, member)
}

func (c *Client) accountExists(ctx context.Context, address solana.PublicKey) (*AssociatedAccount, error) {
	_, err := c.getAccount(ctx, address)
	switch {
	case err == nil:
		return &AssociatedAccount{Address: address, Exists: true}, nil
	case errors.Is(err, ErrAccountNotFound):
		return &AssociatedAccount{Address: address, Exists: false}, nil
	default:
		return nil, err
	}
}

// GetMintDecimals returns the decimals of mint. Decimals never change, so results are cached.
func (c *Client) GetMintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	if item := c.decimals.Get(mint); item != nil {
		return item.Value(), nil
	}
	account, err := c.getAccount(ctx, mint)
	if err != nil {
		return 0, fmt.Errorf("failed to get mint %s: %w", mint, err)
	}
	m, err := DecodeMint(account.Data.GetBinary())
	if err != nil {
		return 0, fmt.Errorf("failed to deserialize mint %s: %w", mint, err)
	}
	c.decimals.Set(mint, m.Decimals, ttlcache.DefaultTTL)
	return m.Decimals, nil
}

// GetTokenAccount decodes the token account at address.
func (c *Client) GetTokenAccount(ctx context.Context, address solana.PublicKey) (*TokenAccount, error) {
	account, err := c.getAccount(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get token account %s: %w", address, err)
	}
	a, err := DecodeTokenAccount(account.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize token account %s: %w", address, err)
	}
	return a, nil
}

// GetBalance returns the associated token account balance of owner for mint
// in display units. A missing account has a zero balance.
func (c *Client) GetBalance(ctx context.Context, owner, mint solana.PublicKey) (float64, error) {
	ata, _, err := DeriveAssociatedTokenAddress(owner, mint)
	if err != nil {
		return 0, fmt.Errorf("failed to derive associated token address: %w", err)
	}
	return c.tokenAccountBalance(ctx, ata)
}

func (c *Client) tokenAccountBalance(ctx context.Context, address solana.PublicKey) (float64, error) {
	res, err := c.rpc.GetTokenAccountBalance(ctx, address, c.commitment)
	if err != nil {
		if errors.Is(err, solanarpc.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get token account balance: %w", err)
	}
	if res == nil || res.Value == nil {
		return 0, nil
	}
	raw, ok := new(big.Int).SetString(res.Value.Amount, 10)
	if !ok {
		return 0, fmt.Errorf("invalid token amount %q", res.Value.Amount)
	}
	return ToUIAmount(raw, res.Value.Decimals), nil
}
