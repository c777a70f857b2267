package staking

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/solstake/smartcontract/sdk/go/layout"
)

// Snapshot records one reward distribution: the reward deposited and the
// total stake it is shared across.
type Snapshot struct {
	TokenYRewardAmount      uint64
	TokenXTotalStakedAmount uint64
	SnapshotAt              uint64
}

// IsZero reports whether the slot is unused.
func (s Snapshot) IsZero() bool {
	return s.TokenYRewardAmount == 0 && s.TokenXTotalStakedAmount == 0 && s.SnapshotAt == 0
}

// Pool is a decoded pool account. Fields that only exist in protocol v2
// are zero for v1 pools.
type Pool struct {
	Protocol ProtocolVersion

	Nonce               uint8
	Version             uint8
	Admin               solana.PublicKey
	RootAdmin           solana.PublicKey
	TokenXStakeAccount  solana.PublicKey
	TokenYRewardAccount solana.PublicKey
	Fee                 uint64
	FeeAmount           uint64
	PenaltyFee          uint32
	MinStakeHours       uint32
	PenaltyAmount       uint64
	TotalReward         uint64

	// Snapshots holds the used slots in slot order.
	Snapshots []Snapshot
}

// TotalSnapshotReward sums the reward of every snapshot.
func (p *Pool) TotalSnapshotReward() *big.Int {
	total := new(big.Int)
	for _, s := range p.Snapshots {
		total.Add(total, new(big.Int).SetUint64(s.TokenYRewardAmount))
	}
	return total
}

// Member is a decoded per-user stake account.
type Member struct {
	Protocol ProtocolVersion

	TokenXStakedAmount uint64
	StakeAt            uint64
	WithdrawRewardAt   uint64
	UnstakedAmount     uint64
}

// Mint is a decoded SPL token mint.
type Mint struct {
	MintAuthority   *solana.PublicKey
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority *solana.PublicKey
}

// TokenAccount is a decoded SPL token account.
type TokenAccount struct {
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Amount uint64
}

// EncodePool serializes p with the layout of p.Protocol. Snapshots fill the
// leading slots; remaining slots stay zero.
func EncodePool(p *Pool) ([]byte, error) {
	l, err := PoolLayout(p.Protocol)
	if err != nil {
		return nil, err
	}
	slots := l.FieldsWithPrefix(SnapshotFieldPrefix)
	if len(p.Snapshots) > len(slots) {
		return nil, fmt.Errorf("pool has %d snapshots, max %d", len(p.Snapshots), len(slots))
	}

	buf := l.Alloc()
	w := &recordWriter{layout: l, buf: buf}
	w.u8("nonce", p.Nonce)
	w.u8("version", p.Version)
	if p.Protocol == ProtocolV1 {
		w.publicKey("admins", p.Admin)
	} else {
		w.publicKey("admin", p.Admin)
		w.publicKey("root_admin", p.RootAdmin)
	}
	w.publicKey("token_x_stake_account", p.TokenXStakeAccount)
	w.publicKey("token_y_reward_account", p.TokenYRewardAccount)
	if p.Protocol == ProtocolV2 {
		w.u64("fee", p.Fee)
		w.u64("fee_amount", p.FeeAmount)
		w.u32("penalty_fee", p.PenaltyFee)
		w.u32("min_stake_hours", p.MinStakeHours)
		w.u64("penalty_amount", p.PenaltyAmount)
		w.u64("total_reward", p.TotalReward)
	}
	for i, s := range p.Snapshots {
		blob, err := encodeSnapshot(s)
		if err != nil {
			return nil, err
		}
		if w.err == nil {
			w.err = l.PutBlob(buf, slots[i].Name, blob)
		}
	}
	if w.err != nil {
		return nil, w.err
	}
	return buf, nil
}

// EncodeMember serializes m with the layout of m.Protocol.
func EncodeMember(m *Member) ([]byte, error) {
	l, err := MemberLayout(m.Protocol)
	if err != nil {
		return nil, err
	}
	buf := l.Alloc()
	w := &recordWriter{layout: l, buf: buf}
	w.u64("token_x_staked_amount", m.TokenXStakedAmount)
	w.u64("stake_at", m.StakeAt)
	w.u64("withdraw_reward_at", m.WithdrawRewardAt)
	if m.Protocol == ProtocolV2 {
		w.u64("unstaked_amount", m.UnstakedAmount)
	}
	if w.err != nil {
		return nil, w.err
	}
	return buf, nil
}

func encodeSnapshot(s Snapshot) ([]byte, error) {
	buf := SnapshotLayout.Alloc()
	w := &recordWriter{layout: SnapshotLayout, buf: buf}
	w.u64("token_y_reward_amount", s.TokenYRewardAmount)
	w.u64("token_x_total_staked_amount", s.TokenXTotalStakedAmount)
	w.u64("snapshot_at", s.SnapshotAt)
	return buf, w.err
}

// recordWriter keeps the first error so a record can be written field by field.
type recordWriter struct {
	layout *layout.Struct
	buf    []byte
	err    error
}

func (w *recordWriter) u8(name string, v uint8) {
	if w.err == nil {
		w.err = w.layout.PutU8(w.buf, name, v)
	}
}

func (w *recordWriter) u32(name string, v uint32) {
	if w.err == nil {
		w.err = w.layout.PutU32(w.buf, name, uint64(v))
	}
}

func (w *recordWriter) u64(name string, v uint64) {
	if w.err == nil {
		w.err = w.layout.PutU64(w.buf, name, v)
	}
}

func (w *recordWriter) publicKey(name string, v solana.PublicKey) {
	if w.err == nil {
		w.err = w.layout.PutPublicKey(w.buf, name, v)
	}
}
