package staking

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/solstake/smartcontract/sdk/go/layout"
)

const poolVersionOffset = 1

// DetectProtocolVersion reads the version byte of a pool account. Pools
// created before the byte was assigned carry 0 and use the v1 layout.
func DetectProtocolVersion(data []byte) (ProtocolVersion, error) {
	raw, err := layout.DecodeU8(data, poolVersionOffset)
	if err != nil {
		return 0, fmt.Errorf("failed to read pool version: %w", err)
	}
	switch raw {
	case 0, 1:
		return ProtocolV1, nil
	case 2:
		return ProtocolV2, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedProtocolVersion, raw)
	}
}

// DecodePool decodes a pool account, detecting its protocol version.
func DecodePool(data []byte) (*Pool, error) {
	v, err := DetectProtocolVersion(data)
	if err != nil {
		return nil, err
	}
	return DecodePoolVersion(data, v)
}

// DecodePoolVersion decodes a pool account with the layout of v.
func DecodePoolVersion(data []byte, v ProtocolVersion) (*Pool, error) {
	l, err := PoolLayout(v)
	if err != nil {
		return nil, err
	}
	if err := l.Check(data); err != nil {
		return nil, err
	}

	r := &recordReader{layout: l, buf: data}
	p := &Pool{Protocol: v}
	p.Nonce = r.u8("nonce")
	p.Version = r.u8("version")
	if v == ProtocolV1 {
		p.Admin = r.publicKey("admins")
	} else {
		p.Admin = r.publicKey("admin")
		p.RootAdmin = r.publicKey("root_admin")
	}
	p.TokenXStakeAccount = r.publicKey("token_x_stake_account")
	p.TokenYRewardAccount = r.publicKey("token_y_reward_account")
	if v == ProtocolV2 {
		p.Fee = r.u64("fee")
		p.FeeAmount = r.u64("fee_amount")
		p.PenaltyFee = r.u32("penalty_fee")
		p.MinStakeHours = r.u32("min_stake_hours")
		p.PenaltyAmount = r.u64("penalty_amount")
		p.TotalReward = r.u64("total_reward")
	}
	if r.err != nil {
		return nil, r.err
	}

	for _, f := range l.FieldsWithPrefix(SnapshotFieldPrefix) {
		blob, err := l.Blob(data, f.Name)
		if err != nil {
			return nil, err
		}
		s, err := decodeSnapshot(blob)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		if s.IsZero() {
			continue
		}
		p.Snapshots = append(p.Snapshots, s)
	}
	return p, nil
}

func decodeSnapshot(data []byte) (Snapshot, error) {
	r := &recordReader{layout: SnapshotLayout, buf: data}
	s := Snapshot{
		TokenYRewardAmount:      r.u64("token_y_reward_amount"),
		TokenXTotalStakedAmount: r.u64("token_x_total_staked_amount"),
		SnapshotAt:              r.u64("snapshot_at"),
	}
	return s, r.err
}

// DecodeMember decodes a member account. Member accounts carry no version
// byte; v comes from the pool the member belongs to.
func DecodeMember(data []byte, v ProtocolVersion) (*Member, error) {
	l, err := MemberLayout(v)
	if err != nil {
		return nil, err
	}
	if err := l.Check(data); err != nil {
		return nil, err
	}
	r := &recordReader{layout: l, buf: data}
	m := &Member{
		Protocol:           v,
		TokenXStakedAmount: r.u64("token_x_staked_amount"),
		StakeAt:            r.u64("stake_at"),
		WithdrawRewardAt:   r.u64("withdraw_reward_at"),
	}
	if v == ProtocolV2 {
		m.UnstakedAmount = r.u64("unstaked_amount")
	}
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

// DecodeMint decodes an SPL mint account.
func DecodeMint(data []byte) (*Mint, error) {
	if err := MintLayout.Check(data); err != nil {
		return nil, err
	}
	r := &recordReader{layout: MintLayout, buf: data}
	m := &Mint{
		Supply:        r.u64("supply"),
		Decimals:      r.u8("decimals"),
		IsInitialized: r.bool("is_initialized"),
	}
	if r.u32("mint_authority_option") != 0 {
		pk := r.publicKey("mint_authority")
		m.MintAuthority = &pk
	}
	if r.u32("freeze_authority_option") != 0 {
		pk := r.publicKey("freeze_authority")
		m.FreezeAuthority = &pk
	}
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

// DecodeTokenAccount decodes an SPL token account.
func DecodeTokenAccount(data []byte) (*TokenAccount, error) {
	if err := TokenAccountLayout.Check(data); err != nil {
		return nil, err
	}
	r := &recordReader{layout: TokenAccountLayout, buf: data}
	a := &TokenAccount{
		Mint:   r.publicKey("mint"),
		Owner:  r.publicKey("owner"),
		Amount: r.u64("amount"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return a, nil
}

// recordReader keeps the first error so a record can be read field by field.
type recordReader struct {
	layout *layout.Struct
	buf    []byte
	err    error
}

func (r *recordReader) u8(name string) uint8 {
	if r.err != nil {
		return 0
	}
	var v uint8
	v, r.err = r.layout.U8(r.buf, name)
	return v
}

func (r *recordReader) bool(name string) bool {
	if r.err != nil {
		return false
	}
	var v bool
	v, r.err = r.layout.Bool(r.buf, name)
	return v
}

func (r *recordReader) u32(name string) uint32 {
	if r.err != nil {
		return 0
	}
	var v uint32
	v, r.err = r.layout.U32(r.buf, name)
	return v
}

func (r *recordReader) u64(name string) uint64 {
	if r.err != nil {
		return 0
	}
	var v uint64
	v, r.err = r.layout.U64(r.buf, name)
	return v
}

func (r *recordReader) publicKey(name string) solana.PublicKey {
	if r.err != nil {
		return solana.PublicKey{}
	}
	var v solana.PublicKey
	v, r.err = r.layout.PublicKey(r.buf, name)
	return v
}
