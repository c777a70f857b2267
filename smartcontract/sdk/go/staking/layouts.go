package staking

import (
	"fmt"

	"github.com/malbeclabs/solstake/smartcontract/sdk/go/layout"
)

// SnapshotLayout is one reward distribution event recorded in a pool.
var SnapshotLayout = layout.NewStruct("snapshot",
	layout.U64("token_y_reward_amount"),
	layout.U64("token_x_total_staked_amount"),
	layout.U64("snapshot_at"),
)

func snapshotFields() []layout.Field {
	fields := make([]layout.Field, MaxSnapshots)
	for i := range fields {
		fields[i] = layout.Blob(fmt.Sprintf("%s%02d", SnapshotFieldPrefix, i), SnapshotLayout.Span())
	}
	return fields
}

var PoolLayoutV1 = layout.NewStruct("pool_v1", append([]layout.Field{
	layout.U8("nonce"),
	layout.U8("version"),
	layout.PublicKey("admins"),
	layout.PublicKey("token_x_stake_account"),
	layout.PublicKey("token_y_reward_account"),
}, snapshotFields()...)...)

var PoolLayoutV2 = layout.NewStruct("pool_v2", append([]layout.Field{
	layout.U8("nonce"),
	layout.U8("version"),
	layout.PublicKey("admin"),
	layout.PublicKey("root_admin"),
	layout.PublicKey("token_x_stake_account"),
	layout.PublicKey("token_y_reward_account"),
	layout.U64("fee"),
	layout.U64("fee_amount"),
	layout.U32("penalty_fee"),
	layout.U32("min_stake_hours"),
	layout.U64("penalty_amount"),
	layout.U64("total_reward"),
}, snapshotFields()...)...)

var MemberLayoutV1 = layout.NewStruct("member_v1",
	layout.U64("token_x_staked_amount"),
	layout.U64("stake_at"),
	layout.U64("withdraw_reward_at"),
)

var MemberLayoutV2 = layout.NewStruct("member_v2",
	layout.U64("token_x_staked_amount"),
	layout.U64("stake_at"),
	layout.U64("withdraw_reward_at"),
	layout.U64("unstaked_amount"),
)

// MintLayout is the SPL token mint account.
var MintLayout = layout.NewStruct("mint",
	layout.U32("mint_authority_option"),
	layout.PublicKey("mint_authority"),
	layout.U64("supply"),
	layout.U8("decimals"),
	layout.Bool("is_initialized"),
	layout.U32("freeze_authority_option"),
	layout.PublicKey("freeze_authority"),
)

// TokenAccountLayout is the prefix of an SPL token account that this package reads.
var TokenAccountLayout = layout.NewStruct("token_account",
	layout.PublicKey("mint"),
	layout.PublicKey("owner"),
	layout.U64("amount"),
)

// PoolLayout returns the pool record layout for v.
func PoolLayout(v ProtocolVersion) (*layout.Struct, error) {
	switch v {
	case ProtocolV1:
		return PoolLayoutV1, nil
	case ProtocolV2:
		return PoolLayoutV2, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedProtocolVersion, uint8(v))
	}
}

// MemberLayout returns the member record layout for v.
func MemberLayout(v ProtocolVersion) (*layout.Struct, error) {
	switch v {
	case ProtocolV1:
		return MemberLayoutV1, nil
	case ProtocolV2:
		return MemberLayoutV2, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedProtocolVersion, uint8(v))
	}
}
