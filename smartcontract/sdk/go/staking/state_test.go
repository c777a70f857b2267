package staking_test

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/google/go-cmp/cmp"
	"github.com/malbeclabs/solstake/smartcontract/sdk/go/layout"
	"github.com/malbeclabs/solstake/smartcontract/sdk/go/staking"
	"github.com/stretchr/testify/require"
)

func TestSDK_Staking_Layouts_Spans(t *testing.T) {
	t.Parallel()

	require.Equal(t, 24, staking.SnapshotLayout.Span())
	require.Equal(t, 1298, staking.PoolLayoutV1.Span())
	require.Equal(t, 1370, staking.PoolLayoutV2.Span())
	require.Equal(t, 24, staking.MemberLayoutV1.Span())
	require.Equal(t, 32, staking.MemberLayoutV2.Span())
	require.Equal(t, staking.MintAccountSize, staking.MintLayout.Span())
	require.Len(t, staking.PoolLayoutV2.FieldsWithPrefix(staking.SnapshotFieldPrefix), staking.MaxSnapshots)

	decimals, err := staking.MintLayout.Field("decimals")
	require.NoError(t, err)
	require.Equal(t, 44, decimals.Offset)
}

func TestSDK_Staking_Pool_RoundTrip(t *testing.T) {
	t.Parallel()

	snapshots := []staking.Snapshot{
		{TokenYRewardAmount: 1000, TokenXTotalStakedAmount: 500, SnapshotAt: 200},
		{TokenYRewardAmount: 0, TokenXTotalStakedAmount: 500, SnapshotAt: 300},
		{TokenYRewardAmount: 1 << 62, TokenXTotalStakedAmount: 7, SnapshotAt: 400},
	}

	tests := []struct {
		name string
		pool *staking.Pool
	}{
		{
			name: "v1",
			pool: &staking.Pool{
				Protocol:            staking.ProtocolV1,
				Nonce:               253,
				Version:             1,
				Admin:               solana.NewWallet().PublicKey(),
				TokenXStakeAccount:  solana.NewWallet().PublicKey(),
				TokenYRewardAccount: solana.NewWallet().PublicKey(),
				Snapshots:           snapshots,
			},
		},
		{
			name: "v2",
			pool: &staking.Pool{
				Protocol:            staking.ProtocolV2,
				Nonce:               255,
				Version:             2,
				Admin:               solana.NewWallet().PublicKey(),
				RootAdmin:           solana.NewWallet().PublicKey(),
				TokenXStakeAccount:  solana.NewWallet().PublicKey(),
				TokenYRewardAccount: solana.NewWallet().PublicKey(),
				Fee:                 30,
				FeeAmount:           12_000,
				PenaltyFee:          5,
				MinStakeHours:       72,
				PenaltyAmount:       900,
				TotalReward:         1_000_000,
				Snapshots:           snapshots,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := staking.EncodePool(tt.pool)
			require.NoError(t, err)

			got, err := staking.DecodePool(data)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.pool, got); diff != "" {
				t.Fatalf("pool mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSDK_Staking_Pool_ZeroSnapshotsSkipped(t *testing.T) {
	t.Parallel()

	data := staking.PoolLayoutV1.Alloc()
	got, err := staking.DecodePool(data)
	require.NoError(t, err)
	require.Equal(t, staking.ProtocolV1, got.Protocol)
	require.Empty(t, got.Snapshots)
	require.Zero(t, got.TotalSnapshotReward().Sign())

	// A used slot after unused ones is still found.
	snap := []byte{
		7, 0, 0, 0, 0, 0, 0, 0,
		2, 0, 0, 0, 0, 0, 0, 0,
		9, 0, 0, 0, 0, 0, 0, 0,
	}
	require.NoError(t, staking.PoolLayoutV1.PutBlob(data, "snap_10", snap))
	got, err = staking.DecodePool(data)
	require.NoError(t, err)
	require.Equal(t, []staking.Snapshot{{TokenYRewardAmount: 7, TokenXTotalStakedAmount: 2, SnapshotAt: 9}}, got.Snapshots)
}

func TestSDK_Staking_Pool_TotalSnapshotRewardExceedsU64(t *testing.T) {
	t.Parallel()

	pool := &staking.Pool{Snapshots: []staking.Snapshot{
		{TokenYRewardAmount: ^uint64(0), SnapshotAt: 1},
		{TokenYRewardAmount: ^uint64(0), SnapshotAt: 2},
	}}
	require.Equal(t, "36893488147419103230", pool.TotalSnapshotReward().String())
}

func TestSDK_Staking_Pool_DecodeErrors(t *testing.T) {
	t.Parallel()

	_, err := staking.DecodePool([]byte{0})
	require.ErrorIs(t, err, layout.ErrLayout)

	data := staking.PoolLayoutV2.Alloc()
	data[1] = 2
	_, err = staking.DecodePool(data[:staking.PoolLayoutV2.Span()-1])
	require.ErrorIs(t, err, layout.ErrLayout)

	data[1] = 7
	_, err = staking.DecodePool(data)
	require.ErrorIs(t, err, staking.ErrUnsupportedProtocolVersion)
}

func TestSDK_Staking_DetectProtocolVersion(t *testing.T) {
	t.Parallel()

	for raw, want := range map[byte]staking.ProtocolVersion{0: staking.ProtocolV1, 1: staking.ProtocolV1, 2: staking.ProtocolV2} {
		got, err := staking.DetectProtocolVersion([]byte{0, raw})
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestSDK_Staking_Pool_TooManySnapshots(t *testing.T) {
	t.Parallel()

	pool := &staking.Pool{Protocol: staking.ProtocolV1, Snapshots: make([]staking.Snapshot, staking.MaxSnapshots+1)}
	_, err := staking.EncodePool(pool)
	require.ErrorContains(t, err, "max 50")
}

func TestSDK_Staking_Member_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, m := range []*staking.Member{
		{Protocol: staking.ProtocolV1, TokenXStakedAmount: 100, StakeAt: 1_700_000_000, WithdrawRewardAt: 1_700_000_500},
		{Protocol: staking.ProtocolV2, TokenXStakedAmount: 100, StakeAt: 1, WithdrawRewardAt: 2, UnstakedAmount: 40},
	} {
		data, err := staking.EncodeMember(m)
		require.NoError(t, err)
		got, err := staking.DecodeMember(data, m.Protocol)
		require.NoError(t, err)
		require.Equal(t, m, got)
	}

	_, err := staking.DecodeMember(make([]byte, 31), staking.ProtocolV2)
	require.ErrorIs(t, err, layout.ErrLayout)
}

func TestSDK_Staking_Mint_Decode(t *testing.T) {
	t.Parallel()

	authority := solana.NewWallet().PublicKey()
	data := staking.MintLayout.Alloc()
	require.NoError(t, staking.MintLayout.PutU32(data, "mint_authority_option", 1))
	require.NoError(t, staking.MintLayout.PutPublicKey(data, "mint_authority", authority))
	data[44] = 6
	data[45] = 1

	m, err := staking.DecodeMint(data)
	require.NoError(t, err)
	require.Equal(t, uint8(6), m.Decimals)
	require.True(t, m.IsInitialized)
	require.NotNil(t, m.MintAuthority)
	require.Equal(t, authority, *m.MintAuthority)
	require.Nil(t, m.FreezeAuthority)

	_, err = staking.DecodeMint(data[:81])
	require.ErrorIs(t, err, layout.ErrLayout)
}
