package staking_test

import (
	"testing"

	"github.com/malbeclabs/solstake/smartcontract/sdk/go/staking"
	"github.com/stretchr/testify/require"
)

func TestSDK_Staking_ComputeClaimable(t *testing.T) {
	t.Parallel()

	pool := &staking.PoolView{Pool: &staking.Pool{Snapshots: []staking.Snapshot{
		{TokenYRewardAmount: 1000, TokenXTotalStakedAmount: 500, SnapshotAt: 40},
		{TokenYRewardAmount: 1000, TokenXTotalStakedAmount: 500, SnapshotAt: 200},
	}}}

	tests := []struct {
		name   string
		member *staking.MemberView
		want   float64
	}{
		{
			name: "only snapshots after stake and withdraw count",
			member: &staking.MemberView{Exists: true, Member: staking.Member{
				TokenXStakedAmount: 100, StakeAt: 100, WithdrawRewardAt: 50,
			}},
			want: 200,
		},
		{
			name: "snapshot at the stake time is excluded",
			member: &staking.MemberView{Exists: true, Member: staking.Member{
				TokenXStakedAmount: 100, StakeAt: 200, WithdrawRewardAt: 0,
			}},
			want: 0,
		},
		{
			name: "withdraw after every snapshot",
			member: &staking.MemberView{Exists: true, Member: staking.Member{
				TokenXStakedAmount: 100, StakeAt: 10, WithdrawRewardAt: 250,
			}},
			want: 0,
		},
		{
			name: "both snapshots count",
			member: &staking.MemberView{Exists: true, Member: staking.Member{
				TokenXStakedAmount: 250, StakeAt: 1, WithdrawRewardAt: 1,
			}},
			want: 1000,
		},
		{
			name:   "empty member",
			member: &staking.MemberView{},
			want:   0,
		},
		{
			name:   "nil member",
			member: nil,
			want:   0,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, staking.ComputeClaimable(tt.member, pool))
		})
	}
}

func TestSDK_Staking_ComputeClaimable_ZeroTotalStakeSkipped(t *testing.T) {
	t.Parallel()

	pool := &staking.PoolView{Pool: &staking.Pool{Snapshots: []staking.Snapshot{
		{TokenYRewardAmount: 1000, TokenXTotalStakedAmount: 0, SnapshotAt: 300},
		{TokenYRewardAmount: 0, TokenXTotalStakedAmount: 100, SnapshotAt: 400},
		{TokenYRewardAmount: 90, TokenXTotalStakedAmount: 300, SnapshotAt: 500},
	}}}
	member := &staking.MemberView{Exists: true, Member: staking.Member{TokenXStakedAmount: 100, StakeAt: 1}}

	require.InDelta(t, 30.0, staking.ComputeClaimable(member, pool), 1e-9)
}

func TestSDK_Staking_ComputeClaimable_ZeroTotalStakeBeforeStake(t *testing.T) {
	t.Parallel()

	pool := &staking.PoolView{Pool: &staking.Pool{Snapshots: []staking.Snapshot{
		{TokenYRewardAmount: 1000, TokenXTotalStakedAmount: 0, SnapshotAt: 40},
		{TokenYRewardAmount: 1000, TokenXTotalStakedAmount: 500, SnapshotAt: 200},
	}}}
	member := &staking.MemberView{Exists: true, Member: staking.Member{
		TokenXStakedAmount: 100, StakeAt: 100, WithdrawRewardAt: 50,
	}}

	require.Equal(t, 200.0, staking.ComputeClaimable(member, pool))
}
