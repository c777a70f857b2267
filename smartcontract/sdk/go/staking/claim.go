package staking

// ComputeClaimable estimates the raw reward member can claim from pool.
//
// A snapshot counts only when it was taken strictly after both the member's
// last stake and last reward withdrawal, and recorded a non-zero total
// stake. Each counted snapshot contributes reward * staked / totalStaked.
// The program computes the authoritative amount on chain.
func ComputeClaimable(member *MemberView, pool *PoolView) float64 {
	if member == nil || !member.Exists || pool == nil || pool.Pool == nil {
		return 0
	}
	staked := float64(member.TokenXStakedAmount)

	var claimable float64
	for _, s := range pool.Snapshots {
		if s.SnapshotAt <= member.StakeAt || s.SnapshotAt <= member.WithdrawRewardAt {
			continue
		}
		if s.TokenXTotalStakedAmount == 0 {
			continue
		}
		claimable += float64(s.TokenYRewardAmount) * staked / float64(s.TokenXTotalStakedAmount)
	}
	return claimable
}
