package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/malbeclabs/solstake/smartcontract/sdk/go/layout"
	"github.com/malbeclabs/solstake/smartcontract/sdk/go/staking"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type PoolCmd struct{}

func NewPoolCmd() *PoolCmd {
	return &PoolCmd{}
}

func (c *PoolCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "pool <pool>",
		Short: "Show a staking pool and its reward snapshots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			pool, opts, err := rt.resolvePool(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			view, err := rt.client(opts...).ReadPool(ctx, pool)
			if err != nil {
				return err
			}
			renderPool(cmd.OutOrStdout(), view)
			return nil
		},
	}
}

func renderPool(w io.Writer, view *staking.PoolView) {
	fmt.Fprintln(w, "Pool:", layout.PublicKeyText(view.Address))
	fmt.Fprintln(w, "Program:", layout.PublicKeyText(view.ProgramID), "protocol", view.Protocol)
	fmt.Fprintln(w, "Authority:", layout.PublicKeyText(view.Authority))
	fmt.Fprintln(w, "Admin:", layout.PublicKeyText(view.Admin))
	if view.Protocol == staking.ProtocolV2 {
		fmt.Fprintln(w, "Root admin:", layout.PublicKeyText(view.RootAdmin))
		fmt.Fprintf(w, "Fee: %d (collected %d), penalty %d after %dh\n", view.Fee, view.FeeAmount, view.PenaltyFee, view.MinStakeHours)
	}
	fmt.Fprintf(w, "Token X: %s (%d decimals), staked %s\n", layout.PublicKeyText(view.TokenXMint), view.TokenXDecimals, formatAmount(view.TokenXStakeAmount))
	fmt.Fprintf(w, "Token Y: %s (%d decimals), distributed %s\n", layout.PublicKeyText(view.TokenYMint), view.TokenYDecimals, formatAmount(view.RewardAmount))

	if len(view.Snapshots) == 0 {
		fmt.Fprintln(w, "No snapshots")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader([]string{"#", "Taken At (UTC)", "Reward", "Total Staked"})
	for i, s := range view.Snapshots {
		table.Append([]string{
			fmt.Sprintf("%d", i),
			time.Unix(int64(s.SnapshotAt), 0).UTC().Format(time.RFC3339),
			formatAmount(staking.ToUIAmountU64(s.TokenYRewardAmount, view.TokenYDecimals)),
			formatAmount(staking.ToUIAmountU64(s.TokenXTotalStakedAmount, view.TokenXDecimals)),
		})
	}
	table.Render()
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.9g", v)
}

type MemberCmd struct{}

func NewMemberCmd() *MemberCmd {
	return &MemberCmd{}
}

func (c *MemberCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "member <owner> <pool>",
		Short: "Show the member account of an owner in a pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			owner, err := layout.PublicKeyFromText(args[0])
			if err != nil {
				return fmt.Errorf("invalid owner: %w", err)
			}
			pool, opts, err := rt.resolvePool(args[1])
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			client := rt.client(opts...)
			view, err := client.ReadPool(ctx, pool)
			if err != nil {
				return err
			}
			member, err := client.ReadMember(ctx, owner, pool)
			if err != nil {
				return err
			}
			renderMember(cmd.OutOrStdout(), member, view)
			return nil
		},
	}
}

func renderMember(w io.Writer, member *staking.MemberView, pool *staking.PoolView) {
	fmt.Fprintln(w, "Member:", layout.PublicKeyText(member.Address))
	if !member.Exists {
		fmt.Fprintln(w, "Not initialized")
		return
	}
	fmt.Fprintln(w, "Staked:", formatAmount(staking.ToUIAmountU64(member.TokenXStakedAmount, pool.TokenXDecimals)))
	fmt.Fprintln(w, "Stake at:", time.Unix(int64(member.StakeAt), 0).UTC().Format(time.RFC3339))
	fmt.Fprintln(w, "Reward withdrawn at:", time.Unix(int64(member.WithdrawRewardAt), 0).UTC().Format(time.RFC3339))
	if member.Protocol == staking.ProtocolV2 {
		fmt.Fprintln(w, "Unstaked:", formatAmount(staking.ToUIAmountU64(member.UnstakedAmount, pool.TokenXDecimals)))
	}
	fmt.Fprintln(w, "Claimable:", formatAmount(staking.ComputeClaimable(member, pool)))
}

type ClaimableCmd struct{}

func NewClaimableCmd() *ClaimableCmd {
	return &ClaimableCmd{}
}

func (c *ClaimableCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "claimable <owner> <pool>",
		Short: "Estimate the reward an owner can claim",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			owner, err := layout.PublicKeyFromText(args[0])
			if err != nil {
				return fmt.Errorf("invalid owner: %w", err)
			}
			pool, opts, err := rt.resolvePool(args[1])
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			reward, err := rt.client(opts...).ClaimableReward(ctx, owner, pool)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatAmount(reward))
			return nil
		},
	}
}

type BalanceCmd struct{}

func NewBalanceCmd() *BalanceCmd {
	return &BalanceCmd{}
}

func (c *BalanceCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <owner> <mint>",
		Short: "Show the associated token account balance of an owner",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			owner, err := layout.PublicKeyFromText(args[0])
			if err != nil {
				return fmt.Errorf("invalid owner: %w", err)
			}
			mint, err := layout.PublicKeyFromText(args[1])
			if err != nil {
				return fmt.Errorf("invalid mint: %w", err)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			balance, err := rt.client().GetBalance(ctx, owner, mint)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatAmount(balance))
			return nil
		},
	}
}
