package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/solstake/smartcontract/sdk/go/layout"
	"github.com/malbeclabs/solstake/smartcontract/sdk/go/staking"
	"github.com/spf13/cobra"
)

// actionArgs are the flags common to user actions on a pool.
type actionArgs struct {
	payer  solana.PublicKey
	owner  solana.PublicKey
	pool   solana.PublicKey
	amount float64
}

type actionFunc func(ctx context.Context, client *staking.Client, args actionArgs) (*staking.UnsignedTransaction, error)

// newActionCmd builds a command that assembles one unsigned transaction and
// prints it. ownerFlag names the signing account flag ("owner" or "admin").
func newActionCmd(use, short, ownerFlag string, withAmount bool, run actionFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			var args actionArgs
			if args.owner, err = publicKeyFlag(cmd, ownerFlag); err != nil {
				return err
			}
			if args.payer, err = optionalPublicKeyFlag(cmd, "payer", args.owner); err != nil {
				return err
			}
			poolArg, err := cmd.Flags().GetString("pool")
			if err != nil {
				return fmt.Errorf("failed to get pool flag: %w", err)
			}
			var opts []staking.Option
			if args.pool, opts, err = rt.resolvePool(poolArg); err != nil {
				return err
			}
			if withAmount {
				if args.amount, err = cmd.Flags().GetFloat64("amount"); err != nil {
					return fmt.Errorf("failed to get amount flag: %w", err)
				}
				if args.amount <= 0 {
					return fmt.Errorf("--amount must be positive")
				}
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			tx, err := run(ctx, rt.client(opts...), args)
			if err != nil {
				return err
			}
			printTransaction(cmd.OutOrStdout(), tx)
			return nil
		},
	}
	cmd.Flags().String(ownerFlag, "", "The "+ownerFlag+" account that signs the transaction")
	cmd.Flags().String("payer", "", "The fee payer (defaults to the "+ownerFlag+")")
	cmd.Flags().String("pool", "", "The pool address or deployment name")
	if withAmount {
		cmd.Flags().Float64("amount", 0, "The amount in display units")
	}
	return cmd
}

func printTransaction(w io.Writer, tx *staking.UnsignedTransaction) {
	fmt.Fprintln(w, "Transaction:", tx.Base64())
	fmt.Fprintf(w, "Estimated fee: %d lamports (%s SOL)\n", tx.EstimatedFee, formatAmount(staking.ToUIAmountU64(tx.EstimatedFee, 9)))
}

type InitMemberCmd struct{}

func NewInitMemberCmd() *InitMemberCmd {
	return &InitMemberCmd{}
}

func (c *InitMemberCmd) Command() *cobra.Command {
	return newActionCmd("init-member", "Assemble a transaction creating a member account", "owner", false,
		func(ctx context.Context, client *staking.Client, args actionArgs) (*staking.UnsignedTransaction, error) {
			return client.InitStakeMember(ctx, args.payer, args.owner, args.pool)
		})
}

type StakeCmd struct{}

func NewStakeCmd() *StakeCmd {
	return &StakeCmd{}
}

func (c *StakeCmd) Command() *cobra.Command {
	return newActionCmd("stake", "Assemble a stake transaction", "owner", true,
		func(ctx context.Context, client *staking.Client, args actionArgs) (*staking.UnsignedTransaction, error) {
			return client.StakeByUser(ctx, args.payer, args.owner, args.pool, args.amount)
		})
}

type UnstakeCmd struct{}

func NewUnstakeCmd() *UnstakeCmd {
	return &UnstakeCmd{}
}

func (c *UnstakeCmd) Command() *cobra.Command {
	return newActionCmd("unstake", "Assemble an unstake transaction", "owner", true,
		func(ctx context.Context, client *staking.Client, args actionArgs) (*staking.UnsignedTransaction, error) {
			return client.UnstakeByUser(ctx, args.payer, args.owner, args.pool, args.amount)
		})
}

type ClaimCmd struct{}

func NewClaimCmd() *ClaimCmd {
	return &ClaimCmd{}
}

func (c *ClaimCmd) Command() *cobra.Command {
	return newActionCmd("claim", "Assemble a reward claim transaction", "owner", false,
		func(ctx context.Context, client *staking.Client, args actionArgs) (*staking.UnsignedTransaction, error) {
			return client.ClaimReward(ctx, args.payer, args.owner, args.pool)
		})
}

type DistributeCmd struct{}

func NewDistributeCmd() *DistributeCmd {
	return &DistributeCmd{}
}

func (c *DistributeCmd) Command() *cobra.Command {
	return newActionCmd("distribute", "Assemble a reward distribution transaction", "admin", true,
		func(ctx context.Context, client *staking.Client, args actionArgs) (*staking.UnsignedTransaction, error) {
			return client.DistributeReward(ctx, args.payer, args.owner, args.pool, args.amount)
		})
}

type CreatePoolCmd struct{}

func NewCreatePoolCmd() *CreatePoolCmd {
	return &CreatePoolCmd{}
}

func (c *CreatePoolCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-pool",
		Short: "Assemble a transaction creating a pool and its vaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			req := staking.CreatePoolRequest{
				Program: staking.Program{ID: rt.network.StakingProgramID},
			}
			if req.Payer, err = publicKeyFlag(cmd, "payer"); err != nil {
				return err
			}
			if req.TokenXMint, err = publicKeyFlag(cmd, "mint-x"); err != nil {
				return err
			}
			if req.TokenYMint, err = publicKeyFlag(cmd, "mint-y"); err != nil {
				return err
			}
			if req.Admin, err = optionalPublicKeyFlag(cmd, "admin", req.Payer); err != nil {
				return err
			}
			version, err := cmd.Flags().GetUint8("protocol-version")
			if err != nil {
				return fmt.Errorf("failed to get protocol-version flag: %w", err)
			}
			req.Program.Version = staking.ProtocolVersion(version)

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			created, err := rt.client().CreatePool(ctx, req)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Pool:", layout.PublicKeyText(created.Pool.PublicKey()))
			fmt.Fprintln(w, "Stake vault:", layout.PublicKeyText(created.StakeVault.PublicKey()))
			fmt.Fprintln(w, "Reward vault:", layout.PublicKeyText(created.RewardVault.PublicKey()))
			fmt.Fprintln(w, "Authority:", layout.PublicKeyText(created.Authority))
			printTransaction(w, created.Transaction)
			return nil
		},
	}
	cmd.Flags().String("payer", "", "The fee payer")
	cmd.Flags().String("admin", "", "The pool admin (defaults to the payer)")
	cmd.Flags().String("mint-x", "", "The staked token mint")
	cmd.Flags().String("mint-y", "", "The reward token mint")
	cmd.Flags().Uint8("protocol-version", uint8(staking.ProtocolV2), "The pool layout version")
	return cmd
}
