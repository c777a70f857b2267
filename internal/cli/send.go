package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"os/signal"
	"syscall"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/solstake/smartcontract/sdk/go/staking"
	"github.com/spf13/cobra"
)

type SendCmd struct{}

func NewSendCmd() *SendCmd {
	return &SendCmd{}
}

func (c *SendCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <base64 transaction>",
		Short: "Submit an externally signed transaction and wait for finalization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			skipPreflight, err := cmd.Flags().GetBool("skip-preflight")
			if err != nil {
				return fmt.Errorf("failed to get skip-preflight flag: %w", err)
			}
			tx, err := decodeTransaction(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			sig, res, err := staking.NewSubmitter(rt.log, rt.rpc).Submit(ctx, tx, &staking.SubmitOptions{SkipPreflight: skipPreflight})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signature:", sig)
			fmt.Fprintln(cmd.OutOrStdout(), "Slot:", res.Slot)
			return nil
		},
	}
	cmd.Flags().Bool("skip-preflight", false, "Skip the preflight simulation")
	return cmd
}

func decodeTransaction(text string) (*solana.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse transaction: %w", err)
	}
	return tx, nil
}
