package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/malbeclabs/solstake/config"
	"github.com/malbeclabs/solstake/internal/metrics"
	"github.com/spf13/cobra"
)

type ExitCode int

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

func Run(info BuildInfo) ExitCode {
	metrics.BuildInfo.WithLabelValues(info.Version, info.Commit, info.Date).Set(1)

	rootCmd := newRootCmd()
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", info.Version, info.Commit, info.Date)

	if err := rootCmd.Execute(); err != nil {
		return exitCodeError
	}
	return exitCodeSuccess
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "staking-cli",
		Short:        "Read staking pools and assemble unsigned staking transactions.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := cmd.Help()
			if err != nil {
				return fmt.Errorf("failed to show help: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "set debug logging level")
	rootCmd.PersistentFlags().StringP("env", "e", config.EnvDevnet, "The network environment to use (mainnet-beta, testnet, devnet, localnet)")
	rootCmd.PersistentFlags().String("deployments", "", "Path to a deployments file naming known pools")

	rootCmd.AddCommand(
		NewPoolCmd().Command(),
		NewMemberCmd().Command(),
		NewClaimableCmd().Command(),
		NewBalanceCmd().Command(),
		NewInitMemberCmd().Command(),
		NewStakeCmd().Command(),
		NewUnstakeCmd().Command(),
		NewClaimCmd().Command(),
		NewDistributeCmd().Command(),
		NewCreatePoolCmd().Command(),
		NewSendCmd().Command(),
	)
	return rootCmd
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
