package cli

import (
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/malbeclabs/solstake/config"
	"github.com/malbeclabs/solstake/smartcontract/sdk/go/layout"
	"github.com/malbeclabs/solstake/smartcontract/sdk/go/staking"
	"github.com/spf13/cobra"
)

// runtime is the state shared by every subcommand, built from the root flags.
type runtime struct {
	log         *slog.Logger
	env         string
	network     *config.NetworkConfig
	deployments *config.Deployments
	rpc         *solanarpc.Client
}

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
	if err != nil {
		return nil, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	env, err := cmd.Root().PersistentFlags().GetString("env")
	if err != nil {
		return nil, fmt.Errorf("failed to get env flag: %w", err)
	}
	deploymentsPath, err := cmd.Root().PersistentFlags().GetString("deployments")
	if err != nil {
		return nil, fmt.Errorf("failed to get deployments flag: %w", err)
	}

	network, err := config.NetworkConfigForEnv(env)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		log:     newLogger(verbose),
		env:     env,
		network: network,
		rpc:     solanarpc.New(network.RPCURL),
	}
	if deploymentsPath != "" {
		rt.deployments, err = config.LoadDeployments(deploymentsPath)
		if err != nil {
			return nil, err
		}
	}
	rt.log.Debug("Using network", "env", network.Moniker, "rpc", network.RPCURL)
	return rt, nil
}

// resolvePool accepts a base-58 pool address or the name of a deployment.
// A deployment pins the protocol version used to decode the pool.
func (rt *runtime) resolvePool(arg string) (solana.PublicKey, []staking.Option, error) {
	if pk, err := layout.PublicKeyFromText(arg); err == nil {
		return pk, nil, nil
	}
	if rt.deployments == nil {
		return solana.PublicKey{}, nil, fmt.Errorf("%q is not a pool address and no deployments file was given", arg)
	}
	d, err := rt.deployments.Lookup(rt.env, arg)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	var opts []staking.Option
	if d.ProtocolVersion != 0 {
		v := staking.ProtocolVersion(d.ProtocolVersion)
		if !v.Valid() {
			return solana.PublicKey{}, nil, fmt.Errorf("deployment %q: %w: %d", d.Name, staking.ErrUnsupportedProtocolVersion, d.ProtocolVersion)
		}
		opts = append(opts, staking.WithProtocolVersion(v))
	}
	return d.PoolAddress, opts, nil
}

func (rt *runtime) client(opts ...staking.Option) *staking.Client {
	return staking.New(rt.log, rt.rpc, opts...)
}

func publicKeyFlag(cmd *cobra.Command, name string) (solana.PublicKey, error) {
	text, err := cmd.Flags().GetString(name)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	if text == "" {
		return solana.PublicKey{}, fmt.Errorf("--%s is required", name)
	}
	pk, err := layout.PublicKeyFromText(text)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return pk, nil
}

// optionalPublicKeyFlag returns fallback when the flag is empty.
func optionalPublicKeyFlag(cmd *cobra.Command, name string, fallback solana.PublicKey) (solana.PublicKey, error) {
	text, err := cmd.Flags().GetString(name)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	if text == "" {
		return fallback, nil
	}
	return publicKeyFlag(cmd, name)
}
