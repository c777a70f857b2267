package cli

import (
	"bytes"
	"encoding/base64"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/solstake/config"
	"github.com/malbeclabs/solstake/smartcontract/sdk/go/staking"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestCLI_RenderPool(t *testing.T) {
	t.Parallel()

	view := &staking.PoolView{
		Pool: &staking.Pool{
			Protocol: staking.ProtocolV2,
			Fee:      25,
			Snapshots: []staking.Snapshot{
				{TokenYRewardAmount: 2_000_000_000, TokenXTotalStakedAmount: 1_500_000, SnapshotAt: 1_700_000_000},
			},
		},
		TokenXDecimals:    6,
		TokenYDecimals:    9,
		TokenXStakeAmount: 1.5,
		SnapshotReward:    big.NewInt(2_000_000_000),
		RewardAmount:      2,
	}

	var buf bytes.Buffer
	renderPool(&buf, view)
	out := buf.String()
	require.Contains(t, out, "protocol v2")
	require.Contains(t, out, "Fee: 25")
	require.Contains(t, out, "staked 1.5")
	require.Contains(t, out, "distributed 2")
	require.Contains(t, out, "2023-11-14T22:13:20Z")
	require.Contains(t, out, "Total Staked")
}

func TestCLI_RenderPool_NoSnapshots(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderPool(&buf, &staking.PoolView{Pool: &staking.Pool{Protocol: staking.ProtocolV1}})
	require.Contains(t, buf.String(), "No snapshots")
	require.NotContains(t, buf.String(), "Root admin")
}

func TestCLI_RenderMember_NotInitialized(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderMember(&buf, &staking.MemberView{}, &staking.PoolView{Pool: &staking.Pool{}})
	require.Contains(t, buf.String(), "Not initialized")
}

func TestCLI_ResolvePool(t *testing.T) {
	t.Parallel()

	pool := solana.NewWallet().PublicKey()
	deployments, err := config.ParseDeployments([]byte(
		"pools:\n  - name: main\n    env: devnet\n    pool: " + pool.String() + "\n    protocol_version: 2\n",
	))
	require.NoError(t, err)

	rt := &runtime{env: config.EnvDevnet}

	got, opts, err := rt.resolvePool(pool.String())
	require.NoError(t, err)
	require.Equal(t, pool, got)
	require.Empty(t, opts)

	_, _, err = rt.resolvePool("main")
	require.ErrorContains(t, err, "no deployments file")

	rt.deployments = deployments
	got, opts, err = rt.resolvePool("main")
	require.NoError(t, err)
	require.Equal(t, pool, got)
	require.Len(t, opts, 1)

	_, _, err = rt.resolvePool("other")
	require.ErrorIs(t, err, config.ErrDeploymentNotFound)
}

func TestCLI_ResolvePool_InvalidVersion(t *testing.T) {
	t.Parallel()

	deployments, err := config.ParseDeployments([]byte(
		"pools:\n  - name: main\n    env: devnet\n    pool: " + solana.NewWallet().PublicKey().String() + "\n    protocol_version: 7\n",
	))
	require.NoError(t, err)

	rt := &runtime{env: config.EnvDevnet, deployments: deployments}
	_, _, err = rt.resolvePool("main")
	require.ErrorIs(t, err, staking.ErrUnsupportedProtocolVersion)
}

func TestCLI_DecodeTransaction(t *testing.T) {
	t.Parallel()

	_, err := decodeTransaction("%%%")
	require.ErrorContains(t, err, "failed to decode transaction")

	_, err = decodeTransaction(base64.StdEncoding.EncodeToString([]byte{1}))
	require.ErrorContains(t, err, "failed to parse transaction")

	payer := solana.NewWallet().PublicKey()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{staking.BuildTransferInstruction(payer, payer, 1)},
		solana.Hash{1},
		solana.TransactionPayer(payer),
	)
	require.NoError(t, err)
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)
	raw, err := tx.MarshalBinary()
	require.NoError(t, err)

	got, err := decodeTransaction(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	require.Equal(t, payer, got.Message.AccountKeys[0])
}

func TestCLI_ActionFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{
			name:     "invalid env",
			args:     []string{"--env", "moon", "stake", "--owner", solana.NewWallet().PublicKey().String()},
			contains: "invalid environment",
		},
		{
			name:     "missing owner",
			args:     []string{"stake", "--pool", solana.NewWallet().PublicKey().String(), "--amount", "1"},
			contains: "--owner is required",
		},
		{
			name:     "invalid admin",
			args:     []string{"distribute", "--admin", "nope"},
			contains: "invalid --admin",
		},
		{
			name:     "invalid payer",
			args:     []string{"stake", "--owner", solana.NewWallet().PublicKey().String(), "--payer", "nope"},
			contains: "invalid --payer",
		},
		{
			name:     "non-positive amount",
			args:     []string{"unstake", "--owner", solana.NewWallet().PublicKey().String(), "--pool", solana.NewWallet().PublicKey().String()},
			contains: "--amount must be positive",
		},
		{
			name:     "missing deployments file",
			args:     []string{"--deployments", filepath.Join(os.TempDir(), "does-not-exist.yaml"), "pool", "main"},
			contains: "failed to read deployments file",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := newRootCmd()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs(tt.args)
			err := cmd.Execute()
			require.ErrorContains(t, err, tt.contains)
		})
	}
}

func TestCLI_OptionalPublicKeyFlag(t *testing.T) {
	t.Parallel()

	fallback := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()

	cmd := &cobra.Command{}
	cmd.Flags().String("payer", "", "")
	cmd.Flags().Int("admin", 0, "")

	got, err := optionalPublicKeyFlag(cmd, "payer", fallback)
	require.NoError(t, err)
	require.Equal(t, fallback, got)

	require.NoError(t, cmd.Flags().Set("payer", payer.String()))
	got, err = optionalPublicKeyFlag(cmd, "payer", fallback)
	require.NoError(t, err)
	require.Equal(t, payer, got)

	_, err = optionalPublicKeyFlag(cmd, "admin", fallback)
	require.ErrorContains(t, err, "failed to get admin flag")

	_, err = optionalPublicKeyFlag(cmd, "owner", fallback)
	require.ErrorContains(t, err, "failed to get owner flag")
}
