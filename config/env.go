package config

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

const (
	EnvMainnetBeta = "mainnet-beta"
	EnvMainnet     = "mainnet"
	EnvTestnet     = "testnet"
	EnvDevnet      = "devnet"
	EnvLocalnet    = "localnet"

	// EnvVarSolanaRPCURL overrides the RPC URL of any environment.
	EnvVarSolanaRPCURL = "SOLANA_RPC_URL"
	// EnvVarStakingProgramID overrides the fallback staking program ID.
	EnvVarStakingProgramID = "STAKING_PROGRAM_ID"
)

var (
	ErrInvalidEnvironment = fmt.Errorf("invalid environment")
)

// NetworkConfig holds the endpoints of one cluster. StakingProgramID is only
// a fallback; the SDK resolves a pool's program from its owning account.
type NetworkConfig struct {
	Moniker          string
	RPCURL           string
	StakingProgramID solana.PublicKey
}

// NetworkConfigForEnv returns the endpoints for env, applying environment variable overrides.
func NetworkConfigForEnv(env string) (*NetworkConfig, error) {
	var config *NetworkConfig
	switch env {
	case EnvMainnetBeta, EnvMainnet:
		config = &NetworkConfig{
			Moniker: EnvMainnetBeta,
			RPCURL:  MainnetSolanaRPC,
		}
	case EnvTestnet:
		config = &NetworkConfig{
			Moniker: EnvTestnet,
			RPCURL:  TestnetSolanaRPC,
		}
	case EnvDevnet:
		config = &NetworkConfig{
			Moniker: EnvDevnet,
			RPCURL:  DevnetSolanaRPC,
		}
	case EnvLocalnet:
		config = &NetworkConfig{
			Moniker: EnvLocalnet,
			RPCURL:  LocalnetSolanaRPC,
		}
	default:
		// We intentionally do not include localnet in the error message.
		return nil, fmt.Errorf("%w %q, must be one of: %s, %s, %s", ErrInvalidEnvironment, env, EnvMainnetBeta, EnvTestnet, EnvDevnet)
	}

	programID := DefaultStakingProgramID
	if override := os.Getenv(EnvVarStakingProgramID); override != "" {
		programID = override
	}
	pk, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse staking program ID: %w", err)
	}
	config.StakingProgramID = pk

	if rpcURL := os.Getenv(EnvVarSolanaRPCURL); rpcURL != "" {
		config.RPCURL = rpcURL
	}
	return config, nil
}
