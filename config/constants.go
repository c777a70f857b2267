package config

const (
	// Staking program constants.
	DefaultStakingProgramID = "4BJgCTv7QcykyHDK8x4Ajf2XGzqL776qDfSPQjKmSrK9"
	DefaultPoolAddress      = "FEmYwTTdM1SrUmtYu2xZjYwDXxVRXKjKDJHe2L1siWTL"

	// Solana RPC constants.
	MainnetSolanaRPC  = "https://api.mainnet-beta.solana.com"
	TestnetSolanaRPC  = "https://api.testnet.solana.com"
	DevnetSolanaRPC   = "https://api.devnet.solana.com"
	LocalnetSolanaRPC = "http://localhost:8899"
)
