package staking

import (
	"context"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

// RPCClient is the subset of the Solana JSON-RPC API the SDK uses.
// *solanarpc.Client satisfies it.
type RPCClient interface {
	GetAccountInfo(context.Context, solana.PublicKey) (*solanarpc.GetAccountInfoResult, error)
	GetTokenAccountBalance(context.Context, solana.PublicKey, solanarpc.CommitmentType) (*solanarpc.GetTokenAccountBalanceResult, error)
	GetLatestBlockhash(context.Context, solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error)
	GetFeeForMessage(context.Context, string, solanarpc.CommitmentType) (*solanarpc.GetFeeForMessageResult, error)
	GetMinimumBalanceForRentExemption(context.Context, uint64, solanarpc.CommitmentType) (uint64, error)
	SendTransactionWithOpts(context.Context, *solana.Transaction, solanarpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(context.Context, bool, ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error)
	GetTransaction(context.Context, solana.Signature, *solanarpc.GetTransactionOpts) (*solanarpc.GetTransactionResult, error)
}

var _ RPCClient = (*solanarpc.Client)(nil)
