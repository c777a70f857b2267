package staking_test

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/lmittmann/tint"
	"github.com/malbeclabs/solstake/smartcontract/sdk/go/staking"
	"github.com/stretchr/testify/require"
)

var (
	log *slog.Logger
)

// TestMain sets up the test environment with a global logger.
func TestMain(m *testing.M) {
	flag.Parse()
	verbose := false
	if vFlag := flag.Lookup("test.v"); vFlag != nil && vFlag.Value.String() == "true" {
		verbose = true
	}
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	log = slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.RFC3339,
		AddSource:  true,
	}))

	os.Exit(m.Run())
}

type mockRPCClient struct {
	staking.RPCClient

	GetAccountInfoFunc                    func(context.Context, solana.PublicKey) (*solanarpc.GetAccountInfoResult, error)
	GetTokenAccountBalanceFunc            func(context.Context, solana.PublicKey, solanarpc.CommitmentType) (*solanarpc.GetTokenAccountBalanceResult, error)
	GetLatestBlockhashFunc                func(context.Context, solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error)
	GetFeeForMessageFunc                  func(context.Context, string, solanarpc.CommitmentType) (*solanarpc.GetFeeForMessageResult, error)
	GetMinimumBalanceForRentExemptionFunc func(context.Context, uint64, solanarpc.CommitmentType) (uint64, error)
	SendTransactionWithOptsFunc           func(context.Context, *solana.Transaction, solanarpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatusesFunc              func(context.Context, bool, ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error)
	GetTransactionFunc                    func(context.Context, solana.Signature, *solanarpc.GetTransactionOpts) (*solanarpc.GetTransactionResult, error)
}

func (m *mockRPCClient) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
	return m.GetAccountInfoFunc(ctx, account)
}

func (m *mockRPCClient) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, ct solanarpc.CommitmentType) (*solanarpc.GetTokenAccountBalanceResult, error) {
	return m.GetTokenAccountBalanceFunc(ctx, account, ct)
}

func (m *mockRPCClient) GetLatestBlockhash(ctx context.Context, ct solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error) {
	return m.GetLatestBlockhashFunc(ctx, ct)
}

func (m *mockRPCClient) GetFeeForMessage(ctx context.Context, msg string, ct solanarpc.CommitmentType) (*solanarpc.GetFeeForMessageResult, error) {
	return m.GetFeeForMessageFunc(ctx, msg, ct)
}

func (m *mockRPCClient) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64, ct solanarpc.CommitmentType) (uint64, error) {
	return m.GetMinimumBalanceForRentExemptionFunc(ctx, size, ct)
}

func (m *mockRPCClient) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts solanarpc.TransactionOpts) (solana.Signature, error) {
	return m.SendTransactionWithOptsFunc(ctx, tx, opts)
}

func (m *mockRPCClient) GetSignatureStatuses(ctx context.Context, search bool, sigs ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
	return m.GetSignatureStatusesFunc(ctx, search, sigs...)
}

func (m *mockRPCClient) GetTransaction(ctx context.Context, sig solana.Signature, opts *solanarpc.GetTransactionOpts) (*solanarpc.GetTransactionResult, error) {
	return m.GetTransactionFunc(ctx, sig, opts)
}

const (
	testFee       = uint64(5000)
	testTokenRent = uint64(2039280)
)

var testBlockhash = solana.MustHashFromBase58("5NzX7jrPWeTkGsDnVnszdEa7T3Yyr3nSgyc78z3CwjWQ")

// ledger is an in-memory set of accounts served through mockRPCClient.
type ledger struct {
	mu       sync.Mutex
	accounts map[solana.PublicKey]ledgerAccount
}

type ledgerAccount struct {
	owner solana.PublicKey
	data  []byte
}

func newLedger() *ledger {
	return &ledger{accounts: make(map[solana.PublicKey]ledgerAccount)}
}

func (l *ledger) set(address, owner solana.PublicKey, data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[address] = ledgerAccount{owner: owner, data: data}
}

func (l *ledger) getAccountInfo(_ context.Context, address solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acc, ok := l.accounts[address]
	if !ok {
		return nil, solanarpc.ErrNotFound
	}
	return &solanarpc.GetAccountInfoResult{
		Value: &solanarpc.Account{
			Owner: acc.owner,
			Data:  solanarpc.DataBytesOrJSONFromBytes(acc.data),
		},
	}, nil
}

// rpc returns a mock that serves the ledger and fixed network values.
func (l *ledger) rpc() *mockRPCClient {
	return &mockRPCClient{
		GetAccountInfoFunc: l.getAccountInfo,
		GetLatestBlockhashFunc: func(context.Context, solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error) {
			return &solanarpc.GetLatestBlockhashResult{
				Value: &solanarpc.LatestBlockhashResult{Blockhash: testBlockhash},
			}, nil
		},
		GetFeeForMessageFunc: func(context.Context, string, solanarpc.CommitmentType) (*solanarpc.GetFeeForMessageResult, error) {
			fee := testFee
			return &solanarpc.GetFeeForMessageResult{Value: &fee}, nil
		},
		GetMinimumBalanceForRentExemptionFunc: func(_ context.Context, size uint64, _ solanarpc.CommitmentType) (uint64, error) {
			if size == staking.TokenAccountSize {
				return testTokenRent, nil
			}
			return size * 6960, nil
		},
	}
}

// poolFixture is a pool registered in a ledger together with its vaults and mints.
type poolFixture struct {
	ledger    *ledger
	programID solana.PublicKey
	pool      solana.PublicKey
	authority solana.PublicKey
	record    *staking.Pool
	mintX     solana.PublicKey
	mintY     solana.PublicKey
}

func newPoolFixture(t *testing.T, version staking.ProtocolVersion, mintY solana.PublicKey, snapshots ...staking.Snapshot) *poolFixture {
	t.Helper()

	f := &poolFixture{
		ledger:    newLedger(),
		programID: solana.NewWallet().PublicKey(),
		pool:      solana.NewWallet().PublicKey(),
		mintX:     solana.NewWallet().PublicKey(),
		mintY:     mintY,
	}
	authority, nonce, err := staking.DerivePoolAuthority(f.pool, f.programID)
	require.NoError(t, err)
	f.authority = authority

	f.record = &staking.Pool{
		Protocol:            version,
		Nonce:               nonce,
		Version:             uint8(version),
		Admin:               solana.NewWallet().PublicKey(),
		TokenXStakeAccount:  solana.NewWallet().PublicKey(),
		TokenYRewardAccount: solana.NewWallet().PublicKey(),
		Snapshots:           snapshots,
	}
	if version == staking.ProtocolV2 {
		f.record.RootAdmin = solana.NewWallet().PublicKey()
		f.record.Fee = 25
	}
	data, err := staking.EncodePool(f.record)
	require.NoError(t, err)
	f.ledger.set(f.pool, f.programID, data)

	f.ledger.set(f.mintX, solana.TokenProgramID, mintData(t, 6))
	f.ledger.set(f.mintY, solana.TokenProgramID, mintData(t, 9))
	f.ledger.set(f.record.TokenXStakeAccount, solana.TokenProgramID, tokenAccountData(t, f.mintX, authority, 1_500_000))
	f.ledger.set(f.record.TokenYRewardAccount, solana.TokenProgramID, tokenAccountData(t, f.mintY, authority, 0))
	return f
}

func (f *poolFixture) client(opts ...staking.Option) (*staking.Client, *mockRPCClient) {
	rpc := f.ledger.rpc()
	return staking.New(log, rpc, opts...), rpc
}

func (f *poolFixture) addMember(t *testing.T, owner solana.PublicKey, member staking.Member) solana.PublicKey {
	t.Helper()
	address, _, err := staking.DeriveMemberAddress(owner, f.pool, f.programID)
	require.NoError(t, err)
	member.Protocol = f.record.Protocol
	data, err := staking.EncodeMember(&member)
	require.NoError(t, err)
	f.ledger.set(address, f.programID, data)
	return address
}

func (f *poolFixture) addTokenAccount(t *testing.T, owner, mint solana.PublicKey) solana.PublicKey {
	t.Helper()
	ata, _, err := staking.DeriveAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	f.ledger.set(ata, solana.TokenProgramID, tokenAccountData(t, mint, owner, 0))
	return ata
}

func mintData(t *testing.T, decimals uint8) []byte {
	t.Helper()
	buf := staking.MintLayout.Alloc()
	require.NoError(t, staking.MintLayout.PutU8(buf, "decimals", decimals))
	require.NoError(t, staking.MintLayout.PutBool(buf, "is_initialized", true))
	require.NoError(t, staking.MintLayout.PutU64(buf, "supply", 1_000_000_000))
	return buf
}

func tokenAccountData(t *testing.T, mint, owner solana.PublicKey, amount uint64) []byte {
	t.Helper()
	buf := make([]byte, staking.TokenAccountSize)
	require.NoError(t, staking.TokenAccountLayout.PutPublicKey(buf, "mint", mint))
	require.NoError(t, staking.TokenAccountLayout.PutPublicKey(buf, "owner", owner))
	require.NoError(t, staking.TokenAccountLayout.PutU64(buf, "amount", amount))
	return buf
}

// compiledProgramIDs lists the program of each instruction in tx.
func compiledProgramIDs(t *testing.T, tx *solana.Transaction) []solana.PublicKey {
	t.Helper()
	out := make([]solana.PublicKey, 0, len(tx.Message.Instructions))
	for _, ix := range tx.Message.Instructions {
		out = append(out, tx.Message.AccountKeys[ix.ProgramIDIndex])
	}
	return out
}

// compiledOpcodes lists the first data byte of each instruction in tx, or -1 for empty data.
func compiledOpcodes(t *testing.T, tx *solana.Transaction) []int {
	t.Helper()
	out := make([]int, 0, len(tx.Message.Instructions))
	for _, ix := range tx.Message.Instructions {
		if len(ix.Data) == 0 {
			out = append(out, -1)
			continue
		}
		out = append(out, int(ix.Data[0]))
	}
	return out
}

// testContext returns a context that is canceled when the test finishes,
// matching testing.T.Context on newer Go releases.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
