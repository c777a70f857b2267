package staking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/jonboulle/clockwork"
)

// Submitter sends transactions that were signed outside the SDK and waits
// for them to finalize.
type Submitter struct {
	log                   *slog.Logger
	rpc                   RPCClient
	clock                 clockwork.Clock
	waitForVisibleTimeout time.Duration
	pollInterval          time.Duration
}

type SubmitterOption func(*Submitter)

func WithWaitForVisibleTimeout(timeout time.Duration) SubmitterOption {
	return func(s *Submitter) {
		s.waitForVisibleTimeout = timeout
	}
}

func WithClock(clock clockwork.Clock) SubmitterOption {
	return func(s *Submitter) {
		s.clock = clock
	}
}

func NewSubmitter(log *slog.Logger, rpc RPCClient, opts ...SubmitterOption) *Submitter {
	s := &Submitter{
		log:                   log,
		rpc:                   rpc,
		clock:                 clockwork.NewRealClock(),
		waitForVisibleTimeout: 3 * time.Second,
		pollInterval:          250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SubmitOptions struct {
	SkipPreflight bool
}

// Submit sends tx and blocks until it is finalized or ctx is done.
func (s *Submitter) Submit(ctx context.Context, tx *solana.Transaction, opts *SubmitOptions) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	if opts == nil {
		opts = &SubmitOptions{}
	}
	if err := checkFullySigned(tx); err != nil {
		return solana.Signature{}, nil, err
	}

	sig, err := s.rpc.SendTransactionWithOpts(ctx, tx, solanarpc.TransactionOpts{
		SkipPreflight: opts.SkipPreflight,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	if err := s.waitForSignatureVisible(ctx, sig); err != nil {
		if opts.SkipPreflight {
			return solana.Signature{}, nil, fmt.Errorf("transaction dropped or rejected before cluster saw it. make sure you have sufficient funds for the transaction: %w", err)
		}
		return solana.Signature{}, nil, fmt.Errorf("transaction dropped or rejected before cluster saw it: %w", err)
	}

	res, err := s.waitForTransactionFinalized(ctx, sig)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return sig, res, nil
}

func checkFullySigned(tx *solana.Transaction) error {
	if tx == nil {
		return errors.New("transaction is required")
	}
	required := int(tx.Message.Header.NumRequiredSignatures)
	if len(tx.Signatures) != required {
		return fmt.Errorf("%w: have %d signatures, need %d", ErrNotFullySigned, len(tx.Signatures), required)
	}
	for i, sig := range tx.Signatures {
		if sig == (solana.Signature{}) {
			return fmt.Errorf("%w: missing signature for %s", ErrNotFullySigned, tx.Message.AccountKeys[i])
		}
	}
	return nil
}

func (s *Submitter) waitForSignatureVisible(ctx context.Context, sig solana.Signature) error {
	deadline := s.clock.Now().Add(s.waitForVisibleTimeout)
	for s.clock.Now().Before(deadline) {
		resp, err := s.rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return err
		}
		if resp == nil {
			return errors.New("empty signature status response")
		}
		if len(resp.Value) > 0 && resp.Value[0] != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(s.pollInterval):
		}
	}
	return errors.New("signature not found after wait")
}

func (s *Submitter) waitForTransactionFinalized(ctx context.Context, sig solana.Signature) (*solanarpc.GetTransactionResult, error) {
	s.log.Debug("--> Waiting for transaction to be finalized", "sig", sig)
	start := s.clock.Now()
	for {
		statusResp, err := s.rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return nil, err
		}
		if statusResp == nil {
			return nil, errors.New("empty signature status response")
		}
		if len(statusResp.Value) == 0 {
			return nil, errors.New("transaction not found")
		}
		status := statusResp.Value[0]
		if status != nil && status.Err != nil {
			return nil, fmt.Errorf("transaction failed: %v", status.Err)
		}
		if status != nil && status.ConfirmationStatus == solanarpc.ConfirmationStatusFinalized {
			s.log.Debug("--> Transaction finalized", "sig", sig, "duration", s.clock.Since(start))
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.clock.After(time.Second):
		}
	}

	tx, err := s.rpc.GetTransaction(ctx, sig, &solanarpc.GetTransactionOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: solanarpc.CommitmentFinalized,
	})
	if err != nil {
		return nil, err
	}
	if tx == nil || tx.Meta == nil {
		return nil, errors.New("transaction not found or missing metadata after finalization")
	}
	return tx, nil
}
