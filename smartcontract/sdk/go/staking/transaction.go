package staking

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/malbeclabs/solstake/internal/metrics"
)

// UnsignedTransaction is an assembled transaction ready for external signing.
type UnsignedTransaction struct {
	// Transaction holds the compiled message. Signature slots are zero
	// except for keys the SDK generated itself.
	Transaction *solana.Transaction

	// Raw is the wire encoding of Transaction.
	Raw []byte

	// EstimatedFee is the network fee for the message in lamports.
	EstimatedFee uint64
}

func (t *UnsignedTransaction) Base64() string {
	return base64.StdEncoding.EncodeToString(t.Raw)
}

// assemble compiles instructions into a transaction paid by payer, signs it
// with any generated keys and estimates its fee.
func (c *Client) assemble(
	ctx context.Context,
	action string,
	payer solana.PublicKey,
	instructions []solana.Instruction,
	generated ...solana.PrivateKey,
) (*UnsignedTransaction, error) {
	blockhashResult, err := c.rpc.GetLatestBlockhash(ctx, solanarpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	if blockhashResult == nil || blockhashResult.Value == nil {
		return nil, errors.New("failed to get latest blockhash: empty result")
	}

	tx, err := solana.NewTransaction(
		instructions,
		blockhashResult.Value.Blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)
	if err := partialSign(tx, generated...); err != nil {
		return nil, err
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}

	fee, err := c.estimateFee(ctx, tx)
	if err != nil {
		return nil, err
	}

	metrics.ActionsAssembled.WithLabelValues(action).Inc()
	c.log.Debug("Assembled transaction", "action", action, "payer", payer, "instructions", len(instructions), "fee", fee)
	return &UnsignedTransaction{Transaction: tx, Raw: raw, EstimatedFee: fee}, nil
}

// partialSign fills the signature slots of keys; the other slots are left for the caller.
func partialSign(tx *solana.Transaction, keys ...solana.PrivateKey) error {
	if len(keys) == 0 {
		return nil
	}
	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}
	required := tx.Message.AccountKeys[:tx.Message.Header.NumRequiredSignatures]
	for _, key := range keys {
		index := -1
		for i, pk := range required {
			if pk.Equals(key.PublicKey()) {
				index = i
				break
			}
		}
		if index < 0 {
			return fmt.Errorf("key %s is not a required signer", key.PublicKey())
		}
		sig, err := key.Sign(message)
		if err != nil {
			return fmt.Errorf("failed to sign transaction: %w", err)
		}
		tx.Signatures[index] = sig
	}
	return nil
}

func (c *Client) estimateFee(ctx context.Context, tx *solana.Transaction) (uint64, error) {
	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("failed to serialize message: %w", err)
	}
	res, err := c.rpc.GetFeeForMessage(ctx, base64.StdEncoding.EncodeToString(message), c.commitment)
	if err != nil {
		metrics.Errors.WithLabelValues(metrics.ErrorTypeEstimateFee).Inc()
		return 0, fmt.Errorf("failed to get fee for message: %w", err)
	}
	if res == nil || res.Value == nil {
		c.log.Warn("Fee for message unavailable, blockhash may have expired")
		return 0, nil
	}
	return *res.Value, nil
}

// EstimateNetworkTransactionFee returns the fee of a transaction carrying a
// single signature from payer.
func (c *Client) EstimateNetworkTransactionFee(ctx context.Context, payer solana.PublicKey) (uint64, error) {
	blockhashResult, err := c.rpc.GetLatestBlockhash(ctx, solanarpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	if blockhashResult == nil || blockhashResult.Value == nil {
		return 0, errors.New("failed to get latest blockhash: empty result")
	}
	tx, err := solana.NewTransaction(
		[]solana.Instruction{BuildTransferInstruction(payer, payer, 0)},
		blockhashResult.Value.Blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to build transaction: %w", err)
	}
	return c.estimateFee(ctx, tx)
}
