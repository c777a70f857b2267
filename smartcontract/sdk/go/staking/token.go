package staking

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/malbeclabs/solstake/smartcontract/sdk/go/layout"
	"github.com/near/borsh-go"
)

// ApproveInstructionConfig describes an SPL token approve.
type ApproveInstructionConfig struct {
	Source   solana.PublicKey
	Delegate solana.PublicKey
	Owner    solana.PublicKey
	Signers  []solana.PublicKey
	Amount   *big.Int
}

func (c *ApproveInstructionConfig) Validate() error {
	if err := requireKeys(
		namedKey{"source", c.Source},
		namedKey{"delegate", c.Delegate},
		namedKey{"owner", c.Owner},
	); err != nil {
		return err
	}
	if c.Amount == nil {
		return fmt.Errorf("amount is required")
	}
	return nil
}

// BuildApproveInstruction lets Delegate move up to Amount raw units out of Source.
func BuildApproveInstruction(config ApproveInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	amount, err := layout.BigToU64(config.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to encode amount: %w", err)
	}
	data, err := borsh.Serialize(amountArgs{Instruction: tokenInstructionApprove, Amount: amount})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}

	accounts := []*solana.AccountMeta{
		writable(config.Source),
		writable(config.Delegate),
	}
	return &solana.GenericInstruction{
		ProgID:        solana.TokenProgramID,
		AccountValues: appendSigners(accounts, config.Owner, config.Signers),
		DataBytes:     data,
	}, nil
}

// CloseAccountInstructionConfig describes an SPL token close account.
type CloseAccountInstructionConfig struct {
	Account     solana.PublicKey
	Destination solana.PublicKey
	Owner       solana.PublicKey
	Signers     []solana.PublicKey
}

func (c *CloseAccountInstructionConfig) Validate() error {
	return requireKeys(
		namedKey{"account", c.Account},
		namedKey{"destination", c.Destination},
		namedKey{"owner", c.Owner},
	)
}

// BuildCloseAccountInstruction closes a token account and sends its lamports to Destination.
func BuildCloseAccountInstruction(config CloseAccountInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	accounts := []*solana.AccountMeta{
		writable(config.Account),
		writable(config.Destination),
	}
	return &solana.GenericInstruction{
		ProgID:        solana.TokenProgramID,
		AccountValues: appendSigners(accounts, config.Owner, config.Signers),
		DataBytes:     []byte{tokenInstructionCloseAccount},
	}, nil
}

// CreateAssociatedTokenAccountInstructionConfig describes an associated token account creation.
type CreateAssociatedTokenAccountInstructionConfig struct {
	Payer solana.PublicKey
	Owner solana.PublicKey
	Mint  solana.PublicKey
}

func (c *CreateAssociatedTokenAccountInstructionConfig) Validate() error {
	return requireKeys(
		namedKey{"payer", c.Payer},
		namedKey{"owner", c.Owner},
		namedKey{"mint", c.Mint},
	)
}

// BuildCreateAssociatedTokenAccountInstruction creates the associated token
// account of Owner for Mint, funded by Payer. It returns the derived address
// with the instruction.
func BuildCreateAssociatedTokenAccountInstruction(
	config CreateAssociatedTokenAccountInstructionConfig,
) (solana.Instruction, solana.PublicKey, error) {
	if err := config.Validate(); err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("failed to validate config: %w", err)
	}
	ata, _, err := DeriveAssociatedTokenAddress(config.Owner, config.Mint)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("failed to derive associated token address: %w", err)
	}

	accounts := []*solana.AccountMeta{
		writableSigner(config.Payer),
		writable(ata),
		readonly(config.Owner),
		readonly(config.Mint),
		readonly(solana.SystemProgramID),
		readonly(solana.TokenProgramID),
		readonly(solana.SysVarRentPubkey),
	}
	return &solana.GenericInstruction{
		ProgID:        solana.SPLAssociatedTokenAccountProgramID,
		AccountValues: accounts,
		DataBytes:     []byte{},
	}, ata, nil
}

// BuildInitTokenAccountInstruction initializes an allocated token account for mint, owned by owner.
func BuildInitTokenAccountInstruction(account, mint, owner solana.PublicKey) (solana.Instruction, error) {
	ix, err := token.NewInitializeAccountInstruction(account, mint, owner, solana.SysVarRentPubkey).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build initialize account instruction: %w", err)
	}
	return ix, nil
}

// BuildSyncNativeInstruction updates the token amount of a wrapped SOL account after a lamport transfer.
func BuildSyncNativeInstruction(account solana.PublicKey) (solana.Instruction, error) {
	ix, err := token.NewSyncNativeInstruction(account).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build sync native instruction: %w", err)
	}
	return ix, nil
}

// BuildCreateAccountInstruction allocates space bytes owned by owner at newAccount, funded by payer.
func BuildCreateAccountInstruction(payer, newAccount, owner solana.PublicKey, lamports, space uint64) solana.Instruction {
	return system.NewCreateAccountInstruction(lamports, space, owner, payer, newAccount).Build()
}

// BuildTransferInstruction moves lamports between system accounts.
func BuildTransferInstruction(from, to solana.PublicKey, lamports uint64) solana.Instruction {
	return system.NewTransferInstruction(lamports, from, to).Build()
}
