package staking

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

// Program identifies a deployed staking program and the protocol version
// its accounts use.
type Program struct {
	ID      solana.PublicKey
	Version ProtocolVersion
}

func (p Program) Validate() error {
	if p.ID.IsZero() {
		return fmt.Errorf("program ID is required")
	}
	if !p.Version.Valid() {
		return fmt.Errorf("%w: %d", ErrUnsupportedProtocolVersion, uint8(p.Version))
	}
	return nil
}

type opcodeOnlyArgs struct {
	Instruction uint8
}

type amountArgs struct {
	Instruction uint8
	Amount      uint64
}

// buildInstruction resolves the opcode for op and serializes the payload
// produced by args. A nil args encodes the opcode alone.
func buildInstruction(
	program Program,
	op Operation,
	accounts []*solana.AccountMeta,
	args func(opcode uint8) any,
) (solana.Instruction, error) {
	if err := program.Validate(); err != nil {
		return nil, err
	}
	opcode, err := program.Version.Opcode(op)
	if err != nil {
		return nil, err
	}

	var payload any = opcodeOnlyArgs{Instruction: opcode}
	if args != nil {
		payload = args(opcode)
	}
	data, err := borsh.Serialize(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}

	return &solana.GenericInstruction{
		ProgID:        program.ID,
		AccountValues: accounts,
		DataBytes:     data,
	}, nil
}

func requireKey(pk solana.PublicKey, name string) error {
	if pk.IsZero() {
		return fmt.Errorf("%s public key is required", name)
	}
	return nil
}

func requireKeys(keys ...namedKey) error {
	for _, k := range keys {
		if err := requireKey(k.key, k.name); err != nil {
			return err
		}
	}
	return nil
}

type namedKey struct {
	name string
	key  solana.PublicKey
}

func readonly(pk solana.PublicKey) *solana.AccountMeta {
	return &solana.AccountMeta{PublicKey: pk}
}

func writable(pk solana.PublicKey) *solana.AccountMeta {
	return &solana.AccountMeta{PublicKey: pk, IsWritable: true}
}

func signer(pk solana.PublicKey) *solana.AccountMeta {
	return &solana.AccountMeta{PublicKey: pk, IsSigner: true}
}

func writableSigner(pk solana.PublicKey) *solana.AccountMeta {
	return &solana.AccountMeta{PublicKey: pk, IsSigner: true, IsWritable: true}
}

// appendSigners adds the authority accounts of an SPL token instruction.
// Without delegated signers the owner signs; otherwise the owner is listed
// as a non-signer followed by each signer.
func appendSigners(keys []*solana.AccountMeta, owner solana.PublicKey, signers []solana.PublicKey) []*solana.AccountMeta {
	if len(signers) == 0 {
		return append(keys, signer(owner))
	}
	keys = append(keys, readonly(owner))
	for _, s := range signers {
		keys = append(keys, signer(s))
	}
	return keys
}
