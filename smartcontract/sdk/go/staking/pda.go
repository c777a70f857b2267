package staking

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// DeriveAddress returns the canonical program address for seeds under
// programID, searching bumps from 255 down.
func DeriveAddress(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: %v", ErrNoAddressFound, err)
	}
	return addr, bump, nil
}

// DerivePoolAuthority derives the address that owns a pool's vaults.
// Seeds: [pool]
func DerivePoolAuthority(pool, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return DeriveAddress([][]byte{pool[:]}, programID)
}

// DeriveMemberAddress derives the stake member account of owner in pool.
// Seeds: [owner, programID, pool]
func DeriveMemberAddress(owner, pool, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return DeriveAddress([][]byte{owner[:], programID[:], pool[:]}, programID)
}

// DeriveAssociatedTokenAddress derives the associated token account of owner for mint.
// Seeds: [owner, token program, mint] under the associated token program.
func DeriveAssociatedTokenAddress(owner, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return DeriveAddress(
		[][]byte{owner[:], solana.TokenProgramID[:], mint[:]},
		solana.SPLAssociatedTokenAccountProgramID,
	)
}
