// Package layout encodes and decodes the fixed-offset binary records used by
// the staking program and the SPL token program.
//
// All multi-byte integers are little-endian. Every decoder checks the buffer
// bounds before reading and fails with ErrLayout instead of reading past the
// end; every encoder rejects values that do not fit the field width with
// ErrEncodingOverflow.
package layout

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

var (
	// ErrLayout is returned when a buffer is too short for the field being read or written.
	ErrLayout = errors.New("layout: buffer too short")

	// ErrEncodingOverflow is returned when a value does not fit in its field width.
	ErrEncodingOverflow = errors.New("layout: value exceeds field width")

	// ErrInvalidPublicKey is returned when a textual public key is not 32 bytes of base58.
	ErrInvalidPublicKey = errors.New("layout: invalid public key")

	// ErrUnknownField is returned when a struct layout has no field with the requested name.
	ErrUnknownField = errors.New("layout: unknown field")

	// ErrFieldKind is returned when a field is accessed as a different kind than declared.
	ErrFieldKind = errors.New("layout: field kind mismatch")
)

// Field widths in bytes.
const (
	U8Span           = 1
	BoolSpan         = 1
	U32Span          = 4
	U64Span          = 8
	U128Span         = 16
	PublicKeySpan    = 32
	StringHeaderSpan = 8
)

func checkBounds(buf []byte, offset, n int, what string) error {
	if offset < 0 || offset+n > len(buf) {
		return fmt.Errorf("%w: not enough data for %s at offset %d (need %d, have %d)",
			ErrLayout, what, offset, n, max(len(buf)-offset, 0))
	}
	return nil
}

// DecodeU8 reads the byte at offset.
func DecodeU8(buf []byte, offset int) (uint8, error) {
	if err := checkBounds(buf, offset, U8Span, "u8"); err != nil {
		return 0, err
	}
	return buf[offset], nil
}

// EncodeU8 writes v at offset.
func EncodeU8(buf []byte, offset int, v uint8) error {
	if err := checkBounds(buf, offset, U8Span, "u8"); err != nil {
		return err
	}
	buf[offset] = v
	return nil
}

// DecodeBool reads a single byte; any non-zero value is true.
func DecodeBool(buf []byte, offset int) (bool, error) {
	v, err := DecodeU8(buf, offset)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// EncodeBool writes v as 0 or 1.
func EncodeBool(buf []byte, offset int, v bool) error {
	var b uint8
	if v {
		b = 1
	}
	return EncodeU8(buf, offset, b)
}

// DecodeU32 reads a 4-byte little-endian integer.
func DecodeU32(buf []byte, offset int) (uint32, error) {
	if err := checkBounds(buf, offset, U32Span, "u32"); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[offset:]), nil
}

// EncodeU32 writes v as a 4-byte little-endian integer. Values above
// math.MaxUint32 fail with ErrEncodingOverflow.
func EncodeU32(buf []byte, offset int, v uint64) error {
	if v > math.MaxUint32 {
		return fmt.Errorf("%w: %d does not fit in u32", ErrEncodingOverflow, v)
	}
	if err := checkBounds(buf, offset, U32Span, "u32"); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(buf[offset:], uint32(v))
	return nil
}

// DecodeU64 reads an 8-byte little-endian integer.
func DecodeU64(buf []byte, offset int) (uint64, error) {
	if err := checkBounds(buf, offset, U64Span, "u64"); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[offset:]), nil
}

// EncodeU64 writes v as an 8-byte little-endian integer.
func EncodeU64(buf []byte, offset int, v uint64) error {
	if err := checkBounds(buf, offset, U64Span, "u64"); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(buf[offset:], v)
	return nil
}

// DecodeBigU64 reads a u64 field as an arbitrary-precision integer.
func DecodeBigU64(buf []byte, offset int) (*big.Int, error) {
	v, err := DecodeU64(buf, offset)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetUint64(v), nil
}

// EncodeBigU64 writes v as an 8-byte little-endian integer. Negative values
// and values needing more than 8 bytes fail with ErrEncodingOverflow.
func EncodeBigU64(buf []byte, offset int, v *big.Int) error {
	u, err := BigToU64(v)
	if err != nil {
		return err
	}
	return EncodeU64(buf, offset, u)
}

// BigToU64 narrows v to a uint64.
func BigToU64(v *big.Int) (uint64, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: nil integer", ErrEncodingOverflow)
	}
	if v.Sign() < 0 || v.BitLen() > 64 {
		return 0, fmt.Errorf("%w: %s does not fit in u64", ErrEncodingOverflow, v.String())
	}
	return v.Uint64(), nil
}

// DecodeU128 reads a 16-byte little-endian integer.
func DecodeU128(buf []byte, offset int) (*big.Int, error) {
	if err := checkBounds(buf, offset, U128Span, "u128"); err != nil {
		return nil, err
	}
	u, err := bin.NewBinDecoder(buf[offset : offset+U128Span]).ReadUint128(binary.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLayout, err)
	}
	return u.BigInt(), nil
}

// EncodeU128 writes v as a 16-byte little-endian integer.
func EncodeU128(buf []byte, offset int, v *big.Int) error {
	if v == nil {
		return fmt.Errorf("%w: nil integer", ErrEncodingOverflow)
	}
	if v.Sign() < 0 || v.BitLen() > 128 {
		return fmt.Errorf("%w: %s does not fit in u128", ErrEncodingOverflow, v.String())
	}
	if err := checkBounds(buf, offset, U128Span, "u128"); err != nil {
		return err
	}
	mask := new(big.Int).SetUint64(math.MaxUint64)
	u := bin.Uint128{
		Lo:         new(big.Int).And(v, mask).Uint64(),
		Hi:         new(big.Int).Rsh(v, 64).Uint64(),
		Endianness: binary.LittleEndian,
	}
	var w bytes.Buffer
	if err := bin.NewBinEncoder(&w).WriteUint128(u, binary.LittleEndian); err != nil {
		return fmt.Errorf("failed to encode u128: %w", err)
	}
	copy(buf[offset:], w.Bytes())
	return nil
}

// DecodePublicKey reads 32 raw key bytes at offset.
func DecodePublicKey(buf []byte, offset int) (solana.PublicKey, error) {
	if err := checkBounds(buf, offset, PublicKeySpan, "public key"); err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(buf[offset : offset+PublicKeySpan]), nil
}

// EncodePublicKey writes the 32 raw bytes of pk at offset.
func EncodePublicKey(buf []byte, offset int, pk solana.PublicKey) error {
	if err := checkBounds(buf, offset, PublicKeySpan, "public key"); err != nil {
		return err
	}
	copy(buf[offset:], pk[:])
	return nil
}

// PublicKeyFromText parses the base58 text form of a public key.
func PublicKeyFromText(s string) (solana.PublicKey, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %q: %v", ErrInvalidPublicKey, s, err)
	}
	if len(raw) != PublicKeySpan {
		return solana.PublicKey{}, fmt.Errorf("%w: %q decodes to %d bytes", ErrInvalidPublicKey, s, len(raw))
	}
	return solana.PublicKeyFromBytes(raw), nil
}

// PublicKeyText returns the base58 text form of pk.
func PublicKeyText(pk solana.PublicKey) string {
	return base58.Encode(pk[:])
}

// DecodeString reads a length-prefixed string: a u32 byte length, four bytes
// of padding, then the bytes. It returns the string and the number of bytes
// consumed.
func DecodeString(buf []byte, offset int) (string, int, error) {
	n, err := DecodeU32(buf, offset)
	if err != nil {
		return "", 0, err
	}
	if err := checkBounds(buf, offset, StringHeaderSpan+int(n), "string"); err != nil {
		return "", 0, err
	}
	start := offset + StringHeaderSpan
	return string(buf[start : start+int(n)]), StringHeaderSpan + int(n), nil
}

// EncodeString writes s in the DecodeString format and returns the number of
// bytes written.
func EncodeString(buf []byte, offset int, s string) (int, error) {
	span := StringSpan(s)
	if err := checkBounds(buf, offset, span, "string"); err != nil {
		return 0, err
	}
	if err := EncodeU32(buf, offset, uint64(len(s))); err != nil {
		return 0, err
	}
	clear(buf[offset+U32Span : offset+StringHeaderSpan])
	copy(buf[offset+StringHeaderSpan:], s)
	return span, nil
}

// StringSpan is the encoded size of s.
func StringSpan(s string) int {
	return StringHeaderSpan + len(s)
}

// DecodeBlob returns a copy of n raw bytes starting at offset.
func DecodeBlob(buf []byte, offset, n int) ([]byte, error) {
	if err := checkBounds(buf, offset, n, "blob"); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, buf[offset:offset+n])
	return out, nil
}

// EncodeBlob writes v into a field of exactly n bytes.
func EncodeBlob(buf []byte, offset, n int, v []byte) error {
	if len(v) != n {
		return fmt.Errorf("%w: blob of %d bytes in %d byte field", ErrEncodingOverflow, len(v), n)
	}
	if err := checkBounds(buf, offset, n, "blob"); err != nil {
		return err
	}
	copy(buf[offset:], v)
	return nil
}
