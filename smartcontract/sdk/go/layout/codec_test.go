package layout_test

import (
	"math"
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/solstake/smartcontract/sdk/go/layout"
	"github.com/stretchr/testify/require"
)

func TestSDK_Layout_U64_LittleEndian(t *testing.T) {
	t.Parallel()

	buf := []byte{0xff, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	v, err := layout.DecodeU64(buf, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(0x0807060504030201), v)

	out := make([]byte, 8)
	require.NoError(t, layout.EncodeU64(out, 0, 0x0807060504030201))
	require.Equal(t, buf[1:], out)
}

func TestSDK_Layout_BigU64_FullRange(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 8)
	maxU64 := new(big.Int).SetUint64(math.MaxUint64)
	require.NoError(t, layout.EncodeBigU64(buf, 0, maxU64))
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, buf)

	got, err := layout.DecodeBigU64(buf, 0)
	require.NoError(t, err)
	require.Zero(t, got.Cmp(maxU64))
}

func TestSDK_Layout_BigU64_Overflow(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 8)
	tooLarge := new(big.Int).Lsh(big.NewInt(1), 64)
	require.ErrorIs(t, layout.EncodeBigU64(buf, 0, tooLarge), layout.ErrEncodingOverflow)
	require.ErrorIs(t, layout.EncodeBigU64(buf, 0, big.NewInt(-1)), layout.ErrEncodingOverflow)
	require.ErrorIs(t, layout.EncodeBigU64(buf, 0, nil), layout.ErrEncodingOverflow)
	require.Equal(t, make([]byte, 8), buf, "buffer must be untouched on overflow")
}

func TestSDK_Layout_U32_Overflow(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 4)
	require.NoError(t, layout.EncodeU32(buf, 0, math.MaxUint32))
	require.ErrorIs(t, layout.EncodeU32(buf, 0, math.MaxUint32+1), layout.ErrEncodingOverflow)
}

func TestSDK_Layout_U128(t *testing.T) {
	t.Parallel()

	v, ok := new(big.Int).SetString("340282366920938463463374607431768211455", 10)
	require.True(t, ok)

	buf := make([]byte, 16)
	require.NoError(t, layout.EncodeU128(buf, 0, v))
	for _, b := range buf {
		require.Equal(t, byte(0xff), b)
	}
	got, err := layout.DecodeU128(buf, 0)
	require.NoError(t, err)
	require.Zero(t, got.Cmp(v))

	small := big.NewInt(0x0102)
	require.NoError(t, layout.EncodeU128(buf, 0, small))
	require.Equal(t, []byte{0x02, 0x01}, buf[:2])
	require.Equal(t, make([]byte, 14), buf[2:])

	over := new(big.Int).Lsh(big.NewInt(1), 128)
	require.ErrorIs(t, layout.EncodeU128(buf, 0, over), layout.ErrEncodingOverflow)
}

func TestSDK_Layout_ShortBuffer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		run  func() error
	}{
		{"u8 past end", func() error { _, err := layout.DecodeU8([]byte{}, 0); return err }},
		{"u32 short", func() error { _, err := layout.DecodeU32([]byte{1, 2, 3}, 0); return err }},
		{"u64 short", func() error { _, err := layout.DecodeU64(make([]byte, 9), 2); return err }},
		{"u128 short", func() error { _, err := layout.DecodeU128(make([]byte, 15), 0); return err }},
		{"public key short", func() error { _, err := layout.DecodePublicKey(make([]byte, 31), 0); return err }},
		{"negative offset", func() error { _, err := layout.DecodeU8([]byte{1}, -1); return err }},
		{"encode u64 short", func() error { return layout.EncodeU64(make([]byte, 4), 0, 1) }},
		{"string body short", func() error {
			buf := []byte{5, 0, 0, 0, 0, 0, 0, 0, 'a', 'b'}
			_, _, err := layout.DecodeString(buf, 0)
			return err
		}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.ErrorIs(t, tt.run(), layout.ErrLayout)
		})
	}
}

func TestSDK_Layout_ShortBuffer_ReportsOffset(t *testing.T) {
	t.Parallel()

	_, err := layout.DecodeU64(make([]byte, 10), 4)
	require.ErrorContains(t, err, "not enough data for u64 at offset 4 (need 8, have 6)")
}

func TestSDK_Layout_PublicKey(t *testing.T) {
	t.Parallel()

	pk := solana.NewWallet().PublicKey()
	buf := make([]byte, 40)
	require.NoError(t, layout.EncodePublicKey(buf, 8, pk))

	got, err := layout.DecodePublicKey(buf, 8)
	require.NoError(t, err)
	require.Equal(t, pk, got)

	text := layout.PublicKeyText(got)
	require.Equal(t, pk.String(), text)

	parsed, err := layout.PublicKeyFromText(text)
	require.NoError(t, err)
	require.Equal(t, pk, parsed)
}

func TestSDK_Layout_PublicKeyFromText_Invalid(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "not-base58-0OIl", "3yZe7d"} {
		_, err := layout.PublicKeyFromText(s)
		require.ErrorIs(t, err, layout.ErrInvalidPublicKey, s)
	}
}

func TestSDK_Layout_String(t *testing.T) {
	t.Parallel()

	buf := make([]byte, layout.StringSpan("stake"))
	n, err := layout.EncodeString(buf, 0, "stake")
	require.NoError(t, err)
	require.Equal(t, 13, n)
	require.Equal(t, []byte{5, 0, 0, 0, 0, 0, 0, 0, 's', 't', 'a', 'k', 'e'}, buf)

	s, consumed, err := layout.DecodeString(buf, 0)
	require.NoError(t, err)
	require.Equal(t, "stake", s)
	require.Equal(t, 13, consumed)
}

func TestSDK_Layout_Bool(t *testing.T) {
	t.Parallel()

	buf := []byte{0, 1, 7}
	for i, want := range []bool{false, true, true} {
		got, err := layout.DecodeBool(buf, i)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	require.NoError(t, layout.EncodeBool(buf, 2, true))
	require.Equal(t, byte(1), buf[2])
}
