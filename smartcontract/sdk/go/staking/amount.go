package staking

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

var errInvalidAmount = errors.New("invalid amount")

// ToUIAmount converts a raw token amount into display units.
func ToUIAmount(raw *big.Int, decimals uint8) float64 {
	if raw == nil {
		return 0
	}
	f := decimal.NewFromBigInt(raw, -int32(decimals)).InexactFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ToUIAmountU64 is ToUIAmount for values already read as uint64.
func ToUIAmountU64(raw uint64, decimals uint8) float64 {
	return ToUIAmount(new(big.Int).SetUint64(raw), decimals)
}

// ToRawAmount converts a display amount into raw token units, truncating any
// precision beyond decimals.
func ToRawAmount(ui float64, decimals uint8) (*big.Int, error) {
	if math.IsNaN(ui) || math.IsInf(ui, 0) {
		return nil, fmt.Errorf("%w: %v", errInvalidAmount, ui)
	}
	if ui < 0 {
		return nil, fmt.Errorf("%w: %v is negative", errInvalidAmount, ui)
	}
	return decimal.NewFromFloat(ui).Shift(int32(decimals)).Truncate(0).BigInt(), nil
}
