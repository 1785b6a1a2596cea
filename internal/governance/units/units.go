// Package units converts raw token amounts (wei) to and from human readable values.
package units

import (
	"errors"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DefaultDecimals is the decimals of almost every governance token.
	DefaultDecimals = 18
	// DefaultDisplayDecimals is the number of fraction digits shown for voting power.
	DefaultDisplayDecimals = 2
)

// ErrInvalidAmount is returned when a string cannot be parsed as an amount.
var ErrInvalidAmount = errors.New("invalid amount")

// FormatUnits returns amount / 10^decimals as an exact decimal string without trailing zeros.
func FormatUnits(amount decimal.Decimal, decimals int32) string {
	return amount.Shift(-decimals).String()
}

// ParseUnits converts a human readable value to its raw amount.
// Digits beyond decimals are an error, precision is never silently dropped.
func ParseUnits(s string, decimals int32) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}

	raw := v.Shift(decimals)
	if !raw.Equal(raw.Truncate(0)) {
		return decimal.Zero, ErrInvalidAmount
	}

	return raw, nil
}

// VotingPowerWhole returns the whole token part of a raw amount (integer division).
func VotingPowerWhole(amount decimal.Decimal, decimals int32) *big.Int {
	return amount.Shift(-decimals).Truncate(0).BigInt()
}

// FormatVotingPower renders a raw amount for display.
// Amounts without a fraction print as an integer, others keep maxDecimals digits, truncated.
func FormatVotingPower(amount decimal.Decimal, decimals, maxDecimals int32) string {
	if maxDecimals > decimals {
		maxDecimals = decimals
	}

	whole := amount.Shift(-decimals)
	if whole.Equal(whole.Truncate(0)) {
		return whole.Truncate(0).String()
	}

	return whole.Truncate(maxDecimals).StringFixed(maxDecimals)
}

// TokenAmountToNumber converts a raw amount to a float for charts and ratios.
func TokenAmountToNumber(amount decimal.Decimal, decimals int32) float64 {
	f, _ := amount.Shift(-decimals).Float64()
	return f
}

// FromBig wraps an on-chain integer.
func FromBig(v *big.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(v, 0)
}

// ToBig returns the integer part of amount.
func ToBig(amount decimal.Decimal) *big.Int {
	return amount.Truncate(0).BigInt()
}

// Percent returns part/total*100, 0 when total is zero.
func Percent(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}

	f, _ := part.Div(total).Mul(decimal.NewFromInt(100)).Float64()
	return f
}
