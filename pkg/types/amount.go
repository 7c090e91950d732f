package types

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// NativeDecimals is the number of fractional digits of the native asset on
// every supported network (1 ETH = 1 POL = 10^18 wei).
const NativeDecimals = 18

// ErrInvalidAmount is returned for amounts that are not positive plain
// decimals representable in the native unit.
var ErrInvalidAmount = errors.New("invalid amount")

var plainDecimal = regexp.MustCompile(`^([0-9]+(\.[0-9]*)?|\.[0-9]+)$`)

// ParseAmount converts a decimal major-unit string (e.g. "1.5") to the
// smallest integer unit with exact fixed-point arithmetic.
// Non-numeric, zero, negative and over-precise inputs all fail with
// ErrInvalidAmount.
func ParseAmount(s string, decimals int32) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if !plainDecimal.MatchString(s) {
		return nil, fmt.Errorf("%w: %q is not a positive decimal", ErrInvalidAmount, s)
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	s = strings.TrimSuffix(s, ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if !d.IsPositive() {
		return nil, fmt.Errorf("%w: %q must be greater than zero", ErrInvalidAmount, s)
	}
	scaled := d.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, s, decimals)
	}
	return scaled.BigInt(), nil
}

// FormatAmount renders smallest units as a decimal major-unit string.
// Whole values keep one fractional digit ("1.0"), matching how wallets
// usually print native balances.
func FormatAmount(units *big.Int, decimals int32) string {
	if units == nil {
		return "0.0"
	}
	s := decimal.NewFromBigInt(units, -decimals).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ParseEther is ParseAmount with the native 18 decimals.
func ParseEther(s string) (*big.Int, error) {
	return ParseAmount(s, NativeDecimals)
}
