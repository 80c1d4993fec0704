package blockchain

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/shopspring/decimal"
)

// ErrMalformedBalance is returned when a balance string is not a valid amount
var ErrMalformedBalance = errors.New("malformed balance")

// plainDecimal is the only accepted decimal form, exponents are rejected
var plainDecimal = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ParseUnits converts a token amount into its fixed-point integer unit.
//
// Decimal strings are token units and are scaled by 10^decimals, so "1.5"
// with 18 decimals is 1500000000000000000. Hex strings with a 0x prefix are
// taken as already scaled, which is how prestate tracers report wei. An empty
// string is zero.
func ParseUnits(amount string, decimals int32) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return new(big.Int), nil
	}

	if strings.HasPrefix(amount, "0x") || strings.HasPrefix(amount, "0X") {
		value, ok := math.ParseBig256(amount)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMalformedBalance, amount)
		}
		return value, nil
	}

	if !plainDecimal.MatchString(amount) {
		return nil, fmt.Errorf("%w: %q", ErrMalformedBalance, amount)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedBalance, amount)
	}

	scaled := d.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", ErrMalformedBalance, amount, decimals)
	}

	return scaled.BigInt(), nil
}

// FormatUnits renders a fixed-point integer amount as a decimal token amount
func FormatUnits(value *big.Int, decimals int32) string {
	return decimal.NewFromBigInt(value, -decimals).String()
}

// Percentage renders part/total*100 with two fractional digits
func Percentage(part, total *big.Int) string {
	if total.Sign() == 0 {
		return "0.00"
	}
	return decimal.NewFromBigInt(part, 0).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromBigInt(total, 0)).
		StringFixed(2)
}

// NormalizeAddress lowercases an address, canonicalizing valid hex addresses
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if common.IsHexAddress(address) {
		return strings.ToLower(common.HexToAddress(address).Hex())
	}
	return strings.ToLower(address)
}
