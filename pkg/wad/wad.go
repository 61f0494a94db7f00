// Package wad implements unsigned 256 bits fixed-point arithmetic over decimal values.
//
// Every quantity handled by the valuation pipeline is a non-negative integer
// below 2^256. Values are carried around as decimal.Decimal and converted to
// uint256 for arithmetic so that overflow is detected instead of silently
// growing, the way an on-chain implementation would revert.
package wad

import (
	"fmt"

	"safeprice/core"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

const (
	// Decimals of the WAD fixed-point unit
	Decimals = 18
)

var (
	// One 1.0 in WAD
	One = decimal.New(1, Decimals)
	// Max the max representable value, used as the "infinite" sentinel
	Max = FromUint256(new(uint256.Int).SetAllOne())

	maxUint256 = new(uint256.Int).SetAllOne()
)

// ToUint256 convert an integer decimal in [0, 2^256) to uint256
func ToUint256(d decimal.Decimal) (*uint256.Int, error) {
	if d.IsNegative() {
		return nil, fmt.Errorf("negative value %s: %w", d, core.ErrInvalidValue)
	}

	if !d.Equal(d.Truncate(0)) {
		return nil, fmt.Errorf("fractional value %s: %w", d, core.ErrInvalidValue)
	}

	z, overflow := uint256.FromBig(d.BigInt())
	if overflow {
		return nil, fmt.Errorf("value %s: %w", d, core.ErrOverflow)
	}

	return z, nil
}

// FromUint256 convert uint256 to decimal
func FromUint256(z *uint256.Int) decimal.Decimal {
	return decimal.NewFromBigInt(z.ToBig(), 0)
}

// Valid check if d is a valid 256 bits unsigned integer
func Valid(d decimal.Decimal) bool {
	_, err := ToUint256(d)
	return err == nil
}

// Pow10 10^n, n in [0, 77]
func Pow10(n int32) *uint256.Int {
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(n)))
}

// Mul a*b, ErrOverflow when the product does not fit in 256 bits
func Mul(a, b decimal.Decimal) (decimal.Decimal, error) {
	x, err := ToUint256(a)
	if err != nil {
		return decimal.Zero, err
	}

	y, err := ToUint256(b)
	if err != nil {
		return decimal.Zero, err
	}

	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return decimal.Zero, fmt.Errorf("%s * %s: %w", a, b, core.ErrOverflow)
	}

	return FromUint256(z), nil
}

// MulDiv a*b/c truncated with a 512 bits intermediate product
func MulDiv(a, b, c decimal.Decimal) (decimal.Decimal, error) {
	x, err := ToUint256(a)
	if err != nil {
		return decimal.Zero, err
	}

	y, err := ToUint256(b)
	if err != nil {
		return decimal.Zero, err
	}

	d, err := ToUint256(c)
	if err != nil {
		return decimal.Zero, err
	}

	if d.IsZero() {
		return decimal.Zero, fmt.Errorf("division by zero: %w", core.ErrInvalidValue)
	}

	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return decimal.Zero, fmt.Errorf("%s * %s / %s: %w", a, b, c, core.ErrOverflow)
	}

	return FromUint256(z), nil
}

// ApplyBps amount * bps / 10000
func ApplyBps(amount decimal.Decimal, bps int64) (decimal.Decimal, error) {
	if bps < 0 {
		return decimal.Zero, fmt.Errorf("negative bps %d: %w", bps, core.ErrConfiguration)
	}

	return MulDiv(amount, decimal.NewFromInt(bps), decimal.NewFromInt(core.BpsBase))
}

// ScaleDecimals rescale an integer price from one decimals to another, truncated
func ScaleDecimals(v decimal.Decimal, from, to int32) (decimal.Decimal, error) {
	if from == to {
		return v, nil
	}

	if to > from {
		return Mul(v, FromUint256(Pow10(to-from)))
	}

	return MulDiv(v, decimal.NewFromInt(1), FromUint256(Pow10(from-to)))
}

// IsMax check if d is the max sentinel
func IsMax(d decimal.Decimal) bool {
	z, err := ToUint256(d)
	return err == nil && z.Eq(maxUint256)
}

// Saturate return Max instead of an overflow error
func Saturate(d decimal.Decimal, err error) (decimal.Decimal, error) {
	if core.CodeOf(err) == core.ErrOverflow {
		return Max, nil
	}

	return d, err
}
