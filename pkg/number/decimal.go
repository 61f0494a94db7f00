package number

import (
	"github.com/shopspring/decimal"
)

// Decimal parse v, zero on error
func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

// Floor floor d at precision
func Floor(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Floor().Shift(-precision)
}

// Humanize integer fixed-point value to a human readable decimal
func Humanize(v decimal.Decimal, decimals int32) decimal.Decimal {
	return v.Shift(-decimals)
}

// Integer human readable decimal to integer fixed-point, truncated
func Integer(v decimal.Decimal, decimals int32) decimal.Decimal {
	return v.Shift(decimals).Truncate(0)
}
