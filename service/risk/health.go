package risk

import (
	"fmt"

	"safeprice/core"
	"safeprice/pkg/wad"

	"github.com/shopspring/decimal"
)

var (
	// warningThreshold 1.1 in WAD
	warningThreshold = decimal.New(11, wad.Decimals-1)
	// bpsToWad WAD / 10000
	bpsToWad = decimal.New(1, wad.Decimals-4)
)

// HealthFactor effectiveCollateral * (1 + bonusBps/10000) / debt in WAD,
// wad.Max when there is no debt or the ratio does not fit
func HealthFactor(totals *core.PositionTotals, bonusBps int64) (decimal.Decimal, error) {
	if bonusBps < 0 {
		return decimal.Zero, fmt.Errorf("bonus %d bps: %w", bonusBps, core.ErrConfiguration)
	}

	for _, v := range []decimal.Decimal{totals.TotalCollateral, totals.TotalDebt, totals.LockedGuarantee} {
		if !wad.Valid(v) {
			return decimal.Zero, fmt.Errorf("position value %s: %w", v, core.ErrInvalidValue)
		}
	}

	if totals.TotalDebt.IsZero() {
		return wad.Max, nil
	}

	effective := decimal.Zero
	if totals.TotalCollateral.GreaterThan(totals.LockedGuarantee) {
		effective = totals.TotalCollateral.Sub(totals.LockedGuarantee)
	}

	factor, err := wad.Mul(bpsToWad, decimal.NewFromInt(core.BpsBase+bonusBps))
	if err != nil {
		return decimal.Zero, err
	}

	return wad.Saturate(wad.MulDiv(effective, factor, totals.TotalDebt))
}

// Classify liquidation classification of a health factor, strictly below 1.0 is liquidatable
func Classify(hf decimal.Decimal) (bool, core.WarningLevel) {
	switch {
	case hf.LessThan(wad.One):
		return true, core.WarningCritical
	case hf.LessThan(warningThreshold):
		return false, core.WarningWarning
	default:
		return false, core.WarningNone
	}
}
