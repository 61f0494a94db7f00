package views

import (
	"time"

	"safeprice/core"
	"safeprice/pkg/number"
	"safeprice/pkg/wad"

	"github.com/shopspring/decimal"
)

// Risk risk view
type Risk struct {
	Account      string          `json:"account"`
	HealthFactor decimal.Decimal `json:"health_factor"`
	Readable     string          `json:"readable_health_factor"`
	Liquidatable bool            `json:"liquidatable"`
	WarningLevel string          `json:"warning_level"`
	Degraded     bool            `json:"degraded,omitempty"`
	LastUpdate   time.Time       `json:"last_update"`
}

// HealthFactorText human readable health factor, "infinite" for the max sentinel
func HealthFactorText(hf decimal.Decimal) string {
	if wad.IsMax(hf) {
		return "infinite"
	}

	// floored so a factor just under 1 never reads as 1.0000
	return number.Floor(number.Humanize(hf, wad.Decimals), 4).StringFixed(4)
}

// RiskView risk snapshot to view
func RiskView(s *core.RiskSnapshot) *Risk {
	return &Risk{
		Account:      s.Account,
		HealthFactor: s.HealthFactor,
		Readable:     HealthFactorText(s.HealthFactor),
		Liquidatable: s.Liquidatable,
		WarningLevel: s.WarningLevel.String(),
		Degraded:     s.Degraded,
		LastUpdate:   s.LastUpdate,
	}
}
