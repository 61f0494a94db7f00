package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// WarningLevel liquidation warning level
type WarningLevel int

const (
	WarningNone WarningLevel = iota
	WarningWarning
	WarningCritical
)

func (l WarningLevel) String() string {
	switch l {
	case WarningWarning:
		return "WARNING"
	case WarningCritical:
		return "CRITICAL"
	default:
		return "NONE"
	}
}

// MarshalText text encoding
func (l WarningLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// PositionTotals pre-summed per account totals from upstream aggregators
type PositionTotals struct {
	Account         string          `json:"account"`
	TotalCollateral decimal.Decimal `json:"total_collateral"`
	TotalDebt       decimal.Decimal `json:"total_debt"`
	LockedGuarantee decimal.Decimal `json:"locked_guarantee"`
}

// RiskSnapshot derived per account risk, always fully overwritten
type RiskSnapshot struct {
	Account      string          `json:"account"`
	HealthFactor decimal.Decimal `json:"health_factor"`
	Liquidatable bool            `json:"liquidatable"`
	WarningLevel WarningLevel    `json:"warning_level"`
	Degraded     bool            `json:"degraded"`
	LastUpdate   time.Time       `json:"last_update"`
}

// PositionAggregator upstream collateral/debt aggregation
type PositionAggregator interface {
	CollateralTotal(ctx context.Context, account string) (decimal.Decimal, error)
	DebtTotal(ctx context.Context, account string) (decimal.Decimal, error)
	LockedGuarantee(ctx context.Context, account string) (decimal.Decimal, error)
}

// RiskService health and risk aggregator interface
type RiskService interface {
	GetUserHealthFactor(ctx context.Context, account string) (decimal.Decimal, error)
	GetUserRiskAssessment(ctx context.Context, account string) (*RiskSnapshot, error)
	GetUserHealthFactors(ctx context.Context, accounts []string) ([]decimal.Decimal, error)
	GetUserRiskAssessments(ctx context.Context, accounts []string) ([]*RiskSnapshot, error)
	PushRiskSnapshot(ctx context.Context, caller string, totals *PositionTotals) (*RiskSnapshot, error)
	CachedRiskSnapshot(ctx context.Context, account string) (*RiskSnapshot, bool)
}
