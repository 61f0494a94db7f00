package core

import "context"

// Action access controlled action key
type Action string

const (
	ActionConfigureAsset    Action = "asset_configure"
	ActionUpdatePrice       Action = "price_update"
	ActionRecordDegradation Action = "degradation_record"
	ActionClearEvents       Action = "degradation_clear"
	ActionPushRisk          Action = "risk_push"
)

const (
	// RegistryKeyPriceOracle identity allowed to self-report degradation
	RegistryKeyPriceOracle = "price-oracle"
	// RegistryKeyRiskAggregator identity the risk aggregator reports with
	RegistryKeyRiskAggregator = "risk-aggregator"
)

// AccessControl (actionKey, caller) -> allow/deny
type AccessControl interface {
	Allow(ctx context.Context, action Action, caller string) bool
}

// Registry resolves component identities by stable key
type Registry interface {
	Resolve(ctx context.Context, key string) (string, error)
}
