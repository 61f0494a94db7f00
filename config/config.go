package config

import (
	"safeprice/core"
	"safeprice/service/oracle"
	"safeprice/service/risk"

	"github.com/fox-one/pkg/store/db"
)

// Config safeprice config
type Config struct {
	App         App                 `json:"app"`
	DB          db.Config           `json:"db"`
	Roles       map[string][]string `json:"roles"`
	Registry    map[string]string   `json:"registry"`
	Degradation Degradation         `json:"degradation"`
	Risk        risk.Config         `json:"risk"`
	Feed        oracle.FeedConfig   `json:"feed"`
	Position    Position            `json:"position"`
	Monitor     Monitor             `json:"monitor"`
	Worker      Worker              `json:"worker"`
}

// Degradation fallback policy, unset fields keep the defaults
type Degradation struct {
	ConservativeRatioBps           *int64 `json:"conservative_ratio_bps"`
	UseFaceValueForSettlementAsset *bool  `json:"use_face_value_for_settlement_asset"`
	ReferenceSettlementAsset       string `json:"reference_settlement_asset"`
	SanityMultiplierBps            *int64 `json:"sanity_multiplier_bps"`
}

// Policy the configured policy on top of the defaults
func (d Degradation) Policy() core.DegradationConfig {
	policy := core.DefaultDegradationConfig()
	if d.ConservativeRatioBps != nil {
		policy.ConservativeRatioBps = *d.ConservativeRatioBps
	}

	if d.UseFaceValueForSettlementAsset != nil {
		policy.UseFaceValueForSettlementAsset = *d.UseFaceValueForSettlementAsset
	}

	if d.SanityMultiplierBps != nil {
		policy.SanityMultiplierBps = *d.SanityMultiplierBps
	}

	policy.ReferenceSettlementAsset = d.ReferenceSettlementAsset
	return policy
}

// App app config
type App struct {
	Genesis         int64  `json:"genesis"`
	SecondsPerBlock int64  `json:"seconds_per_block"`
	Location        string `json:"location"`
	// Memory keep every store in process, nothing survives a restart
	Memory bool `json:"memory"`
	// AssetCacheTTL seconds asset configs stay cached
	AssetCacheTTL int64 `json:"asset_cache_ttl"`
}

// Position upstream collateral/debt aggregators
type Position struct {
	Endpoint string `json:"endpoint" valid:"url"`
}

// Monitor degradation monitor config
type Monitor struct {
	UpgradeAdmin string `json:"upgrade_admin"`
	// UpgradeWindow hours the upgrade authorization stays open
	UpgradeWindow int64 `json:"upgrade_window"`
}

// Worker worker config
type Worker struct {
	PriceSpec string   `json:"price_spec"`
	RiskSpec  string   `json:"risk_spec"`
	WatchList []string `json:"watch_list"`
}
