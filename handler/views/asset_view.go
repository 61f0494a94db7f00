package views

import (
	"safeprice/core"
)

// Asset asset view
type Asset struct {
	AssetID  string `json:"asset_id"`
	SourceID string `json:"source_id"`
	Decimals int32  `json:"decimals"`
	MaxAge   int64  `json:"max_age"`
	Active   bool   `json:"active"`
	Pegged   bool   `json:"pegged"`
}

// AssetView asset config to view, max age in seconds
func AssetView(c *core.AssetConfig) *Asset {
	return &Asset{
		AssetID:  c.AssetID,
		SourceID: c.SourceID,
		Decimals: c.Decimals,
		MaxAge:   int64(c.MaxAge.Seconds()),
		Active:   c.Active,
		Pegged:   c.Pegged,
	}
}
