package core

import (
	"context"
	"strings"
	"time"
)

// MaxDecimals max decimals of an asset price
const MaxDecimals = 18

// AssetConfig per asset price feed configuration
type AssetConfig struct {
	ID       int64         `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"-"`
	AssetID  string        `sql:"size:64;unique_index:idx_asset_configs_asset_id" json:"asset_id"`
	SourceID string        `sql:"size:128" json:"source_id"`
	Decimals int32         `json:"decimals"`
	MaxAge   time.Duration `json:"max_age"`
	Active   bool          `json:"active"`
	// Pegged assets are bounded by the reference settlement asset price
	Pegged    bool      `json:"pegged"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Configured reports whether the config was found in the store
func (c *AssetConfig) Configured() bool {
	return c != nil && c.AssetID != ""
}

// SameParams check if the mutable parameters equal
func (c *AssetConfig) SameParams(o *AssetConfig) bool {
	return c.SourceID == o.SourceID &&
		c.Decimals == o.Decimals &&
		c.MaxAge == o.MaxAge &&
		c.Pegged == o.Pegged
}

// IsZeroIdentifier empty, all zero hex address or nil uuid
func IsZeroIdentifier(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return true
	}

	id = strings.TrimPrefix(strings.ToLower(id), "0x")
	id = strings.ReplaceAll(id, "-", "")
	return strings.Trim(id, "0") == ""
}

// AssetStore asset config store interface
type AssetStore interface {
	// Save upsert by asset id
	Save(ctx context.Context, config *AssetConfig) error
	// Find return an empty config if not found
	Find(ctx context.Context, assetID string) (*AssetConfig, error)
	All(ctx context.Context) ([]*AssetConfig, error)
}
