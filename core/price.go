package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceRecord latest price of an asset, overwritten on every update
type PriceRecord struct {
	ID        int64           `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"-"`
	AssetID   string          `sql:"size:64;unique_index:idx_price_records_asset_id" json:"asset_id"`
	Price     decimal.Decimal `sql:"type:decimal(78,0)" json:"price"`
	Timestamp int64           `json:"timestamp"`
	Decimals  int32           `json:"decimals"`
	UpdatedBy string          `sql:"size:64" json:"updated_by,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Time price timestamp as time
func (p *PriceRecord) Time() time.Time {
	return time.Unix(p.Timestamp, 0)
}

// PriceInfo non-strict price read result
type PriceInfo struct {
	AssetID   string          `json:"asset_id"`
	Price     decimal.Decimal `json:"price"`
	Timestamp int64           `json:"timestamp"`
	Decimals  int32           `json:"decimals"`
	IsValid   bool            `json:"is_valid"`
	Reason    Reason          `json:"reason,omitempty"`
}

// PriceUpdate a single feed update
type PriceUpdate struct {
	AssetID   string          `json:"asset_id"`
	Price     decimal.Decimal `json:"price"`
	Timestamp int64           `json:"timestamp"`
}

// PriceTicker price ticker pulled from an external feed
type PriceTicker struct {
	Provider  string          `json:"provider,omitempty"`
	Symbol    string          `json:"symbol,omitempty"`
	Price     decimal.Decimal `json:"price,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

// PriceStore price record store interface
type PriceStore interface {
	// Save upsert records by asset id in one transaction
	Save(ctx context.Context, records []*PriceRecord) error
	// Find return an empty record if not found
	Find(ctx context.Context, assetID string) (*PriceRecord, error)
}

// PriceReader side effect free price reads
type PriceReader interface {
	// GetPrice strict read
	GetPrice(ctx context.Context, assetID string) (*PriceRecord, error)
	// GetPriceInfo never fails on feed conditions
	GetPriceInfo(ctx context.Context, assetID string) (*PriceInfo, error)
	// AssetConfig return an empty config if not configured
	AssetConfig(ctx context.Context, assetID string) (*AssetConfig, error)
}

// PriceService price store service interface
type PriceService interface {
	PriceReader
	ConfigureAsset(ctx context.Context, caller string, config *AssetConfig) error
	SetActive(ctx context.Context, caller, assetID string, active bool) error
	UpdatePrice(ctx context.Context, caller, assetID string, price decimal.Decimal, timestamp int64) error
	UpdatePrices(ctx context.Context, caller string, assetIDs []string, prices []decimal.Decimal, timestamps []int64) error
	Assets(ctx context.Context) ([]*AssetConfig, error)
}

// FeedService external price feed interface
type FeedService interface {
	PullPriceTicker(ctx context.Context, sourceID string) (*PriceTicker, error)
}
