package views

import (
	"safeprice/core"
	"safeprice/pkg/number"

	"github.com/shopspring/decimal"
)

// Price price view
type Price struct {
	AssetID   string          `json:"asset_id"`
	Price     decimal.Decimal `json:"price"`
	Readable  decimal.Decimal `json:"readable_price"`
	Timestamp int64           `json:"timestamp"`
	Decimals  int32           `json:"decimals"`
	IsValid   bool            `json:"is_valid"`
	Reason    core.Reason     `json:"reason,omitempty"`
}

// PriceView strict read view
func PriceView(r *core.PriceRecord) *Price {
	return &Price{
		AssetID:   r.AssetID,
		Price:     r.Price,
		Readable:  number.Humanize(r.Price, r.Decimals),
		Timestamp: r.Timestamp,
		Decimals:  r.Decimals,
		IsValid:   true,
	}
}

// PriceInfoView non-strict read view
func PriceInfoView(info *core.PriceInfo) *Price {
	return &Price{
		AssetID:   info.AssetID,
		Price:     info.Price,
		Readable:  number.Humanize(info.Price, info.Decimals),
		Timestamp: info.Timestamp,
		Decimals:  info.Decimals,
		IsValid:   info.IsValid,
		Reason:    info.Reason,
	}
}
