// Package valuation maps (asset, amount, policy) to a value, choosing the
// live price when it can be trusted and a conservative fallback otherwise.
//
// The engine only reads prices, it never writes, so it is safe to call from
// any write path. Feed problems never abort: they always resolve to a
// fallback value tagged with a reason. Only malformed inputs return an error.
package valuation

import (
	"context"
	"fmt"

	"safeprice/core"
	"safeprice/pkg/wad"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Engine graceful degradation valuation
type Engine struct {
	reader core.PriceReader
	clock  core.Clock
}

// New new valuation engine
func New(reader core.PriceReader, clock core.Clock) *Engine {
	if clock == nil {
		clock = core.SystemClock
	}

	return &Engine{
		reader: reader,
		clock:  clock,
	}
}

// Validate check the caller supplied inputs, the only failures Value reports
func Validate(assetID string, amount decimal.Decimal, cfg core.DegradationConfig) error {
	if core.IsZeroIdentifier(assetID) {
		return fmt.Errorf("asset id %q: %w", assetID, core.ErrConfiguration)
	}

	if !wad.Valid(amount) {
		return fmt.Errorf("amount %s: %w", amount, core.ErrInvalidValue)
	}

	return validateConfig(cfg)
}

func validateConfig(cfg core.DegradationConfig) error {
	if cfg.ConservativeRatioBps < 0 || cfg.ConservativeRatioBps > core.BpsBase {
		return fmt.Errorf("conservative ratio %d bps: %w", cfg.ConservativeRatioBps, core.ErrConfiguration)
	}

	if cfg.SanityMultiplierBps < 0 {
		return fmt.Errorf("sanity multiplier %d bps: %w", cfg.SanityMultiplierBps, core.ErrConfiguration)
	}

	return nil
}

// Value value amount of asset with fallback
func (e *Engine) Value(ctx context.Context, assetID string, amount decimal.Decimal, cfg core.DegradationConfig) (*core.ValuationResult, error) {
	if err := Validate(assetID, amount, cfg); err != nil {
		return nil, err
	}

	return e.value(ctx, assetID, amount, cfg), nil
}

// ValueBatch value every item, an item's feed fault only degrades that item
func (e *Engine) ValueBatch(ctx context.Context, items []*core.ValuationRequest, cfg core.DegradationConfig, maxItems int) ([]*core.ValuationResult, error) {
	if maxItems <= 0 {
		maxItems = core.DefaultMaxBatchSize
	}

	if len(items) > maxItems {
		return nil, fmt.Errorf("batch of %d items, max %d: %w", len(items), maxItems, core.ErrCapacity)
	}

	for idx, item := range items {
		if item == nil {
			return nil, fmt.Errorf("item %d missing: %w", idx, core.ErrConfiguration)
		}

		if err := Validate(item.AssetID, item.Amount, cfg); err != nil {
			return nil, fmt.Errorf("item %d: %w", idx, err)
		}
	}

	results := make([]*core.ValuationResult, len(items))
	for idx, item := range items {
		results[idx] = e.value(ctx, item.AssetID, item.Amount, cfg)
	}

	return results, nil
}

func (e *Engine) value(ctx context.Context, assetID string, amount decimal.Decimal, cfg core.DegradationConfig) *core.ValuationResult {
	result := &core.ValuationResult{
		AssetID: assetID,
		Amount:  amount,
		Value:   decimal.Zero,
	}

	if amount.IsZero() {
		return result
	}

	value, reason := e.liveValue(ctx, assetID, amount, cfg)
	if reason == core.ReasonNone {
		result.Value = value
		return result
	}

	result.Value = Fallback(assetID, amount, cfg)
	result.UsedFallback = true
	result.Reason = reason
	return result
}

func (e *Engine) liveValue(ctx context.Context, assetID string, amount decimal.Decimal, cfg core.DegradationConfig) (decimal.Decimal, core.Reason) {
	config, err := e.reader.AssetConfig(ctx, assetID)
	if err != nil || !config.Configured() {
		return decimal.Zero, core.ReasonUnsupported
	}

	record, err := e.reader.GetPrice(ctx, assetID)
	if err != nil {
		return decimal.Zero, reasonOf(err)
	}

	if !record.Price.IsPositive() {
		return decimal.Zero, core.ReasonZeroPrice
	}

	if age := e.clock.Now().Unix() - record.Timestamp; age > int64(config.MaxAge.Seconds()) {
		return decimal.Zero, core.ReasonStale
	}

	if config.Pegged || assetID == cfg.ReferenceSettlementAsset {
		if bound, ok := e.sanityBound(ctx, assetID, config, cfg); ok && record.Price.GreaterThan(bound) {
			return decimal.Zero, core.ReasonOutOfRange
		}
	}

	value, err := convert(amount, record.Price, config.Decimals)
	if err != nil {
		return decimal.Zero, core.ReasonOutOfRange
	}

	return value, core.ReasonNone
}

// sanityBound reference price * multiplier, recomputed on every call from the
// reference asset's last known price. The reference asset itself and pegged
// assets without a usable reference price are bounded by their par price.
func (e *Engine) sanityBound(ctx context.Context, assetID string, config *core.AssetConfig, cfg core.DegradationConfig) (decimal.Decimal, bool) {
	multiplier := cfg.SanityMultiplierBps
	if multiplier == 0 {
		multiplier = core.DefaultSanityMultiplierBps
	}

	reference := wad.FromUint256(wad.Pow10(config.Decimals))
	if ref := cfg.ReferenceSettlementAsset; ref != "" && ref != assetID {
		if info, err := e.reader.GetPriceInfo(ctx, ref); err == nil && info.Price.IsPositive() {
			if scaled, err := wad.ScaleDecimals(info.Price, info.Decimals, config.Decimals); err == nil && scaled.IsPositive() {
				reference = scaled
			}
		}
	}

	bound, err := wad.Saturate(wad.ApplyBps(reference, multiplier))
	if err != nil {
		return decimal.Zero, false
	}

	return bound, true
}

// convert amount * price / 10^decimals, out of range when the product is implausible
func convert(amount, price decimal.Decimal, decimals int32) (decimal.Decimal, error) {
	x, err := wad.ToUint256(amount)
	if err != nil {
		return decimal.Zero, err
	}

	p, err := wad.ToUint256(price)
	if err != nil {
		return decimal.Zero, err
	}

	product, overflow := new(uint256.Int).MulOverflow(x, p)
	if overflow {
		return decimal.Zero, core.ErrOverflow
	}

	if check := new(uint256.Int).Div(product, p); !check.Eq(x) {
		return decimal.Zero, core.ErrOverflow
	}

	return wad.FromUint256(new(uint256.Int).Div(product, wad.Pow10(decimals))), nil
}

// Fallback face value for the settlement asset, conservative haircut otherwise
func Fallback(assetID string, amount decimal.Decimal, cfg core.DegradationConfig) decimal.Decimal {
	if cfg.UseFaceValueForSettlementAsset && cfg.ReferenceSettlementAsset != "" && assetID == cfg.ReferenceSettlementAsset {
		return amount
	}

	v, err := wad.ApplyBps(amount, cfg.ConservativeRatioBps)
	if err != nil {
		return decimal.Zero
	}

	return v
}

func reasonOf(err error) core.Reason {
	switch core.CodeOf(err) {
	case core.ErrStaleData:
		return core.ReasonStale
	case core.ErrInvalidValue:
		return core.ReasonZeroPrice
	case core.ErrOverflow:
		return core.ReasonOutOfRange
	default:
		return core.ReasonUnsupported
	}
}
