package oracle

import (
	"context"
	"fmt"
	"sync"

	"safeprice/core"
	"safeprice/pkg/fallback"
	"safeprice/pkg/wad"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// PriceService price store service
type PriceService struct {
	mux    sync.Mutex
	assets core.AssetStore
	prices core.PriceStore
	access core.AccessControl
	clock  core.Clock
}

// New new price store service
func New(assets core.AssetStore, prices core.PriceStore, access core.AccessControl, clock core.Clock) *PriceService {
	if clock == nil {
		clock = core.SystemClock
	}

	return &PriceService{
		assets: assets,
		prices: prices,
		access: access,
		clock:  clock,
	}
}

// ConfigureAsset idempotent upsert of an asset config, new assets start active
func (s *PriceService) ConfigureAsset(ctx context.Context, caller string, config *core.AssetConfig) error {
	log := logger.FromContext(ctx).WithField("asset", config.AssetID)

	if !s.access.Allow(ctx, core.ActionConfigureAsset, caller) {
		return fmt.Errorf("%s configure asset: %w", caller, core.ErrPermission)
	}

	if core.IsZeroIdentifier(config.AssetID) {
		return fmt.Errorf("asset id %q: %w", config.AssetID, core.ErrConfiguration)
	}

	if config.Decimals < 0 || config.Decimals > core.MaxDecimals {
		return fmt.Errorf("decimals %d: %w", config.Decimals, core.ErrConfiguration)
	}

	if config.MaxAge < 0 {
		return fmt.Errorf("max age %s: %w", config.MaxAge, core.ErrConfiguration)
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	existing, err := s.assets.Find(ctx, config.AssetID)
	if err != nil {
		log.WithError(err).Errorln("assets.Find")
		return err
	}

	// the caller's config is never written to
	var next core.AssetConfig
	if existing.Configured() {
		if existing.SameParams(config) {
			return nil
		}

		next = *existing
		next.SourceID = config.SourceID
		next.Decimals = config.Decimals
		next.MaxAge = config.MaxAge
		next.Pegged = config.Pegged
	} else {
		next = *config
		next.Active = true
	}

	if err := s.assets.Save(ctx, &next); err != nil {
		log.WithError(err).Errorln("assets.Save")
		return err
	}

	log.WithField("decimals", next.Decimals).WithField("max_age", next.MaxAge).Infoln("asset configured")
	return nil
}

// SetActive activate or deactivate an asset
func (s *PriceService) SetActive(ctx context.Context, caller, assetID string, active bool) error {
	if !s.access.Allow(ctx, core.ActionConfigureAsset, caller) {
		return fmt.Errorf("%s set active: %w", caller, core.ErrPermission)
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	config, err := s.assets.Find(ctx, assetID)
	if err != nil {
		return err
	}

	if !config.Configured() {
		return fmt.Errorf("asset %s: %w", assetID, core.ErrUnsupportedAsset)
	}

	if config.Active == active {
		return nil
	}

	config.Active = active
	return s.assets.Save(ctx, config)
}

// UpdatePrice update the latest price of an asset
func (s *PriceService) UpdatePrice(ctx context.Context, caller, assetID string, price decimal.Decimal, timestamp int64) error {
	return s.UpdatePrices(ctx, caller, []string{assetID}, []decimal.Decimal{price}, []int64{timestamp})
}

// UpdatePrices validate every item before writing any, all or nothing
func (s *PriceService) UpdatePrices(ctx context.Context, caller string, assetIDs []string, prices []decimal.Decimal, timestamps []int64) error {
	log := logger.FromContext(ctx).WithField("updater", caller)

	if !s.access.Allow(ctx, core.ActionUpdatePrice, caller) {
		return fmt.Errorf("%s update price: %w", caller, core.ErrPermission)
	}

	if len(assetIDs) != len(prices) || len(assetIDs) != len(timestamps) {
		return fmt.Errorf("length mismatch %d/%d/%d: %w", len(assetIDs), len(prices), len(timestamps), core.ErrConfiguration)
	}

	if len(assetIDs) > core.DefaultMaxBatchSize {
		return fmt.Errorf("batch of %d prices: %w", len(assetIDs), core.ErrCapacity)
	}

	if len(assetIDs) == 0 {
		return nil
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	pending := make(map[string]*core.PriceRecord, len(assetIDs))
	records := make([]*core.PriceRecord, 0, len(assetIDs))

	for idx, assetID := range assetIDs {
		price, timestamp := prices[idx], timestamps[idx]

		if core.IsZeroIdentifier(assetID) {
			return fmt.Errorf("item %d asset id %q: %w", idx, assetID, core.ErrConfiguration)
		}

		if !price.IsPositive() || !wad.Valid(price) {
			return fmt.Errorf("item %d price %s: %w", idx, price, core.ErrInvalidValue)
		}

		config, err := s.assets.Find(ctx, assetID)
		if err != nil {
			log.WithError(err).Errorln("assets.Find")
			return err
		}

		if !config.Configured() {
			return fmt.Errorf("item %d asset %s: %w", idx, assetID, core.ErrUnsupportedAsset)
		}

		record, ok := pending[assetID]
		if !ok {
			if record, err = s.prices.Find(ctx, assetID); err != nil {
				log.WithError(err).Errorln("prices.Find")
				return err
			}
		}

		if record.AssetID != "" && timestamp < record.Timestamp {
			return fmt.Errorf("item %d asset %s timestamp %d before %d: %w", idx, assetID, timestamp, record.Timestamp, core.ErrInvalidValue)
		}

		next := &core.PriceRecord{
			ID:        record.ID,
			AssetID:   assetID,
			Price:     price,
			Timestamp: timestamp,
			Decimals:  config.Decimals,
			UpdatedBy: caller,
		}

		if ok {
			*record = *next
			continue
		}

		pending[assetID] = next
		records = append(records, next)
	}

	if err := s.prices.Save(ctx, records); err != nil {
		log.WithError(err).Errorln("prices.Save")
		return err
	}

	log.Debugf("%d prices updated", len(records))
	return nil
}

// GetPrice strict read
func (s *PriceService) GetPrice(ctx context.Context, assetID string) (*core.PriceRecord, error) {
	config, record, err := s.load(ctx, assetID)
	if err != nil {
		return nil, err
	}

	switch reason := s.check(config, record); reason {
	case core.ReasonNone:
		return record, nil
	case core.ReasonZeroPrice:
		return nil, fmt.Errorf("asset %s price: %w", assetID, core.ErrInvalidValue)
	case core.ReasonStale:
		return nil, fmt.Errorf("asset %s price at %d: %w", assetID, record.Timestamp, core.ErrStaleData)
	default:
		return nil, fmt.Errorf("asset %s: %w", assetID, core.ErrUnsupportedAsset)
	}
}

// GetPriceInfo non-strict read, store failures are reported as an invalid price
func (s *PriceService) GetPriceInfo(ctx context.Context, assetID string) (*core.PriceInfo, error) {
	r := fallback.Call(func() (*core.PriceInfo, error) {
		config, record, err := s.load(ctx, assetID)
		if err != nil {
			return nil, err
		}

		reason := s.check(config, record)
		return &core.PriceInfo{
			AssetID:   assetID,
			Price:     record.Price,
			Timestamp: record.Timestamp,
			Decimals:  config.Decimals,
			IsValid:   reason == core.ReasonNone,
			Reason:    reason,
		}, nil
	}, &core.PriceInfo{AssetID: assetID, Price: decimal.Zero, Reason: core.ReasonUnsupported})

	if r.Failed() {
		logger.FromContext(ctx).WithError(r.Err).WithField("asset", assetID).Warnln("price info unavailable")
	}

	return r.Value, nil
}

// AssetConfig return an empty config if not configured
func (s *PriceService) AssetConfig(ctx context.Context, assetID string) (*core.AssetConfig, error) {
	return s.assets.Find(ctx, assetID)
}

// Assets all configured assets
func (s *PriceService) Assets(ctx context.Context) ([]*core.AssetConfig, error) {
	return s.assets.All(ctx)
}

func (s *PriceService) load(ctx context.Context, assetID string) (*core.AssetConfig, *core.PriceRecord, error) {
	config, err := s.assets.Find(ctx, assetID)
	if err != nil {
		return nil, nil, err
	}

	record := &core.PriceRecord{AssetID: assetID, Price: decimal.Zero}
	if config.Configured() {
		if record, err = s.prices.Find(ctx, assetID); err != nil {
			return nil, nil, err
		}
	}

	return config, record, nil
}

func (s *PriceService) check(config *core.AssetConfig, record *core.PriceRecord) core.Reason {
	if !config.Configured() || !config.Active {
		return core.ReasonUnsupported
	}

	if !record.Price.IsPositive() {
		return core.ReasonZeroPrice
	}

	if s.clock.Now().Unix()-record.Timestamp > int64(config.MaxAge.Seconds()) {
		return core.ReasonStale
	}

	return core.ReasonNone
}
