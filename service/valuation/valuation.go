package valuation

import (
	"context"
	"fmt"

	"safeprice/core"
	"safeprice/internal/valuation"
	"safeprice/pkg/fallback"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

type service struct {
	engine     *valuation.Engine
	monitor    core.DegradationMonitor
	components core.Registry
	maxBatch   int
}

// New valuation service, fallbacks are self reported to the monitor
// under the price oracle identity
func New(engine *valuation.Engine, monitor core.DegradationMonitor, components core.Registry, maxBatch int) core.ValuationService {
	if maxBatch <= 0 {
		maxBatch = core.DefaultMaxBatchSize
	}

	return &service{
		engine:     engine,
		monitor:    monitor,
		components: components,
		maxBatch:   maxBatch,
	}
}

func (s *service) GetAssetValueWithFallback(ctx context.Context, assetID string, amount decimal.Decimal, cfg core.DegradationConfig) (*core.ValuationResult, error) {
	result, err := s.engine.Value(ctx, assetID, amount, cfg)
	if err != nil {
		return nil, err
	}

	s.report(ctx, result)
	return result, nil
}

func (s *service) GetAssetValuesWithFallback(ctx context.Context, items []*core.ValuationRequest, cfg core.DegradationConfig) ([]*core.ValuationResult, error) {
	results, err := s.engine.ValueBatch(ctx, items, cfg, s.maxBatch)
	if err != nil {
		return nil, err
	}

	for _, result := range results {
		s.report(ctx, result)
	}

	return results, nil
}

func (s *service) report(ctx context.Context, result *core.ValuationResult) {
	if !result.UsedFallback {
		return
	}

	log := logger.FromContext(ctx).WithField("asset", result.AssetID).WithField("reason", result.Reason)
	log.Debugln("valuation used fallback")

	if err := fallback.Do(func() error {
		oracle, err := s.components.Resolve(ctx, core.RegistryKeyPriceOracle)
		if err != nil {
			return err
		}

		reason := fmt.Sprintf("%s:%s", result.Reason, result.AssetID)
		out, err := s.monitor.RecordDegradationEventFromTrustedSource(ctx, oracle, reason, result.Value, true)
		if err != nil {
			return err
		}

		return out.Err
	}); err != nil {
		log.WithError(err).Warnln("report degradation")
	}
}
