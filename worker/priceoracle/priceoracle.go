package priceoracle

import (
	"context"
	"fmt"
	"sync"

	"safeprice/core"
	"safeprice/pkg/id"
	"safeprice/pkg/number"
	"safeprice/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const concurrency = 8

// Worker pull tickers of active assets and push them to the price store
type Worker struct {
	worker.BaseJob
	prices     core.PriceService
	feed       core.FeedService
	monitor    core.DegradationMonitor
	components core.Registry
	clock      core.Clock
}

// New new price oracle worker
func New(
	location, spec string,
	prices core.PriceService,
	feed core.FeedService,
	monitor core.DegradationMonitor,
	components core.Registry,
	clock core.Clock,
) (*Worker, error) {
	if clock == nil {
		clock = core.SystemClock
	}

	w := Worker{
		prices:     prices,
		feed:       feed,
		monitor:    monitor,
		components: components,
		clock:      clock,
	}

	if err := w.Init("priceoracle", location, spec, w.onWork); err != nil {
		return nil, err
	}

	return &w, nil
}

// Run run worker
func (w *Worker) Run(ctx context.Context) error {
	return w.Serve(ctx)
}

type pulled struct {
	config *core.AssetConfig
	ticker *core.PriceTicker
	price  decimal.Decimal
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "priceoracle")

	updater, err := w.components.Resolve(ctx, core.RegistryKeyPriceOracle)
	if err != nil {
		log.WithError(err).Errorln("resolve updater")
		return err
	}

	assets, err := w.prices.Assets(ctx)
	if err != nil {
		log.WithError(err).Errorln("prices.Assets")
		return err
	}

	var (
		mux     sync.Mutex
		results = make([]*pulled, 0, len(assets))
		roundID = id.GenTraceID()
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, a := range assets {
		if !a.Active || a.SourceID == "" {
			continue
		}

		config := a
		g.Go(func() error {
			ticker, err := w.feed.PullPriceTicker(gctx, config.SourceID)
			if err != nil {
				log.WithError(err).WithField("asset", config.AssetID).Warnln("pull price ticker")
				w.report(gctx, updater, roundID, config, "feed-unavailable", err)
				return nil
			}

			if !ticker.Price.IsPositive() {
				log.WithField("asset", config.AssetID).Warnln("invalid ticker price:", ticker.Price)
				return nil
			}

			// a tiny ticker may truncate to zero at the asset decimals
			price := number.Integer(ticker.Price, config.Decimals)
			if !price.IsPositive() {
				log.WithField("asset", config.AssetID).Warnln("ticker price below asset precision:", ticker.Price)
				w.report(gctx, updater, roundID, config, "zero-price", core.ErrInvalidValue)
				return nil
			}

			mux.Lock()
			results = append(results, &pulled{config: config, ticker: ticker, price: price})
			mux.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return w.push(ctx, updater, results)
}

// push write prices in chunks, an item older than the stored price is skipped
func (w *Worker) push(ctx context.Context, updater string, results []*pulled) error {
	log := logger.FromContext(ctx).WithField("worker", "priceoracle")

	var (
		assetIDs   []string
		prices     []decimal.Decimal
		timestamps []int64
	)

	flush := func() error {
		if len(assetIDs) == 0 {
			return nil
		}

		err := w.prices.UpdatePrices(ctx, updater, assetIDs, prices, timestamps)
		if err != nil {
			log.WithError(err).Errorf("update %d prices", len(assetIDs))
		}

		assetIDs, prices, timestamps = nil, nil, nil
		return err
	}

	var errs []error
	for _, r := range results {
		ts := r.ticker.Timestamp
		if ts <= 0 {
			ts = w.clock.Now().Unix()
		}

		info, err := w.prices.GetPriceInfo(ctx, r.config.AssetID)
		if err == nil && info.Timestamp > ts {
			log.WithField("asset", r.config.AssetID).Debugln("ticker older than stored price, skip")
			continue
		}

		assetIDs = append(assetIDs, r.config.AssetID)
		prices = append(prices, r.price)
		timestamps = append(timestamps, ts)

		if len(assetIDs) >= core.DefaultMaxBatchSize {
			if err := flush(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if err := flush(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d of the price batches failed: %w", len(errs), errs[0])
	}

	return nil
}

// report an unusable feed through the self-report path, best effort
func (w *Worker) report(ctx context.Context, reporter, roundID string, config *core.AssetConfig, kind string, cause error) {
	log := logger.FromContext(ctx).WithField("worker", "priceoracle").
		WithField("asset", config.AssetID).
		WithField("trace_id", id.ModifyTraceID(roundID, config.AssetID))

	reason := fmt.Sprintf("%s:%s", kind, config.AssetID)
	out, err := w.monitor.RecordDegradationEventFromTrustedSource(ctx, reporter, reason, decimal.Zero, false)
	if err != nil {
		log.WithError(err).Warnln("report feed failure")
		return
	}

	if out.Err != nil {
		log.WithError(out.Err).Warnln("report feed failure partially recorded")
	}

	log.WithError(cause).Debugln("feed failure reported")
}
