package cmd

import (
	"context"
	"time"

	"safeprice/core"
	"safeprice/internal/valuation"
	"safeprice/service/access"
	"safeprice/service/block"
	"safeprice/service/monitor"
	"safeprice/service/oracle"
	"safeprice/service/position"
	"safeprice/service/risk"
	valuationservice "safeprice/service/valuation"
	"safeprice/store/asset"
	"safeprice/store/detail"
	"safeprice/store/event"
	"safeprice/store/memory"
	"safeprice/store/price"
	"safeprice/store/upgrade"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
	"github.com/prometheus/client_golang/prometheus"
)

// stores every store of the pipeline, backed by the database or kept in memory
type stores struct {
	assets   core.AssetStore
	prices   core.PriceStore
	events   core.EventStore
	details  core.HealthDetailStore
	upgrades core.UpgradeStore
}

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func provideSystem() *core.System {
	return cfg.System(rootCmd.Version)
}

func provideStores() stores {
	if cfg.App.Memory {
		return stores{
			assets:   memory.NewAssetStore(),
			prices:   memory.NewPriceStore(),
			events:   memory.NewEventStore(),
			details:  memory.NewHealthDetailStore(),
			upgrades: memory.NewUpgradeStore(),
		}
	}

	database := provideDatabase()
	return stores{
		assets:   asset.Cache(asset.New(database), time.Duration(cfg.App.AssetCacheTTL)*time.Second),
		prices:   price.New(database),
		events:   event.New(database),
		details:  detail.New(database),
		upgrades: upgrade.New(providePropertyStore(database)),
	}
}

// ------------------service------------------------------------

func provideAccessControl() core.AccessControl {
	return access.New(cfg.Roles)
}

func provideRegistry() core.Registry {
	return access.NewRegistry(cfg.Registry)
}

func provideBlockService(system *core.System) core.IBlockService {
	return block.New(system, core.SystemClock)
}

func providePriceService(s stores) *oracle.PriceService {
	return oracle.New(s.assets, s.prices, provideAccessControl(), core.SystemClock)
}

func provideFeedService() core.FeedService {
	return oracle.NewFeed(cfg.Feed)
}

func provideAnalytics(reg prometheus.Registerer, version int) *monitor.Analytics {
	return monitor.NewAnalytics(monitor.VersionedRegisterer(reg, version))
}

func provideMonitor(ctx context.Context, s stores, system *core.System, reg prometheus.Registerer) *monitor.Monitor {
	_, version, err := s.upgrades.Load(ctx)
	if err != nil {
		panic(err)
	}

	m, err := monitor.New(
		ctx,
		s.events,
		s.details,
		s.upgrades,
		provideAnalytics(reg, version),
		provideAccessControl(),
		provideRegistry(),
		provideBlockService(system),
		core.SystemClock,
		system,
	)
	if err != nil {
		panic(err)
	}

	if reg != nil {
		for _, c := range m.Collectors() {
			_ = reg.Register(c)
		}
	}

	return m
}

func provideValuationService(prices core.PriceReader, m core.DegradationMonitor) core.ValuationService {
	engine := valuation.New(prices, core.SystemClock)
	return valuationservice.New(engine, m, provideRegistry(), cfg.Risk.MaxBatchSize)
}

func providePositionAggregator() core.PositionAggregator {
	return position.New(cfg.Position.Endpoint)
}

func provideRiskService(m core.DegradationMonitor) *risk.Service {
	return risk.New(providePositionAggregator(), m, provideAccessControl(), provideRegistry(), core.SystemClock, cfg.Risk)
}
