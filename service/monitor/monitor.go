// Package monitor is the single entry point recording degradation events.
//
// Recording is best-effort: once the caller is authorized, a failing event
// log write, detail registration or analytics update is swallowed into the
// returned outcome and logged, never returned as an error.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"safeprice/core"
	"safeprice/internal/eventlog"
	"safeprice/pkg/fallback"
	"safeprice/pkg/id"
	"safeprice/pkg/wad"

	"github.com/fox-one/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/yiplee/structs"
)

// Monitor degradation monitor
type Monitor struct {
	mux      sync.Mutex
	ring     *eventlog.Ring
	registry *eventlog.Registry

	events    core.EventStore
	details   core.HealthDetailStore
	upgrades  core.UpgradeStore
	analytics core.DegradationAnalytics
	version   int
	window    core.UpgradeWindow

	access     core.AccessControl
	components core.Registry
	blocks     core.IBlockService
	clock      core.Clock
	system     *core.System

	newDetails prometheus.Counter
	dropped    prometheus.Counter
}

// New restore the monitor from its stores
func New(
	ctx context.Context,
	events core.EventStore,
	details core.HealthDetailStore,
	upgrades core.UpgradeStore,
	analytics core.DegradationAnalytics,
	access core.AccessControl,
	components core.Registry,
	blocks core.IBlockService,
	clock core.Clock,
	system *core.System,
) (*Monitor, error) {
	if clock == nil {
		clock = core.SystemClock
	}

	slots, cursor, err := events.Load(ctx)
	if err != nil {
		return nil, err
	}

	ring, err := eventlog.Restore(slots, cursor)
	if err != nil {
		return nil, err
	}

	window, version, err := upgrades.Load(ctx)
	if err != nil {
		return nil, err
	}

	return &Monitor{
		ring:       ring,
		registry:   eventlog.NewRegistry(),
		events:     events,
		details:    details,
		upgrades:   upgrades,
		analytics:  analytics,
		version:    version,
		window:     window,
		access:     access,
		components: components,
		blocks:     blocks,
		clock:      clock,
		system:     system,
		newDetails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "safeprice",
			Subsystem: "degradation",
			Name:      "health_details_total",
			Help:      "Distinct diagnostic texts registered.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "safeprice",
			Subsystem: "degradation",
			Name:      "record_failures_total",
			Help:      "Degradation events whose recording partially failed.",
		}),
	}, nil
}

// Collectors monitor owned prometheus collectors
func (m *Monitor) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.newDetails, m.dropped}
}

// RecordDegradationEvent admin path
func (m *Monitor) RecordDegradationEvent(ctx context.Context, caller, module, reason string, fallbackValue decimal.Decimal, usedFallback bool) (core.RecordOutcome, error) {
	if !m.access.Allow(ctx, core.ActionRecordDegradation, caller) {
		return core.RecordOutcome{}, fmt.Errorf("%s record degradation: %w", caller, core.ErrPermission)
	}

	if strings.TrimSpace(module) == "" {
		return core.RecordOutcome{}, fmt.Errorf("empty module: %w", core.ErrConfiguration)
	}

	if !wad.Valid(fallbackValue) {
		return core.RecordOutcome{}, fmt.Errorf("fallback value %s: %w", fallbackValue, core.ErrInvalidValue)
	}

	return m.record(ctx, module, reason, fallbackValue, usedFallback), nil
}

// RecordDegradationEventFromTrustedSource self report path of the registered price oracle
func (m *Monitor) RecordDegradationEventFromTrustedSource(ctx context.Context, caller, reason string, fallbackValue decimal.Decimal, usedFallback bool) (core.RecordOutcome, error) {
	trusted, err := m.components.Resolve(ctx, core.RegistryKeyPriceOracle)
	if err != nil {
		return core.RecordOutcome{}, err
	}

	if caller != trusted {
		return core.RecordOutcome{}, fmt.Errorf("%s is not the trusted source: %w", caller, core.ErrPermission)
	}

	if !wad.Valid(fallbackValue) {
		return core.RecordOutcome{}, fmt.Errorf("fallback value %s: %w", fallbackValue, core.ErrInvalidValue)
	}

	return m.record(ctx, core.RegistryKeyPriceOracle, reason, fallbackValue, usedFallback), nil
}

func (m *Monitor) record(ctx context.Context, module, reason string, fallbackValue decimal.Decimal, usedFallback bool) core.RecordOutcome {
	log := logger.FromContext(ctx).WithField("module", module)

	now := m.clock.Now()
	height := fallback.Call(func() (int64, error) {
		return m.blocks.GetBlock(ctx, now)
	}, 0)

	evt := &core.DegradationEvent{
		Module:        module,
		ReasonHash:    id.HashText(reason),
		FallbackValue: fallbackValue,
		UsedFallback:  usedFallback,
		Timestamp:     now.Unix(),
		BlockHeight:   height.Value,
		TraceID:       id.GenTraceID(),
	}

	out := core.RecordOutcome{ReasonHash: evt.ReasonHash}
	var errs []error

	m.mux.Lock()
	defer m.mux.Unlock()

	created := fallback.Call(func() (bool, error) {
		return m.registerDetail(ctx, evt.ReasonHash, reason)
	}, false)
	if created.Failed() {
		errs = append(errs, fmt.Errorf("register detail: %w", created.Err))
	} else if created.Value {
		out.NewDetail = true
		m.newDetails.Inc()
		log.WithField("hash", evt.ReasonHash).WithField("text", reason).Infoln("health detail registered")
	}

	slot, overwrite, cursor := m.ring.Next()
	evt.Slot = slot
	if err := fallback.Do(func() error {
		return m.events.SaveSlot(ctx, evt, cursor)
	}); err != nil {
		errs = append(errs, fmt.Errorf("save slot %d: %w", slot, err))
	} else {
		m.ring.Add(evt)
		out.Recorded = true
		if overwrite {
			log.Debugf("slot %d overwritten", slot)
		}
	}

	if err := fallback.Do(func() error {
		return m.analytics.Observe(ctx, evt, reason)
	}); err != nil {
		errs = append(errs, fmt.Errorf("analytics: %w", err))
	} else {
		out.AnalyticsUpdated = true
	}

	if len(errs) > 0 {
		out.Err = errors.Join(errs...)
		m.dropped.Inc()
		log.WithError(out.Err).WithField("slot", slot).WithField("trace_id", evt.TraceID).Warnln("degradation event partially recorded")
	}

	return out
}

// registerDetail write once, true only on the first registration of hash
func (m *Monitor) registerDetail(ctx context.Context, hash, text string) (bool, error) {
	if _, ok := m.registry.Text(hash); ok {
		return false, nil
	}

	created, err := m.details.CreateIfNotExist(ctx, &core.HealthDetail{Hash: hash, Text: text})
	if err != nil {
		return false, err
	}

	m.registry.RegisterIfNew(hash, text)
	return created, nil
}

// GetDegradationStats analytics and buffer stats
func (m *Monitor) GetDegradationStats(ctx context.Context) (*core.DegradationStats, error) {
	m.mux.Lock()
	defer m.mux.Unlock()

	stats, err := m.analytics.Stats(ctx)
	if err != nil {
		return nil, err
	}

	stats.Version = m.version
	stats.Buffer = m.ring.Stats()
	return stats, nil
}

// GetEventAtIndex k=0 is the newest event
func (m *Monitor) GetEventAtIndex(ctx context.Context, k int) (*core.DegradationEvent, error) {
	m.mux.Lock()
	defer m.mux.Unlock()

	evt, err := m.ring.Get(k)
	if err != nil {
		return nil, err
	}

	v := *evt
	return &v, nil
}

// GetCircularBufferStats buffer stats
func (m *Monitor) GetCircularBufferStats(ctx context.Context) core.BufferStats {
	m.mux.Lock()
	defer m.mux.Unlock()

	return m.ring.Stats()
}

// HealthDetail lookup the text of a reason hash
func (m *Monitor) HealthDetail(ctx context.Context, hash string) (*core.HealthDetail, error) {
	if !id.IsHash(hash) {
		return nil, fmt.Errorf("reason hash %q: %w", hash, core.ErrConfiguration)
	}

	if text, ok := m.registry.Text(hash); ok {
		return &core.HealthDetail{Hash: hash, Text: text}, nil
	}

	return m.details.Find(ctx, hash)
}

// ClearEvents admin reset of the buffer counters
func (m *Monitor) ClearEvents(ctx context.Context, caller string) error {
	if !m.access.Allow(ctx, core.ActionClearEvents, caller) {
		return fmt.Errorf("%s clear events: %w", caller, core.ErrPermission)
	}

	m.mux.Lock()
	defer m.mux.Unlock()

	if err := m.events.ResetCursor(ctx); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("events.ResetCursor")
		return err
	}

	before := m.ring.Stats()
	m.ring.Clear()
	logger.FromContext(ctx).WithFields(structs.Map(before)).WithField("caller", caller).Infoln("degradation events cleared")
	return nil
}

// UpgradeWindow current authorization window
func (m *Monitor) UpgradeWindow() core.UpgradeWindow {
	m.mux.Lock()
	defer m.mux.Unlock()

	return m.window
}

// AuthorizeUpgrade open the upgrade window, designated admin only
func (m *Monitor) AuthorizeUpgrade(ctx context.Context, caller string) (core.UpgradeWindow, error) {
	if !m.system.IsUpgradeAdmin(caller) {
		return core.UpgradeWindow{}, fmt.Errorf("%s authorize upgrade: %w", caller, core.ErrPermission)
	}

	m.mux.Lock()
	defer m.mux.Unlock()

	now := m.clock.Now()
	window := core.UpgradeWindow{
		OpenedBy: caller,
		OpenedAt: now,
		ExpireAt: now.Add(m.system.UpgradeWindowDuration()),
	}

	if err := m.upgrades.Save(ctx, window, m.version); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("upgrades.Save")
		return core.UpgradeWindow{}, err
	}

	m.window = window
	logger.FromContext(ctx).WithField("expire_at", window.ExpireAt).Infoln("upgrade window opened")
	return window, nil
}

// Upgrade swap the analytics implementation inside an open window, the window is consumed
func (m *Monitor) Upgrade(ctx context.Context, caller string, analytics core.DegradationAnalytics) (int, error) {
	if !m.system.IsUpgradeAdmin(caller) {
		return 0, fmt.Errorf("%s upgrade: %w", caller, core.ErrPermission)
	}

	if analytics == nil {
		return 0, fmt.Errorf("nil analytics: %w", core.ErrConfiguration)
	}

	m.mux.Lock()
	defer m.mux.Unlock()

	if now := m.clock.Now(); !m.window.Open(now) {
		return 0, fmt.Errorf("upgrade at %s: %w", now, core.ErrUpgradeWindow)
	}

	version := m.version + 1
	if err := m.upgrades.Save(ctx, core.UpgradeWindow{}, version); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("upgrades.Save")
		return 0, err
	}

	m.version = version
	m.window = core.UpgradeWindow{}
	m.analytics = analytics
	logger.FromContext(ctx).WithField("version", version).Infoln("monitor upgraded")
	return version, nil
}
