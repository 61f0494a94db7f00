package monitor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"safeprice/core"
	"safeprice/internal/eventlog"
	"safeprice/pkg/id"
	"safeprice/service/access"
	"safeprice/service/block"
	"safeprice/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	admin    = "admin"
	oracle   = "oracle"
	upgrader = "upgrader"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

type brokenEvents struct {
	*memory.EventStore
}

func (brokenEvents) SaveSlot(context.Context, *core.DegradationEvent, core.EventCursor) error {
	return errors.New("disk full")
}

type flakyUpgrades struct {
	*memory.UpgradeStore
	fail bool
}

func (f *flakyUpgrades) Save(ctx context.Context, w core.UpgradeWindow, version int) error {
	if f.fail {
		return errors.New("disk full")
	}

	return f.UpgradeStore.Save(ctx, w, version)
}

type panicAnalytics struct{}

func (panicAnalytics) Observe(context.Context, *core.DegradationEvent, string) error {
	panic("boom")
}

func (panicAnalytics) Stats(context.Context) (*core.DegradationStats, error) {
	return &core.DegradationStats{}, nil
}

type fixture struct {
	events   core.EventStore
	details  *memory.HealthDetailStore
	upgrades core.UpgradeStore
	clock    *clock
	registry map[string]string
}

func newFixture() *fixture {
	return &fixture{
		events:   memory.NewEventStore(),
		details:  memory.NewHealthDetailStore(),
		upgrades: memory.NewUpgradeStore(),
		clock:    &clock{now: time.Unix(1_700_000_000, 0)},
		registry: map[string]string{core.RegistryKeyPriceOracle: oracle},
	}
}

func (f *fixture) monitor(t *testing.T, analytics core.DegradationAnalytics) *Monitor {
	ac := access.New(map[string][]string{
		string(core.ActionRecordDegradation): {admin},
		string(core.ActionClearEvents):       {admin},
	})

	system := &core.System{UpgradeAdmin: upgrader}
	m, err := New(context.Background(), f.events, f.details, f.upgrades, analytics, ac,
		access.NewRegistry(f.registry), block.New(system, f.clock), f.clock, system)
	require.Nil(t, err)
	return m
}

func TestRecordDegradationEvent(t *testing.T) {
	ctx := context.Background()
	m := newFixture().monitor(t, NewAnalytics(nil))

	_, err := m.RecordDegradationEvent(ctx, "mallory", "valuation", "stale", decimal.NewFromInt(25), true)
	assert.ErrorIs(t, err, core.ErrPermission)

	_, err = m.RecordDegradationEvent(ctx, admin, "valuation", "stale", decimal.NewFromInt(-1), true)
	assert.ErrorIs(t, err, core.ErrInvalidValue)

	out, err := m.RecordDegradationEvent(ctx, admin, "valuation", "stale", decimal.NewFromInt(25), true)
	require.Nil(t, err)
	assert.True(t, out.Recorded)
	assert.True(t, out.AnalyticsUpdated)
	assert.Nil(t, out.Err)
	assert.Equal(t, id.HashText("stale"), out.ReasonHash)

	evt, err := m.GetEventAtIndex(ctx, 0)
	require.Nil(t, err)
	assert.Equal(t, "valuation", evt.Module)
	assert.Equal(t, "25", evt.FallbackValue.String())
	assert.True(t, evt.UsedFallback)
	assert.Equal(t, int64(1_700_000_000), evt.Timestamp)
	assert.NotEmpty(t, evt.TraceID)

	stats, err := m.GetDegradationStats(ctx)
	require.Nil(t, err)
	assert.EqualValues(t, 1, stats.TotalEvents)
	assert.EqualValues(t, 1, stats.FallbackCount)
	assert.EqualValues(t, 1, stats.ByModule["valuation"])
	assert.EqualValues(t, 1, stats.ByReason["stale"])
	assert.EqualValues(t, 1, stats.Buffer.ActualCount)

	_, err = m.GetEventAtIndex(ctx, 1)
	assert.ErrorIs(t, err, core.ErrCapacity)
}

func TestRecordFromTrustedSource(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	m := f.monitor(t, NewAnalytics(nil))

	out, err := m.RecordDegradationEventFromTrustedSource(ctx, oracle, "zero-price", decimal.NewFromInt(5), true)
	require.Nil(t, err)
	assert.True(t, out.Recorded)

	evt, err := m.GetEventAtIndex(ctx, 0)
	require.Nil(t, err)
	assert.Equal(t, core.RegistryKeyPriceOracle, evt.Module)

	// the admin gate does not open the trusted path
	_, err = m.RecordDegradationEventFromTrustedSource(ctx, admin, "zero-price", decimal.Zero, true)
	assert.ErrorIs(t, err, core.ErrPermission)

	delete(f.registry, core.RegistryKeyPriceOracle)
	_, err = m.RecordDegradationEventFromTrustedSource(ctx, oracle, "zero-price", decimal.Zero, true)
	assert.ErrorIs(t, err, core.ErrDependencyUnavailable)
}

func TestHealthDetailRegisteredOnce(t *testing.T) {
	ctx := context.Background()
	m := newFixture().monitor(t, NewAnalytics(nil))

	first, err := m.RecordDegradationEvent(ctx, admin, "valuation", "feed unreachable", decimal.Zero, true)
	require.Nil(t, err)
	assert.True(t, first.NewDetail)

	second, err := m.RecordDegradationEvent(ctx, admin, "risk", "feed unreachable", decimal.Zero, true)
	require.Nil(t, err)
	assert.False(t, second.NewDetail)
	assert.Equal(t, first.ReasonHash, second.ReasonHash)

	other, err := m.RecordDegradationEvent(ctx, admin, "valuation", "stale", decimal.Zero, true)
	require.Nil(t, err)
	assert.True(t, other.NewDetail)

	detail, err := m.HealthDetail(ctx, first.ReasonHash)
	require.Nil(t, err)
	assert.Equal(t, "feed unreachable", detail.Text)

	// a restarted monitor does not notify again
	m2 := newFixture().monitor(t, NewAnalytics(nil))
	m2.details = m.details
	again, err := m2.RecordDegradationEvent(ctx, admin, "valuation", "stale", decimal.Zero, true)
	require.Nil(t, err)
	assert.False(t, again.NewDetail)
}

func TestRecordIsBestEffort(t *testing.T) {
	ctx := context.Background()

	t.Run("event log", func(t *testing.T) {
		f := newFixture()
		f.events = brokenEvents{memory.NewEventStore()}
		m := f.monitor(t, NewAnalytics(nil))

		out, err := m.RecordDegradationEvent(ctx, admin, "valuation", "stale", decimal.NewFromInt(1), true)
		assert.Nil(t, err)
		assert.False(t, out.Recorded)
		assert.True(t, out.AnalyticsUpdated)
		assert.NotNil(t, out.Err)
		assert.Equal(t, 0, m.GetCircularBufferStats(ctx).ActualCount)
	})

	t.Run("analytics", func(t *testing.T) {
		m := newFixture().monitor(t, panicAnalytics{})

		out, err := m.RecordDegradationEvent(ctx, admin, "valuation", "stale", decimal.NewFromInt(1), true)
		assert.Nil(t, err)
		assert.True(t, out.Recorded)
		assert.False(t, out.AnalyticsUpdated)
		assert.NotNil(t, out.Err)
	})
}

func TestWraparound(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	m := f.monitor(t, NewAnalytics(nil))

	total := eventlog.Capacity + 5
	for i := 0; i < total; i++ {
		_, err := m.RecordDegradationEvent(ctx, admin, fmt.Sprintf("m%d", i), "stale", decimal.NewFromInt(int64(i)), true)
		require.Nil(t, err)
	}

	stats := m.GetCircularBufferStats(ctx)
	assert.Equal(t, eventlog.Capacity, stats.ActualCount)
	assert.EqualValues(t, total, stats.GlobalIndex)
	assert.True(t, stats.IsFull)

	newest, err := m.GetEventAtIndex(ctx, 0)
	require.Nil(t, err)
	assert.Equal(t, fmt.Sprintf("m%d", total-1), newest.Module)

	oldest, err := m.GetEventAtIndex(ctx, eventlog.Capacity-1)
	require.Nil(t, err)
	assert.Equal(t, "m5", oldest.Module)

	// restored from the persisted slots
	restored := f.monitor(t, NewAnalytics(nil))
	evt, err := restored.GetEventAtIndex(ctx, 0)
	require.Nil(t, err)
	assert.Equal(t, newest.Module, evt.Module)
	assert.Equal(t, stats, restored.GetCircularBufferStats(ctx))
}

func TestClearEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	m := f.monitor(t, NewAnalytics(nil))

	_, err := m.RecordDegradationEvent(ctx, admin, "valuation", "stale", decimal.Zero, true)
	require.Nil(t, err)

	assert.ErrorIs(t, m.ClearEvents(ctx, oracle), core.ErrPermission)
	require.Nil(t, m.ClearEvents(ctx, admin))

	assert.Equal(t, core.BufferStats{Capacity: eventlog.Capacity}, m.GetCircularBufferStats(ctx))
	_, err = m.GetEventAtIndex(ctx, 0)
	assert.ErrorIs(t, err, core.ErrCapacity)

	restored := f.monitor(t, NewAnalytics(nil))
	assert.Equal(t, 0, restored.GetCircularBufferStats(ctx).ActualCount)
}

func TestUpgradeWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	m := f.monitor(t, NewAnalytics(nil))

	_, err := m.Upgrade(ctx, upgrader, NewAnalytics(nil))
	assert.ErrorIs(t, err, core.ErrUpgradeWindow)

	_, err = m.AuthorizeUpgrade(ctx, admin)
	assert.ErrorIs(t, err, core.ErrPermission)

	w, err := m.AuthorizeUpgrade(ctx, upgrader)
	require.Nil(t, err)
	assert.Equal(t, core.DefaultUpgradeWindow, w.ExpireAt.Sub(w.OpenedAt))

	_, err = m.Upgrade(ctx, admin, NewAnalytics(nil))
	assert.ErrorIs(t, err, core.ErrPermission)

	f.clock.now = f.clock.now.Add(23 * time.Hour)
	version, err := m.Upgrade(ctx, upgrader, NewAnalytics(nil))
	require.Nil(t, err)
	assert.Equal(t, 1, version)

	// consumed
	_, err = m.Upgrade(ctx, upgrader, NewAnalytics(nil))
	assert.ErrorIs(t, err, core.ErrUpgradeWindow)

	_, err = m.AuthorizeUpgrade(ctx, upgrader)
	require.Nil(t, err)

	f.clock.now = f.clock.now.Add(core.DefaultUpgradeWindow)
	_, err = m.Upgrade(ctx, upgrader, NewAnalytics(nil))
	assert.ErrorIs(t, err, core.ErrUpgradeWindow)

	stats, err := m.GetDegradationStats(ctx)
	require.Nil(t, err)
	assert.Equal(t, 1, stats.Version)

	restored := f.monitor(t, NewAnalytics(nil))
	assert.Equal(t, m.UpgradeWindow(), restored.UpgradeWindow())
}

func TestHealthDetailLookup(t *testing.T) {
	ctx := context.Background()
	m := newFixture().monitor(t, NewAnalytics(nil))

	_, err := m.HealthDetail(ctx, "stale")
	assert.ErrorIs(t, err, core.ErrConfiguration)

	missing, err := m.HealthDetail(ctx, id.HashText("never recorded"))
	require.Nil(t, err)
	assert.Empty(t, missing.Hash)
}

func TestFailedUpgradeKeepsState(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	upgrades := &flakyUpgrades{UpgradeStore: memory.NewUpgradeStore()}
	f.upgrades = upgrades
	m := f.monitor(t, NewAnalytics(nil))

	w, err := m.AuthorizeUpgrade(ctx, upgrader)
	require.Nil(t, err)

	upgrades.fail = true
	_, err = m.Upgrade(ctx, upgrader, NewAnalytics(nil))
	assert.NotNil(t, err)
	assert.Equal(t, w, m.UpgradeWindow())

	restored := f.monitor(t, NewAnalytics(nil))
	assert.Equal(t, w, restored.UpgradeWindow())

	upgrades.fail = false
	version, err := m.Upgrade(ctx, upgrader, NewAnalytics(nil))
	require.Nil(t, err)
	assert.Equal(t, 1, version)
}
