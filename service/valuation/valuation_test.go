package valuation

import (
	"context"
	"testing"
	"time"

	"safeprice/core"
	"safeprice/internal/valuation"
	"safeprice/service/access"
	"safeprice/service/block"
	"safeprice/service/monitor"
	"safeprice/service/oracle"
	"safeprice/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	gov     = "gov"
	updater = "feeder"
)

type fixture struct {
	prices  *oracle.PriceService
	monitor *monitor.Monitor
	service core.ValuationService
}

func newFixture(t *testing.T, registry map[string]string) *fixture {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	clock := core.ClockFunc(func() time.Time { return now })

	ac := access.New(map[string][]string{
		string(core.ActionConfigureAsset): {gov},
		string(core.ActionUpdatePrice):    {updater},
	})
	components := access.NewRegistry(registry)
	system := &core.System{}

	prices := oracle.New(memory.NewAssetStore(), memory.NewPriceStore(), ac, clock)
	m, err := monitor.New(ctx, memory.NewEventStore(), memory.NewHealthDetailStore(), memory.NewUpgradeStore(),
		monitor.NewAnalytics(nil), ac, components, block.New(system, clock), clock, system)
	require.Nil(t, err)

	for _, asset := range []string{"btc", "eth"} {
		require.Nil(t, prices.ConfigureAsset(ctx, gov, &core.AssetConfig{AssetID: asset, Decimals: 8, MaxAge: time.Hour}))
	}

	require.Nil(t, prices.UpdatePrice(ctx, updater, "btc", decimal.New(5, 12), now.Unix()))
	require.Nil(t, prices.UpdatePrice(ctx, updater, "eth", decimal.New(3, 11), now.Add(-2*time.Hour).Unix()))

	return &fixture{
		prices:  prices,
		monitor: m,
		service: New(valuation.New(prices, clock), m, components, 0),
	}
}

func TestGetAssetValueWithFallback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]string{core.RegistryKeyPriceOracle: "oracle"})
	cfg := core.DefaultDegradationConfig()

	live, err := f.service.GetAssetValueWithFallback(ctx, "btc", decimal.NewFromInt(2), cfg)
	require.Nil(t, err)
	assert.False(t, live.UsedFallback)
	assert.Equal(t, "100000", live.Value.String())
	assert.Equal(t, 0, f.monitor.GetCircularBufferStats(ctx).ActualCount)

	stale, err := f.service.GetAssetValueWithFallback(ctx, "eth", decimal.NewFromInt(50), cfg)
	require.Nil(t, err)
	assert.True(t, stale.UsedFallback)
	assert.Equal(t, core.ReasonStale, stale.Reason)
	assert.Equal(t, "25", stale.Value.String())

	evt, err := f.monitor.GetEventAtIndex(ctx, 0)
	require.Nil(t, err)
	assert.Equal(t, core.RegistryKeyPriceOracle, evt.Module)
	assert.Equal(t, "25", evt.FallbackValue.String())

	detail, err := f.monitor.HealthDetail(ctx, evt.ReasonHash)
	require.Nil(t, err)
	assert.Equal(t, "stale:eth", detail.Text)

	_, err = f.service.GetAssetValueWithFallback(ctx, "", decimal.NewFromInt(1), cfg)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestReportFailureDoesNotFailValuation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]string{})

	results, err := f.service.GetAssetValuesWithFallback(ctx, []*core.ValuationRequest{
		{AssetID: "btc", Amount: decimal.NewFromInt(1)},
		{AssetID: "doge", Amount: decimal.NewFromInt(10)},
	}, core.DefaultDegradationConfig())
	require.Nil(t, err)
	require.Len(t, results, 2)

	assert.False(t, results[0].UsedFallback)
	assert.True(t, results[1].UsedFallback)
	assert.Equal(t, core.ReasonUnsupported, results[1].Reason)
	assert.Equal(t, "5", results[1].Value.String())
	assert.Equal(t, 0, f.monitor.GetCircularBufferStats(ctx).ActualCount)
}
