package monitor

import (
	"context"
	"testing"

	"safeprice/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalytics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	a := NewAnalytics(VersionedRegisterer(reg, 0))

	require.Nil(t, a.Observe(ctx, &core.DegradationEvent{Module: "valuation", UsedFallback: true, Timestamp: 10}, "stale"))
	require.Nil(t, a.Observe(ctx, &core.DegradationEvent{Module: "risk", Timestamp: 5}, "stale"))

	stats, err := a.Stats(ctx)
	require.Nil(t, err)
	assert.EqualValues(t, 2, stats.TotalEvents)
	assert.EqualValues(t, 1, stats.FallbackCount)
	assert.EqualValues(t, 2, stats.ByReason["stale"])
	assert.EqualValues(t, 10, stats.LastEventAt)

	stats.ByModule["valuation"] = 100
	again, _ := a.Stats(ctx)
	assert.EqualValues(t, 1, again.ByModule["valuation"])

	assert.Equal(t, 1.0, testutil.ToFloat64(a.events.WithLabelValues("valuation", "true")))

	// same version registers once, a new version gets its own series
	dup := NewAnalytics(VersionedRegisterer(reg, 0))
	assert.Equal(t, 1.0, testutil.ToFloat64(dup.events.WithLabelValues("valuation", "true")))

	next := NewAnalytics(VersionedRegisterer(reg, 1))
	assert.Equal(t, 0.0, testutil.ToFloat64(next.events.WithLabelValues("valuation", "true")))
}
