package monitor

import (
	"context"
	"strconv"
	"sync"

	"safeprice/core"

	"github.com/prometheus/client_golang/prometheus"
)

// Analytics in memory degradation counters mirrored to prometheus
type Analytics struct {
	mux   sync.RWMutex
	stats core.DegradationStats

	events *prometheus.CounterVec
}

// NewAnalytics new analytics, counters are registered with reg when not nil.
// An upgraded analytics registers under a different version label.
func NewAnalytics(reg prometheus.Registerer) *Analytics {
	a := &Analytics{
		stats: core.DegradationStats{
			ByModule: map[string]uint64{},
			ByReason: map[string]uint64{},
		},
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safeprice",
			Subsystem: "degradation",
			Name:      "events_total",
			Help:      "Degradation events recorded by the monitor.",
		}, []string{"module", "used_fallback"}),
	}

	if reg != nil {
		if err := reg.Register(a.events); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				a.events = are.ExistingCollector.(*prometheus.CounterVec)
			}
		}
	}

	return a
}

// Observe count one event
func (a *Analytics) Observe(ctx context.Context, event *core.DegradationEvent, reason string) error {
	a.mux.Lock()
	defer a.mux.Unlock()

	a.stats.TotalEvents++
	if event.UsedFallback {
		a.stats.FallbackCount++
	}

	a.stats.ByModule[event.Module]++
	a.stats.ByReason[reason]++
	if event.Timestamp > a.stats.LastEventAt {
		a.stats.LastEventAt = event.Timestamp
	}

	a.events.WithLabelValues(event.Module, strconv.FormatBool(event.UsedFallback)).Inc()
	return nil
}

// Stats snapshot copy
func (a *Analytics) Stats(ctx context.Context) (*core.DegradationStats, error) {
	a.mux.RLock()
	defer a.mux.RUnlock()

	stats := a.stats
	stats.ByModule = make(map[string]uint64, len(a.stats.ByModule))
	for k, v := range a.stats.ByModule {
		stats.ByModule[k] = v
	}

	stats.ByReason = make(map[string]uint64, len(a.stats.ByReason))
	for k, v := range a.stats.ByReason {
		stats.ByReason[k] = v
	}

	return &stats, nil
}

// VersionedRegisterer registerer labelling analytics counters with their version
func VersionedRegisterer(reg prometheus.Registerer, version int) prometheus.Registerer {
	if reg == nil {
		return nil
	}

	return prometheus.WrapRegistererWith(prometheus.Labels{"analytics_version": strconv.Itoa(version)}, reg)
}
