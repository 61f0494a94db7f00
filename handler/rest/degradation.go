package rest

import (
	"errors"
	"net/http"
	"strconv"

	"safeprice/core"
	"safeprice/handler/param"
	"safeprice/handler/render"
	"safeprice/handler/request"
	"safeprice/handler/views"
	"safeprice/service/monitor"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/twitchtv/twirp"
)

func statsHandler(mon *monitor.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := mon.GetDegradationStats(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, stats)
	}
}

func bufferHandler(mon *monitor.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, mon.GetCircularBufferStats(r.Context()))
	}
}

func eventHandler(mon *monitor.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			render.Error(w, twirp.InvalidArgumentError("index", err.Error()))
			return
		}

		evt, err := mon.GetEventAtIndex(ctx, index)
		if err != nil {
			render.Error(w, err)
			return
		}

		view := &views.Event{Index: index, DegradationEvent: evt}
		if detail, err := mon.HealthDetail(ctx, evt.ReasonHash); err == nil {
			view.Reason = detail.Text
		}

		render.JSON(w, view)
	}
}

func detailHandler(mon *monitor.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := mon.HealthDetail(r.Context(), chi.URLParam(r, "hash"))
		if err != nil {
			render.Error(w, err)
			return
		}

		if detail.Hash == "" {
			render.NotFoundRequest(w, errors.New("health detail not found"))
			return
		}

		render.JSON(w, detail)
	}
}

func recordHandler(mon *monitor.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body struct {
			Module        string          `json:"module"`
			Reason        string          `json:"reason"`
			FallbackValue decimal.Decimal `json:"fallback_value"`
			UsedFallback  bool            `json:"used_fallback"`
			// Trusted use the self report path of the price oracle
			Trusted bool `json:"trusted"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		var (
			caller = request.CallerFrom(ctx)
			out    core.RecordOutcome
			err    error
		)

		if body.Trusted {
			out, err = mon.RecordDegradationEventFromTrustedSource(ctx, caller, body.Reason, body.FallbackValue, body.UsedFallback)
		} else {
			out, err = mon.RecordDegradationEvent(ctx, caller, body.Module, body.Reason, body.FallbackValue, body.UsedFallback)
		}

		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.OutcomeView(out))
	}
}

func clearHandler(mon *monitor.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := mon.ClearEvents(ctx, request.CallerFrom(ctx)); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, mon.GetCircularBufferStats(ctx))
	}
}

func upgradeWindowHandler(mon *monitor.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, mon.UpgradeWindow())
	}
}

func authorizeUpgradeHandler(mon *monitor.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		window, err := mon.AuthorizeUpgrade(ctx, request.CallerFrom(ctx))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, window)
	}
}

// upgradeHandler swap in fresh analytics counters under the next version
func upgradeHandler(mon *monitor.Monitor, reg prometheus.Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		stats, err := mon.GetDegradationStats(ctx)
		if err != nil {
			render.Error(w, err)
			return
		}

		analytics := monitor.NewAnalytics(monitor.VersionedRegisterer(reg, stats.Version+1))
		version, err := mon.Upgrade(ctx, request.CallerFrom(ctx), analytics)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{"version": version})
	}
}
