package handler

import (
	"context"
	"net/http"

	"safeprice/core"
	"safeprice/handler/hc"
	"safeprice/handler/render"
	"safeprice/handler/request"
	"safeprice/handler/rest"
	"safeprice/service/monitor"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/twitchtv/twirp"
)

// Server server
type Server struct {
	system     *core.System
	defaults   core.DegradationConfig
	prices     core.PriceService
	valuations core.ValuationService
	monitor    *monitor.Monitor
	risks      core.RiskService
	reg        prometheus.Registerer
}

// New new server function
func New(
	system *core.System,
	defaults core.DegradationConfig,
	prices core.PriceService,
	valuations core.ValuationService,
	monitor *monitor.Monitor,
	risks core.RiskService,
	reg prometheus.Registerer,
) Server {
	return Server{
		system:     system,
		defaults:   defaults,
		prices:     prices,
		valuations: valuations,
		monitor:    monitor,
		risks:      risks,
		reg:        reg,
	}
}

// HandleHealthCheck handle hc
func (s Server) HandleHealthCheck() http.Handler {
	return hc.Handle(s.system.Version, map[string]hc.Checker{
		"assets": func(ctx context.Context) error {
			_, err := s.prices.Assets(ctx)
			return err
		},
		"degradation": func(ctx context.Context) error {
			_, err := s.monitor.GetDegradationStats(ctx)
			return err
		},
	})
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	r := chi.NewRouter()
	r.Use(request.WithCallerID)
	r.Use(render.WrapResponse(true))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, twirp.NotFoundError("not found"))
	})

	r.Mount("/", rest.Handle(s.defaults, s.prices, s.valuations, s.monitor, s.risks, s.reg))
	return r
}
