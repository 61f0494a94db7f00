package rest

import (
	"errors"
	"net/http"

	"safeprice/core"
	"safeprice/handler/render"
	"safeprice/service/monitor"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
)

// Handle handle rest api request
func Handle(
	defaults core.DegradationConfig,
	prices core.PriceService,
	valuations core.ValuationService,
	mon *monitor.Monitor,
	risks core.RiskService,
	reg prometheus.Registerer,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Route("/assets", func(r chi.Router) {
		r.Get("/", listAssetsHandler(prices))
		r.Post("/", configureAssetHandler(prices))
	})

	router.Route("/prices", func(r chi.Router) {
		r.Post("/", updatePricesHandler(prices))
		r.Get("/{asset}", priceHandler(prices))
		r.Get("/{asset}/info", priceInfoHandler(prices))
	})

	router.Route("/valuations", func(r chi.Router) {
		r.Post("/", valueHandler(defaults, valuations))
		r.Post("/batch", valueBatchHandler(defaults, valuations))
	})

	router.Route("/degradation", func(r chi.Router) {
		r.Get("/stats", statsHandler(mon))
		r.Get("/buffer", bufferHandler(mon))
		r.Get("/events/{index}", eventHandler(mon))
		r.Get("/details/{hash}", detailHandler(mon))
		r.Post("/events", recordHandler(mon))
		r.Post("/clear", clearHandler(mon))
		r.Get("/upgrade", upgradeWindowHandler(mon))
		r.Post("/upgrade/authorize", authorizeUpgradeHandler(mon))
		r.Post("/upgrade", upgradeHandler(mon, reg))
	})

	router.Route("/accounts/{account}", func(r chi.Router) {
		r.Get("/health-factor", healthFactorHandler(risks))
		r.Get("/risk", riskHandler(risks))
	})

	router.Get("/risk", risksHandler(risks))
	router.Post("/risk/snapshots", pushRiskHandler(risks))

	return router
}
