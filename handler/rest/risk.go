package rest

import (
	"net/http"

	"safeprice/core"
	"safeprice/handler/param"
	"safeprice/handler/render"
	"safeprice/handler/request"
	"safeprice/handler/views"

	"github.com/go-chi/chi"
	"github.com/twitchtv/twirp"
)

func healthFactorHandler(risks core.RiskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account := chi.URLParam(r, "account")
		hf, err := risks.GetUserHealthFactor(r.Context(), account)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{
			"account":                account,
			"health_factor":          hf,
			"readable_health_factor": views.HealthFactorText(hf),
		})
	}
}

func riskHandler(risks core.RiskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		account := chi.URLParam(r, "account")

		var params struct {
			Cached bool `json:"cached"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.Cached {
			snapshot, ok := risks.CachedRiskSnapshot(ctx, account)
			if !ok {
				render.Error(w, twirp.NotFoundError("no cached snapshot"))
				return
			}

			render.JSON(w, views.RiskView(snapshot))
			return
		}

		snapshot, err := risks.GetUserRiskAssessment(ctx, account)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.RiskView(snapshot))
	}
}

func risksHandler(risks core.RiskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Accounts []string `json:"account"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		snapshots, err := risks.GetUserRiskAssessments(r.Context(), params.Accounts)
		if err != nil {
			render.Error(w, err)
			return
		}

		items := make([]*views.Risk, 0, len(snapshots))
		for _, s := range snapshots {
			items = append(items, views.RiskView(s))
		}

		render.JSON(w, items)
	}
}

func pushRiskHandler(risks core.RiskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var totals core.PositionTotals
		if err := param.Binding(r, &totals); err != nil {
			render.BadRequest(w, err)
			return
		}

		snapshot, err := risks.PushRiskSnapshot(r.Context(), request.CallerFrom(r.Context()), &totals)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.RiskView(snapshot))
	}
}
