package rest

import (
	"net/http"

	"safeprice/core"
	"safeprice/handler/param"
	"safeprice/handler/render"
	"safeprice/handler/request"
	"safeprice/handler/views"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

func priceHandler(prices core.PriceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := prices.GetPrice(r.Context(), chi.URLParam(r, "asset"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.PriceView(record))
	}
}

func priceInfoHandler(prices core.PriceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := prices.GetPriceInfo(r.Context(), chi.URLParam(r, "asset"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.PriceInfoView(info))
	}
}

func updatePricesHandler(prices core.PriceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body struct {
			AssetIDs   []string          `json:"asset_ids"`
			Prices     []decimal.Decimal `json:"prices"`
			Timestamps []int64           `json:"timestamps"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := prices.UpdatePrices(ctx, request.CallerFrom(ctx), body.AssetIDs, body.Prices, body.Timestamps); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{"updated": len(body.AssetIDs)})
	}
}
