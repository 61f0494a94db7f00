package rest

import (
	"net/http"
	"time"

	"safeprice/core"
	"safeprice/handler/param"
	"safeprice/handler/render"
	"safeprice/handler/request"
	"safeprice/handler/views"
)

func listAssetsHandler(prices core.PriceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assets, err := prices.Assets(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		items := make([]*views.Asset, 0, len(assets))
		for _, a := range assets {
			items = append(items, views.AssetView(a))
		}

		render.JSON(w, items)
	}
}

func configureAssetHandler(prices core.PriceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body struct {
			AssetID  string `json:"asset_id"`
			SourceID string `json:"source_id"`
			Decimals int32  `json:"decimals"`
			MaxAge   int64  `json:"max_age"`
			Pegged   bool   `json:"pegged"`
			Active   *bool  `json:"active,omitempty"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		caller := request.CallerFrom(ctx)
		config := &core.AssetConfig{
			AssetID:  body.AssetID,
			SourceID: body.SourceID,
			Decimals: body.Decimals,
			MaxAge:   time.Duration(body.MaxAge) * time.Second,
			Pegged:   body.Pegged,
		}

		if err := prices.ConfigureAsset(ctx, caller, config); err != nil {
			render.Error(w, err)
			return
		}

		if body.Active != nil {
			if err := prices.SetActive(ctx, caller, body.AssetID, *body.Active); err != nil {
				render.Error(w, err)
				return
			}
		}

		config, err := prices.AssetConfig(ctx, body.AssetID)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.AssetView(config))
	}
}
