package rest

import (
	"net/http"

	"safeprice/core"
	"safeprice/handler/param"
	"safeprice/handler/render"

	"github.com/shopspring/decimal"
)

// policy per request override of the configured degradation policy
type policy struct {
	ConservativeRatioBps           *int64  `json:"conservative_ratio_bps,omitempty"`
	UseFaceValueForSettlementAsset *bool   `json:"use_face_value_for_settlement_asset,omitempty"`
	ReferenceSettlementAsset       *string `json:"reference_settlement_asset,omitempty"`
	SanityMultiplierBps            *int64  `json:"sanity_multiplier_bps,omitempty"`
}

func (p *policy) merge(cfg core.DegradationConfig) core.DegradationConfig {
	if p == nil {
		return cfg
	}

	if p.ConservativeRatioBps != nil {
		cfg.ConservativeRatioBps = *p.ConservativeRatioBps
	}

	if p.UseFaceValueForSettlementAsset != nil {
		cfg.UseFaceValueForSettlementAsset = *p.UseFaceValueForSettlementAsset
	}

	if p.ReferenceSettlementAsset != nil {
		cfg.ReferenceSettlementAsset = *p.ReferenceSettlementAsset
	}

	if p.SanityMultiplierBps != nil {
		cfg.SanityMultiplierBps = *p.SanityMultiplierBps
	}

	return cfg
}

func valueHandler(defaults core.DegradationConfig, valuations core.ValuationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			AssetID string          `json:"asset_id"`
			Amount  decimal.Decimal `json:"amount"`
			Config  *policy         `json:"config,omitempty"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		result, err := valuations.GetAssetValueWithFallback(r.Context(), body.AssetID, body.Amount, body.Config.merge(defaults))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, result)
	}
}

func valueBatchHandler(defaults core.DegradationConfig, valuations core.ValuationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Items  []*core.ValuationRequest `json:"items"`
			Config *policy                  `json:"config,omitempty"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		results, err := valuations.GetAssetValuesWithFallback(r.Context(), body.Items, body.Config.merge(defaults))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, results)
	}
}
