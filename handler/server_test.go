package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"safeprice/core"
	"safeprice/handler/request"
	"safeprice/internal/valuation"
	"safeprice/service/access"
	"safeprice/service/block"
	"safeprice/service/monitor"
	"safeprice/service/oracle"
	"safeprice/service/risk"
	valuationservice "safeprice/service/valuation"
	"safeprice/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticPositions struct{}

func (staticPositions) CollateralTotal(context.Context, string) (decimal.Decimal, error) {
	return decimal.NewFromInt(100), nil
}

func (staticPositions) DebtTotal(context.Context, string) (decimal.Decimal, error) {
	return decimal.NewFromInt(100), nil
}

func (staticPositions) LockedGuarantee(context.Context, string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

var now = time.Unix(1_700_000_000, 0)

func newServer(t *testing.T) http.Handler {
	ctx := context.Background()
	clock := core.ClockFunc(func() time.Time { return now })
	system := &core.System{Version: "test"}

	ac := access.New(map[string][]string{
		string(core.ActionConfigureAsset):    {"gov"},
		string(core.ActionUpdatePrice):       {"feeder"},
		string(core.ActionRecordDegradation): {"gov"},
		string(core.ActionPushRisk):          {"risk"},
	})
	registry := access.NewRegistry(map[string]string{core.RegistryKeyPriceOracle: "feeder"})

	prices := oracle.New(memory.NewAssetStore(), memory.NewPriceStore(), ac, clock)
	mon, err := monitor.New(ctx, memory.NewEventStore(), memory.NewHealthDetailStore(), memory.NewUpgradeStore(),
		monitor.NewAnalytics(nil), ac, registry, block.New(system, clock), clock, system)
	require.Nil(t, err)

	valuations := valuationservice.New(valuation.New(prices, clock), mon, registry, 0)
	risks := risk.New(staticPositions{}, mon, ac, registry, clock, risk.Config{})

	return New(system, core.DefaultDegradationConfig(), prices, valuations, mon, risks, nil).HandleRestAPI()
}

type response struct {
	Data json.RawMessage `json:"data"`
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
}

func do(t *testing.T, h http.Handler, method, path, caller, body string) (int, response) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if caller != "" {
		req.Header.Set(request.HeaderCaller, caller)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp response
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func TestRestAPI(t *testing.T) {
	h := newServer(t)

	code, resp := do(t, h, http.MethodPost, "/assets", "", `{"asset_id":"btc","decimals":8,"max_age":3600}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, int(core.ErrPermission), resp.Code)

	code, _ = do(t, h, http.MethodPost, "/assets", "gov", `{"asset_id":"btc","source_id":"BTCUSD","decimals":8,"max_age":3600}`)
	require.Equal(t, http.StatusOK, code)

	code, resp = do(t, h, http.MethodPost, "/prices", "feeder", `{"asset_ids":["btc"],"prices":["5000000000000"],"timestamps":[1700000000]}`)
	require.Equal(t, http.StatusOK, code, resp.Msg)

	code, resp = do(t, h, http.MethodPost, "/prices", "feeder", `{"asset_ids":["btc"],"prices":[],"timestamps":[1700000000]}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, int(core.ErrConfiguration), resp.Code)

	code, resp = do(t, h, http.MethodGet, "/prices/btc", "", "")
	require.Equal(t, http.StatusOK, code)
	var price struct {
		Price    decimal.Decimal `json:"price"`
		Readable decimal.Decimal `json:"readable_price"`
	}
	require.Nil(t, json.Unmarshal(resp.Data, &price))
	assert.Equal(t, "50000", price.Readable.String())

	code, resp = do(t, h, http.MethodGet, "/prices/eth", "", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, int(core.ErrUnsupportedAsset), resp.Code)

	code, resp = do(t, h, http.MethodPost, "/valuations", "", `{"asset_id":"eth","amount":"50"}`)
	require.Equal(t, http.StatusOK, code)
	var result core.ValuationResult
	require.Nil(t, json.Unmarshal(resp.Data, &result))
	assert.True(t, result.UsedFallback)
	assert.Equal(t, "25", result.Value.String())

	code, resp = do(t, h, http.MethodGet, "/degradation/events/0", "", "")
	require.Equal(t, http.StatusOK, code)
	var evt struct {
		Module string `json:"module"`
		Reason string `json:"reason"`
	}
	require.Nil(t, json.Unmarshal(resp.Data, &evt))
	assert.Equal(t, core.RegistryKeyPriceOracle, evt.Module)
	assert.Equal(t, "unsupported:eth", evt.Reason)

	code, resp = do(t, h, http.MethodGet, "/degradation/events/1", "", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, int(core.ErrCapacity), resp.Code)

	code, resp = do(t, h, http.MethodGet, "/accounts/alice/risk", "", "")
	require.Equal(t, http.StatusOK, code)
	var snapshot struct {
		Readable     string `json:"readable_health_factor"`
		Liquidatable bool   `json:"liquidatable"`
		WarningLevel string `json:"warning_level"`
	}
	require.Nil(t, json.Unmarshal(resp.Data, &snapshot))
	assert.Equal(t, "1.0000", snapshot.Readable)
	assert.False(t, snapshot.Liquidatable)
	assert.Equal(t, "WARNING", snapshot.WarningLevel)
}

func TestPushRiskSnapshot(t *testing.T) {
	h := newServer(t)
	body := `{"account":"bob","total_collateral":"90","total_debt":"100","locked_guarantee":"0"}`

	code, resp := do(t, h, http.MethodPost, "/risk/snapshots", "", body)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, int(core.ErrPermission), resp.Code)

	code, resp = do(t, h, http.MethodPost, "/risk/snapshots", "gov", body)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, int(core.ErrPermission), resp.Code)

	code, resp = do(t, h, http.MethodPost, "/risk/snapshots", "risk", body)
	require.Equal(t, http.StatusOK, code, resp.Msg)
	var snapshot struct {
		Liquidatable bool `json:"liquidatable"`
	}
	require.Nil(t, json.Unmarshal(resp.Data, &snapshot))
	assert.True(t, snapshot.Liquidatable)
}
