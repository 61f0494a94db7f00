package position

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"safeprice/core"
	"safeprice/pkg/resthttp"

	"github.com/shopspring/decimal"
)

type total struct {
	Account string          `json:"account"`
	Total   decimal.Decimal `json:"total"`
}

type aggregator struct {
	endpoint string
}

// New upstream aggregators client, each total is served under endpoint/{kind}/{account}
func New(endpoint string) core.PositionAggregator {
	return &aggregator{
		endpoint: strings.TrimSuffix(endpoint, "/"),
	}
}

func (a *aggregator) CollateralTotal(ctx context.Context, account string) (decimal.Decimal, error) {
	return a.total(ctx, "collateral", account)
}

func (a *aggregator) DebtTotal(ctx context.Context, account string) (decimal.Decimal, error) {
	return a.total(ctx, "debt", account)
}

func (a *aggregator) LockedGuarantee(ctx context.Context, account string) (decimal.Decimal, error) {
	return a.total(ctx, "guarantee", account)
}

func (a *aggregator) total(ctx context.Context, kind, account string) (decimal.Decimal, error) {
	var resp total
	uri := fmt.Sprintf("%s/%s/%s", a.endpoint, kind, url.PathEscape(account))
	if err := resthttp.Get(ctx, uri, &resp); err != nil {
		return decimal.Zero, err
	}

	return resp.Total, nil
}
