package riskscan

import (
	"context"
	"testing"

	"safeprice/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type risks struct {
	core.RiskService
	batches [][]string
}

func (r *risks) GetUserRiskAssessments(ctx context.Context, accounts []string) ([]*core.RiskSnapshot, error) {
	r.batches = append(r.batches, accounts)

	out := make([]*core.RiskSnapshot, len(accounts))
	for idx, account := range accounts {
		out[idx] = &core.RiskSnapshot{Account: account, HealthFactor: decimal.New(1, 18)}
	}

	return out, nil
}

func TestScanInBatches(t *testing.T) {
	r := &risks{}
	w, err := New("UTC", "@every 1m", r, []string{"a", "b", "c", "d", "e"}, 2)
	require.Nil(t, err)

	require.Nil(t, w.onWork(context.Background()))
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, r.batches)
}

func TestScanEmptyWatchList(t *testing.T) {
	r := &risks{}
	w, err := New("UTC", "@every 1m", r, nil, 0)
	require.Nil(t, err)

	require.Nil(t, w.onWork(context.Background()))
	assert.Empty(t, r.batches)
}
