package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	"safeprice/core"
	"safeprice/service/access"
	"safeprice/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	gov     = "gov"
	updater = "feeder"
)

var now = time.Unix(1_700_000_000, 0)

func newService() *PriceService {
	ac := access.New(map[string][]string{
		string(core.ActionConfigureAsset): {gov},
		string(core.ActionUpdatePrice):    {updater},
	})

	return New(memory.NewAssetStore(), memory.NewPriceStore(), ac, core.ClockFunc(func() time.Time { return now }))
}

func btc() *core.AssetConfig {
	return &core.AssetConfig{AssetID: "btc", SourceID: "BTCUSD", Decimals: 8, MaxAge: time.Hour}
}

func TestConfigureAsset(t *testing.T) {
	ctx := context.Background()
	s := newService()

	require.Nil(t, s.ConfigureAsset(ctx, gov, btc()))
	require.Nil(t, s.ConfigureAsset(ctx, gov, btc()))

	assets, err := s.Assets(ctx)
	require.Nil(t, err)
	assert.Len(t, assets, 1)
	assert.True(t, assets[0].Active)

	c := btc()
	c.MaxAge = 2 * time.Hour
	require.Nil(t, s.ConfigureAsset(ctx, gov, c))

	assets, _ = s.Assets(ctx)
	assert.Len(t, assets, 1)
	assert.Equal(t, 2*time.Hour, assets[0].MaxAge)
}

func TestConfigureAssetInvalid(t *testing.T) {
	ctx := context.Background()
	s := newService()

	assert.ErrorIs(t, s.ConfigureAsset(ctx, "mallory", btc()), core.ErrPermission)

	for _, id := range []string{"", "0x0000000000000000000000000000000000000000", "00000000-0000-0000-0000-000000000000"} {
		c := btc()
		c.AssetID = id
		assert.ErrorIs(t, s.ConfigureAsset(ctx, gov, c), core.ErrConfiguration, id)
	}

	c := btc()
	c.Decimals = 19
	assert.ErrorIs(t, s.ConfigureAsset(ctx, gov, c), core.ErrConfiguration)
}

func TestGetPrice(t *testing.T) {
	ctx := context.Background()
	s := newService()
	require.Nil(t, s.ConfigureAsset(ctx, gov, btc()))

	_, err := s.GetPrice(ctx, "btc")
	assert.ErrorIs(t, err, core.ErrInvalidValue)

	_, err = s.GetPrice(ctx, "eth")
	assert.ErrorIs(t, err, core.ErrUnsupportedAsset)

	price := decimal.New(5, 12)
	require.Nil(t, s.UpdatePrice(ctx, updater, "btc", price, now.Unix()))

	record, err := s.GetPrice(ctx, "btc")
	require.Nil(t, err)
	assert.True(t, price.Equal(record.Price))
	assert.EqualValues(t, 8, record.Decimals)

	require.Nil(t, s.SetActive(ctx, gov, "btc", false))
	_, err = s.GetPrice(ctx, "btc")
	assert.ErrorIs(t, err, core.ErrUnsupportedAsset)

	info, err := s.GetPriceInfo(ctx, "btc")
	require.Nil(t, err)
	assert.False(t, info.IsValid)
	assert.Equal(t, core.ReasonUnsupported, info.Reason)
	assert.True(t, price.Equal(info.Price))
}

func TestStalePrice(t *testing.T) {
	ctx := context.Background()
	s := newService()
	require.Nil(t, s.ConfigureAsset(ctx, gov, btc()))

	price := decimal.New(5, 12)
	ts := now.Add(-time.Hour - time.Second).Unix()
	require.Nil(t, s.UpdatePrice(ctx, updater, "btc", price, ts))

	_, err := s.GetPrice(ctx, "btc")
	assert.ErrorIs(t, err, core.ErrStaleData)

	info, err := s.GetPriceInfo(ctx, "btc")
	require.Nil(t, err)
	assert.False(t, info.IsValid)
	assert.Equal(t, core.ReasonStale, info.Reason)
	assert.True(t, price.Equal(info.Price))
	assert.Equal(t, ts, info.Timestamp)

	// exactly max age old is still fresh
	require.Nil(t, s.UpdatePrice(ctx, updater, "btc", price, now.Add(-time.Hour).Unix()))
	_, err = s.GetPrice(ctx, "btc")
	assert.Nil(t, err)
}

func TestUpdatePrices(t *testing.T) {
	ctx := context.Background()
	s := newService()
	require.Nil(t, s.ConfigureAsset(ctx, gov, btc()))
	require.Nil(t, s.ConfigureAsset(ctx, gov, &core.AssetConfig{AssetID: "eth", Decimals: 18, MaxAge: time.Hour}))

	ts := now.Unix()
	one := decimal.New(1, 8)

	t.Run("permission", func(t *testing.T) {
		err := s.UpdatePrice(ctx, gov, "btc", one, ts)
		assert.ErrorIs(t, err, core.ErrPermission)
	})

	t.Run("length mismatch", func(t *testing.T) {
		err := s.UpdatePrices(ctx, updater, []string{"btc", "eth"}, []decimal.Decimal{one}, []int64{ts, ts})
		assert.ErrorIs(t, err, core.ErrConfiguration)
	})

	t.Run("all or nothing", func(t *testing.T) {
		err := s.UpdatePrices(ctx, updater,
			[]string{"btc", "eth"},
			[]decimal.Decimal{one, decimal.Zero},
			[]int64{ts, ts},
		)
		assert.ErrorIs(t, err, core.ErrInvalidValue)

		info, _ := s.GetPriceInfo(ctx, "btc")
		assert.False(t, info.IsValid)
		assert.True(t, info.Price.IsZero())
	})

	t.Run("unconfigured", func(t *testing.T) {
		err := s.UpdatePrice(ctx, updater, "doge", one, ts)
		assert.ErrorIs(t, err, core.ErrUnsupportedAsset)
	})

	t.Run("batch", func(t *testing.T) {
		err := s.UpdatePrices(ctx, updater,
			[]string{"btc", "eth"},
			[]decimal.Decimal{decimal.New(6, 12), decimal.New(3, 21)},
			[]int64{ts, ts},
		)
		require.Nil(t, err)

		record, err := s.GetPrice(ctx, "eth")
		require.Nil(t, err)
		assert.Equal(t, "3000000000000000000000", record.Price.String())
		assert.Equal(t, updater, record.UpdatedBy)
	})

	t.Run("out of order", func(t *testing.T) {
		err := s.UpdatePrice(ctx, updater, "btc", one, ts-1)
		assert.ErrorIs(t, err, core.ErrInvalidValue)

		assert.Nil(t, s.UpdatePrice(ctx, updater, "btc", one, ts))
	})

	t.Run("too large", func(t *testing.T) {
		n := core.DefaultMaxBatchSize + 1
		err := s.UpdatePrices(ctx, updater, make([]string, n), make([]decimal.Decimal, n), make([]int64, n))
		assert.ErrorIs(t, err, core.ErrCapacity)
	})
}

type failingAssets struct {
	*memory.AssetStore
	fail bool
}

func (s *failingAssets) Save(ctx context.Context, config *core.AssetConfig) error {
	if s.fail {
		return errors.New("disk full")
	}

	return s.AssetStore.Save(ctx, config)
}

func TestConfigureAssetKeepsInput(t *testing.T) {
	ctx := context.Background()
	assets := &failingAssets{AssetStore: memory.NewAssetStore(), fail: true}
	ac := access.New(map[string][]string{string(core.ActionConfigureAsset): {gov}})
	s := New(assets, memory.NewPriceStore(), ac, core.ClockFunc(func() time.Time { return now }))

	c := btc()
	assert.NotNil(t, s.ConfigureAsset(ctx, gov, c))
	assert.Equal(t, btc(), c)

	assets.fail = false
	require.Nil(t, s.ConfigureAsset(ctx, gov, c))
	assert.Equal(t, btc(), c)

	stored, err := assets.Find(ctx, "btc")
	require.Nil(t, err)
	assert.True(t, stored.Active)

	c.MaxAge = 2 * time.Hour
	require.Nil(t, s.ConfigureAsset(ctx, gov, c))
	assert.False(t, c.Active)
	assert.Zero(t, c.ID)
}
