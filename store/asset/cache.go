package asset

import (
	"context"
	"fmt"
	"time"

	"safeprice/core"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

// Cache read through cache of asset configs, writes invalidate
func Cache(store core.AssetStore, exp time.Duration) core.AssetStore {
	return &cacheAssetStore{
		AssetStore: store,
		cache:      gcache.New(1024).LRU().Expiration(exp).Build(),
		sf:         &singleflight.Group{},
	}
}

type cacheAssetStore struct {
	core.AssetStore
	cache gcache.Cache
	sf    *singleflight.Group
}

func (s *cacheAssetStore) Save(ctx context.Context, config *core.AssetConfig) error {
	s.cache.Remove(s.assetKey(config.AssetID))
	if err := s.AssetStore.Save(ctx, config); err != nil {
		return err
	}

	s.cacheAsset(config)
	return nil
}

func (s *cacheAssetStore) Find(ctx context.Context, assetID string) (*core.AssetConfig, error) {
	key := s.assetKey(assetID)
	if v, err := s.cache.Get(key); err == nil {
		if config, ok := v.(*core.AssetConfig); ok {
			c := *config
			return &c, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		config, err := s.AssetStore.Find(ctx, assetID)
		if err != nil {
			return nil, err
		}

		if config.Configured() {
			s.cacheAsset(config)
		}

		return config, nil
	})
	if err != nil {
		return nil, err
	}

	c := *(v.(*core.AssetConfig))
	return &c, nil
}

func (s *cacheAssetStore) cacheAsset(config *core.AssetConfig) {
	c := *config
	s.cache.Set(s.assetKey(config.AssetID), &c)
}

func (s *cacheAssetStore) assetKey(assetID string) string {
	return fmt.Sprintf("asset:id:%s", assetID)
}
