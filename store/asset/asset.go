package asset

import (
	"context"

	"safeprice/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type assetStore struct {
	db *db.DB
}

// New new asset config store
func New(db *db.DB) core.AssetStore {
	return &assetStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.AssetConfig{})

		if err := tx.AutoMigrate(core.AssetConfig{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *assetStore) Save(ctx context.Context, config *core.AssetConfig) error {
	return s.db.Update().Where("asset_id = ?", config.AssetID).
		Assign(map[string]interface{}{
			"source_id": config.SourceID,
			"decimals":  config.Decimals,
			"max_age":   config.MaxAge,
			"active":    config.Active,
			"pegged":    config.Pegged,
		}).FirstOrCreate(config).Error
}

func (s *assetStore) Find(ctx context.Context, assetID string) (*core.AssetConfig, error) {
	var config core.AssetConfig
	if err := s.db.View().Where("asset_id = ?", assetID).First(&config).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.AssetConfig{}, nil
		}

		return nil, err
	}

	return &config, nil
}

func (s *assetStore) All(ctx context.Context) ([]*core.AssetConfig, error) {
	var configs []*core.AssetConfig
	if err := s.db.View().Order("id").Find(&configs).Error; err != nil {
		return nil, err
	}

	return configs, nil
}
