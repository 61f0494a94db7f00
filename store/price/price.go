package price

import (
	"context"

	"safeprice/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type priceStore struct {
	db *db.DB
}

// New new price store
func New(db *db.DB) core.PriceStore {
	return &priceStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.PriceRecord{})

		if err := tx.AutoMigrate(core.PriceRecord{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *priceStore) Save(ctx context.Context, records []*core.PriceRecord) error {
	return s.db.Tx(func(tx *db.DB) error {
		for _, record := range records {
			if err := tx.Update().Where("asset_id = ?", record.AssetID).
				Assign(map[string]interface{}{
					"price":      record.Price,
					"timestamp":  record.Timestamp,
					"decimals":   record.Decimals,
					"updated_by": record.UpdatedBy,
				}).FirstOrCreate(record).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *priceStore) Find(ctx context.Context, assetID string) (*core.PriceRecord, error) {
	var record core.PriceRecord
	if err := s.db.View().Where("asset_id = ?", assetID).First(&record).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.PriceRecord{}, nil
		}

		return nil, err
	}

	return &record, nil
}
