package detail

import (
	"context"

	"safeprice/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type detailStore struct {
	db *db.DB
}

// New new health detail store
func New(db *db.DB) core.HealthDetailStore {
	return &detailStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.HealthDetail{})

		if err := tx.AutoMigrate(core.HealthDetail{}).Error; err != nil {
			return err
		}

		return nil
	})
}

// CreateIfNotExist details are write once, never updated
func (s *detailStore) CreateIfNotExist(ctx context.Context, detail *core.HealthDetail) (bool, error) {
	created := false
	err := s.db.Tx(func(tx *db.DB) error {
		var count int
		if err := tx.Update().Model(core.HealthDetail{}).Where("hash = ?", detail.Hash).Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return nil
		}

		if err := tx.Update().Create(detail).Error; err != nil {
			return err
		}

		created = true
		return nil
	})

	return created, err
}

func (s *detailStore) Find(ctx context.Context, hash string) (*core.HealthDetail, error) {
	var detail core.HealthDetail
	if err := s.db.View().Where("hash = ?", hash).First(&detail).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.HealthDetail{}, nil
		}

		return nil, err
	}

	return &detail, nil
}
