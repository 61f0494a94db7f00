package event

import (
	"context"
	"time"

	"safeprice/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

const cursorID = 1

// cursor the two ring buffer counters, a single row
type cursor struct {
	ID          int64 `sql:"PRIMARY_KEY"`
	GlobalIndex uint64
	ActualCount int
	UpdatedAt   time.Time
}

func (cursor) TableName() string {
	return "degradation_cursors"
}

type eventStore struct {
	db *db.DB
}

// New new degradation event store
func New(db *db.DB) core.EventStore {
	return &eventStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.DegradationEvent{})

		if err := tx.AutoMigrate(core.DegradationEvent{}).Error; err != nil {
			return err
		}

		if err := db.Update().AutoMigrate(cursor{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *eventStore) SaveSlot(ctx context.Context, event *core.DegradationEvent, c core.EventCursor) error {
	return s.db.Tx(func(tx *db.DB) error {
		if err := tx.Update().Where("slot = ?", event.Slot).
			Assign(map[string]interface{}{
				"module":         event.Module,
				"reason_hash":    event.ReasonHash,
				"fallback_value": event.FallbackValue,
				"used_fallback":  event.UsedFallback,
				"timestamp":      event.Timestamp,
				"block_height":   event.BlockHeight,
				"trace_id":       event.TraceID,
			}).FirstOrCreate(event).Error; err != nil {
			return err
		}

		return saveCursor(tx, c)
	})
}

func (s *eventStore) Load(ctx context.Context) ([]*core.DegradationEvent, core.EventCursor, error) {
	var events []*core.DegradationEvent
	if err := s.db.View().Order("slot").Find(&events).Error; err != nil {
		return nil, core.EventCursor{}, err
	}

	var c cursor
	if err := s.db.View().Where("id = ?", cursorID).First(&c).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return events, core.EventCursor{}, nil
		}

		return nil, core.EventCursor{}, err
	}

	return events, core.EventCursor{GlobalIndex: c.GlobalIndex, ActualCount: c.ActualCount}, nil
}

func (s *eventStore) ResetCursor(ctx context.Context) error {
	return saveCursor(s.db, core.EventCursor{})
}

func saveCursor(tx *db.DB, c core.EventCursor) error {
	row := cursor{ID: cursorID}
	return tx.Update().Where("id = ?", cursorID).
		Assign(map[string]interface{}{
			"global_index": c.GlobalIndex,
			"actual_count": c.ActualCount,
		}).FirstOrCreate(&row).Error
}
