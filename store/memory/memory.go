// Package memory in-process stores, used by the dev profile and tests
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"safeprice/core"
)

// AssetStore in memory asset config store
type AssetStore struct {
	mux    sync.RWMutex
	seq    int64
	assets map[string]*core.AssetConfig
}

// NewAssetStore new in memory asset store
func NewAssetStore() *AssetStore {
	return &AssetStore{assets: map[string]*core.AssetConfig{}}
}

// Save upsert by asset id
func (s *AssetStore) Save(_ context.Context, config *core.AssetConfig) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	now := time.Now()
	if old, ok := s.assets[config.AssetID]; ok {
		config.ID = old.ID
		config.CreatedAt = old.CreatedAt
	} else {
		s.seq++
		config.ID = s.seq
		config.CreatedAt = now
	}

	config.UpdatedAt = now
	c := *config
	s.assets[config.AssetID] = &c
	return nil
}

// Find return an empty config if not found
func (s *AssetStore) Find(_ context.Context, assetID string) (*core.AssetConfig, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	if c, ok := s.assets[assetID]; ok {
		v := *c
		return &v, nil
	}

	return &core.AssetConfig{}, nil
}

// All ordered by creation
func (s *AssetStore) All(_ context.Context) ([]*core.AssetConfig, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	configs := make([]*core.AssetConfig, 0, len(s.assets))
	for _, c := range s.assets {
		v := *c
		configs = append(configs, &v)
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].ID < configs[j].ID
	})

	return configs, nil
}

// PriceStore in memory price record store
type PriceStore struct {
	mux     sync.RWMutex
	seq     int64
	records map[string]*core.PriceRecord
}

// NewPriceStore new in memory price store
func NewPriceStore() *PriceStore {
	return &PriceStore{records: map[string]*core.PriceRecord{}}
}

// Save upsert all records
func (s *PriceStore) Save(_ context.Context, records []*core.PriceRecord) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	for _, r := range records {
		if old, ok := s.records[r.AssetID]; ok {
			r.ID = old.ID
		} else {
			s.seq++
			r.ID = s.seq
		}

		r.UpdatedAt = time.Now()
		v := *r
		s.records[r.AssetID] = &v
	}

	return nil
}

// Find return an empty record if not found
func (s *PriceStore) Find(_ context.Context, assetID string) (*core.PriceRecord, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	if r, ok := s.records[assetID]; ok {
		v := *r
		return &v, nil
	}

	return &core.PriceRecord{}, nil
}

// EventStore in memory ring buffer slots
type EventStore struct {
	mux    sync.Mutex
	slots  map[int]*core.DegradationEvent
	cursor core.EventCursor
}

// NewEventStore new in memory event store
func NewEventStore() *EventStore {
	return &EventStore{slots: map[int]*core.DegradationEvent{}}
}

// SaveSlot write slot and counters
func (s *EventStore) SaveSlot(_ context.Context, event *core.DegradationEvent, cursor core.EventCursor) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	v := *event
	s.slots[event.Slot] = &v
	s.cursor = cursor
	return nil
}

// Load all slots ordered by slot
func (s *EventStore) Load(_ context.Context) ([]*core.DegradationEvent, core.EventCursor, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	events := make([]*core.DegradationEvent, 0, len(s.slots))
	for _, evt := range s.slots {
		v := *evt
		events = append(events, &v)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Slot < events[j].Slot
	})

	return events, s.cursor, nil
}

// ResetCursor reset counters
func (s *EventStore) ResetCursor(_ context.Context) error {
	s.mux.Lock()
	s.cursor = core.EventCursor{}
	s.mux.Unlock()
	return nil
}

// HealthDetailStore in memory hash to text store
type HealthDetailStore struct {
	mux     sync.RWMutex
	details map[string]*core.HealthDetail
}

// NewHealthDetailStore new in memory detail store
func NewHealthDetailStore() *HealthDetailStore {
	return &HealthDetailStore{details: map[string]*core.HealthDetail{}}
}

// CreateIfNotExist return true if inserted
func (s *HealthDetailStore) CreateIfNotExist(_ context.Context, detail *core.HealthDetail) (bool, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	if _, ok := s.details[detail.Hash]; ok {
		return false, nil
	}

	detail.ID = int64(len(s.details) + 1)
	detail.CreatedAt = time.Now()
	v := *detail
	s.details[detail.Hash] = &v
	return true, nil
}

// Find return an empty detail if not found
func (s *HealthDetailStore) Find(_ context.Context, hash string) (*core.HealthDetail, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	if d, ok := s.details[hash]; ok {
		v := *d
		return &v, nil
	}

	return &core.HealthDetail{}, nil
}

// UpgradeStore in memory upgrade window
type UpgradeStore struct {
	mux     sync.Mutex
	window  core.UpgradeWindow
	version int
}

// NewUpgradeStore new in memory upgrade store
func NewUpgradeStore() *UpgradeStore {
	return &UpgradeStore{}
}

// Load window and version
func (s *UpgradeStore) Load(_ context.Context) (core.UpgradeWindow, int, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.window, s.version, nil
}

// Save window and version
func (s *UpgradeStore) Save(_ context.Context, window core.UpgradeWindow, version int) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.window, s.version = window, version
	return nil
}
