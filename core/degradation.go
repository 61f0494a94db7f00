package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Reason why a value was produced by fallback
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonZeroPrice   Reason = "zero-price"
	ReasonStale       Reason = "stale"
	ReasonUnsupported Reason = "unsupported"
	ReasonOutOfRange  Reason = "out-of-range"
)

const (
	// BpsBase basis points base
	BpsBase = 10_000
	// DefaultConservativeRatioBps 50% haircut
	DefaultConservativeRatioBps = 5_000
	// DefaultSanityMultiplierBps 150%
	DefaultSanityMultiplierBps = 15_000
	// DefaultMaxBatchSize bounded batch queries
	DefaultMaxBatchSize = 100
)

// DegradationConfig per call fallback policy
type DegradationConfig struct {
	ConservativeRatioBps           int64  `json:"conservative_ratio_bps"`
	UseFaceValueForSettlementAsset bool   `json:"use_face_value_for_settlement_asset"`
	ReferenceSettlementAsset       string `json:"reference_settlement_asset"`
	SanityMultiplierBps            int64  `json:"sanity_multiplier_bps"`
}

// DefaultDegradationConfig default fallback policy
func DefaultDegradationConfig() DegradationConfig {
	return DegradationConfig{
		ConservativeRatioBps:           DefaultConservativeRatioBps,
		UseFaceValueForSettlementAsset: true,
		SanityMultiplierBps:            DefaultSanityMultiplierBps,
	}
}

// ValuationRequest one item of a valuation batch
type ValuationRequest struct {
	AssetID string          `json:"asset_id"`
	Amount  decimal.Decimal `json:"amount"`
}

// ValuationResult output of the valuation engine
type ValuationResult struct {
	AssetID      string          `json:"asset_id"`
	Amount       decimal.Decimal `json:"amount"`
	Value        decimal.Decimal `json:"value"`
	UsedFallback bool            `json:"used_fallback"`
	Reason       Reason          `json:"reason,omitempty"`
}

// DegradationEvent a value produced via fallback
type DegradationEvent struct {
	ID            int64           `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"-"`
	Slot          int             `sql:"unique_index:idx_degradation_events_slot" json:"-"`
	Module        string          `sql:"size:64" json:"module"`
	ReasonHash    string          `sql:"size:66" json:"reason_hash"`
	FallbackValue decimal.Decimal `sql:"type:decimal(78,0)" json:"fallback_value"`
	UsedFallback  bool            `json:"used_fallback"`
	Timestamp     int64           `json:"timestamp"`
	BlockHeight   int64           `json:"block_height"`
	TraceID       string          `sql:"size:36" json:"trace_id"`
}

// HealthDetail write once hash to text registry entry
type HealthDetail struct {
	ID        int64     `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"-"`
	Hash      string    `sql:"size:66;unique_index:idx_health_details_hash" json:"hash"`
	Text      string    `sql:"type:text" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// BufferStats circular buffer stats
type BufferStats struct {
	GlobalIndex uint64 `json:"global_index"`
	ActualCount int    `json:"actual_count"`
	Capacity    int    `json:"capacity"`
	IsFull      bool   `json:"is_full"`
}

// EventCursor persisted ring buffer counters
type EventCursor struct {
	GlobalIndex uint64
	ActualCount int
}

// DegradationStats monitor analytics
type DegradationStats struct {
	TotalEvents   uint64            `json:"total_events"`
	FallbackCount uint64            `json:"fallback_count"`
	ByModule      map[string]uint64 `json:"by_module"`
	ByReason      map[string]uint64 `json:"by_reason"`
	LastEventAt   int64             `json:"last_event_at"`
	Version       int               `json:"version"`
	Buffer        BufferStats       `json:"buffer"`
}

// RecordOutcome best-effort recording outcome, never an abort
type RecordOutcome struct {
	Recorded         bool   `json:"recorded"`
	AnalyticsUpdated bool   `json:"analytics_updated"`
	NewDetail        bool   `json:"new_detail"`
	ReasonHash       string `json:"reason_hash,omitempty"`
	Err              error  `json:"-"`
}

// UpgradeWindow authorization window of the monitor upgrade
type UpgradeWindow struct {
	OpenedBy string    `json:"opened_by,omitempty"`
	OpenedAt time.Time `json:"opened_at"`
	ExpireAt time.Time `json:"expire_at"`
}

// Open check if t lies inside the window
func (w UpgradeWindow) Open(t time.Time) bool {
	return !w.OpenedAt.IsZero() && !t.Before(w.OpenedAt) && t.Before(w.ExpireAt)
}

// EventStore persisted slots of the degradation ring buffer
type EventStore interface {
	// SaveSlot write the slot and counters atomically
	SaveSlot(ctx context.Context, event *DegradationEvent, cursor EventCursor) error
	// Load all slots and counters
	Load(ctx context.Context) ([]*DegradationEvent, EventCursor, error)
	// ResetCursor reset counters, slots are kept until overwritten
	ResetCursor(ctx context.Context) error
}

// HealthDetailStore hash to text registry store
type HealthDetailStore interface {
	// CreateIfNotExist return true if inserted
	CreateIfNotExist(ctx context.Context, detail *HealthDetail) (bool, error)
	Find(ctx context.Context, hash string) (*HealthDetail, error)
}

// DegradationAnalytics analytics sink of the monitor
type DegradationAnalytics interface {
	Observe(ctx context.Context, event *DegradationEvent, reason string) error
	Stats(ctx context.Context) (*DegradationStats, error)
}

// DegradationMonitor degradation coordinator interface
type DegradationMonitor interface {
	RecordDegradationEvent(ctx context.Context, caller, module, reason string, fallbackValue decimal.Decimal, usedFallback bool) (RecordOutcome, error)
	RecordDegradationEventFromTrustedSource(ctx context.Context, caller, reason string, fallbackValue decimal.Decimal, usedFallback bool) (RecordOutcome, error)
	GetDegradationStats(ctx context.Context) (*DegradationStats, error)
	GetEventAtIndex(ctx context.Context, k int) (*DegradationEvent, error)
	GetCircularBufferStats(ctx context.Context) BufferStats
	HealthDetail(ctx context.Context, hash string) (*HealthDetail, error)
	ClearEvents(ctx context.Context, caller string) error
	AuthorizeUpgrade(ctx context.Context, caller string) (UpgradeWindow, error)
	Upgrade(ctx context.Context, caller string, analytics DegradationAnalytics) (int, error)
}

// UpgradeStore persisted upgrade window and monitor analytics version
type UpgradeStore interface {
	Load(ctx context.Context) (UpgradeWindow, int, error)
	Save(ctx context.Context, window UpgradeWindow, version int) error
}

// ValuationService valuation with best-effort degradation reporting
type ValuationService interface {
	GetAssetValueWithFallback(ctx context.Context, assetID string, amount decimal.Decimal, cfg DegradationConfig) (*ValuationResult, error)
	GetAssetValuesWithFallback(ctx context.Context, items []*ValuationRequest, cfg DegradationConfig) ([]*ValuationResult, error)
}
