// Package eventlog holds the fixed capacity circular buffer of degradation
// events and the write once hash to text registry of diagnostic strings.
package eventlog

import (
	"fmt"

	"safeprice/core"
)

// Capacity number of slots of the ring
const Capacity = 100

// Ring circular buffer, overwrites the oldest event once full
type Ring struct {
	slots       [Capacity]*core.DegradationEvent
	globalIndex uint64
	actualCount int
}

// New empty ring
func New() *Ring {
	return &Ring{}
}

// Restore rebuild a ring from persisted slots and counters
func Restore(events []*core.DegradationEvent, cursor core.EventCursor) (*Ring, error) {
	if cursor.ActualCount < 0 || cursor.ActualCount > Capacity {
		return nil, fmt.Errorf("actual count %d: %w", cursor.ActualCount, core.ErrCapacity)
	}

	if uint64(cursor.ActualCount) > cursor.GlobalIndex {
		return nil, fmt.Errorf("actual count %d above global index %d: %w", cursor.ActualCount, cursor.GlobalIndex, core.ErrConfiguration)
	}

	r := &Ring{
		globalIndex: cursor.GlobalIndex,
		actualCount: cursor.ActualCount,
	}

	for _, evt := range events {
		if evt.Slot < 0 || evt.Slot >= Capacity {
			return nil, fmt.Errorf("slot %d: %w", evt.Slot, core.ErrCapacity)
		}

		r.slots[evt.Slot] = evt
	}

	return r, nil
}

// Next the slot and counters the next Add would produce, without writing
func (r *Ring) Next() (slot int, overwrite bool, cursor core.EventCursor) {
	slot = int(r.globalIndex % Capacity)
	overwrite = r.actualCount >= Capacity

	cursor.GlobalIndex = r.globalIndex + 1
	cursor.ActualCount = r.actualCount + 1
	if cursor.ActualCount > Capacity {
		cursor.ActualCount = Capacity
	}

	return
}

// Add append evt, return the physical slot and whether an old event was overwritten
func (r *Ring) Add(evt *core.DegradationEvent) (int, bool) {
	slot, overwrite, cursor := r.Next()
	evt.Slot = slot
	r.slots[slot] = evt
	r.globalIndex = cursor.GlobalIndex
	r.actualCount = cursor.ActualCount
	return slot, overwrite
}

// Get the k-th newest event, k=0 is the newest
func (r *Ring) Get(k int) (*core.DegradationEvent, error) {
	if k < 0 || k >= r.actualCount {
		return nil, fmt.Errorf("index %d of %d events: %w", k, r.actualCount, core.ErrCapacity)
	}

	idx := (r.globalIndex - 1 - uint64(k)) % Capacity
	evt := r.slots[idx]
	if evt == nil {
		return nil, fmt.Errorf("slot %d empty: %w", idx, core.ErrCapacity)
	}

	return evt, nil
}

// Stats buffer stats
func (r *Ring) Stats() core.BufferStats {
	return core.BufferStats{
		GlobalIndex: r.globalIndex,
		ActualCount: r.actualCount,
		Capacity:    Capacity,
		IsFull:      r.actualCount >= Capacity,
	}
}

// Cursor counters to persist
func (r *Ring) Cursor() core.EventCursor {
	return core.EventCursor{
		GlobalIndex: r.globalIndex,
		ActualCount: r.actualCount,
	}
}

// Clear reset counters, slots are overwritten later
func (r *Ring) Clear() {
	r.globalIndex = 0
	r.actualCount = 0
}
