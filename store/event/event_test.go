package event

import (
	"context"
	"testing"

	"safeprice/core"
	"safeprice/store/storetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveSlot(t *testing.T) {
	ctx := context.Background()
	s := New(storetest.OpenSQLite(t))

	events, cursor, err := s.Load(ctx)
	require.Nil(t, err)
	assert.Empty(t, events)
	assert.Equal(t, core.EventCursor{}, cursor)

	first := &core.DegradationEvent{Slot: 0, Module: "price-oracle", ReasonHash: "0x01", FallbackValue: decimal.NewFromInt(25), UsedFallback: true, Timestamp: 100, TraceID: "a"}
	require.Nil(t, s.SaveSlot(ctx, first, core.EventCursor{GlobalIndex: 1, ActualCount: 1}))

	second := &core.DegradationEvent{Slot: 1, Module: "risk-aggregator", ReasonHash: "0x02", Timestamp: 101, TraceID: "b"}
	require.Nil(t, s.SaveSlot(ctx, second, core.EventCursor{GlobalIndex: 2, ActualCount: 2}))

	// wraparound overwrites slot 0 in place
	overwrite := &core.DegradationEvent{Slot: 0, Module: "admin", ReasonHash: "0x03", FallbackValue: decimal.NewFromInt(7), Timestamp: 200, BlockHeight: 9, TraceID: "c"}
	require.Nil(t, s.SaveSlot(ctx, overwrite, core.EventCursor{GlobalIndex: 101, ActualCount: 100}))

	events, cursor, err = s.Load(ctx)
	require.Nil(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, core.EventCursor{GlobalIndex: 101, ActualCount: 100}, cursor)

	assert.Equal(t, 0, events[0].Slot)
	assert.Equal(t, "admin", events[0].Module)
	assert.Equal(t, "0x03", events[0].ReasonHash)
	assert.Equal(t, "7", events[0].FallbackValue.String())
	assert.False(t, events[0].UsedFallback)
	assert.EqualValues(t, 200, events[0].Timestamp)
	assert.EqualValues(t, 9, events[0].BlockHeight)
	assert.Equal(t, "c", events[0].TraceID)

	assert.Equal(t, "risk-aggregator", events[1].Module)
}

func TestResetCursor(t *testing.T) {
	ctx := context.Background()
	s := New(storetest.OpenSQLite(t))

	evt := &core.DegradationEvent{Slot: 0, Module: "admin", ReasonHash: "0x01", FallbackValue: decimal.Zero, TraceID: "a"}
	require.Nil(t, s.SaveSlot(ctx, evt, core.EventCursor{GlobalIndex: 1, ActualCount: 1}))
	require.Nil(t, s.ResetCursor(ctx))

	events, cursor, err := s.Load(ctx)
	require.Nil(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, core.EventCursor{}, cursor)
}
