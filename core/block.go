package core

import (
	"context"
	"time"
)

// Clock logical clock, staleness is a comparison against it
type Clock interface {
	Now() time.Time
}

// ClockFunc adapter
type ClockFunc func() time.Time

// Now current time
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock wall clock
var SystemClock Clock = ClockFunc(time.Now)

// IBlockService block service interface
type IBlockService interface {
	GetBlock(ctx context.Context, t time.Time) (int64, error)
	CurrentBlock(ctx context.Context) (int64, error)
}
