package block

import (
	"context"
	"errors"
	"time"

	"safeprice/core"
)

// DefaultSecondsPerBlock used when the config leaves it unset
const DefaultSecondsPerBlock = 15

type service struct {
	system *core.System
	clock  core.Clock
}

// New new block service, heights are derived from genesis and seconds per block
func New(system *core.System, clock core.Clock) core.IBlockService {
	if clock == nil {
		clock = core.SystemClock
	}

	return &service{
		system: system,
		clock:  clock,
	}
}

// CurrentBlock current block
func (s *service) CurrentBlock(ctx context.Context) (int64, error) {
	return s.GetBlock(ctx, s.clock.Now())
}

// GetBlock get block by time
func (s *service) GetBlock(ctx context.Context, t time.Time) (int64, error) {
	secondsPerBlock := s.system.SecondsPerBlock
	if secondsPerBlock == 0 {
		secondsPerBlock = DefaultSecondsPerBlock
	}

	if secondsPerBlock < 0 {
		return 0, errors.New("secondsPerBlock should not be less than zero")
	}

	seconds := t.UTC().Unix() - s.system.Genesis
	if seconds < 0 {
		return 0, errors.New("invalid blocks")
	}

	return seconds / secondsPerBlock, nil
}
