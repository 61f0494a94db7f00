package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"safeprice/core"
	"safeprice/pkg/id"
	"safeprice/pkg/resthttp"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// FeedConfig external ticker endpoint
type FeedConfig struct {
	Endpoint string  `json:"endpoint" valid:"url"`
	Provider string  `json:"provider"`
	RPS      float64 `json:"rps"`
	Burst    int     `json:"burst"`
	// BreakerTimeout seconds the breaker stays open
	BreakerTimeout int64 `json:"breaker_timeout"`
}

type feedService struct {
	cfg     FeedConfig
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// NewFeed ticker client guarded by a circuit breaker and a rate limiter
func NewFeed(cfg FeedConfig) core.FeedService {
	if cfg.RPS <= 0 {
		cfg.RPS = 10
	}

	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 60
	}

	st := gobreaker.Settings{
		Name:     "feed:" + cfg.Provider,
		Interval: 60 * time.Second,
		Timeout:  time.Duration(cfg.BreakerTimeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 3 {
				return true
			}

			if counts.Requests < 20 {
				return false
			}

			return float64(counts.TotalFailures)/float64(counts.Requests) > 0.05
		},
	}

	return &feedService{
		cfg:     cfg,
		breaker: gobreaker.NewCircuitBreaker(st),
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
	}
}

// PullPriceTicker GET {endpoint}/tickers/{source}
func (s *feedService) PullPriceTicker(ctx context.Context, sourceID string) (*core.PriceTicker, error) {
	if sourceID == "" {
		return nil, fmt.Errorf("empty source id: %w", core.ErrConfiguration)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	v, err := s.breaker.Execute(func() (interface{}, error) {
		var ticker core.PriceTicker
		uri := fmt.Sprintf("%s/tickers/%s", strings.TrimSuffix(s.cfg.Endpoint, "/"), url.PathEscape(sourceID))
		// one request id per source per second
		requestID := id.TraceIDFrom(fmt.Sprintf("%s:%s:%d", s.cfg.Provider, sourceID, time.Now().Unix()))
		if err := resthttp.Execute(resthttp.WithRequestID(ctx, requestID), http.MethodGet, uri, nil, &ticker); err != nil {
			return nil, err
		}

		return &ticker, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("feed %s: %v: %w", s.cfg.Provider, err, core.ErrDependencyUnavailable)
	}

	if err != nil {
		return nil, err
	}

	ticker := v.(*core.PriceTicker)
	if ticker.Provider == "" {
		ticker.Provider = s.cfg.Provider
	}

	if ticker.Symbol == "" {
		ticker.Symbol = sourceID
	}

	return ticker, nil
}
