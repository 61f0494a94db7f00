package risk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"safeprice/core"
	"safeprice/pkg/fallback"
	"safeprice/pkg/wad"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Config risk aggregator config
type Config struct {
	BonusBps     int64 `json:"bonus_bps"`
	MaxBatchSize int   `json:"max_batch_size"`
	CacheSize    int   `json:"cache_size"`
	// CacheTTL seconds a snapshot stays cached, 0 keeps it until evicted
	CacheTTL int64 `json:"cache_ttl"`
}

// Service health and risk aggregator
type Service struct {
	positions  core.PositionAggregator
	monitor    core.DegradationMonitor
	access     core.AccessControl
	components core.Registry
	clock      core.Clock
	cfg        Config
	snapshots  gcache.Cache
}

// New new risk aggregator
func New(
	positions core.PositionAggregator,
	monitor core.DegradationMonitor,
	access core.AccessControl,
	components core.Registry,
	clock core.Clock,
	cfg Config,
) *Service {
	if clock == nil {
		clock = core.SystemClock
	}

	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = core.DefaultMaxBatchSize
	}

	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 4096
	}

	b := gcache.New(cfg.CacheSize).LRU()
	if cfg.CacheTTL > 0 {
		b = b.Expiration(time.Duration(cfg.CacheTTL) * time.Second)
	}

	return &Service{
		positions:  positions,
		monitor:    monitor,
		access:     access,
		components: components,
		clock:      clock,
		cfg:        cfg,
		snapshots:  b.Build(),
	}
}

// GetUserHealthFactor pull and return the health factor
func (s *Service) GetUserHealthFactor(ctx context.Context, account string) (decimal.Decimal, error) {
	snapshot, err := s.GetUserRiskAssessment(ctx, account)
	if err != nil {
		return decimal.Zero, err
	}

	return snapshot.HealthFactor, nil
}

// GetUserRiskAssessment pull the totals upstream and refresh the cached snapshot
func (s *Service) GetUserRiskAssessment(ctx context.Context, account string) (*core.RiskSnapshot, error) {
	if err := validateAccount(account); err != nil {
		return nil, err
	}

	totals, err := s.pull(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("pull %s positions: %v: %w", account, err, core.ErrDependencyUnavailable)
	}

	return s.snapshot(ctx, totals)
}

// GetUserHealthFactors batch health factors
func (s *Service) GetUserHealthFactors(ctx context.Context, accounts []string) ([]decimal.Decimal, error) {
	snapshots, err := s.GetUserRiskAssessments(ctx, accounts)
	if err != nil {
		return nil, err
	}

	factors := make([]decimal.Decimal, len(snapshots))
	for idx, snapshot := range snapshots {
		factors[idx] = snapshot.HealthFactor
	}

	return factors, nil
}

// GetUserRiskAssessments batch assessments, an unreachable upstream only degrades its item
func (s *Service) GetUserRiskAssessments(ctx context.Context, accounts []string) ([]*core.RiskSnapshot, error) {
	if len(accounts) > s.cfg.MaxBatchSize {
		return nil, fmt.Errorf("batch of %d accounts, max %d: %w", len(accounts), s.cfg.MaxBatchSize, core.ErrCapacity)
	}

	for _, account := range accounts {
		if err := validateAccount(account); err != nil {
			return nil, err
		}
	}

	snapshots := make([]*core.RiskSnapshot, len(accounts))
	for idx, account := range accounts {
		account := account
		r := fallback.Call(func() (*core.RiskSnapshot, error) {
			return s.GetUserRiskAssessment(ctx, account)
		}, nil)

		if r.Failed() {
			snapshots[idx] = s.degraded(ctx, account, r.Err)
			continue
		}

		snapshots[idx] = r.Value
	}

	return snapshots, nil
}

// PushRiskSnapshot recompute and cache the snapshot from caller supplied totals
func (s *Service) PushRiskSnapshot(ctx context.Context, caller string, totals *core.PositionTotals) (*core.RiskSnapshot, error) {
	if !s.access.Allow(ctx, core.ActionPushRisk, caller) {
		logger.FromContext(ctx).WithField("caller", caller).Warnln("risk push denied")
		return nil, fmt.Errorf("%s push risk snapshot: %w", caller, core.ErrPermission)
	}

	return s.snapshot(ctx, totals)
}

func (s *Service) snapshot(ctx context.Context, totals *core.PositionTotals) (*core.RiskSnapshot, error) {
	if err := validateAccount(totals.Account); err != nil {
		return nil, err
	}

	hf, err := HealthFactor(totals, s.cfg.BonusBps)
	if err != nil {
		return nil, err
	}

	liquidatable, level := Classify(hf)
	snapshot := &core.RiskSnapshot{
		Account:      totals.Account,
		HealthFactor: hf,
		Liquidatable: liquidatable,
		WarningLevel: level,
		LastUpdate:   s.clock.Now(),
	}

	s.cache(snapshot)
	return snapshot, nil
}

// CachedRiskSnapshot last computed snapshot, never recomputed here
func (s *Service) CachedRiskSnapshot(ctx context.Context, account string) (*core.RiskSnapshot, bool) {
	v, err := s.snapshots.Get(account)
	if err != nil {
		return nil, false
	}

	snapshot := *(v.(*core.RiskSnapshot))
	return &snapshot, true
}

func (s *Service) pull(ctx context.Context, account string) (*core.PositionTotals, error) {
	collateral, err := s.positions.CollateralTotal(ctx, account)
	if err != nil {
		return nil, err
	}

	debt, err := s.positions.DebtTotal(ctx, account)
	if err != nil {
		return nil, err
	}

	locked, err := s.positions.LockedGuarantee(ctx, account)
	if err != nil {
		return nil, err
	}

	return &core.PositionTotals{
		Account:         account,
		TotalCollateral: collateral,
		TotalDebt:       debt,
		LockedGuarantee: locked,
	}, nil
}

// degraded safe default of an item whose totals are unavailable: no debt is
// assumed so the account is never classified liquidatable on missing data
func (s *Service) degraded(ctx context.Context, account string, cause error) *core.RiskSnapshot {
	log := logger.FromContext(ctx).WithField("account", account)
	log.WithError(cause).Warnln("risk assessment degraded")

	snapshot := &core.RiskSnapshot{
		Account:      account,
		HealthFactor: wad.Max,
		WarningLevel: core.WarningNone,
		Degraded:     true,
		LastUpdate:   s.clock.Now(),
	}

	if err := fallback.Do(func() error {
		caller, err := s.components.Resolve(ctx, core.RegistryKeyRiskAggregator)
		if err != nil {
			return err
		}

		out, err := s.monitor.RecordDegradationEvent(ctx, caller, core.RegistryKeyRiskAggregator, "positions unavailable", decimal.Zero, true)
		if err != nil {
			return err
		}

		return out.Err
	}); err != nil {
		log.WithError(err).Debugln("report degradation")
	}

	return snapshot
}

func (s *Service) cache(snapshot *core.RiskSnapshot) {
	v := *snapshot
	_ = s.snapshots.Set(v.Account, &v)
}

func validateAccount(account string) error {
	if strings.TrimSpace(account) == "" {
		return fmt.Errorf("empty account: %w", core.ErrConfiguration)
	}

	return nil
}
