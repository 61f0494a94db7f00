package config

import (
	"fmt"
	"time"

	"safeprice/core"

	"github.com/asaskevich/govalidator"
	"github.com/fox-one/pkg/config"
)

// Load load config file
func Load(cfgFile string, cfg *Config) error {
	config.AutomaticLoadEnv("SAFEPRICE")
	if cfgFile != "" {
		if err := config.LoadYaml(cfgFile, cfg); err != nil {
			return err
		}
	}

	defaults(cfg)
	return validate(cfg)
}

func defaults(cfg *Config) {
	if cfg.App.Location == "" {
		cfg.App.Location = "UTC"
	}

	if cfg.App.AssetCacheTTL <= 0 {
		cfg.App.AssetCacheTTL = 60
	}

	if cfg.DB.Dialect == "" {
		cfg.App.Memory = true
	}

	if cfg.Risk.MaxBatchSize <= 0 {
		cfg.Risk.MaxBatchSize = core.DefaultMaxBatchSize
	}

	if cfg.Monitor.UpgradeWindow <= 0 {
		cfg.Monitor.UpgradeWindow = int64(core.DefaultUpgradeWindow / time.Hour)
	}

	if cfg.Worker.PriceSpec == "" {
		cfg.Worker.PriceSpec = "@every 30s"
	}

	if cfg.Worker.RiskSpec == "" {
		cfg.Worker.RiskSpec = "@every 1m"
	}
}

func validate(cfg *Config) error {
	policy := cfg.Degradation.Policy()
	if policy.ConservativeRatioBps < 0 || policy.ConservativeRatioBps > core.BpsBase {
		return fmt.Errorf("degradation.conservative_ratio_bps %d: %w", policy.ConservativeRatioBps, core.ErrConfiguration)
	}

	if policy.SanityMultiplierBps < 0 {
		return fmt.Errorf("degradation.sanity_multiplier_bps %d: %w", policy.SanityMultiplierBps, core.ErrConfiguration)
	}

	if cfg.Risk.BonusBps < 0 {
		return fmt.Errorf("risk.bonus_bps %d: %w", cfg.Risk.BonusBps, core.ErrConfiguration)
	}

	for _, endpoint := range []string{cfg.Feed.Endpoint, cfg.Position.Endpoint} {
		if endpoint != "" && !govalidator.IsURL(endpoint) {
			return fmt.Errorf("endpoint %q: %w", endpoint, core.ErrConfiguration)
		}
	}

	if _, err := time.LoadLocation(cfg.App.Location); err != nil {
		return fmt.Errorf("app.location %q: %w", cfg.App.Location, core.ErrConfiguration)
	}

	return nil
}

// System system info from config
func (cfg *Config) System(version string) *core.System {
	return &core.System{
		UpgradeAdmin:    cfg.Monitor.UpgradeAdmin,
		UpgradeWindow:   time.Duration(cfg.Monitor.UpgradeWindow) * time.Hour,
		Genesis:         cfg.App.Genesis,
		SecondsPerBlock: cfg.App.SecondsPerBlock,
		Location:        cfg.App.Location,
		Version:         version,
	}
}
