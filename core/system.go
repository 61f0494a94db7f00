package core

import (
	"time"
)

// DefaultUpgradeWindow authorization window of the monitor upgrade
const DefaultUpgradeWindow = 24 * time.Hour

// System stores system information.
type System struct {
	// UpgradeAdmin the only identity allowed to authorize and run monitor upgrades
	UpgradeAdmin    string
	UpgradeWindow   time.Duration
	Genesis         int64
	SecondsPerBlock int64
	Location        string
	Version         string
}

// IsUpgradeAdmin is the designated upgrade admin
func (s *System) IsUpgradeAdmin(userID string) bool {
	return s.UpgradeAdmin != "" && s.UpgradeAdmin == userID
}

// UpgradeWindowDuration window duration with default
func (s *System) UpgradeWindowDuration() time.Duration {
	if s.UpgradeWindow <= 0 {
		return DefaultUpgradeWindow
	}

	return s.UpgradeWindow
}
