package upgrade

import (
	"context"
	"encoding/json"
	"time"

	"safeprice/core"

	"github.com/fox-one/pkg/property"
)

// stateKey window and version share one property value so a save is all or nothing
const stateKey = "monitor_upgrade_state"

type state struct {
	OpenedBy string    `json:"opened_by,omitempty"`
	OpenedAt time.Time `json:"opened_at,omitempty"`
	ExpireAt time.Time `json:"expire_at,omitempty"`
	Version  int       `json:"version"`
}

// values raw string access to the property store
type values interface {
	load(ctx context.Context, key string) (string, error)
	save(ctx context.Context, key, value string) error
}

type propertyValues struct {
	property property.Store
}

func (p propertyValues) load(ctx context.Context, key string) (string, error) {
	v, err := p.property.Get(ctx, key)
	if err != nil {
		return "", err
	}

	return v.String(), nil
}

func (p propertyValues) save(ctx context.Context, key, value string) error {
	return p.property.Save(ctx, key, value)
}

type upgradeStore struct {
	values values
}

// New upgrade window store backed by the property store
func New(property property.Store) core.UpgradeStore {
	return &upgradeStore{
		values: propertyValues{property: property},
	}
}

func (s *upgradeStore) Load(ctx context.Context) (core.UpgradeWindow, int, error) {
	raw, err := s.values.load(ctx, stateKey)
	if err != nil {
		return core.UpgradeWindow{}, 0, err
	}

	if raw == "" {
		return core.UpgradeWindow{}, 0, nil
	}

	var st state
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return core.UpgradeWindow{}, 0, err
	}

	var w core.UpgradeWindow
	if st.OpenedBy != "" {
		w = core.UpgradeWindow{OpenedBy: st.OpenedBy, OpenedAt: st.OpenedAt, ExpireAt: st.ExpireAt}
	}

	return w, st.Version, nil
}

func (s *upgradeStore) Save(ctx context.Context, w core.UpgradeWindow, version int) error {
	data, err := json.Marshal(state{
		OpenedBy: w.OpenedBy,
		OpenedAt: w.OpenedAt,
		ExpireAt: w.ExpireAt,
		Version:  version,
	})
	if err != nil {
		return err
	}

	return s.values.save(ctx, stateKey, string(data))
}
