package access

import (
	"context"
	"fmt"
	"strings"

	"safeprice/core"

	"github.com/asaskevich/govalidator"
	"github.com/fox-one/pkg/logger"
)

type accessControl struct {
	roles map[core.Action][]string
}

// New access control backed by the roles section of the config,
// actions without an entry deny everyone
func New(roles map[string][]string) core.AccessControl {
	s := &accessControl{roles: make(map[core.Action][]string, len(roles))}
	for action, ids := range roles {
		s.roles[core.Action(action)] = ids
	}

	return s
}

func (s *accessControl) Allow(ctx context.Context, action core.Action, caller string) bool {
	if strings.TrimSpace(caller) == "" {
		return false
	}

	ok := govalidator.IsIn(caller, s.roles[action]...)
	if !ok {
		logger.FromContext(ctx).WithField("action", action).WithField("caller", caller).Debugln("access denied")
	}

	return ok
}

type registry struct {
	entries map[string]string
}

// NewRegistry static key to identity registry
func NewRegistry(entries map[string]string) core.Registry {
	return &registry{entries: entries}
}

func (r *registry) Resolve(ctx context.Context, key string) (string, error) {
	identity := strings.TrimSpace(r.entries[key])
	if identity == "" {
		return "", fmt.Errorf("registry key %q: %w", key, core.ErrDependencyUnavailable)
	}

	return identity, nil
}
