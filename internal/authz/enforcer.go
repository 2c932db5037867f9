// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package authz

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/cineswipe/internal/cache"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// EnforcerConfig holds configuration for the Casbin enforcer.
type EnforcerConfig struct {
	// PolicyPath overrides the embedded policy with a CSV file.
	PolicyPath string

	// DefaultRole is assumed for requests that carry no role.
	DefaultRole string

	// CacheSize bounds the decision cache; zero disables caching.
	CacheSize int
	CacheTTL  time.Duration

	Clock clockwork.Clock
}

// DefaultEnforcerConfig returns default configuration.
func DefaultEnforcerConfig() *EnforcerConfig {
	return &EnforcerConfig{
		DefaultRole: "guest",
		CacheSize:   1024,
		CacheTTL:    5 * time.Minute,
	}
}

type decisionKey struct {
	sub, obj, act string
}

// Enforcer wraps a synced Casbin enforcer with a decision cache.
type Enforcer struct {
	config   *EnforcerConfig
	enforcer *casbin.SyncedEnforcer
	cache    *cache.LRU[decisionKey, bool]
}

// NewEnforcer creates an enforcer from the embedded model and either the
// embedded policy or config.PolicyPath.
func NewEnforcer(config *EnforcerConfig) (*Enforcer, error) {
	if config == nil {
		config = DefaultEnforcerConfig()
	}

	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if config.PolicyPath != "" {
		if _, statErr := os.Stat(config.PolicyPath); statErr != nil {
			return nil, fmt.Errorf("policy file: %w", statErr)
		}
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(config.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadPolicyText(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	e := &Enforcer{config: config, enforcer: enforcer}
	if config.CacheSize > 0 {
		e.cache = cache.NewLRU[decisionKey, bool](config.CacheSize, config.CacheTTL, config.Clock)
	}
	return e, nil
}

// loadPolicyText parses CSV policy lines ("p, sub, obj, act" and "g, user, role").
func loadPolicyText(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch rule := parts[1:]; parts[0] {
		case "p":
			if len(rule) < 3 {
				return fmt.Errorf("malformed policy line %q", line)
			}
			if _, err := enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", rule, err)
			}
		case "g":
			if len(rule) < 2 {
				return fmt.Errorf("malformed grouping line %q", line)
			}
			if _, err := enforcer.AddGroupingPolicy(rule[0], rule[1]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", rule, err)
			}
		default:
			return fmt.Errorf("unknown policy type %q", parts[0])
		}
	}
	return nil
}

// Enforce checks if subject may perform action on object.
func (e *Enforcer) Enforce(subject, object, action string) (bool, error) {
	key := decisionKey{subject, object, action}
	if e.cache != nil {
		if allowed, ok := e.cache.Get(key); ok {
			return allowed, nil
		}
	}

	allowed, err := e.enforcer.Enforce(subject, object, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}

	if e.cache != nil {
		e.cache.Add(key, allowed)
	}
	return allowed, nil
}

// EnforceWithRoles checks the subject itself, then each of its roles. A
// subject without roles is evaluated as DefaultRole.
func (e *Enforcer) EnforceWithRoles(subject string, roles []string, object, action string) (bool, error) {
	if allowed, err := e.Enforce(subject, object, action); err != nil || allowed {
		return allowed, err
	}

	for _, role := range roles {
		if role == "" {
			continue
		}
		if allowed, err := e.Enforce(role, object, action); err != nil || allowed {
			return allowed, err
		}
	}

	if e.config.DefaultRole != "" && len(roles) == 0 {
		return e.Enforce(e.config.DefaultRole, object, action)
	}
	return false, nil
}

// AddRoleForUser assigns role to user.
func (e *Enforcer) AddRoleForUser(user, role string) (bool, error) {
	added, err := e.enforcer.AddGroupingPolicy(user, role)
	if err != nil {
		return false, fmt.Errorf("failed to add role: %w", err)
	}
	e.invalidate()
	return added, nil
}

// GetRolesForUser returns the roles directly assigned to user.
func (e *Enforcer) GetRolesForUser(user string) ([]string, error) {
	return e.enforcer.GetRolesForUser(user)
}

// GetPolicy returns all policy rules.
func (e *Enforcer) GetPolicy() [][]string {
	//nolint:errcheck // GetPolicy only fails on a nil model
	policies, _ := e.enforcer.GetPolicy()
	return policies
}

func (e *Enforcer) invalidate() {
	if e.cache != nil {
		e.cache.Purge()
	}
}
