// Package cache holds a small read-through cache for the settings
// records the pricing engine consults on every request.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tavolo/pricing-service/internal/models"
)

// SettingsGetter is the read side of the settings store.
type SettingsGetter interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
}

// SettingsCache caches decoded settings for a short TTL. Missing or
// malformed settings decode to zero values, which disable the
// corresponding caps and stacking overrides; a bad settings row must
// never fail checkout.
type SettingsCache struct {
	repo SettingsGetter
	ttl  time.Duration

	mu        sync.RWMutex
	caps      models.SafetyCaps
	stacking  models.StackingRules
	fetchedAt time.Time
}

func NewSettingsCache(repo SettingsGetter, ttl time.Duration) *SettingsCache {
	return &SettingsCache{repo: repo, ttl: ttl}
}

// SafetyCaps returns the cached global discount caps.
func (c *SettingsCache) SafetyCaps(ctx context.Context) models.SafetyCaps {
	c.refresh(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.caps
}

// StackingRules returns the cached stacking policy.
func (c *SettingsCache) StackingRules(ctx context.Context) models.StackingRules {
	c.refresh(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stacking
}

func (c *SettingsCache) refresh(ctx context.Context) {
	c.mu.RLock()
	fresh := time.Since(c.fetchedAt) < c.ttl
	c.mu.RUnlock()
	if fresh {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// On a transient read failure the previous snapshot is kept; a
	// present-but-undecodable value falls back to zero values.
	if raw, err := c.repo.Get(ctx, models.SettingSafetyCaps); err == nil {
		var caps models.SafetyCaps
		if raw != nil {
			_ = json.Unmarshal(raw, &caps)
		}
		c.caps = caps
	}
	if raw, err := c.repo.Get(ctx, models.SettingStackingRules); err == nil {
		var stacking models.StackingRules
		if raw != nil {
			_ = json.Unmarshal(raw, &stacking)
		}
		c.stacking = stacking
	}
	c.fetchedAt = time.Now()
}
