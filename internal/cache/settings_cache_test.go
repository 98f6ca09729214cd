package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tavolo/pricing-service/internal/models"
)

type fakeSettingsRepo struct {
	values map[string]json.RawMessage
	err    error
	calls  int
}

func (f *fakeSettingsRepo) Get(ctx context.Context, key string) (json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.values[key], nil
}

func TestSettingsCacheDecodes(t *testing.T) {
	repo := &fakeSettingsRepo{values: map[string]json.RawMessage{
		models.SettingSafetyCaps:    json.RawMessage(`{"maxOrderDiscount": 150, "promotionBudgetCap": 1000}`),
		models.SettingStackingRules: json.RawMessage(`{"couponOverridesPromotions": true, "freeDeliveryStacks": false}`),
	}}
	c := NewSettingsCache(repo, time.Minute)

	caps := c.SafetyCaps(context.Background())
	if !caps.MaxOrderDiscount.Equal(decimal.NewFromInt(150)) {
		t.Errorf("maxOrderDiscount = %s, want 150", caps.MaxOrderDiscount)
	}
	if !caps.PromotionBudgetCap.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("promotionBudgetCap = %s, want 1000", caps.PromotionBudgetCap)
	}

	stacking := c.StackingRules(context.Background())
	if !stacking.CouponOverridesPromotions || stacking.FreeDeliveryStacks {
		t.Errorf("stacking = %+v", stacking)
	}
}

func TestSettingsCacheCachesWithinTTL(t *testing.T) {
	repo := &fakeSettingsRepo{values: map[string]json.RawMessage{}}
	c := NewSettingsCache(repo, time.Minute)

	c.SafetyCaps(context.Background())
	c.StackingRules(context.Background())
	c.SafetyCaps(context.Background())

	if repo.calls != 2 { // one fetch per key, once
		t.Errorf("repo called %d times, want 2", repo.calls)
	}
}

func TestSettingsCacheMissingKeysFailOpen(t *testing.T) {
	c := NewSettingsCache(&fakeSettingsRepo{values: map[string]json.RawMessage{}}, time.Minute)

	caps := c.SafetyCaps(context.Background())
	if !caps.MaxOrderDiscount.IsZero() || !caps.PromotionBudgetCap.IsZero() {
		t.Errorf("missing settings should yield zero caps: %+v", caps)
	}
	stacking := c.StackingRules(context.Background())
	if stacking.CouponOverridesPromotions || stacking.FreeDeliveryStacks {
		t.Errorf("missing settings should yield zero policy: %+v", stacking)
	}
}

func TestSettingsCacheMalformedValueFailsOpen(t *testing.T) {
	repo := &fakeSettingsRepo{values: map[string]json.RawMessage{
		models.SettingSafetyCaps: json.RawMessage(`not json`),
	}}
	c := NewSettingsCache(repo, time.Minute)

	caps := c.SafetyCaps(context.Background())
	if !caps.MaxOrderDiscount.IsZero() {
		t.Errorf("malformed settings should yield zero caps: %+v", caps)
	}
}

func TestSettingsCacheKeepsSnapshotOnError(t *testing.T) {
	repo := &fakeSettingsRepo{values: map[string]json.RawMessage{
		models.SettingSafetyCaps: json.RawMessage(`{"maxOrderDiscount": 150}`),
	}}
	c := NewSettingsCache(repo, 0) // refresh every call

	first := c.SafetyCaps(context.Background())
	if !first.MaxOrderDiscount.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("caps = %+v", first)
	}

	repo.err = errors.New("db down")
	second := c.SafetyCaps(context.Background())
	if !second.MaxOrderDiscount.Equal(decimal.NewFromInt(150)) {
		t.Errorf("a failed refresh should keep the previous snapshot, got %+v", second)
	}
}
