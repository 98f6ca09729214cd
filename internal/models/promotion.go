package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Promotion lifecycle statuses.
const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusExpired   = "expired"
)

// Discount action types, shared by promotion actions and coupons.
const (
	DiscountPercent      = "percent"
	DiscountFixed        = "fixed"
	DiscountFreeDelivery = "free_delivery"
)

// ActionSpec describes the effect a promotion or coupon grants.
// MaxDiscount caps percent amounts; zero means uncapped.
type ActionSpec struct {
	Type        string          `json:"type"`
	Value       decimal.Decimal `json:"value"`
	MaxDiscount decimal.Decimal `json:"maxDiscount"`
}

// PromotionRules pairs the eligibility tree with the granted action.
type PromotionRules struct {
	Conditions ConditionNode `json:"conditions"`
	Actions    ActionSpec    `json:"actions"`
}

// TimeWindow is an inclusive "HH:MM" range. End before Start never
// matches past midnight; windows do not wrap.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Schedule restricts a promotion to certain days and a daily window.
type Schedule struct {
	Days       []string    `json:"days,omitempty"`
	TimeWindow *TimeWindow `json:"timeWindow,omitempty"`
}

// Promotion is an admin-defined discount rule. The pricing engine only
// ever reads promotions; all mutation goes through the admin surface.
type Promotion struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Status      string          `json:"status"`
	StartAt     *time.Time      `json:"startAt,omitempty"`
	EndAt       *time.Time      `json:"endAt,omitempty"`
	Stackable   bool            `json:"stackable"`
	Priority    int             `json:"priority"`
	Rules       PromotionRules  `json:"rules"`
	Schedule    *Schedule       `json:"schedule,omitempty"`
	MaxDiscount decimal.Decimal `json:"maxDiscount"`
	BudgetCap   decimal.Decimal `json:"budgetCap"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
