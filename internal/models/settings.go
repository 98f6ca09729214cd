package models

import "github.com/shopspring/decimal"

// Keys of the settings records the engine consumes.
const (
	SettingSafetyCaps    = "safety_caps"
	SettingStackingRules = "stacking_rules"
)

// SafetyCaps holds global discount guards. Zero values disable the
// corresponding cap.
type SafetyCaps struct {
	MaxOrderDiscount   decimal.Decimal `json:"maxOrderDiscount"`
	PromotionBudgetCap decimal.Decimal `json:"promotionBudgetCap"`
}

// StackingRules holds the coupon/promotion stacking policy.
type StackingRules struct {
	CouponOverridesPromotions bool `json:"couponOverridesPromotions"`
	FreeDeliveryStacks        bool `json:"freeDeliveryStacks"`
}
