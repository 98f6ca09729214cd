package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Redemption is one append-only ledger row: a discount source applied
// to a finalized order. Exactly one of PromotionID/CouponID is set.
// Sums over this table drive budget caps and coupon usage limits.
type Redemption struct {
	ID             string          `json:"id"`
	PromotionID    string          `json:"promotionId,omitempty"`
	CouponID       string          `json:"couponId,omitempty"`
	OrderID        string          `json:"orderId"`
	UserID         string          `json:"userId"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	CreatedAt      time.Time       `json:"createdAt"`
}
