package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coupon is a code-based discount submitted by the customer at pricing
// time. Zero limits mean unlimited; nil time bounds mean unbounded.
type Coupon struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	Type         string          `json:"type"`
	Value        decimal.Decimal `json:"value"`
	MinPurchase  decimal.Decimal `json:"minPurchase"`
	MaxDiscount  decimal.Decimal `json:"maxDiscount"`
	PerUserLimit int             `json:"perUserLimit"`
	TotalLimit   int             `json:"totalLimit"`
	StartAt      *time.Time      `json:"startAt,omitempty"`
	EndAt        *time.Time      `json:"endAt,omitempty"`
	SegmentIDs   []string        `json:"segmentIds,omitempty"`
	Stackable    bool            `json:"stackable"`
	IsActive     bool            `json:"isActive"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}
