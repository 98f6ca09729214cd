package models

import "github.com/shopspring/decimal"

// Sources a discount can come from.
const (
	SourcePromotion = "promotion"
	SourceCoupon    = "coupon"
)

// PricingRequest is the engine's input, built by the pricing endpoint.
// OrderID is empty for preview quotes; when set, redemptions are
// recorded against it.
type PricingRequest struct {
	OrderID     string          `json:"orderId,omitempty"`
	CustomerID  string          `json:"customerId"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	ItemCount   int             `json:"itemCount"`
	Channel     string          `json:"channel"`
	SegmentIDs  []string        `json:"segmentIds,omitempty"`
	CouponCode  string          `json:"couponCode,omitempty"`
}

// PricingContext is the per-request snapshot condition trees are
// evaluated against. Never persisted.
type PricingContext struct {
	Subtotal   decimal.Decimal
	ItemCount  int
	Channel    string
	SegmentIDs []string
	DayOfWeek  string
	Time       string
	FirstOrder bool
}

// AsMap exposes the context under the field names rule authors use.
func (c PricingContext) AsMap() map[string]any {
	return map[string]any{
		"subtotal":   c.Subtotal,
		"itemCount":  c.ItemCount,
		"channel":    c.Channel,
		"segmentIds": c.SegmentIDs,
		"dayOfWeek":  c.DayOfWeek,
		"time":       c.Time,
		"firstOrder": c.FirstOrder,
	}
}

// AppliedDiscount is one source's contribution to an order's discount.
type AppliedDiscount struct {
	SourceType   string          `json:"sourceType"`
	SourceID     string          `json:"sourceId"`
	Amount       decimal.Decimal `json:"amount"`
	FreeDelivery bool            `json:"freeDelivery"`
}

// PriceQuote is the engine's output.
type PriceQuote struct {
	Subtotal      decimal.Decimal   `json:"subtotal"`
	DeliveryFee   decimal.Decimal   `json:"deliveryFee"`
	DiscountTotal decimal.Decimal   `json:"discountTotal"`
	Total         decimal.Decimal   `json:"total"`
	Applied       []AppliedDiscount `json:"applied"`
}
