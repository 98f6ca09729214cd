// Package service implements the pricing engine: promotion selection,
// coupon resolution, discount aggregation under the global safety cap,
// and redemption recording. All intermediate state is local to one
// invocation; the service itself holds no mutable state between calls.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tavolo/pricing-service/internal/models"
	"github.com/tavolo/pricing-service/internal/rules"
)

// Repos required by the service (interfaces to allow mocking).

type PromotionRepo interface {
	FindActive(ctx context.Context, now time.Time) ([]models.Promotion, error)
}

type CouponRepo interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type RedemptionRepo interface {
	SumByPromotion(ctx context.Context, promotionIDs []string) (map[string]decimal.Decimal, error)
	CountForCoupon(ctx context.Context, couponID, userID string) (int, error)
	Create(ctx context.Context, rows []models.Redemption) error
}

type OrderRepo interface {
	CountPriorOrders(ctx context.Context, customerID string) (int, error)
}

type SettingsSource interface {
	SafetyCaps(ctx context.Context) models.SafetyCaps
	StackingRules(ctx context.Context) models.StackingRules
}

// RecordError reports that an order was priced successfully but its
// redemption rows could not be written. The caller decides whether to
// retry the ledger write or accept the unrecorded redemption; the
// quote itself is valid.
type RecordError struct {
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("recording redemptions: %v", e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

type PricingService struct {
	promotions  PromotionRepo
	coupons     CouponRepo
	redemptions RedemptionRepo
	orders      OrderRepo
	settings    SettingsSource
	now         func() time.Time
}

func NewPricingService(
	promotions PromotionRepo,
	coupons CouponRepo,
	redemptions RedemptionRepo,
	orders OrderRepo,
	settings SettingsSource,
) *PricingService {
	return &PricingService{
		promotions:  promotions,
		coupons:     coupons,
		redemptions: redemptions,
		orders:      orders,
		settings:    settings,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// PriceOrder computes a quote without touching the redemption ledger.
// Offers that do not apply are silently excluded; a quote is always
// produced unless a collaborator read fails outright.
func (s *PricingService) PriceOrder(ctx context.Context, req models.PricingRequest) (*models.PriceQuote, error) {
	quote, _, err := s.price(ctx, req)
	return quote, err
}

// FinalizeOrder prices the order and records one redemption row per
// applied source with nonzero effect. Requires req.OrderID. A failed
// ledger write is returned as *RecordError alongside the valid quote.
func (s *PricingService) FinalizeOrder(ctx context.Context, req models.PricingRequest) (*models.PriceQuote, error) {
	if req.OrderID == "" {
		return nil, fmt.Errorf("finalize requires an order id")
	}

	quote, applied, err := s.price(ctx, req)
	if err != nil {
		return nil, err
	}

	var redeemed []models.Redemption
	for _, d := range applied {
		if !d.Amount.IsPositive() && !d.FreeDelivery {
			continue
		}
		row := models.Redemption{
			ID:             uuid.NewString(),
			OrderID:        req.OrderID,
			UserID:         req.CustomerID,
			DiscountAmount: d.Amount,
		}
		switch d.SourceType {
		case models.SourcePromotion:
			row.PromotionID = d.SourceID
		case models.SourceCoupon:
			row.CouponID = d.SourceID
		}
		redeemed = append(redeemed, row)
	}

	if err := s.redemptions.Create(ctx, redeemed); err != nil {
		return quote, &RecordError{Err: err}
	}
	return quote, nil
}

func (s *PricingService) price(ctx context.Context, req models.PricingRequest) (*models.PriceQuote, []models.AppliedDiscount, error) {
	now := s.now()

	prior, err := s.orders.CountPriorOrders(ctx, req.CustomerID)
	if err != nil {
		return nil, nil, fmt.Errorf("load order history: %w", err)
	}
	pctx := buildContext(req, prior == 0, now)

	caps := s.settings.SafetyCaps(ctx)
	stacking := s.settings.StackingRules(ctx)

	candidates, err := s.promotions.FindActive(ctx, now)
	if err != nil {
		return nil, nil, fmt.Errorf("load promotions: %w", err)
	}

	ids := make([]string, len(candidates))
	for i, p := range candidates {
		ids[i] = p.ID
	}
	spent, err := s.redemptions.SumByPromotion(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load promotion spend: %w", err)
	}

	selected := selectPromotions(candidates, spent, pctx, now, caps.PromotionBudgetCap)

	var applied []models.AppliedDiscount
	for _, p := range selected {
		amount, freeDelivery := applyAction(p.Rules.Actions, req.Subtotal, p.MaxDiscount)
		if !amount.IsPositive() && !freeDelivery {
			continue
		}
		applied = append(applied, models.AppliedDiscount{
			SourceType:   models.SourcePromotion,
			SourceID:     p.ID,
			Amount:       amount,
			FreeDelivery: freeDelivery,
		})
	}

	if req.CouponCode != "" {
		applied, err = s.resolveCoupon(ctx, req, now, stacking, applied)
		if err != nil {
			return nil, nil, err
		}
	}

	discountTotal := decimal.Zero
	freeDelivery := false
	for _, d := range applied {
		discountTotal = discountTotal.Add(d.Amount)
		freeDelivery = freeDelivery || d.FreeDelivery
	}

	if caps.MaxOrderDiscount.IsPositive() && discountTotal.GreaterThan(caps.MaxOrderDiscount) {
		applied, discountTotal = capDiscounts(applied, caps.MaxOrderDiscount)
	}

	deliveryFee := req.DeliveryFee
	if freeDelivery {
		deliveryFee = decimal.Zero
	}
	total := req.Subtotal.Add(deliveryFee).Sub(discountTotal)
	if total.IsNegative() {
		total = decimal.Zero
	}

	if applied == nil {
		applied = []models.AppliedDiscount{}
	}

	quote := &models.PriceQuote{
		Subtotal:      req.Subtotal,
		DeliveryFee:   deliveryFee,
		DiscountTotal: discountTotal,
		Total:         total,
		Applied:       applied,
	}
	return quote, applied, nil
}

// selectPromotions filters candidates down to the promotions that
// actually apply: active in their date range, budget headroom left,
// conditions true, schedule active. If any survivor is exclusive the
// first one (candidates arrive priority-descending) suppresses all
// others, including stackable ones.
func selectPromotions(
	candidates []models.Promotion,
	spent map[string]decimal.Decimal,
	pctx models.PricingContext,
	now time.Time,
	defaultBudgetCap decimal.Decimal,
) []models.Promotion {
	ctxMap := pctx.AsMap()

	var eligible []models.Promotion
	for _, p := range candidates {
		if p.Status != models.StatusActive {
			continue
		}
		if p.StartAt != nil && p.StartAt.After(now) {
			continue
		}
		if p.EndAt != nil && p.EndAt.Before(now) {
			continue
		}

		budget := p.BudgetCap
		if !budget.IsPositive() {
			budget = defaultBudgetCap
		}
		if budget.IsPositive() && spent[p.ID].GreaterThanOrEqual(budget) {
			continue
		}

		if !rules.Evaluate(p.Rules.Conditions, ctxMap) {
			continue
		}
		if !rules.ScheduleActive(p.Schedule, pctx.DayOfWeek, pctx.Time) {
			continue
		}

		eligible = append(eligible, p)
	}

	for _, p := range eligible {
		if !p.Stackable {
			return []models.Promotion{p}
		}
	}
	return eligible
}

// resolveCoupon validates the submitted code and, when it applies,
// appends its discount. A non-stackable coupon under the
// couponOverridesPromotions policy replaces already-selected promotion
// discounts first, keeping free-delivery entries only if the policy
// lets free delivery stack. Every outcome that doesn't apply leaves
// the applied list untouched.
func (s *PricingService) resolveCoupon(
	ctx context.Context,
	req models.PricingRequest,
	now time.Time,
	stacking models.StackingRules,
	applied []models.AppliedDiscount,
) ([]models.AppliedDiscount, error) {
	c, err := s.coupons.FindByCode(ctx, req.CouponCode)
	if err != nil {
		return nil, fmt.Errorf("load coupon: %w", err)
	}
	if c == nil || !c.IsActive {
		return applied, nil
	}
	if c.StartAt != nil && c.StartAt.After(now) {
		return applied, nil
	}
	if c.EndAt != nil && c.EndAt.Before(now) {
		return applied, nil
	}

	if len(c.SegmentIDs) > 0 && !segmentsIntersect(c.SegmentIDs, req.SegmentIDs) {
		return applied, nil
	}

	if c.TotalLimit > 0 {
		total, err := s.redemptions.CountForCoupon(ctx, c.ID, "")
		if err != nil {
			return nil, fmt.Errorf("count coupon usage: %w", err)
		}
		if total >= c.TotalLimit {
			return applied, nil
		}
	}
	if c.PerUserLimit > 0 {
		used, err := s.redemptions.CountForCoupon(ctx, c.ID, req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("count coupon usage: %w", err)
		}
		if used >= c.PerUserLimit {
			return applied, nil
		}
	}

	// The override replaces promotion effects before the coupon's own
	// amount is computed.
	if !c.Stackable && stacking.CouponOverridesPromotions {
		var kept []models.AppliedDiscount
		if stacking.FreeDeliveryStacks {
			for _, d := range applied {
				if d.FreeDelivery {
					kept = append(kept, d)
				}
			}
		}
		applied = kept
	}

	if c.MinPurchase.IsPositive() && req.Subtotal.LessThan(c.MinPurchase) {
		return applied, nil
	}

	action := models.ActionSpec{Type: c.Type, Value: c.Value, MaxDiscount: c.MaxDiscount}
	amount, freeDelivery := applyAction(action, req.Subtotal, decimal.Zero)
	if !amount.IsPositive() && !freeDelivery {
		return applied, nil
	}

	return append(applied, models.AppliedDiscount{
		SourceType:   models.SourceCoupon,
		SourceID:     c.ID,
		Amount:       amount,
		FreeDelivery: freeDelivery,
	}), nil
}

// applyAction computes one source's discount against the subtotal.
// Percent amounts are capped by the larger of the action's own cap and
// the override cap when that is positive; fixed amounts are taken as-is
// (the final total is floored at zero downstream); an unknown action
// type has no effect.
func applyAction(action models.ActionSpec, subtotal, overrideMaxDiscount decimal.Decimal) (decimal.Decimal, bool) {
	switch action.Type {
	case models.DiscountPercent:
		amount := subtotal.Mul(action.Value).Div(decimal.NewFromInt(100))
		ceiling := decimal.Max(action.MaxDiscount, overrideMaxDiscount)
		if ceiling.IsPositive() && amount.GreaterThan(ceiling) {
			amount = ceiling
		}
		return amount, false
	case models.DiscountFixed:
		return action.Value, false
	case models.DiscountFreeDelivery:
		return decimal.Zero, true
	}
	return decimal.Zero, false
}

// capDiscounts enforces the order-level safety cap by consuming it
// greedily in list order: earlier entries keep their amounts, later
// ones are reduced or zeroed once the cap is spent. Builds a new list.
func capDiscounts(applied []models.AppliedDiscount, limit decimal.Decimal) ([]models.AppliedDiscount, decimal.Decimal) {
	remaining := limit
	total := decimal.Zero
	out := make([]models.AppliedDiscount, 0, len(applied))
	for _, d := range applied {
		amount := decimal.Min(d.Amount, remaining)
		remaining = remaining.Sub(amount)
		total = total.Add(amount)
		d.Amount = amount
		out = append(out, d)
	}
	return out, total
}

func buildContext(req models.PricingRequest, firstOrder bool, now time.Time) models.PricingContext {
	return models.PricingContext{
		Subtotal:   req.Subtotal,
		ItemCount:  req.ItemCount,
		Channel:    req.Channel,
		SegmentIDs: req.SegmentIDs,
		DayOfWeek:  strings.ToLower(now.Weekday().String()),
		Time:       now.Format("15:04"),
		FirstOrder: firstOrder,
	}
}

func segmentsIntersect(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		if set[s] {
			return true
		}
	}
	return false
}
