package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tavolo/pricing-service/internal/models"
	"github.com/tavolo/pricing-service/internal/repository"
)

// --- Request DTOs ---

type CreatePromotionRequest struct {
	Name        string                `json:"name"`
	Status      string                `json:"status,omitempty"`
	StartAt     string                `json:"start_at,omitempty"` // RFC3339
	EndAt       string                `json:"end_at,omitempty"`
	Stackable   bool                  `json:"stackable"`
	Priority    int                   `json:"priority"`
	Rules       models.PromotionRules `json:"rules"`
	Schedule    *models.Schedule      `json:"schedule,omitempty"`
	MaxDiscount decimal.Decimal       `json:"max_discount"`
	BudgetCap   decimal.Decimal       `json:"budget_cap"`
}

type CreateCouponRequest struct {
	Code         string          `json:"code"`
	Type         string          `json:"type"`
	Value        decimal.Decimal `json:"value"`
	MinPurchase  decimal.Decimal `json:"min_purchase"`
	MaxDiscount  decimal.Decimal `json:"max_discount"`
	PerUserLimit int             `json:"per_user_limit"`
	TotalLimit   int             `json:"total_limit"`
	StartAt      string          `json:"start_at,omitempty"`
	EndAt        string          `json:"end_at,omitempty"`
	SegmentIDs   []string        `json:"segment_ids,omitempty"`
	Stackable    *bool           `json:"stackable,omitempty"` // default true
	IsActive     bool            `json:"is_active"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// --- Handler struct & constructor ---

type AdminHandler struct {
	promotions *repository.PromotionRepo
	coupons    *repository.CouponRepo
}

func NewAdminHandler(promotions *repository.PromotionRepo, coupons *repository.CouponRepo) *AdminHandler {
	return &AdminHandler{promotions: promotions, coupons: coupons}
}

// --- Helpers ---

func parseTimeOrEmpty(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func validStatus(s string) bool {
	switch s {
	case models.StatusDraft, models.StatusScheduled, models.StatusActive,
		models.StatusPaused, models.StatusExpired:
		return true
	}
	return false
}

func validDiscountType(s string) bool {
	switch s {
	case models.DiscountPercent, models.DiscountFixed, models.DiscountFreeDelivery:
		return true
	}
	return false
}

// --- Handlers ---

// CreatePromotion handles POST /admin/promotions. Condition trees and
// actions are validated here, at the boundary; the pricing path trusts
// stored rules and fails open on anomalies.
func (h *AdminHandler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	var req CreatePromotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name required"})
		return
	}
	status := req.Status
	if status == "" {
		status = models.StatusDraft
	}
	if !validStatus(status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status"})
		return
	}
	if !validDiscountType(req.Rules.Actions.Type) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown action type"})
		return
	}
	if err := req.Rules.Conditions.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid conditions: " + err.Error()})
		return
	}

	startAt, err := parseTimeOrEmpty(req.StartAt)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_at; use RFC3339"})
		return
	}
	endAt, err := parseTimeOrEmpty(req.EndAt)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end_at; use RFC3339"})
		return
	}

	p := models.Promotion{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Status:      status,
		StartAt:     startAt,
		EndAt:       endAt,
		Stackable:   req.Stackable,
		Priority:    req.Priority,
		Rules:       req.Rules,
		Schedule:    req.Schedule,
		MaxDiscount: req.MaxDiscount,
		BudgetCap:   req.BudgetCap,
	}
	if err := h.promotions.Create(r.Context(), p); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed_create_promotion"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":      "promotion_created",
		"promotion_id": p.ID,
	})
}

// ListPromotions handles GET /admin/promotions.
func (h *AdminHandler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	promos, err := h.promotions.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed_list_promotions"})
		return
	}
	if promos == nil {
		promos = []models.Promotion{}
	}
	writeJSON(w, http.StatusOK, promos)
}

// UpdatePromotionStatus handles PATCH /admin/promotions/{id}/status.
func (h *AdminHandler) UpdatePromotionStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_body"})
		return
	}
	if !validStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status"})
		return
	}

	if err := h.promotions.UpdateStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "promotion_not_found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed_update_status"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "status_updated"})
}

// CreateCoupon handles POST /admin/coupons.
func (h *AdminHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req CreateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_body"})
		return
	}

	if strings.TrimSpace(req.Code) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "code required"})
		return
	}
	if !validDiscountType(req.Type) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown coupon type"})
		return
	}
	if req.Type != models.DiscountFreeDelivery && !req.Value.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "value must be positive"})
		return
	}

	startAt, err := parseTimeOrEmpty(req.StartAt)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_at; use RFC3339"})
		return
	}
	endAt, err := parseTimeOrEmpty(req.EndAt)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end_at; use RFC3339"})
		return
	}

	stackable := true
	if req.Stackable != nil {
		stackable = *req.Stackable
	}

	c := models.Coupon{
		ID:           uuid.NewString(),
		Code:         req.Code,
		Type:         req.Type,
		Value:        req.Value,
		MinPurchase:  req.MinPurchase,
		MaxDiscount:  req.MaxDiscount,
		PerUserLimit: req.PerUserLimit,
		TotalLimit:   req.TotalLimit,
		StartAt:      startAt,
		EndAt:        endAt,
		SegmentIDs:   req.SegmentIDs,
		Stackable:    stackable,
		IsActive:     req.IsActive,
	}
	if err := h.coupons.Create(r.Context(), c); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed_create_coupon"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "coupon_created",
		"coupon_id": c.ID,
	})
}
