package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tavolo/pricing-service/internal/models"
	"github.com/tavolo/pricing-service/internal/service"
)

// --- Request / Response DTOs ---

type PriceRequestBody struct {
	OrderID     string          `json:"order_id,omitempty"`
	CustomerID  string          `json:"customer_id"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	ItemCount   int             `json:"item_count"`
	Channel     string          `json:"channel"`
	SegmentIDs  []string        `json:"segment_ids,omitempty"`
	CouponCode  string          `json:"coupon_code,omitempty"`
}

type CheckoutResponse struct {
	models.PriceQuote
	Recorded bool `json:"recorded"`
}

// --- Handler struct & constructor ---

type PricingHandler struct {
	service *service.PricingService
}

func NewPricingHandler(svc *service.PricingService) *PricingHandler {
	return &PricingHandler{service: svc}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *PricingHandler) decodeRequest(r *http.Request) (models.PricingRequest, string) {
	var body PriceRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return models.PricingRequest{}, "invalid_body"
	}
	if strings.TrimSpace(body.CustomerID) == "" {
		return models.PricingRequest{}, "customer_id required"
	}
	if body.Subtotal.IsNegative() || body.DeliveryFee.IsNegative() {
		return models.PricingRequest{}, "amounts must not be negative"
	}

	return models.PricingRequest{
		OrderID:     body.OrderID,
		CustomerID:  body.CustomerID,
		Subtotal:    body.Subtotal,
		DeliveryFee: body.DeliveryFee,
		ItemCount:   body.ItemCount,
		Channel:     body.Channel,
		SegmentIDs:  body.SegmentIDs,
		CouponCode:  body.CouponCode,
	}, ""
}

// --- Handlers ---

// Quote handles POST /pricing/quote: price the order without writing
// to the redemption ledger.
func (h *PricingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	req, msg := h.decodeRequest(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}
	req.OrderID = "" // quotes never record

	quote, err := h.service.PriceOrder(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "pricing_failed"})
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// Checkout handles POST /pricing/checkout: price the order and record
// redemptions against the supplied order id. A failed ledger write
// still returns the quote, flagged as unrecorded.
func (h *PricingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	req, msg := h.decodeRequest(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}
	if req.OrderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order_id required"})
		return
	}

	quote, err := h.service.FinalizeOrder(r.Context(), req)
	if err != nil {
		var recErr *service.RecordError
		if errors.As(err, &recErr) {
			log.Printf("redemption write failed for order %s: %v", req.OrderID, recErr)
			writeJSON(w, http.StatusOK, CheckoutResponse{PriceQuote: *quote, Recorded: false})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "pricing_failed"})
		return
	}

	writeJSON(w, http.StatusOK, CheckoutResponse{PriceQuote: *quote, Recorded: true})
}
