package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tavolo/pricing-service/internal/api/handlers"
	"github.com/tavolo/pricing-service/internal/cache"
	"github.com/tavolo/pricing-service/internal/repository"
	"github.com/tavolo/pricing-service/internal/service"
)

// NewRouter wires repositories, the settings cache, the pricing engine
// and the HTTP handlers for the pricing-service.
func NewRouter(db *sql.DB) http.Handler {
	promoRepo := repository.NewPromotionRepo(db)
	couponRepo := repository.NewCouponRepo(db)
	redemptionRepo := repository.NewRedemptionRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	settings := cache.NewSettingsCache(repository.NewSettingsRepo(db), 30*time.Second)

	svc := service.NewPricingService(promoRepo, couponRepo, redemptionRepo, orderRepo, settings)

	pricing := handlers.NewPricingHandler(svc)
	admin := handlers.NewAdminHandler(promoRepo, couponRepo)

	r := chi.NewRouter()

	r.Route("/pricing", func(r chi.Router) {
		r.Post("/quote", pricing.Quote)
		r.Post("/checkout", pricing.Checkout)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/promotions", admin.CreatePromotion)
		r.Get("/promotions", admin.ListPromotions)
		r.Patch("/promotions/{id}/status", admin.UpdatePromotionStatus)
		r.Post("/coupons", admin.CreateCoupon)
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
