package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/tavolo/pricing-service/internal/models"
)

type RedemptionRepo struct {
	db *sql.DB
}

func NewRedemptionRepo(db *sql.DB) *RedemptionRepo {
	return &RedemptionRepo{db: db}
}

// SumByPromotion returns total discount already granted per promotion.
// Promotions with no redemptions are absent from the map.
func (r *RedemptionRepo) SumByPromotion(ctx context.Context, promotionIDs []string) (map[string]decimal.Decimal, error) {
	sums := make(map[string]decimal.Decimal)
	if len(promotionIDs) == 0 {
		return sums, nil
	}

	query := `
		SELECT promotion_id, COALESCE(SUM(discount_amount), 0)
		FROM redemptions
		WHERE promotion_id = ANY($1)
		GROUP BY promotion_id
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(promotionIDs))
	if err != nil {
		return nil, fmt.Errorf("sum redemptions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  string
			sum decimal.Decimal
		)
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, fmt.Errorf("scan redemption sum: %w", err)
		}
		sums[id] = sum
	}
	return sums, rows.Err()
}

// CountForCoupon counts redemptions of a coupon; an empty userID counts
// across all users (the coupon's global usage).
func (r *RedemptionRepo) CountForCoupon(ctx context.Context, couponID, userID string) (int, error) {
	var (
		count int
		err   error
	)
	if userID == "" {
		err = r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM redemptions WHERE coupon_id = $1`,
			couponID,
		).Scan(&count)
	} else {
		err = r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM redemptions WHERE coupon_id = $1 AND user_id = $2`,
			couponID, userID,
		).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count coupon redemptions: %w", err)
	}
	return count, nil
}

// Create appends redemption rows in one transaction. No-op when empty.
func (r *RedemptionRepo) Create(ctx context.Context, rows []models.Redemption) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt := `
		INSERT INTO redemptions
		(id, promotion_id, coupon_id, order_id, user_id, discount_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, stmt,
			row.ID,
			nullIfEmpty(row.PromotionID),
			nullIfEmpty(row.CouponID),
			row.OrderID,
			row.UserID,
			row.DiscountAmount,
		); err != nil {
			return fmt.Errorf("insert redemption: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit redemptions: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
