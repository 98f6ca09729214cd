package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/tavolo/pricing-service/internal/models"
)

type CouponRepo struct {
	db *sql.DB
}

func NewCouponRepo(db *sql.DB) *CouponRepo {
	return &CouponRepo{db: db}
}

// FindByCode looks a coupon up by its unique code. Returns (nil, nil)
// when no such coupon exists; an unknown code is soft ineligibility,
// not an error.
func (r *CouponRepo) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	query := `
		SELECT id, code, type, value, min_purchase, max_discount,
		       per_user_limit, total_limit, start_at, end_at,
		       segment_ids, stackable, is_active, created_at, updated_at
		FROM coupons
		WHERE code = $1
	`

	var c models.Coupon
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&c.ID,
		&c.Code,
		&c.Type,
		&c.Value,
		&c.MinPurchase,
		&c.MaxDiscount,
		&c.PerUserLimit,
		&c.TotalLimit,
		&c.StartAt,
		&c.EndAt,
		pq.Array(&c.SegmentIDs),
		&c.Stackable,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find coupon: %w", err)
	}

	return &c, nil
}

func (r *CouponRepo) Create(ctx context.Context, c models.Coupon) error {
	query := `
		INSERT INTO coupons
		(id, code, type, value, min_purchase, max_discount,
		 per_user_limit, total_limit, start_at, end_at,
		 segment_ids, stackable, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW(),NOW())
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Code, c.Type, c.Value, c.MinPurchase, c.MaxDiscount,
		c.PerUserLimit, c.TotalLimit, c.StartAt, c.EndAt,
		pq.Array(c.SegmentIDs), c.Stackable, c.IsActive,
	)
	if err != nil {
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}
