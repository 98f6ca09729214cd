package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tavolo/pricing-service/internal/models"
)

type PromotionRepo struct {
	db *sql.DB
}

func NewPromotionRepo(db *sql.DB) *PromotionRepo {
	return &PromotionRepo{db: db}
}

const promotionColumns = `
	id, name, status, start_at, end_at, stackable, priority,
	rules, schedule, max_discount, budget_cap, created_at, updated_at
`

// FindActive returns active promotions ordered by priority descending,
// so the first eligible exclusive promotion in the slice wins stacking.
func (r *PromotionRepo) FindActive(ctx context.Context, now time.Time) ([]models.Promotion, error) {
	query := `
		SELECT ` + promotionColumns + `
		FROM promotions
		WHERE status = $1
		  AND (start_at IS NULL OR start_at <= $2)
		  AND (end_at IS NULL OR end_at >= $2)
		ORDER BY priority DESC, created_at ASC
	`
	return r.query(ctx, query, models.StatusActive, now)
}

// List returns all promotions for the admin surface, newest first.
func (r *PromotionRepo) List(ctx context.Context) ([]models.Promotion, error) {
	query := `
		SELECT ` + promotionColumns + `
		FROM promotions
		ORDER BY created_at DESC
	`
	return r.query(ctx, query)
}

func (r *PromotionRepo) query(ctx context.Context, query string, args ...any) ([]models.Promotion, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query promotions: %w", err)
	}
	defer rows.Close()

	var promos []models.Promotion
	for rows.Next() {
		var (
			p            models.Promotion
			rulesJSON    []byte
			scheduleJSON []byte
		)
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Status,
			&p.StartAt,
			&p.EndAt,
			&p.Stackable,
			&p.Priority,
			&rulesJSON,
			&scheduleJSON,
			&p.MaxDiscount,
			&p.BudgetCap,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}

		// A promotion whose stored rules no longer decode must not
		// take down checkout; it is simply skipped.
		if err := json.Unmarshal(rulesJSON, &p.Rules); err != nil {
			continue
		}
		if len(scheduleJSON) > 0 {
			var s models.Schedule
			if err := json.Unmarshal(scheduleJSON, &s); err == nil {
				p.Schedule = &s
			}
		}

		promos = append(promos, p)
	}
	return promos, rows.Err()
}

func (r *PromotionRepo) Create(ctx context.Context, p models.Promotion) error {
	rulesJSON, err := json.Marshal(p.Rules)
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}
	var scheduleJSON []byte
	if p.Schedule != nil {
		if scheduleJSON, err = json.Marshal(p.Schedule); err != nil {
			return fmt.Errorf("marshal schedule: %w", err)
		}
	}

	query := `
		INSERT INTO promotions
		(id, name, status, start_at, end_at, stackable, priority,
		 rules, schedule, max_discount, budget_cap, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW(),NOW())
	`
	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Status, p.StartAt, p.EndAt, p.Stackable, p.Priority,
		rulesJSON, scheduleJSON, p.MaxDiscount, p.BudgetCap,
	)
	if err != nil {
		return fmt.Errorf("insert promotion: %w", err)
	}
	return nil
}

// UpdateStatus transitions a promotion's lifecycle status. Returns
// sql.ErrNoRows when the promotion does not exist.
func (r *PromotionRepo) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE promotions SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("update promotion status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
