package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// CountPriorOrders counts a customer's previously placed orders; the
// engine derives the firstOrder context flag from a zero count.
func (r *OrderRepo) CountPriorOrders(ctx context.Context, customerID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE customer_id = $1`,
		customerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count prior orders: %w", err)
	}
	return count, nil
}
