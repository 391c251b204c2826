package store

import (
	"context"
	"fmt"

	"ecommerce-api/model"
)

// Stats collects the dashboard snapshot: totals, revenue, products per
// category and the latest transactions.
func (s *PostgresStore) Stats(ctx context.Context, latest int) (model.Stats, error) {
	var st model.Stats

	err := s.DB.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM products),
		(SELECT COUNT(*) FROM orders),
		(SELECT COALESCE(SUM(total), 0) FROM orders)`,
	).Scan(&st.Counts.Users, &st.Counts.Products, &st.Counts.Orders, &st.Revenue)
	if err != nil {
		return st, fmt.Errorf("stats counts: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT category, COUNT(*) FROM products GROUP BY category ORDER BY category`)
	if err != nil {
		return st, fmt.Errorf("stats categories: %w", err)
	}
	st.Categories = []model.CategoryCount{}
	for rows.Next() {
		var c model.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			rows.Close()
			return st, err
		}
		st.Categories = append(st.Categories, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return st, err
	}

	rows, err = s.DB.QueryContext(ctx, `SELECT o.id, o.total, o.discount, o.status, COALESCE(SUM(i.quantity), 0)
		FROM orders o LEFT JOIN order_items i ON i.order_id = o.id
		GROUP BY o.id ORDER BY o.created_at DESC LIMIT $1`, latest)
	if err != nil {
		return st, fmt.Errorf("stats transactions: %w", err)
	}
	defer rows.Close()
	st.LatestTransactions = []model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.Amount, &t.Discount, &t.Status, &t.Quantity); err != nil {
			return st, err
		}
		st.LatestTransactions = append(st.LatestTransactions, t)
	}
	return st, rows.Err()
}
