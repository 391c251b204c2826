package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"ecommerce-api/model"
)

const selectOrders = `SELECT o.id, o.user_id, COALESCE(u.name, ''), o.address, o.city, o.state, o.country, o.pin_code,
	o.subtotal, o.tax, o.shipping_charges, o.discount, o.total, o.status, o.created_at
	FROM orders o LEFT JOIN users u ON u.id = o.user_id`

func scanOrder(sc scanner) (model.Order, error) {
	var o model.Order
	err := sc.Scan(
		&o.ID, &o.User, &o.UserName,
		&o.ShippingInfo.Address, &o.ShippingInfo.City, &o.ShippingInfo.State, &o.ShippingInfo.Country, &o.ShippingInfo.PinCode,
		&o.SubTotal, &o.Tax, &o.ShippingCharges, &o.Discount, &o.Total, &o.Status, &o.CreatedAt,
	)
	return o, err
}

// CreateOrder reserves stock and inserts the order with its items atomically.
func (s *PostgresStore) CreateOrder(ctx context.Context, o *model.Order) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = reserveStock(ctx, tx, o.Items); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, address, city, state, country, pin_code, subtotal, tax, shipping_charges, discount, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		o.ID, o.User, o.ShippingInfo.Address, o.ShippingInfo.City, o.ShippingInfo.State, o.ShippingInfo.Country, o.ShippingInfo.PinCode,
		o.SubTotal, o.Tax, o.ShippingCharges, o.Discount, o.Total, o.Status, o.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, name, photo, price, quantity) VALUES ($1, $2, $3, $4, $5, $6)`,
			o.ID, it.ProductID, it.Name, it.Photo, it.Price, it.Quantity,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	o, err := scanOrder(s.DB.QueryRowContext(ctx, selectOrders+` WHERE o.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	orders := []model.Order{o}
	if err := s.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (s *PostgresStore) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.queryOrders(ctx, selectOrders+` ORDER BY o.created_at DESC`)
}

func (s *PostgresStore) ListOrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return s.queryOrders(ctx, selectOrders+` WHERE o.user_id = $1 ORDER BY o.created_at DESC`, userID)
}

func (s *PostgresStore) SaveOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE orders SET status=$1 WHERE id=$2`, status, id)
	return mustAffect(res, err)
}

// DeleteOrder removes the order; its items go with it (ON DELETE CASCADE).
func (s *PostgresStore) DeleteOrder(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM orders WHERE id=$1`, id)
	return mustAffect(res, err)
}

func (s *PostgresStore) queryOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	out := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.loadItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadItems fills Items of every order with a single query.
func (s *PostgresStore) loadItems(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	idx := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		idx[o.ID] = i
		orders[i].Items = []model.OrderItem{}
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT order_id, product_id, name, photo, price, quantity FROM order_items WHERE order_id = ANY($1) ORDER BY id`,
		pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			orderID string
			it      model.OrderItem
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.Name, &it.Photo, &it.Price, &it.Quantity); err != nil {
			return err
		}
		if i, ok := idx[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return rows.Err()
}
