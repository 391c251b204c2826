package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"ecommerce-api/model"
)

// ErrInsufficientStock returned when requested qty exceeds available stock.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrUnknownProduct returned when an order references a product that does not exist.
var ErrUnknownProduct = errors.New("unknown product")

type lockedProduct struct {
	name, photo string
	price       decimal.Decimal
	stock       int
}

// reserveStock locks the product row of every item, checks availability and
// takes the ordered quantity off the stock. Item name, photo and price are
// filled from the product when the caller left them empty.
//
// Rows are locked in product id order whatever the item order, so two orders
// over the same products cannot deadlock.
func reserveStock(ctx context.Context, tx *sql.Tx, items []model.OrderItem) error {
	need := map[string]int{}
	for _, it := range items {
		need[it.ProductID] += it.Quantity
	}
	ids := make([]string, 0, len(need))
	for id := range need {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	locked := make(map[string]lockedProduct, len(ids))
	for _, id := range ids {
		var p lockedProduct
		err := tx.QueryRowContext(ctx,
			`SELECT name, photo, price, stock FROM products WHERE id = $1 FOR UPDATE`, id,
		).Scan(&p.name, &p.photo, &p.price, &p.stock)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("product %s: %w", id, ErrUnknownProduct)
		}
		if err != nil {
			return err
		}
		if p.stock < need[id] {
			return fmt.Errorf("product %s: %w", id, ErrInsufficientStock)
		}
		locked[id] = p
	}

	for i := range items {
		it, p := &items[i], locked[items[i].ProductID]
		if it.Name == "" {
			it.Name = p.name
		}
		if it.Photo == "" {
			it.Photo = p.photo
		}
		if it.Price.IsZero() {
			it.Price = p.price
		}
	}

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $1, updated_at = now() WHERE id = $2`, need[id], id,
		); err != nil {
			return err
		}
	}
	return nil
}
