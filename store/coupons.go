package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ecommerce-api/model"
)

func (s *PostgresStore) CreateCoupon(ctx context.Context, c model.Coupon) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO coupons (id, code, amount) VALUES ($1, $2, $3)`, c.ID, c.Code, c.Amount)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var c model.Coupon
	err := s.DB.QueryRowContext(ctx, `SELECT id, code, amount FROM coupons WHERE code = $1`, code).Scan(&c.ID, &c.Code, &c.Amount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, code, amount FROM coupons ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Coupon{}
	for rows.Next() {
		var c model.Coupon
		if err := rows.Scan(&c.ID, &c.Code, &c.Amount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteCoupon(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM coupons WHERE id=$1`, id)
	return mustAffect(res, err)
}
