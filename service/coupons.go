package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"ecommerce-api/model"
	"ecommerce-api/store"
)

type CouponInput struct {
	Code   string          `json:"coupon" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}

func (s *Service) NewCoupon(ctx context.Context, in CouponInput) (model.Coupon, error) {
	in.Code = strings.TrimSpace(in.Code)
	if err := s.validate.Struct(in); err != nil {
		return model.Coupon{}, invalid("please enter both coupon and amount")
	}
	c := model.Coupon{ID: s.newID(), Code: in.Code, Amount: in.Amount}
	if err := s.store.CreateCoupon(ctx, c); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return model.Coupon{}, invalid("coupon already exists")
		}
		return model.Coupon{}, upstream("create coupon", err)
	}
	return c, nil
}

// ApplyDiscount returns the amount a coupon code takes off an order.
func (s *Service) ApplyDiscount(ctx context.Context, code string) (decimal.Decimal, error) {
	if code == "" {
		return decimal.Zero, invalid("coupon code required")
	}
	c, err := s.store.GetCouponByCode(ctx, code)
	if err != nil {
		return decimal.Zero, upstream("load coupon", err)
	}
	if c == nil {
		return decimal.Zero, notFound("invalid coupon code")
	}
	return c.Amount, nil
}

func (s *Service) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	cs, err := s.store.ListCoupons(ctx)
	if err != nil {
		return nil, upstream("load coupons", err)
	}
	return cs, nil
}

func (s *Service) DeleteCoupon(ctx context.Context, id string) error {
	if err := s.store.DeleteCoupon(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("invalid coupon id")
		}
		return upstream("delete coupon", err)
	}
	return nil
}
