package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"ecommerce-api/cache"
	"ecommerce-api/model"
	"ecommerce-api/store"
)

type OrderInput struct {
	User            string             `json:"user" validate:"required"`
	ShippingInfo    model.ShippingInfo `json:"shippingInfo"`
	Items           []model.OrderItem  `json:"orderItems" validate:"required,min=1,dive"`
	SubTotal        decimal.Decimal    `json:"subTotal" validate:"gt=0"`
	Tax             decimal.Decimal    `json:"tax" validate:"gte=0"`
	ShippingCharges decimal.Decimal    `json:"shippingCharges" validate:"gte=0"`
	Discount        decimal.Decimal    `json:"discount" validate:"gte=0"`
	Total           decimal.Decimal    `json:"total" validate:"gt=0"`
}

// PlaceOrder stores the order, reduces stock and clears every cached view of
// the ordered products and of the user's orders.
func (s *Service) PlaceOrder(ctx context.Context, in OrderInput) (model.Order, error) {
	in.User = strings.TrimSpace(in.User)
	if err := s.validate.Struct(in); err != nil {
		return model.Order{}, invalid("please enter all fields")
	}

	o := &model.Order{
		ID:              s.newID(),
		User:            in.User,
		ShippingInfo:    in.ShippingInfo,
		Items:           append([]model.OrderItem(nil), in.Items...),
		SubTotal:        in.SubTotal,
		Tax:             in.Tax,
		ShippingCharges: in.ShippingCharges,
		Discount:        in.Discount,
		Total:           in.Total,
		Status:          model.StatusProcessing,
		CreatedAt:       s.now(),
	}
	if err := s.store.CreateOrder(ctx, o); err != nil {
		if errors.Is(err, store.ErrUnknownProduct) || errors.Is(err, store.ErrInsufficientStock) {
			return model.Order{}, invalid("invalid product or insufficient stock")
		}
		return model.Order{}, upstream("create order", err)
	}

	ids := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.ProductID)
	}
	s.invalidator.Invalidate(ctx, cache.Invalidation{
		Product:    true,
		Admin:      true,
		Order:      true,
		UserID:     o.User,
		OrderID:    o.ID,
		ProductIDs: ids,
	})
	return *o, nil
}

// ProcessOrder advances the order status. The user's order list is keyed by
// the user stored on the order, not by anything in the request.
func (s *Service) ProcessOrder(ctx context.Context, id string) (model.Order, error) {
	o, err := s.findOrder(ctx, id)
	if err != nil {
		return model.Order{}, err
	}
	o.Status = o.Status.Next()
	if err := s.store.SaveOrderStatus(ctx, o.ID, o.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Order{}, notFound("order not found")
		}
		return model.Order{}, upstream("save order", err)
	}
	s.invalidator.Invalidate(ctx, cache.Invalidation{Admin: true, Order: true, UserID: o.User, OrderID: o.ID})
	return *o, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	o, err := s.findOrder(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteOrder(ctx, o.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("order not found")
		}
		return upstream("delete order", err)
	}
	s.invalidator.Invalidate(ctx, cache.Invalidation{Admin: true, Order: true, UserID: o.User, OrderID: o.ID})
	return nil
}

func (s *Service) findOrder(ctx context.Context, id string) (*model.Order, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, upstream("load order", err)
	}
	if o == nil {
		return nil, notFound("order not found")
	}
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (model.Order, error) {
	return cache.Fetch(ctx, s.cache, cache.OrderKey(id), func(ctx context.Context) (model.Order, error) {
		o, err := s.findOrder(ctx, id)
		if err != nil {
			return model.Order{}, err
		}
		return *o, nil
	})
}

func (s *Service) MyOrders(ctx context.Context, userID string) ([]model.Order, error) {
	if userID == "" {
		return nil, invalid("user id required")
	}
	return cache.Fetch(ctx, s.cache, cache.MyOrdersKey(userID), func(ctx context.Context) ([]model.Order, error) {
		orders, err := s.store.ListOrdersByUser(ctx, userID)
		if err != nil {
			return nil, upstream("load orders", err)
		}
		return orders, nil
	})
}

func (s *Service) AllOrders(ctx context.Context) ([]model.Order, error) {
	return cache.Fetch(ctx, s.cache, cache.AllOrdersKey, func(ctx context.Context) ([]model.Order, error) {
		orders, err := s.store.ListOrders(ctx)
		if err != nil {
			return nil, upstream("load orders", err)
		}
		return orders, nil
	})
}
