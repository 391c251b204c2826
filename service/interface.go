package service

import (
	"context"

	"github.com/shopspring/decimal"

	"ecommerce-api/model"
)

type ServiceInterface interface {
	CreateUser(ctx context.Context, in UserInput) (model.User, bool, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id string) (model.User, error)
	DeleteUser(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, in ProductInput) (model.Product, error)
	UpdateProduct(ctx context.Context, id string, up ProductUpdate) (model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	GetProduct(ctx context.Context, id string) (model.Product, error)
	LatestProducts(ctx context.Context) ([]model.Product, error)
	Categories(ctx context.Context) ([]string, error)
	AdminProducts(ctx context.Context) ([]model.Product, error)
	SearchProducts(ctx context.Context, f model.ProductFilter) (SearchResult, error)

	PlaceOrder(ctx context.Context, in OrderInput) (model.Order, error)
	ProcessOrder(ctx context.Context, id string) (model.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	GetOrder(ctx context.Context, id string) (model.Order, error)
	MyOrders(ctx context.Context, userID string) ([]model.Order, error)
	AllOrders(ctx context.Context) ([]model.Order, error)

	NewCoupon(ctx context.Context, in CouponInput) (model.Coupon, error)
	ApplyDiscount(ctx context.Context, code string) (decimal.Decimal, error)
	ListCoupons(ctx context.Context) ([]model.Coupon, error)
	DeleteCoupon(ctx context.Context, id string) error

	Stats(ctx context.Context) (model.Stats, error)
}
