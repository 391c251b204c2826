package store

import (
	"context"

	"ecommerce-api/model"
)

// Store is the persistent store. Single-record lookups return (nil, nil) when
// the record does not exist; mutations of a missing record return
// sql.ErrNoRows.
type Store interface {
	CreateUser(ctx context.Context, u model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, p model.Product) error
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	LatestProducts(ctx context.Context, limit int) ([]model.Product, error)
	Categories(ctx context.Context) ([]string, error)
	SearchProducts(ctx context.Context, f model.ProductFilter) ([]model.Product, int, error)
	SaveProduct(ctx context.Context, p model.Product) error
	DeleteProduct(ctx context.Context, id string) error

	// CreateOrder stores the order and reduces stock for every item in one
	// transaction. It fails with ErrUnknownProduct or ErrInsufficientStock
	// without changing anything.
	CreateOrder(ctx context.Context, o *model.Order) error
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]model.Order, error)
	SaveOrderStatus(ctx context.Context, id string, status model.OrderStatus) error
	DeleteOrder(ctx context.Context, id string) error

	CreateCoupon(ctx context.Context, c model.Coupon) error
	GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error)
	ListCoupons(ctx context.Context) ([]model.Coupon, error)
	DeleteCoupon(ctx context.Context, id string) error

	Stats(ctx context.Context, latest int) (model.Stats, error)

	Ping(ctx context.Context) error
	Close() error
}
