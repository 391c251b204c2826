package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Photo     string          `json:"photo"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Category  string          `json:"category"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ProductFilter narrows a product search. Zero values mean "no constraint".
type ProductFilter struct {
	Search   string
	MaxPrice decimal.Decimal
	Category string
	Sort     string // "asc" | "desc" by price
	Page     int
	PerPage  int
}
