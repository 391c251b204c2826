package model

import "github.com/shopspring/decimal"

type Counts struct {
	Users    int64 `json:"users"`
	Products int64 `json:"products"`
	Orders   int64 `json:"orders"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type Transaction struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Discount decimal.Decimal `json:"discount"`
	Quantity int             `json:"quantity"`
	Status   OrderStatus     `json:"status"`
}

// Stats is the admin dashboard snapshot.
type Stats struct {
	Counts             Counts          `json:"counts"`
	Revenue            decimal.Decimal `json:"revenue"`
	Categories         []CategoryCount `json:"categories"`
	LatestTransactions []Transaction   `json:"latestTransactions"`
}
