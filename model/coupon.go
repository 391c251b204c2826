package model

import "github.com/shopspring/decimal"

type Coupon struct {
	ID     string          `json:"id"`
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}
