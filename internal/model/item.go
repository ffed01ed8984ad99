package model

import "github.com/shopspring/decimal"

type Item struct {
	ID           string          `json:"id"`
	FundraiserID string          `json:"fundraiserID"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	OnSale       bool            `json:"onSale"`
}
