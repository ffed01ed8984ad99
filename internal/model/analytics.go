package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnalyticsResult is recomputed from the order ledger on every request;
// it is never persisted as its own source of truth.
type AnalyticsResult struct {
	TotalRevenue      decimal.Decimal            `json:"totalRevenue"`
	OrderCount        int                        `json:"orderCount"`
	ItemsSold         int                        `json:"itemsSold"`
	UniqueItems       int                        `json:"uniqueItems"`
	ItemBreakdown     map[string]ItemAggregate   `json:"itemBreakdown"`
	OrdersPickedUp    int                        `json:"ordersPickedUp"`
	AverageOrderValue decimal.Decimal            `json:"averageOrderValue"`
	LatestOrderID     string                     `json:"latestOrderID"`
	LatestOrderAt     time.Time                  `json:"latestOrderAt"`
	RevenueByDay      map[string]decimal.Decimal `json:"revenueByDay"`
	RevenueSeries     []RevenuePoint             `json:"revenueSeries"`
}

type ItemAggregate struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type RevenuePoint struct {
	Date       string          `json:"date"`
	Revenue    decimal.Decimal `json:"revenue"`
	Cumulative decimal.Decimal `json:"cumulative"`
}
