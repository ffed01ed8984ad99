package internal

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cornell-dti/curaise-sub000/internal/model"
)

const (
	analyticsWindowDays = 30
	dateLayout          = "2006-01-02"
)

// Aggregate recomputes the fundraiser analytics from a ledger snapshot in
// a single pass. It is pure: the same snapshot always yields the same
// result, which makes full recomputation the refresh strategy.
func Aggregate(orders []model.Order) model.AnalyticsResult {
	res := model.AnalyticsResult{
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		ItemBreakdown:     make(map[string]model.ItemAggregate),
		RevenueByDay:      make(map[string]decimal.Decimal),
	}

	var latest time.Time
	for _, o := range orders {
		orderTotal := decimal.Zero
		for _, l := range o.Lines {
			lineRevenue := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
			orderTotal = orderTotal.Add(lineRevenue)

			res.ItemsSold += l.Quantity
			agg := res.ItemBreakdown[l.ItemID]
			agg.Name = l.Name
			agg.Quantity += l.Quantity
			agg.Revenue = agg.Revenue.Add(lineRevenue)
			res.ItemBreakdown[l.ItemID] = agg
		}

		res.TotalRevenue = res.TotalRevenue.Add(orderTotal)

		day := o.CreatedAt.Format(dateLayout)
		res.RevenueByDay[day] = res.RevenueByDay[day].Add(orderTotal)

		if o.PickedUp {
			res.OrdersPickedUp++
		}

		// strictly-after, so ties keep the earliest-listed order
		if o.CreatedAt.After(latest) {
			latest = o.CreatedAt
			res.LatestOrderID = o.ID
			res.LatestOrderAt = o.CreatedAt
		}
	}

	res.OrderCount = len(orders)
	res.UniqueItems = len(res.ItemBreakdown)
	if len(orders) > 0 {
		res.AverageOrderValue = res.TotalRevenue.DivRound(decimal.NewFromInt(int64(len(orders))), 2)
	}
	return res
}

// RevenueSeries expands the day buckets into a gap-free window ending at
// end, oldest day first, with a running cumulative total.
func RevenueSeries(byDay map[string]decimal.Decimal, end time.Time, days int) []model.RevenuePoint {
	if days <= 0 {
		days = analyticsWindowDays
	}

	points := make([]model.RevenuePoint, 0, days)
	cumulative := decimal.Zero
	start := end.AddDate(0, 0, -(days - 1))

	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format(dateLayout)
		revenue, ok := byDay[day]
		if !ok {
			revenue = decimal.Zero
		}
		cumulative = cumulative.Add(revenue)
		points = append(points, model.RevenuePoint{Date: day, Revenue: revenue, Cumulative: cumulative})
	}
	return points
}
