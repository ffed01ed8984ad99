package internal

import "github.com/shopspring/decimal"

// paymentTolerance absorbs rounding noise in the notification rendering.
// The comparison is inclusive: a difference of exactly 0.01 still matches.
var paymentTolerance = decimal.New(1, -2)

func WithinTolerance(paid, expected decimal.Decimal) bool {
	return paid.Sub(expected).Abs().LessThanOrEqual(paymentTolerance)
}
