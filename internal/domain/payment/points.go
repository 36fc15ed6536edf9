package payment

import (
	"github.com/shopspring/decimal"
)

// PointsPolicy converts a paid amount into points
type PointsPolicy struct {
	// Rate is the VND amount worth one point
	Rate int64
}

// NewPointsPolicy creates a policy; a non-positive rate falls back to 1000 VND per point
func NewPointsPolicy(rate int64) PointsPolicy {
	if rate <= 0 {
		rate = 1000
	}
	return PointsPolicy{Rate: rate}
}

// PointsFor returns floor(amount / rate)
func (p PointsPolicy) PointsFor(amount int64) int64 {
	if amount <= 0 || p.Rate <= 0 {
		return 0
	}
	return decimal.NewFromInt(amount).
		Div(decimal.NewFromInt(p.Rate)).
		Floor().
		IntPart()
}

// PointsForPurchase returns the promotion's grant when one applies, otherwise the rate conversion
func (p PointsPolicy) PointsForPurchase(amount int64, promo *Promotion) int64 {
	if promo != nil {
		return promo.Points
	}
	return p.PointsFor(amount)
}
