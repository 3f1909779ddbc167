package scanner

import "product-scout/internal/domain"

const (
	MarketplaceFeeRate = 0.1325
	PaymentFeeRate     = 0.0349
	ShippingCost       = 3.00
)

// Profitability returns the expected profit and margin percent for selling
// at sell after buying at supplier.
func Profitability(sell, supplier float64) (profit, margin float64) {
	fees := sell*MarketplaceFeeRate + sell*PaymentFeeRate
	profit = sell - supplier - fees - ShippingCost
	if sell > 0 {
		margin = profit / sell * 100
	}
	return profit, margin
}

// ThresholdPolicy decides whether a finding counts as profitable.
type ThresholdPolicy string

const (
	// PolicyGated requires both minimum profit and minimum margin.
	PolicyGated ThresholdPolicy = "gated"
	// PolicyAlways marks every finding as meeting the threshold.
	PolicyAlways ThresholdPolicy = "always"
)

type Threshold struct {
	Policy    ThresholdPolicy
	MinProfit float64
	MinMargin float64
}

func DefaultThreshold() Threshold {
	return Threshold{Policy: PolicyGated, MinProfit: 5, MinMargin: 20}
}

func (t Threshold) Meets(f domain.Finding) bool {
	if t.Policy == PolicyAlways {
		return true
	}
	return f.Profit >= t.MinProfit && f.Margin >= t.MinMargin
}
