package risk

import "github.com/shopspring/decimal"

// RR is the reward-to-risk ratio of a planned trade: the take-profit distance
// over the stop distance, both measured from entry. Zero when the stop sits
// at entry.
func RR(entry, stop, takeProfit decimal.Decimal) decimal.Decimal {
	risk := entry.Sub(stop).Abs()
	if risk.IsZero() {
		return decimal.Zero
	}
	reward := takeProfit.Sub(entry).Abs()
	return reward.Div(risk)
}
