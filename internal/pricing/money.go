package pricing

import "github.com/shopspring/decimal"

// Monetary values round to 2 places, weights to 4, both half away from zero.

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func round4(d decimal.Decimal) decimal.Decimal {
	return d.Round(4)
}

func maxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThanOrEqual(b) {
		return a
	}
	return b
}
