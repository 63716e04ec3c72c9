package quotes

import (
	"github.com/shopspring/decimal"

	"github.com/sternbridge/bullion-quotes/internal/models"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// gramPriceFor returns the snapshot gram price for a metal type. Unknown
// metals price at zero; input validation keeps them out of stored data, so
// hitting zero here means a data-entry error upstream, not a failure.
func gramPriceFor(metal string, gold, silver decimal.Decimal) decimal.Decimal {
	switch metal {
	case models.MetalGold:
		return gold
	case models.MetalSilver:
		return silver
	}
	return decimal.Zero
}

// ItemValue computes the final quoted value for one line:
// weight × quantity × gram price, reduced by the item percent and clamped
// at zero so a percent over 100 can never quote a negative amount.
func ItemValue(item models.QuoteItem, gold, silver decimal.Decimal) decimal.Decimal {
	base := item.WeightGrams.
		Mul(decimal.NewFromInt(int64(item.Quantity))).
		Mul(gramPriceFor(item.MetalType, gold, silver))
	final := base.Mul(one.Sub(item.Percent.Div(hundred)))
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}

// ComputeTotal sums the item finals. Full precision is kept internally;
// rounding to the penny happens only when a projection is built.
func ComputeTotal(items []models.QuoteItem, gold, silver decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(ItemValue(item, gold, silver))
	}
	return total
}
