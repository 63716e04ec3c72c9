package spot

import "github.com/shopspring/decimal"

// GramsPerTroyOunce is the fixed conversion constant used everywhere a
// per-ounce figure is shown or a denomination resolves through ounces.
var GramsPerTroyOunce = decimal.RequireFromString("31.1035")

// UnitGram is the free-entry picker label: the typed figure is already a
// gram weight and passes through unresolved.
const UnitGram = "g"

// denominations maps the entry-form weight picker labels to their
// gram-equivalent. For every label except UnitGram the table is
// authoritative: the stored item weight is the resolved constant, whatever
// figure the form submitted alongside it.
var denominations = map[string]decimal.Decimal{
	UnitGram:         decimal.NewFromInt(1),
	"1 kg":           decimal.NewFromInt(1000),
	"1 oz":           GramsPerTroyOunce,
	"1/2 oz":         GramsPerTroyOunce.Div(decimal.NewFromInt(2)),
	"1/4 oz":         GramsPerTroyOunce.Div(decimal.NewFromInt(4)),
	"1/10 oz":        GramsPerTroyOunce.Div(decimal.NewFromInt(10)),
	"sovereign":      decimal.RequireFromString("7.98805"),
	"half sovereign": decimal.RequireFromString("3.994025"),
}

// ResolveWeight returns the gram-equivalent for a denomination label.
// It is a pure lookup: the same label always resolves to the same constant.
func ResolveWeight(label string) (decimal.Decimal, bool) {
	w, ok := denominations[label]
	return w, ok
}

// DenominationLabels returns the known picker labels, for form rendering.
func DenominationLabels() []string {
	labels := make([]string, 0, len(denominations))
	for l := range denominations {
		labels = append(labels, l)
	}
	return labels
}
