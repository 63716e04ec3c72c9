package spot

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestResolveWeightIsPure(t *testing.T) {
	// Same label, same constant, regardless of call order.
	for i := 0; i < 3; i++ {
		w, ok := ResolveWeight("1 oz")
		if !ok {
			t.Fatal("1 oz should resolve")
		}
		if !w.Equal(decimal.RequireFromString("31.1035")) {
			t.Fatalf("1 oz = %s, want 31.1035", w)
		}
	}
}

func TestResolveWeightKnownDenominations(t *testing.T) {
	cases := map[string]string{
		"g":              "1",
		"1 kg":           "1000",
		"1/2 oz":         "15.55175",
		"1/4 oz":         "7.7758750",
		"1/10 oz":        "3.11035",
		"sovereign":      "7.98805",
		"half sovereign": "3.994025",
	}
	for label, want := range cases {
		w, ok := ResolveWeight(label)
		if !ok {
			t.Fatalf("%q should resolve", label)
		}
		if !w.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("%q = %s, want %s", label, w, want)
		}
	}
}

func TestResolveWeightUnknownLabel(t *testing.T) {
	if _, ok := ResolveWeight("1 bar"); ok {
		t.Fatal("unknown label should not resolve")
	}
}

func TestDenominationLabelsCoverTable(t *testing.T) {
	labels := DenominationLabels()
	if len(labels) != 8 {
		t.Fatalf("expected 8 labels, got %d: %v", len(labels), labels)
	}
	for _, l := range labels {
		if _, ok := ResolveWeight(l); !ok {
			t.Fatalf("label %q from DenominationLabels does not resolve", l)
		}
	}
}
