package quotes

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sternbridge/bullion-quotes/internal/models"
)

func sampleQuote() *models.Quote {
	return &models.Quote{
		ShortID:           "a1b2c3d4",
		QuoteNumber:       "SBQ-000284",
		CustomerFirstName: "Ada",
		CustomerSurname:   "Byron",
		CustomerMobile:    "07700900123",
		CustomerEmail:     "ada@example.com",
		ExternalCRMID:     "CRM-42",
		SpotGoldGram:      decimal.RequireFromString("115.00"),
		SpotSilverGram:    decimal.RequireFromString("1.40"),
		Status:            models.QuoteStatusActive,
		Items: []models.QuoteItem{
			{Name: "Krugerrand", MetalType: models.MetalGold, WeightGrams: decimal.RequireFromString("31.1035"), Quantity: 1, Percent: decimal.RequireFromString("10")},
		},
		Total: decimal.RequireFromString("3219.21225"),
	}
}

func TestCustomerViewNeverContainsPII(t *testing.T) {
	for _, status := range []string{models.QuoteStatusActive, models.QuoteStatusExpired} {
		q := sampleQuote()
		q.Status = status
		body, err := json.Marshal(ProjectCustomer(q))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		for _, leaked := range []string{"07700900123", "ada@example.com", "Byron", "CRM-42", "mobile", "email", "surname", "crm"} {
			if strings.Contains(string(body), leaked) {
				t.Fatalf("customer view leaks %q: %s", leaked, body)
			}
		}
	}
}

func TestCustomerViewHidesPercentUnlessFlagSet(t *testing.T) {
	q := sampleQuote()
	view := ProjectCustomer(q)
	if view.Items[0].Percent != nil {
		t.Fatal("percent visible without display flag")
	}
	q.ShowQuotedRate = true
	view = ProjectCustomer(q)
	if view.Items[0].Percent == nil || !view.Items[0].Percent.Equal(decimal.RequireFromString("10")) {
		t.Fatal("percent hidden despite display flag")
	}
}

func TestCustomerViewRoundsMoney(t *testing.T) {
	view := ProjectCustomer(sampleQuote())
	if view.Total.String() != "3219.21" {
		t.Fatalf("total = %s, want 3219.21", view.Total)
	}
	if view.Items[0].LineValue.String() != "3219.21" {
		t.Fatalf("line value = %s, want 3219.21", view.Items[0].LineValue)
	}
}

func TestStaffEditViewShowsRatesButNoPII(t *testing.T) {
	q := sampleQuote()
	view := ProjectStaffEdit(q)
	if view.Items[0].Percent == nil {
		t.Fatal("staff edit view must show the quoted percent")
	}
	if !view.GoldPerGram.Equal(q.SpotGoldGram) {
		t.Fatal("staff edit view must show the price snapshot")
	}
	body, _ := json.Marshal(view)
	for _, leaked := range []string{"07700900123", "ada@example.com", "Byron", "CRM-42"} {
		if strings.Contains(string(body), leaked) {
			t.Fatalf("staff edit view leaks %q: %s", leaked, body)
		}
	}
}

func TestAdminViewShowsEverything(t *testing.T) {
	view := ProjectAdmin(sampleQuote())
	if view.CustomerMobile != "07700900123" || view.ExternalCRMID != "CRM-42" {
		t.Fatalf("admin view missing fields: %#v", view)
	}
	if view.Items[0].Percent == nil {
		t.Fatal("admin view must show the quoted percent")
	}
}

func TestProjectForRole(t *testing.T) {
	q := sampleQuote()
	if _, ok := ProjectForRole(q, models.RoleAdmin).(AdminView); !ok {
		t.Fatal("admin role should get AdminView")
	}
	if _, ok := ProjectForRole(q, models.RoleStaff).(StaffEditView); !ok {
		t.Fatal("staff role should get StaffEditView")
	}
}
