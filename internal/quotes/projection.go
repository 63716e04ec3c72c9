package quotes

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sternbridge/bullion-quotes/internal/models"
)

// Role-shaped projections. Field hiding is enforced here, once, by shape:
// a view struct that lacks a field cannot leak it, no matter what the
// presentation layer does with the value. Monetary figures are rounded to
// two places at this boundary only.

// ItemView is one line as shown to any viewer. Percent is nil when the
// viewer is not allowed to see the quoted rate.
type ItemView struct {
	Name        string           `json:"name"`
	MetalType   string           `json:"metal_type"`
	WeightGrams decimal.Decimal  `json:"weight_grams"`
	WeightLabel string           `json:"weight_label,omitempty"`
	Quantity    int              `json:"quantity"`
	Percent     *decimal.Decimal `json:"percent,omitempty"`
	LineValue   decimal.Decimal  `json:"line_value"`
}

// CustomerView is what an authenticated customer sees: no PII echo, no CRM
// id, and the quoted rate only when the display flag is set.
type CustomerView struct {
	QuoteNumber string          `json:"quote_number"`
	Status      string          `json:"status"`
	Items       []ItemView      `json:"items"`
	Total       decimal.Decimal `json:"total"`
	PricedAt    time.Time       `json:"priced_at"`
}

// StaffEditView is the in-person projection: full pricing detail but no
// customer PII on screen while the customer is watching.
type StaffEditView struct {
	QuoteNumber    string          `json:"quote_number"`
	ShortID        string          `json:"short_id"`
	Status         string          `json:"status"`
	ShowQuotedRate bool            `json:"show_quoted_rate"`
	GoldPerGram    decimal.Decimal `json:"gold_per_gram"`
	SilverPerGram  decimal.Decimal `json:"silver_per_gram"`
	GoldPerOunce   decimal.Decimal `json:"gold_per_ounce"`
	SilverPerOunce decimal.Decimal `json:"silver_per_ounce"`
	PricedAt       time.Time       `json:"priced_at"`
	Items          []ItemView      `json:"items"`
	Total          decimal.Decimal `json:"total"`
}

// AdminView adds the customer details and the internal CRM reference on top
// of everything staff-edit shows.
type AdminView struct {
	StaffEditView
	CustomerFirstName string    `json:"customer_first_name"`
	CustomerSurname   string    `json:"customer_surname"`
	CustomerMobile    string    `json:"customer_mobile"`
	CustomerEmail     string    `json:"customer_email"`
	ExternalCRMID     string    `json:"external_crm_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func projectItems(q *models.Quote, withPercent bool) []ItemView {
	views := make([]ItemView, 0, len(q.Items))
	for _, item := range q.Items {
		v := ItemView{
			Name:        item.Name,
			MetalType:   item.MetalType,
			WeightGrams: item.WeightGrams,
			WeightLabel: item.WeightLabel,
			Quantity:    item.Quantity,
			LineValue:   ItemValue(item, q.SpotGoldGram, q.SpotSilverGram).Round(2),
		}
		if withPercent {
			p := item.Percent
			v.Percent = &p
		}
		views = append(views, v)
	}
	return views
}

// ProjectCustomer shapes q for the customer-facing page.
func ProjectCustomer(q *models.Quote) CustomerView {
	return CustomerView{
		QuoteNumber: q.QuoteNumber,
		Status:      q.Status,
		Items:       projectItems(q, q.ShowQuotedRate),
		Total:       q.Total.Round(2),
		PricedAt:    q.SpotPricesUpdated,
	}
}

// ProjectStaffEdit shapes q for the in-person staff view.
func ProjectStaffEdit(q *models.Quote) StaffEditView {
	return StaffEditView{
		QuoteNumber:    q.QuoteNumber,
		ShortID:        q.ShortID,
		Status:         q.Status,
		ShowQuotedRate: q.ShowQuotedRate,
		GoldPerGram:    q.SpotGoldGram,
		SilverPerGram:  q.SpotSilverGram,
		GoldPerOunce:   q.SpotGoldOunce,
		SilverPerOunce: q.SpotSilverOunce,
		PricedAt:       q.SpotPricesUpdated,
		Items:          projectItems(q, true),
		Total:          q.Total.Round(2),
	}
}

// ProjectAdmin shapes q for full-admin staff.
func ProjectAdmin(q *models.Quote) AdminView {
	return AdminView{
		StaffEditView:     ProjectStaffEdit(q),
		CustomerFirstName: q.CustomerFirstName,
		CustomerSurname:   q.CustomerSurname,
		CustomerMobile:    q.CustomerMobile,
		CustomerEmail:     q.CustomerEmail,
		ExternalCRMID:     q.ExternalCRMID,
		CreatedAt:         q.CreatedAt,
		UpdatedAt:         q.UpdatedAt,
	}
}

// ProjectForRole picks the staff projection for a session role.
func ProjectForRole(q *models.Quote, role string) any {
	if role == models.RoleAdmin {
		return ProjectAdmin(q)
	}
	return ProjectStaffEdit(q)
}
