package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote statuses. A quote starts active and can only move to expired.
const (
	QuoteStatusActive  = "active"
	QuoteStatusExpired = "expired"
)

// Metal types accepted on a line item.
const (
	MetalGold   = "gold"
	MetalSilver = "silver"
)

// MaxQuoteItems is the most line items a single quote may carry.
const MaxQuoteItems = 8

// Quote is one buy-side quotation for a member of the public.
// The gorm primary key is internal only; ShortID is the public URL token and
// QuoteNumber the human-readable reference (e.g. SBQ-000284).
type Quote struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	ShortID     string `gorm:"size:8;uniqueIndex;not null" json:"short_id"`
	QuoteNumber string `gorm:"size:16;uniqueIndex;not null" json:"quote_number"`

	CustomerFirstName string `json:"customer_first_name"`
	CustomerSurname   string `json:"customer_surname"`
	CustomerMobile    string `json:"customer_mobile"`
	CustomerEmail     string `json:"customer_email"`
	ExternalCRMID     string `json:"external_crm_id"`

	// Spot price snapshot in the operating currency, taken at create or on
	// explicit refresh. Per-gram values are authoritative; per-ounce values
	// are derived at snapshot time for display.
	SpotGoldGram      decimal.Decimal `gorm:"type:decimal(14,6)" json:"spot_gold_gram"`
	SpotSilverGram    decimal.Decimal `gorm:"type:decimal(14,6)" json:"spot_silver_gram"`
	SpotGoldOunce     decimal.Decimal `gorm:"type:decimal(14,6)" json:"spot_gold_ounce"`
	SpotSilverOunce   decimal.Decimal `gorm:"type:decimal(14,6)" json:"spot_silver_ounce"`
	SpotPricesUpdated time.Time       `json:"spot_prices_updated"`

	// Total is the cached sum of item finals; recomputed whenever items or
	// the price snapshot change.
	Total decimal.Decimal `gorm:"type:decimal(14,6)" json:"total"`

	ShowQuotedRate bool   `json:"show_quoted_rate"`
	Status         string `gorm:"size:12;not null;default:active" json:"status"`

	Items []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuoteItem is one priced line owned by a quote. WeightGrams is always the
// resolved gram-equivalent of whatever denomination was picked on entry;
// the label is kept only so the entry form can round-trip the selection.
type QuoteItem struct {
	ID      uint `gorm:"primaryKey" json:"-"`
	QuoteID uint `gorm:"not null;index" json:"-"`

	Name        string          `gorm:"not null" json:"name"`
	MetalType   string          `gorm:"size:12;not null" json:"metal_type"`
	Percent     decimal.Decimal `gorm:"type:decimal(8,4)" json:"percent"`
	WeightGrams decimal.Decimal `gorm:"type:decimal(12,6);not null" json:"weight_grams"`
	WeightLabel string          `gorm:"size:32" json:"weight_label"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
}
