package quotes

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sternbridge/bullion-quotes/internal/models"
	"github.com/sternbridge/bullion-quotes/internal/spot"
	"github.com/sternbridge/bullion-quotes/internal/validation"
)

// Service owns the quote aggregate: creation, reads, wholesale item
// replacement, price refresh, display flag, expiry, and the customer
// credential gate. Staff authentication is the caller's concern.
type Service struct {
	DB   *gorm.DB
	Spot *spot.Gateway

	// StaffAccessCode grants customer-view access without a customer
	// credential match. Empty disables the override.
	StaffAccessCode string
}

func NewService(db *gorm.DB, gw *spot.Gateway, staffAccessCode string) *Service {
	return &Service{DB: db, Spot: gw, StaffAccessCode: staffAccessCode}
}

// CustomerInput carries the customer detail fields. Name fields are
// optional; at least one of Mobile or Email must be present, since the
// customer link is opened with one of them.
type CustomerInput struct {
	FirstName     string `json:"first_name"`
	Surname       string `json:"surname"`
	Mobile        string `json:"mobile"`
	Email         string `json:"email"`
	ExternalCRMID string `json:"external_crm_id"`
}

// ItemInput is one submitted line. WeightLabel is the picker choice; for a
// fixed denomination the server resolves it to the canonical gram weight and
// ignores the submitted WeightGrams, which only counts for free gram entry.
type ItemInput struct {
	Name        string          `json:"name"`
	MetalType   string          `json:"metal_type"`
	Percent     decimal.Decimal `json:"percent"`
	WeightGrams decimal.Decimal `json:"weight_grams"`
	WeightLabel string          `json:"weight_label"`
	Quantity    int             `json:"quantity"`
}

// buildItems filters out blank rows (an empty name discards the row
// silently), applies the quantity default, and validates what remains.
func buildItems(inputs []ItemInput) ([]models.QuoteItem, error) {
	items := make([]models.QuoteItem, 0, len(inputs))
	v := validation.Violations{}
	for _, in := range inputs {
		if strings.TrimSpace(in.Name) == "" {
			continue
		}
		qty := in.Quantity
		if qty == 0 {
			qty = 1
		}
		validation.OneOf("metal_type", in.MetalType, []string{models.MetalGold, models.MetalSilver}, v)
		validation.PositiveInt("quantity", qty, v)
		label := strings.TrimSpace(in.WeightLabel)
		weight := in.WeightGrams
		if label != "" && label != spot.UnitGram {
			// The denomination table is authoritative; a submitted weight
			// that disagrees with the label is discarded.
			resolved, ok := spot.ResolveWeight(label)
			if !ok {
				v["weight_label"] = "invalid_value"
			} else {
				weight = resolved
			}
		}
		if !weight.IsPositive() {
			v["weight_grams"] = "must_be_positive"
		}
		items = append(items, models.QuoteItem{
			Name:        strings.TrimSpace(in.Name),
			MetalType:   in.MetalType,
			Percent:     in.Percent,
			WeightGrams: weight,
			WeightLabel: label,
			Quantity:    qty,
		})
	}
	if len(items) > models.MaxQuoteItems {
		v["items"] = "too_many_items"
	}
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	return items, nil
}

// validateCustomer enforces the contact rule: without a stored mobile or
// email there is no credential the customer link could ever be opened with.
func validateCustomer(c CustomerInput) error {
	v := validation.Violations{}
	validation.AnyRequired("contact", []string{c.Mobile, c.Email}, v)
	if !v.Empty() {
		return &ValidationError{Violations: v}
	}
	return nil
}

func applyCustomer(q *models.Quote, c CustomerInput) {
	q.CustomerFirstName = strings.TrimSpace(c.FirstName)
	q.CustomerSurname = strings.TrimSpace(c.Surname)
	q.CustomerMobile = c.Mobile
	q.CustomerEmail = c.Email
	q.ExternalCRMID = strings.TrimSpace(c.ExternalCRMID)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}

// Create persists a new active quote: both identifiers are allocated inside
// the insert transaction, so a rollback burns neither the sequence value nor
// a short id. Prices are the snapshot the quote was valued at.
func (s *Service) Create(ctx context.Context, cust CustomerInput, inputs []ItemInput, prices spot.GramPrices) (*models.Quote, error) {
	if err := validateCustomer(cust); err != nil {
		return nil, err
	}
	items, err := buildItems(inputs)
	if err != nil {
		return nil, err
	}
	ounces := spot.ToOuncePrices(prices)

	var q models.Quote
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := nextQuoteNumber(tx)
		if err != nil {
			return err
		}
		shortID, err := newShortID(shortIDTaken(tx))
		if err != nil {
			return err
		}
		q = models.Quote{
			ShortID:           shortID,
			QuoteNumber:       number,
			SpotGoldGram:      prices.Gold,
			SpotSilverGram:    prices.Silver,
			SpotGoldOunce:     ounces.Gold,
			SpotSilverOunce:   ounces.Silver,
			SpotPricesUpdated: time.Now(),
			Status:            models.QuoteStatusActive,
			Total:             ComputeTotal(items, prices.Gold, prices.Silver),
		}
		applyCustomer(&q, cust)
		if err := tx.Create(&q).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrConflict
			}
			return err
		}
		if len(items) > 0 {
			for i := range items {
				items[i].QuoteID = q.ID
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
			q.Items = items
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// GetByID reads the aggregate by internal id; a miss is (nil, nil).
func (s *Service) GetByID(ctx context.Context, id uint) (*models.Quote, error) {
	return s.get(ctx, "id = ?", id)
}

// GetByShortID reads the aggregate by its public short id; a miss is
// (nil, nil), never an error.
func (s *Service) GetByShortID(ctx context.Context, shortID string) (*models.Quote, error) {
	return s.get(ctx, "short_id = ?", shortID)
}

func (s *Service) get(ctx context.Context, cond string, arg any) (*models.Quote, error) {
	var q models.Quote
	err := s.DB.WithContext(ctx).Preload("Items").First(&q, cond, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

// List returns quotes for the staff dashboard, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.Quote, int64, error) {
	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Quote{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var qs []models.Quote
	err := s.DB.WithContext(ctx).Preload("Items").
		Order("id desc").Limit(limit).Offset(offset).Find(&qs).Error
	if err != nil {
		return nil, 0, err
	}
	return qs, total, nil
}

// RefreshPrices re-fetches live spot prices and overwrites the snapshot and
// cached total; items are untouched. Upstream failure propagates to the
// caller, the stale snapshot stays as it was.
func (s *Service) RefreshPrices(ctx context.Context, id uint) (*models.Quote, error) {
	prices, err := s.Spot.FetchGramPrices(ctx)
	if err != nil {
		return nil, err
	}
	ounces := spot.ToOuncePrices(prices)

	var q models.Quote
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&q, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		q.SpotGoldGram = prices.Gold
		q.SpotSilverGram = prices.Silver
		q.SpotGoldOunce = ounces.Gold
		q.SpotSilverOunce = ounces.Silver
		q.SpotPricesUpdated = time.Now()
		q.Total = ComputeTotal(q.Items, prices.Gold, prices.Silver)
		// Items are already persisted; only the quote row changes here.
		return tx.Omit(clause.Associations).Save(&q).Error
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ReplaceItems swaps the full item set in one transaction: delete all, then
// reinsert, then refresh the cached total and parent timestamp. Edits are
// never incremental.
func (s *Service) ReplaceItems(ctx context.Context, id uint, inputs []ItemInput) (*models.Quote, error) {
	return s.update(ctx, id, nil, inputs)
}

// UpdateCustomerAndItems applies a combined detail-and-items edit
// atomically; a failure in either half rolls back both.
func (s *Service) UpdateCustomerAndItems(ctx context.Context, id uint, cust CustomerInput, inputs []ItemInput) (*models.Quote, error) {
	return s.update(ctx, id, &cust, inputs)
}

func (s *Service) update(ctx context.Context, id uint, cust *CustomerInput, inputs []ItemInput) (*models.Quote, error) {
	if cust != nil {
		if err := validateCustomer(*cust); err != nil {
			return nil, err
		}
	}
	items, err := buildItems(inputs)
	if err != nil {
		return nil, err
	}
	var q models.Quote
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&q, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if cust != nil {
			applyCustomer(&q, *cust)
		}
		if err := tx.Where("quote_id = ?", q.ID).Delete(&models.QuoteItem{}).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			for i := range items {
				items[i].QuoteID = q.ID
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		q.Total = ComputeTotal(items, q.SpotGoldGram, q.SpotSilverGram)
		if err := tx.Omit(clause.Associations).Save(&q).Error; err != nil {
			return err
		}
		q.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// SetShowQuotedRate flips whether the customer view exposes the quoted
// percent alongside the final price.
func (s *Service) SetShowQuotedRate(ctx context.Context, id uint, show bool) error {
	res := s.DB.WithContext(ctx).Model(&models.Quote{}).Where("id = ?", id).Update("show_quoted_rate", show)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Expire moves an active quote to expired. There is no way back; expiring
// an already-expired quote is a no-op.
func (s *Service) Expire(ctx context.Context, id uint) error {
	var q models.Quote
	if err := s.DB.WithContext(ctx).Select("id", "status").First(&q, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if q.Status == models.QuoteStatusExpired {
		return nil
	}
	return s.DB.WithContext(ctx).Model(&models.Quote{}).
		Where("id = ? AND status = ?", id, models.QuoteStatusActive).
		Update("status", models.QuoteStatusExpired).Error
}

// ExpireStale expires every active quote created before cutoff and returns
// the number of rows affected. Safe to re-run: already-expired quotes never
// match.
func (s *Service) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.Quote{}).
		Where("status = ? AND created_at < ?", models.QuoteStatusActive, cutoff).
		Update("status", models.QuoteStatusExpired)
	return res.RowsAffected, res.Error
}

// ValidateCustomerCredential grants customer access when the supplied value
// case-exactly matches the stored mobile or email, or equals the staff
// access code. Empty stored fields never match, so a quote without contact
// details cannot be opened by guessing blanks.
func (s *Service) ValidateCustomerCredential(q *models.Quote, supplied string) bool {
	if q == nil || supplied == "" {
		return false
	}
	if q.CustomerMobile != "" && supplied == q.CustomerMobile {
		return true
	}
	if q.CustomerEmail != "" && supplied == q.CustomerEmail {
		return true
	}
	return s.StaffAccessCode != "" && supplied == s.StaffAccessCode
}
