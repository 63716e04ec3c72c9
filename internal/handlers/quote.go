package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/sternbridge/bullion-quotes/internal/auth"
	"github.com/sternbridge/bullion-quotes/internal/httpx"
	"github.com/sternbridge/bullion-quotes/internal/models"
	"github.com/sternbridge/bullion-quotes/internal/quotes"
	"github.com/sternbridge/bullion-quotes/internal/spot"
	"github.com/sternbridge/bullion-quotes/internal/validation"
)

// QuoteHandler serves the staff dashboard API. Every route here sits behind
// auth.RequireStaff; the handler only decides which projection the session
// role earns. Quotes are addressed by short id so the internal primary key
// never appears on the wire.
type QuoteHandler struct {
	Svc *quotes.Service
}

func NewQuoteHandler(svc *quotes.Service) *QuoteHandler { return &QuoteHandler{Svc: svc} }

func (h *QuoteHandler) loadByShortID(w http.ResponseWriter, r *http.Request) *models.Quote {
	shortID := r.URL.Query().Get("short_id")
	if shortID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_short_id", nil)
		return nil
	}
	q, err := h.Svc.GetByShortID(r.Context(), shortID)
	if err != nil {
		writeServiceError(w, r, err)
		return nil
	}
	if q == nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return nil
	}
	return q
}

func roleFrom(r *http.Request) string {
	_, role, _ := auth.StaffFromContext(r.Context())
	return role
}

// List: GET /quotes
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	qs, total, err := h.Svc.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	role := roleFrom(r)
	items := make([]any, 0, len(qs))
	for i := range qs {
		items = append(items, quotes.ProjectForRole(&qs[i], role))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total, "limit": limit, "offset": offset})
}

type createQuoteRequest struct {
	Customer quotes.CustomerInput `json:"customer"`
	Items    []quotes.ItemInput   `json:"items"`
	// Spot prices are submitted explicitly: the entry form previews them via
	// GET /spot and the staff member confirms the figures the quote is made at.
	GoldPerGram   decimal.Decimal `json:"gold_per_gram"`
	SilverPerGram decimal.Decimal `json:"silver_per_gram"`
}

// Create: POST /quotes
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if !req.GoldPerGram.IsPositive() {
		v["gold_per_gram"] = "must_be_positive"
	}
	if !req.SilverPerGram.IsPositive() {
		v["silver_per_gram"] = "must_be_positive"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	q, err := h.Svc.Create(r.Context(), req.Customer, req.Items, spot.GramPrices{
		Gold:   req.GoldPerGram,
		Silver: req.SilverPerGram,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, quotes.ProjectForRole(q, roleFrom(r)))
}

// Get: GET /quotes/get?short_id=
func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := h.loadByShortID(w, r)
	if q == nil {
		return
	}
	httpx.JSON(w, http.StatusOK, quotes.ProjectForRole(q, roleFrom(r)))
}

type updateQuoteRequest struct {
	Customer quotes.CustomerInput `json:"customer"`
	Items    []quotes.ItemInput   `json:"items"`
}

// Update: POST /quotes/update?short_id= — combined customer-details and
// item edit, applied atomically.
func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	q := h.loadByShortID(w, r)
	if q == nil {
		return
	}
	var req updateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	updated, err := h.Svc.UpdateCustomerAndItems(r.Context(), q.ID, req.Customer, req.Items)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quotes.ProjectForRole(updated, roleFrom(r)))
}

// ReplaceItems: POST /quotes/items?short_id= — wholesale item replacement
// without touching customer details.
func (h *QuoteHandler) ReplaceItems(w http.ResponseWriter, r *http.Request) {
	q := h.loadByShortID(w, r)
	if q == nil {
		return
	}
	var req struct {
		Items []quotes.ItemInput `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	updated, err := h.Svc.ReplaceItems(r.Context(), q.ID, req.Items)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quotes.ProjectForRole(updated, roleFrom(r)))
}

// Refresh: POST /quotes/refresh?short_id= — re-fetches live prices and
// overwrites the snapshot. A feed outage surfaces as 502, never as silently
// reused numbers.
func (h *QuoteHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	q := h.loadByShortID(w, r)
	if q == nil {
		return
	}
	updated, err := h.Svc.RefreshPrices(r.Context(), q.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quotes.ProjectForRole(updated, roleFrom(r)))
}

// Expire: POST /quotes/expire?short_id=
func (h *QuoteHandler) Expire(w http.ResponseWriter, r *http.Request) {
	q := h.loadByShortID(w, r)
	if q == nil {
		return
	}
	if err := h.Svc.Expire(r.Context(), q.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": models.QuoteStatusExpired})
}

// Display: POST /quotes/display?short_id= — toggles whether the customer
// view shows the quoted rate.
func (h *QuoteHandler) Display(w http.ResponseWriter, r *http.Request) {
	q := h.loadByShortID(w, r)
	if q == nil {
		return
	}
	var req struct {
		ShowQuotedRate bool `json:"show_quoted_rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := h.Svc.SetShowQuotedRate(r.Context(), q.ID, req.ShowQuotedRate); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"show_quoted_rate": req.ShowQuotedRate})
}
