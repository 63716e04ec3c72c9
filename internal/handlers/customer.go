package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sternbridge/bullion-quotes/internal/auth"
	"github.com/sternbridge/bullion-quotes/internal/httpx"
	"github.com/sternbridge/bullion-quotes/internal/quotes"
)

// CustomerHandler serves the customer-facing quote link. A login failure and
// an unknown short id produce the same response, so probing a URL reveals
// nothing about whether a quote exists.
type CustomerHandler struct {
	Svc *quotes.Service
}

func NewCustomerHandler(svc *quotes.Service) *CustomerHandler { return &CustomerHandler{Svc: svc} }

// Login: POST /q/{shortID}/login — checks the supplied credential against
// the quote's stored mobile or email (exact match) or the staff access code,
// then grants a session scoped to this quote only.
func (h *CustomerHandler) Login(w http.ResponseWriter, r *http.Request) {
	shortID := r.PathValue("shortID")
	var req struct {
		Credential string `json:"credential"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	q, err := h.Svc.GetByShortID(r.Context(), shortID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !h.Svc.ValidateCustomerCredential(q, req.Credential) {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	auth.CreateQuoteSession(w, shortID)
	httpx.JSON(w, http.StatusOK, quotes.ProjectCustomer(q))
}

// View: GET /q/{shortID} — read-only customer projection for an already
// authenticated session.
func (h *CustomerHandler) View(w http.ResponseWriter, r *http.Request) {
	shortID := r.PathValue("shortID")
	if !auth.HasQuoteSession(r, shortID) {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	q, err := h.Svc.GetByShortID(r.Context(), shortID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if q == nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, quotes.ProjectCustomer(q))
}
