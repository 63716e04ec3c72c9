package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sternbridge/bullion-quotes/internal/auth"
	"github.com/sternbridge/bullion-quotes/internal/httpx"
	"github.com/sternbridge/bullion-quotes/internal/models"
	"github.com/sternbridge/bullion-quotes/internal/settings"
	"github.com/sternbridge/bullion-quotes/internal/validation"
	"strconv"
)

// SettingsHandler exposes the spot normalisation offset to admins. The
// store itself does no validation; the [0,100] percent constraint lives
// here, before anything is written.
type SettingsHandler struct {
	Store *settings.Store
}

func NewSettingsHandler(store *settings.Store) *SettingsHandler {
	return &SettingsHandler{Store: store}
}

// Offset: GET/POST /settings/offset (admin only)
func (h *SettingsHandler) Offset(w http.ResponseWriter, r *http.Request) {
	if _, role, _ := auth.StaffFromContext(r.Context()); role != models.RoleAdmin {
		httpx.JSONError(w, http.StatusForbidden, "admin_required", nil)
		return
	}
	switch r.Method {
	case http.MethodGet:
		offset, err := h.Store.Float(settings.KeySpotOffset, 0)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"offset_percent": offset})
	case http.MethodPost:
		var req struct {
			OffsetPercent *float64 `json:"offset_percent"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OffsetPercent == nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		v := validation.Violations{}
		validation.RangeFloat("offset_percent", *req.OffsetPercent, 0, 100, v)
		if !v.Empty() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		if err := h.Store.Set(settings.KeySpotOffset, strconv.FormatFloat(*req.OffsetPercent, 'f', -1, 64)); err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"offset_percent": *req.OffsetPercent})
	default:
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}
