package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/sternbridge/bullion-quotes/internal/httpx"
	"github.com/sternbridge/bullion-quotes/internal/quotes"
	"github.com/sternbridge/bullion-quotes/internal/spot"
)

// writeServiceError maps the domain error taxonomy onto HTTP responses in
// one place so every handler reports the same way. Anything outside the
// taxonomy is logged with the request line before the 500 goes out; the
// query string carries the quote short id for the staff routes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *quotes.ValidationError
	switch {
	case errors.As(err, &ve):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", ve.Violations)
	case errors.Is(err, quotes.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, quotes.ErrConflict):
		// Unique-constraint collision; the client may retry the request once.
		httpx.JSONError(w, http.StatusConflict, "conflict_retry", nil)
	case errors.Is(err, quotes.ErrUnauthorized):
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
	case errors.Is(err, spot.ErrUnavailable):
		httpx.JSONError(w, http.StatusBadGateway, "spot_feed_unavailable", nil)
	default:
		log.Printf("%s %s: unhandled error: %v", r.Method, r.URL.RequestURI(), err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
