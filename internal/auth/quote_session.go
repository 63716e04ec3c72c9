package auth

import (
	"net/http"
	"strings"
	"time"
)

// Customer access is scoped to a single quote: after a successful credential
// check the customer gets a cookie valid only for that quote's short id.
// The cookie proves a past credential check, nothing more.

const quoteCookiePrefix = "quote_session_"

// CreateQuoteSession grants the browser access to the quote behind shortID.
func CreateQuoteSession(w http.ResponseWriter, shortID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     quoteCookiePrefix + shortID,
		Value:    shortID + "." + sign("quote:"+shortID),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})
}

// HasQuoteSession reports whether the request carries a valid session for
// the quote behind shortID.
func HasQuoteSession(r *http.Request, shortID string) bool {
	c, err := r.Cookie(quoteCookiePrefix + shortID)
	if err != nil || c.Value == "" {
		return false
	}
	parts := strings.Split(c.Value, ".")
	if len(parts) != 2 || parts[0] != shortID {
		return false
	}
	return verify("quote:"+shortID, parts[1])
}
