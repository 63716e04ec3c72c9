package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sternbridge/bullion-quotes/internal/httpx"
)

type ctxKey string

const (
	staffCookieName = "session"
	staffIDCtxKey   = ctxKey("staffID")
	staffRoleCtxKey = ctxKey("staffRole")
)

// StaffVerifier checks that a session still refers to a real staff account
// and returns its role. Set during bootstrap via SetStaffVerifier.
type StaffVerifier func(ctx context.Context, uid uint) (role string, ok bool)

var verifier StaffVerifier

// SetStaffVerifier configures the global verifier used by RequireStaff.
func SetStaffVerifier(v StaffVerifier) { verifier = v }

// Secret returns SESSION_SECRET or a default dev value.
func Secret() string {
	if s := os.Getenv("SESSION_SECRET"); s != "" {
		return s
	}
	return "devsessionsecret"
}

func sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(Secret()))
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func verify(payload, sig string) bool {
	return hmac.Equal([]byte(sig), []byte(sign(payload)))
}

// CreateStaffSession sets a signed cookie carrying the staff user id.
func CreateStaffSession(w http.ResponseWriter, userID uint) {
	uidStr := strconv.FormatUint(uint64(userID), 10)
	http.SetCookie(w, &http.Cookie{
		Name:     staffCookieName,
		Value:    uidStr + "." + sign(uidStr),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(14 * 24 * time.Hour),
	})
}

// ClearStaffSession deletes the staff session cookie.
func ClearStaffSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: staffCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseStaffSession validates the cookie and returns the staff user id.
func ParseStaffSession(r *http.Request) (uint, bool) {
	c, err := r.Cookie(staffCookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	parts := strings.Split(c.Value, ".")
	if len(parts) != 2 || !verify(parts[0], parts[1]) {
		return 0, false
	}
	id64, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id64), true
}

// WithStaff stores the staff id and role in context.
func WithStaff(ctx context.Context, userID uint, role string) context.Context {
	ctx = context.WithValue(ctx, staffIDCtxKey, userID)
	return context.WithValue(ctx, staffRoleCtxKey, role)
}

// StaffFromContext extracts the staff id and role.
func StaffFromContext(ctx context.Context) (uint, string, bool) {
	id, ok := ctx.Value(staffIDCtxKey).(uint)
	if !ok {
		return 0, "", false
	}
	role, _ := ctx.Value(staffRoleCtxKey).(string)
	return id, role, true
}

// Middleware attaches the staff identity to the request context if a valid
// session cookie is present and the account still exists.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := ParseStaffSession(r); ok && verifier != nil {
			if role, exists := verifier(r.Context(), uid); exists {
				r = r.WithContext(WithStaff(r.Context(), uid, role))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireStaff rejects requests without an authenticated staff identity.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := StaffFromContext(r.Context()); !ok {
			httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
