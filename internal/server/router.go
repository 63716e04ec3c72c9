package server

import (
	"context"
	"log"
	"net/http"

	"gorm.io/gorm"

	"github.com/sternbridge/bullion-quotes/internal/auth"
	"github.com/sternbridge/bullion-quotes/internal/config"
	"github.com/sternbridge/bullion-quotes/internal/handlers"
	"github.com/sternbridge/bullion-quotes/internal/httpx"
	"github.com/sternbridge/bullion-quotes/internal/middleware"
	"github.com/sternbridge/bullion-quotes/internal/models"
	"github.com/sternbridge/bullion-quotes/internal/quotes"
	"github.com/sternbridge/bullion-quotes/internal/settings"
	"github.com/sternbridge/bullion-quotes/internal/spot"
)

// New constructs the root http.Handler with all routes and middlewares
// applied.
func New(db *gorm.DB, cfg config.Config) http.Handler {
	mux := http.NewServeMux()

	// RequireStaff verifies on every request that the session still maps to
	// a live staff account, and resolves its role for projection shaping.
	auth.SetStaffVerifier(func(_ context.Context, uid uint) (string, bool) {
		var user models.User
		if err := db.Select("role").First(&user, uid).Error; err != nil {
			return "", false
		}
		return user.Role, true
	})

	store := settings.NewStore(db)
	gateway := spot.NewGateway(cfg.SpotFeedURL, cfg.Currency, store, cfg.SpotFeedTimeout)
	quoteSvc := quotes.NewService(db, gateway, cfg.StaffAccessCode)

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Staff authentication
	ah := handlers.NewAuthHandler(db)
	mux.HandleFunc("POST /login", ah.Login)
	mux.HandleFunc("POST /logout", ah.Logout)

	staff := func(h http.HandlerFunc) http.Handler { return auth.RequireStaff(h) }

	// Quote dashboard API
	qh := handlers.NewQuoteHandler(quoteSvc)
	mux.Handle("/quotes", staff(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			qh.List(w, r)
		case http.MethodPost:
			qh.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))
	mux.Handle("GET /quotes/get", staff(qh.Get))
	mux.Handle("POST /quotes/update", staff(qh.Update))
	mux.Handle("POST /quotes/items", staff(qh.ReplaceItems))
	mux.Handle("POST /quotes/refresh", staff(qh.Refresh))
	mux.Handle("POST /quotes/expire", staff(qh.Expire))
	mux.Handle("POST /quotes/display", staff(qh.Display))

	// Live price preview for the entry form
	sh := handlers.NewSpotHandler(gateway)
	mux.Handle("GET /spot", staff(sh.Latest))

	// Admin settings
	seth := handlers.NewSettingsHandler(store)
	mux.Handle("/settings/offset", staff(seth.Offset))

	// Customer-facing quote link
	ch := handlers.NewCustomerHandler(quoteSvc)
	mux.HandleFunc("GET /q/{shortID}", ch.View)
	mux.HandleFunc("POST /q/{shortID}/login", ch.Login)

	return middleware.Logging(withRecover(auth.Middleware(mux)))
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("%s %s: panic recovered: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
