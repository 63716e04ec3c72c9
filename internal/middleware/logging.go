package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Logging tags each request with a short correlation id and logs method,
// path, and duration on completion.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()[:8]
		w.Header().Set("X-Request-ID", reqID)
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s %s %s", reqID, r.Method, r.URL.Path, time.Since(start))
	})
}
