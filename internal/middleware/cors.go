// internal/middleware/cors.go

package middleware

import (
	"net/http"
	"os"
	"strings"
)

// CORSMiddleware applies a simple allow-list read from CORS_ALLOWED_ORIGINS
// (comma-separated). "*" or an empty variable allows every origin, which is
// the development default.
func CORSMiddleware(next http.Handler) http.Handler {
	raw := os.Getenv("CORS_ALLOWED_ORIGINS")
	allowAll := raw == "" || raw == "*"
	allowed := map[string]bool{}
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowAll || allowed[origin]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
