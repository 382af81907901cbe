package api

import (
	"net/http"
	"strings"

	"github.com/juanmoore-creator/elimpostor/internal/infrastructure/json"
)

func (app *Application) rateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := app.ratelimiter.GetSourceKey(r)
		if !app.ratelimiter.Allow(key) {
			json.WriteRateLimitError(w, 1)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (app *Application) enableCors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origins := "*"
		if len(app.config.HTTP.AllowedOrigins) > 0 {
			origins = strings.Join(app.config.HTTP.AllowedOrigins, ", ")
		}

		w.Header().Set("Access-Control-Allow-Origin", origins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", strings.Join(app.config.HTTP.AllowedHeaders, ", "))
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		// allow preflight requests from the browser API
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
