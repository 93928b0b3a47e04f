package middleware

import (
	"net/http"
	"time"

	"github.com/churchsite/backend/internal/metrics"
	"github.com/go-chi/chi/v5"
)

// MetricsMiddleware records request counts and latency by chi route pattern
func MetricsMiddleware(recorder metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := wrapResponseWriter(w)

			next.ServeHTTP(ww, r)

			// Pattern is only known once the router has matched the request
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			recorder.RecordRequest(r.Method, route, ww.statusCode, time.Since(start))
		})
	}
}
