package middleware

import (
	"net/http"
	"time"

	"github.com/crucial707/hci-itam/internal/metrics"
	"github.com/go-chi/chi/v5"
)

// unmatchedRoute labels requests no route matched, so scans for random paths
// do not add series.
const unmatchedRoute = "unmatched"

// Prometheus records request duration and count labelled by the chi route
// pattern, e.g. /assets/{id}. Scrapes of /metrics are not recorded.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrap := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrap, r)
		if r.URL.Path == "/metrics" {
			return
		}
		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		metrics.RecordRequest(r.Method, route, wrap.status, time.Since(start).Seconds())
	})
}
