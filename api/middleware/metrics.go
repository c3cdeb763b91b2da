package middleware

import (
	"net/http"
	"time"

	"github.com/angelmondragon/shopfront-backend/pkg/metrics"
)

// Metrics observes every request under its chi route pattern.
func Metrics(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := wrap(w, r)
			started := time.Now()
			next.ServeHTTP(ww, r)
			// read after ServeHTTP: chi fills the pattern in while routing
			m.ObserveRequest(r.Method, matchedPattern(r), statusOf(ww), time.Since(started))
		})
	}
}
