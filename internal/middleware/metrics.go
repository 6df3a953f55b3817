package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/vininote/internal/metrics"
)

// Metrics records request count and latency per chi route pattern. The
// pattern ("/api/tastings/{id}") is read after the handler ran, once chi
// has matched it.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := wrap(w)

		next.ServeHTTP(wrapped, r)

		route := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		metrics.ObserveRequest(r.Method, route, wrapped.statusCode, time.Since(start))
	})
}
