// Package metrics declares the prometheus collectors of the server.
//
// Collectors register on the default registry at init through promauto;
// the server exposes them at /metrics with promhttp.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vininote"

// =============================================================================
// HTTP
// =============================================================================

var (
	// httpRequests counts finished requests.
	// Labels: method, route (chi route pattern), status
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	// httpDuration measures request latency.
	// Labels: method, route
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route"})
)

// ObserveRequest records one finished request. An unmatched route is
// reported as "unmatched" so stray paths do not create label values.
func ObserveRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// =============================================================================
// Journal
// =============================================================================

var (
	// storeChanges counts journal changes.
	// Labels: key (storage key), op (insert, replace, remove, set, clear, external)
	storeChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "changes_total",
		Help:      "Total journal changes by storage key and operation",
	}, []string{"key", "op"})

	// externalReloads counts data file changes made by another process.
	externalReloads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "external_reloads_total",
		Help:      "Data file changes detected from other processes",
	})
)

// ObserveChange records one journal change.
func ObserveChange(key, op string) {
	storeChanges.WithLabelValues(key, op).Inc()
}

// ObserveExternalReload records one external data file change.
func ObserveExternalReload() {
	externalReloads.Inc()
}

// =============================================================================
// Change feed
// =============================================================================

var (
	// eventClients is the number of connected websocket clients.
	eventClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "clients",
		Help:      "Connected change feed clients",
	})

	// eventDrops counts clients dropped for not keeping up.
	eventDrops = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "dropped_clients_total",
		Help:      "Change feed clients dropped for being too slow",
	})
)

// SetEventClients sets the connected client gauge.
func SetEventClients(n int) {
	eventClients.Set(float64(n))
}

// ObserveEventDrop records one dropped slow client.
func ObserveEventDrop() {
	eventDrops.Inc()
}
