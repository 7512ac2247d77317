// Package metrics holds the prometheus collectors shared by the admin UI and
// the reference backend.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "domainadmin"

var (
	registry = prometheus.NewRegistry()

	apiRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Requests issued to the remote domain API.",
	}, []string{"operation", "outcome"})

	cacheFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_fetches_total",
		Help:      "List fetches executed by the query store.",
	}, []string{"key", "outcome"})

	cacheInvalidations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_invalidations_total",
		Help:      "Cache invalidations by origin.",
	}, []string{"key", "source"})

	backendRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Requests served by the reference REST backend.",
	}, []string{"method", "code"})
)

func init() {
	registry.MustRegister(apiRequests, cacheFetches, cacheInvalidations, backendRequests)
	registry.MustRegister(collectors.NewGoCollector())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func ObserveAPIRequest(operation string, err error) {
	apiRequests.WithLabelValues(operation, outcome(err)).Inc()
}

func ObserveCacheFetch(key string, err error) {
	cacheFetches.WithLabelValues(key, outcome(err)).Inc()
}

func ObserveInvalidation(key, source string) {
	cacheInvalidations.WithLabelValues(key, source).Inc()
}

func ObserveBackendRequest(method string, code int) {
	backendRequests.WithLabelValues(method, http.StatusText(code)).Inc()
}

// Handler exposes the registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
