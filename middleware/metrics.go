package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mnehpets/queryserve/routing"
)

// Collector holds the Prometheus metrics recorded per dispatched request.
type Collector struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector creates a Collector with its own registry. An empty namespace
// defaults to "queryserve".
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "queryserve"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of dispatched RPC requests",
		},
		[]string{"action", "status", "error"},
	)
	c.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "RPC request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"action"},
	)

	c.registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		collectors.NewGoCollector(),
	)
	return c
}

// Handler returns the scrape endpoint for the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Metrics returns a layer recording request counts and durations, labelled
// by action, status, and the machine-readable error name (empty on
// success). Actions are bounded by the route table, so label cardinality
// stays bounded too.
func Metrics(c *Collector) Layer {
	return func(next routing.Service) routing.Service {
		return routing.ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}

			next.Call(sw, r)

			action := r.URL.Query().Get("Action")
			errorName, _ := routing.ErrorName(r.Context())
			c.requestsTotal.WithLabelValues(
				action,
				strconv.Itoa(sw.statusOrDefault()),
				errorName,
			).Inc()
			c.requestDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
		})
	}
}
