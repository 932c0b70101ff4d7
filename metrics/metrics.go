// Package metrics exposes Prometheus collectors for API calls and
// rate-limit pauses.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector groups the client's collectors on their own registry.
type Collector struct {
	Registry *prometheus.Registry

	requests *prometheus.CounterVec
	waits    *prometheus.HistogramVec
}

// New returns a Collector registered under namespace (default "osometweet").
func New(namespace string) *Collector {
	if namespace == "" {
		namespace = "osometweet"
	}
	c := &Collector{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of API responses by endpoint and outcome.",
			},
			[]string{"endpoint", "outcome"},
		),
		waits: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "governor",
				Name:      "wait_seconds",
				Help:      "Time spent paused by the rate-limit governor.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~34m
			},
			[]string{"endpoint", "reason"},
		),
	}
	c.Registry.MustRegister(c.requests, c.waits)
	return c
}

// Hook matches SessionConfig.MetricsHook.
func (c *Collector) Hook(endpoint string, success, rateLimited bool) {
	outcome := "error"
	switch {
	case rateLimited:
		outcome = "rate_limited"
	case success:
		outcome = "success"
	}
	c.requests.WithLabelValues(endpoint, outcome).Inc()
}

// WaitHook matches SessionConfig.WaitHook.
func (c *Collector) WaitHook(endpoint, reason string, d time.Duration) {
	c.waits.WithLabelValues(endpoint, reason).Observe(d.Seconds())
}

// Handler returns an HTTP handler exposing the registered metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})
}
