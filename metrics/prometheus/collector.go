// Package prometheus exports appender throughput and latency on a dedicated
// Prometheus registry.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trickstertwo/xappend"
)

const namespace = "xappend"

// Collector implements xappend.MetricsCollector.
type Collector struct {
	registry *prometheus.Registry
	entries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewCollector builds a collector backed by its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appender",
			Name:      "entries_total",
			Help:      "Entries handed to an appender, by outcome.",
		}, []string{"appender", "level", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "appender",
			Name:      "duration_seconds",
			Help:      "Time spent in an appender's Log call.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"appender"}),
	}
	c.registry.MustRegister(c.entries, c.duration)
	return c
}

func (c *Collector) Appended(appender string, level xappend.Level, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.entries.WithLabelValues(appender, level.String(), status).Inc()
	c.duration.WithLabelValues(appender).Observe(d.Seconds())
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

var _ xappend.MetricsCollector = (*Collector)(nil)
