package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector collects and exposes metrics. Each collector owns its own
// registry so multiple instances never collide on registration.
type Collector struct {
	registry     *prometheus.Registry
	objectsTotal *prometheus.CounterVec
	bytesTotal   prometheus.Counter
	duration     prometheus.Histogram
}

// New creates a new metrics collector
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		objectsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "archive_objects_total",
				Help: "Total number of objects examined, by outcome",
			},
			[]string{"status"},
		),
		bytesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "archive_bytes_total",
				Help: "Total bytes moved to the archive bucket",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "archive_object_duration_seconds",
				Help:    "Time taken to archive an object",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	// Register metrics
	c.registry.MustRegister(c.objectsTotal)
	c.registry.MustRegister(c.bytesTotal)
	c.registry.MustRegister(c.duration)

	return c
}

// IncMoved increments the moved object counter and the byte total
func (c *Collector) IncMoved(bytes int64) {
	c.objectsTotal.WithLabelValues("moved").Inc()
	c.bytesTotal.Add(float64(bytes))
}

// IncSkipped increments the skipped object counter
func (c *Collector) IncSkipped() {
	c.objectsTotal.WithLabelValues("skipped").Inc()
}

// IncFailed increments the failed object counter
func (c *Collector) IncFailed() {
	c.objectsTotal.WithLabelValues("failed").Inc()
}

// ObserveDuration observes one object's archival duration
func (c *Collector) ObserveDuration(duration time.Duration) {
	c.duration.Observe(duration.Seconds())
}

// StartServer starts the metrics HTTP server
func (c *Collector) StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
	return http.ListenAndServe(addr, mux)
}
