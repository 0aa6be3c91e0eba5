// Package metrics exposes Prometheus instrumentation for datetime normalization.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mozilla-ai/gqltz/internal/datetime"
	"github.com/mozilla-ai/gqltz/internal/normalize"
)

const namespace = "gqltz"

const (
	outcomeConverted = "converted"
	outcomeUnchanged = "unchanged"
)

var _ normalize.Observer = (*Metrics)(nil)

// Metrics records conversion counters and payload timings on its own registry.
// NewMetrics should be used to create instances of Metrics.
type Metrics struct {
	registry *prometheus.Registry
	fields   *prometheus.CounterVec
	payloads *prometheus.HistogramVec
	skipped  *prometheus.CounterVec
}

// NewMetrics creates Metrics backed by a fresh Prometheus registry.
// Go runtime and process collectors are registered alongside the normalization metrics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		fields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fields_total",
			Help:      "Classified datetime fields visited, by direction, field kind and outcome.",
		}, []string{"direction", "kind", "outcome"}),
		payloads: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payload_normalize_seconds",
			Help:      "Time spent normalizing a single payload.",
			Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025, .05},
		}, []string{"direction"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payloads_skipped_total",
			Help:      "Bodies forwarded without normalization, by direction and reason.",
		}, []string{"direction", "reason"}),
	}

	reg.MustRegister(
		m.fields,
		m.payloads,
		m.skipped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveField implements normalize.Observer.
func (m *Metrics) ObserveField(direction datetime.Direction, kind normalize.Kind, changed bool) {
	outcome := outcomeUnchanged
	if changed {
		outcome = outcomeConverted
	}
	m.fields.WithLabelValues(string(direction), string(kind), outcome).Inc()
}

// ObservePayload records how long a single payload took to normalize.
func (m *Metrics) ObservePayload(direction datetime.Direction, elapsed time.Duration) {
	m.payloads.WithLabelValues(string(direction)).Observe(elapsed.Seconds())
}

// ObserveSkipped records a body that was forwarded without normalization.
func (m *Metrics) ObserveSkipped(direction datetime.Direction, reason string) {
	m.skipped.WithLabelValues(string(direction), reason).Inc()
}

// Registry returns the Prometheus registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
