// Package metrics exposes Prometheus counters for logins, contact fetches
// and note saves.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "contactnotes"

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the application collectors and the registry they live in.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	saves         *prometheus.CounterVec
	logins        *prometheus.CounterVec
}

// New creates a registry with the application collectors plus the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_fetches_total",
			Help:      "Contact list fetches from the directory API by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "contact_fetch_duration_seconds",
			Help:      "Latency of contact list fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "note_saves_total",
			Help:      "Note writes by outcome.",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Completed OAuth callbacks by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		m.fetches,
		m.fetchDuration,
		m.saves,
		m.logins,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

// ObserveFetch records one contact fetch that started at start.
func (m *Metrics) ObserveFetch(start time.Time, err error) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(outcome(err)).Inc()
	m.fetchDuration.Observe(time.Since(start).Seconds())
}

// ObserveSave records one note write.
func (m *Metrics) ObserveSave(err error) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(outcome(err)).Inc()
}

// ObserveLogin records one OAuth callback.
func (m *Metrics) ObserveLogin(err error) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome(err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
