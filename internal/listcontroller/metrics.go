package listcontroller

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the list controller's Prometheus collectors on a private
// registry. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	FetchTotal      *prometheus.CounterVec
	FetchDuration   *prometheus.HistogramVec
	PageCorrections *prometheus.CounterVec
	ActiveLists     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on a new registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adminlist",
			Name:      "fetch_total",
			Help:      "Total number of list fetches by outcome",
		}, []string{"resource", "status"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "adminlist",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of list fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource"}),
		PageCorrections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adminlist",
			Name:      "page_corrections_total",
			Help:      "Total number of automatic page corrections",
		}, []string{"resource", "reason"}),
		ActiveLists: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "adminlist",
			Name:      "active_lists",
			Help:      "Number of open list controllers",
		}),
	}
	reg.MustRegister(m.FetchTotal, m.FetchDuration, m.PageCorrections, m.ActiveLists)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Fetch outcomes.
const (
	fetchOK         = "ok"
	fetchError      = "error"
	fetchSuperseded = "superseded"
)

func (m *Metrics) fetchDone(resource, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(resource, status).Inc()
	m.FetchDuration.WithLabelValues(resource).Observe(d.Seconds())
}

func (m *Metrics) pageCorrected(resource, reason string) {
	if m == nil {
		return
	}
	m.PageCorrections.WithLabelValues(resource, reason).Inc()
}

func (m *Metrics) listOpened() {
	if m != nil {
		m.ActiveLists.Inc()
	}
}

func (m *Metrics) listClosed() {
	if m != nil {
		m.ActiveLists.Dec()
	}
}
