package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LEI lookup outcomes.
const (
	LookupResolved    = "resolved"
	LookupUnknown     = "unknown"
	LookupUnavailable = "unavailable"
	LookupCacheHit    = "cache_hit"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	BondsCreated    prometheus.Counter
	LEILookups      *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BondsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "bond_registry_bonds_created_total",
			Help: "Total number of bonds created",
		}),
		LEILookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bond_registry_lei_lookups_total",
			Help: "LEI lookups by outcome",
		}, []string{"outcome"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bond_registry_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) IncrementBondsCreated() {
	if m == nil {
		return
	}
	m.BondsCreated.Inc()
}

func (m *Metrics) ObserveLEILookup(outcome string) {
	if m == nil {
		return
	}
	m.LEILookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
