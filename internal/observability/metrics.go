package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// SOS call and evacuation-routing subsystems.
type Metrics struct {
	// SOS call metrics.
	CallsPlaced       prometheus.Counter
	CallFailures      *prometheus.CounterVec // labels: reason={invalid_number,unverified_destination,auth,rate_limited,provider}
	Classifications   *prometheus.CounterVec // labels: type={fire,medical,police,accident,general}
	ConversationTurns *prometheus.CounterVec // labels: intent
	CallsTerminated   *prometheus.CounterVec // labels: reason={operator_signoff,turn_budget,duration_budget,provider_status}
	ActiveCalls       prometheus.Gauge

	// Evacuation routing metrics.
	RouteRequests    *prometheus.CounterVec   // labels: outcome={live,fallback,error}
	RouteFanoutSize  prometheus.Histogram
	RouteAPIDuration prometheus.Histogram
	GeocodeRequests  *prometheus.CounterVec // labels: outcome={success,not_found,error}
	GeocodeCache     *prometheus.CounterVec // labels: result={hit,miss}
	CatalogSource    *prometheus.CounterVec // labels: source={bundled,places}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CallsPlaced,
		m.CallFailures,
		m.Classifications,
		m.ConversationTurns,
		m.CallsTerminated,
		m.ActiveCalls,
		m.RouteRequests,
		m.RouteFanoutSize,
		m.RouteAPIDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.CatalogSource,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CallsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "evac_sos",
			Name:      "calls_placed_total",
			Help:      "Total outbound emergency calls successfully placed.",
		}),
		CallFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evac_sos",
			Name:      "call_failures_total",
			Help:      "Call placement rejections by reason.",
		}, []string{"reason"}),
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evac_sos",
			Name:      "classifications_total",
			Help:      "Transcript classifications by emergency type.",
		}, []string{"type"}),
		ConversationTurns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evac_sos",
			Name:      "conversation_turns_total",
			Help:      "IVR conversation turns by detected operator intent.",
		}, []string{"intent"}),
		CallsTerminated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evac_sos",
			Name:      "calls_terminated_total",
			Help:      "Conversation terminations by reason.",
		}, []string{"reason"}),
		ActiveCalls: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "evac_sos",
			Name:      "active_calls",
			Help:      "Call contexts currently held in the context store.",
		}),
		RouteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evac_sos",
			Name:      "route_requests_total",
			Help:      "Per-destination route lookups by outcome.",
		}, []string{"outcome"}),
		RouteFanoutSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "evac_sos",
			Name:      "route_fanout_size",
			Help:      "Number of destinations per concurrent route fan-out.",
			Buckets:   []float64{1, 2, 3, 5, 8, 10},
		}),
		RouteAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "evac_sos",
			Name:      "route_api_duration_seconds",
			Help:      "Routing provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evac_sos",
			Name:      "geocode_requests_total",
			Help:      "Geocoding requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evac_sos",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		CatalogSource: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evac_sos",
			Name:      "catalog_source_total",
			Help:      "Shelter catalog source used per ranking request.",
		}, []string{"source"}),
	}
}
