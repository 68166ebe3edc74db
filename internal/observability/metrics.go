package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics wraps the prometheus collectors exported by the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	entitlements    *prometheus.CounterVec
	strategyHits    *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vehicle_pricing_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vehicle_pricing_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vehicle_pricing_http_errors_total",
			Help: "Error responses by route, method and error code.",
		}, []string{"path", "method", "code"}),
		entitlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vehicle_pricing_entitlement_decisions_total",
			Help: "Entitlement resolutions by outcome.",
		}, []string{"outcome"}),
		strategyHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vehicle_pricing_sales_strategy_hits_total",
			Help: "Sales history strategies that returned records.",
		}, []string{"strategy"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vehicle_pricing_upstream_duration_seconds",
			Help:    "Latency of outbound calls by target and result.",
			Buckets: prometheus.DefBuckets,
		}, []string{"target", "result"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vehicle_pricing_cache_lookups_total",
			Help: "Cache lookups by cache name and result.",
		}, []string{"cache", "result"}),
	}

	reg.MustRegister(
		m.requests,
		m.requestLatency,
		m.errors,
		m.entitlements,
		m.strategyHits,
		m.upstreamLatency,
		m.cacheLookups,
	)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordEntitlement counts a resolution outcome (granted, denied, config_error, auth_error).
func (m *Metrics) RecordEntitlement(outcome string) {
	if m == nil {
		return
	}
	m.entitlements.WithLabelValues(outcome).Inc()
}

// RecordStrategyHit counts the strategy that produced the records used for a decision.
func (m *Metrics) RecordStrategyHit(strategy string) {
	if m == nil {
		return
	}
	m.strategyHits.WithLabelValues(strategy).Inc()
}

// ObserveUpstream records the latency of an outbound call.
func (m *Metrics) ObserveUpstream(target string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.upstreamLatency.WithLabelValues(target, result).Observe(duration.Seconds())
}

// RecordCacheLookup counts a cache hit or miss.
func (m *Metrics) RecordCacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}
