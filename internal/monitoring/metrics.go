package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run results
const (
	RunOK           = "ok"
	RunFatal        = "fatal"
	RunNoAnalyzable = "no_analyzable"
	TickerRanked    = "ranked"
	TickerSkipped   = "skipped"
	CacheHit        = "hit"
	CacheMiss       = "miss"
	ProviderSuccess = "success"
	ProviderNoData  = "no_data"
	ProviderFailure = "error"
)

// Metrics holds the Prometheus collectors of the screener.
// A nil *Metrics is valid and records nothing.
// ⭐ SSOT: 메트릭 정의는 여기서만
type Metrics struct {
	registry *prometheus.Registry

	Runs             *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	ActiveRuns       prometheus.Gauge
	Tickers          *prometheus.CounterVec
	CacheRequests    *prometheus.CounterVec
	ProviderRequests *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec
}

// New creates the collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_runs_total",
				Help: "Total number of screening runs by result",
			},
			[]string{"result"},
		),

		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "screener_run_duration_seconds",
				Help:    "Duration of screening runs in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),

		ActiveRuns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "screener_active_runs",
				Help: "Number of screening runs in progress",
			},
		),

		Tickers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_tickers_total",
				Help: "Tickers processed by outcome",
			},
			[]string{"outcome"},
		),

		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_snapshot_cache_requests_total",
				Help: "Snapshot cache lookups by result",
			},
			[]string{"result"},
		),

		ProviderRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_provider_requests_total",
				Help: "Market data requests by source and status",
			},
			[]string{"source", "status"},
		),

		ProviderLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "screener_provider_latency_seconds",
				Help:    "Market data request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
	}

	m.registry.MustRegister(
		m.Runs,
		m.RunDuration,
		m.ActiveRuns,
		m.Tickers,
		m.CacheRequests,
		m.ProviderRequests,
		m.ProviderLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RunStarted marks a run in progress
func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.ActiveRuns.Inc()
}

// RunFinished records the outcome of a run
func (m *Metrics) RunFinished(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ActiveRuns.Dec()
	m.Runs.WithLabelValues(result).Inc()
	m.RunDuration.Observe(duration.Seconds())
}

// TickersProcessed adds ranked and skipped counts
func (m *Metrics) TickersProcessed(ranked, skipped int) {
	if m == nil {
		return
	}
	m.Tickers.WithLabelValues(TickerRanked).Add(float64(ranked))
	m.Tickers.WithLabelValues(TickerSkipped).Add(float64(skipped))
}

// CacheLookup records a snapshot cache hit or miss
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

// ProviderRequest records a market data request
func (m *Metrics) ProviderRequest(source, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ProviderRequests.WithLabelValues(source, status).Inc()
	m.ProviderLatency.WithLabelValues(source).Observe(duration.Seconds())
}
