package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Rotation metrics
	TicksTotal   *prometheus.CounterVec
	TickDuration prometheus.Histogram
	PicksTotal   *prometheus.CounterVec

	// Hydration metrics
	HydrationsTotal *prometheus.CounterVec

	// Cache metrics
	EvictionsTotal prometheus.Counter
	CacheItems     prometheus.Gauge
	CacheBytes     prometheus.Gauge
}

// New creates the metrics on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		TicksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kitowall_ticks_total",
				Help: "Total number of rotation ticks by result",
			},
			[]string{"result"},
		),

		TickDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kitowall_tick_duration_seconds",
				Help:    "Duration of rotation ticks",
				Buckets: prometheus.DefBuckets,
			},
		),

		PicksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kitowall_picks_total",
				Help: "Total number of wallpaper picks by relaxation level",
			},
			[]string{"level"},
		),

		HydrationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kitowall_hydrations_total",
				Help: "Total number of hydrations by result",
			},
			[]string{"result"},
		),

		EvictionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "kitowall_cache_evictions_total",
				Help: "Total number of cache entries removed by pruning",
			},
		),

		CacheItems: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "kitowall_cache_items",
				Help: "Number of entries in the cache index",
			},
		),

		CacheBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "kitowall_cache_bytes",
				Help: "Total size of the cached files",
			},
		),
	}
}

// Registry returns the registry the metrics live on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry for scraping
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetCacheUsage records the current ledger usage
func (m *Metrics) SetCacheUsage(items int, bytes uint64) {
	m.CacheItems.Set(float64(items))
	m.CacheBytes.Set(float64(bytes))
}

// WriteTextfile writes the registry in text format for the node_exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
