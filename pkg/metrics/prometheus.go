// Package metrics provides Prometheus metrics for draft board builds.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds the metrics recorded during a board build.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Source loading
	recordsLoaded   *prometheus.CounterVec
	missingOptional prometheus.Counter
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	fetchLatency    *prometheus.HistogramVec

	// Reconciliation and assembly
	unmatchedExpert prometheus.Gauge
	entriesByBack   *prometheus.GaugeVec
	boardSize       prometheus.Gauge
	boardRounds     prometheus.Gauge
	buildDuration   prometheus.Histogram
	buildsTotal     *prometheus.CounterVec

	errorsByKind *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "draftboard",
		subsystem:        "build",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.recordsLoaded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_loaded_total",
		Help:        "Ranking records loaded per source",
		ConstLabels: labels,
	}, []string{"source"})

	m.missingOptional = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "missing_optional_files_total",
		Help:        "Optional expert ranking files that were not found",
		ConstLabels: labels,
	})

	m.cacheHits = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_hits_total",
		Help:        "Feed reads served from the local cache",
		ConstLabels: labels,
	}, []string{"source"})

	m.cacheMisses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_misses_total",
		Help:        "Feed reads that went to the network",
		ConstLabels: labels,
	}, []string{"source"})

	m.fetchLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fetch_latency_milliseconds",
		Help:        "Latency of remote feed fetches in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"source"})

	m.unmatchedExpert = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "unmatched_expert_records",
		Help:        "Expert records with no ADP counterpart in the last build",
		ConstLabels: labels,
	})

	m.entriesByBack = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "board_entries",
		Help:        "Board entries in the last build by backing kind",
		ConstLabels: labels,
	}, []string{"backing"})

	m.boardSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "board_slots",
		Help:        "Number of slots on the last built board",
		ConstLabels: labels,
	})

	m.boardRounds = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "board_rounds",
		Help:        "Number of rounds on the last built board",
		ConstLabels: labels,
	})

	m.buildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "duration_milliseconds",
		Help:        "End to end board build duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.buildsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Board builds by scoring format and player count",
		ConstLabels: labels,
	}, []string{"scoring_format", "player_count"})

	m.errorsByKind = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_total",
		Help:        "Errors by component and kind",
		ConstLabels: labels,
	}, []string{"component", "kind"})
}

// RecordRecordsLoaded adds n records loaded from source.
func RecordRecordsLoaded(source string, n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.recordsLoaded.WithLabelValues(source).Add(float64(n))
}

// RecordMissingOptional counts optional files that were absent.
func RecordMissingOptional(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.missingOptional.Add(float64(n))
}

// RecordCacheHit increments the cache hit counter for source.
func RecordCacheHit(source string) {
	if !globalManager.enabled {
		return
	}
	globalManager.cacheHits.WithLabelValues(source).Inc()
}

// RecordCacheMiss increments the cache miss counter for source.
func RecordCacheMiss(source string) {
	if !globalManager.enabled {
		return
	}
	globalManager.cacheMisses.WithLabelValues(source).Inc()
}

// ObserveFetchLatency records a remote fetch latency in milliseconds.
func ObserveFetchLatency(source string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.fetchLatency.WithLabelValues(source).Observe(latencyMs)
}

// UpdateUnmatchedExpert sets the number of expert-only entries.
func UpdateUnmatchedExpert(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.unmatchedExpert.Set(float64(n))
}

// UpdateEntries sets the entry count for one backing kind.
func UpdateEntries(backing string, n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.entriesByBack.WithLabelValues(backing).Set(float64(n))
}

// UpdateBoardSize sets the slot and round gauges.
func UpdateBoardSize(slots, rounds int) {
	if !globalManager.enabled {
		return
	}
	globalManager.boardSize.Set(float64(slots))
	globalManager.boardRounds.Set(float64(rounds))
}

// ObserveBuildDuration records a build duration in milliseconds.
func ObserveBuildDuration(durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.buildDuration.Observe(durationMs)
}

// RecordBuild counts one build for the given settings.
func RecordBuild(scoringFormat string, playerCount int) {
	if !globalManager.enabled {
		return
	}
	globalManager.buildsTotal.WithLabelValues(scoringFormat, fmt.Sprint(playerCount)).Inc()
}

// RecordError counts an error for component.
func RecordError(component, kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorsByKind.WithLabelValues(component, kind).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes the registry in the node exporter textfile format.
func WriteTextfile(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrTextfile)
	}
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrTextfile, err)
	}
	return nil
}
