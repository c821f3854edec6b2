package engine

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors that report tracker scans.
// A nil *Metrics records nothing.
type Metrics struct {
	scans         *prometheus.CounterVec
	scanDuration  *prometheus.HistogramVec
	filesScanned  prometheus.Counter
	patternErrors prometheus.Counter
	readFailures  prometheus.Counter
}

// MustNewMetrics registers the engine collectors with reg (the default
// registerer when nil). Collectors already registered under the same name
// are reused; any other registration error panics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		scans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notetrack",
				Subsystem: "engine",
				Name:      "scans_total",
				Help:      "Tracker computations by extraction mode and source kind.",
			},
			[]string{"mode", "source"},
		),
		scanDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "notetrack",
				Subsystem: "engine",
				Name:      "scan_duration_seconds",
				Help:      "Time spent computing one tracker.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		filesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "notetrack",
			Subsystem: "engine",
			Name:      "files_scanned_total",
			Help:      "Documents scanned across all trackers.",
		}),
		patternErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "notetrack",
			Subsystem: "engine",
			Name:      "pattern_errors_total",
			Help:      "Scans whose regular expression failed to compile.",
		}),
		readFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "notetrack",
			Subsystem: "engine",
			Name:      "read_failures_total",
			Help:      "Documents that could not be read during a scan.",
		}),
	}

	m.scans = register(reg, m.scans)
	m.scanDuration = register(reg, m.scanDuration)
	m.filesScanned = register(reg, m.filesScanned)
	m.patternErrors = register(reg, m.patternErrors)
	m.readFailures = register(reg, m.readFailures)
	return m
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveScan records one tracker computation.
func (m *Metrics) ObserveScan(mode, source string, files int, d time.Duration) {
	if m == nil {
		return
	}
	m.scans.WithLabelValues(mode, source).Inc()
	m.scanDuration.WithLabelValues(source).Observe(d.Seconds())
	m.filesScanned.Add(float64(files))
}

// IncPatternError counts a pattern that failed to compile.
func (m *Metrics) IncPatternError() {
	if m == nil {
		return
	}
	m.patternErrors.Inc()
}

// IncReadFailure counts a document that could not be read.
func (m *Metrics) IncReadFailure() {
	if m == nil {
		return
	}
	m.readFailures.Inc()
}
