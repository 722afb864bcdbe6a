package bot

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsSubsystem = "moderbot"

// Processing results for the updates counter.
const (
	resultOK       = "ok"
	resultDropped  = "dropped"
	resultRejected = "rejected"
	resultIgnored  = "ignored"
	resultError    = "error"
)

var handlerDurationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// metrics holds Prometheus metrics of update processing.
// If no registry is provided, the instance is disabled and every method is
// a no-op.
type metrics struct {
	updatesTotal           prometheus.Counter
	updatesProcessedTotal  *prometheus.CounterVec
	handlerDurationSeconds prometheus.Histogram
	sessionCacheSize       prometheus.Gauge

	disabled bool
}

func newMetrics(registry prometheus.Registerer) *metrics {
	if registry == nil {
		return &metrics{disabled: true}
	}

	m := &metrics{}
	m.updatesTotal = newCounter(registry, "updates_total", "Total number of updates received")
	m.updatesProcessedTotal = newCounterVec(registry, "updates_processed_total", "Total number of processed updates by result", "result")
	m.handlerDurationSeconds = newHistogram(registry, "handler_duration_seconds", "Handler execution duration in seconds", handlerDurationBuckets)
	m.sessionCacheSize = newGauge(registry, "session_cache_size", "Number of cached user sessions")

	return m
}

func (m *metrics) incUpdate() {
	if m == nil || m.disabled {
		return
	}
	m.updatesTotal.Inc()
}

func (m *metrics) observeResult(result string) {
	if m == nil || m.disabled {
		return
	}
	m.updatesProcessedTotal.WithLabelValues(result).Inc()
}

func (m *metrics) observeHandlerDuration(d time.Duration) {
	if m == nil || m.disabled {
		return
	}
	m.handlerDurationSeconds.Observe(d.Seconds())
}

func (m *metrics) setSessionCacheSize(size int) {
	if m == nil || m.disabled {
		return
	}
	m.sessionCacheSize.Set(float64(size))
}

func newCounter(registry prometheus.Registerer, name, help string) prometheus.Counter {
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: metricsSubsystem,
		Name:      name,
		Help:      help,
	})
	registry.MustRegister(counter)
	return counter
}

func newCounterVec(registry prometheus.Registerer, name, help string, labelNames ...string) *prometheus.CounterVec {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: metricsSubsystem,
		Name:      name,
		Help:      help,
	}, labelNames)
	registry.MustRegister(counter)
	return counter
}

func newGauge(registry prometheus.Registerer, name, help string) prometheus.Gauge {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Subsystem: metricsSubsystem,
		Name:      name,
		Help:      help,
	})
	registry.MustRegister(gauge)
	return gauge
}

func newHistogram(registry prometheus.Registerer, name, help string, buckets []float64) prometheus.Histogram {
	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Subsystem: metricsSubsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	})
	registry.MustRegister(histogram)
	return histogram
}
