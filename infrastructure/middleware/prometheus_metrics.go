// Package middleware provides observability adapters for reduction runs.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-podium/internal/ports"
)

// Metric names understood by PrometheusMetrics.
const (
	MetricReductions = "reductions_total"
	MetricElements   = "elements_total"
	MetricCombines   = "combines_total"
	MetricResultSize = "result_size"
	MetricPartitions = "partitions"
)

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It tracks how many elements and combines every engine processes, how
// long reductions take and how many winners they end with.
type PrometheusMetrics struct {
	reductionLatency *prometheus.HistogramVec
	reductions       *prometheus.CounterVec
	elements         *prometheus.CounterVec
	combines         *prometheus.CounterVec
	resultSize       *prometheus.GaugeVec
	partitions       *prometheus.HistogramVec
	other            *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// its collectors on reg. Pass prometheus.DefaultRegisterer to expose them
// on the default /metrics handler; tests should pass a fresh registry.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) *PrometheusMetrics {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		reductionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "reduction_duration_seconds",
				Help:      "Wall time of reduction runs from planning to finish.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "engine"},
		),
		reductions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      MetricReductions,
				Help:      "Total number of reduction runs by outcome.",
			},
			[]string{"engine", "status"},
		),
		elements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      MetricElements,
				Help:      "Total number of elements fed into reductions.",
			},
			[]string{"engine"},
		),
		combines: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      MetricCombines,
				Help:      "Total number of partial results merged.",
			},
			[]string{"engine"},
		),
		resultSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      MetricResultSize,
				Help:      "Size of the most recent reduction result, e.g. the number of co-winners.",
			},
			[]string{"engine"},
		),
		partitions: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      MetricPartitions,
				Help:      "Number of partitions per reduction run.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"engine"},
		),
		other: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "engine_state",
				Help:      "Miscellaneous engine values.",
			},
			[]string{"metric", "engine"},
		),
	}
}

// engineLabel returns the engine label or "unknown".
func engineLabel(labels map[string]string) string {
	if engine := labels["engine"]; engine != "" {
		return engine
	}
	return "unknown"
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.reductionLatency.WithLabelValues(operation, engineLabel(labels)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	engine := engineLabel(labels)

	switch metric {
	case MetricReductions:
		status := labels["status"]
		if status == "" {
			status = "success"
		}
		pm.reductions.WithLabelValues(engine, status).Add(value)
	case MetricElements:
		pm.elements.WithLabelValues(engine).Add(value)
	case MetricCombines:
		pm.combines.WithLabelValues(engine).Add(value)
	default:
		pm.other.WithLabelValues(metric, engine).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	engine := engineLabel(labels)

	switch metric {
	case MetricResultSize:
		pm.resultSize.WithLabelValues(engine).Set(value)
	default:
		pm.other.WithLabelValues(metric, engine).Set(value)
	}
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram. Unknown metrics fall back to the
// latency histogram with the metric name as operation.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	engine := engineLabel(labels)

	switch metric {
	case MetricPartitions:
		pm.partitions.WithLabelValues(engine).Observe(value)
	default:
		pm.reductionLatency.WithLabelValues(metric, engine).Observe(value)
	}
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
