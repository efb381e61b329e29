package ports

import (
	"context"
	"time"
)

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram, such as the number
	// of elements per partition.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// ReductionInfo describes a reduction run before it starts.
type ReductionInfo struct {
	// Name identifies the engine that runs the reduction.
	Name string

	// Partitioner is the type name of the partitioner in use.
	Partitioner string

	// Schedule is the combine schedule ("linear" or "tree").
	Schedule string

	// Elements is the number of input elements.
	Elements int

	// Partitions is the number of groups in the plan.
	Partitions int

	// Unordered mirrors the reduction's characteristics.
	Unordered bool
}

// ReductionStats summarizes a finished (or failed) reduction run.
type ReductionStats struct {
	// Elapsed is the wall time spent from planning to finish.
	Elapsed time.Duration

	// Combines is the number of Combine calls performed.
	Combines int

	// ResultSize is the size of the finished result, or -1 when the
	// reduction does not implement ResultSizer or the run failed.
	ResultSize int
}

// ReductionObserver receives lifecycle callbacks from the drivers.
// Implementations must be safe for concurrent use: one observer is shared
// by every run of an engine.
type ReductionObserver interface {
	// PreReduce is called once the plan is known. The returned context is
	// passed to PostReduce, letting observers carry spans or timers.
	PreReduce(ctx context.Context, info ReductionInfo) context.Context

	// PostReduce is called exactly once per run, with err set when the
	// run failed.
	PostReduce(ctx context.Context, info ReductionInfo, stats ReductionStats, err error)
}
