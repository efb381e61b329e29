package middleware

import (
	"context"
	"errors"
	"maps"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-podium/internal/domain"
	"github.com/ahrav/go-podium/internal/ports"
)

var _ ports.ReductionObserver = (*OTelReductionObserver)(nil)

// OTelReductionObserver implements observability for reduction runs using
// OpenTelemetry tracing. It opens one span per run, annotates it with the
// partition plan and forwards run statistics to an optional
// MetricsCollector.
type OTelReductionObserver struct {
	metrics ports.MetricsCollector
	tracer  trace.Tracer
}

// NewOTelReductionObserver creates a new OpenTelemetry reduction observer.
// metrics may be nil.
func NewOTelReductionObserver(metrics ports.MetricsCollector) *OTelReductionObserver {
	return NewOTelReductionObserverWithTracer(metrics, otel.Tracer("podium-engine"))
}

// NewOTelReductionObserverWithTracer is NewOTelReductionObserver with an
// explicit tracer, mainly for tests.
func NewOTelReductionObserverWithTracer(metrics ports.MetricsCollector, tracer trace.Tracer) *OTelReductionObserver {
	return &OTelReductionObserver{
		metrics: metrics,
		tracer:  tracer,
	}
}

// PreReduce implements the ReductionObserver interface. It starts a span
// and records the plan.
func (o *OTelReductionObserver) PreReduce(ctx context.Context, info ports.ReductionInfo) context.Context {
	ctx, span := o.tracer.Start(ctx, "Engine.Reduce",
		trace.WithAttributes(
			attribute.String("reduction.engine", info.Name),
			attribute.String("reduction.partitioner", info.Partitioner),
			attribute.String("reduction.schedule", info.Schedule),
			attribute.Int("reduction.elements", info.Elements),
			attribute.Int("reduction.partitions", info.Partitions),
			attribute.Bool("reduction.unordered", info.Unordered),
		),
	)
	if info.Partitions > 0 {
		span.AddEvent("reduction.planned", trace.WithAttributes(
			attribute.Float64("avg_partition_size", float64(info.Elements)/float64(info.Partitions)),
		))
	}
	return ctx
}

// PostReduce implements the ReductionObserver interface. It finalizes the
// span, records metrics and marks failures.
func (o *OTelReductionObserver) PostReduce(
	ctx context.Context,
	info ports.ReductionInfo,
	stats ports.ReductionStats,
	err error,
) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.SetAttributes(
		attribute.Int("reduction.combines", stats.Combines),
		attribute.Int64("reduction.elapsed_ms", stats.Elapsed.Milliseconds()),
	)

	labels := map[string]string{"engine": info.Name}
	if o.metrics != nil {
		o.metrics.RecordLatency("reduce", stats.Elapsed, labels)
	}

	if err != nil {
		var partErr *domain.PartitionError
		if errors.As(err, &partErr) {
			span.AddEvent("reduction.partition_failed", trace.WithAttributes(
				attribute.Int("partition", partErr.Partition),
				attribute.String("op", partErr.Op),
			))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if o.metrics != nil {
			o.metrics.RecordCounter(MetricReductions, 1, withStatus(labels, "error"))
		}
		return
	}

	if stats.ResultSize >= 0 {
		span.SetAttributes(attribute.Int("reduction.result_size", stats.ResultSize))
	}
	span.SetStatus(codes.Ok, "reduction completed")

	o.updateMetrics(info, stats, labels)
}

// updateMetrics sends the run's volume figures to the metrics collector.
func (o *OTelReductionObserver) updateMetrics(info ports.ReductionInfo, stats ports.ReductionStats, labels map[string]string) {
	if o.metrics == nil {
		return
	}

	o.metrics.RecordCounter(MetricReductions, 1, withStatus(labels, "success"))
	o.metrics.RecordCounter(MetricElements, float64(info.Elements), labels)
	o.metrics.RecordCounter(MetricCombines, float64(stats.Combines), labels)
	o.metrics.RecordHistogram(MetricPartitions, float64(info.Partitions), labels)
	if stats.ResultSize >= 0 {
		o.metrics.RecordGauge(MetricResultSize, float64(stats.ResultSize), labels)
	}
	o.metrics.RecordGauge("unordered", boolGauge(info.Unordered), labels)
}

func withStatus(labels map[string]string, status string) map[string]string {
	out := maps.Clone(labels)
	out["status"] = status
	return out
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
