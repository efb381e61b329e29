package application

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ahrav/go-podium/infrastructure/middleware"
	"github.com/ahrav/go-podium/infrastructure/partition"
	"github.com/ahrav/go-podium/internal/domain"
	"github.com/ahrav/go-podium/internal/ports"
	"github.com/ahrav/go-podium/internal/testutils"
)

// engineConfig returns a valid configuration for the given partitioner.
func engineConfig(typ string, params map[string]any, schedule string) EngineConfig {
	cfg := DefaultEngineConfig("test")
	cfg.Partitioner = PartitionerConfig{Type: typ, Parameters: params}
	cfg.Combine = schedule
	return cfg
}

func newTestEngine(t *testing.T, cfg EngineConfig, opts ...Option) *Engine {
	t.Helper()
	eng, err := NewEngine(cfg, opts...)
	require.NoError(t, err)
	return eng
}

// recordingObserver captures every callback.
type recordingObserver struct {
	infos []ports.ReductionInfo
	stats []ports.ReductionStats
	errs  []error
}

func (o *recordingObserver) PreReduce(ctx context.Context, info ports.ReductionInfo) context.Context {
	o.infos = append(o.infos, info)
	return ctx
}

func (o *recordingObserver) PostReduce(_ context.Context, _ ports.ReductionInfo, stats ports.ReductionStats, err error) {
	o.stats = append(o.stats, stats)
	o.errs = append(o.errs, err)
}

// brokenPartitioner returns a fixed plan regardless of n.
type brokenPartitioner struct {
	plan [][]int
}

func (b brokenPartitioner) Name() string { return "broken" }

func (b brokenPartitioner) Partition(int) ([][]int, error) { return b.plan, nil }

func (b brokenPartitioner) PreservesOrder() bool { return true }

func TestNewEngine(t *testing.T) {
	eng := newTestEngine(t, engineConfig(partition.TypeChunked, map[string]any{"partitions": 3}, ""))

	assert.Equal(t, "test", eng.Name())
	assert.Equal(t, ScheduleLinear, eng.Schedule())
	assert.Equal(t, partition.TypeChunked, eng.Partitioner().Name())
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     EngineConfig
		wantErr error
	}{
		{
			name:    "unknown partitioner",
			cfg:     engineConfig("striped", nil, ScheduleLinear),
			wantErr: ports.ErrUnknownPartitioner,
		},
		{
			name: "bad parameters",
			cfg:  engineConfig(partition.TypeRoundRobin, map[string]any{"partitions": -1}, ScheduleLinear),
		},
		{
			name: "bad schedule",
			cfg:  engineConfig(partition.TypeSingle, nil, "random"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.cfg)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNewEngine_CustomPartitionerRegistry(t *testing.T) {
	registry := NewDefaultPartitionerRegistry()
	require.NoError(t, registry.RegisterPartitionerFactory("pairs", func(map[string]any) (ports.Partitioner, error) {
		return partition.NewChunked(partition.ChunkedConfig{ChunkSize: 2})
	}))

	eng := newTestEngine(t, engineConfig("pairs", nil, ScheduleTree), WithPartitionerRegistry(registry))

	winners, err := CollectWinners(context.Background(), eng, testutils.Surnames(), testutils.RatingScorer)
	require.NoError(t, err)
	assert.Equal(t, []testutils.Rating{{Name: "Golubev", Value: 7}, {Name: "Kukushkin", Value: 7}}, winners)
}

func TestNewEngine_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := engineConfig(partition.TypeChunked, map[string]any{"partitions": 3}, ScheduleLinear)
	cfg.Metrics = MetricsConfig{Enabled: true, Namespace: "podium"}

	eng := newTestEngine(t, cfg, WithRegistry(reg))

	_, err := CollectWinners(context.Background(), eng, testutils.Surnames(), testutils.RatingScorer)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "podium_reductions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	families, err := reg.Gather()
	require.NoError(t, err)
	values := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[mf.GetName()] = m.GetGauge().GetValue()
			}
		}
	}
	assert.Equal(t, float64(7), values["podium_elements_total"])
	assert.Equal(t, float64(2), values["podium_combines_total"])
	assert.Equal(t, float64(2), values["podium_result_size"])
}

func TestNewEngine_MetricsDisabled(t *testing.T) {
	reg := prometheus.NewRegistry()
	eng := newTestEngine(t, engineConfig(partition.TypeSingle, nil, ScheduleLinear), WithRegistry(reg))

	_, err := CollectWinners(context.Background(), eng, testutils.Surnames(), testutils.RatingScorer)
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Empty(t, families)
}

func TestEngine_Tracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	observer := middleware.NewOTelReductionObserverWithTracer(nil, tp.Tracer("test"))

	eng := newTestEngine(t,
		engineConfig(partition.TypeRoundRobin, map[string]any{"partitions": 2}, ScheduleTree),
		WithObserver(observer),
	)

	_, err := CollectWinners(context.Background(), eng, testutils.Surnames(), testutils.RatingScorer)
	require.NoError(t, err)

	scorer := func(testutils.Rating) (domain.Score, error) { return 0, assert.AnError }
	_, err = CollectWinnersFallible(context.Background(), eng, testutils.Surnames(), scorer)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "Engine.Reduce", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestEngine_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	eng := newTestEngine(t,
		engineConfig(partition.TypeChunked, map[string]any{"chunk_size": 3}, ScheduleLinear),
		WithLogger(logger),
	)

	_, err := CollectWinners(context.Background(), eng, testutils.Surnames(), testutils.RatingScorer)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"message":"reduction planned"`)
	assert.Contains(t, out, `"partitions":3`)
	assert.Contains(t, out, `"engine":"test"`)
	assert.Contains(t, out, `"message":"reduction finished"`)

	buf.Reset()
	failing := func(testutils.Rating) (domain.Score, error) { return 0, assert.AnError }
	_, err = CollectWinnersFallible(context.Background(), eng, testutils.Surnames(), failing)
	require.Error(t, err)
	assert.True(t, strings.Contains(buf.String(), `"level":"error"`))
}

func TestEngine_InvalidPlan(t *testing.T) {
	tests := []struct {
		name string
		plan [][]int
	}{
		{"empty group", [][]int{{0, 1}, {}, {2}}},
		{"duplicate index", [][]int{{0, 1}, {1, 2}}},
		{"missing index", [][]int{{0, 1}}},
		{"out of range", [][]int{{0, 1, 2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewDefaultPartitionerRegistry()
			require.NoError(t, registry.RegisterPartitionerFactory("broken", func(map[string]any) (ports.Partitioner, error) {
				return brokenPartitioner{plan: tt.plan}, nil
			}))
			eng := newTestEngine(t, engineConfig("broken", nil, ScheduleLinear), WithPartitionerRegistry(registry))

			_, err := CollectWinners(context.Background(), eng, []int{1, 2, 3}, func(v int) domain.Score { return domain.Score(v) })
			assert.ErrorIs(t, err, ports.ErrInvalidPlan)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.True(t, verr.HasErrors())
		})
	}
}
