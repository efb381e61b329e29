package application

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/ahrav/go-podium/infrastructure/middleware"
	"github.com/ahrav/go-podium/internal/domain"
	"github.com/ahrav/go-podium/internal/logging"
	"github.com/ahrav/go-podium/internal/ports"
)

// ErrOrderedReduction is returned when a reduction that depends on
// encounter order is run with a partitioner that scatters elements.
var ErrOrderedReduction = errors.New("ordered reduction requires an order-preserving partitioner")

// Engine runs reductions over in-memory slices: it splits the input with a
// partitioner, accumulates each group on its own goroutine and combines the
// partial states with a fixed schedule. An Engine is immutable and safe for
// concurrent use.
type Engine struct {
	name           string
	partitioner    ports.Partitioner
	schedule       string
	maxConcurrency int
	checkEvery     int
	observer       ports.ReductionObserver
	logger         zerolog.Logger
}

// Option customizes an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	observer ports.ReductionObserver
	logger   *zerolog.Logger
	registry ports.PartitionerRegistry
	metrics  prometheus.Registerer
}

// WithObserver sets the observer notified before and after every run.
// It takes precedence over WithRegistry.
func WithObserver(observer ports.ReductionObserver) Option {
	return func(o *engineOptions) { o.observer = observer }
}

// WithLogger sets the engine's logger. Without it the engine does not log.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *engineOptions) { o.logger = &logger }
}

// WithPartitionerRegistry resolves the configured partitioner type through
// registry instead of the built-in set.
func WithPartitionerRegistry(registry ports.PartitionerRegistry) Option {
	return func(o *engineOptions) { o.registry = registry }
}

// WithRegistry registers Prometheus metrics on reg when
// EngineConfig.Metrics.Enabled is set. Runs are then traced and measured by
// an OTelReductionObserver. A registerer can back only one engine.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(o *engineOptions) { o.metrics = reg }
}

// NewEngine builds an engine from a configuration. Omitted fields take their
// defaults; the configuration is validated the same way LoadConfig does.
func NewEngine(cfg EngineConfig, opts ...Option) (*Engine, error) {
	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = NewDefaultPartitionerRegistry()
	}

	cfg.ApplyDefaults()
	loader, err := NewConfigLoader(o.registry)
	if err != nil {
		return nil, err
	}
	if err := loader.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid engine configuration: %w", err)
	}

	p, err := o.registry.CreatePartitioner(cfg.Partitioner.Type, cfg.Partitioner.Parameters)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Nop()
	if o.logger != nil {
		logger = *o.logger
	}

	observer := o.observer
	if observer == nil && cfg.Metrics.Enabled && o.metrics != nil {
		metrics := middleware.NewPrometheusMetrics(o.metrics, cfg.Metrics.Namespace)
		observer = middleware.NewOTelReductionObserver(metrics)
	}

	return &Engine{
		name:           cfg.Name,
		partitioner:    p,
		schedule:       cfg.Combine,
		maxConcurrency: cfg.MaxConcurrency,
		checkEvery:     cfg.CheckEvery,
		observer:       observer,
		logger:         logging.Component(logger, "engine").With().Str("engine", cfg.Name).Logger(),
	}, nil
}

// Name returns the configured engine name.
func (e *Engine) Name() string { return e.name }

// Partitioner returns the engine's partitioner.
func (e *Engine) Partitioner() ports.Partitioner { return e.partitioner }

// Schedule returns the combine schedule, ScheduleLinear or ScheduleTree.
func (e *Engine) Schedule() string { return e.schedule }

// maxPlanProblems bounds how many defects a plan validation reports.
const maxPlanProblems = 10

// plan asks the partitioner for groups over n elements and checks that
// every index is covered exactly once by non-empty groups.
func (e *Engine) plan(n int) ([][]int, error) {
	groups, err := e.partitioner.Partition(n)
	if err != nil {
		return nil, fmt.Errorf("partitioner %s: %w", e.partitioner.Name(), err)
	}

	verr := domain.NewValidationError("plan from " + e.partitioner.Name())
	seen := make([]bool, n)
	covered := 0
	for gi, g := range groups {
		if len(verr.Errors) >= maxPlanProblems {
			break
		}
		if len(g) == 0 {
			verr.AddError(fmt.Sprintf("group %d is empty", gi))
			continue
		}
		for _, idx := range g {
			switch {
			case idx < 0 || idx >= n:
				verr.AddError(fmt.Sprintf("group %d: index %d out of range [0, %d)", gi, idx, n))
			case seen[idx]:
				verr.AddError(fmt.Sprintf("group %d: index %d assigned twice", gi, idx))
			default:
				seen[idx] = true
				covered++
			}
		}
	}
	if !verr.HasErrors() && covered != n {
		verr.AddError(fmt.Sprintf("%d of %d indices covered", covered, n))
	}
	if verr.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ports.ErrInvalidPlan, verr)
	}
	return groups, nil
}
