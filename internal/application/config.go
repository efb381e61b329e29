package application

import (
	"github.com/ahrav/go-podium/infrastructure/partition"
	"github.com/ahrav/go-podium/internal/logging"
)

// Combine schedules.
const (
	ScheduleLinear = "linear"
	ScheduleTree   = "tree"
)

// Defaults applied to omitted configuration fields.
const (
	DefaultMaxConcurrency   = 4
	DefaultCheckEvery       = 1024
	DefaultMetricsNamespace = "podium"
)

// EngineConfig is the declarative description of an Engine, usually decoded
// from YAML.
type EngineConfig struct {
	// Version is the configuration schema version (X.Y.Z).
	Version string `yaml:"version" validate:"required,semver"`
	// Name identifies the engine in logs, metrics and spans.
	Name string `yaml:"name" validate:"required,min=1,max=255"`
	// Partitioner selects how input is split across goroutines.
	Partitioner PartitionerConfig `yaml:"partitioner" validate:"required"`
	// Combine is the schedule used to merge partial accumulators.
	Combine string `yaml:"combine" validate:"omitempty,oneof=linear tree"`
	// MaxConcurrency bounds the goroutines running at once.
	MaxConcurrency int `yaml:"max_concurrency" validate:"omitempty,min=1,max=1024"`
	// CheckEvery is how many elements are accumulated between context polls.
	CheckEvery int `yaml:"check_every" validate:"omitempty,min=1,max=1048576"`

	Logging logging.Config `yaml:"logging"`
	Metrics MetricsConfig  `yaml:"metrics"`
}

// PartitionerConfig names a registered partitioner type and its parameters.
type PartitionerConfig struct {
	Type       string         `yaml:"type" validate:"required,min=1,max=64"`
	Parameters map[string]any `yaml:"parameters"`
}

// MetricsConfig controls Prometheus metrics for reductions.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace" validate:"omitempty,metricname"`
}

// DefaultEngineConfig returns a single-partition configuration with every
// default applied.
func DefaultEngineConfig(name string) EngineConfig {
	cfg := EngineConfig{
		Version:     "1.0.0",
		Name:        name,
		Partitioner: PartitionerConfig{Type: partition.TypeSingle},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills omitted fields.
func (c *EngineConfig) ApplyDefaults() {
	if c.Combine == "" {
		c.Combine = ScheduleLinear
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = DefaultMaxConcurrency
	}
	if c.CheckEvery == 0 {
		c.CheckEvery = DefaultCheckEvery
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
	c.Logging.ApplyDefaults()
}
