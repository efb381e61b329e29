package application

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-podium/internal/ports"
)

// ConfigLoader decodes and validates engine configurations.
type ConfigLoader struct {
	validator *validator.Validate
	registry  ports.PartitionerRegistry
}

// NewConfigLoader creates a loader that checks partitioner sections against
// registry. A nil registry uses a fresh DefaultPartitionerRegistry.
func NewConfigLoader(registry ports.PartitionerRegistry) (*ConfigLoader, error) {
	v := validator.New()
	if err := registerCustomValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	if registry == nil {
		registry = NewDefaultPartitionerRegistry()
	}
	return &ConfigLoader{validator: v, registry: registry}, nil
}

// LoadFromReader reads, decodes, defaults and validates a configuration.
func (cl *ConfigLoader) LoadFromReader(r io.Reader) (EngineConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("failed to read data: %w", err)
	}
	return cl.load(data)
}

// LoadFromFile loads a configuration from a YAML file.
func (cl *ConfigLoader) LoadFromFile(path string) (EngineConfig, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return EngineConfig{}, ports.NewConfigError(path, ports.ErrConfigNotFound)
		}
		return EngineConfig{}, fmt.Errorf("failed to read file: %w", err)
	}
	return cl.load(data)
}

// Validate checks an already decoded configuration. Defaults are not
// applied.
func (cl *ConfigLoader) Validate(cfg EngineConfig) error {
	if err := cl.validator.Struct(cfg); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}
	if _, err := cl.registry.CreatePartitioner(cfg.Partitioner.Type, cfg.Partitioner.Parameters); err != nil {
		return ports.NewConfigError("partitioner", err)
	}
	return nil
}

func (cl *ConfigLoader) load(data []byte) (EngineConfig, error) {
	cfg, err := parseYAML(data)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cl.Validate(cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfig loads a configuration from r using the built-in partitioners.
func LoadConfig(r io.Reader) (EngineConfig, error) {
	cl, err := NewConfigLoader(nil)
	if err != nil {
		return EngineConfig{}, err
	}
	return cl.LoadFromReader(r)
}

// LoadConfigFile loads a configuration file using the built-in partitioners.
func LoadConfigFile(path string) (EngineConfig, error) {
	cl, err := NewConfigLoader(nil)
	if err != nil {
		return EngineConfig{}, err
	}
	return cl.LoadFromFile(path)
}

// parseYAML decodes strictly: unknown fields are an error.
func parseYAML(data []byte) (EngineConfig, error) {
	var cfg EngineConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return EngineConfig{}, ports.ErrConfigNotFound
		}
		return EngineConfig{}, fmt.Errorf("YAML decode failed: %w", err)
	}
	return cfg, nil
}

var (
	semverPattern     = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+$`)
	metricNamePattern = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)
)

func registerCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}
	if err := v.RegisterValidation("metricname", validateMetricName); err != nil {
		return fmt.Errorf("failed to register metricname validator: %w", err)
	}
	return nil
}

// validateSemver accepts X.Y.Z with non-negative integer parts.
func validateSemver(fl validator.FieldLevel) bool {
	return semverPattern.MatchString(fl.Field().String())
}

// validateMetricName enforces the Prometheus metric name grammar.
func validateMetricName(fl validator.FieldLevel) bool {
	return metricNamePattern.MatchString(fl.Field().String())
}
