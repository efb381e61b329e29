package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors raised while configuring or planning a
// reduction.
var (
	// ErrConfigNotFound indicates that required configuration is missing.
	ErrConfigNotFound = errors.New("configuration not found")

	// ErrUnknownPartitioner indicates that a partitioner type is not
	// registered.
	ErrUnknownPartitioner = errors.New("unknown partitioner")

	// ErrInvalidPlan indicates that a partitioner produced a plan that does
	// not cover every index exactly once or contains an empty group.
	ErrInvalidPlan = errors.New("invalid partition plan")
)

// ConfigError represents an error from configuration operations.
type ConfigError struct {
	// ConfigKey is the configuration key that was involved in the failed
	// operation.
	ConfigKey string

	// Err is the underlying error that caused the configuration operation
	// to fail.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{
		ConfigKey: key,
		Err:       err,
	}
}
