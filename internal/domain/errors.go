package domain

import (
	"errors"
	"fmt"
)

// Common domain errors returned by Accumulator and Collector.
var (
	// ErrNilScorer indicates that a Collector was requested without a scorer.
	ErrNilScorer = errors.New("scorer cannot be nil")

	// ErrAccumulatorFinished indicates an attempt to mutate an Accumulator
	// after its winners were read with Finish.
	ErrAccumulatorFinished = errors.New("accumulator already finished")

	// ErrAccumulatorConsumed indicates an attempt to use an Accumulator that
	// was merged into another one by Combine.
	ErrAccumulatorConsumed = errors.New("accumulator consumed by combine")

	// ErrSelfCombine indicates an attempt to combine an Accumulator with itself.
	ErrSelfCombine = errors.New("accumulator cannot be combined with itself")
)

// PartitionError reports which partition of a reduction failed and during
// which step. It wraps the original error without altering it, so callers
// can still match scorer failures with errors.Is and errors.As.
type PartitionError struct {
	// Partition is the zero-based index of the failing partition, or -1
	// when the failure happened while combining partial results.
	Partition int

	// Op is the reduction step that failed ("accumulate" or "combine").
	Op string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for PartitionError.
func (e *PartitionError) Error() string {
	return fmt.Sprintf("partition error: op=%s, partition=%d, err=%v", e.Op, e.Partition, e.Err)
}

// Unwrap returns the underlying error.
func (e *PartitionError) Unwrap() error { return e.Err }

// NewPartitionError creates a new PartitionError with the given details.
func NewPartitionError(partition int, op string, err error) *PartitionError {
	return &PartitionError{
		Partition: partition,
		Op:        op,
		Err:       err,
	}
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
