// Package partition provides partitioners that split a reduction's input
// into independently reducible groups. They implement ports.Partitioner.
package partition

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// Registered partitioner type names.
const (
	TypeSingle     = "single"
	TypeChunked    = "chunked"
	TypeRoundRobin = "round_robin"
	TypeHashed     = "hashed"
)

// MaxPartitions caps the number of groups any partitioner may produce.
const MaxPartitions = 65536

// Common errors returned by partitioners.
var (
	// ErrNegativeCount is returned when a plan is requested for a negative
	// number of elements.
	ErrNegativeCount = errors.New("element count cannot be negative")

	// ErrConflictingSizing is returned when both a partition count and a
	// chunk size are configured.
	ErrConflictingSizing = errors.New("partitions and chunk_size are mutually exclusive")

	// ErrInvalidParameter is returned when a factory parameter has the
	// wrong type or value.
	ErrInvalidParameter = errors.New("invalid partitioner parameter")
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// identity returns the indices [lo, hi).
func identity(lo, hi int) []int {
	out := make([]int, hi-lo)
	for i := range out {
		out[i] = lo + i
	}
	return out
}

// compact drops empty groups, keeping the order of the others.
func compact(groups [][]int) [][]int {
	out := groups[:0]
	for _, g := range groups {
		if len(g) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// intParam reads an integer parameter decoded from YAML or JSON.
// ok is false when the key is absent.
func intParam(params map[string]any, key string) (value int, ok bool, err error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return 0, false, nil
	}

	switch v := raw.(type) {
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	case uint64:
		if v > math.MaxInt {
			return 0, true, fmt.Errorf("%w: %s out of range", ErrInvalidParameter, key)
		}
		return int(v), true, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, true, fmt.Errorf("%w: %s must be an integer", ErrInvalidParameter, key)
		}
		return int(v), true, nil
	default:
		return 0, true, fmt.Errorf("%w: %s must be an integer, got %T", ErrInvalidParameter, key, raw)
	}
}

// uintParam reads an unsigned 64-bit parameter such as a hash seed.
func uintParam(params map[string]any, key string) (value uint64, ok bool, err error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return 0, false, nil
	}

	switch v := raw.(type) {
	case uint64:
		return v, true, nil
	case int:
		if v < 0 {
			return 0, true, fmt.Errorf("%w: %s cannot be negative", ErrInvalidParameter, key)
		}
		return uint64(v), true, nil
	case int64:
		if v < 0 {
			return 0, true, fmt.Errorf("%w: %s cannot be negative", ErrInvalidParameter, key)
		}
		return uint64(v), true, nil
	case float64:
		if v < 0 || v != math.Trunc(v) {
			return 0, true, fmt.Errorf("%w: %s must be a non-negative integer", ErrInvalidParameter, key)
		}
		return uint64(v), true, nil
	default:
		return 0, true, fmt.Errorf("%w: %s must be an integer, got %T", ErrInvalidParameter, key, raw)
	}
}
