// Package scorers provides ready-made domain scorers for common
// max-rated winner queries.
package scorers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-podium/internal/domain"
)

// Common errors returned by scorers.
var (
	// ErrUnknownKey is returned by a Lookup scorer for keys missing from
	// its table.
	ErrUnknownKey = errors.New("key not found in rating table")

	// ErrStringTooLong is returned by Similarity for inputs above the
	// configured length limit.
	ErrStringTooLong = errors.New("string exceeds length limit")
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// Lookup scores keys by their rating in table. Missing keys fail with
// ErrUnknownKey. The table is read, never written, so it may be shared by
// concurrent partitions as long as callers do not mutate it mid-run.
func Lookup[K comparable](table map[K]int64) domain.FallibleScorer[K] {
	return func(k K) (domain.Score, error) {
		rating, ok := table[k]
		if !ok {
			return 0, fmt.Errorf("%w: %v", ErrUnknownKey, k)
		}
		return domain.Score(rating), nil
	}
}

// Field scores values by an int64 field extracted with get.
func Field[T any](get func(T) int64) domain.Scorer[T] {
	return func(v T) domain.Score { return domain.Score(get(v)) }
}
