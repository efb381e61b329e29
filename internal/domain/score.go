// Package domain contains the pure, dependency-free reduction primitives
// for collecting the co-winners of a scored sequence.
package domain

import "math"

// Score is the rank assigned to an element by a Scorer.
// Scores are compared with the built-in integer ordering, so any two
// scores are always comparable.
type Score int64

// MinScore is the sentinel every fresh Accumulator starts from. It is lower
// than or equal to any score a Scorer can produce.
const MinScore Score = math.MinInt64

// Scorer maps an element to its Score.
// A Scorer must be pure: the same element must always yield the same score,
// otherwise the result of combining partial reductions is undefined.
type Scorer[T any] func(T) Score

// FallibleScorer is a Scorer that may fail for a given element.
// A returned error is handed back to the caller unmodified.
type FallibleScorer[T any] func(T) (Score, error)

// fallible lifts an infallible Scorer into the FallibleScorer shape used
// internally by Accumulator.
func (s Scorer[T]) fallible() FallibleScorer[T] {
	return func(v T) (Score, error) { return s(v), nil }
}
