// Package ports defines the interfaces that connect the reduction core to
// the drivers, partitioners and observability adapters around it.
package ports

import (
	"github.com/ahrav/go-podium/internal/domain"
)

// Reduction is the shape every driver in this module knows how to run:
// T is the element type, A the mutable accumulator, R the finished result.
// It mirrors the supplier/accumulator/combiner/finisher quadruple of
// generic fold facilities.
//
// Implementations must make Combine associative. A driver may call New
// once per partition and hands each accumulator to a single goroutine.
type Reduction[T, A, R any] interface {
	// New returns a fresh accumulator.
	New() A

	// Accumulate folds v into acc. Errors abort the reduction and are
	// propagated to the driver's caller.
	Accumulate(acc A, v T) error

	// Combine merges right into left and returns the merged accumulator.
	// right must not be used afterwards.
	Combine(left, right A) (A, error)

	// Finish turns the accumulator into the final result.
	Finish(acc A) R

	// Characteristics advertises properties the driver may exploit.
	Characteristics() domain.Characteristics
}

// ResultSizer is an optional capability of a Reduction that lets drivers
// report the size of a finished result to observers.
type ResultSizer[R any] interface {
	Size(result R) int
}
