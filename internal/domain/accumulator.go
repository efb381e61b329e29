package domain

import "slices"

// accumulatorPhase tracks where an Accumulator is in its lifecycle.
type accumulatorPhase uint8

const (
	phaseOpen accumulatorPhase = iota
	phaseFinished
	phaseConsumed
)

// Accumulator is the mutable partial result of a max-rated winners
// reduction. It keeps the highest score seen so far together with every
// element that reached it, in encounter order.
//
// An Accumulator is owned by a single goroutine at a time. Parallel
// reductions give every partition its own Accumulator and merge them
// afterwards with Combine.
type Accumulator[T any] struct {
	rate    FallibleScorer[T]
	max     Score
	winners []T
	phase   accumulatorPhase
}

// NewAccumulator returns an empty Accumulator that ranks elements with
// scorer. The scorer must not be nil.
func NewAccumulator[T any](scorer Scorer[T]) *Accumulator[T] {
	return NewFallibleAccumulator(scorer.fallible())
}

// NewFallibleAccumulator returns an empty Accumulator whose scorer may fail.
// The scorer must not be nil.
func NewFallibleAccumulator[T any](scorer FallibleScorer[T]) *Accumulator[T] {
	return &Accumulator[T]{
		rate:    scorer,
		max:     MinScore,
		winners: make([]T, 0),
	}
}

// Accumulate scores v and folds it into the accumulator:
//   - a higher score makes v the only winner,
//   - an equal score appends v to the winners,
//   - a lower score drops v.
//
// A scorer error is returned as is and leaves the accumulator unchanged.
func (a *Accumulator[T]) Accumulate(v T) error {
	if err := a.checkOpen(); err != nil {
		return err
	}

	score, err := a.rate(v)
	if err != nil {
		return err
	}

	switch {
	case score > a.max:
		a.max = score
		a.winners = append(a.winners[:0], v)
	case score == a.max:
		a.winners = append(a.winners, v)
	}
	return nil
}

// Combine merges other into a. If other holds a higher score its winners
// replace a's; on equal scores other's winners are appended after a's;
// otherwise a is left unchanged.
//
// Combine takes ownership of other: other is marked consumed and must not
// be used again. Both accumulators must still be open.
func (a *Accumulator[T]) Combine(other *Accumulator[T]) error {
	if a == other {
		return ErrSelfCombine
	}
	if err := a.checkOpen(); err != nil {
		return err
	}
	if err := other.checkOpen(); err != nil {
		return err
	}

	switch {
	case other.max > a.max:
		a.max = other.max
		a.winners = other.winners
	case other.max == a.max:
		a.winners = append(a.winners, other.winners...)
	}

	other.winners = nil
	other.phase = phaseConsumed
	return nil
}

// Finish returns the collected winners and closes the accumulator for
// further Accumulate and Combine calls. It may be called repeatedly and
// always returns the same content. The returned slice is a copy.
func (a *Accumulator[T]) Finish() []T {
	if a.phase == phaseOpen {
		a.phase = phaseFinished
	}
	return slices.Clone(a.winners)
}

// Max returns the highest score seen so far, or MinScore if nothing has
// been accumulated.
func (a *Accumulator[T]) Max() Score { return a.max }

// Len returns the number of current winners.
func (a *Accumulator[T]) Len() int { return len(a.winners) }

// Empty reports whether no element has been collected.
func (a *Accumulator[T]) Empty() bool { return len(a.winners) == 0 }

func (a *Accumulator[T]) checkOpen() error {
	switch a.phase {
	case phaseFinished:
		return ErrAccumulatorFinished
	case phaseConsumed:
		return ErrAccumulatorConsumed
	default:
		return nil
	}
}
