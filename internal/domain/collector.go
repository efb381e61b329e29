package domain

// Characteristics advertises properties of a reduction that a driver may
// exploit.
type Characteristics struct {
	// Unordered reports that the result's membership does not depend on
	// the order elements are fed in. Drivers may then scatter elements
	// across partitions arbitrarily; only the sequence of the result may
	// change.
	Unordered bool
}

// Collector bundles the four steps of the max-rated winners reduction:
// an initializer, accumulate, combine and finish.
// A Collector is stateless and safe for concurrent use; every Accumulator
// it creates is not.
type Collector[T any] struct {
	scorer FallibleScorer[T]
}

// MaxRatedWinners returns a Collector gathering every element that shares
// the highest score assigned by scorer.
//
// Example:
//
//	c, err := domain.MaxRatedWinners(func(e Entry) domain.Score { return domain.Score(e.Rating) })
//	acc := c.New()
//	for _, e := range entries {
//	    _ = c.Accumulate(acc, e)
//	}
//	winners := c.Finish(acc)
func MaxRatedWinners[T any](scorer Scorer[T]) (*Collector[T], error) {
	if scorer == nil {
		return nil, ErrNilScorer
	}
	return &Collector[T]{scorer: scorer.fallible()}, nil
}

// MaxRatedWinnersFallible is MaxRatedWinners for scorers that can fail.
func MaxRatedWinnersFallible[T any](scorer FallibleScorer[T]) (*Collector[T], error) {
	if scorer == nil {
		return nil, ErrNilScorer
	}
	return &Collector[T]{scorer: scorer}, nil
}

// New returns a fresh, empty Accumulator.
func (c *Collector[T]) New() *Accumulator[T] { return NewFallibleAccumulator(c.scorer) }

// Accumulate folds v into acc.
func (c *Collector[T]) Accumulate(acc *Accumulator[T], v T) error { return acc.Accumulate(v) }

// Combine merges right into left and returns left. right is consumed.
func (c *Collector[T]) Combine(left, right *Accumulator[T]) (*Accumulator[T], error) {
	if err := left.Combine(right); err != nil {
		return nil, err
	}
	return left, nil
}

// Finish returns the winners collected by acc.
func (c *Collector[T]) Finish(acc *Accumulator[T]) []T { return acc.Finish() }

// Characteristics reports that the winners' membership is independent of
// encounter order.
func (c *Collector[T]) Characteristics() Characteristics {
	return Characteristics{Unordered: true}
}

// Size returns the number of winners in a finished result.
func (c *Collector[T]) Size(winners []T) int { return len(winners) }
