package application

import (
	"context"
	"fmt"
	"iter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-podium/internal/domain"
	"github.com/ahrav/go-podium/internal/ports"
)

// combinePartition is the partition index reported for combine failures.
const combinePartition = -1

// Reduce runs red over items on the engine. Partitions are accumulated
// concurrently, at most MaxConcurrency at a time, and merged with the
// engine's combine schedule. Accumulation and combine errors are wrapped in
// *domain.PartitionError; the first failure cancels the remaining work.
func Reduce[T, A, R any](
	ctx context.Context,
	eng *Engine,
	red ports.Reduction[T, A, R],
	items []T,
) (R, error) {
	var zero R
	start := time.Now()

	chars := red.Characteristics()
	if !chars.Unordered && !eng.partitioner.PreservesOrder() {
		return zero, fmt.Errorf("%w: %s", ErrOrderedReduction, eng.partitioner.Name())
	}

	groups, err := eng.plan(len(items))
	if err != nil {
		return zero, err
	}

	info := ports.ReductionInfo{
		Name:        eng.name,
		Partitioner: eng.partitioner.Name(),
		Schedule:    eng.schedule,
		Elements:    len(items),
		Partitions:  len(groups),
		Unordered:   chars.Unordered,
	}
	if eng.observer != nil {
		ctx = eng.observer.PreReduce(ctx, info)
	}
	eng.logger.Debug().
		Str("partitioner", info.Partitioner).
		Str("schedule", info.Schedule).
		Int("elements", info.Elements).
		Int("partitions", info.Partitions).
		Msg("reduction planned")

	result, combines, err := run(ctx, eng, red, items, groups)

	stats := ports.ReductionStats{Elapsed: time.Since(start), Combines: combines, ResultSize: -1}
	if err == nil {
		if sizer, ok := any(red).(ports.ResultSizer[R]); ok {
			stats.ResultSize = sizer.Size(result)
		}
	}
	if eng.observer != nil {
		eng.observer.PostReduce(ctx, info, stats, err)
	}

	if err != nil {
		eng.logger.Error().Err(err).Dur("elapsed", stats.Elapsed).Msg("reduction failed")
		return zero, err
	}
	eng.logger.Debug().
		Dur("elapsed", stats.Elapsed).
		Int("combines", stats.Combines).
		Int("result_size", stats.ResultSize).
		Msg("reduction finished")
	return result, nil
}

func run[T, A, R any](
	ctx context.Context,
	eng *Engine,
	red ports.Reduction[T, A, R],
	items []T,
	groups [][]int,
) (R, int, error) {
	var zero R
	if len(groups) == 0 {
		if err := ctx.Err(); err != nil {
			return zero, 0, err
		}
		return red.Finish(red.New()), 0, nil
	}

	partials, err := accumulatePartitions(ctx, eng, red, items, groups)
	if err != nil {
		return zero, 0, err
	}

	var acc A
	var combines int
	if eng.schedule == ScheduleTree {
		acc, combines, err = combineTree(ctx, eng.maxConcurrency, red, partials)
	} else {
		acc, combines, err = combineLinear(ctx, red, partials)
	}
	if err != nil {
		return zero, combines, err
	}
	return red.Finish(acc), combines, nil
}

// accumulatePartitions folds each group into its own accumulator. partials[i]
// belongs to groups[i].
func accumulatePartitions[T, A, R any](
	ctx context.Context,
	eng *Engine,
	red ports.Reduction[T, A, R],
	items []T,
	groups [][]int,
) ([]A, error) {
	partials := make([]A, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(eng.maxConcurrency)
	for i, group := range groups {
		g.Go(func() error {
			acc := red.New()
			for j, idx := range group {
				if j%eng.checkEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				if err := red.Accumulate(acc, items[idx]); err != nil {
					return domain.NewPartitionError(i, "accumulate", err)
				}
			}
			partials[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return partials, nil
}

// combineLinear folds partials left to right.
func combineLinear[T, A, R any](
	ctx context.Context,
	red ports.Reduction[T, A, R],
	partials []A,
) (A, int, error) {
	acc := partials[0]
	combines := 0
	for i := 1; i < len(partials); i++ {
		if err := ctx.Err(); err != nil {
			return acc, combines, err
		}
		merged, err := red.Combine(acc, partials[i])
		if err != nil {
			return acc, combines, domain.NewPartitionError(combinePartition, "combine", err)
		}
		acc = merged
		combines++
	}
	return acc, combines, nil
}

// combineTree merges adjacent pairs level by level. The pairs of one level
// are independent and run concurrently; left operands always precede right
// ones, so the result matches combineLinear for order-preserving plans.
func combineTree[T, A, R any](
	ctx context.Context,
	limit int,
	red ports.Reduction[T, A, R],
	partials []A,
) (A, int, error) {
	level := partials
	combines := 0
	for len(level) > 1 {
		if err := ctx.Err(); err != nil {
			return level[0], combines, err
		}

		next := make([]A, (len(level)+1)/2)
		var g errgroup.Group
		g.SetLimit(limit)
		for i := 0; i+1 < len(level); i += 2 {
			g.Go(func() error {
				merged, err := red.Combine(level[i], level[i+1])
				if err != nil {
					return domain.NewPartitionError(combinePartition, "combine", err)
				}
				next[i/2] = merged
				return nil
			})
		}
		if len(level)%2 == 1 {
			next[len(next)-1] = level[len(level)-1]
		}
		if err := g.Wait(); err != nil {
			return level[0], combines, err
		}

		combines += len(level) / 2
		level = next
	}
	return level[0], combines, nil
}

// ReduceSequential folds every element of seq into a single accumulator on
// the calling goroutine, polling ctx every DefaultCheckEvery elements. It
// suits streams whose length is unknown up front.
func ReduceSequential[T, A, R any](
	ctx context.Context,
	red ports.Reduction[T, A, R],
	seq iter.Seq[T],
) (R, error) {
	var zero R
	acc := red.New()
	n := 0
	for v := range seq {
		if n%DefaultCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return zero, err
			}
		}
		if err := red.Accumulate(acc, v); err != nil {
			return zero, domain.NewPartitionError(0, "accumulate", err)
		}
		n++
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	return red.Finish(acc), nil
}

// CollectWinners returns every element of items that shares the highest
// score.
func CollectWinners[T any](ctx context.Context, eng *Engine, items []T, scorer domain.Scorer[T]) ([]T, error) {
	collector, err := domain.MaxRatedWinners(scorer)
	if err != nil {
		return nil, err
	}
	return Reduce(ctx, eng, collector, items)
}

// CollectWinnersFallible is CollectWinners for scorers that can fail.
func CollectWinnersFallible[T any](
	ctx context.Context,
	eng *Engine,
	items []T,
	scorer domain.FallibleScorer[T],
) ([]T, error) {
	collector, err := domain.MaxRatedWinnersFallible(scorer)
	if err != nil {
		return nil, err
	}
	return Reduce(ctx, eng, collector, items)
}
