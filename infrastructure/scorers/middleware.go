package scorers

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/ahrav/go-podium/internal/domain"
)

// Middleware wraps a scorer with additional behavior.
type Middleware[T any] func(next domain.FallibleScorer[T]) domain.FallibleScorer[T]

// Chain applies middlewares to scorer. The first middleware is the
// outermost one.
func Chain[T any](scorer domain.FallibleScorer[T], mws ...Middleware[T]) domain.FallibleScorer[T] {
	for i := len(mws) - 1; i >= 0; i-- {
		scorer = mws[i](scorer)
	}
	return scorer
}

// RateLimit paces calls to the wrapped scorer with a token bucket shared by
// every partition. limit is calls per second and burst the number of calls
// allowed at once. Waiting stops when ctx is done, and the scorer then fails
// with the context's error. ctx is captured for the scorer's whole lifetime,
// so it must outlive every reduction the wrapped scorer takes part in; pass
// the reduction's own context when the scorer is built per run.
func RateLimit[T any](ctx context.Context, limit rate.Limit, burst int) Middleware[T] {
	limiter := rate.NewLimiter(limit, burst)

	return func(next domain.FallibleScorer[T]) domain.FallibleScorer[T] {
		return func(v T) (domain.Score, error) {
			if err := limiter.Wait(ctx); err != nil {
				return 0, fmt.Errorf("rate limit: %w", err)
			}
			return next(v)
		}
	}
}
