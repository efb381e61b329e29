package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-podium/infrastructure/partition"
	"github.com/ahrav/go-podium/internal/domain"
	"github.com/ahrav/go-podium/internal/ports"
	"github.com/ahrav/go-podium/internal/testutils"
)

// concatReduction joins strings in encounter order. It is not Unordered.
type concatReduction struct{}

func (concatReduction) New() *strings.Builder { return &strings.Builder{} }

func (concatReduction) Accumulate(b *strings.Builder, s string) error {
	b.WriteString(s)
	return nil
}

func (concatReduction) Combine(l, r *strings.Builder) (*strings.Builder, error) {
	l.WriteString(r.String())
	return l, nil
}

func (concatReduction) Finish(b *strings.Builder) string { return b.String() }

func (concatReduction) Characteristics() domain.Characteristics {
	return domain.Characteristics{}
}

var errUnrated = errors.New("no rating on file")

// partitionings covers every built-in partitioner with both schedules.
func partitionings() []EngineConfig {
	plans := []struct {
		typ    string
		params map[string]any
	}{
		{partition.TypeSingle, nil},
		{partition.TypeChunked, map[string]any{"partitions": 3}},
		{partition.TypeChunked, map[string]any{"chunk_size": 1}},
		{partition.TypeChunked, map[string]any{"partitions": 64}},
		{partition.TypeRoundRobin, map[string]any{"partitions": 2}},
		{partition.TypeRoundRobin, map[string]any{"partitions": 5}},
		{partition.TypeHashed, map[string]any{"partitions": 4, "seed": 1}},
		{partition.TypeHashed, map[string]any{"partitions": 7, "seed": 99}},
	}

	var out []EngineConfig
	for _, p := range plans {
		for _, schedule := range []string{ScheduleLinear, ScheduleTree} {
			cfg := engineConfig(p.typ, p.params, schedule)
			cfg.Name = fmt.Sprintf("%s-%v-%s", p.typ, p.params, schedule)
			out = append(out, cfg)
		}
	}
	return out
}

func TestCollectWinners_Surnames(t *testing.T) {
	for _, cfg := range partitionings() {
		t.Run(cfg.Name, func(t *testing.T) {
			eng := newTestEngine(t, cfg)

			winners, err := CollectWinners(context.Background(), eng, testutils.Surnames(), testutils.RatingScorer)
			require.NoError(t, err)
			assert.ElementsMatch(t, []testutils.Rating{{Name: "Golubev", Value: 7}, {Name: "Kukushkin", Value: 7}}, winners)
		})
	}
}

func TestCollectWinners_EmptyInput(t *testing.T) {
	for _, cfg := range partitionings() {
		t.Run(cfg.Name, func(t *testing.T) {
			eng := newTestEngine(t, cfg)

			winners, err := CollectWinners(context.Background(), eng, nil, testutils.RatingScorer)
			require.NoError(t, err)
			assert.NotNil(t, winners)
			assert.Empty(t, winners)
		})
	}
}

func TestCollectWinners_AllTies(t *testing.T) {
	items := testutils.GenerateRatings(50, 0, 3)

	for _, cfg := range partitionings() {
		t.Run(cfg.Name, func(t *testing.T) {
			eng := newTestEngine(t, cfg)

			winners, err := CollectWinners(context.Background(), eng, items, testutils.RatingScorer)
			require.NoError(t, err)
			assert.ElementsMatch(t, items, winners)
		})
	}
}

// TestCollectWinners_MatchesScan compares every engine configuration against
// a plain scan on random inputs with many ties.
func TestCollectWinners_MatchesScan(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	configs := partitionings()

	for round := range 100 {
		items := testutils.GenerateRatings(rng.Intn(300), int64(rng.Intn(5)), int64(round))
		items = testutils.Shuffle(rng, items)
		want := testutils.ExpectedWinners(items)

		cfg := configs[rng.Intn(len(configs))]
		cfg.MaxConcurrency = 1 + rng.Intn(8)
		cfg.CheckEvery = 1 + rng.Intn(16)
		eng := newTestEngine(t, cfg)

		got, err := CollectWinners(context.Background(), eng, items, testutils.RatingScorer)
		require.NoError(t, err)
		require.Equal(t, testutils.SortByName(want), testutils.SortByName(got), "round %d with %s", round, cfg.Name)
	}
}

func TestCollectWinners_OrderPreservingPlansKeepEncounterOrder(t *testing.T) {
	items := testutils.Shuffle(rand.New(rand.NewSource(5)), testutils.GenerateRatings(500, 2, 8))
	want := testutils.ExpectedWinners(items)

	for _, cfg := range partitionings() {
		eng := newTestEngine(t, cfg)
		if !eng.Partitioner().PreservesOrder() {
			continue
		}
		t.Run(cfg.Name, func(t *testing.T) {
			got, err := CollectWinners(context.Background(), eng, items, testutils.RatingScorer)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestReduce_Combines(t *testing.T) {
	tests := []struct {
		schedule string
		want     int
	}{
		{ScheduleLinear, 4},
		{ScheduleTree, 4},
	}

	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			obs := &recordingObserver{}
			eng := newTestEngine(t,
				engineConfig(partition.TypeChunked, map[string]any{"partitions": 5}, tt.schedule),
				WithObserver(obs),
			)

			_, err := CollectWinners(context.Background(), eng, testutils.Surnames(), testutils.RatingScorer)
			require.NoError(t, err)

			require.Len(t, obs.infos, 1)
			assert.Equal(t, 5, obs.infos[0].Partitions)
			assert.Equal(t, 7, obs.infos[0].Elements)
			assert.True(t, obs.infos[0].Unordered)
			assert.Equal(t, tt.schedule, obs.infos[0].Schedule)

			require.Len(t, obs.stats, 1)
			assert.Equal(t, tt.want, obs.stats[0].Combines)
			assert.Equal(t, 2, obs.stats[0].ResultSize)
			assert.NoError(t, obs.errs[0])
		})
	}
}

func TestReduce_OrderedReduction(t *testing.T) {
	words := []string{"a", "b", "c", "d", "e", "f", "g"}

	t.Run("order preserving", func(t *testing.T) {
		for _, schedule := range []string{ScheduleLinear, ScheduleTree} {
			eng := newTestEngine(t, engineConfig(partition.TypeChunked, map[string]any{"chunk_size": 2}, schedule))

			got, err := Reduce(context.Background(), eng, concatReduction{}, words)
			require.NoError(t, err)
			assert.Equal(t, "abcdefg", got)
		}
	})

	t.Run("scattering partitioner refused", func(t *testing.T) {
		obs := &recordingObserver{}
		eng := newTestEngine(t,
			engineConfig(partition.TypeRoundRobin, map[string]any{"partitions": 3}, ScheduleLinear),
			WithObserver(obs),
		)

		_, err := Reduce(context.Background(), eng, concatReduction{}, words)
		assert.ErrorIs(t, err, ErrOrderedReduction)
		assert.Empty(t, obs.infos)
	})
}

func TestReduce_ScorerError(t *testing.T) {
	table := testutils.SurnameTable()
	delete(table, "Sidorov")
	scorer := func(r testutils.Rating) (domain.Score, error) {
		v, ok := table[r.Name]
		if !ok {
			return 0, fmt.Errorf("%s: %w", r.Name, errUnrated)
		}
		return domain.Score(v), nil
	}

	obs := &recordingObserver{}
	eng := newTestEngine(t,
		engineConfig(partition.TypeChunked, map[string]any{"chunk_size": 1}, ScheduleTree),
		WithObserver(obs),
	)

	_, err := CollectWinnersFallible(context.Background(), eng, testutils.Surnames(), scorer)
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnrated)

	var partErr *domain.PartitionError
	require.ErrorAs(t, err, &partErr)
	assert.Equal(t, 2, partErr.Partition)
	assert.Equal(t, "accumulate", partErr.Op)

	require.Len(t, obs.errs, 1)
	assert.ErrorIs(t, obs.errs[0], errUnrated)
	assert.Equal(t, -1, obs.stats[0].ResultSize)
}

func TestReduce_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, cfg := range partitionings() {
		t.Run(cfg.Name, func(t *testing.T) {
			eng := newTestEngine(t, cfg)

			_, err := CollectWinners(ctx, eng, testutils.Surnames(), testutils.RatingScorer)
			assert.ErrorIs(t, err, context.Canceled)

			_, err = CollectWinners(ctx, eng, nil, testutils.RatingScorer)
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestReduce_CancelMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := engineConfig(partition.TypeChunked, map[string]any{"partitions": 2}, ScheduleLinear)
	cfg.CheckEvery = 1
	cfg.MaxConcurrency = 1
	eng := newTestEngine(t, cfg)

	seen := 0
	scorer := func(r testutils.Rating) domain.Score {
		seen++
		if seen == 10 {
			cancel()
		}
		return domain.Score(r.Value)
	}

	_, err := CollectWinners(ctx, eng, testutils.GenerateRatings(100, 5, 1), scorer)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, seen, 100)
}

func TestReduce_NilScorer(t *testing.T) {
	eng := newTestEngine(t, DefaultEngineConfig("nil"))

	_, err := CollectWinners[testutils.Rating](context.Background(), eng, testutils.Surnames(), nil)
	assert.ErrorIs(t, err, domain.ErrNilScorer)

	_, err = CollectWinnersFallible[testutils.Rating](context.Background(), eng, testutils.Surnames(), nil)
	assert.ErrorIs(t, err, domain.ErrNilScorer)
}

func TestReduce_ConcurrentRuns(t *testing.T) {
	eng := newTestEngine(t, engineConfig(partition.TypeHashed, map[string]any{"partitions": 8}, ScheduleTree))
	items := testutils.GenerateRatings(2000, 10, 21)
	want := testutils.SortByName(testutils.ExpectedWinners(items))

	errs := make(chan error, 8)
	for range 8 {
		go func() {
			got, err := CollectWinners(context.Background(), eng, items, testutils.RatingScorer)
			if err == nil && !slices.Equal(want, testutils.SortByName(got)) {
				err = fmt.Errorf("got %d winners, want %d", len(got), len(want))
			}
			errs <- err
		}()
	}
	for range 8 {
		assert.NoError(t, <-errs)
	}
}

func TestReduceSequential(t *testing.T) {
	collector, err := domain.MaxRatedWinners(testutils.RatingScorer)
	require.NoError(t, err)

	t.Run("surnames", func(t *testing.T) {
		got, err := ReduceSequential(context.Background(), collector, slices.Values(testutils.Surnames()))
		require.NoError(t, err)
		assert.Equal(t, []testutils.Rating{{Name: "Golubev", Value: 7}, {Name: "Kukushkin", Value: 7}}, got)
	})

	t.Run("empty", func(t *testing.T) {
		got, err := ReduceSequential(context.Background(), collector, slices.Values([]testutils.Rating(nil)))
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := ReduceSequential(ctx, collector, slices.Values(testutils.Surnames()))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("scorer error", func(t *testing.T) {
		failing, err := domain.MaxRatedWinnersFallible(func(testutils.Rating) (domain.Score, error) {
			return 0, errUnrated
		})
		require.NoError(t, err)

		_, err = ReduceSequential(context.Background(), failing, slices.Values(testutils.Surnames()))
		assert.ErrorIs(t, err, errUnrated)
	})

	t.Run("ordered reduction", func(t *testing.T) {
		got, err := ReduceSequential(context.Background(), ports.Reduction[string, *strings.Builder, string](concatReduction{}), slices.Values([]string{"x", "y"}))
		require.NoError(t, err)
		assert.Equal(t, "xy", got)
	})
}
