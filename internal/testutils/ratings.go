// Package testutils provides fixtures and data generators shared by the
// project's test suites. It is not part of the public API.
package testutils

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"

	"github.com/ahrav/go-podium/internal/domain"
)

// Rating pairs a name with its score.
type Rating struct {
	Name  string
	Value int64
}

// String renders the rating as Name=Value.
func (r Rating) String() string { return fmt.Sprintf("%s=%d", r.Name, r.Value) }

// RatingScorer scores a Rating by its Value.
func RatingScorer(r Rating) domain.Score { return domain.Score(r.Value) }

// Surnames returns the seven-entry surname roster. Golubev and Kukushkin
// share the top rating of 7.
func Surnames() []Rating {
	return []Rating{
		{Name: "Ivanov", Value: 5},
		{Name: "Petrov", Value: 5},
		{Name: "Sidorov", Value: 3},
		{Name: "Golubev", Value: 7},
		{Name: "Spiridonov", Value: 1},
		{Name: "Kukushkin", Value: 7},
		{Name: "Antonov", Value: 3},
	}
}

// SurnameTable returns Surnames as a name to rating map.
func SurnameTable() map[string]int64 {
	table := make(map[string]int64)
	for _, r := range Surnames() {
		table[r.Name] = r.Value
	}
	return table
}

// GenerateRatings creates size ratings with unique names and values in
// [0, maxValue]. A small maxValue produces many ties. The same seed always
// yields the same slice.
func GenerateRatings(size int, maxValue int64, seed int64) []Rating {
	rng := rand.New(rand.NewSource(seed))

	out := make([]Rating, size)
	for i := range out {
		out[i] = Rating{
			Name:  fmt.Sprintf("r%06d", i),
			Value: rng.Int63n(maxValue + 1),
		}
	}
	return out
}

// ExpectedWinners computes the top-rated ratings with a plain scan, in input
// order.
func ExpectedWinners(ratings []Rating) []Rating {
	out := make([]Rating, 0)
	for _, r := range ratings {
		switch {
		case len(out) == 0 || r.Value > out[0].Value:
			out = append(out[:0], r)
		case r.Value == out[0].Value:
			out = append(out, r)
		}
	}
	return out
}

// SortByName returns a copy of ratings sorted by name, for comparisons that
// ignore encounter order.
func SortByName(ratings []Rating) []Rating {
	out := slices.Clone(ratings)
	slices.SortFunc(out, func(a, b Rating) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Shuffle returns a copy of ratings permuted with rng.
func Shuffle(rng *rand.Rand, ratings []Rating) []Rating {
	out := slices.Clone(ratings)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
