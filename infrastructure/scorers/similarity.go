package scorers

import (
	"fmt"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-podium/internal/domain"
)

// DefaultMaxStringLength bounds the inputs compared by Similarity.
const DefaultMaxStringLength = 4096

// SimilarityConfig defines how Similarity compares strings.
type SimilarityConfig struct {
	// CaseSensitive disables Unicode case folding before comparison.
	CaseSensitive bool `yaml:"case_sensitive" json:"case_sensitive"`

	// MaxLength is the longest input, in runes, that may be scored.
	MaxLength int `yaml:"max_length" json:"max_length" validate:"min=1,max=65536"`
}

// DefaultSimilarityConfig returns a case-insensitive configuration.
func DefaultSimilarityConfig() SimilarityConfig {
	return SimilarityConfig{
		CaseSensitive: false,
		MaxLength:     DefaultMaxStringLength,
	}
}

// Similarity returns a scorer that ranks strings by closeness to target:
// the score is the negated Levenshtein distance, so the winners of a
// max-rated reduction are all strings at the minimal edit distance.
func Similarity(target string, config SimilarityConfig) (domain.FallibleScorer[string], error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if n := utf8.RuneCountInString(target); n > config.MaxLength {
		return nil, fmt.Errorf("%w: target has %d runes, limit %d", ErrStringTooLong, n, config.MaxLength)
	}

	prepare := func(s string) string { return s }
	if !config.CaseSensitive {
		// A Caser is stateful and partitions score concurrently, so each
		// call takes its own.
		prepare = func(s string) string { return cases.Fold().String(s) }
	}
	preparedTarget := prepare(target)

	return func(candidate string) (domain.Score, error) {
		if n := utf8.RuneCountInString(candidate); n > config.MaxLength {
			return 0, fmt.Errorf("%w: candidate has %d runes, limit %d", ErrStringTooLong, n, config.MaxLength)
		}
		distance := levenshtein.ComputeDistance(prepare(candidate), preparedTarget)
		return domain.Score(-distance), nil
	}, nil
}
