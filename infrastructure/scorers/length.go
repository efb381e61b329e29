package scorers

import (
	"fmt"
	"unicode/utf8"

	"github.com/ahrav/go-podium/internal/domain"
)

// LengthConfig defines how Length ranks strings.
type LengthConfig struct {
	// Shortest ranks shorter strings higher, so the winners are the
	// shortest inputs instead of the longest.
	Shortest bool `yaml:"shortest" json:"shortest"`

	// MaxLength is the longest input, in runes, that may be scored.
	MaxLength int `yaml:"max_length" json:"max_length" validate:"min=1,max=65536"`
}

// DefaultLengthConfig returns a configuration that favors the longest
// strings.
func DefaultLengthConfig() LengthConfig {
	return LengthConfig{MaxLength: DefaultMaxStringLength}
}

// Length returns a scorer that ranks strings by their rune count. Inputs
// longer than MaxLength fail with ErrStringTooLong.
func Length(config LengthConfig) (domain.FallibleScorer[string], error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return func(s string) (domain.Score, error) {
		n := utf8.RuneCountInString(s)
		if n > config.MaxLength {
			return 0, fmt.Errorf("%w: input has %d runes, limit %d", ErrStringTooLong, n, config.MaxLength)
		}
		if config.Shortest {
			return domain.Score(-n), nil
		}
		return domain.Score(n), nil
	}, nil
}
