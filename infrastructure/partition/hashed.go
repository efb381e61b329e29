package partition

import (
	"encoding/binary"
	"fmt"

	"github.com/zeebo/xxh3"

	"github.com/ahrav/go-podium/internal/ports"
)

var _ ports.Partitioner = (*Hashed)(nil)

// HashedConfig defines the fan-out and seed of a Hashed partitioner.
type HashedConfig struct {
	// Partitions is the maximum number of groups.
	Partitions int `yaml:"partitions" json:"partitions" validate:"required,min=1,max=65536"`

	// Seed perturbs the hash. The same seed always yields the same plan.
	Seed uint64 `yaml:"seed" json:"seed"`
}

// Hashed scatters element i into group xxh3(i, Seed) % Partitions.
// Groups left empty by the hash are dropped from the plan. It does not
// preserve order; it exists to shake out reductions that silently depend
// on encounter order.
type Hashed struct {
	config HashedConfig
}

// NewHashed creates a Hashed partitioner after validating config.
func NewHashed(config HashedConfig) (*Hashed, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &Hashed{config: config}, nil
}

// CreateHashed is the registry factory for Hashed.
func CreateHashed(params map[string]any) (*Hashed, error) {
	partitions, _, err := intParam(params, "partitions")
	if err != nil {
		return nil, err
	}
	seed, _, err := uintParam(params, "seed")
	if err != nil {
		return nil, err
	}
	return NewHashed(HashedConfig{Partitions: partitions, Seed: seed})
}

// Name returns the registered type name.
func (h *Hashed) Name() string { return TypeHashed }

// Partition scatters [0, n) by hash. Indices inside a group stay ascending.
func (h *Hashed) Partition(n int) ([][]int, error) {
	if n < 0 {
		return nil, ErrNegativeCount
	}
	if n == 0 {
		return nil, nil
	}

	k := uint64(h.config.Partitions)
	groups := make([][]int, k)
	var buf [8]byte
	for i := range n {
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
		g := xxh3.HashSeed(buf[:], h.config.Seed) % k
		groups[g] = append(groups[g], i)
	}
	return compact(groups), nil
}

// PreservesOrder always reports false.
func (h *Hashed) PreservesOrder() bool { return false }
