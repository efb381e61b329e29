package partition

import (
	"fmt"

	"github.com/ahrav/go-podium/internal/ports"
)

var _ ports.Partitioner = (*RoundRobin)(nil)

// RoundRobinConfig defines the fan-out of a RoundRobin partitioner.
type RoundRobinConfig struct {
	// Partitions is the number of groups elements are dealt into.
	Partitions int `yaml:"partitions" json:"partitions" validate:"required,min=1,max=65536"`
}

// RoundRobin deals element i into group i % Partitions. Neighbouring
// elements land in different groups, so it does not preserve order and
// only suits unordered reductions.
type RoundRobin struct {
	config RoundRobinConfig
}

// NewRoundRobin creates a RoundRobin partitioner after validating config.
func NewRoundRobin(config RoundRobinConfig) (*RoundRobin, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &RoundRobin{config: config}, nil
}

// CreateRoundRobin is the registry factory for RoundRobin.
func CreateRoundRobin(params map[string]any) (*RoundRobin, error) {
	partitions, _, err := intParam(params, "partitions")
	if err != nil {
		return nil, err
	}
	return NewRoundRobin(RoundRobinConfig{Partitions: partitions})
}

// Name returns the registered type name.
func (rr *RoundRobin) Name() string { return TypeRoundRobin }

// Partition deals [0, n) across min(Partitions, n) groups.
func (rr *RoundRobin) Partition(n int) ([][]int, error) {
	if n < 0 {
		return nil, ErrNegativeCount
	}
	if n == 0 {
		return nil, nil
	}

	k := min(rr.config.Partitions, n)
	groups := make([][]int, k)
	for i := range n {
		groups[i%k] = append(groups[i%k], i)
	}
	return groups, nil
}

// PreservesOrder always reports false.
func (rr *RoundRobin) PreservesOrder() bool { return false }
