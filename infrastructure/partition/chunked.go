package partition

import (
	"fmt"

	"github.com/ahrav/go-podium/internal/ports"
)

var _ ports.Partitioner = (*Chunked)(nil)

// ChunkedConfig defines the sizing of a Chunked partitioner.
// Exactly one of Partitions and ChunkSize must be set.
type ChunkedConfig struct {
	// Partitions is the number of contiguous groups to produce. Inputs
	// shorter than Partitions get one group per element.
	Partitions int `yaml:"partitions" json:"partitions" validate:"omitempty,min=1,max=65536"`

	// ChunkSize is the number of elements per group; the last group may
	// be shorter.
	ChunkSize int `yaml:"chunk_size" json:"chunk_size" validate:"omitempty,min=1"`
}

// Chunked splits the input into contiguous runs. Concatenating its groups
// reproduces the input order, so ordered reductions may use it.
type Chunked struct {
	config ChunkedConfig
}

// NewChunked creates a Chunked partitioner after validating config.
func NewChunked(config ChunkedConfig) (*Chunked, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if config.Partitions > 0 && config.ChunkSize > 0 {
		return nil, ErrConflictingSizing
	}
	if config.Partitions == 0 && config.ChunkSize == 0 {
		return nil, fmt.Errorf("%w: one of partitions or chunk_size is required", ErrInvalidParameter)
	}
	return &Chunked{config: config}, nil
}

// CreateChunked is the registry factory for Chunked.
func CreateChunked(params map[string]any) (*Chunked, error) {
	var config ChunkedConfig

	partitions, _, err := intParam(params, "partitions")
	if err != nil {
		return nil, err
	}
	chunkSize, _, err := intParam(params, "chunk_size")
	if err != nil {
		return nil, err
	}
	config.Partitions = partitions
	config.ChunkSize = chunkSize

	return NewChunked(config)
}

// Name returns the registered type name.
func (c *Chunked) Name() string { return TypeChunked }

// Partition splits [0, n) into contiguous groups. With a partition count
// the group sizes differ by at most one, larger groups first.
func (c *Chunked) Partition(n int) ([][]int, error) {
	if n < 0 {
		return nil, ErrNegativeCount
	}
	if n == 0 {
		return nil, nil
	}

	if c.config.ChunkSize > 0 {
		groups := make([][]int, 0, (n+c.config.ChunkSize-1)/c.config.ChunkSize)
		for lo := 0; lo < n; lo += c.config.ChunkSize {
			groups = append(groups, identity(lo, min(lo+c.config.ChunkSize, n)))
		}
		return groups, nil
	}

	k := min(c.config.Partitions, n)
	base, rem := n/k, n%k
	groups := make([][]int, 0, k)
	lo := 0
	for i := range k {
		size := base
		if i < rem {
			size++
		}
		groups = append(groups, identity(lo, lo+size))
		lo += size
	}
	return groups, nil
}

// PreservesOrder always reports true.
func (c *Chunked) PreservesOrder() bool { return true }
