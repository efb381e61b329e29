package partition

import (
	"github.com/ahrav/go-podium/internal/ports"
)

var _ ports.Partitioner = (*Single)(nil)

// Single puts every element into one group, turning any driver into a
// plain sequential fold.
type Single struct{}

// NewSingle creates a Single partitioner.
func NewSingle() *Single { return &Single{} }

// CreateSingle is the registry factory for Single. It accepts no parameters.
func CreateSingle(_ map[string]any) (*Single, error) { return NewSingle(), nil }

// Name returns the registered type name.
func (s *Single) Name() string { return TypeSingle }

// Partition returns one group holding [0, n), or no group when n is zero.
func (s *Single) Partition(n int) ([][]int, error) {
	if n < 0 {
		return nil, ErrNegativeCount
	}
	if n == 0 {
		return nil, nil
	}
	return [][]int{identity(0, n)}, nil
}

// PreservesOrder always reports true.
func (s *Single) PreservesOrder() bool { return true }
