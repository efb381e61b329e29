package application

import (
	"fmt"
	"slices"
	"sync"

	"github.com/ahrav/go-podium/infrastructure/partition"
	"github.com/ahrav/go-podium/internal/ports"
)

// Verify interface compliance at compile time.
var _ ports.PartitionerRegistry = (*DefaultPartitionerRegistry)(nil)

// DefaultPartitionerRegistry implements ports.PartitionerRegistry with the
// built-in partitioners pre-registered. Custom types can be added at runtime.
type DefaultPartitionerRegistry struct {
	// factories maps type names to their factory functions.
	factories map[string]ports.PartitionerFactory
	// mu protects concurrent access to the factories map.
	mu sync.RWMutex
}

// NewDefaultPartitionerRegistry creates a registry holding the single,
// chunked, round_robin and hashed partitioners.
func NewDefaultPartitionerRegistry() *DefaultPartitionerRegistry {
	registry := &DefaultPartitionerRegistry{
		factories: make(map[string]ports.PartitionerFactory),
	}
	registry.registerBuiltinFactories()
	return registry
}

func (r *DefaultPartitionerRegistry) registerBuiltinFactories() {
	r.factories[partition.TypeSingle] = func(params map[string]any) (ports.Partitioner, error) {
		return partition.CreateSingle(params)
	}
	r.factories[partition.TypeChunked] = func(params map[string]any) (ports.Partitioner, error) {
		p, err := partition.CreateChunked(params)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	r.factories[partition.TypeRoundRobin] = func(params map[string]any) (ports.Partitioner, error) {
		p, err := partition.CreateRoundRobin(params)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	r.factories[partition.TypeHashed] = func(params map[string]any) (ports.Partitioner, error) {
		p, err := partition.CreateHashed(params)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// CreatePartitioner builds a partitioner of the given type. Unknown types
// wrap ports.ErrUnknownPartitioner.
func (r *DefaultPartitionerRegistry) CreatePartitioner(
	partitionerType string,
	params map[string]any,
) (ports.Partitioner, error) {
	r.mu.RLock()
	factory, exists := r.factories[partitionerType]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %q", ports.ErrUnknownPartitioner, partitionerType)
	}

	if params == nil {
		params = make(map[string]any)
	}

	p, err := factory(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create partitioner of type %s: %w", partitionerType, err)
	}
	return p, nil
}

// RegisterPartitionerFactory registers or replaces a partitioner type.
func (r *DefaultPartitionerRegistry) RegisterPartitionerFactory(
	partitionerType string,
	factory ports.PartitionerFactory,
) error {
	if partitionerType == "" {
		return fmt.Errorf("partitioner type cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[partitionerType] = factory
	return nil
}

// GetSupportedTypes returns the registered type names in sorted order.
func (r *DefaultPartitionerRegistry) GetSupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
