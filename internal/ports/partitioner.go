package ports

// Partitioner splits the index range [0, n) of a reduction's input into
// groups that are reduced independently.
// Implementations must be stateless and safe for concurrent use.
type Partitioner interface {
	// Name returns the registered type name of the partitioner.
	Name() string

	// Partition returns the plan for n elements. Every index in [0, n)
	// appears in exactly one group and no group is empty. A plan for
	// n == 0 has no groups.
	Partition(n int) ([][]int, error)

	// PreservesOrder reports whether concatenating the groups of a plan
	// yields 0, 1, ..., n-1. Order-sensitive reductions may only run on
	// partitioners that preserve order.
	PreservesOrder() bool
}

// PartitionerFactory creates a Partitioner from loosely typed parameters,
// typically decoded from YAML.
type PartitionerFactory func(params map[string]any) (Partitioner, error)

// PartitionerRegistry resolves partitioner type names to instances.
type PartitionerRegistry interface {
	// CreatePartitioner builds a partitioner of the given type.
	CreatePartitioner(partitionerType string, params map[string]any) (Partitioner, error)

	// RegisterPartitionerFactory adds or replaces a partitioner type.
	RegisterPartitionerFactory(partitionerType string, factory PartitionerFactory) error

	// GetSupportedTypes lists the registered type names.
	GetSupportedTypes() []string
}
