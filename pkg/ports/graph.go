package ports

import "github.com/aretw0/hostflow/pkg/domain"

// Graph is the read-only node lookup the flow controller runs against.
// registry.Registry is the standard implementation.
type Graph interface {
	// Start returns the id of the start node.
	Start() string

	// Lookup returns the node with the given id or a *domain.NotFoundError.
	Lookup(id string) (*domain.Node, error)

	// Nodes returns every node, sorted by id.
	Nodes() []*domain.Node
}
