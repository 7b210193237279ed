package dsl

import (
	"github.com/aretw0/hostflow/internal/compiler"
	"github.com/aretw0/hostflow/pkg/registry"
)

// Builder manages the flow construction.
type Builder struct {
	initial string
	persona string
	nodes   map[string]*NodeBuilder
}

// New creates a builder whose conversation starts at initial.
func New(initial string) *Builder {
	return &Builder{
		initial: initial,
		nodes:   make(map[string]*NodeBuilder),
	}
}

// Persona sets the flow-wide role text used by nodes that set none.
func (b *Builder) Persona(text string) *Builder {
	b.persona = text
	return b
}

// Add creates a node, or returns the existing builder for id.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{}
	b.nodes[id] = nb
	return nb
}

// Document returns the flow in its decoded file form.
func (b *Builder) Document() *compiler.Document {
	doc := &compiler.Document{
		InitialNode: b.initial,
		Nodes:       make(map[string]compiler.NodeConfig, len(b.nodes)),
	}
	if b.persona != "" {
		doc.RoleMessages = []compiler.Message{{Role: "system", Content: b.persona}}
	}
	for id, nb := range b.nodes {
		doc.Nodes[id] = nb.config()
	}
	return doc
}

// Build validates the flow and loads it into a registry.
// Problems are reported as a *domain.ConfigurationError, as for flow files.
func (b *Builder) Build() (*registry.Registry, error) {
	return registry.Load(b.Document())
}
