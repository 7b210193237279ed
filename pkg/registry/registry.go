package registry

import (
	"fmt"
	"os"
	"sort"

	"github.com/aretw0/hostflow/internal/compiler"
	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/schema"
)

// Registry holds the immutable set of nodes of a loaded flow.
// It is safe for concurrent reads.
type Registry struct {
	start    string
	nodes    map[string]*domain.Node
	order    []string
	personas int
}

// LoadFile reads and loads a flow file (YAML or JSON).
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow %s: %w", path, err)
	}
	return LoadBytes(data)
}

// LoadBytes parses and loads a flow document.
func LoadBytes(data []byte) (*Registry, error) {
	doc, err := compiler.NewParser().Parse(data)
	if err != nil {
		return nil, &domain.ConfigurationError{Problems: []string{err.Error()}}
	}
	return Load(doc)
}

// Load validates the document and builds the registry.
// Every problem found is reported in a single *domain.ConfigurationError.
func Load(doc *compiler.Document) (*Registry, error) {
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if doc.InitialNode == "" {
		report("initial_node is not set")
	} else if _, ok := doc.Nodes[doc.InitialNode]; !ok {
		report("initial_node %q does not exist", doc.InitialNode)
	}
	if len(doc.Nodes) == 0 {
		report("flow declares no nodes")
	}

	ids := make([]string, 0, len(doc.Nodes))
	for id := range doc.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	interned := make(map[string]*domain.Persona)
	intern := func(text string) *domain.Persona {
		if text == "" {
			return nil
		}
		if p, ok := interned[text]; ok {
			return p
		}
		p := &domain.Persona{Text: text}
		interned[text] = p
		return p
	}

	shared := compiler.Text(doc.RoleMessages, "\n")
	if shared == "" {
		if start, ok := doc.Nodes[doc.InitialNode]; ok {
			shared = compiler.Text(start.RoleMessages, "\n")
		}
	}

	r := &Registry{
		start: doc.InitialNode,
		nodes: make(map[string]*domain.Node, len(ids)),
		order: ids,
	}

	for _, id := range ids {
		cfg := doc.Nodes[id]
		node := &domain.Node{ID: id}

		role := compiler.Text(cfg.RoleMessages, "\n")
		if role == "" {
			role = shared
		}
		node.Persona = intern(role)

		for _, m := range cfg.TaskMessages {
			if m.Content != "" {
				node.TaskInstructions = append(node.TaskInstructions, m.Content)
			}
		}

		for i, e := range cfg.PostActions {
			if e.Type == "" {
				report("node %q: post_actions[%d] has no type", id, i)
				continue
			}
			node.Effects = append(node.Effects, e)
		}

		decls, err := cfg.Declarations()
		if err != nil {
			report("node %q: %v", id, err)
		}
		seen := make(map[string]bool, len(decls))
		for _, fn := range decls {
			if fn.Name == "" {
				report("node %q: action without a name", id)
				continue
			}
			if seen[fn.Name] {
				report("node %q: duplicate action %q", id, fn.Name)
				continue
			}
			seen[fn.Name] = true

			params, err := schema.Parse(fn.Parameters)
			if err != nil {
				report("node %q: action %q: invalid parameters: %v", id, fn.Name, err)
			}
			if fn.TransitionTo != "" {
				if _, ok := doc.Nodes[fn.TransitionTo]; !ok {
					report("node %q: action %q transitions to unknown node %q", id, fn.Name, fn.TransitionTo)
				}
			}
			node.Actions = append(node.Actions, domain.Action{
				Name:          fn.Name,
				Description:   fn.Description,
				Parameters:    params,
				RawParameters: schema.Clone(fn.Parameters),
				Successor:     fn.TransitionTo,
			})
		}

		switch {
		case node.IsTerminal() && len(node.Actions) > 0:
			report("node %q ends the conversation but declares %d actions", id, len(node.Actions))
		case !node.IsTerminal() && len(node.Actions) == 0:
			report("node %q declares no actions and does not end the conversation", id)
		}

		r.nodes[id] = node
	}

	if len(problems) > 0 {
		return nil, &domain.ConfigurationError{Problems: problems}
	}
	r.personas = len(interned)
	return r, nil
}

// Lookup returns the node with the given id.
func (r *Registry) Lookup(id string) (*domain.Node, error) {
	n, ok := r.nodes[id]
	if !ok {
		return nil, &domain.NotFoundError{NodeID: id}
	}
	return n, nil
}

// Start returns the id of the start node.
func (r *Registry) Start() string { return r.start }

// Nodes returns all nodes sorted by id.
func (r *Registry) Nodes() []*domain.Node {
	out := make([]*domain.Node, len(r.order))
	for i, id := range r.order {
		out[i] = r.nodes[id]
	}
	return out
}

// Len returns the number of nodes.
func (r *Registry) Len() int { return len(r.order) }

// Personas returns the number of distinct persona instances shared by the nodes.
func (r *Registry) Personas() int { return r.personas }

// EffectTypes lists every effect type referenced by the flow, sorted.
func (r *Registry) EffectTypes() []string {
	set := map[string]bool{}
	for _, n := range r.nodes {
		for _, e := range n.Effects {
			set[e.Type] = true
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
