package runtime

import (
	"strings"

	"github.com/aretw0/hostflow/pkg/domain"
)

// Manifest returns the actions the model may invoke for the session's current node.
// It is recomputed on every call and is empty once the session has ended.
func (e *Engine) Manifest(sess *domain.Session) ([]domain.ToolSpec, error) {
	if sess.IsEnded() {
		return nil, nil
	}
	node, err := e.graph.Lookup(sess.CurrentNodeID)
	if err != nil {
		return nil, &domain.InvalidStateError{
			SessionID: sess.ID,
			NodeID:    sess.CurrentNodeID,
			Reason:    "current node does not resolve",
		}
	}
	return ManifestFor(node), nil
}

// ManifestFor builds the manifest of a single node in declaration order.
// Each spec carries its own copy of the declared parameters object.
func ManifestFor(node *domain.Node) []domain.ToolSpec {
	out := make([]domain.ToolSpec, 0, len(node.Actions))
	for _, a := range node.Actions {
		out = append(out, domain.ToolSpec{
			Name:        a.Name,
			Description: a.Description,
			Parameters:  a.ParameterSchema(),
		})
	}
	return out
}

// Prompt returns the system text for the session's current node.
// An ended session still resolves, so the driver can speak a farewell.
func (e *Engine) Prompt(sess *domain.Session) (domain.Prompt, error) {
	node, err := e.graph.Lookup(sess.CurrentNodeID)
	if err != nil {
		return domain.Prompt{}, &domain.InvalidStateError{
			SessionID: sess.ID,
			NodeID:    sess.CurrentNodeID,
			Reason:    "current node does not resolve",
		}
	}
	p := domain.Prompt{
		NodeID: node.ID,
		Task:   strings.Join(node.TaskInstructions, "\n\n"),
	}
	if node.Persona != nil {
		p.Persona = node.Persona.Text
	}
	return p, nil
}
