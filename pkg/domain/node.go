package domain

import "github.com/aretw0/hostflow/pkg/schema"

// Persona is the host's shared role text. Nodes with identical role text
// point at the same Persona instance.
type Persona struct {
	Text string `json:"text" yaml:"text"`
}

// Node is one conversational state: what the host should accomplish here and
// which actions the model may invoke to move on.
type Node struct {
	ID string `json:"id" yaml:"id"`

	// Persona is the role text in force while this node is current.
	Persona *Persona `json:"persona,omitempty" yaml:"persona,omitempty"`

	// TaskInstructions are the node-specific instructions, in order.
	TaskInstructions []string `json:"task_instructions" yaml:"task_instructions"`

	// Actions are offered to the model in declaration order.
	Actions []Action `json:"actions,omitempty" yaml:"actions,omitempty"`

	// Effects run when the node is entered.
	Effects []Effect `json:"effects,omitempty" yaml:"effects,omitempty"`
}

// Action is a named structured operation the model may invoke while its node is current.
type Action struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Parameters is the parsed argument schema used for validation.
	Parameters schema.ArgumentSchema `json:"-" yaml:"-"`

	// RawParameters is the parameters object exactly as declared in the flow.
	// It may carry keywords Parameters does not model (minItems, format, ...).
	RawParameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`

	// Successor is the node entered after the action succeeds.
	// Empty means the action keeps the session on the same node.
	Successor string `json:"successor,omitempty" yaml:"successor,omitempty"`
}

// Effect is a side effect attached to a node and executed on entry.
type Effect struct {
	Type   string         `json:"type" yaml:"type" mapstructure:"type"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty" mapstructure:",remain"`
}

// IsTerminal reports whether entering the node ends the conversation.
func (n *Node) IsTerminal() bool {
	for _, e := range n.Effects {
		if e.Type == EffectEndConversation {
			return true
		}
	}
	return false
}

// Action returns the action with the given name declared on this node.
func (n *Node) Action(name string) (Action, bool) {
	for _, a := range n.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// ActionNames lists the node's action names in declaration order.
func (n *Node) ActionNames() []string {
	names := make([]string, len(n.Actions))
	for i, a := range n.Actions {
		names[i] = a.Name
	}
	return names
}

// ParameterSchema returns a copy of the schema offered to the model: the
// declared parameters object when there is one, else the empty object schema.
func (a Action) ParameterSchema() map[string]any {
	if len(a.RawParameters) == 0 {
		return a.Parameters.JSONSchema()
	}
	return schema.Clone(a.RawParameters)
}

// SelfLoops reports whether invoking the action leaves the session on this node.
func (a Action) SelfLoops(from string) bool {
	return a.Successor == "" || a.Successor == from
}
