package dsl

import (
	"github.com/aretw0/hostflow/internal/compiler"
	"github.com/aretw0/hostflow/internal/effects"
	"github.com/aretw0/hostflow/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	persona string
	tasks   []string
	actions []*ActionBuilder
	effects []domain.Effect
}

// Persona overrides the flow-wide role text for this node.
func (n *NodeBuilder) Persona(text string) *NodeBuilder {
	n.persona = text
	return n
}

// Task appends an instruction for the host while this node is current.
func (n *NodeBuilder) Task(text string) *NodeBuilder {
	n.tasks = append(n.tasks, text)
	return n
}

// Actions appends actions the model may invoke, in order.
func (n *NodeBuilder) Actions(actions ...*ActionBuilder) *NodeBuilder {
	n.actions = append(n.actions, actions...)
	return n
}

// Effect appends an entry effect.
func (n *NodeBuilder) Effect(effectType string, params map[string]any) *NodeBuilder {
	n.effects = append(n.effects, domain.Effect{Type: effectType, Params: params})
	return n
}

// Say queues an utterance spoken when the node is entered.
func (n *NodeBuilder) Say(text string) *NodeBuilder {
	return n.Effect(effects.Say, map[string]any{"text": text})
}

// Summarize logs the collected arguments when the node is entered.
func (n *NodeBuilder) Summarize() *NodeBuilder {
	return n.Effect(effects.LogSummary, nil)
}

// End marks the node as terminal.
func (n *NodeBuilder) End() *NodeBuilder {
	return n.Effect(domain.EffectEndConversation, nil)
}

func (n *NodeBuilder) config() compiler.NodeConfig {
	cfg := compiler.NodeConfig{PostActions: n.effects}
	if n.persona != "" {
		cfg.RoleMessages = []compiler.Message{{Role: "system", Content: n.persona}}
	}
	for _, t := range n.tasks {
		cfg.TaskMessages = append(cfg.TaskMessages, compiler.Message{Role: "system", Content: t})
	}
	for _, a := range n.actions {
		cfg.Functions = append(cfg.Functions, a.declaration())
	}
	return cfg
}
