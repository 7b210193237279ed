package domain

// ToolCall is a structured action invocation produced by the language model.
type ToolCall struct {
	ID        string         `json:"id,omitempty" mapstructure:"id"`
	Name      string         `json:"name" mapstructure:"name"`
	Arguments map[string]any `json:"arguments,omitempty" mapstructure:"arguments"`
}

// ToolSpec is one entry of the action manifest offered to the model.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of the conversation history kept by the session driver.
type Message struct {
	Role       Role      `json:"role"`
	Content    string    `json:"content,omitempty"`
	ToolCall   *ToolCall `json:"tool_call,omitempty"`
	ToolCallID string    `json:"tool_call_id,omitempty"`
}

// Prompt is what the model receives as system text for the current node.
type Prompt struct {
	NodeID string `json:"node_id"`
	// Persona is the shared role text.
	Persona string `json:"persona"`
	// Task is the node's instructions joined in order.
	Task string `json:"task"`
}

// System joins persona and task into one system instruction.
func (p Prompt) System() string {
	switch {
	case p.Persona == "":
		return p.Task
	case p.Task == "":
		return p.Persona
	default:
		return p.Persona + "\n\n" + p.Task
	}
}
