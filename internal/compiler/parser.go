package compiler

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/hostflow/pkg/domain"
)

// Document is the decoded form of a flow file.
type Document struct {
	InitialNode string `mapstructure:"initial_node"`

	// RoleMessages is the flow-level persona. When absent, the initial
	// node's role messages are used instead.
	RoleMessages []Message `mapstructure:"role_messages"`

	Nodes map[string]NodeConfig `mapstructure:"nodes"`
}

// Message is a role/content pair as written in flow files.
type Message struct {
	Role    string `mapstructure:"role"`
	Content string `mapstructure:"content"`
}

// NodeConfig is one entry of the "nodes" map.
type NodeConfig struct {
	RoleMessages []Message        `mapstructure:"role_messages"`
	TaskMessages []Message        `mapstructure:"task_messages"`
	Functions    []map[string]any `mapstructure:"functions"`
	PostActions  []domain.Effect  `mapstructure:"post_actions"`
}

// Function is a normalized action declaration.
type Function struct {
	Name         string         `mapstructure:"name"`
	Description  string         `mapstructure:"description"`
	Parameters   map[string]any `mapstructure:"parameters"`
	TransitionTo string         `mapstructure:"transition_to"`
}

// Parser converts raw flow files (YAML or JSON) into Documents.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes the content. JSON is accepted since it is valid YAML.
func (p *Parser) Parse(data []byte) (*Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse flow: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("flow document is empty")
	}

	var doc Document
	if err := decode(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode flow: %w", err)
	}
	return &doc, nil
}

// Functions normalizes the accepted function shapes into a flat list:
//
//	{type: function, function: {name, description, parameters, transition_to}}
//	{function_declarations: [{name, description, parameters, transition_to}, ...]}
//	{name, description, parameters, transition_to}
func (n NodeConfig) Declarations() ([]Function, error) {
	var out []Function
	for i, entry := range n.Functions {
		switch {
		case entry["function_declarations"] != nil:
			var decls []Function
			if err := decode(entry["function_declarations"], &decls); err != nil {
				return nil, fmt.Errorf("functions[%d]: %w", i, err)
			}
			out = append(out, decls...)
		case entry["function"] != nil:
			if t, ok := entry["type"]; ok && t != "function" {
				return nil, fmt.Errorf("functions[%d]: unsupported type %v", i, t)
			}
			var fn Function
			if err := decode(entry["function"], &fn); err != nil {
				return nil, fmt.Errorf("functions[%d]: %w", i, err)
			}
			out = append(out, fn)
		case entry["name"] != nil:
			var fn Function
			if err := decode(entry, &fn); err != nil {
				return nil, fmt.Errorf("functions[%d]: %w", i, err)
			}
			out = append(out, fn)
		default:
			return nil, fmt.Errorf("functions[%d]: unrecognized declaration", i)
		}
	}
	return out, nil
}

// Text joins message contents in order, skipping blanks.
func Text(msgs []Message, sep string) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if c := strings.TrimSpace(m.Content); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, sep)
}

func decode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		TagName:     "mapstructure",
		ErrorUnused: false,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
