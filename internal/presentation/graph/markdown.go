package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/schema"
)

// Markdown describes the flow for human review: one section per node with
// its task and the actions it offers, starting from the start node.
func Markdown(name string, nodes []*domain.Node, start string) string {
	ordered := make([]*domain.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.ID == start {
			ordered = append([]*domain.Node{n}, ordered...)
			continue
		}
		ordered = append(ordered, n)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", name)
	fmt.Fprintf(&sb, "%d nodes, starting at `%s`.\n", len(nodes), start)

	for _, n := range ordered {
		fmt.Fprintf(&sb, "\n## %s\n\n", n.ID)
		if n.IsTerminal() {
			sb.WriteString("_Ends the conversation._\n\n")
		}
		for _, task := range n.TaskInstructions {
			fmt.Fprintf(&sb, "> %s\n", strings.ReplaceAll(strings.TrimSpace(task), "\n", "\n> "))
		}

		if len(n.Actions) > 0 {
			sb.WriteString("\n| Action | Goes to | Arguments |\n|---|---|---|\n")
			for _, a := range n.Actions {
				target := a.Successor
				if a.SelfLoops(n.ID) {
					target = "_(stays)_"
				}
				fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", a.Name, target, arguments(a.Parameters))
			}
		}

		var effects []string
		for _, e := range n.Effects {
			if e.Type != domain.EffectEndConversation {
				effects = append(effects, "`"+e.Type+"`")
			}
		}
		if len(effects) > 0 {
			fmt.Fprintf(&sb, "\nOn entry: %s\n", strings.Join(effects, ", "))
		}
	}
	return sb.String()
}

func arguments(s schema.ArgumentSchema) string {
	if s.IsEmpty() {
		return "-"
	}
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	names := s.Names()
	sort.SliceStable(names, func(i, j int) bool { return required[names[i]] && !required[names[j]] })

	parts := make([]string, 0, len(names))
	for _, name := range names {
		p := fmt.Sprintf("%s (%s)", name, s.Properties[name].Type.Name())
		if required[name] {
			p = "**" + p + "**"
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ", ")
}
