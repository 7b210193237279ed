package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/hostflow/pkg/domain"
)

// GraphOverlay contains session data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// OverlayFor builds the overlay of a session.
func OverlayFor(sess *domain.Session) *GraphOverlay {
	if sess == nil {
		return nil
	}
	return &GraphOverlay{VisitedNodes: sess.History, CurrentNode: sess.CurrentNodeID}
}

// GenerateMermaid produces a Mermaid flowchart of the flow.
// Shapes:
// - Start: ((Circle))
// - Terminal: ([Stadium])
// - Entry effects: [[Subroutine]]
// - Default: [Rectangle]
// Edges are labelled with the action that takes them; self-loops are dotted.
func GenerateMermaid(nodes []*domain.Node, start string, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.ID == start:
			opener, closer = "((", "))"
		case node.IsTerminal():
			opener, closer = "([", "])"
		case len(node.Effects) > 0:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, node.ID, closer)

		for _, a := range node.Actions {
			label := strings.ReplaceAll(a.Name, "\"", "'")
			if a.SelfLoops(node.ID) {
				fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", safeID, label, safeID)
				continue
			}
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", safeID, label, sanitizeMermaidID(a.Successor))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
