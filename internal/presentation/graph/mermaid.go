package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/mentor/pkg/domain"
	flow "github.com/aretw0/mentor/pkg/graph"
)

// GraphOverlay contains session progress to visualize on the graph.
type GraphOverlay struct {
	// States maps node keys to their progress.
	States      map[string]domain.NodeState
	CurrentNode string
}

// OverlayFromSnapshot builds an overlay from a stored session.
func OverlayFromSnapshot(snap *domain.Snapshot) *GraphOverlay {
	if snap == nil {
		return nil
	}
	return &GraphOverlay{States: snap.States, CurrentNode: snap.Current}
}

// GenerateMermaid produces a Mermaid flowchart of a section flow.
// Shapes:
// - Instruction: ((Circle))
// - Case: [/Parallelogram/]
// - Total: [[Subroutine]]
// Cases off the Instruction -> Total path are linked with dotted arrows
// and styled as unreachable.
func GenerateMermaid(g *flow.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range g.Nodes() {
		safeID := sanitizeMermaidID(node.Key)

		opener, closer := "[/", "/]"
		switch node.Kind {
		case domain.KindInstruction:
			opener, closer = "((", "))"
		case domain.KindTotal:
			opener, closer = "[[", "]]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(node.Key), closer))

		if node.Next == domain.NoNode {
			continue
		}
		next, _ := g.Node(node.Next)
		arrow := "-->"
		if node.IsCase() && !g.Reachable(node.ID) {
			arrow = "-.->"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, sanitizeMermaidID(next.Key)))
	}

	if unreachable := g.Unreachable(); len(unreachable) > 0 {
		sb.WriteString("    classDef unreachable stroke-dasharray:5 5,color:#888;\n")
		for _, n := range unreachable {
			sb.WriteString(fmt.Sprintf("    class %s unreachable;\n", sanitizeMermaidID(n.Key)))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds.
		sb.WriteString("    classDef question fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef answered fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef reviewed fill:#a5d6a7,stroke:#1b5e20,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		keys := make([]string, 0, len(overlay.States))
		for k := range overlay.States {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if _, ok := g.Lookup(key); !ok {
				continue
			}
			class := stateClass(overlay.States[key])
			if class == "" {
				continue
			}
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", sanitizeMermaidID(key), class))
		}

		if overlay.CurrentNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode)))
		}
	}

	return sb.String()
}

func stateClass(s domain.NodeState) string {
	switch s {
	case domain.StateQuestionShown:
		return "question"
	case domain.StateAnswered:
		return "answered"
	case domain.StateMentorAnswerShown:
		return "reviewed"
	}
	return ""
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
