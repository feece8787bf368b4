package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/cadence/pkg/registry"
)

// GraphOverlay contains per-user data to visualize on the graph.
type GraphOverlay struct {
	// CurrentState is highlighted on its state node.
	CurrentState string
	// ActiveActions are the actions whose guarded variant serves CurrentState.
	ActiveActions []string
}

// anyState is the node default variants hang off.
const anyState = "any"

// GenerateMermaid produces a Mermaid flowchart of how the registry dispatches by state.
// It applies semantic styling:
// - State: ((Circle))
// - Action with state variants: [[Subroutine]]
// - Action without: [Rectangle]
// Guarded variants are solid edges from their states; default variants are dotted
// edges from the "any" node. Actions without variants of either kind are isolated.
func GenerateMermaid(reg *registry.Registry, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var (
		stateOrder []string
		seen       = map[string]bool{}
		edges      []string
	)
	addState := func(s string) {
		if !seen[s] {
			seen[s] = true
			stateOrder = append(stateOrder, s)
		}
	}

	for _, name := range reg.Names() {
		action, _ := reg.Get(name)
		safeID := sanitizeMermaidID("action_" + name)

		opener, closer := "[", "]"
		if len(action.States()) > 0 {
			opener, closer = "[[", "]]"
		}
		label := name
		if action.Feature() != registry.DefaultFeature {
			label = fmt.Sprintf("%s <br/> %s", name, action.Feature())
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		for _, v := range action.Variants() {
			if !v.Guarded() {
				addState(anyState)
				edges = append(edges, fmt.Sprintf("    %s -.-> %s\n", sanitizeMermaidID("state_"+anyState), safeID))
				continue
			}
			for _, s := range v.States {
				addState(string(s))
				edges = append(edges, fmt.Sprintf("    %s --> %s\n", sanitizeMermaidID("state_"+string(s)), safeID))
			}
		}
	}

	for _, s := range stateOrder {
		sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", sanitizeMermaidID("state_"+s), s))
	}
	for _, e := range edges {
		sb.WriteString(e)
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef active fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		activeSet := make(map[string]bool)
		for _, name := range overlay.ActiveActions {
			safeID := sanitizeMermaidID("action_" + name)
			if !activeSet[safeID] && name != "" {
				activeSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s active;\n", safeID))
			}
		}

		current := overlay.CurrentState
		if current == "" {
			current = anyState
		}
		if seen[current] {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID("state_"+current)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
