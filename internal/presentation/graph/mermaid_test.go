package graph_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/cadence/internal/presentation/graph"
	"github.com/aretw0/cadence/pkg/conversation"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/registry"
)

func noop(ctx context.Context, app *conversation.App) error { return nil }

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.NewBuilder().
		Add(registry.Definition{
			Name:     "restart-game",
			States:   []domain.State{"in-progress"},
			Variants: []registry.HandlerVariant{registry.On(noop, "in-progress"), registry.Default(noop)},
		}).
		Add(registry.Definition{
			Name:     "pause",
			Feature:  "player",
			Variants: []registry.HandlerVariant{registry.On(noop, "playing")},
		}).
		Register("help", registry.Default(noop)).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return reg
}

func TestGenerateMermaid(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		name     string
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "Action Shapes",
			contains: []string{
				`action_restart_game[["restart-game"]]`,
				`action_help["help"]`,
				`action_pause["pause <br/> player"]`,
			},
		},
		{
			name: "State Nodes",
			contains: []string{
				`state_in_progress(("in-progress"))`,
				`state_playing(("playing"))`,
				`state_any(("any"))`,
			},
		},
		{
			name: "Variant Edges",
			contains: []string{
				"state_in_progress --> action_restart_game",
				"state_any -.-> action_restart_game",
				"state_any -.-> action_help",
				"state_playing --> action_pause",
			},
			excludes: []string{
				"state_any -.-> action_pause",
			},
		},
		{
			name:     "No Overlay",
			excludes: []string{"classDef"},
		},
		{
			name: "Overlay",
			overlay: &graph.GraphOverlay{
				CurrentState:  "in-progress",
				ActiveActions: []string{"restart-game", "restart-game", ""},
			},
			contains: []string{
				"class state_in_progress current;",
				"class action_restart_game active;",
			},
		},
		{
			name:     "Overlay Without State",
			overlay:  &graph.GraphOverlay{},
			contains: []string{"class state_any current;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(reg, tt.overlay)
			if !strings.HasPrefix(got, "graph TD\n") {
				t.Errorf("GenerateMermaid() missing header:\n%v", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnwanted substring: %v", got, unwanted)
				}
			}
			if n := strings.Count(got, "class action_restart_game active;"); n > 1 {
				t.Errorf("active class applied %d times", n)
			}
		})
	}
}
