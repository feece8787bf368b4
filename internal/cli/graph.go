package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/cadence/internal/presentation/graph"
	"github.com/aretw0/cadence/pkg/conversation"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/fsm"
	"github.com/aretw0/cadence/pkg/state"
)

// PrintGraph writes the Mermaid dispatch graph of the registry.
// With a userID, the user's stored state and the actions it selects are highlighted.
func PrintGraph(ctx context.Context, w io.Writer, app *App, userID string) error {
	reg := app.Skill.Registry()

	var overlay *graph.GraphOverlay
	if userID != "" {
		doc, err := app.Sessions.Load(ctx, userID)
		if err != nil {
			return err
		}
		scope := conversation.New(&domain.Envelope{UserID: userID}, state.NewPersistBackend(doc))

		current, err := fsm.Default.Get(scope)
		if err != nil {
			return err
		}
		overlay = &graph.GraphOverlay{CurrentState: string(current)}

		for _, name := range reg.Names() {
			action, _ := reg.Get(name)
			v, _, err := fsm.Select(scope, action)
			if err == nil && v.Guarded() {
				overlay.ActiveActions = append(overlay.ActiveActions, name)
			}
		}
	}

	_, err := fmt.Fprint(w, graph.GenerateMermaid(reg, overlay))
	return err
}
