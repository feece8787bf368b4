/*
Package cadence is the dispatch and state core of a voice-assistant skill backend.

A skill registers named actions. Each incoming turn (an intent such as
"AMAZON.RestartGameIntent" or a raw request type such as "AudioPlayer.PlaybackStopped")
is resolved to one action, the handler variant matching the user's conversation state
is selected, and the attributes the handler changed are persisted once at the end of the turn.

# Concept

  - Actions have canonical lower-case names ("restart-game"). Platform identifiers are
    mapped onto them by a fixed resolution chain (direct route, full name, namespace
    stripping, request type, "_" truncation).
  - Attributes are a JSON document of independent groups. Handlers read and write groups
    through state.Group and state.SubGroup accessors; sibling groups are never disturbed.
  - Each action keeps a small state machine in its feature group (default "fsm").
    Variants are guarded by states; an explicit default serves everything else.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/cadence"
		"github.com/aretw0/cadence/pkg/adapters/memory"
		"github.com/aretw0/cadence/pkg/conversation"
		"github.com/aretw0/cadence/pkg/domain"
		"github.com/aretw0/cadence/pkg/fsm"
		"github.com/aretw0/cadence/pkg/registry"
		"github.com/aretw0/cadence/pkg/session"
	)

	func main() {
		reg, err := registry.NewBuilder().
			Register("restart-game",
				registry.On(func(ctx context.Context, app *conversation.App) error {
					app.Speak("Starting over.")
					return fsm.SetState(app, "new-game")
				}, "in-progress"),
				registry.Default(func(ctx context.Context, app *conversation.App) error {
					app.Speak("There is no game to restart.")
					return nil
				}),
			).
			Build()
		if err != nil {
			log.Fatal(err)
		}

		skill := cadence.New(reg)
		sessions := session.NewManager(memory.NewStore())

		resp, err := skill.HandleTurn(context.Background(), &cadence.Turn{
			Envelope:   &domain.Envelope{IntentName: "AMAZON.RestartGameIntent", UserID: "user-1"},
			Attributes: sessions.Attributes("user-1"),
		})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(resp.OutputSpeech)
	}
*/
package cadence
