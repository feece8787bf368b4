// Package demo is a small sample skill used by the CLI and the examples:
// a jukebox with a restartable session, driven by the default fsm feature.
package demo

import (
	"context"
	"fmt"

	"github.com/aretw0/cadence/pkg/conversation"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/fsm"
	"github.com/aretw0/cadence/pkg/registry"
	"github.com/aretw0/cadence/pkg/state"
)

// Conversation states of the default feature.
const (
	StateInProgress domain.State = "in-progress"
	StatePlaying    domain.State = "playing"
)

var states = []domain.State{StateInProgress, StatePlaying}

// Registry builds the demo action registry.
func Registry() (*registry.Registry, error) {
	return registry.NewBuilder().
		Add(registry.Definition{
			Name:   "launch-request",
			States: states,
			Variants: []registry.HandlerVariant{
				registry.On(welcomeBack, StateInProgress, StatePlaying),
				registry.Default(welcome),
			},
		}).
		Register("help", registry.Default(help)).
		Register("stop", registry.Default(stop)).
		Register("play", registry.Default(play)).
		Register("playback-started", registry.Default(playbackStarted)).
		Register("playback-stopped", registry.Default(playbackStopped)).
		Add(registry.Definition{
			Name:   "restart-game",
			States: states,
			Variants: []registry.HandlerVariant{
				registry.On(restart, StateInProgress, StatePlaying),
				registry.Default(nothingToRestart),
			},
		}).
		Register("session-ended-request", registry.Default(sessionEnded)).
		Build()
}

func welcome(ctx context.Context, app *conversation.App) error {
	app.Response().
		Speak("Welcome to the jukebox! Say play and a collection name to start.").
		Reprompt("What would you like to hear?")
	return fsm.SetState(app, StateInProgress)
}

func welcomeBack(ctx context.Context, app *conversation.App) error {
	pb, err := state.Load[PlaybackState](app, Playback)
	if err != nil {
		return err
	}
	if pb.Collection != "" {
		app.Speak(fmt.Sprintf("Welcome back! You were listening to %s.", pb.Collection))
	} else {
		app.Speak("Welcome back!")
	}
	app.Response().Reprompt("Say play to continue, or restart to start over.")
	return nil
}

func help(ctx context.Context, app *conversation.App) error {
	app.Response().
		Speak("You can say play followed by a collection, restart to start over, or stop.").
		Reprompt("What would you like to do?")
	return nil
}

func stop(ctx context.Context, app *conversation.App) error {
	app.Response().Speak("Goodbye.").EndSession(true)
	return fsm.SetState(app, domain.StateNone)
}

func play(ctx context.Context, app *conversation.App) error {
	collection := app.Request().SlotValue("collection")
	if collection == "" {
		app.Response().
			Speak("Which collection would you like to hear?").
			Reprompt("Say the name of a collection.")
		return nil
	}

	pb := PlaybackState{Collection: collection, Token: collection}
	if err := state.Save(app, Playback, pb); err != nil {
		return err
	}

	app.Response().
		Speak(fmt.Sprintf("Playing %s.", collection)).
		AddDirective(domain.Directive{
			Type: "AudioPlayer.Play",
			Payload: map[string]any{
				"play_behavior": "REPLACE_ALL",
				"url":           streamBaseURL + collection,
				"token":         pb.Token,
				"offset_ms":     pb.OffsetMS,
			},
		}).
		EndSession(true)
	return fsm.SetState(app, StatePlaying)
}

func playbackStarted(ctx context.Context, app *conversation.App) error {
	pb, err := state.Load[PlaybackState](app, Playback)
	if err != nil {
		return err
	}
	pb.Started = true
	return state.Save(app, Playback, pb)
}

// playbackStopped keeps the offset reported by the platform so playback can resume.
func playbackStopped(ctx context.Context, app *conversation.App) error {
	pb, err := state.Load[PlaybackState](app, Playback)
	if err != nil {
		return err
	}
	if v, ok := app.Request().Session["offset_ms"].(float64); ok {
		pb.OffsetMS = int64(v)
	}
	pb.Started = false
	if err := state.Save(app, Playback, pb); err != nil {
		return err
	}
	return fsm.SetState(app, StateInProgress)
}

func restart(ctx context.Context, app *conversation.App) error {
	if err := state.Save(app, Playback, PlaybackState{}); err != nil {
		return err
	}
	app.Response().Speak("Starting over. What would you like to hear?").Reprompt("Say play and a collection name.")
	return fsm.SetState(app, StateInProgress)
}

func nothingToRestart(ctx context.Context, app *conversation.App) error {
	app.Response().Speak("There is nothing to restart yet. Say play to begin.")
	return nil
}

func sessionEnded(ctx context.Context, app *conversation.App) error {
	app.Logger().Debug("session ended", "session_id", app.Request().SessionID)
	return nil
}
