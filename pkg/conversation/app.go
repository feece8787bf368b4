// Package conversation defines the per-turn conversation context handed to handlers.
package conversation

import (
	"io"
	"log/slog"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/aretw0/cadence/pkg/response"
	"github.com/aretw0/cadence/pkg/state"
)

// App is the conversation context of one turn: the request, the attribute
// storage mirror and the response being built.
// It is created at the start of a turn and discarded at its end.
type App struct {
	turnID   string
	envelope *domain.Envelope
	storage  state.Backend
	response ports.ResponseBuilder
	logger   *slog.Logger
}

// Option configures an App.
type Option func(*App)

// WithResponse sets the response builder (default: response.NewBuilder()).
func WithResponse(b ports.ResponseBuilder) Option {
	return func(a *App) {
		if b != nil {
			a.response = b
		}
	}
}

// WithLogger sets the turn logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithTurnID tags the context with the executor's turn id.
func WithTurnID(id string) Option {
	return func(a *App) {
		a.turnID = id
	}
}

// New creates the context of a turn. storage is selected by the caller once per turn.
func New(envelope *domain.Envelope, storage state.Backend, opts ...Option) *App {
	if envelope == nil {
		envelope = &domain.Envelope{}
	}
	a := &App{
		envelope: envelope,
		storage:  storage,
		response: response.NewBuilder(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Storage implements state.Scope. It is safe to call on a nil App.
func (a *App) Storage() state.Backend {
	if a == nil {
		return nil
	}
	return a.storage
}

// Request returns the turn's envelope.
func (a *App) Request() *domain.Envelope { return a.envelope }

// Response returns the turn's response builder.
func (a *App) Response() ports.ResponseBuilder { return a.response }

// Logger returns the turn-scoped logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// TurnID returns the id assigned by the executor, if any.
func (a *App) TurnID() string { return a.turnID }

// Speak is a shorthand for a.Response().Speak(text).
func (a *App) Speak(text string) {
	a.response.Speak(text)
}
