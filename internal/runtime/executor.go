package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/cadence/pkg/conversation"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/fsm"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/aretw0/cadence/pkg/registry"
	"github.com/aretw0/cadence/pkg/resolver"
	"github.com/aretw0/cadence/pkg/response"
	"github.com/aretw0/cadence/pkg/state"
	"github.com/google/uuid"
)

// Turn is one incoming request together with the platform facilities that serve it.
type Turn struct {
	Envelope *domain.Envelope

	// Attributes is the structured persistence handle of the user.
	// When set, it is fetched once before the handler and stored once after.
	Attributes ports.AttributesManager

	// LegacyStorage is the platform's raw user storage map, used only when
	// Attributes is nil. The platform flushes it; the executor never stores it.
	//
	// Deprecated: provide Attributes instead.
	LegacyStorage map[string]any

	// Response overrides the default response builder.
	Response ports.ResponseBuilder
}

// Executor runs turns against an immutable action registry.
// It holds no per-turn state and is safe for concurrent use.
type Executor struct {
	registry     *registry.Registry
	resolver     *resolver.Resolver
	resolverOpts []resolver.Option
	hooks        domain.TurnHooks
	logger       *slog.Logger
	newTurnID    func() string
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHooks registers observability hooks. Repeated calls chain the hooks.
func WithHooks(hooks domain.TurnHooks) ExecutorOption {
	return func(e *Executor) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithResolverOptions passes options to the intent resolver.
func WithResolverOptions(opts ...resolver.Option) ExecutorOption {
	return func(e *Executor) {
		e.resolverOpts = append(e.resolverOpts, opts...)
	}
}

// WithTurnIDs replaces the turn id generator (default: random UUIDs).
func WithTurnIDs(gen func() string) ExecutorOption {
	return func(e *Executor) {
		if gen != nil {
			e.newTurnID = gen
		}
	}
}

// NewExecutor creates an executor over reg.
func NewExecutor(reg *registry.Registry, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry:  reg,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		newTurnID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}

	resolverOpts := append([]resolver.Option{resolver.WithLogger(e.logger)}, e.resolverOpts...)
	e.resolver = resolver.New(reg, resolverOpts...)
	return e
}

// Registry returns the registry the executor dispatches to.
func (e *Executor) Registry() *registry.Registry {
	return e.registry
}

// Resolve finds the action of env: per-action direct routes first, then the fallback chain.
func (e *Executor) Resolve(env *domain.Envelope) (resolver.Match, bool) {
	if m, ok := e.resolver.Direct(env); ok {
		return m, true
	}
	return e.resolver.Resolve(env)
}

// HandleTurn resolves, selects and runs the handler of one turn and persists its attributes.
//
// An unresolved turn yields an empty response and a nil error without touching persistence.
// Persistence failures are logged and absorbed. Handler and selection failures are returned
// together with whatever response was built.
func (e *Executor) HandleTurn(ctx context.Context, turn *Turn) (*domain.Response, error) {
	if turn == nil {
		turn = &Turn{}
	}
	env := turn.Envelope
	if env == nil {
		env = &domain.Envelope{}
	}

	turnID := e.newTurnID()
	logger := e.logger.With("turn_id", turnID)
	event := &domain.TurnEvent{
		Timestamp:   time.Now(),
		TurnID:      turnID,
		IntentName:  env.IntentName,
		RequestType: env.RequestType,
	}
	if e.hooks.OnTurnStart != nil {
		e.hooks.OnTurnStart(ctx, event)
	}
	defer func() {
		event.Duration = time.Since(event.Timestamp)
		if e.hooks.OnTurnEnd != nil {
			e.hooks.OnTurnEnd(ctx, event)
		}
	}()

	match, ok := e.Resolve(env)
	if !ok {
		logger.Debug("no action for turn", "intent", env.IntentName, "request_type", env.RequestType)
		event.Outcome = domain.OutcomeUnresolved
		return &domain.Response{}, nil
	}

	event.Action = match.Name
	event.Rule = string(match.Rule)
	logger = logger.With("action", match.Name)
	if e.hooks.OnActionResolved != nil {
		e.hooks.OnActionResolved(ctx, event)
	}
	logger.Debug("begin handle intent", "identifier", match.Identifier, "rule", match.Rule)

	backend, persist := e.prepareStorage(ctx, turn, turnID, logger)

	builder := turn.Response
	if builder == nil {
		builder = response.NewBuilder()
	}
	app := conversation.New(env, backend,
		conversation.WithResponse(builder),
		conversation.WithLogger(logger),
		conversation.WithTurnID(turnID),
	)

	err := e.run(ctx, app, match.Action, event)

	persist(ctx)
	logger.Debug("end handle intent")

	resp := builder.Finalize()
	if err != nil {
		event.Outcome = domain.OutcomeFailed
		event.Err = err
		logger.Error("handler failed", "state", event.State, "err", err)
		return resp, err
	}
	event.Outcome = domain.OutcomeHandled
	return resp, nil
}

func (e *Executor) run(ctx context.Context, app *conversation.App, action *registry.Action, event *domain.TurnEvent) error {
	variant, current, err := fsm.Select(app, action)
	event.State = current
	if err != nil {
		return err
	}
	return invoke(ctx, app, variant.Handle)
}

func invoke(ctx context.Context, app *conversation.App, handle registry.HandlerFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", domain.ErrHandlerPanic, r)
		}
	}()
	return handle(ctx, app)
}

// prepareStorage picks the storage backend for the shape of turn and returns the
// function that persists it at the end of the turn.
func (e *Executor) prepareStorage(ctx context.Context, turn *Turn, turnID string, logger *slog.Logger) (state.Backend, func(context.Context)) {
	switch {
	case turn.Attributes != nil:
		doc, err := turn.Attributes.Fetch(ctx)
		if err != nil {
			// Fetch failures degrade to defaults; the turn still runs.
			logger.Debug("failed to fetch attributes, using defaults", "err", err)
			e.persistenceFailed(ctx, turnID, domain.PersistenceRead, err)
			doc = nil
		}
		backend := state.NewPersistBackend(doc)
		return backend, func(ctx context.Context) {
			e.store(ctx, turn.Attributes, backend, turnID, logger)
		}

	case turn.LegacyStorage != nil:
		backend := state.NewLegacyBackend(turn.LegacyStorage, func(ev *domain.StorageEvent) {
			logger.Warn("deprecated user storage access", "op", ev.Op, "group", ev.Group)
			if e.hooks.OnDeprecatedStorage != nil {
				e.hooks.OnDeprecatedStorage(ev)
			}
		})
		return backend, func(context.Context) {}

	default:
		logger.Warn("turn has no attributes manager, attribute changes will not be saved")
		return state.NewPersistBackend(nil), func(context.Context) {}
	}
}

// store persists the turn's document whether or not a handler wrote to it.
func (e *Executor) store(ctx context.Context, am ports.AttributesManager, backend *state.PersistBackend, turnID string, logger *slog.Logger) {
	logger.Debug("storing attributes", "changed", backend.Dirty())
	clean, err := domain.Normalize(backend.Snapshot())
	if err == nil {
		err = am.Store(ctx, clean)
	}
	if err != nil {
		logger.Error("failed to store attributes", "err", err)
		e.persistenceFailed(ctx, turnID, domain.PersistenceWrite, err)
	}
}

func (e *Executor) persistenceFailed(ctx context.Context, turnID string, op domain.PersistenceOp, err error) {
	if e.hooks.OnPersistenceError == nil {
		return
	}
	e.hooks.OnPersistenceError(ctx, &domain.PersistenceEvent{
		TurnID: turnID,
		Op:     op,
		Err:    &domain.PersistenceError{Op: op, Err: err},
	})
}
