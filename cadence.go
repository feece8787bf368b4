package cadence

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/cadence/internal/runtime"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/registry"
	"github.com/aretw0/cadence/pkg/resolver"
)

// Turn is one incoming request with the platform facilities that serve it.
type Turn = runtime.Turn

// Skill is the high-level entry point of the library.
// It wraps the internal executor and is safe for concurrent turns.
type Skill struct {
	executor     *runtime.Executor
	hooks        domain.TurnHooks
	logger       *slog.Logger
	resolverOpts []resolver.Option
	Name         string
}

// Option defines a functional option for configuring the Skill.
type Option func(*Skill)

// WithLogger sets a custom structured logger for the skill.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Skill) {
		s.logger = logger
	}
}

// WithTurnHooks registers observability hooks. Repeated calls chain the hooks.
func WithTurnHooks(hooks domain.TurnHooks) Option {
	return func(s *Skill) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithMinTruncatedLength stops "_" truncation once a candidate is shorter than n runes.
// Zero (the default) tries every truncation.
func WithMinTruncatedLength(n int) Option {
	return func(s *Skill) {
		s.resolverOpts = append(s.resolverOpts, resolver.WithMinTruncatedLength(n))
	}
}

// WithName labels the skill in logs.
func WithName(name string) Option {
	return func(s *Skill) {
		s.Name = name
	}
}

// New creates a skill dispatching to reg.
func New(reg *registry.Registry, opts ...Option) *Skill {
	s := &Skill{}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if s.Name != "" {
		s.logger = s.logger.With("skill", s.Name)
	}

	s.executor = runtime.NewExecutor(reg,
		runtime.WithLogger(s.logger),
		runtime.WithHooks(s.hooks),
		runtime.WithResolverOptions(s.resolverOpts...),
	)
	return s
}

// HandleTurn runs one turn. See runtime.Executor.HandleTurn.
func (s *Skill) HandleTurn(ctx context.Context, turn *Turn) (*domain.Response, error) {
	return s.executor.HandleTurn(ctx, turn)
}

// Resolve reports which action a turn would dispatch to, without running it.
func (s *Skill) Resolve(env *domain.Envelope) (resolver.Match, bool) {
	return s.executor.Resolve(env)
}

// Registry returns the registry the skill dispatches to.
func (s *Skill) Registry() *registry.Registry {
	return s.executor.Registry()
}
