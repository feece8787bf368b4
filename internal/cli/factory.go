package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/cadence"
	"github.com/aretw0/cadence/internal/adapters/file"
	"github.com/aretw0/cadence/internal/adapters/redis"
	"github.com/aretw0/cadence/internal/adapters/sqlite"
	"github.com/aretw0/cadence/internal/config"
	"github.com/aretw0/cadence/internal/metrics"
	"github.com/aretw0/cadence/pkg/adapters/memory"
	"github.com/aretw0/cadence/pkg/persistence/middleware"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/aretw0/cadence/pkg/registry"
	"github.com/aretw0/cadence/pkg/session"
)

// App bundles everything a command needs, built from one configuration.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    ports.AttributeStore
	Sessions *session.Manager
	Skill    *cadence.Skill
	Metrics  *metrics.Metrics

	backend ports.AttributeStore
	closers []io.Closer
}

// Options are the command-line inputs of the factory.
type Options struct {
	Config *config.Config
	Debug  bool
	// LogOutput receives log lines (default: discarded).
	LogOutput io.Writer
}

// NewApp wires store, sessions, metrics and the skill over reg.
func NewApp(opts Options, reg *registry.Registry) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	w := opts.LogOutput
	if w == nil {
		w = io.Discard
	}

	logger, err := createLogger(w, cfg.Log, opts.Debug)
	if err != nil {
		return nil, err
	}

	backend, closers, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}
	store, err := secure(backend, cfg.Security)
	if err != nil {
		_ = closeAll(closers)
		return nil, err
	}

	m := metrics.New()
	skillOpts := []cadence.Option{
		cadence.WithLogger(logger),
		cadence.WithTurnHooks(m.Hooks()),
		cadence.WithMinTruncatedLength(cfg.Resolver.MinTruncatedLength),
	}
	if opts.Debug {
		skillOpts = append(skillOpts, cadence.WithTurnHooks(createDebugHooks(logger)))
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Sessions: session.NewManager(store, session.WithLogger(logger)),
		Skill:    cadence.New(reg, skillOpts...),
		Metrics:  m,
		backend:  backend,
		closers:  closers,
	}, nil
}

// Close releases store connections.
func (a *App) Close() error {
	return closeAll(a.closers)
}

func closeAll(closers []io.Closer) error {
	var first error
	for _, c := range closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openBackend builds the configured attribute store.
func openBackend(cfg *config.Config) (ports.AttributeStore, []io.Closer, error) {
	var (
		store   ports.AttributeStore
		closers []io.Closer
	)

	switch cfg.Store.Type {
	case config.StoreMemory, "":
		store = memory.NewStore()
	case config.StoreFile:
		store = file.New(cfg.Store.Dir)
	case config.StoreRedis:
		ropts := []redis.Option{redis.WithTTL(cfg.Store.Redis.TTL)}
		if cfg.Store.Redis.Prefix != "" {
			ropts = append(ropts, redis.WithPrefix(cfg.Store.Redis.Prefix))
		}
		rs := redis.New(cfg.Store.Redis.Addr, cfg.Store.Redis.Password, cfg.Store.Redis.DB, ropts...)
		store = rs
		closers = append(closers, rs)
	case config.StoreSQLite:
		ss, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store = ss
		closers = append(closers, ss)
	default:
		return nil, nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
	}

	return store, closers, nil
}

// secure wraps store with the security middlewares. PII masking runs before encryption.
func secure(store ports.AttributeStore, cfg config.SecurityConfig) (ports.AttributeStore, error) {
	var mws []middleware.Middleware
	if len(cfg.PIIKeys) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(cfg.PIIKeys))
	}
	active, fallbacks, err := cfg.Keys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallbacks,
		}))
	}

	return middleware.Chain(store, mws...), nil
}
