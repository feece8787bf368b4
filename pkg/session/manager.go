package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
)

// Manager hands out persistence handles backed by a single AttributeStore.
type Manager struct {
	store  ports.AttributeStore
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager with the given persistence store.
func NewManager(store ports.AttributeStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Attributes returns the persistence handle of key (usually the platform user ID).
func (m *Manager) Attributes(key string) ports.AttributesManager {
	return &handle{manager: m, key: key}
}

// Load returns the stored document of key, or an empty one if nothing was stored.
func (m *Manager) Load(ctx context.Context, key string) (domain.Attributes, error) {
	if key == "" {
		return nil, fmt.Errorf("attributes key cannot be empty")
	}
	doc, err := m.store.Get(ctx, key)
	if errors.Is(err, domain.ErrAttributesNotFound) {
		m.logger.Debug("no stored attributes", "key", key)
		return domain.Attributes{}, nil
	}
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = domain.Attributes{}
	}
	return doc, nil
}

// Save normalizes doc to plain JSON types and replaces the stored document of key.
func (m *Manager) Save(ctx context.Context, key string, doc domain.Attributes) error {
	if key == "" {
		return fmt.Errorf("attributes key cannot be empty")
	}
	clean, err := domain.Normalize(doc)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, key, clean)
}

// Delete removes the stored document of key.
func (m *Manager) Delete(ctx context.Context, key string) error {
	return m.store.Delete(ctx, key)
}

// Store returns the underlying attribute store.
func (m *Manager) Store() ports.AttributeStore {
	return m.store
}

type handle struct {
	manager *Manager
	key     string
}

func (h *handle) Fetch(ctx context.Context) (domain.Attributes, error) {
	return h.manager.Load(ctx, h.key)
}

func (h *handle) Store(ctx context.Context, doc domain.Attributes) error {
	return h.manager.Save(ctx, h.key, doc)
}
