package memory

import (
	"context"
	"sync"

	"github.com/aretw0/cadence/pkg/domain"
)

// Store implements ports.AttributeStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Attributes
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Attributes),
	}
}

// Set stores a deep copy of doc, converted to plain JSON types like a real backend would.
func (s *Store) Set(ctx context.Context, key string, doc domain.Attributes) error {
	copied, err := domain.Normalize(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = copied
	return nil
}

// Get returns a copy of the stored document so callers can't mutate the store through it.
func (s *Store) Get(ctx context.Context, key string) (domain.Attributes, error) {
	s.mu.RLock()
	doc, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrAttributesNotFound
	}
	return domain.Normalize(doc)
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Keys returns the keys with a stored document.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}
