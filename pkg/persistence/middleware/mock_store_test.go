package middleware_test

import (
	"context"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
// It keeps documents by reference so tests can inspect exactly what was written.
type MockStore struct {
	data map[string]domain.Attributes
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]domain.Attributes),
	}
}

func (s *MockStore) Set(ctx context.Context, key string, doc domain.Attributes) error {
	s.data[key] = doc
	return nil
}

func (s *MockStore) Get(ctx context.Context, key string) (domain.Attributes, error) {
	doc, ok := s.data[key]
	if !ok {
		return nil, domain.ErrAttributesNotFound
	}
	return doc, nil
}

func (s *MockStore) Delete(ctx context.Context, key string) error {
	delete(s.data, key)
	return nil
}

var _ ports.AttributeStore = (*MockStore)(nil)
