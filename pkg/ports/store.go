package ports

import (
	"context"

	"github.com/aretw0/cadence/pkg/domain"
)

// AttributesManager is the persistence handle of a single turn.
// The executor calls Fetch once before the handler runs and Store once after.
type AttributesManager interface {
	Fetch(ctx context.Context) (domain.Attributes, error)
	Store(ctx context.Context, doc domain.Attributes) error
}

// AttributeStore persists attribute documents by key (usually a user ID).
// Writes replace the whole document; the last write wins.
type AttributeStore interface {
	// Get returns the document for key.
	// Returns domain.ErrAttributesNotFound if nothing was stored.
	Get(ctx context.Context, key string) (domain.Attributes, error)

	// Set replaces the document for key.
	Set(ctx context.Context, key string, doc domain.Attributes) error

	// Delete removes the document for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
