package state

import (
	"maps"
	"reflect"

	"github.com/aretw0/cadence/pkg/domain"
)

// Backend is the storage behind a conversation context.
type Backend interface {
	// Get returns the stored value of a group.
	Get(group string) (any, bool)
	// Set replaces the stored value of a group.
	Set(group string, value any)
}

// Scope is anything that exposes attribute storage, usually a *conversation.App.
type Scope interface {
	Storage() Backend
}

// PersistBackend mirrors a structured persistence document in memory.
// The document is copied on every write so snapshots taken earlier never change.
type PersistBackend struct {
	doc   domain.Attributes
	dirty bool
}

// NewPersistBackend creates a backend over a copy of doc.
func NewPersistBackend(doc domain.Attributes) *PersistBackend {
	return &PersistBackend{doc: doc.Clone()}
}

func (b *PersistBackend) Get(group string) (any, bool) {
	v, ok := b.doc[group]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (b *PersistBackend) Set(group string, value any) {
	// Replacing a whole group only needs a fresh top level; earlier snapshots are deep copies.
	next := maps.Clone(b.doc)
	next[group] = value
	b.doc = next
	b.dirty = true
}

// Snapshot returns the current document.
func (b *PersistBackend) Snapshot() domain.Attributes {
	return b.doc.Clone()
}

// Dirty reports whether any group was written since the backend was created.
func (b *PersistBackend) Dirty() bool {
	return b.dirty
}

// LegacyBackend reads and writes a raw platform storage map in place.
// It exists for contexts coming from the older persistence mechanism.
//
// Deprecated: use PersistBackend.
type LegacyBackend struct {
	storage  map[string]any
	onAccess func(*domain.StorageEvent)
}

// NewLegacyBackend wraps storage. onAccess is called on every access and may be nil.
func NewLegacyBackend(storage map[string]any, onAccess func(*domain.StorageEvent)) *LegacyBackend {
	return &LegacyBackend{storage: storage, onAccess: onAccess}
}

func (b *LegacyBackend) Get(group string) (any, bool) {
	b.notify("get", group)
	v, ok := b.storage[group]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (b *LegacyBackend) Set(group string, value any) {
	b.notify("set", group)
	b.storage[group] = value
}

func (b *LegacyBackend) notify(op, group string) {
	if b.onAccess != nil {
		b.onAccess(&domain.StorageEvent{Op: op, Group: group})
	}
}

func backendOf(scope Scope) (Backend, error) {
	if scope == nil {
		return nil, &domain.InvalidContextError{Value: scope}
	}
	if v := reflect.ValueOf(scope); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil, &domain.InvalidContextError{Value: scope, Reason: "nil context"}
	}
	b := scope.Storage()
	if b == nil {
		return nil, &domain.InvalidContextError{Value: scope, Reason: "context has no attribute storage"}
	}
	return b, nil
}
