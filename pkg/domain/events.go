package domain

import (
	"context"
	"time"
)

// Outcome classifies how a turn ended.
type Outcome string

const (
	OutcomeHandled    Outcome = "handled"
	OutcomeUnresolved Outcome = "unresolved"
	OutcomeFailed     Outcome = "failed"
)

// TurnEvent describes one turn for observers.
type TurnEvent struct {
	Timestamp   time.Time     `json:"timestamp"`
	TurnID      string        `json:"turn_id"`
	IntentName  string        `json:"intent_name,omitempty"`
	RequestType string        `json:"request_type,omitempty"`
	Action      string        `json:"action,omitempty"`
	Rule        string        `json:"rule,omitempty"`
	State       State         `json:"state,omitempty"`
	Outcome     Outcome       `json:"outcome,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Err         error         `json:"-"`
}

// PersistenceEvent describes an absorbed persistence failure.
type PersistenceEvent struct {
	TurnID string
	Op     PersistenceOp
	Err    error
}

// StorageEvent describes an access through the deprecated raw storage backend.
type StorageEvent struct {
	Op    string
	Group string
}

// TurnHooks defines callbacks for executor observability.
// Any hook may be nil.
type TurnHooks struct {
	OnTurnStart         func(context.Context, *TurnEvent)
	OnActionResolved    func(context.Context, *TurnEvent)
	OnTurnEnd           func(context.Context, *TurnEvent)
	OnPersistenceError  func(context.Context, *PersistenceEvent)
	OnDeprecatedStorage func(*StorageEvent)
}

// Merge returns hooks that call h first and then other.
func (h TurnHooks) Merge(other TurnHooks) TurnHooks {
	return TurnHooks{
		OnTurnStart:         chain(h.OnTurnStart, other.OnTurnStart),
		OnActionResolved:    chain(h.OnActionResolved, other.OnActionResolved),
		OnTurnEnd:           chain(h.OnTurnEnd, other.OnTurnEnd),
		OnPersistenceError:  chain(h.OnPersistenceError, other.OnPersistenceError),
		OnDeprecatedStorage: chainStorage(h.OnDeprecatedStorage, other.OnDeprecatedStorage),
	}
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainStorage(a, b func(*StorageEvent)) func(*StorageEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(e *StorageEvent) {
		a(e)
		b(e)
	}
}
