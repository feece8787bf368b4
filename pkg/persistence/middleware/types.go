package middleware

import "github.com/aretw0/cadence/pkg/ports"

// Middleware allows wrapping an AttributeStore to add behavior.
type Middleware func(ports.AttributeStore) ports.AttributeStore

// Chain applies middlewares so that the first one listed is the outermost.
func Chain(store ports.AttributeStore, mws ...Middleware) ports.AttributeStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
