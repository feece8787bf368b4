package ports

import "github.com/aretw0/cadence/pkg/domain"

// ResponseBuilder accumulates the reply of a turn.
// Implementations are used by a single turn and need not be safe for concurrent use.
type ResponseBuilder interface {
	Speak(text string) ResponseBuilder
	Reprompt(text string) ResponseBuilder
	EndSession(end bool) ResponseBuilder
	AddDirective(d domain.Directive) ResponseBuilder

	// Finalize returns the built response. It may be called more than once.
	Finalize() *domain.Response
}
