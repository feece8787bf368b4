// Package response provides the default platform-neutral ResponseBuilder.
package response

import (
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
)

// Builder accumulates speech, reprompts and directives for one turn.
type Builder struct {
	speech     []string
	reprompt   string
	endSession *bool
	directives []domain.Directive
}

var _ ports.ResponseBuilder = (*Builder)(nil)

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Speak appends text to the output speech. Consecutive calls are joined with a space.
func (b *Builder) Speak(text string) ports.ResponseBuilder {
	if text != "" {
		b.speech = append(b.speech, text)
	}
	return b
}

func (b *Builder) Reprompt(text string) ports.ResponseBuilder {
	b.reprompt = text
	return b
}

func (b *Builder) EndSession(end bool) ports.ResponseBuilder {
	b.endSession = &end
	return b
}

func (b *Builder) AddDirective(d domain.Directive) ports.ResponseBuilder {
	b.directives = append(b.directives, d)
	return b
}

// Finalize returns a fresh copy of the accumulated response.
func (b *Builder) Finalize() *domain.Response {
	resp := &domain.Response{
		Reprompt: b.reprompt,
	}
	for i, s := range b.speech {
		if i > 0 {
			resp.OutputSpeech += " "
		}
		resp.OutputSpeech += s
	}
	if b.endSession != nil {
		end := *b.endSession
		resp.ShouldEndSession = &end
	}
	if len(b.directives) > 0 {
		resp.Directives = append([]domain.Directive(nil), b.directives...)
	}
	return resp
}
