// Package resolver finds the registered action for a turn's envelope.
package resolver

import (
	"io"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/naming"
	"github.com/aretw0/cadence/pkg/registry"
)

// Rule names the step of the resolution chain that produced a match.
type Rule string

const (
	RuleDirect         Rule = "direct"
	RuleExact          Rule = "exact"
	RuleIntentStripped Rule = "intent_stripped"
	RuleRequestType    Rule = "request_type"
	RuleTruncated      Rule = "truncated"
)

var (
	// <Namespace>.<Base>Intent, e.g. AMAZON.RestartGameIntent
	namespacedIntent = regexp.MustCompile(`^[^.]+\.(.+)Intent$`)
	// <Namespace>.<Rest>, e.g. AudioPlayer.PlaybackStarted
	namespaced = regexp.MustCompile(`^[^.]+\.(.+)$`)
)

// Match is the outcome of a successful resolution.
type Match struct {
	Action *registry.Action
	// Name is the canonical name that hit the registry.
	Name string
	// Identifier is the platform identifier Name was derived from.
	Identifier string
	Rule       Rule
}

// Resolver maps envelopes onto a registry.
type Resolver struct {
	registry     *registry.Registry
	minTruncated int
	logger       *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used to trace resolution steps.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMinTruncatedLength stops underscore truncation once the remaining
// identifier is shorter than n runes. Zero keeps every truncation.
func WithMinTruncatedLength(n int) Option {
	return func(r *Resolver) {
		r.minTruncated = n
	}
}

// New creates a resolver over reg.
func New(reg *registry.Registry, opts ...Option) *Resolver {
	r := &Resolver{
		registry: reg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Direct matches an action whose platform-cased name equals the envelope's
// intent (namespace and Intent suffix stripped) or, when there is no intent,
// its request type (namespace stripped).
func (r *Resolver) Direct(env *domain.Envelope) (Match, bool) {
	var id string
	switch {
	case env == nil:
		return Match{}, false
	case env.IntentName != "":
		id = stripIntent(env.IntentName)
	case env.RequestType != "":
		id = stripNamespace(env.RequestType)
	default:
		return Match{}, false
	}

	name := naming.ToCanonical(id)
	if a, ok := r.registry.Get(name); ok && a.PlatformName() == id {
		return Match{Action: a, Name: name, Identifier: id, Rule: RuleDirect}, true
	}
	return Match{}, false
}

// Resolve runs the fallback chain; the first hit wins:
//
//  1. the full intent name;
//  2. the intent without its namespace and Intent suffix;
//  3. the request type without its namespace;
//  4. the surviving identifier with trailing "_" segments removed one at a time.
//
// An envelope with neither intent nor request type never matches.
func (r *Resolver) Resolve(env *domain.Envelope) (Match, bool) {
	if !env.HasIdentifier() {
		return Match{}, false
	}

	var id string
	if env.IntentName != "" {
		id = env.IntentName
		if m, ok := r.lookup(id, RuleExact); ok {
			return m, true
		}

		if sub := namespacedIntent.FindStringSubmatch(id); sub != nil {
			id = sub[1]
			if m, ok := r.lookup(id, RuleIntentStripped); ok {
				return m, true
			}
		}
	}

	if env.RequestType != "" {
		id = stripNamespace(env.RequestType)
		if m, ok := r.lookup(id, RuleRequestType); ok {
			return m, true
		}
	}

	segments := strings.Split(id, "_")
	for len(segments) > 1 {
		segments = segments[:len(segments)-1]
		candidate := strings.Join(segments, "_")
		if candidate == "" {
			break
		}
		if r.minTruncated > 0 && utf8.RuneCountInString(candidate) < r.minTruncated {
			r.logger.Debug("truncation below minimum length", "candidate", candidate, "min", r.minTruncated)
			break
		}
		r.logger.Debug("trying truncated identifier", "candidate", candidate)
		if m, ok := r.lookup(candidate, RuleTruncated); ok {
			return m, true
		}
	}

	return Match{}, false
}

func (r *Resolver) lookup(id string, rule Rule) (Match, bool) {
	name := naming.ToCanonical(id)
	a, ok := r.registry.Get(name)
	if !ok {
		return Match{}, false
	}
	return Match{Action: a, Name: name, Identifier: id, Rule: rule}, true
}

func stripIntent(name string) string {
	if sub := namespacedIntent.FindStringSubmatch(name); sub != nil {
		return sub[1]
	}
	return name
}

func stripNamespace(requestType string) string {
	if sub := namespaced.FindStringSubmatch(requestType); sub != nil {
		return sub[1]
	}
	return requestType
}
