package registry

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"sort"

	"github.com/aretw0/cadence/pkg/conversation"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/naming"
)

// DefaultFeature is the attribute group holding the state of actions that do not name one.
const DefaultFeature = "fsm"

var canonicalName = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// HandlerFunc implements one variant of an action.
type HandlerFunc func(ctx context.Context, app *conversation.App) error

// HandlerVariant is a state-specific implementation of an action.
// A variant without States is unguarded and may serve as the default.
type HandlerVariant struct {
	States  []domain.State
	Default bool
	Handle  HandlerFunc
}

// On returns a variant guarded by the given states.
func On(handle HandlerFunc, states ...domain.State) HandlerVariant {
	return HandlerVariant{States: states, Handle: handle}
}

// Default returns an explicit default variant.
func Default(handle HandlerFunc) HandlerVariant {
	return HandlerVariant{Default: true, Handle: handle}
}

// Guarded reports whether the variant only runs in specific states.
func (v HandlerVariant) Guarded() bool {
	return len(v.States) > 0
}

// Accepts reports whether the variant is guarded by s.
func (v HandlerVariant) Accepts(s domain.State) bool {
	return s.In(v.States...)
}

// Definition describes an action before it is registered.
type Definition struct {
	// Name is the canonical action name (e.g. "restart-game").
	Name string

	// Feature is the attribute group whose "state" key drives variant selection.
	// Empty means DefaultFeature.
	Feature string

	// States optionally declares every state the action's guards may use.
	// When set, guards naming any other state fail the build.
	States []domain.State

	Variants []HandlerVariant
}

// Action is a registered, immutable action.
type Action struct {
	name     string
	feature  string
	states   []domain.State
	variants []HandlerVariant
}

// Name returns the canonical name.
func (a *Action) Name() string { return a.name }

// PlatformName returns the name in platform casing (e.g. "RestartGame").
func (a *Action) PlatformName() string { return naming.ToPlatformCase(a.name) }

// Feature returns the attribute group holding the action's state.
func (a *Action) Feature() string { return a.feature }

// States returns the declared state set, if any.
func (a *Action) States() []domain.State { return slices.Clone(a.states) }

// Variants returns the ordered handler variants.
func (a *Action) Variants() []HandlerVariant { return slices.Clone(a.variants) }

// Module contributes one action to a registry.
type Module interface {
	Definition() Definition
}

// Registry maps canonical names to actions. It is immutable once built and safe
// for concurrent use.
type Registry struct {
	actions map[string]*Action
	names   []string
}

// Get looks up an action by exact canonical name.
func (r *Registry) Get(name string) (*Action, bool) {
	if r == nil || name == "" {
		return nil, false
	}
	a, ok := r.actions[name]
	return a, ok
}

// Names returns the registered names in lexical order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.names)
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.actions)
}

// Builder collects definitions and validates them into a Registry.
type Builder struct {
	defs []Definition
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Register adds an action using the default feature group.
func (b *Builder) Register(name string, variants ...HandlerVariant) *Builder {
	return b.Add(Definition{Name: name, Variants: variants})
}

// Add adds a full definition.
func (b *Builder) Add(def Definition) *Builder {
	b.defs = append(b.defs, def)
	return b
}

// Build validates every definition and returns the registry.
// All problems are reported together in a *domain.ValidationError.
func (b *Builder) Build() (*Registry, error) {
	reg := &Registry{actions: make(map[string]*Action, len(b.defs))}
	var problems []string

	for _, def := range b.defs {
		if errs := validate(def); len(errs) > 0 {
			problems = append(problems, errs...)
			continue
		}
		if _, dup := reg.actions[def.Name]; dup {
			problems = append(problems, fmt.Sprintf("action %q registered twice", def.Name))
			continue
		}

		feature := def.Feature
		if feature == "" {
			feature = DefaultFeature
		}
		reg.actions[def.Name] = &Action{
			name:     def.Name,
			feature:  feature,
			states:   slices.Clone(def.States),
			variants: slices.Clone(def.Variants),
		}
		reg.names = append(reg.names, def.Name)
	}

	if len(problems) > 0 {
		return nil, &domain.ValidationError{Problems: problems}
	}
	sort.Strings(reg.names)
	return reg, nil
}

// FromModules builds a registry with one action per module.
func FromModules(modules ...Module) (*Registry, error) {
	b := NewBuilder()
	for _, m := range modules {
		b.Add(m.Definition())
	}
	return b.Build()
}

func validate(def Definition) []string {
	var problems []string
	if !canonicalName.MatchString(def.Name) {
		problems = append(problems, fmt.Sprintf("action name %q is not canonical (lower-case words joined by '-')", def.Name))
	}
	if len(def.Variants) == 0 {
		problems = append(problems, fmt.Sprintf("action %q has no handler variants", def.Name))
	}
	for i, v := range def.Variants {
		if v.Handle == nil {
			problems = append(problems, fmt.Sprintf("action %q variant %d has no handler", def.Name, i))
		}
		for _, s := range v.States {
			if s == domain.StateNone {
				problems = append(problems, fmt.Sprintf("action %q variant %d has an empty state guard", def.Name, i))
				continue
			}
			if len(def.States) > 0 && !s.In(def.States...) {
				problems = append(problems, fmt.Sprintf("action %q variant %d guards undeclared state %q", def.Name, i, s))
			}
		}
	}
	return problems
}
