// Package fsm selects the handler variant of an action from the conversation
// state persisted in the action's feature group.
//
// Selection is a pure function of the state stored when the turn starts.
// Handlers move the machine forward by writing the next state before they return.
package fsm

import (
	"fmt"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/registry"
	"github.com/aretw0/cadence/pkg/state"
)

// StateKey is the key holding the state inside a feature group.
const StateKey = "state"

// Feature reads and writes the state of one feature group.
type Feature struct {
	group *state.Group
}

// NewFeature returns the state accessor of the named attribute group.
func NewFeature(name string) *Feature {
	return &Feature{group: state.NewGroup(name, nil)}
}

// Default is the feature used by actions that do not declare one.
var Default = NewFeature(registry.DefaultFeature)

// Name returns the feature group name.
func (f *Feature) Name() string { return f.group.Name() }

// Get returns the current state, or domain.StateNone if none was written.
func (f *Feature) Get(scope state.Scope) (domain.State, error) {
	data, err := f.group.GetData(scope)
	if err != nil {
		return domain.StateNone, err
	}
	s, _ := data[StateKey].(string)
	return domain.State(s), nil
}

// Set writes the next state, keeping every other key of the feature group.
func (f *Feature) Set(scope state.Scope, s domain.State) error {
	data, err := f.group.GetData(scope)
	if err != nil {
		return err
	}
	data[StateKey] = string(s)
	return f.group.SetData(scope, data)
}

// SetState writes the next state of the default feature.
func SetState(scope state.Scope, s domain.State) error {
	return Default.Set(scope, s)
}

// CurrentState returns the state of an action's feature.
func CurrentState(scope state.Scope, action *registry.Action) (domain.State, error) {
	return featureOf(action).Get(scope)
}

// Select picks the variant of action to run:
//
//  1. the first variant guarded by the current state;
//  2. otherwise the variant explicitly marked Default;
//  3. otherwise the first unguarded variant.
//
// With none of these it fails with *domain.NoEligibleHandlerError.
func Select(scope state.Scope, action *registry.Action) (registry.HandlerVariant, domain.State, error) {
	if action == nil {
		return registry.HandlerVariant{}, domain.StateNone, fmt.Errorf("select handler: %w", &domain.NoEligibleHandlerError{})
	}

	current, err := CurrentState(scope, action)
	if err != nil {
		return registry.HandlerVariant{}, domain.StateNone, err
	}

	variants := action.Variants()
	if current != domain.StateNone {
		for _, v := range variants {
			if v.Accepts(current) {
				return v, current, nil
			}
		}
	}

	for _, v := range variants {
		if v.Default {
			return v, current, nil
		}
	}
	for _, v := range variants {
		if !v.Guarded() {
			return v, current, nil
		}
	}

	return registry.HandlerVariant{}, current, &domain.NoEligibleHandlerError{Action: action.Name(), State: current}
}

func featureOf(action *registry.Action) *Feature {
	if action.Feature() == registry.DefaultFeature {
		return Default
	}
	return NewFeature(action.Feature())
}
