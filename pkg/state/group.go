package state

import (
	"github.com/aretw0/cadence/pkg/domain"
)

// Data is the JSON-compatible document of a group or sub-group.
type Data = map[string]any

// Accessor reads and writes one level of the attribute hierarchy.
type Accessor interface {
	GetData(scope Scope) (Data, error)
	SetData(scope Scope, value Data) error
}

// Group owns one top-level key of the attributes document.
type Group struct {
	name     string
	defaults Data
}

// NewGroup creates an accessor for the top-level key name.
// defaults is returned (as a copy) while the group was never written.
func NewGroup(name string, defaults Data) *Group {
	return &Group{name: name, defaults: defaults}
}

// Name returns the key owned by the group.
func (g *Group) Name() string { return g.name }

// GetData returns a copy of the stored group, or of its defaults.
func (g *Group) GetData(scope Scope) (Data, error) {
	b, err := backendOf(scope)
	if err != nil {
		return nil, err
	}
	if v, ok := b.Get(g.name); ok {
		if d, ok := asData(v); ok {
			return cloneData(d), nil
		}
	}
	return cloneData(g.defaults), nil
}

// SetData replaces the group's key and leaves every other group untouched.
func (g *Group) SetData(scope Scope, value Data) error {
	b, err := backendOf(scope)
	if err != nil {
		return err
	}
	b.Set(g.name, cloneData(value))
	return nil
}

// SubGroup is a named view nested inside a parent accessor.
type SubGroup struct {
	name     string
	parent   Accessor
	defaults Data
}

// NewSubGroup creates an accessor for key name inside parent.
func NewSubGroup(name string, parent Accessor, defaults Data) *SubGroup {
	return &SubGroup{name: name, parent: parent, defaults: defaults}
}

// Name returns the key owned by the sub-group inside its parent.
func (s *SubGroup) Name() string { return s.name }

// GetData returns a copy of the sub-group's value in the parent, or of its defaults.
func (s *SubGroup) GetData(scope Scope) (Data, error) {
	parent, err := s.parent.GetData(scope)
	if err != nil {
		return nil, err
	}
	if d, ok := asData(parent[s.name]); ok {
		return cloneData(d), nil
	}
	return cloneData(s.defaults), nil
}

// SetData merges value under the sub-group's key into the parent's current data.
func (s *SubGroup) SetData(scope Scope, value Data) error {
	parent, err := s.parent.GetData(scope)
	if err != nil {
		return err
	}
	merged := cloneData(parent)
	merged[s.name] = cloneData(value)
	return s.parent.SetData(scope, merged)
}

func asData(v any) (Data, bool) {
	switch d := v.(type) {
	case map[string]any:
		return d, true
	case domain.Attributes:
		return map[string]any(d), true
	default:
		return nil, false
	}
}

func cloneData(d Data) Data {
	if d == nil {
		return Data{}
	}
	return domain.CopyMap(d)
}
