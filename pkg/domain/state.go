package domain

// State is an application-defined conversation state (e.g. "idle", "in-progress").
// The zero value means no state has been recorded yet.
type State string

// StateNone is the state of a feature that was never written.
const StateNone State = ""

// String returns the raw state value.
func (s State) String() string {
	return string(s)
}

// In reports whether s is one of the given states.
func (s State) In(states ...State) bool {
	for _, candidate := range states {
		if candidate == s {
			return true
		}
	}
	return false
}
