package domain

// Slot is a single resolved slot value carried by an intent.
type Slot struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Envelope is the normalized request of one turn.
// It is built by a platform adapter and must be treated as read-only.
type Envelope struct {
	// IntentName is the platform-native intent identifier (e.g. "AMAZON.RestartGameIntent").
	IntentName string `json:"intent_name,omitempty"`

	// RequestType is the platform-native request type, possibly namespaced
	// (e.g. "AudioPlayer.PlaybackStarted", "LaunchRequest").
	RequestType string `json:"request_type,omitempty"`

	UserID     string          `json:"user_id,omitempty"`
	SessionID  string          `json:"session_id,omitempty"`
	NewSession bool            `json:"new_session,omitempty"`
	Locale     string          `json:"locale,omitempty"`
	Slots      map[string]Slot `json:"slots,omitempty"`

	// Session holds opaque platform session data.
	Session map[string]any `json:"session,omitempty"`
}

// HasIdentifier reports whether the envelope carries anything a resolver can match on.
func (e *Envelope) HasIdentifier() bool {
	return e != nil && (e.IntentName != "" || e.RequestType != "")
}

// SlotValue returns the value of a slot, or "" if it is missing.
func (e *Envelope) SlotValue(name string) string {
	if e == nil || e.Slots == nil {
		return ""
	}
	return e.Slots[name].Value
}
