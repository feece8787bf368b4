package domain

// Response is the platform-neutral reply of a turn.
// Platform adapters translate it into their wire format.
type Response struct {
	OutputSpeech     string      `json:"output_speech,omitempty"`
	Reprompt         string      `json:"reprompt,omitempty"`
	ShouldEndSession *bool       `json:"should_end_session,omitempty"`
	Directives       []Directive `json:"directives,omitempty"`
}

// Directive is a platform instruction attached to a response (e.g. start audio playback).
type Directive struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// IsEmpty reports whether the response carries nothing for the platform to act on.
func (r *Response) IsEmpty() bool {
	return r == nil || (r.OutputSpeech == "" && r.Reprompt == "" && r.ShouldEndSession == nil && len(r.Directives) == 0)
}
