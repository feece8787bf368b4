package demo

import (
	"github.com/aretw0/cadence/pkg/state"
)

// Player is the attribute group of the audio player; Playback is nested in it
// so that saving playback never disturbs the player's other settings.
var (
	Player   = state.NewGroup("player", state.Data{"volume": 5})
	Playback = state.NewSubGroup("playback", Player, nil)
)

// PlaybackState is the typed view of the playback sub-group.
type PlaybackState struct {
	Collection string `json:"collection,omitempty"`
	Token      string `json:"token,omitempty"`
	OffsetMS   int64  `json:"offset_ms"`
	Started    bool   `json:"started"`
}

const streamBaseURL = "https://archive.org/download/"
