package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("domain: not found")

// PickEntry is one journaled wake-up response. It is written for operators
// and is never read back by the picker.
type PickEntry struct {
	ID            string      `json:"id"`
	CreatedAt     time.Time   `json:"created_at"`
	Condition     string      `json:"condition"`
	IntentSource  string      `json:"intent_source"`
	Intent        Intent      `json:"intent"`
	Track         TrackRecord `json:"track"`
	HardFallback  bool        `json:"hard_fallback"`
	Played        bool        `json:"played"`
	PlaybackError string      `json:"playback_error,omitempty"`
}
