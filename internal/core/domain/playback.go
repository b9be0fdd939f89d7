package domain

// Device is a playback target exposed by the speaker platform.
type Device struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsActive bool   `json:"-"`
}

// PlaybackResult reports where a track was started.
type PlaybackResult struct {
	Device Device `json:"device"`
	OK     bool   `json:"ok"`
}
