package domain

import "strings"

// Candidate is a raw catalog track as returned by any catalog lookup.
type Candidate struct {
	URI        string
	URL        string
	Name       string
	Artists    []string
	Explicit   bool
	DurationMs int
	Popularity int
}

// ArtistLine joins all performer names with ", ".
func (c Candidate) ArtistLine() string {
	return strings.Join(c.Artists, ", ")
}

// Record maps a candidate to the output shape.
func (c Candidate) Record() TrackRecord {
	return TrackRecord{
		URI:    c.URI,
		URL:    c.URL,
		Name:   c.Name,
		Artist: c.ArtistLine(),
	}
}

// PlaylistRef identifies a playlist returned by a playlist search.
type PlaylistRef struct {
	ID   string
	Name string
}

// TrackRecord is the single recommendation handed back to callers.
type TrackRecord struct {
	URI    string `json:"uri"`
	URL    string `json:"url"`
	Name   string `json:"name"`
	Artist string `json:"artist"`
}

const hardFallbackID = "11dFghVXANMlKmJXsNCbNl"

// HardFallbackTrack is returned when every catalog strategy came up empty.
func HardFallbackTrack() TrackRecord {
	return TrackRecord{
		URI:    "spotify:track:" + hardFallbackID,
		URL:    "https://open.spotify.com/track/" + hardFallbackID,
		Name:   "Hard Fallback Track",
		Artist: "Spotify Example",
	}
}

// IsHardFallback reports whether r is the fixed fallback track.
func (r TrackRecord) IsHardFallback() bool {
	return r.URI == HardFallbackTrack().URI
}
