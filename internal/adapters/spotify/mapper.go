package spotify

import (
	"strings"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
)

const (
	trackURIPrefix = "spotify:track:"
	openTrackURL   = "https://open.spotify.com/track/"
)

// mapTrackToDomain converts a raw Spotify track to a catalog candidate.
func mapTrackToDomain(st spotifyTrack) domain.Candidate {
	artists := make([]string, 0, len(st.Artists))
	for _, a := range st.Artists {
		artists = append(artists, a.Name)
	}

	uri := st.URI
	if uri == "" && st.ID != "" {
		uri = trackURIPrefix + st.ID
	}

	return domain.Candidate{
		URI:        uri,
		URL:        trackURL(st.ExternalURLs.Spotify, uri),
		Name:       st.Name,
		Artists:    artists,
		Explicit:   st.Explicit,
		DurationMs: st.DurationMs,
		Popularity: st.Popularity,
	}
}

// mapTracks drops null entries.
func mapTracks(items []*spotifyTrack) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, mapTrackToDomain(*it))
	}
	return out
}

// trackURL prefers the external URL and otherwise derives the web link from
// a track URI.
func trackURL(external, uri string) string {
	if external != "" {
		return external
	}
	if id, ok := strings.CutPrefix(uri, trackURIPrefix); ok && id != "" {
		return openTrackURL + id
	}
	return ""
}

func mapPlaylistToDomain(sp spotifyPlaylist) domain.PlaylistRef {
	return domain.PlaylistRef{ID: sp.ID, Name: sp.Name}
}

func mapDeviceToDomain(sd spotifyDevice) domain.Device {
	return domain.Device{
		ID:       sd.ID,
		Name:     sd.Name,
		Type:     sd.Type,
		IsActive: sd.IsActive,
	}
}
