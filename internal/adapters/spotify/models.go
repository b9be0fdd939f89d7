package spotify

// spotifyArtist is the simplified artist object embedded in tracks.
type spotifyArtist struct {
	Name string `json:"name"`
}

type spotifyExternalURLs struct {
	Spotify string `json:"spotify"`
}

// spotifyTrack is the subset of the Spotify track object the picker reads.
type spotifyTrack struct {
	ID           string              `json:"id"`
	URI          string              `json:"uri"`
	Name         string              `json:"name"`
	Artists      []spotifyArtist     `json:"artists"`
	Explicit     bool                `json:"explicit"`
	DurationMs   int                 `json:"duration_ms"`
	Popularity   int                 `json:"popularity"`
	ExternalURLs spotifyExternalURLs `json:"external_urls"`
}

// recommendationsResponse is the body of GET /recommendations.
type recommendationsResponse struct {
	Tracks []*spotifyTrack `json:"tracks"`
}

// trackSearchResponse is the body of GET /search?type=track.
type trackSearchResponse struct {
	Tracks struct {
		Items []*spotifyTrack `json:"items"`
	} `json:"tracks"`
}

// spotifyPlaylist is a simplified playlist object from a playlist search.
type spotifyPlaylist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// playlistSearchResponse is the body of GET /search?type=playlist. The API
// may return null entries in items.
type playlistSearchResponse struct {
	Playlists struct {
		Items []*spotifyPlaylist `json:"items"`
	} `json:"playlists"`
}

// playlistTracksResponse is the body of GET /playlists/{id}/tracks. Local
// files and removed tracks come back with a null track.
type playlistTracksResponse struct {
	Items []struct {
		Track *spotifyTrack `json:"track"`
	} `json:"items"`
}

// spotifyDevice is a Spotify Connect device.
type spotifyDevice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsActive bool   `json:"is_active"`
}

type devicesResponse struct {
	Devices []spotifyDevice `json:"devices"`
}

// playRequest is the body of PUT /me/player/play.
type playRequest struct {
	URIs []string `json:"uris"`
}

// transferRequest is the body of PUT /me/player.
type transferRequest struct {
	DeviceIDs []string `json:"device_ids"`
	Play      bool     `json:"play"`
}
