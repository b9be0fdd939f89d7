package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
	"github.com/hongfeij/weather-spotify-alarm/internal/core/ports"
)

// PlaylistTracks lists the first tracks of a playlist, skipping entries
// without a track object.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID, market string, limit int) ([]domain.Candidate, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("market", market)

	var body playlistTracksResponse
	path := "/playlists/" + url.PathEscape(playlistID) + "/tracks"
	if err := c.getJSON(ctx, "playlist_tracks", path, params, &body); err != nil {
		return nil, err
	}

	items := make([]*spotifyTrack, 0, len(body.Items))
	for _, it := range body.Items {
		items = append(items, it.Track)
	}
	tracks := mapTracks(items)
	if len(tracks) == 0 {
		return nil, fmt.Errorf("spotify adapter: playlist %s empty in %s: %w", playlistID, market, ports.ErrEmptyResult)
	}
	return tracks, nil
}
