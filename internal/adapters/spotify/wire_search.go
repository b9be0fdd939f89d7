package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
	"github.com/hongfeij/weather-spotify-alarm/internal/core/ports"
)

// SearchTracks runs a free-text track search in one market.
func (c *Client) SearchTracks(ctx context.Context, query, market string, limit int) ([]domain.Candidate, error) {
	var body trackSearchResponse
	if err := c.getJSON(ctx, "search_track", "/search", searchParams(query, "track", market, limit), &body); err != nil {
		return nil, err
	}

	tracks := mapTracks(body.Tracks.Items)
	if len(tracks) == 0 {
		return nil, fmt.Errorf("spotify adapter: no tracks for %q in %s: %w", query, market, ports.ErrEmptyResult)
	}
	return tracks, nil
}

// SearchPlaylists runs a playlist search in one market. Order follows the
// API's relevance ranking.
func (c *Client) SearchPlaylists(ctx context.Context, query, market string, limit int) ([]domain.PlaylistRef, error) {
	var body playlistSearchResponse
	if err := c.getJSON(ctx, "search_playlist", "/search", searchParams(query, "playlist", market, limit), &body); err != nil {
		return nil, err
	}

	out := make([]domain.PlaylistRef, 0, len(body.Playlists.Items))
	for _, pl := range body.Playlists.Items {
		if pl == nil {
			continue
		}
		out = append(out, mapPlaylistToDomain(*pl))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("spotify adapter: no playlists for %q in %s: %w", query, market, ports.ErrEmptyResult)
	}
	return out, nil
}

func searchParams(query, kind, market string, limit int) url.Values {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", kind)
	params.Set("market", market)
	params.Set("limit", strconv.Itoa(limit))
	return params
}
