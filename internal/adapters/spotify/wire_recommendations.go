package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
	"github.com/hongfeij/weather-spotify-alarm/internal/core/ports"
)

// Recommend calls GET /recommendations with seed genres and min/max windows
// for energy, valence, danceability and tempo.
func (c *Client) Recommend(ctx context.Context, q ports.RecommendQuery) ([]domain.Candidate, error) {
	params := url.Values{}
	params.Set("market", q.Market)
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("seed_genres", strings.Join(q.SeedGenres, ","))
	setWindow(params, "energy", q.Energy)
	setWindow(params, "valence", q.Valence)
	setWindow(params, "danceability", q.Danceability)
	params.Set("min_tempo", strconv.Itoa(q.Tempo.Min))
	params.Set("max_tempo", strconv.Itoa(q.Tempo.Max))
	params.Set("min_popularity", strconv.Itoa(q.MinPopularity))

	var body recommendationsResponse
	if err := c.getJSON(ctx, "recommendations", "/recommendations", params, &body); err != nil {
		return nil, err
	}

	tracks := mapTracks(body.Tracks)
	if len(tracks) == 0 {
		return nil, fmt.Errorf("spotify adapter: recommendations for %v: %w", q.SeedGenres, ports.ErrEmptyResult)
	}
	return tracks, nil
}

func setWindow(params url.Values, feature string, w domain.FeatureWindow) {
	params.Set("min_"+feature, strconv.FormatFloat(w.Min, 'f', -1, 64))
	params.Set("max_"+feature, strconv.FormatFloat(w.Max, 'f', -1, 64))
}
