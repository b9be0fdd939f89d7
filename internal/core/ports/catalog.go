package ports

import (
	"context"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
)

// RecommendQuery carries the feature-based recommendation parameters.
type RecommendQuery struct {
	SeedGenres    []string
	Market        string
	Energy        domain.FeatureWindow
	Valence       domain.FeatureWindow
	Danceability  domain.FeatureWindow
	Tempo         domain.TempoBand
	MinPopularity int
	Limit         int
}

// Catalog is the authenticated track catalog the picker queries. Every method
// returns either candidates or an error; an empty slice with a nil error is
// treated the same as ErrEmptyResult by the picker.
type Catalog interface {
	Recommend(ctx context.Context, q RecommendQuery) ([]domain.Candidate, error)
	SearchTracks(ctx context.Context, query, market string, limit int) ([]domain.Candidate, error)
	SearchPlaylists(ctx context.Context, query, market string, limit int) ([]domain.PlaylistRef, error)
	PlaylistTracks(ctx context.Context, playlistID, market string, limit int) ([]domain.Candidate, error)
}

// CatalogAuthenticator obtains (or refreshes) the catalog credentials ahead
// of a pick so callers can report an unavailable upstream early.
type CatalogAuthenticator interface {
	Authenticate(ctx context.Context) error
}
