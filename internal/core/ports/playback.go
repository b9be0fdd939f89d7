package ports

import (
	"context"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
)

// Player starts a track on one of the user's linked devices.
type Player interface {
	Play(ctx context.Context, trackURI string, preferredDevice string) (domain.PlaybackResult, error)
}
