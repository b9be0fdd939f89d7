package ports

import (
	"context"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
)

type PickJournal interface {
	Record(ctx context.Context, e domain.PickEntry) error
	Recent(ctx context.Context, limit int) ([]domain.PickEntry, error)
}
