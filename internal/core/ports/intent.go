package ports

import (
	"context"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
)

// IntentCompiler derives a listening intent from a weather observation,
// typically through a language model.
type IntentCompiler interface {
	CompileIntent(ctx context.Context, req domain.WeatherRequest) (domain.Intent, error)
}

// IntentCache stores compiled intents keyed by weather observation.
type IntentCache interface {
	Get(ctx context.Context, req domain.WeatherRequest) (domain.Intent, bool, error)
	Set(ctx context.Context, req domain.WeatherRequest, intent domain.Intent) error
}
