package services

import (
	"math/rand/v2"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
)

// filterWithFallback keeps the items matching keep, unless nothing matches,
// in which case the input is returned unchanged. A non-empty input therefore
// never yields an empty pool.
func filterWithFallback[T any](items []T, keep func(T) bool) []T {
	filtered := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			filtered = append(filtered, it)
		}
	}
	if len(filtered) == 0 {
		return items
	}
	return filtered
}

// filterStrict keeps only matching items.
func filterStrict[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// sampleTop picks uniformly among the first n items.
func sampleTop[T any](rng *rand.Rand, items []T, n int) (T, bool) {
	var zero T
	if len(items) == 0 || n <= 0 {
		return zero, false
	}
	top := items[:min(n, len(items))]
	return top[rng.IntN(len(top))], true
}

func shuffled[T any](rng *rand.Rand, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func notExplicit(c domain.Candidate) bool {
	return !c.Explicit
}

// playable drops entries that cannot fill every TrackRecord field, such as
// local files or episodes without a public link or performer.
func playable(c domain.Candidate) bool {
	return c.URI != "" && c.URL != "" && c.Name != "" && len(c.Artists) > 0
}

func durationWithin(minMs, maxMs int) func(domain.Candidate) bool {
	return func(c domain.Candidate) bool {
		return c.DurationMs >= minMs && c.DurationMs <= maxMs
	}
}
