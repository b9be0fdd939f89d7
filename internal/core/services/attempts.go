package services

import (
	"iter"
	"math/rand/v2"
	"strings"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
)

// Strategy names one catalog lookup technique.
type Strategy string

const (
	StrategyRecommendations Strategy = "recommendations"
	StrategySearch          Strategy = "search"
	StrategyPlaylist        Strategy = "playlist"
	StrategyHardFallback    Strategy = "hard_fallback"
)

const (
	fallbackPlaylistGenre = "pop"
	fallbackPlaylistMood  = "upbeat"
)

// attempt is one catalog lookup in the cascade.
type attempt struct {
	strategy Strategy
	query    string
	market   string
}

// attempts yields the cascade in priority order. Shuffles are drawn lazily,
// so nothing past the winning attempt is ever materialized.
func (p *Picker) attempts(intent domain.Intent, rng *rand.Rand) iter.Seq[attempt] {
	return func(yield func(attempt) bool) {
		market, _ := sampleTop(rng, p.cfg.Markets, len(p.cfg.Markets))
		if !yield(attempt{strategy: StrategyRecommendations, market: market}) {
			return
		}

		genres := searchGenres(intent.Genres)
		moods := domain.MoodKeywords(intent)

		queries := shuffled(rng, searchQueries(genres, moods))
		markets := shuffled(rng, p.cfg.Markets)
		for _, q := range queries {
			for _, m := range markets {
				if !yield(attempt{strategy: StrategySearch, query: q, market: m}) {
					return
				}
			}
		}

		for _, phrase := range shuffled(rng, playlistPhrases(genres, moods)) {
			for _, m := range shuffled(rng, p.cfg.Markets) {
				if !yield(attempt{strategy: StrategyPlaylist, query: phrase, market: m}) {
					return
				}
			}
		}
	}
}

func searchGenres(genres []string) []string {
	seen := make(map[string]struct{}, len(genres))
	out := make([]string, 0, domain.MaxIntentGenre)
	for _, g := range genres {
		g = domain.CanonicalGenre(g)
		if g == "" {
			continue
		}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
		if len(out) == domain.MaxIntentGenre {
			break
		}
	}
	return out
}

// searchQueries builds the free-text variants, most specific first. The two
// generic wake-up phrases are always present.
func searchQueries(genres []string, moods []string) []string {
	var out []string
	moodText := strings.Join(moods, " ")

	if len(genres) > 0 && len(moods) > 0 {
		filters := make([]string, len(genres))
		for i, g := range genres {
			filters[i] = `genre:"` + g + `"`
		}
		base := strings.Join(filters, " ") + " " + moodText
		out = append(out, base+" NOT live", base)
	}
	if len(moods) > 0 {
		out = append(out, moodText+" NOT live", moodText)
	}
	return append(out, `"good morning"`, `"wake up"`)
}

func playlistPhrases(genres []string, moods []string) []string {
	genre := fallbackPlaylistGenre
	if len(genres) > 0 {
		genre = genres[0]
	}
	mood := fallbackPlaylistMood
	if len(moods) > 0 {
		mood = moods[0]
	}
	return []string{"Good Morning", genre + " morning", mood + " morning"}
}
