package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
	"github.com/hongfeij/weather-spotify-alarm/internal/core/ports"
	"github.com/hongfeij/weather-spotify-alarm/internal/metrics"
)

// PickerConfig holds the tunable constants of the selection cascade.
type PickerConfig struct {
	MinPopularity       int
	MinDurationMs       int
	MaxDurationMs       int
	TopSlice            int
	RecommendLimit      int
	SearchLimit         int
	PlaylistSearchLimit int
	PlaylistTrackLimit  int
	Markets             []string
	CallTimeout         time.Duration
}

// DefaultPickerConfig returns the production defaults.
func DefaultPickerConfig() PickerConfig {
	return PickerConfig{
		MinPopularity:       35,
		MinDurationMs:       120000,
		MaxDurationMs:       420000,
		TopSlice:            30,
		RecommendLimit:      50,
		SearchLimit:         20,
		PlaylistSearchLimit: 5,
		PlaylistTrackLimit:  50,
		Markets:             []string{"JP", "US", "GB", "DE", "KR"},
		CallTimeout:         8 * time.Second,
	}
}

func (c PickerConfig) withDefaults() PickerConfig {
	d := DefaultPickerConfig()
	// zero popularity disables the floor; only a negative value is unset
	if c.MinPopularity < 0 {
		c.MinPopularity = d.MinPopularity
	}
	if c.MinDurationMs <= 0 {
		c.MinDurationMs = d.MinDurationMs
	}
	if c.MaxDurationMs <= 0 {
		c.MaxDurationMs = d.MaxDurationMs
	}
	if c.TopSlice <= 0 {
		c.TopSlice = d.TopSlice
	}
	if c.RecommendLimit <= 0 {
		c.RecommendLimit = d.RecommendLimit
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = d.SearchLimit
	}
	if c.PlaylistSearchLimit <= 0 {
		c.PlaylistSearchLimit = d.PlaylistSearchLimit
	}
	if c.PlaylistTrackLimit <= 0 {
		c.PlaylistTrackLimit = d.PlaylistTrackLimit
	}
	if len(c.Markets) == 0 {
		c.Markets = d.Markets
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = d.CallTimeout
	}
	return c
}

// Pick is a picker result together with the attempt that produced it.
type Pick struct {
	Track    domain.TrackRecord
	Strategy Strategy
	Query    string
	Market   string
}

// Picker turns a listening intent into one concrete track. It tries feature
// recommendations, then free-text search, then playlist sampling, and finally
// returns a fixed fallback track; it never fails.
type Picker struct {
	catalog ports.Catalog
	cfg     PickerConfig
	logger  *zap.Logger
	newRand func() *rand.Rand
}

// PickerOption customizes a Picker.
type PickerOption func(*Picker)

// WithLogger sets the logger used for attempt diagnostics.
func WithLogger(logger *zap.Logger) PickerOption {
	return func(p *Picker) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRandSource sets the generator factory. It is called once per pick.
func WithRandSource(newRand func() *rand.Rand) PickerOption {
	return func(p *Picker) {
		if newRand != nil {
			p.newRand = newRand
		}
	}
}

// NewPicker constructs a Picker. Zero fields in cfg take their defaults.
func NewPicker(catalog ports.Catalog, cfg PickerConfig, opts ...PickerOption) *Picker {
	p := &Picker{
		catalog: catalog,
		cfg:     cfg.withDefaults(),
		logger:  zap.NewNop(),
		newRand: func() *rand.Rand {
			// #nosec G404 -- variety, not security
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named("picker")
	return p
}

// PickTrack returns a track for intent. It always returns a complete record.
func (p *Picker) PickTrack(ctx context.Context, intent domain.Intent) domain.TrackRecord {
	return p.Pick(ctx, intent).Track
}

// Pick runs the cascade and reports which attempt won.
func (p *Picker) Pick(ctx context.Context, intent domain.Intent) Pick {
	start := time.Now()
	defer func() { metrics.PickDuration.Observe(time.Since(start).Seconds()) }()

	rng := p.newRand()
	for a := range p.attempts(intent, rng) {
		if ctx.Err() != nil {
			p.logger.Warn("pick_aborted", zap.Error(ctx.Err()))
			break
		}

		rec, err := p.try(ctx, a, intent, rng)
		outcome := ports.ClassifyAttempt(err)
		metrics.PickAttempts.WithLabelValues(string(a.strategy), outcome).Inc()
		if err != nil {
			p.logger.Debug("pick_attempt",
				zap.String("strategy", string(a.strategy)),
				zap.String("q", a.query),
				zap.String("market", a.market),
				zap.String("outcome", outcome),
				zap.Error(err))
			continue
		}

		p.logger.Info(successEvent(a.strategy),
			zap.String("q", a.query),
			zap.String("market", a.market),
			zap.String("name", rec.Name),
			zap.String("artist", rec.Artist))
		metrics.Picks.WithLabelValues(string(a.strategy)).Inc()
		return Pick{Track: rec, Strategy: a.strategy, Query: a.query, Market: a.market}
	}

	p.logger.Warn("pick_hard_fallback")
	metrics.Picks.WithLabelValues(string(StrategyHardFallback)).Inc()
	return Pick{Track: domain.HardFallbackTrack(), Strategy: StrategyHardFallback}
}

func successEvent(s Strategy) string {
	switch s {
	case StrategyRecommendations:
		return "pick_recommendation"
	case StrategyPlaylist:
		return "pick_from_playlist"
	default:
		return "pick_track"
	}
}

func (p *Picker) try(ctx context.Context, a attempt, intent domain.Intent, rng *rand.Rand) (domain.TrackRecord, error) {
	switch a.strategy {
	case StrategyRecommendations:
		return p.recommendationPick(ctx, intent, a.market, rng)
	case StrategySearch:
		return p.searchPick(ctx, a.query, a.market, rng)
	case StrategyPlaylist:
		return p.playlistPick(ctx, a.query, a.market, rng)
	default:
		return domain.TrackRecord{}, fmt.Errorf("service: unknown strategy %q", a.strategy)
	}
}

func (p *Picker) recommendationPick(ctx context.Context, intent domain.Intent, market string, rng *rand.Rand) (domain.TrackRecord, error) {
	q := ports.RecommendQuery{
		SeedGenres:    shuffled(rng, intent.Genres[:min(len(intent.Genres), domain.MaxIntentGenre)]),
		Market:        market,
		Energy:        domain.ToWindow(intent.TargetEnergy, domain.DefaultWindowWidth),
		Valence:       domain.ToWindow(intent.TargetValence, domain.DefaultWindowWidth),
		Danceability:  domain.ToWindow(intent.TargetDanceability, domain.DefaultWindowWidth),
		Tempo:         domain.ToTempoBand(intent.TargetTempo),
		MinPopularity: p.cfg.MinPopularity,
		Limit:         p.cfg.RecommendLimit,
	}

	items, err := withTimeout(ctx, p.cfg.CallTimeout, func(ctx context.Context) ([]domain.Candidate, error) {
		return p.catalog.Recommend(ctx, q)
	})
	if err != nil {
		return domain.TrackRecord{}, fmt.Errorf("service: recommendations: %w", err)
	}
	return p.selectTrack(items, rng, false)
}

func (p *Picker) searchPick(ctx context.Context, query, market string, rng *rand.Rand) (domain.TrackRecord, error) {
	items, err := withTimeout(ctx, p.cfg.CallTimeout, func(ctx context.Context) ([]domain.Candidate, error) {
		return p.catalog.SearchTracks(ctx, query, market, p.cfg.SearchLimit)
	})
	if err != nil {
		return domain.TrackRecord{}, fmt.Errorf("service: search tracks: %w", err)
	}
	return p.selectTrack(items, rng, true)
}

func (p *Picker) playlistPick(ctx context.Context, phrase, market string, rng *rand.Rand) (domain.TrackRecord, error) {
	playlists, err := withTimeout(ctx, p.cfg.CallTimeout, func(ctx context.Context) ([]domain.PlaylistRef, error) {
		return p.catalog.SearchPlaylists(ctx, phrase, market, p.cfg.PlaylistSearchLimit)
	})
	if err != nil {
		return domain.TrackRecord{}, fmt.Errorf("service: search playlists: %w", err)
	}

	pl, ok := sampleTop(rng, playlists, p.cfg.PlaylistSearchLimit)
	if !ok {
		return domain.TrackRecord{}, fmt.Errorf("service: no playlist for %q: %w", phrase, ports.ErrEmptyResult)
	}
	if pl.ID == "" {
		return domain.TrackRecord{}, fmt.Errorf("service: playlist without id: %w", ports.ErrEmptyResult)
	}

	tracks, err := withTimeout(ctx, p.cfg.CallTimeout, func(ctx context.Context) ([]domain.Candidate, error) {
		return p.catalog.PlaylistTracks(ctx, pl.ID, market, p.cfg.PlaylistTrackLimit)
	})
	if err != nil {
		return domain.TrackRecord{}, fmt.Errorf("service: playlist %s tracks: %w", pl.ID, err)
	}

	tracks = filterStrict(tracks, playable)
	pick, ok := sampleTop(rng, filterWithFallback(tracks, notExplicit), p.cfg.TopSlice)
	if !ok {
		return domain.TrackRecord{}, fmt.Errorf("service: playlist %s has no tracks: %w", pl.ID, ports.ErrEmptyResult)
	}
	return pick.Record(), nil
}

// selectTrack applies the shared selection policy: drop explicit items, keep
// tracks of a reasonable length, then choose uniformly from the top slice.
// Each filter falls back to its input when it would empty the pool.
func (p *Picker) selectTrack(items []domain.Candidate, rng *rand.Rand, byPopularity bool) (domain.TrackRecord, error) {
	pool := filterStrict(items, playable)
	if byPopularity {
		slices.SortStableFunc(pool, func(a, b domain.Candidate) int {
			return cmp.Compare(b.Popularity, a.Popularity)
		})
	}
	pool = filterWithFallback(pool, notExplicit)
	pool = filterWithFallback(pool, durationWithin(p.cfg.MinDurationMs, p.cfg.MaxDurationMs))

	pick, ok := sampleTop(rng, pool, p.cfg.TopSlice)
	if !ok {
		return domain.TrackRecord{}, ports.ErrEmptyResult
	}
	return pick.Record(), nil
}

// withTimeout bounds a single catalog call. A deadline hit by the call budget
// (rather than by the caller) is reported as ports.ErrTimeout.
func withTimeout[T any](ctx context.Context, budget time.Duration, call func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	out, err := call(callCtx)
	if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return out, fmt.Errorf("%w: %w", ports.ErrTimeout, err)
	}
	return out, err
}
