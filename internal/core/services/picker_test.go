package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
	"github.com/hongfeij/weather-spotify-alarm/internal/core/ports"
)

// stubCatalog answers each endpoint through an optional hook and counts calls.
type stubCatalog struct {
	mu sync.Mutex

	recommend       func(ctx context.Context, q ports.RecommendQuery) ([]domain.Candidate, error)
	searchTracks    func(ctx context.Context, query, market string) ([]domain.Candidate, error)
	searchPlaylists func(ctx context.Context, query, market string) ([]domain.PlaylistRef, error)
	playlistTracks  func(ctx context.Context, id, market string) ([]domain.Candidate, error)

	recommendCalls int
	searchCalls    []string
	playlistCalls  []string
	trackListCalls int
	lastRecommend  ports.RecommendQuery
}

func (s *stubCatalog) Recommend(ctx context.Context, q ports.RecommendQuery) ([]domain.Candidate, error) {
	s.mu.Lock()
	s.recommendCalls++
	s.lastRecommend = q
	s.mu.Unlock()
	if s.recommend == nil {
		return nil, nil
	}
	return s.recommend(ctx, q)
}

func (s *stubCatalog) SearchTracks(ctx context.Context, query, market string, _ int) ([]domain.Candidate, error) {
	s.mu.Lock()
	s.searchCalls = append(s.searchCalls, query+"|"+market)
	s.mu.Unlock()
	if s.searchTracks == nil {
		return nil, nil
	}
	return s.searchTracks(ctx, query, market)
}

func (s *stubCatalog) SearchPlaylists(ctx context.Context, query, market string, _ int) ([]domain.PlaylistRef, error) {
	s.mu.Lock()
	s.playlistCalls = append(s.playlistCalls, query+"|"+market)
	s.mu.Unlock()
	if s.searchPlaylists == nil {
		return nil, nil
	}
	return s.searchPlaylists(ctx, query, market)
}

func (s *stubCatalog) PlaylistTracks(ctx context.Context, id, market string, _ int) ([]domain.Candidate, error) {
	s.mu.Lock()
	s.trackListCalls++
	s.mu.Unlock()
	if s.playlistTracks == nil {
		return nil, nil
	}
	return s.playlistTracks(ctx, id, market)
}

func seeded(seed uint64) PickerOption {
	return WithRandSource(func() *rand.Rand {
		return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	})
}

func track(id string, explicit bool, durationMs, popularity int) domain.Candidate {
	return domain.Candidate{
		URI:        "spotify:track:" + id,
		URL:        "https://open.spotify.com/track/" + id,
		Name:       "Song " + id,
		Artists:    []string{"Artist " + id},
		Explicit:   explicit,
		DurationMs: durationMs,
		Popularity: popularity,
	}
}

func TestPickTrack_RecommendationsWin(t *testing.T) {
	cat := &stubCatalog{
		recommend: func(context.Context, ports.RecommendQuery) ([]domain.Candidate, error) {
			return []domain.Candidate{track("r1", false, 200000, 80)}, nil
		},
	}
	p := NewPicker(cat, PickerConfig{}, seeded(1))

	got := p.Pick(context.Background(), domain.DefaultIntent())

	if got.Strategy != StrategyRecommendations {
		t.Fatalf("strategy = %q, want recommendations", got.Strategy)
	}
	if got.Track.URI != "spotify:track:r1" || got.Track.Artist != "Artist r1" {
		t.Errorf("unexpected track %+v", got.Track)
	}
	if cat.recommendCalls != 1 {
		t.Errorf("recommend calls = %d, want 1", cat.recommendCalls)
	}
	if len(cat.searchCalls) != 0 || len(cat.playlistCalls) != 0 {
		t.Errorf("later strategies must not run: search=%v playlist=%v", cat.searchCalls, cat.playlistCalls)
	}
}

func TestPickTrack_RecommendQueryShape(t *testing.T) {
	cat := &stubCatalog{
		recommend: func(context.Context, ports.RecommendQuery) ([]domain.Candidate, error) {
			return []domain.Candidate{track("r1", false, 200000, 80)}, nil
		},
	}
	p := NewPicker(cat, DefaultPickerConfig(), seeded(2))
	intent := domain.Intent{
		Mood:               "calm",
		Genres:             []string{"jazz", "soul"},
		TargetEnergy:       0.5,
		TargetValence:      0.9,
		TargetDanceability: 0.1,
		TargetTempo:        100,
	}

	p.PickTrack(context.Background(), intent)

	q := cat.lastRecommend
	if len(q.SeedGenres) != 2 {
		t.Fatalf("seed genres = %v", q.SeedGenres)
	}
	if q.MinPopularity != 35 || q.Limit != 50 {
		t.Errorf("min popularity/limit = %d/%d", q.MinPopularity, q.Limit)
	}
	if q.Tempo != (domain.TempoBand{Min: 90, Max: 110}) {
		t.Errorf("tempo band = %+v", q.Tempo)
	}
	if q.Valence.Max != 1 || q.Danceability.Min != 0 {
		t.Errorf("windows not clamped: valence=%+v dance=%+v", q.Valence, q.Danceability)
	}
	found := false
	for _, m := range DefaultPickerConfig().Markets {
		if q.Market == m {
			found = true
		}
	}
	if !found {
		t.Errorf("market %q not in configured set", q.Market)
	}
}

func TestPickerConfig_WithDefaults(t *testing.T) {
	tests := []struct {
		name          string
		minPopularity int
		want          int
	}{
		{"zero disables the floor", 0, 0},
		{"negative means unset", -1, 35},
		{"explicit value kept", 60, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := PickerConfig{MinPopularity: tt.minPopularity}.withDefaults()
			if cfg.MinPopularity != tt.want {
				t.Errorf("MinPopularity = %d, want %d", cfg.MinPopularity, tt.want)
			}
			if cfg.TopSlice != 30 || cfg.CallTimeout != 8*time.Second {
				t.Errorf("defaults not applied: %+v", cfg)
			}
		})
	}
}

func TestPickTrack_DegradesToPlaylist(t *testing.T) {
	// Recommendations fail and search always returns nothing; the second
	// playlist attempt succeeds.
	var playlistAttempts int
	cat := &stubCatalog{
		recommend: func(context.Context, ports.RecommendQuery) ([]domain.Candidate, error) {
			return nil, &ports.EndpointError{Endpoint: "recommendations", Status: 404}
		},
		searchPlaylists: func(context.Context, string, string) ([]domain.PlaylistRef, error) {
			playlistAttempts++
			if playlistAttempts < 2 {
				return nil, nil
			}
			return []domain.PlaylistRef{{ID: "pl1", Name: "Morning"}}, nil
		},
		playlistTracks: func(context.Context, string, string) ([]domain.Candidate, error) {
			return []domain.Candidate{track("p1", false, 180000, 10)}, nil
		},
	}
	p := NewPicker(cat, PickerConfig{}, seeded(3))

	got := p.Pick(context.Background(), domain.DefaultIntent())

	if got.Strategy != StrategyPlaylist {
		t.Fatalf("strategy = %q, want playlist", got.Strategy)
	}
	if got.Track.URI != "spotify:track:p1" {
		t.Errorf("track = %+v", got.Track)
	}
	// default intent: jazz genre, mood "default" -> 4 query variants
	// (two genre-qualified, two mood-only) + 2 generic phrases, 5 markets each
	if len(cat.searchCalls) != 6*5 {
		t.Errorf("search calls = %d, want 30", len(cat.searchCalls))
	}
	if playlistAttempts != 2 {
		t.Errorf("playlist searches = %d, want 2", playlistAttempts)
	}
}

func TestPickTrack_SearchOrderVariantOuterMarketInner(t *testing.T) {
	cat := &stubCatalog{}
	p := NewPicker(cat, PickerConfig{Markets: []string{"US", "JP"}}, seeded(4))

	p.Pick(context.Background(), domain.DefaultIntent())

	if len(cat.searchCalls)%2 != 0 || len(cat.searchCalls) == 0 {
		t.Fatalf("unexpected search calls %v", cat.searchCalls)
	}
	var firstOrder []string
	for i := 0; i < len(cat.searchCalls); i += 2 {
		q1, m1, _ := strings.Cut(cat.searchCalls[i], "|")
		q2, m2, _ := strings.Cut(cat.searchCalls[i+1], "|")
		if q1 != q2 {
			t.Fatalf("variant changed inside market loop: %q vs %q", q1, q2)
		}
		order := []string{m1, m2}
		if firstOrder == nil {
			firstOrder = order
		} else if order[0] != firstOrder[0] || order[1] != firstOrder[1] {
			t.Errorf("market order must be shuffled once per pick: %v vs %v", order, firstOrder)
		}
	}
	last, _, _ := strings.Cut(cat.searchCalls[len(cat.searchCalls)-1], "|")
	if last == "" {
		t.Error("empty query issued")
	}
}

func TestPickTrack_HardFallback(t *testing.T) {
	boom := errors.New("boom")
	cat := &stubCatalog{
		recommend: func(context.Context, ports.RecommendQuery) ([]domain.Candidate, error) { return nil, boom },
		searchTracks: func(context.Context, string, string) ([]domain.Candidate, error) {
			return nil, &ports.EndpointError{Endpoint: "search", Status: 500}
		},
		searchPlaylists: func(context.Context, string, string) ([]domain.PlaylistRef, error) { return nil, boom },
	}
	p := NewPicker(cat, PickerConfig{}, seeded(5))

	got := p.Pick(context.Background(), domain.DefaultIntent())

	if got.Strategy != StrategyHardFallback {
		t.Fatalf("strategy = %q", got.Strategy)
	}
	if !got.Track.IsHardFallback() || got.Track != domain.HardFallbackTrack() {
		t.Errorf("track = %+v", got.Track)
	}
	// 3 playlist phrases x 5 markets
	if len(cat.playlistCalls) != 15 {
		t.Errorf("playlist calls = %d, want 15", len(cat.playlistCalls))
	}
}

func TestPickTrack_ExplicitFilter(t *testing.T) {
	items := []domain.Candidate{
		track("e1", true, 200000, 90),
		track("c1", false, 200000, 80),
		track("e2", true, 200000, 70),
		track("c2", false, 200000, 60),
		track("e3", true, 200000, 50),
	}
	for seed := uint64(0); seed < 50; seed++ {
		cat := &stubCatalog{
			recommend: func(context.Context, ports.RecommendQuery) ([]domain.Candidate, error) { return items, nil },
		}
		got := NewPicker(cat, PickerConfig{}, seeded(seed)).PickTrack(context.Background(), domain.DefaultIntent())
		if got.URI != "spotify:track:c1" && got.URI != "spotify:track:c2" {
			t.Fatalf("seed %d: picked explicit track %s", seed, got.URI)
		}
	}
}

func TestPickTrack_FiltersFallBackWhenTheyEmptyThePool(t *testing.T) {
	tests := []struct {
		name  string
		items []domain.Candidate
	}{
		{"all explicit", []domain.Candidate{track("e1", true, 200000, 50), track("e2", true, 200000, 40)}},
		{"all too short", []domain.Candidate{track("s1", false, 30000, 50)}},
		{"explicit and too long", []domain.Candidate{track("l1", true, 900000, 50)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cat := &stubCatalog{
				recommend: func(context.Context, ports.RecommendQuery) ([]domain.Candidate, error) { return tc.items, nil },
			}
			got := NewPicker(cat, PickerConfig{}, seeded(7)).Pick(context.Background(), domain.DefaultIntent())
			if got.Strategy != StrategyRecommendations {
				t.Fatalf("non-empty input must produce a pick, got %q", got.Strategy)
			}
		})
	}
}

func TestPickTrack_SearchPrefersPopular(t *testing.T) {
	items := make([]domain.Candidate, 0, 40)
	for i := range 40 {
		// popularity ascending, so the top slice must come from the tail
		items = append(items, track(fmt.Sprintf("t%02d", i), false, 200000, i))
	}
	for seed := uint64(0); seed < 30; seed++ {
		cat := &stubCatalog{
			searchTracks: func(context.Context, string, string) ([]domain.Candidate, error) { return items, nil },
		}
		got := NewPicker(cat, PickerConfig{}, seeded(seed)).Pick(context.Background(), domain.DefaultIntent())
		if got.Strategy != StrategySearch {
			t.Fatalf("strategy = %q", got.Strategy)
		}
		var idx int
		fmt.Sscanf(strings.TrimPrefix(got.Track.URI, "spotify:track:t"), "%d", &idx)
		if idx < 10 {
			t.Fatalf("seed %d: picked %s outside the 30 most popular", seed, got.Track.URI)
		}
	}
}

func TestPickTrack_UnplayableCandidatesCountAsEmpty(t *testing.T) {
	tests := []struct {
		name      string
		candidate domain.Candidate
	}{
		{"no uri", domain.Candidate{Name: "no uri", URL: "https://x", Artists: []string{"a"}}},
		{"local file", domain.Candidate{URI: "spotify:local:a:b:c:200", Name: "Local Song"}},
		{"no url", domain.Candidate{URI: "spotify:episode:e1", Name: "Episode", Artists: []string{"Host"}}},
		{"no artist", domain.Candidate{URI: "spotify:track:n1", URL: "https://open.spotify.com/track/n1", Name: "Nobody"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := &stubCatalog{
				recommend: func(context.Context, ports.RecommendQuery) ([]domain.Candidate, error) {
					return []domain.Candidate{tt.candidate}, nil
				},
				searchTracks: func(context.Context, string, string) ([]domain.Candidate, error) {
					return []domain.Candidate{track("s1", false, 200000, 50)}, nil
				},
			}
			got := NewPicker(cat, PickerConfig{}, seeded(8)).Pick(context.Background(), domain.DefaultIntent())
			if got.Strategy != StrategySearch {
				t.Errorf("strategy = %q, want search", got.Strategy)
			}
			r := got.Track
			if r.URI == "" || r.URL == "" || r.Name == "" || r.Artist == "" {
				t.Errorf("incomplete record %+v", r)
			}
		})
	}
}

func TestPickTrack_IncompletePlaylistItemsFallThrough(t *testing.T) {
	cat := &stubCatalog{
		searchPlaylists: func(context.Context, string, string) ([]domain.PlaylistRef, error) {
			return []domain.PlaylistRef{{ID: "pl1", Name: "Morning"}}, nil
		},
		playlistTracks: func(context.Context, string, string) ([]domain.Candidate, error) {
			return []domain.Candidate{{URI: "spotify:local:a:b:c:200", Name: "Local Song"}}, nil
		},
	}
	got := NewPicker(cat, PickerConfig{}, seeded(10)).Pick(context.Background(), domain.DefaultIntent())
	if got.Strategy != StrategyHardFallback {
		t.Errorf("strategy = %q, want hard fallback", got.Strategy)
	}
	if got.Track != domain.HardFallbackTrack() {
		t.Errorf("track = %+v", got.Track)
	}
}

func TestPickTrack_PlaylistWithoutIDIsEmpty(t *testing.T) {
	cat := &stubCatalog{
		searchPlaylists: func(context.Context, string, string) ([]domain.PlaylistRef, error) {
			return []domain.PlaylistRef{{Name: "broken"}}, nil
		},
	}
	got := NewPicker(cat, PickerConfig{}, seeded(9)).Pick(context.Background(), domain.DefaultIntent())
	if got.Strategy != StrategyHardFallback {
		t.Errorf("strategy = %q", got.Strategy)
	}
	if cat.trackListCalls != 0 {
		t.Errorf("playlist tracks fetched %d times for id-less playlists", cat.trackListCalls)
	}
}

func TestPickTrack_CallTimeout(t *testing.T) {
	cat := &stubCatalog{
		recommend: func(ctx context.Context, _ ports.RecommendQuery) ([]domain.Candidate, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
		searchTracks: func(context.Context, string, string) ([]domain.Candidate, error) {
			return []domain.Candidate{track("s1", false, 200000, 50)}, nil
		},
	}
	p := NewPicker(cat, PickerConfig{CallTimeout: 20 * time.Millisecond}, seeded(10))

	got := p.Pick(context.Background(), domain.DefaultIntent())

	if got.Strategy != StrategySearch {
		t.Errorf("a timed-out call must move the cascade on, got %q", got.Strategy)
	}
}

func TestWithTimeout_Classification(t *testing.T) {
	_, err := withTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if got := ports.ClassifyAttempt(err); got != ports.OutcomeTimeout {
		t.Errorf("budget expiry classified %q", got)
	}

	parent, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = withTimeout(parent, time.Second, func(ctx context.Context) (int, error) {
		return 0, ctx.Err()
	})
	if errors.Is(err, ports.ErrTimeout) {
		t.Error("caller cancellation must not be reported as a timeout")
	}
}

func TestPickTrack_CanceledContextReturnsFallback(t *testing.T) {
	cat := &stubCatalog{
		recommend: func(context.Context, ports.RecommendQuery) ([]domain.Candidate, error) {
			return []domain.Candidate{track("r1", false, 200000, 80)}, nil
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := NewPicker(cat, PickerConfig{}, seeded(11)).Pick(ctx, domain.DefaultIntent())

	if !got.Track.IsHardFallback() {
		t.Errorf("track = %+v", got.Track)
	}
	if cat.recommendCalls != 0 {
		t.Errorf("catalog called after cancellation")
	}
}

func TestPickTrack_Deterministic(t *testing.T) {
	items := []domain.Candidate{
		track("a", false, 200000, 50),
		track("b", false, 200000, 50),
		track("c", false, 200000, 50),
	}
	run := func() domain.TrackRecord {
		cat := &stubCatalog{
			recommend: func(context.Context, ports.RecommendQuery) ([]domain.Candidate, error) { return items, nil },
		}
		return NewPicker(cat, PickerConfig{}, seeded(42)).PickTrack(context.Background(), domain.DefaultIntent())
	}
	if a, b := run(), run(); a != b {
		t.Errorf("same seed produced %v and %v", a, b)
	}
}

func TestSearchQueries(t *testing.T) {
	got := searchQueries([]string{"indie", "jazz"}, []string{"cozy", "rain"})
	want := []string{
		`genre:"indie" genre:"jazz" cozy rain NOT live`,
		`genre:"indie" genre:"jazz" cozy rain`,
		`cozy rain NOT live`,
		`cozy rain`,
		`"good morning"`,
		`"wake up"`,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("query %d = %q, want %q", i, got[i], want[i])
		}
	}

	generic := searchQueries(nil, nil)
	if len(generic) != 2 {
		t.Errorf("generic phrases only, got %v", generic)
	}
}

func TestPlaylistPhrases(t *testing.T) {
	got := playlistPhrases(nil, nil)
	want := []string{"Good Morning", "pop morning", "upbeat morning"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("phrase %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFilterWithFallback(t *testing.T) {
	even := func(n int) bool { return n%2 == 0 }
	if got := filterWithFallback([]int{1, 2, 3, 4}, even); len(got) != 2 {
		t.Errorf("got %v", got)
	}
	if got := filterWithFallback([]int{1, 3}, even); len(got) != 2 {
		t.Errorf("fallback should keep input, got %v", got)
	}
	if got := filterWithFallback([]int{}, even); len(got) != 0 {
		t.Errorf("got %v", got)
	}
}

func TestSampleTop(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	if _, ok := sampleTop(rng, []int{}, 3); ok {
		t.Error("empty input must report false")
	}
	for range 100 {
		v, ok := sampleTop(rng, []int{0, 1, 2, 3, 4, 5}, 3)
		if !ok || v > 2 {
			t.Fatalf("sampled %d outside top slice", v)
		}
	}
}
