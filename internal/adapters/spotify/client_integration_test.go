package spotify_test

import (
	"context"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/hongfeij/weather-spotify-alarm/internal/adapters/spotify"
	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
	"github.com/hongfeij/weather-spotify-alarm/internal/core/services"
)

// TestPicker_Integration runs the full cascade against the live catalog.
// Skipped unless RUN_LIVE_TESTS=true and app credentials are set.
func TestPicker_Integration(t *testing.T) {
	if os.Getenv("RUN_LIVE_TESTS") != "true" {
		t.Skip("Skipping live test (set RUN_LIVE_TESTS=true to enable)")
	}
	id, secret := os.Getenv("SPOTIFY_CLIENT_ID"), os.Getenv("SPOTIFY_CLIENT_SECRET")
	if id == "" || secret == "" {
		t.Skip("SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET not set")
	}

	client := spotify.NewClient(spotify.Config{ClientID: id, ClientSecret: secret}, zap.NewNop())
	if err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	picker := services.NewPicker(client, services.DefaultPickerConfig())
	pick := picker.Pick(context.Background(), domain.RuleBasedIntent(domain.WeatherRequest{Condition: "clear sky"}))
	if pick.Track.URI == "" || pick.Track.Name == "" {
		t.Fatalf("empty track: %+v", pick.Track)
	}
	t.Logf("Strategy %s: %+v", pick.Strategy, pick.Track)
}
