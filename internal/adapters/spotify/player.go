package spotify

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
	"github.com/hongfeij/weather-spotify-alarm/internal/core/ports"
)

var (
	// ErrMissingRefreshToken is returned by NewPlayer without a user refresh token.
	ErrMissingRefreshToken = errors.New("spotify adapter: missing refresh token")
	// ErrNoDevices means the user has no Spotify Connect device online.
	ErrNoDevices = errors.New("spotify adapter: no devices")
	// ErrNoTargetDevice means the chosen device has no id.
	ErrNoTargetDevice = errors.New("spotify adapter: no target device")
)

var smartSpeakerName = regexp.MustCompile(`(?i)echo|alexa`)

// Player starts playback through Spotify Connect on behalf of one user.
type Player struct {
	baseURL string
	retry   retrier
	logger  *zap.Logger
}

var _ ports.Player = (*Player)(nil)

// NewPlayer builds a player that exchanges cfg.RefreshToken for user tokens.
func NewPlayer(cfg Config, logger *zap.Logger) (*Player, error) {
	if cfg.RefreshToken == "" {
		return nil, ErrMissingRefreshToken
	}
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("spotify_player")

	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
	base := context.WithValue(context.Background(), oauth2.HTTPClient, cfg.HTTPClient)
	tokens := conf.TokenSource(base, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	return &Player{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		retry: retrier{
			httpClient:  oauth2.NewClient(base, tokens),
			maxRetries:  cfg.MaxRetries,
			baseBackoff: cfg.RetryBackoff,
			logger:      logger,
		},
		logger: logger,
	}, nil
}

// Play starts trackURI on the device best matching preferredDevice. When the
// device is not active yet, playback is transferred to it and retried once.
func (p *Player) Play(ctx context.Context, trackURI string, preferredDevice string) (domain.PlaybackResult, error) {
	devices, err := p.devices(ctx)
	if err != nil {
		return domain.PlaybackResult{}, err
	}
	if len(devices) == 0 {
		return domain.PlaybackResult{}, ErrNoDevices
	}

	target, ok := chooseDevice(devices, preferredDevice)
	if !ok {
		return domain.PlaybackResult{}, ErrNoTargetDevice
	}

	status, err := p.play(ctx, target.ID, trackURI)
	if err != nil && isInactiveDevice(status) {
		p.logger.Info("transferring playback", zap.String("device", target.Name), zap.Int("status", status))
		if terr := p.transfer(ctx, target.ID); terr != nil {
			p.logger.Warn("transfer failed", zap.Error(terr))
		}
		_, err = p.play(ctx, target.ID, trackURI)
	}
	if err != nil {
		return domain.PlaybackResult{}, err
	}

	return domain.PlaybackResult{Device: target, OK: true}, nil
}

// chooseDevice prefers an exact (case-insensitive) name match, then a
// substring match, then an Echo/Alexa device, then any speaker, then the
// first device listed.
func chooseDevice(devices []domain.Device, preferred string) (domain.Device, bool) {
	want := normalizeName(preferred)
	if want != "" {
		for _, d := range devices {
			if normalizeName(d.Name) == want {
				return withID(d)
			}
		}
		for _, d := range devices {
			if strings.Contains(normalizeName(d.Name), want) {
				return withID(d)
			}
		}
	}
	for _, d := range devices {
		if smartSpeakerName.MatchString(d.Name) {
			return withID(d)
		}
	}
	for _, d := range devices {
		if strings.EqualFold(d.Type, "speaker") {
			return withID(d)
		}
	}
	return withID(devices[0])
}

func withID(d domain.Device) (domain.Device, bool) {
	return d, d.ID != ""
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
