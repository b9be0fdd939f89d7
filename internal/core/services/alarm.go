package services

import (
	"context"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
	"github.com/hongfeij/weather-spotify-alarm/internal/core/ports"
	"github.com/hongfeij/weather-spotify-alarm/internal/metrics"
)

// Fallback reasons reported in WakeResponse.Reason.
const (
	ReasonMissingCondition    = "missing_condition"
	ReasonUpstreamUnavailable = "upstream_unavailable"
	ReasonFatal               = "fatal"
)

// WakeRequest is a wake-up call: the weather observation plus playback hints.
type WakeRequest struct {
	domain.WeatherRequest
	Play   bool   `json:"play,omitempty"`
	Device string `json:"device,omitempty"`
}

// WakeResponse is either a track (optionally with playback outcome) or a
// fallback marker with a reason.
type WakeResponse struct {
	*domain.TrackRecord

	// Played is the domain.PlaybackResult on success and false when playback
	// was attempted and failed. It is omitted when no playback was attempted.
	Played        any
	PlaybackError string

	Fallback bool
	Reason   string

	RequestID    string
	IntentSource string
	Strategy     Strategy
}

// MarshalJSON flattens the track fields next to the playback and fallback
// markers, omitting whichever side is absent.
func (r WakeResponse) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 6)
	if r.TrackRecord != nil {
		out["uri"] = r.URI
		out["url"] = r.URL
		out["name"] = r.Name
		out["artist"] = r.Artist
	}
	if r.Played != nil {
		out["played"] = r.Played
	}
	if r.PlaybackError != "" {
		out["playback_error"] = r.PlaybackError
	}
	if r.Fallback {
		out["fallback"] = true
		out["reason"] = r.Reason
	}
	return json.Marshal(out)
}

// TrackPicker is the engine contract the alarm depends on.
type TrackPicker interface {
	Pick(ctx context.Context, intent domain.Intent) Pick
}

// EntrySink accepts journal entries for asynchronous persistence.
type EntrySink interface {
	Submit(entry domain.PickEntry)
}

// Alarm orchestrates a wake-up: intent resolution, catalog authentication,
// track selection, optional playback and journaling.
type Alarm struct {
	resolver   *IntentResolver
	auth       ports.CatalogAuthenticator
	picker     TrackPicker
	player     ports.Player
	sink       EntrySink
	deviceName string
	logger     *zap.Logger
	now        func() time.Time
}

// AlarmOption customizes an Alarm.
type AlarmOption func(*Alarm)

// WithAuthenticator checks catalog credentials before each pick.
func WithAuthenticator(auth ports.CatalogAuthenticator) AlarmOption {
	return func(a *Alarm) { a.auth = auth }
}

// WithPlayer enables playback. deviceName is the default target device.
func WithPlayer(player ports.Player, deviceName string) AlarmOption {
	return func(a *Alarm) {
		a.player = player
		a.deviceName = strings.TrimSpace(deviceName)
	}
}

// WithJournal records every track response.
func WithJournal(sink EntrySink) AlarmOption {
	return func(a *Alarm) { a.sink = sink }
}

// WithAlarmLogger sets the request logger.
func WithAlarmLogger(logger *zap.Logger) AlarmOption {
	return func(a *Alarm) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAlarm constructs an Alarm.
func NewAlarm(resolver *IntentResolver, picker TrackPicker, opts ...AlarmOption) *Alarm {
	a := &Alarm{
		resolver: resolver,
		picker:   picker,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.Named("alarm")
	return a
}

// Wake answers one wake-up request. It never returns an error: failures are
// reported as fallback responses.
func (a *Alarm) Wake(ctx context.Context, req WakeRequest) (resp WakeResponse) {
	requestID := uuid.NewString()
	log := a.logger.With(zap.String("request_id", requestID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("fatal", zap.Any("panic", r))
			resp = WakeResponse{Fallback: true, Reason: ReasonFatal, RequestID: requestID}
		}
	}()

	if req.Condition == "" {
		return WakeResponse{Fallback: true, Reason: ReasonMissingCondition, RequestID: requestID}
	}

	intent, source := a.resolver.Resolve(ctx, req.WeatherRequest)

	if a.auth != nil {
		if err := a.auth.Authenticate(ctx); err != nil {
			log.Error("catalog_token_error", zap.Error(err))
			return WakeResponse{Fallback: true, Reason: ReasonUpstreamUnavailable, RequestID: requestID}
		}
	}

	pick := a.picker.Pick(ctx, intent)
	track := pick.Track
	resp = WakeResponse{
		TrackRecord:  &track,
		RequestID:    requestID,
		IntentSource: source,
		Strategy:     pick.Strategy,
	}

	// a configured player implies a user refresh token, which always
	// triggers playback
	if a.player != nil {
		a.play(ctx, log, req, &resp)
	}

	a.journal(requestID, req, intent, &resp)
	return resp
}

func (a *Alarm) play(ctx context.Context, log *zap.Logger, req WakeRequest, resp *WakeResponse) {
	device := strings.TrimSpace(req.Device)
	if device == "" {
		device = a.deviceName
	}

	result, err := a.player.Play(ctx, resp.URI, device)
	if err != nil {
		log.Error("playback_error", zap.Error(err))
		metrics.Playback.WithLabelValues("error").Inc()
		resp.Played = false
		resp.PlaybackError = err.Error()
		return
	}
	log.Info("playback_started",
		zap.String("device", result.Device.Name),
		zap.String("uri", resp.URI))
	metrics.Playback.WithLabelValues("ok").Inc()
	resp.Played = result
}

func (a *Alarm) journal(id string, req WakeRequest, intent domain.Intent, resp *WakeResponse) {
	if a.sink == nil {
		return
	}
	_, played := resp.Played.(domain.PlaybackResult)
	a.sink.Submit(domain.PickEntry{
		ID:            id,
		CreatedAt:     a.now().UTC(),
		Condition:     req.Condition,
		IntentSource:  resp.IntentSource,
		Intent:        intent,
		Track:         *resp.TrackRecord,
		HardFallback:  resp.IsHardFallback(),
		Played:        played,
		PlaybackError: resp.PlaybackError,
	})
}
