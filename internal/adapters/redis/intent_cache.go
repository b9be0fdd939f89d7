// Package redis caches compiled intents so repeated wake-ups under the same
// weather do not each pay for a language model call.
package redis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
	"github.com/hongfeij/weather-spotify-alarm/internal/core/ports"
)

const (
	keyPrefix  = "intent"
	DefaultTTL = 15 * time.Minute
)

// Options configures the connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// IntentCache stores intents as JSON strings with a TTL.
type IntentCache struct {
	client *goredis.Client
	ttl    time.Duration
}

var _ ports.IntentCache = (*IntentCache)(nil)

// Connect opens a client and pings it.
func Connect(ctx context.Context, opts Options) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}
	return client, nil
}

// NewIntentCache wraps client. A non-positive ttl uses DefaultTTL.
func NewIntentCache(client *goredis.Client, ttl time.Duration) *IntentCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &IntentCache{client: client, ttl: ttl}
}

// Get returns the cached intent for req, if any.
func (c *IntentCache) Get(ctx context.Context, req domain.WeatherRequest) (domain.Intent, bool, error) {
	raw, err := c.client.Get(ctx, Key(req)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.Intent{}, false, nil
	}
	if err != nil {
		return domain.Intent{}, false, fmt.Errorf("redis: get intent: %w", err)
	}

	var intent domain.Intent
	if err := json.Unmarshal(raw, &intent); err != nil {
		return domain.Intent{}, false, fmt.Errorf("redis: decode intent: %w", err)
	}
	return intent, true, nil
}

// Set stores intent for req.
func (c *IntentCache) Set(ctx context.Context, req domain.WeatherRequest, intent domain.Intent) error {
	raw, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("redis: encode intent: %w", err)
	}
	if err := c.client.Set(ctx, Key(req), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set intent: %w", err)
	}
	return nil
}

// Key buckets an observation: condition, whole-degree temperature, weekday
// and time. Location does not influence the intent and is ignored.
func Key(req domain.WeatherRequest) string {
	temp := "na"
	if req.Temperature != nil && !math.IsNaN(*req.Temperature) && !math.IsInf(*req.Temperature, 0) {
		temp = fmt.Sprintf("%d", int(math.Round(*req.Temperature)))
	}
	day := strings.ToLower(strings.TrimSpace(req.Weekday))
	if len(day) > 3 {
		day = day[:3]
	}
	return strings.Join([]string{
		keyPrefix,
		strings.ToLower(strings.TrimSpace(req.Condition)),
		temp,
		day,
		strings.TrimSpace(req.Time),
	}, ":")
}
