// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongfeij/weather-spotify-alarm/internal/adapters/spotify"
	"github.com/hongfeij/weather-spotify-alarm/internal/core/services"
	"github.com/hongfeij/weather-spotify-alarm/internal/logging"
)

// ErrMissingCredentials is returned by Validate without Spotify app credentials.
var ErrMissingCredentials = errors.New("config: SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are required")

// Config stores the application configuration.
type Config struct {
	HTTPAddr string

	Spotify    spotify.Config
	DeviceName string

	DeepSeekAPIKey  string
	DeepSeekBaseURL string
	DeepSeekModel   string

	Picker services.PickerConfig

	// JournalPath is the sqlite file for the pick journal; empty disables it.
	JournalPath    string
	JournalWorkers int
	JournalQueue   int

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	IntentCacheTTL time.Duration

	Log logging.Config
}

// Load reads .env (if present) and the environment. Existing environment
// variables win over .env entries.
func Load() *Config {
	// a missing .env file is fine
	_ = godotenv.Load()

	picker := services.DefaultPickerConfig()
	picker.CallTimeout = getEnvDuration("PICK_CALL_TIMEOUT_MS", picker.CallTimeout)
	picker.MinPopularity = getEnvInt("PICK_MIN_POPULARITY", picker.MinPopularity)
	picker.MinDurationMs = getEnvInt("PICK_MIN_DURATION_MS", picker.MinDurationMs)
	picker.MaxDurationMs = getEnvInt("PICK_MAX_DURATION_MS", picker.MaxDurationMs)
	picker.TopSlice = getEnvInt("PICK_TOP_SLICE", picker.TopSlice)
	picker.Markets = getEnvList("PICK_MARKETS", picker.Markets)

	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		Spotify: spotify.Config{
			ClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
			ClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", ""),
			RefreshToken: getEnv("SPOTIFY_REFRESH_TOKEN", ""),
			BaseURL:      getEnv("SPOTIFY_API_BASE_URL", spotify.DefaultBaseURL),
			TokenURL:     getEnv("SPOTIFY_TOKEN_URL", spotify.DefaultTokenURL),
			RateLimit:    getEnvFloat("SPOTIFY_RATE_LIMIT", 10),
			RateBurst:    getEnvInt("SPOTIFY_RATE_BURST", 5),
			MaxRetries:   getEnvInt("SPOTIFY_MAX_RETRIES", 3),
			RetryBackoff: getEnvDuration("SPOTIFY_RETRY_BACKOFF_MS", 500*time.Millisecond),
		},
		DeviceName: getEnv("SPOTIFY_DEVICE_NAME", ""),

		DeepSeekAPIKey:  getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekBaseURL: getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),
		DeepSeekModel:   getEnv("DEEPSEEK_MODEL", "deepseek-reasoner"),

		Picker: picker,

		JournalPath:    getEnv("JOURNAL_PATH", "alarm.db"),
		JournalWorkers: getEnvInt("JOURNAL_WORKERS", 1),
		JournalQueue:   getEnvInt("JOURNAL_QUEUE", 64),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		IntentCacheTTL: time.Duration(getEnvInt("INTENT_CACHE_TTL_SECONDS", 900)) * time.Second,

		Log: logging.Config{
			Level:      getEnv("LOG_LEVEL", "info"),
			FilePath:   getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
	}
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

// PlaybackEnabled reports whether a user refresh token is configured.
func (c *Config) PlaybackEnabled() bool {
	return c.Spotify.RefreshToken != ""
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration reads a millisecond count.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	ms := getEnvInt(key, -1)
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

// getEnvList reads a comma separated list, dropping blanks.
func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
