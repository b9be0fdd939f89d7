package cli

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hongfeij/weather-spotify-alarm/internal/adapters/deepseek"
	"github.com/hongfeij/weather-spotify-alarm/internal/adapters/redis"
	"github.com/hongfeij/weather-spotify-alarm/internal/adapters/spotify"
	"github.com/hongfeij/weather-spotify-alarm/internal/adapters/sqlite"
	"github.com/hongfeij/weather-spotify-alarm/internal/config"
	"github.com/hongfeij/weather-spotify-alarm/internal/core/ports"
	"github.com/hongfeij/weather-spotify-alarm/internal/core/services"
	"github.com/hongfeij/weather-spotify-alarm/internal/logging"
	"github.com/hongfeij/weather-spotify-alarm/internal/worker"
)

// app holds the wired object graph shared by every command.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	alarm   *services.Alarm
	journal *sqlite.Adapter
	pool    *worker.Pool
	redis   *goredis.Client
}

func newApp(ctx context.Context, cfg *config.Config, logCfg logging.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}

	// Intent
	var compiler ports.IntentCompiler
	if cfg.DeepSeekAPIKey != "" {
		compiler = deepseek.NewClient(deepseek.Config{
			APIKey:  cfg.DeepSeekAPIKey,
			BaseURL: cfg.DeepSeekBaseURL,
			Model:   cfg.DeepSeekModel,
		}, logger)
	}

	var cache ports.IntentCache
	if cfg.RedisAddr != "" && compiler != nil {
		client, err := redis.Connect(ctx, redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			// the cache is optional; run without it
			logger.Warn("intent cache disabled", zap.Error(err))
		} else {
			a.redis = client
			cache = redis.NewIntentCache(client, cfg.IntentCacheTTL)
		}
	}
	resolver := services.NewIntentResolver(compiler, cache, logger)

	// Catalog
	catalog := spotify.NewClient(cfg.Spotify, logger)
	picker := services.NewPicker(catalog, cfg.Picker, services.WithLogger(logger))

	opts := []services.AlarmOption{
		services.WithAuthenticator(catalog),
		services.WithAlarmLogger(logger),
	}

	// Playback
	if cfg.PlaybackEnabled() {
		player, err := spotify.NewPlayer(cfg.Spotify, logger)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("cli: player: %w", err)
		}
		opts = append(opts, services.WithPlayer(player, cfg.DeviceName))
	}

	// Journal
	if cfg.JournalPath != "" {
		journal, err := sqlite.NewAdapter(cfg.JournalPath)
		if err != nil {
			a.close()
			return nil, err
		}
		a.journal = journal
		a.pool = worker.NewPool(journal, cfg.JournalQueue, logger)
		a.pool.Start(cfg.JournalWorkers)
		opts = append(opts, services.WithJournal(a.pool))
	}

	a.alarm = services.NewAlarm(resolver, picker, opts...)
	return a, nil
}

// close flushes the journal queue and releases connections.
func (a *app) close() {
	if a.pool != nil {
		a.pool.Stop()
	}
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.logger.Warn("journal close", zap.Error(err))
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	_ = a.logger.Sync()
}
