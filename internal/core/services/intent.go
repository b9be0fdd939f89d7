package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
	"github.com/hongfeij/weather-spotify-alarm/internal/core/ports"
	"github.com/hongfeij/weather-spotify-alarm/internal/metrics"
)

// Intent sources reported by IntentResolver.
const (
	SourceLLM            = "deepseek"
	SourceRuleBased      = "ruleBased"
	SourceRuleBasedNoKey = "ruleBased_no_key"
	SourceCache          = "cache"
)

// IntentResolver turns a weather observation into a listening intent. It
// prefers the language model and falls back to the rule table whenever the
// model is missing or fails, so Resolve always produces an intent.
type IntentResolver struct {
	compiler ports.IntentCompiler
	cache    ports.IntentCache
	logger   *zap.Logger
}

// NewIntentResolver builds a resolver. compiler and cache may be nil.
func NewIntentResolver(compiler ports.IntentCompiler, cache ports.IntentCache, logger *zap.Logger) *IntentResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntentResolver{compiler: compiler, cache: cache, logger: logger.Named("intent")}
}

// Resolve returns the normalized intent for req and where it came from.
func (r *IntentResolver) Resolve(ctx context.Context, req domain.WeatherRequest) (domain.Intent, string) {
	intent, source := r.resolve(ctx, req)
	metrics.IntentSource.WithLabelValues(source).Inc()
	r.logger.Info("intent_source",
		zap.String("source", source),
		zap.String("condition", req.Condition),
		zap.String("mood", intent.Mood),
		zap.Strings("genres", intent.Genres))
	return intent, source
}

func (r *IntentResolver) resolve(ctx context.Context, req domain.WeatherRequest) (domain.Intent, string) {
	if r.compiler == nil {
		return domain.RuleBasedIntent(req), SourceRuleBasedNoKey
	}

	if r.cache != nil {
		cached, ok, err := r.cache.Get(ctx, req)
		if err != nil {
			r.logger.Warn("intent cache read failed", zap.Error(err))
		} else if ok {
			return domain.Normalize(cached), SourceCache
		}
	}

	intent, err := r.compiler.CompileIntent(ctx, req)
	if err != nil {
		r.logger.Warn("intent compiler failed, using rules", zap.Error(err))
		return domain.RuleBasedIntent(req), SourceRuleBased
	}
	intent = domain.Normalize(intent)

	if r.cache != nil {
		if err := r.cache.Set(ctx, req, intent); err != nil {
			r.logger.Warn("intent cache write failed", zap.Error(err))
		}
	}
	return intent, SourceLLM
}
