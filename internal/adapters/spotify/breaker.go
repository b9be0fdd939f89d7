package spotify

import (
	"context"
	"errors"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/ports"
	"github.com/hongfeij/weather-spotify-alarm/internal/metrics"
)

const (
	breakerMinRequests  = 10
	breakerFailureRatio = 0.6
)

// newBreaker guards the catalog against a failing upstream. It opens when at
// least 60% of 10 or more requests in a one-minute window failed, and probes
// again after 30 seconds.
func newBreaker(name string, logger *zap.Logger) *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerMinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= breakerFailureRatio
		},
		IsSuccessful: isUpstreamHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
}

// isUpstreamHealthy treats client errors (bad query, unknown playlist,
// removed endpoint) and caller cancellations as healthy answers; only
// throttling, server errors and transport failures count against the breaker.
func isUpstreamHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var endpointErr *ports.EndpointError
	if errors.As(err, &endpointErr) {
		return endpointErr.Status != http.StatusTooManyRequests && endpointErr.Status < http.StatusInternalServerError
	}
	return false
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
