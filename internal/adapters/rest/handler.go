package rest

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
	"github.com/hongfeij/weather-spotify-alarm/internal/core/services"
)

// Waker answers wake-up requests.
type Waker interface {
	Wake(ctx context.Context, req services.WakeRequest) services.WakeResponse
}

// PickReader reads the pick journal.
type PickReader interface {
	Recent(ctx context.Context, limit int) ([]domain.PickEntry, error)
	Get(ctx context.Context, id string) (domain.PickEntry, error)
}

// Handler manages the HTTP interface for our application.
type Handler struct {
	alarm    Waker
	picks    PickReader
	validate *validator.Validate
	logger   *zap.Logger
	router   *http.ServeMux
}

// NewHandler initializes the HTTP adapter and sets up routes. picks may be
// nil when the journal is disabled.
func NewHandler(alarm Waker, picks PickReader, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		alarm:    alarm,
		picks:    picks,
		validate: validator.New(),
		logger:   logger.Named("http"),
		router:   http.NewServeMux(),
	}

	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.recoverer(h.accessLog(h.router)).ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.HealthCheck)
	h.router.Handle("GET /metrics", promhttp.Handler())

	// the alarm also answers on the root path for webhook-style callers
	h.router.HandleFunc("POST /alarm", h.Wake)
	h.router.HandleFunc("POST /{$}", h.Wake)

	h.router.HandleFunc("GET /picks", h.ListPicks)
	h.router.HandleFunc("GET /picks/{id}", h.GetPick)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
