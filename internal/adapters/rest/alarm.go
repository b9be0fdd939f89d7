package rest

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/services"
)

const maxBodyBytes = 64 << 10

// Wake handles POST /alarm. Every outcome, including malformed input, is
// reported with status 200 and either a track or a fallback marker.
func (h *Handler) Wake(w http.ResponseWriter, r *http.Request) {
	var req services.WakeRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			// unreadable bodies are treated as empty requests
			h.logger.Debug("invalid alarm body", zap.Error(err))
			req = services.WakeRequest{}
		}
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusOK, services.WakeResponse{Fallback: true, Reason: services.ReasonMissingCondition})
			return
		}
		h.logger.Error("alarm validation", zap.Error(err))
	}

	resp := h.alarm.Wake(r.Context(), req)
	if resp.RequestID != "" {
		w.Header().Set("X-Request-ID", resp.RequestID)
	}
	writeJSON(w, http.StatusOK, resp)
}
