package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
)

type listPicksResponse struct {
	Picks []domain.PickEntry `json:"picks"`
}

// ListPicks handles GET /picks?limit=N
func (h *Handler) ListPicks(w http.ResponseWriter, r *http.Request) {
	if h.picks == nil {
		writeError(w, http.StatusNotImplemented, "pick journal not configured")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	picks, err := h.picks.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, listPicksResponse{Picks: picks})
}

// GetPick handles GET /picks/{id}
func (h *Handler) GetPick(w http.ResponseWriter, r *http.Request) {
	if h.picks == nil {
		writeError(w, http.StatusNotImplemented, "pick journal not configured")
		return
	}

	pick, err := h.picks.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "pick not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pick)
}
