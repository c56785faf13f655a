package handlers

import (
	"log/slog"
	"net/http"

	"github.com/racefan-dev/fantasy-chase/services"
)

type StandingsHandler struct {
	standingsService *services.StandingsService
	logger           *slog.Logger
}

func NewStandingsHandler(standingsService *services.StandingsService, logger *slog.Logger) *StandingsHandler {
	return &StandingsHandler{
		standingsService: standingsService,
		logger:           logger,
	}
}

// ListHandler handles GET /leagues/{leagueID}/standings.
// The ?playoff=true query parameter ranks by playoff points instead of
// regular season points.
func (h *StandingsHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	leagueID, err := urlParamInt(r, "leagueID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	usePlayoff := r.URL.Query().Get("playoff") == "true"

	standings, err := h.standingsService.ListStandings(r.Context(), leagueID, usePlayoff)
	if err != nil {
		mapServiceErrorToHTTP(w, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}); err != nil {
		serverErrorResponse(w, h.logger, err)
	}
}
