package handlers

import (
	"log/slog"
	"net/http"

	"github.com/racefan-dev/fantasy-chase/middleware"
	"github.com/racefan-dev/fantasy-chase/services"
)

type ScoringHandler struct {
	scoringService *services.ScoringService
	logger         *slog.Logger
}

func NewScoringHandler(scoringService *services.ScoringService, logger *slog.Logger) *ScoringHandler {
	return &ScoringHandler{
		scoringService: scoringService,
		logger:         logger,
	}
}

// ScoreRaceHandler handles POST /leagues/{leagueID}/races/{raceID}/score.
func (h *ScoringHandler) ScoreRaceHandler(w http.ResponseWriter, r *http.Request) {
	leagueID, err := urlParamInt(r, "leagueID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	raceID, err := urlParamInt(r, "raceID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	result, err := h.scoringService.ScoreRace(r.Context(), leagueID, raceID, services.TriggerManual)
	if err != nil {
		mapServiceErrorToHTTP(w, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}); err != nil {
		serverErrorResponse(w, h.logger, err)
	}
}

// RaceResultsHandler handles GET /leagues/{leagueID}/races/{raceID}/results.
func (h *ScoringHandler) RaceResultsHandler(w http.ResponseWriter, r *http.Request) {
	leagueID, err := urlParamInt(r, "leagueID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	raceID, err := urlParamInt(r, "raceID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	entries, err := h.scoringService.RaceResults(r.Context(), leagueID, raceID)
	if err != nil {
		mapServiceErrorToHTTP(w, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": entries}); err != nil {
		serverErrorResponse(w, h.logger, err)
	}
}

// MyScoresHandler handles GET /leagues/{leagueID}/users/me/scores.
func (h *ScoringHandler) MyScoresHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	leagueID, err := urlParamInt(r, "leagueID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	scores, err := h.scoringService.UserScores(r.Context(), leagueID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"scores": scores}); err != nil {
		serverErrorResponse(w, h.logger, err)
	}
}
