package handlers

import (
	"log/slog"
	"net/http"

	"github.com/racefan-dev/fantasy-chase/middleware"
	"github.com/racefan-dev/fantasy-chase/services"
)

type PickHandler struct {
	pickService *services.PickService
	logger      *slog.Logger
}

func NewPickHandler(pickService *services.PickService, logger *slog.Logger) *PickHandler {
	return &PickHandler{
		pickService: pickService,
		logger:      logger,
	}
}

// SubmitHandler handles POST /leagues/{leagueID}/picks.
func (h *PickHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
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

	var body struct {
		RaceID     int    `json:"race_id"`
		DriverID   int    `json:"driver_id"`
		DriverName string `json:"driver_name"`
	}
	if err := readJSON(w, r, &body); err != nil {
		badRequestResponse(w, err)
		return
	}

	pick, err := h.pickService.SubmitPick(r.Context(), services.SubmitPickInput{
		LeagueID:   leagueID,
		UserID:     userID,
		RaceID:     body.RaceID,
		DriverID:   body.DriverID,
		DriverName: body.DriverName,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"pick": pick}); err != nil {
		serverErrorResponse(w, h.logger, err)
	}
}

// ListHandler handles GET /leagues/{leagueID}/picks.
func (h *PickHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
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

	picks, err := h.pickService.ListPicks(r.Context(), leagueID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"picks": picks}); err != nil {
		serverErrorResponse(w, h.logger, err)
	}
}

// FreePickRacesHandler handles GET /leagues/{leagueID}/free-pick-races.
func (h *PickHandler) FreePickRacesHandler(w http.ResponseWriter, r *http.Request) {
	leagueID, err := urlParamInt(r, "leagueID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	races, err := h.pickService.ListFreePickRaces(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"free_pick_races": races}); err != nil {
		serverErrorResponse(w, h.logger, err)
	}
}

// UsageHandler handles GET /leagues/{leagueID}/picks/usage.
func (h *PickHandler) UsageHandler(w http.ResponseWriter, r *http.Request) {
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

	usage, err := h.pickService.UsageSummary(r.Context(), leagueID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"usage": usage}); err != nil {
		serverErrorResponse(w, h.logger, err)
	}
}
