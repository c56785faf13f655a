package handlers

import (
	"log/slog"
	"net/http"

	"github.com/racefan-dev/fantasy-chase/services"
)

type ChaseHandler struct {
	chaseService *services.ChaseService
	logger       *slog.Logger
}

func NewChaseHandler(chaseService *services.ChaseService, logger *slog.Logger) *ChaseHandler {
	return &ChaseHandler{
		chaseService: chaseService,
		logger:       logger,
	}
}

// QualifyHandler handles POST /leagues/{leagueID}/chase/qualify.
func (h *ChaseHandler) QualifyHandler(w http.ResponseWriter, r *http.Request) {
	leagueID, err := urlParamInt(r, "leagueID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	result, err := h.chaseService.QualifyForChase(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}); err != nil {
		serverErrorResponse(w, h.logger, err)
	}
}

// ProcessRoundHandler handles POST /leagues/{leagueID}/chase/rounds/{roundNumber}/process.
func (h *ChaseHandler) ProcessRoundHandler(w http.ResponseWriter, r *http.Request) {
	leagueID, err := urlParamInt(r, "leagueID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	roundNumber, err := urlParamInt(r, "roundNumber")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	result, err := h.chaseService.ProcessElimination(r.Context(), leagueID, roundNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}); err != nil {
		serverErrorResponse(w, h.logger, err)
	}
}

// FinalizeHandler handles POST /leagues/{leagueID}/chase/finalize.
func (h *ChaseHandler) FinalizeHandler(w http.ResponseWriter, r *http.Request) {
	leagueID, err := urlParamInt(r, "leagueID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	result, err := h.chaseService.FinalizeChampionship(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}); err != nil {
		serverErrorResponse(w, h.logger, err)
	}
}

// BracketHandler handles GET /leagues/{leagueID}/chase/bracket.
func (h *ChaseHandler) BracketHandler(w http.ResponseWriter, r *http.Request) {
	leagueID, err := urlParamInt(r, "leagueID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	view, err := h.chaseService.Bracket(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}); err != nil {
		serverErrorResponse(w, h.logger, err)
	}
}
