package handlers

import (
	"log/slog"
	"net/http"

	"github.com/racefan-dev/fantasy-chase/services"
)

type DemoHandler struct {
	demoService *services.DemoService
	logger      *slog.Logger
}

func NewDemoHandler(demoService *services.DemoService, logger *slog.Logger) *DemoHandler {
	return &DemoHandler{
		demoService: demoService,
		logger:      logger,
	}
}

// SeedHandler handles POST /demo/seed. It creates a demo league with
// generated members, picks for every completed race, and scores them.
func (h *DemoHandler) SeedHandler(w http.ResponseWriter, r *http.Request) {
	var input services.SeedDemoInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	result, err := h.demoService.SeedDemoLeague(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"demo": result}); err != nil {
		serverErrorResponse(w, h.logger, err)
	}
}
