package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/racefan-dev/fantasy-chase/live"
)

type WebSocketHandler struct {
	hub      *live.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Origin checks are delegated to the CORS layer.
				return true
			},
		},
		logger: logger,
	}
}

// LeagueUpdatesHandler handles GET /ws/leagues/{leagueID}. Connected
// clients receive score and playoff bracket updates for that league.
func (h *WebSocketHandler) LeagueUpdatesHandler(w http.ResponseWriter, r *http.Request) {
	leagueID, err := urlParamInt(r, "leagueID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "league_id", leagueID, "error", err)
		return
	}

	h.hub.NewClient(conn, live.LeagueRoom(leagueID))
}
