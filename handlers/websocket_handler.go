package handlers

import (
	"net/http"

	"github.com/Dosada05/chess-tournament/brackets"
	"github.com/Dosada05/chess-tournament/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	hub      *brackets.Hub
	auth     *middleware.Authenticator
	upgrader websocket.Upgrader
}

// NewWebSocketHandler accepts upgrades from the given origins; "*" allows any.
func NewWebSocketHandler(hub *brackets.Hub, auth *middleware.Authenticator, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WebSocketHandler{
		hub:  hub,
		auth: auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// ServeWs joins the global room and, with a valid token, the caller's own room.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	rooms := []string{brackets.RoomAll}
	if raw := middleware.TokenFromRequest(r); raw != "" {
		id, err := h.auth.Parse(raw)
		if err != nil {
			unauthorizedResponse(w, r, "invalid token")
			return
		}
		if id.ParticipantKey != "" {
			rooms = append(rooms, brackets.ParticipantRoom(id.ParticipantKey))
		}
	}
	h.serve(w, r, rooms)
}

// ServeTournamentWs joins the tournament room.
func (h *WebSocketHandler) ServeTournamentWs(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "tournamentKey")
	if key == "" {
		http.Error(w, "Missing tournamentKey", http.StatusBadRequest)
		return
	}
	h.serve(w, r, []string{brackets.TournamentRoom(key)})
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, rooms []string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Strings("rooms", rooms), zap.Error(err))
		return
	}

	client := brackets.NewClient(h.hub, conn, rooms...)
	if !h.hub.Join(client) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
