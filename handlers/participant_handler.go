package handlers

import (
	"net/http"

	"github.com/Dosada05/chess-tournament/services"
)

type ParticipantHandler struct {
	participants services.ParticipantService
	tournaments  services.TournamentService
}

func NewParticipantHandler(ps services.ParticipantService, ts services.TournamentService) *ParticipantHandler {
	return &ParticipantHandler{participants: ps, tournaments: ts}
}

// CreateHandler handles POST /participants.
func (h *ParticipantHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateParticipantInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	p, err := h.participants.CreateParticipant(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"participant": p})
}

func (h *ParticipantHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	key, err := urlKey(r, "participantKey")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	p, err := h.participants.GetParticipant(r.Context(), key)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"participant": p})
}

func (h *ParticipantHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, jsonResponse{"participants": h.participants.ListParticipants(r.Context())})
}

// LeaderboardHandler handles GET /leaderboard.
func (h *ParticipantHandler) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, jsonResponse{"leaderboard": h.tournaments.OverallLeaderboard(r.Context())})
}
