package handlers

import (
	"net/http"
	"strings"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/services"
)

type TournamentHandler struct {
	tournaments services.TournamentService
	matches     services.MatchService
}

func NewTournamentHandler(ts services.TournamentService, ms services.MatchService) *TournamentHandler {
	return &TournamentHandler{tournaments: ts, matches: ms}
}

// CreateHandler handles POST /tournaments.
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	t, err := h.tournaments.CreateTournament(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"tournament": t})
}

// ListHandler handles GET /tournaments?state=ACTIVE.
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter *models.GameState
	if raw := strings.TrimSpace(r.URL.Query().Get("state")); raw != "" {
		state, err := models.ParseGameState(raw)
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		filter = &state
	}
	respond(w, r, http.StatusOK, jsonResponse{"tournaments": h.tournaments.ListTournaments(r.Context(), filter)})
}

// withKey resolves {tournamentKey} and hands it to fn.
func withKey(fn func(w http.ResponseWriter, r *http.Request, key string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := urlKey(r, "tournamentKey")
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		fn(w, r, key)
	}
}

func (h *TournamentHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		t, err := h.tournaments.GetTournament(r.Context(), key)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, jsonResponse{"tournament": t})
	})(w, r)
}

func (h *TournamentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		if err := h.tournaments.DeleteTournament(r.Context(), key); err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})(w, r)
}

func (h *TournamentHandler) RegistrationHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		var input struct {
			Open *bool `json:"open"`
		}
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
		if input.Open == nil {
			errorResponse(w, r, http.StatusUnprocessableEntity, "open is required")
			return
		}
		t, err := h.tournaments.SetRegistrationStatus(r.Context(), key, *input.Open)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, jsonResponse{"tournament": t})
	})(w, r)
}

func (h *TournamentHandler) CapacityHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		var input struct {
			MaxParticipants int `json:"max_participants"`
		}
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
		t, err := h.tournaments.SetMaxParticipants(r.Context(), key, input.MaxParticipants)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, jsonResponse{"tournament": t})
	})(w, r)
}

// RegisterHandler registers the calling player.
func (h *TournamentHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		id, ok := identity(w, r)
		if !ok {
			return
		}
		if err := h.tournaments.RegisterPlayer(r.Context(), key, id.ParticipantKey); err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusCreated, jsonResponse{"registered": true})
	})(w, r)
}

type participantKeyInput struct {
	ParticipantKey string `json:"participant_key"`
}

func (h *TournamentHandler) InviteHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		var input participantKeyInput
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
		inv, err := h.tournaments.InvitePlayer(r.Context(), key, input.ParticipantKey)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusCreated, jsonResponse{"invitation": inv})
	})(w, r)
}

func (h *TournamentHandler) AcceptInvitationHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		id, ok := identity(w, r)
		if !ok {
			return
		}
		if err := h.tournaments.AcceptInvitation(r.Context(), key, id.ParticipantKey); err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, jsonResponse{"registered": true})
	})(w, r)
}

func (h *TournamentHandler) ParticipantsHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		list, err := h.tournaments.ListParticipants(r.Context(), key)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, jsonResponse{"participants": list})
	})(w, r)
}

func (h *TournamentHandler) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		board, err := h.tournaments.Leaderboard(r.Context(), key)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, jsonResponse{"leaderboard": board})
	})(w, r)
}

func (h *TournamentHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		t, err := h.tournaments.Start(r.Context(), key)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, jsonResponse{"tournament": t})
	})(w, r)
}

func (h *TournamentHandler) EndHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		t, err := h.tournaments.End(r.Context(), key)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, jsonResponse{"tournament": t})
	})(w, r)
}

func (h *TournamentHandler) AdvanceHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		round, err := h.tournaments.AdvanceRound(r.Context(), key)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, jsonResponse{"round": round})
	})(w, r)
}

func (h *TournamentHandler) SetCurrentRoundHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		var input struct {
			Number int `json:"number"`
		}
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
		round, err := h.tournaments.SetCurrentRound(r.Context(), key, input.Number)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, jsonResponse{"round": round})
	})(w, r)
}

func (h *TournamentHandler) RoundsHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		rounds, err := h.tournaments.ListRounds(r.Context(), key)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, jsonResponse{"rounds": rounds})
	})(w, r)
}

func (h *TournamentHandler) CurrentRoundHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		round, err := h.tournaments.GetCurrentRound(r.Context(), key)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, jsonResponse{"round": round})
	})(w, r)
}

func (h *TournamentHandler) RoundHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		number, err := urlInt(r, "number")
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		round, err := h.tournaments.GetRound(r.Context(), key, number)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, jsonResponse{"round": round})
	})(w, r)
}

func (h *TournamentHandler) AssignRefereeHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		var input participantKeyInput
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
		if err := h.tournaments.AssignRefereeToTournament(r.Context(), key, input.ParticipantKey); err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusCreated, jsonResponse{"referee_key": input.ParticipantKey})
	})(w, r)
}

func (h *TournamentHandler) PlayerResultsHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		participantKey, err := urlKey(r, "participantKey")
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		results, err := h.matches.PlayerResults(r.Context(), key, participantKey)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, jsonResponse{"results": results})
	})(w, r)
}

func (h *TournamentHandler) LastMatchHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		m, err := h.matches.LastPlayedMatch(r.Context(), key)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, jsonResponse{"match": m})
	})(w, r)
}

func (h *TournamentHandler) OngoingCountHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		n, err := h.matches.OngoingMatchCount(r.Context(), key)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, jsonResponse{"count": n})
	})(w, r)
}

func (h *TournamentHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	withKey(func(w http.ResponseWriter, r *http.Request, key string) {
		status, err := h.tournaments.Status(r.Context(), key)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, jsonResponse{"status": status})
	})(w, r)
}
