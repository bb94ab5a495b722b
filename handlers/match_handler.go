package handlers

import (
	"net/http"

	"github.com/Dosada05/chess-tournament/services"
)

type MatchHandler struct {
	matches services.MatchService
	results services.ResultService
}

func NewMatchHandler(ms services.MatchService, rs services.ResultService) *MatchHandler {
	return &MatchHandler{matches: ms, results: rs}
}

type resultInput struct {
	Result string `json:"result"`
}

func (h *MatchHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	key, err := urlKey(r, "matchKey")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	m, err := h.matches.GetMatch(r.Context(), key)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"match": m})
}

func (h *MatchHandler) AssignRefereeHandler(w http.ResponseWriter, r *http.Request) {
	key, err := urlKey(r, "matchKey")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input participantKeyInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	m, err := h.matches.AssignReferee(r.Context(), key, input.ParticipantKey)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"match": m})
}

// PlayerResultHandler records the calling player's self-report.
func (h *MatchHandler) PlayerResultHandler(w http.ResponseWriter, r *http.Request) {
	key, err := urlKey(r, "matchKey")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var input resultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	res, err := h.results.ReportByPlayer(r.Context(), key, id.ParticipantKey, input.Result)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"result": res})
}

func (h *MatchHandler) RefereeResultHandler(w http.ResponseWriter, r *http.Request) {
	key, err := urlKey(r, "matchKey")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input resultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	res, err := h.results.ReportByReferee(r.Context(), key, input.Result)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"result": res})
}
