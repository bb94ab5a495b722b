package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/Dosada05/chess-tournament/middleware"
	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/services"
)

type tokenIssuer interface {
	IssueToken(participantKey string, role models.Role) (string, error)
}

// AuthHandler issues tokens to callers presenting the admin token.
type AuthHandler struct {
	issuer       tokenIssuer
	participants services.ParticipantService
	adminToken   string
}

func NewAuthHandler(issuer tokenIssuer, ps services.ParticipantService, adminToken string) *AuthHandler {
	return &AuthHandler{issuer: issuer, participants: ps, adminToken: adminToken}
}

type tokenRequest struct {
	ParticipantKey string      `json:"participant_key"`
	Role           models.Role `json:"role"`
}

// TokenHandler handles POST /auth/token.
func (h *AuthHandler) TokenHandler(w http.ResponseWriter, r *http.Request) {
	presented := r.Header.Get("X-Admin-Token")
	if h.adminToken == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(h.adminToken)) != 1 {
		unauthorizedResponse(w, r, "a valid admin token is required")
		return
	}

	var input tokenRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	switch input.Role {
	case models.RoleAdmin:
	case models.RolePlayer, models.RoleReferee:
		if _, err := h.participants.GetParticipant(r.Context(), input.ParticipantKey); err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
	default:
		errorResponse(w, r, http.StatusUnprocessableEntity, "role must be admin, referee or player")
		return
	}

	token, err := h.issuer.IssueToken(input.ParticipantKey, input.Role)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"token": token})
}

var _ tokenIssuer = (*middleware.Authenticator)(nil)
