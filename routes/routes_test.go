package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/chess-tournament/brackets"
	"github.com/Dosada05/chess-tournament/handlers"
	"github.com/Dosada05/chess-tournament/middleware"
	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/repositories"
	"github.com/Dosada05/chess-tournament/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminToken = "test-admin-token"

type api struct {
	t      *testing.T
	server *httptest.Server
}

func newAPI(t *testing.T) *api {
	t.Helper()
	collab := services.Collaborators{Store: repositories.NewMemoryStore(), Notifier: brackets.NewHub(nil)}
	ledger := services.NewLedger(collab, nil)
	tournaments := services.NewTournamentService(collab, ledger, services.NewScheduleGenerator(collab, ledger), time.Hour)
	matches := services.NewMatchService(collab)
	participants := services.NewParticipantService(collab)
	results := services.NewResultService(collab, ledger, tournaments)
	auth := middleware.NewAuthenticator("routes-test-secret", time.Hour)

	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Auth:        handlers.NewAuthHandler(auth, participants, adminToken),
		Participant: handlers.NewParticipantHandler(participants, tournaments),
		Tournament:  handlers.NewTournamentHandler(tournaments, matches),
		Match:       handlers.NewMatchHandler(matches, results),
		WebSocket:   handlers.NewWebSocketHandler(brackets.NewHub(nil), auth, []string{"*"}),
	}, auth, []string{"*"})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &api{t: t, server: srv}
}

func (a *api) do(method, path, token string, body interface{}, out interface{}) int {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.server.URL+path, &buf)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (a *api) token(participantKey string, role models.Role) string {
	a.t.Helper()
	body, err := json.Marshal(map[string]string{"participant_key": participantKey, "role": string(role)})
	require.NoError(a.t, err)
	req, err := http.NewRequest(http.MethodPost, a.server.URL+"/auth/token", bytes.NewReader(body))
	require.NoError(a.t, err)
	req.Header.Set("X-Admin-Token", adminToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	require.Equal(a.t, http.StatusOK, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Token
}

func (a *api) participant(email, name string) string {
	a.t.Helper()
	var out struct {
		Participant models.Participant `json:"participant"`
	}
	status := a.do(http.MethodPost, "/participants", "", map[string]string{"email": email, "first_name": name}, &out)
	require.Equal(a.t, http.StatusCreated, status)
	return out.Participant.Key
}

func TestHealthz(t *testing.T) {
	a := newAPI(t)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/healthz", "", nil, nil))
}

func TestSwaggerDocument(t *testing.T) {
	a := newAPI(t)
	var doc struct {
		Swagger string                     `json:"swagger"`
		Info    struct{ Title string }     `json:"info"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/swagger/doc.json", "", nil, &doc))
	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "Chess Tournament API", doc.Info.Title)
	for _, path := range []string{
		"/tournaments/{tournamentKey}/advance",
		"/matches/{matchKey}/result",
		"/matches/{matchKey}/referee-result",
	} {
		assert.Contains(t, doc.Paths, path)
	}
}

func TestTokenRequiresAdminToken(t *testing.T) {
	a := newAPI(t)
	var out map[string]interface{}
	status := a.do(http.MethodPost, "/auth/token", "", map[string]string{"role": "admin"}, &out)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, out, "error")
}

func TestCreateTournamentRequiresAdmin(t *testing.T) {
	a := newAPI(t)
	input := map[string]interface{}{"name": "Club Cup", "max_participants": 4}

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/tournaments", "", input, nil))

	player := a.participant("ana@example.com", "Ana")
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/tournaments", a.token(player, models.RolePlayer), input, nil))

	var out struct {
		Tournament models.Tournament `json:"tournament"`
	}
	assert.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/tournaments", a.token("", models.RoleAdmin), input, &out))
	assert.Equal(t, models.StateCreated, out.Tournament.State)
	assert.True(t, out.Tournament.RegistrationOpen)
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	a := newAPI(t)
	admin := a.token("", models.RoleAdmin)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/tournaments/missing", "", nil, nil))
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/matches/missing", "", nil, nil))
	assert.Equal(t, http.StatusUnprocessableEntity,
		a.do(http.MethodPost, "/tournaments", admin, map[string]interface{}{"name": "", "max_participants": 4}, nil))
	assert.Equal(t, http.StatusUnprocessableEntity,
		a.do(http.MethodPost, "/participants", "", map[string]string{"email": "not-an-email", "first_name": "X"}, nil))
	assert.Equal(t, http.StatusBadRequest,
		a.do(http.MethodPost, "/participants", "", map[string]string{"unexpected": "field"}, nil))

	a.participant("dup@example.com", "Dup")
	assert.Equal(t, http.StatusConflict,
		a.do(http.MethodPost, "/participants", "", map[string]string{"email": "DUP@example.com", "first_name": "Dup"}, nil))

	var created struct {
		Tournament models.Tournament `json:"tournament"`
	}
	require.Equal(t, http.StatusCreated,
		a.do(http.MethodPost, "/tournaments", admin, map[string]interface{}{"name": "Empty", "max_participants": 4}, &created))
	assert.Equal(t, http.StatusUnprocessableEntity,
		a.do(http.MethodPost, "/tournaments/"+created.Tournament.Key+"/start", admin, nil, nil))
	assert.Equal(t, http.StatusConflict,
		a.do(http.MethodPost, "/tournaments/"+created.Tournament.Key+"/advance", admin, nil, nil))
}

func TestPlayersSettleResultAndAdminClosesTournament(t *testing.T) {
	a := newAPI(t)
	admin := a.token("", models.RoleAdmin)
	alice := a.participant("alice@example.com", "Alice")
	bob := a.participant("bob@example.com", "Bob")
	carol := a.participant("carol@example.com", "Carol")
	aliceToken := a.token(alice, models.RolePlayer)
	bobToken := a.token(bob, models.RolePlayer)

	var created struct {
		Tournament models.Tournament `json:"tournament"`
	}
	require.Equal(t, http.StatusCreated,
		a.do(http.MethodPost, "/tournaments", admin, map[string]interface{}{"name": "Duel", "max_participants": 2}, &created))
	base := "/tournaments/" + created.Tournament.Key

	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, base+"/register", aliceToken, nil, nil))
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, base+"/register", bobToken, nil, nil))
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, base+"/register", a.token(carol, models.RolePlayer), nil, nil))
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, base+"/start", admin, nil, nil))

	var current struct {
		Round models.Round `json:"round"`
	}
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, base+"/rounds/current", "", nil, &current))
	require.Len(t, current.Round.MatchKeys, 1)
	matchPath := "/matches/" + current.Round.MatchKeys[0]

	var match struct {
		Match models.Match `json:"match"`
	}
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, matchPath, "", nil, &match))
	winner := match.Match.FirstPlayer

	outsider := a.token(carol, models.RolePlayer)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, matchPath+"/result", outsider, map[string]string{"result": "1-0"}, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, a.do(http.MethodPost, matchPath+"/result", aliceToken, map[string]string{"result": "win"}, nil))

	require.Equal(t, http.StatusOK, a.do(http.MethodPost, matchPath+"/result", aliceToken, map[string]string{"result": "1-0"}, nil))
	var settled struct {
		Result models.MatchResult `json:"result"`
	}
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, matchPath+"/result", bobToken, map[string]string{"result": "FIRST"}, &settled))
	assert.Equal(t, models.ResultFirst, settled.Result.Result)
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, matchPath+"/result", bobToken, map[string]string{"result": "FIRST"}, nil))

	require.Equal(t, http.StatusOK, a.do(http.MethodPost, base+"/advance", admin, nil, nil))

	var final struct {
		Tournament models.Tournament `json:"tournament"`
	}
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, base, "", nil, &final))
	assert.Equal(t, models.StateEnded, final.Tournament.State)
	assert.Equal(t, []string{winner}, final.Tournament.WinnerKeys)

	var board struct {
		Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
	}
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/leaderboard", "", nil, &board))
	require.NotEmpty(t, board.Leaderboard)
	assert.Equal(t, winner, board.Leaderboard[0].ParticipantKey)
}
