package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/chess-tournament/brackets"
	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/repositories"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu         sync.Mutex
	broadcasts []brackets.WebSocketMessage
	direct     map[string][]brackets.WebSocketMessage
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{direct: make(map[string][]brackets.WebSocketMessage)}
}

func (n *recordingNotifier) Broadcast(msg brackets.WebSocketMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.broadcasts = append(n.broadcasts, msg)
}

func (n *recordingNotifier) SendToParticipant(msg brackets.WebSocketMessage, key string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.direct[key] = append(n.direct[key], msg)
}

func (n *recordingNotifier) broadcastsOf(kind string) []brackets.WebSocketMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []brackets.WebSocketMessage
	for _, m := range n.broadcasts {
		if m.Type == kind {
			out = append(out, m)
		}
	}
	return out
}

func (n *recordingNotifier) sentTo(key string) []brackets.WebSocketMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]brackets.WebSocketMessage(nil), n.direct[key]...)
}

type sentMail struct {
	participantKey string
	tournamentKey  string
	kind           TemplateKind
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Notify(_ context.Context, p *models.Participant, t *models.Tournament, kind TemplateKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{participantKey: p.Key, tournamentKey: t.Key, kind: kind})
	return nil
}

func (m *recordingMailer) kinds(participantKey string) []TemplateKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []TemplateKind
	for _, s := range m.sent {
		if s.participantKey == participantKey {
			out = append(out, s.kind)
		}
	}
	return out
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	store        *repositories.MemoryStore
	notifier     *recordingNotifier
	mailer       *recordingMailer
	clock        *testClock
	ledger       Ledger
	tournaments  TournamentService
	results      ResultService
	matches      MatchService
	participants ParticipantService
	seq          int
}

func newHarness(t *testing.T, board repositories.LeaderboardRepository) *harness {
	t.Helper()
	return newHarnessWithPersister(t, board, nil)
}

func newHarnessWithPersister(t *testing.T, board repositories.LeaderboardRepository, persister Persister) *harness {
	t.Helper()
	h := &harness{
		store:    repositories.NewMemoryStore(),
		notifier: newRecordingNotifier(),
		mailer:   &recordingMailer{},
		clock:    &testClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
	}
	c := Collaborators{
		Store:     h.store,
		Notifier:  h.notifier,
		Mailer:    h.mailer,
		Persister: persister,
		Clock:     h.clock.Now,
	}
	h.ledger = NewLedger(c, board)
	h.tournaments = NewTournamentService(c, h.ledger, NewScheduleGenerator(c, h.ledger), time.Hour)
	h.results = NewResultService(c, h.ledger, h.tournaments)
	h.matches = NewMatchService(c)
	h.participants = NewParticipantService(c)
	return h
}

func (h *harness) players(t *testing.T, n int) []string {
	t.Helper()
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		h.seq++
		p, err := h.participants.CreateParticipant(context.Background(), CreateParticipantInput{
			Email:     fmt.Sprintf("player%02d@example.com", h.seq),
			FirstName: "Player",
			LastName:  fmt.Sprintf("%02d", h.seq),
		})
		require.NoError(t, err)
		keys = append(keys, p.Key)
	}
	return keys
}

// tournament creates a tournament with n registered players.
func (h *harness) tournament(t *testing.T, n int) (string, []string) {
	t.Helper()
	ctx := context.Background()
	tour, err := h.tournaments.CreateTournament(ctx, CreateTournamentInput{Name: "Spring Open", MaxParticipants: 16})
	require.NoError(t, err)
	players := h.players(t, n)
	for _, key := range players {
		require.NoError(t, h.tournaments.RegisterPlayer(ctx, tour.Key, key))
	}
	return tour.Key, players
}

func (h *harness) started(t *testing.T, n int) (*models.Tournament, []string) {
	t.Helper()
	key, players := h.tournament(t, n)
	tour, err := h.tournaments.Start(context.Background(), key)
	require.NoError(t, err)
	return tour, players
}

func (h *harness) roundMatches(t *testing.T, tournamentKey string, number int) []*models.Match {
	t.Helper()
	ctx := context.Background()
	r, err := h.tournaments.GetRound(ctx, tournamentKey, number)
	require.NoError(t, err)
	out := make([]*models.Match, 0, len(r.MatchKeys))
	for _, key := range r.MatchKeys {
		m, err := h.matches.GetMatch(ctx, key)
		require.NoError(t, err)
		out = append(out, m)
	}
	return out
}

func (h *harness) openMatches(t *testing.T, tournamentKey string, number int) []*models.Match {
	t.Helper()
	var out []*models.Match
	for _, m := range h.roundMatches(t, tournamentKey, number) {
		if m.State != models.StateEnded {
			out = append(out, m)
		}
	}
	return out
}

func (h *harness) score(t *testing.T, participantKey string) float64 {
	t.Helper()
	p, err := h.participants.GetParticipant(context.Background(), participantKey)
	require.NoError(t, err)
	return p.Score
}

func (h *harness) standing(t *testing.T, tournamentKey, participantKey string) float64 {
	t.Helper()
	st, err := h.store.Standing(tournamentKey, participantKey)
	require.NoError(t, err)
	unlock := h.store.LockParticipants(participantKey)
	defer unlock()
	return st.Score
}
