package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshotOf copies a tournament out of the harness arena the way the
// snapshot repository would load it back.
func snapshotOf(t *testing.T, h *harness, key string) ([]*models.Participant, *repositories.TournamentSnapshot) {
	t.Helper()
	tour, err := h.store.Tournament(key)
	require.NoError(t, err)
	snap := &repositories.TournamentSnapshot{Tournament: tour.Clone()}

	var participants []*models.Participant
	for _, p := range h.store.ListParticipants() {
		copied := *p
		participants = append(participants, &copied)
	}
	if tour.GhostKey != "" {
		ghost, err := h.store.Participant(tour.GhostKey)
		require.NoError(t, err)
		copied := *ghost
		participants = append(participants, &copied)
	}
	for _, round := range tour.Rounds {
		for _, m := range h.store.Matches(round.MatchKeys) {
			snap.Matches = append(snap.Matches, m.Clone())
		}
	}
	for _, st := range h.store.Standings(key) {
		copied := *st
		snap.Standings = append(snap.Standings, &copied)
	}
	return participants, snap
}

func TestRestore_ReportOnRestoredMatch(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	tour, players := h.started(t, 5)
	participants, snap := snapshotOf(t, h, tour.Key)

	store := repositories.NewMemoryStore()
	require.NoError(t, repositories.Restore(store, participants, []*repositories.TournamentSnapshot{snap}))

	c := Collaborators{Store: store}
	ledger := NewLedger(c, nil)
	tournaments := NewTournamentService(c, ledger, NewScheduleGenerator(c, ledger), time.Hour)
	results := NewResultService(c, ledger, tournaments)
	matches := NewMatchService(c)

	restored, err := tournaments.GetTournament(ctx, tour.Key)
	require.NoError(t, err)
	assert.Equal(t, models.StateActive, restored.State)
	assert.Equal(t, 1, restored.CurrentRound)
	assert.Equal(t, tour.GhostKey, restored.GhostKey)
	require.Len(t, restored.Rounds, 5)

	board, err := tournaments.Leaderboard(ctx, tour.Key)
	require.NoError(t, err)
	require.Len(t, board, len(players))
	for _, e := range board {
		assert.Equal(t, float64(1), e.Score, e.ParticipantKey)
	}

	round, err := tournaments.GetCurrentRound(ctx, tour.Key)
	require.NoError(t, err)
	var open []*models.Match
	for _, key := range round.MatchKeys {
		m, err := matches.GetMatch(ctx, key)
		require.NoError(t, err)
		if m.State != models.StateEnded {
			open = append(open, m)
		}
	}
	require.Len(t, open, 2)

	res, err := results.ReportByReferee(ctx, open[0].Key, "1/2 - 1/2")
	require.NoError(t, err)
	assert.Equal(t, models.ResultDraw, res.Result)

	for _, key := range []string{open[0].FirstPlayer, open[0].SecondPlayer} {
		st, err := store.Standing(tour.Key, key)
		require.NoError(t, err)
		assert.Equal(t, 1.5, st.Score)
	}
	// the original arena is untouched
	assert.Equal(t, float64(1), h.standing(t, tour.Key, open[0].FirstPlayer))

	_, err = results.ReportByReferee(ctx, open[1].Key, "FIRST")
	require.NoError(t, err)
	current, err := tournaments.GetCurrentRound(ctx, tour.Key)
	require.NoError(t, err)
	assert.Equal(t, 2, current.Number)
	assert.Equal(t, models.StateActive, current.State)
}
