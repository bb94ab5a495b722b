package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFivePlayerTournament(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	tour, players := h.started(t, 5)

	require.NotEmpty(t, tour.GhostKey)
	assert.NotContains(t, tour.ParticipantKeys, tour.GhostKey)
	require.Len(t, tour.Rounds, 5)
	for n := 1; n <= 5; n++ {
		assert.Len(t, tour.Rounds[n].MatchKeys, 3, "round %d", n)
	}
	assert.Equal(t, models.StateActive, tour.Rounds[1].State)
	assert.Equal(t, models.StateCreated, tour.Rounds[2].State)

	round1 := h.roundMatches(t, tour.Key, 1)
	var ghostMatch *models.Match
	var open []*models.Match
	for _, m := range round1 {
		if m.Involves(tour.GhostKey) {
			ghostMatch = m
			continue
		}
		assert.Equal(t, models.StateActive, m.State)
		open = append(open, m)
	}
	require.NotNil(t, ghostMatch)
	require.Len(t, open, 2)
	assert.Equal(t, models.StateEnded, ghostMatch.State)
	winner := ghostMatch.Opponent(tour.GhostKey)
	if ghostMatch.SecondPlayer == tour.GhostKey {
		assert.Equal(t, models.ResultFirst, ghostMatch.Result.Result)
	} else {
		assert.Equal(t, models.ResultSecond, ghostMatch.Result.Result)
	}
	assert.Equal(t, 1.0, h.score(t, winner))
	assert.Equal(t, 1.0, h.standing(t, tour.Key, winner))

	// Every player meets the ghost exactly once.
	total := 0.0
	for _, key := range players {
		total += h.score(t, key)
	}
	assert.Equal(t, 5.0, total)

	_, err := h.results.ReportByReferee(ctx, open[0].Key, "DRAW")
	require.NoError(t, err)
	round, err := h.tournaments.GetCurrentRound(ctx, tour.Key)
	require.NoError(t, err)
	assert.Equal(t, 1, round.Number)

	last := open[1]
	before := h.score(t, last.FirstPlayer)
	result, err := h.results.ReportByReferee(ctx, last.Key, "1/2 - 1/2")
	require.NoError(t, err)
	assert.Equal(t, models.ResultDraw, result.Result)
	assert.Equal(t, before+0.5, h.score(t, last.FirstPlayer))

	got, err := h.tournaments.GetTournament(ctx, tour.Key)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentRound)
	assert.Equal(t, models.StateEnded, got.Rounds[1].State)
	assert.Equal(t, models.StateActive, got.Rounds[2].State)
	for _, m := range h.roundMatches(t, tour.Key, 2) {
		if m.Involves(tour.GhostKey) {
			assert.Equal(t, models.StateEnded, m.State)
			continue
		}
		assert.Equal(t, models.StateActive, m.State)
		assert.False(t, m.StartedAt.IsZero())
	}
	assert.Len(t, h.notifier.broadcastsOf(MessageRoundStarted), 1)
}

func TestReportByPlayer_Agreement(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	tour, _ := h.started(t, 4)
	m := h.openMatches(t, tour.Key, 1)[0]

	res, err := h.results.ReportByPlayer(ctx, m.Key, m.FirstPlayer, "1 - 0")
	require.NoError(t, err)
	assert.Equal(t, models.ResultFirst, res.FirstPlayerResult)
	assert.False(t, res.Result.IsSet())

	res, err = h.results.ReportByPlayer(ctx, m.Key, m.SecondPlayer, "FIRST")
	require.NoError(t, err)
	assert.Equal(t, models.ResultFirst, res.Result)
	assert.Equal(t, 1.0, h.score(t, m.FirstPlayer))
	assert.Equal(t, 0.0, h.score(t, m.SecondPlayer))

	ended, err := h.matches.GetMatch(ctx, m.Key)
	require.NoError(t, err)
	assert.Equal(t, models.StateEnded, ended.State)

	settled := h.notifier.broadcastsOf(MessageResultSettled)
	require.Len(t, settled, 1)
	payload := settled[0].Payload.(ResultSettledNotification)
	assert.Equal(t, "1 - 0", payload.Result)
}

func TestReportByPlayer_DoesNotAdvanceRound(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	tour, _ := h.started(t, 2)
	m := h.openMatches(t, tour.Key, 1)[0]

	// A two player field has a single round, so agreement would otherwise end it.
	_, err := h.results.ReportByPlayer(ctx, m.Key, m.FirstPlayer, "DRAW")
	require.NoError(t, err)
	_, err = h.results.ReportByPlayer(ctx, m.Key, m.SecondPlayer, "DRAW")
	require.NoError(t, err)

	got, err := h.tournaments.GetTournament(ctx, tour.Key)
	require.NoError(t, err)
	assert.Equal(t, models.StateActive, got.State)
	assert.Equal(t, models.StateActive, got.Rounds[1].State)
}

func TestReportByPlayer_DuplicateKeepsOpponentClaim(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	tour, _ := h.started(t, 4)
	m := h.openMatches(t, tour.Key, 1)[0]

	_, err := h.results.ReportByPlayer(ctx, m.Key, m.FirstPlayer, "FIRST")
	require.NoError(t, err)
	_, err = h.results.ReportByPlayer(ctx, m.Key, m.FirstPlayer, "SECOND")
	assert.ErrorIs(t, err, ErrDuplicateReport)

	res, err := h.results.ReportByPlayer(ctx, m.Key, m.SecondPlayer, "FIRST")
	require.NoError(t, err)
	assert.Equal(t, models.ResultFirst, res.FirstPlayerResult)
	assert.Equal(t, models.ResultFirst, res.SecondPlayerResult)
	assert.Equal(t, models.ResultFirst, res.Result)
}

func TestReportByPlayer_Rejections(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	tour, players := h.started(t, 4)
	m := h.openMatches(t, tour.Key, 1)[0]

	var outsider string
	for _, p := range players {
		if !m.Involves(p) {
			outsider = p
			break
		}
	}

	_, err := h.results.ReportByPlayer(ctx, m.Key, outsider, "FIRST")
	assert.ErrorIs(t, err, ErrUnauthorizedReporter)
	assert.Equal(t, KindUnauthorized, KindOf(err))

	_, err = h.results.ReportByPlayer(ctx, m.Key, m.FirstPlayer, "WIN")
	assert.ErrorIs(t, err, ErrInvalidResult)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = h.results.ReportByPlayer(ctx, "missing", m.FirstPlayer, "FIRST")
	assert.ErrorIs(t, err, ErrMatchNotFound)

	fresh, err := h.matches.GetMatch(ctx, m.Key)
	require.NoError(t, err)
	assert.False(t, fresh.Result.FirstPlayerResult.IsSet())
}

func TestConflictThenRefereeOverride(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	tour, _ := h.started(t, 4)
	m := h.openMatches(t, tour.Key, 1)[0]

	referee := h.players(t, 1)[0]
	_, err := h.matches.AssignReferee(ctx, m.Key, referee)
	require.NoError(t, err)

	_, err = h.results.ReportByPlayer(ctx, m.Key, m.FirstPlayer, "FIRST")
	require.NoError(t, err)
	_, err = h.results.ReportByPlayer(ctx, m.Key, m.SecondPlayer, "SECOND")
	require.NoError(t, err)

	pending, err := h.matches.GetMatch(ctx, m.Key)
	require.NoError(t, err)
	assert.NotEqual(t, models.StateEnded, pending.State)
	assert.False(t, pending.Result.Result.IsSet())
	for _, key := range []string{m.FirstPlayer, m.SecondPlayer, referee} {
		msgs := h.notifier.sentTo(key)
		require.Len(t, msgs, 1, key)
		assert.Equal(t, MessageResultConflict, msgs[0].Type)
	}
	assert.Equal(t, 0.0, h.score(t, m.FirstPlayer)+h.score(t, m.SecondPlayer))

	res, err := h.results.ReportByReferee(ctx, m.Key, "DRAW")
	require.NoError(t, err)
	assert.Equal(t, models.ResultDraw, res.Result)
	assert.Equal(t, 0.5, h.score(t, m.FirstPlayer))
	assert.Equal(t, 0.5, h.score(t, m.SecondPlayer))
}

func TestReport_AfterEndIsRejected(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	tour, _ := h.started(t, 4)
	m := h.openMatches(t, tour.Key, 1)[0]

	_, err := h.results.ReportByReferee(ctx, m.Key, "SECOND")
	require.NoError(t, err)
	first, second := h.score(t, m.FirstPlayer), h.score(t, m.SecondPlayer)

	_, err = h.results.ReportByReferee(ctx, m.Key, "FIRST")
	assert.ErrorIs(t, err, ErrMatchAlreadyEnded)
	_, err = h.results.ReportByPlayer(ctx, m.Key, m.FirstPlayer, "FIRST")
	assert.ErrorIs(t, err, ErrMatchAlreadyEnded)

	assert.Equal(t, first, h.score(t, m.FirstPlayer))
	assert.Equal(t, second, h.score(t, m.SecondPlayer))
}

func TestReport_IntegrityFailureLeavesMatchOpen(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	tour, _ := h.started(t, 4)
	m := h.openMatches(t, tour.Key, 1)[0]

	stray := &models.Match{
		Key:           "stray",
		TournamentKey: tour.Key,
		RoundNumber:   1,
		State:         models.StateActive,
		FirstPlayer:   m.FirstPlayer,
		SecondPlayer:  "nobody",
		Result:        &models.MatchResult{Key: "stray-result", FirstPlayer: m.FirstPlayer, SecondPlayer: "nobody"},
	}
	h.store.AddMatch(stray)

	_, err := h.results.ReportByReferee(ctx, stray.Key, "FIRST")
	require.Error(t, err)
	assert.Equal(t, KindIntegrity, KindOf(err))
	assert.Equal(t, 0.0, h.score(t, m.FirstPlayer))

	got, err := h.matches.GetMatch(ctx, stray.Key)
	require.NoError(t, err)
	assert.Equal(t, models.StateActive, got.State)
	assert.False(t, got.Result.Result.IsSet())
}

func TestReport_ConcurrentReportersFinalizeOnce(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	tour, players := h.started(t, 8)

	var matches []*models.Match
	for n := 1; n <= len(tour.Rounds); n++ {
		matches = append(matches, h.roundMatches(t, tour.Key, n)...)
	}
	require.Len(t, matches, 28)

	var wg sync.WaitGroup
	errs := make(chan error, len(matches)*3)
	for _, m := range matches {
		wg.Add(3)
		go func(m *models.Match) {
			defer wg.Done()
			_, err := h.results.ReportByPlayer(ctx, m.Key, m.FirstPlayer, "FIRST")
			errs <- err
		}(m)
		go func(m *models.Match) {
			defer wg.Done()
			_, err := h.results.ReportByPlayer(ctx, m.Key, m.SecondPlayer, "FIRST")
			errs <- err
		}(m)
		go func(m *models.Match) {
			defer wg.Done()
			_, err := h.results.ReportByReferee(ctx, m.Key, "FIRST")
			errs <- err
		}(m)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil && !errors.Is(err, ErrMatchAlreadyEnded) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	total, standings := 0.0, 0.0
	for _, key := range players {
		total += h.score(t, key)
		standings += h.standing(t, tour.Key, key)
	}
	assert.Equal(t, 28.0, total)
	assert.Equal(t, 28.0, standings)

	for _, m := range matches {
		got, err := h.matches.GetMatch(ctx, m.Key)
		require.NoError(t, err)
		assert.Equal(t, models.StateEnded, got.State)
		assert.Equal(t, models.ResultFirst, got.Result.Result)
	}
}
