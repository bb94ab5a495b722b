package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/chess-tournament/brackets"
	"github.com/Dosada05/chess-tournament/models"
	"go.uber.org/zap"
)

// ScheduleGenerator materializes the full round-robin schedule of a tournament.
type ScheduleGenerator interface {
	Generate(ctx context.Context, t *models.Tournament) (*Schedule, error)
}

// Schedule is what Generate changed in memory. Ghost and Scores are not yet
// persisted; the caller publishes them once the tournament lock is released.
type Schedule struct {
	Matches []*models.Match
	Ghost   *models.Participant
	Scores  []*ScoreUpdate
}

type scheduleGenerator struct {
	c      Collaborators
	ledger Ledger
}

func NewScheduleGenerator(c Collaborators, ledger Ledger) ScheduleGenerator {
	return &scheduleGenerator{c: c.withDefaults(), ledger: ledger}
}

// Generate must run under the tournament lock. It pads an odd field with the
// tournament's ghost, creates n-1 rounds with round 1 ACTIVE, resolves every ghost
// pairing as a win for the real player and registers all rounds and matches in
// the store. t.Rounds is filled in place. Generate does no I/O.
func (g *scheduleGenerator) Generate(ctx context.Context, t *models.Tournament) (*Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(t.ParticipantKeys) == 0 {
		return nil, ErrNoParticipants
	}
	for _, key := range t.ParticipantKeys {
		if _, err := g.c.Store.Participant(key); err != nil {
			return nil, fmt.Errorf("%w: %w: %s", ErrIntegrity, translateStoreError(err), key)
		}
		if _, err := g.c.Store.Standing(t.Key, key); err != nil {
			return nil, fmt.Errorf("%w: %w: %s", ErrIntegrity, translateStoreError(err), key)
		}
	}

	sched := &Schedule{}
	seats := append([]string(nil), t.ParticipantKeys...)
	if len(seats)%2 != 0 {
		ghost, created, err := g.ghostFor(t)
		if err != nil {
			return nil, err
		}
		sched.Ghost = created
		seats = append(seats, ghost)
	}

	pairings, err := brackets.RoundRobin(seats)
	if err != nil {
		if errors.Is(err, brackets.ErrNoParticipants) {
			return nil, ErrNoParticipants
		}
		return nil, err
	}

	now := g.c.Clock()
	rounds := make(map[int]*models.Round, len(pairings))
	var matches, ghostMatches []*models.Match
	for i, boards := range pairings {
		number := i + 1
		state := models.StateCreated
		if number == 1 {
			state = models.StateActive
		}
		round := &models.Round{
			Key:           g.c.Keys.NewKey(),
			TournamentKey: t.Key,
			Number:        number,
			State:         state,
		}
		for _, p := range boards {
			m := &models.Match{
				Key:           g.c.Keys.NewKey(),
				TournamentKey: t.Key,
				RoundKey:      round.Key,
				RoundNumber:   number,
				State:         state,
				FirstPlayer:   p.First,
				SecondPlayer:  p.Second,
				Result: &models.MatchResult{
					Key:          g.c.Keys.NewKey(),
					FirstPlayer:  p.First,
					SecondPlayer: p.Second,
				},
			}
			if state == models.StateActive {
				m.StartedAt = now
			}
			if t.GhostKey != "" && m.Involves(t.GhostKey) {
				resolveGhostMatch(m, t.GhostKey, now)
				ghostMatches = append(ghostMatches, m)
			}
			round.MatchKeys = append(round.MatchKeys, m.Key)
			matches = append(matches, m)
		}
		rounds[number] = round
	}

	for _, m := range ghostMatches {
		update, err := g.ledger.PrepareGhostWin(m.Opponent(t.GhostKey), t.Key)
		if err != nil {
			return nil, err
		}
		sched.Scores = append(sched.Scores, update)
	}

	for _, round := range rounds {
		g.c.Store.AddRound(round)
	}
	for _, m := range matches {
		g.c.Store.AddMatch(m)
	}
	t.Rounds = rounds

	g.c.Logger.Info("schedule generated",
		zap.String("tournament_key", t.Key),
		zap.Int("rounds", len(rounds)),
		zap.Int("matches", len(matches)),
		zap.Bool("ghost", t.GhostKey != ""))
	sched.Matches = matches
	return sched, nil
}

// ghostFor returns the tournament's ghost, creating it on first use. created is
// a copy of a newly added ghost and nil otherwise.
func (g *scheduleGenerator) ghostFor(t *models.Tournament) (key string, created *models.Participant, err error) {
	if t.GhostKey != "" {
		return t.GhostKey, nil, nil
	}
	ghost := models.NewGhost(g.c.Keys.NewKey(), t.Key)
	if err := g.c.Store.AddParticipant(ghost); err != nil {
		return "", nil, fmt.Errorf("create ghost for %s: %w", t.Key, err)
	}
	t.GhostKey = ghost.Key
	copied := *ghost
	return ghost.Key, &copied, nil
}

func resolveGhostMatch(m *models.Match, ghostKey string, now time.Time) {
	if m.SecondPlayer == ghostKey {
		m.Result.Result = models.ResultFirst
	} else {
		m.Result.Result = models.ResultSecond
	}
	if m.StartedAt.IsZero() {
		m.StartedAt = now
	}
	m.State = models.StateEnded
}
