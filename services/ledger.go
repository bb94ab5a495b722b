package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/repositories"
	"go.uber.org/zap"
)

// Ledger owns participant scores: the global score on Participant and the
// tournament score on Standing. Both move together under the participants' locks.
type Ledger interface {
	PrepareResult(firstKey, secondKey string, result models.Result, tournamentKey string) (*ScoreUpdate, error)
	ApplyResult(ctx context.Context, firstKey, secondKey string, result models.Result, tournamentKey string) error
	PrepareGhostWin(participantKey, tournamentKey string) (*ScoreUpdate, error)
	ApplyGhostWin(ctx context.Context, participantKey, tournamentKey string) error
	Seed(ctx context.Context, st *models.Standing)
	TournamentLeaderboard(ctx context.Context, tournamentKey string) ([]models.LeaderboardEntry, error)
	OverallLeaderboard() []models.LeaderboardEntry
	Forget(ctx context.Context, tournamentKey string)
}

type scoreLedger struct {
	c     Collaborators
	board repositories.LeaderboardRepository
}

// NewLedger builds the score ledger. board may be nil when Redis is not configured.
func NewLedger(c Collaborators, board repositories.LeaderboardRepository) Ledger {
	return &scoreLedger{c: c.withDefaults(), board: board}
}

type scoreChange struct {
	participant *models.Participant
	standing    *models.Standing
	points      float64
}

// PrepareResult applies a finished match to the in-memory scores and returns the
// update to publish once the caller has released its own locks. Nothing changes
// when an error is returned.
func (l *scoreLedger) PrepareResult(firstKey, secondKey string, result models.Result, tournamentKey string) (*ScoreUpdate, error) {
	switch result {
	case models.ResultFirst, models.ResultSecond, models.ResultDraw:
	default:
		return nil, ErrInvalidResult
	}
	first, second := result.Points()

	a, err := l.lookup(firstKey, tournamentKey)
	if err != nil {
		return nil, err
	}
	b, err := l.lookup(secondKey, tournamentKey)
	if err != nil {
		return nil, err
	}
	a.points, b.points = first, second
	return l.commit(a, b), nil
}

func (l *scoreLedger) ApplyResult(ctx context.Context, firstKey, secondKey string, result models.Result, tournamentKey string) error {
	update, err := l.PrepareResult(firstKey, secondKey, result, tournamentKey)
	if err != nil {
		return err
	}
	update.Publish(ctx)
	return nil
}

// PrepareGhostWin awards the bye point in memory. Publish the returned update
// after releasing the tournament lock.
func (l *scoreLedger) PrepareGhostWin(participantKey, tournamentKey string) (*ScoreUpdate, error) {
	change, err := l.lookup(participantKey, tournamentKey)
	if err != nil {
		return nil, err
	}
	change.points = 1
	return l.commit(change), nil
}

func (l *scoreLedger) ApplyGhostWin(ctx context.Context, participantKey, tournamentKey string) error {
	update, err := l.PrepareGhostWin(participantKey, tournamentKey)
	if err != nil {
		return err
	}
	update.Publish(ctx)
	return nil
}

func (l *scoreLedger) lookup(participantKey, tournamentKey string) (scoreChange, error) {
	p, err := l.c.Store.Participant(participantKey)
	if err != nil {
		return scoreChange{}, fmt.Errorf("%w: %w: %s", ErrIntegrity, ErrParticipantNotFound, participantKey)
	}
	st, err := l.c.Store.Standing(tournamentKey, participantKey)
	if err != nil {
		return scoreChange{}, fmt.Errorf("%w: %w: %s in %s", ErrIntegrity, ErrNotInTournament, participantKey, tournamentKey)
	}
	return scoreChange{participant: p, standing: st}, nil
}

// ScoreUpdate carries copies of the records changed by a commit.
type ScoreUpdate struct {
	ledger       *scoreLedger
	participants []models.Participant
	standings    []models.Standing
}

// Publish mirrors and persists the changed scores. Failures are logged.
func (u *ScoreUpdate) Publish(ctx context.Context) {
	if u == nil {
		return
	}
	for i := range u.participants {
		u.ledger.publish(ctx, &u.participants[i], &u.standings[i])
	}
}

// commit applies every change while holding all involved participant locks.
func (l *scoreLedger) commit(changes ...scoreChange) *ScoreUpdate {
	keys := make([]string, 0, len(changes))
	for _, ch := range changes {
		keys = append(keys, ch.participant.Key)
	}

	now := l.c.Clock()
	update := &ScoreUpdate{
		ledger:       l,
		participants: make([]models.Participant, 0, len(changes)),
		standings:    make([]models.Standing, 0, len(changes)),
	}

	unlock := l.c.Store.LockParticipants(keys...)
	defer unlock()
	for _, ch := range changes {
		ch.participant.Score += ch.points
		ch.standing.Score += ch.points
		ch.standing.UpdatedAt = now
		update.participants = append(update.participants, *ch.participant)
		update.standings = append(update.standings, *ch.standing)
	}
	return update
}

func (l *scoreLedger) publish(ctx context.Context, p *models.Participant, st *models.Standing) {
	if l.board != nil {
		if err := l.board.SetScore(ctx, st.TournamentKey, st.ParticipantKey, st.Score); err != nil {
			l.c.Logger.Warn("leaderboard mirror failed",
				zap.String("tournament_key", st.TournamentKey),
				zap.String("participant_key", st.ParticipantKey),
				zap.Error(err))
		}
	}
	if err := l.c.Persister.SaveParticipant(ctx, p); err != nil {
		l.c.Logger.Error("persist participant score", zap.String("participant_key", p.Key), zap.Error(err))
	}
	if err := l.c.Persister.SaveStanding(ctx, st); err != nil {
		l.c.Logger.Error("persist standing",
			zap.String("tournament_key", st.TournamentKey),
			zap.String("participant_key", st.ParticipantKey),
			zap.Error(err))
	}
}

// Seed mirrors a freshly created standing so the Redis board lists every player.
func (l *scoreLedger) Seed(ctx context.Context, st *models.Standing) {
	if l.board == nil {
		return
	}
	if err := l.board.SetScore(ctx, st.TournamentKey, st.ParticipantKey, st.Score); err != nil {
		l.c.Logger.Warn("leaderboard seed failed", zap.String("tournament_key", st.TournamentKey), zap.Error(err))
	}
}

// TournamentLeaderboard prefers the Redis mirror and falls back to memory.
func (l *scoreLedger) TournamentLeaderboard(ctx context.Context, tournamentKey string) ([]models.LeaderboardEntry, error) {
	if _, err := l.c.Store.Tournament(tournamentKey); err != nil {
		return nil, translateStoreError(err)
	}
	if l.board != nil {
		top, err := l.board.Top(ctx, tournamentKey, 0)
		if err == nil && len(top) > 0 {
			entries := make([]models.LeaderboardEntry, 0, len(top))
			for _, sp := range top {
				p, err := l.c.Store.Participant(sp.ParticipantKey)
				if err != nil || p.Ghost {
					continue
				}
				entries = append(entries, models.LeaderboardEntry{ParticipantKey: p.Key, Name: p.FullName(), Score: sp.Score})
			}
			sortLeaderboard(entries)
			return entries, nil
		}
		if err != nil {
			l.c.Logger.Warn("leaderboard read failed, using memory", zap.String("tournament_key", tournamentKey), zap.Error(err))
		}
	}

	standings := l.c.Store.Standings(tournamentKey)
	entries := make([]models.LeaderboardEntry, 0, len(standings))
	for _, st := range standings {
		p, err := l.c.Store.Participant(st.ParticipantKey)
		if err != nil || p.Ghost {
			continue
		}
		unlock := l.c.Store.LockParticipants(p.Key)
		score := st.Score
		unlock()
		entries = append(entries, models.LeaderboardEntry{ParticipantKey: p.Key, Name: p.FullName(), Score: score})
	}
	sortLeaderboard(entries)
	return entries, nil
}

func (l *scoreLedger) OverallLeaderboard() []models.LeaderboardEntry {
	participants := l.c.Store.ListParticipants()
	entries := make([]models.LeaderboardEntry, 0, len(participants))
	for _, p := range participants {
		unlock := l.c.Store.LockParticipants(p.Key)
		score := p.Score
		unlock()
		entries = append(entries, models.LeaderboardEntry{ParticipantKey: p.Key, Name: p.FullName(), Score: score})
	}
	sortLeaderboard(entries)
	return entries
}

func (l *scoreLedger) Forget(ctx context.Context, tournamentKey string) {
	if l.board == nil {
		return
	}
	if err := l.board.Remove(ctx, tournamentKey); err != nil {
		l.c.Logger.Warn("leaderboard remove failed", zap.String("tournament_key", tournamentKey), zap.Error(err))
	}
}

func sortLeaderboard(entries []models.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].ParticipantKey < entries[j].ParticipantKey
	})
}

// leaders returns every entry sharing the top score.
func leaders(entries []models.LeaderboardEntry) []models.LeaderboardEntry {
	if len(entries) == 0 {
		return nil
	}
	top := entries[0].Score
	var out []models.LeaderboardEntry
	for _, e := range entries {
		if e.Score != top {
			break
		}
		out = append(out, e)
	}
	return out
}
