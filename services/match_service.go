package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/chess-tournament/models"
	"go.uber.org/zap"
)

// MatchService answers match queries and assigns referees to single matches.
type MatchService interface {
	GetMatch(ctx context.Context, key string) (*models.Match, error)
	AssignReferee(ctx context.Context, matchKey, refereeKey string) (*models.Match, error)
	LastPlayedMatch(ctx context.Context, tournamentKey string) (*models.Match, error)
	PlayerResults(ctx context.Context, tournamentKey, participantKey string) ([]*models.MatchResult, error)
	OngoingMatchCount(ctx context.Context, tournamentKey string) (int, error)
}

type matchService struct {
	c Collaborators
}

func NewMatchService(c Collaborators) MatchService {
	return &matchService{c: c.withDefaults()}
}

func (s *matchService) GetMatch(ctx context.Context, key string) (*models.Match, error) {
	m, err := s.c.Store.Match(key)
	if err != nil {
		return nil, translateStoreError(err)
	}
	unlock := s.c.Store.LockMatch(m.Key)
	defer unlock()
	return m.Clone(), nil
}

func (s *matchService) AssignReferee(ctx context.Context, matchKey, refereeKey string) (*models.Match, error) {
	ref, err := s.c.Store.Participant(refereeKey)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if ref.Ghost {
		return nil, ErrParticipantNotFound
	}
	m, err := s.c.Store.Match(matchKey)
	if err != nil {
		return nil, translateStoreError(err)
	}

	unlock := s.c.Store.LockMatch(m.Key)
	if m.Referee != "" {
		unlock()
		return nil, fmt.Errorf("%w to this match", ErrRefereeAlreadyAssigned)
	}
	if m.Involves(refereeKey) {
		unlock()
		return nil, fmt.Errorf("%w: a player cannot referee their own match", ErrValidationFailed)
	}
	m.Referee = refereeKey
	copied := m.Clone()
	unlock()

	s.c.persistMatches(ctx, copied)
	s.c.Logger.Info("referee assigned", zap.String("match_key", matchKey), zap.String("referee_key", refereeKey))
	return copied, nil
}

// tournamentMatches copies every match of the tournament, round by round.
func (s *matchService) tournamentMatches(tournamentKey string) ([]*models.Match, error) {
	t, err := s.c.Store.Tournament(tournamentKey)
	if err != nil {
		return nil, translateStoreError(err)
	}
	unlock := s.c.Store.LockTournament(t.Key)
	defer unlock()

	var out []*models.Match
	for _, r := range t.OrderedRounds() {
		for _, m := range s.c.Store.Matches(r.MatchKeys) {
			unlockMatch := s.c.Store.LockMatch(m.Key)
			out = append(out, m.Clone())
			unlockMatch()
		}
	}
	return out, nil
}

// LastPlayedMatch returns the ENDED match with the latest start time.
func (s *matchService) LastPlayedMatch(ctx context.Context, tournamentKey string) (*models.Match, error) {
	matches, err := s.tournamentMatches(tournamentKey)
	if err != nil {
		return nil, err
	}
	var last *models.Match
	for _, m := range matches {
		if m.State != models.StateEnded {
			continue
		}
		if last == nil || m.StartedAt.After(last.StartedAt) {
			last = m
		}
	}
	if last == nil {
		return nil, ErrMatchNotFound
	}
	return last, nil
}

func (s *matchService) PlayerResults(ctx context.Context, tournamentKey, participantKey string) ([]*models.MatchResult, error) {
	matches, err := s.tournamentMatches(tournamentKey)
	if err != nil {
		return nil, err
	}
	var out []*models.MatchResult
	for _, m := range matches {
		if m.Involves(participantKey) && m.Result != nil {
			out = append(out, m.Result)
		}
	}
	return out, nil
}

func (s *matchService) OngoingMatchCount(ctx context.Context, tournamentKey string) (int, error) {
	matches, err := s.tournamentMatches(tournamentKey)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range matches {
		if m.State == models.StateActive {
			n++
		}
	}
	return n, nil
}
