package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/chess-tournament/brackets"
	"github.com/Dosada05/chess-tournament/models"
	"go.uber.org/zap"
)

// ResultService reconciles player self-reports and referee reports. A match is
// finalized at most once.
type ResultService interface {
	ReportByPlayer(ctx context.Context, matchKey, reporterKey, claimed string) (*models.MatchResult, error)
	ReportByReferee(ctx context.Context, matchKey, claimed string) (*models.MatchResult, error)
}

// RoundAdvancer is the part of the state machine the referee path needs.
type RoundAdvancer interface {
	AdvanceIfRoundFinished(ctx context.Context, key string, roundNumber int) (*models.Round, bool, error)
}

type resultService struct {
	c        Collaborators
	ledger   Ledger
	advancer RoundAdvancer
}

func NewResultService(c Collaborators, ledger Ledger, advancer RoundAdvancer) ResultService {
	return &resultService{c: c.withDefaults(), ledger: ledger, advancer: advancer}
}

type outcome int

const (
	outcomePending outcome = iota
	outcomeSettled
	outcomeConflict
)

// report is what a locked section hands to the unlocked follow-up.
type report struct {
	match   *models.Match
	update  *ScoreUpdate
	outcome outcome
}

func parseClaim(claimed string) (models.Result, error) {
	r, err := models.ParseResult(claimed)
	if err != nil {
		return models.ResultUnset, fmt.Errorf("%w: %w", ErrInvalidResult, err)
	}
	return r, nil
}

func (s *resultService) lockedMatch(matchKey string, fn func(m *models.Match) error) error {
	m, err := s.c.Store.Match(matchKey)
	if err != nil {
		return translateStoreError(err)
	}
	unlock := s.c.Store.LockMatch(m.Key)
	defer unlock()
	if m.State == models.StateEnded {
		return ErrMatchAlreadyEnded
	}
	if m.Result == nil {
		m.Result = &models.MatchResult{Key: s.c.Keys.NewKey(), FirstPlayer: m.FirstPlayer, SecondPlayer: m.SecondPlayer}
	}
	return fn(m)
}

func (s *resultService) ReportByPlayer(ctx context.Context, matchKey, reporterKey, claimed string) (*models.MatchResult, error) {
	var rep report
	err := s.lockedMatch(matchKey, func(m *models.Match) error {
		claim, err := parseClaim(claimed)
		if err != nil {
			return err
		}

		var own *models.Result
		switch reporterKey {
		case m.FirstPlayer:
			own = &m.Result.FirstPlayerResult
		case m.SecondPlayer:
			own = &m.Result.SecondPlayerResult
		default:
			return ErrUnauthorizedReporter
		}
		if own.IsSet() {
			return ErrDuplicateReport
		}

		first, second := m.Result.FirstPlayerResult, m.Result.SecondPlayerResult
		if reporterKey == m.FirstPlayer {
			first = claim
		} else {
			second = claim
		}

		rep.outcome = outcomePending
		if first.IsSet() && second.IsSet() {
			rep.outcome = outcomeConflict
			if first == second {
				update, err := s.ledger.PrepareResult(m.FirstPlayer, m.SecondPlayer, first, m.TournamentKey)
				if err != nil {
					return err
				}
				if err := m.Transition(models.StateEnded); err != nil {
					return err
				}
				m.Result.Result = first
				rep.update = update
				rep.outcome = outcomeSettled
			}
		}
		*own = claim
		rep.match = m.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	rep.update.Publish(ctx)
	s.c.persistMatches(ctx, rep.match)
	switch rep.outcome {
	case outcomeSettled:
		s.notifySettled(rep.match)
	case outcomeConflict:
		s.notifyConflict(rep.match)
	}
	s.c.Logger.Info("player result reported",
		zap.String("match_key", matchKey),
		zap.String("participant_key", reporterKey),
		zap.Int("outcome", int(rep.outcome)))
	return rep.match.Result, nil
}

// ReportByReferee finalizes the match with the claimed result regardless of
// pending or conflicting self-reports, then advances the round when this was its
// last open match.
func (s *resultService) ReportByReferee(ctx context.Context, matchKey, claimed string) (*models.MatchResult, error) {
	var rep report
	err := s.lockedMatch(matchKey, func(m *models.Match) error {
		claim, err := parseClaim(claimed)
		if err != nil {
			return err
		}
		update, err := s.ledger.PrepareResult(m.FirstPlayer, m.SecondPlayer, claim, m.TournamentKey)
		if err != nil {
			return err
		}
		if err := m.Transition(models.StateEnded); err != nil {
			return err
		}
		m.Result.Result = claim
		rep = report{match: m.Clone(), update: update, outcome: outcomeSettled}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rep.update.Publish(ctx)
	s.c.persistMatches(ctx, rep.match)
	s.notifySettled(rep.match)
	s.c.Logger.Info("referee result reported",
		zap.String("match_key", matchKey),
		zap.String("result", string(rep.match.Result.Result)))

	if s.advancer != nil {
		round, advanced, err := s.advancer.AdvanceIfRoundFinished(ctx, rep.match.TournamentKey, rep.match.RoundNumber)
		switch {
		case err != nil:
			s.c.Logger.Warn("round advance after referee report failed",
				zap.String("tournament_key", rep.match.TournamentKey),
				zap.Int("round", rep.match.RoundNumber),
				zap.Error(err))
		case advanced:
			s.c.Logger.Info("round closed by referee report",
				zap.String("tournament_key", rep.match.TournamentKey),
				zap.Int("next_round", round.Number))
		}
	}
	return rep.match.Result, nil
}

func (s *resultService) name(key string) string {
	p, err := s.c.Store.Participant(key)
	if err != nil {
		return key
	}
	return p.FullName()
}

func (s *resultService) notifySettled(m *models.Match) {
	s.c.Notifier.Broadcast(brackets.WebSocketMessage{
		Type: MessageResultSettled,
		Payload: ResultSettledNotification{
			MatchKey:         m.Key,
			FirstPlayerName:  s.name(m.FirstPlayer),
			SecondPlayerName: s.name(m.SecondPlayer),
			Result:           m.Result.Result.Display(),
		},
		TournamentKey: m.TournamentKey,
	})
}

func (s *resultService) notifyConflict(m *models.Match) {
	msg := brackets.WebSocketMessage{
		Type: MessageResultConflict,
		Payload: ResultConflictNotification{
			MatchKey:           m.Key,
			FirstPlayerName:    s.name(m.FirstPlayer),
			FirstPlayerResult:  m.Result.FirstPlayerResult.Display(),
			SecondPlayerName:   s.name(m.SecondPlayer),
			SecondPlayerResult: m.Result.SecondPlayerResult.Display(),
		},
		TournamentKey: m.TournamentKey,
	}
	recipients := []string{m.FirstPlayer, m.SecondPlayer}
	if m.Referee != "" {
		recipients = append(recipients, m.Referee)
	}
	for _, key := range recipients {
		s.c.Notifier.SendToParticipant(msg, key)
	}
}
