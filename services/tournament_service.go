package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/chess-tournament/brackets"
	"github.com/Dosada05/chess-tournament/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name            string    `json:"name" validate:"required,max=200"`
	MaxParticipants int       `json:"max_participants" validate:"gt=0"`
	StartDate       time.Time `json:"start_date"`
}

// TournamentService owns the tournament, round and match lifecycle along with
// registration.
type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, key string) (*models.Tournament, error)
	ListTournaments(ctx context.Context, state *models.GameState) []*models.Tournament
	DeleteTournament(ctx context.Context, key string) error

	SetRegistrationStatus(ctx context.Context, key string, open bool) (*models.Tournament, error)
	SetMaxParticipants(ctx context.Context, key string, max int) (*models.Tournament, error)
	IsRegistrationAvailable(ctx context.Context, key string) (bool, error)
	RegisterPlayer(ctx context.Context, tournamentKey, participantKey string) error
	InvitePlayer(ctx context.Context, tournamentKey, participantKey string) (*models.Invitation, error)
	AcceptInvitation(ctx context.Context, tournamentKey, participantKey string) error
	ExpireInvitations(ctx context.Context) int
	AssignRefereeToTournament(ctx context.Context, tournamentKey, refereeKey string) error
	ListParticipants(ctx context.Context, tournamentKey string) ([]models.ParticipantListing, error)
	Leaderboard(ctx context.Context, tournamentKey string) ([]models.LeaderboardEntry, error)
	OverallLeaderboard(ctx context.Context) []models.LeaderboardEntry

	Start(ctx context.Context, key string) (*models.Tournament, error)
	End(ctx context.Context, key string) (*models.Tournament, error)
	AdvanceRound(ctx context.Context, key string) (*models.Round, error)
	AdvanceIfRoundFinished(ctx context.Context, key string, roundNumber int) (*models.Round, bool, error)
	SetCurrentRound(ctx context.Context, key string, number int) (*models.Round, error)
	StartRound(ctx context.Context, key string, number int) error
	IsRoundFinished(ctx context.Context, key string, number int) (bool, error)
	IsFinalRound(ctx context.Context, key string, number int) (bool, error)
	GetCurrentRound(ctx context.Context, key string) (*models.Round, error)
	GetRound(ctx context.Context, key string, number int) (*models.Round, error)
	ListRounds(ctx context.Context, key string) ([]*models.Round, error)

	Status(ctx context.Context, key string) (*TournamentStatus, error)
	PushStatus(ctx context.Context, key string) error
	PushActiveStatuses(ctx context.Context) int
}

type tournamentService struct {
	c             Collaborators
	ledger        Ledger
	generator     ScheduleGenerator
	invitationTTL time.Duration
}

const DefaultInvitationTTL = 4 * time.Hour

func NewTournamentService(c Collaborators, ledger Ledger, generator ScheduleGenerator, invitationTTL time.Duration) TournamentService {
	c = c.withDefaults()
	if invitationTTL <= 0 {
		invitationTTL = DefaultInvitationTTL
	}
	return &tournamentService{c: c, ledger: ledger, generator: generator, invitationTTL: invitationTTL}
}

// effects are applied after the tournament lock is released.
type effects struct {
	participants []*models.Participant
	tournament   *models.Tournament
	matches      []*models.Match
	scores       []*ScoreUpdate
	messages     []brackets.WebSocketMessage
	completed    bool
	standings    []models.LeaderboardEntry
}

func (s *tournamentService) apply(ctx context.Context, eff effects) {
	for _, p := range eff.participants {
		if err := s.c.Persister.SaveParticipant(ctx, p); err != nil {
			s.c.Logger.Error("persist participant", zap.String("participant_key", p.Key), zap.Error(err))
		}
	}
	if eff.tournament != nil {
		s.c.persistTournament(ctx, eff.tournament, eff.matches)
	} else {
		s.c.persistMatches(ctx, eff.matches...)
	}
	for _, update := range eff.scores {
		update.Publish(ctx)
	}
	for _, msg := range eff.messages {
		s.c.Notifier.Broadcast(msg)
	}
	if eff.completed && s.c.Archiver != nil {
		s.archive(ctx, eff.tournament, eff.standings)
	}
}

func (s *tournamentService) archive(ctx context.Context, t *models.Tournament, standings []models.LeaderboardEntry) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.c.Archiver.ArchiveStandings(gctx, t, standings)
	})
	g.Go(func() error {
		s.ledger.Forget(gctx, t.Key)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.c.Logger.Warn("archive standings failed", zap.String("tournament_key", t.Key), zap.Error(err))
	}
}

// locked runs fn under the tournament lock.
func (s *tournamentService) locked(key string, fn func(t *models.Tournament) error) error {
	t, err := s.c.Store.Tournament(key)
	if err != nil {
		return translateStoreError(err)
	}
	unlock := s.c.Store.LockTournament(key)
	defer unlock()
	return fn(t)
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.MaxParticipants <= 0 {
		return nil, ErrInvalidCapacity
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	name := input.Name
	t := &models.Tournament{
		Key:              s.c.Keys.NewKey(),
		Name:             name,
		State:            models.StateCreated,
		RegistrationOpen: true,
		MaxParticipants:  input.MaxParticipants,
		StartDate:        input.StartDate.UTC(),
		Rounds:           make(map[int]*models.Round),
		CreatedAt:        s.c.Clock(),
	}
	if err := s.c.Store.AddTournament(t); err != nil {
		return nil, err
	}
	snapshot := t.Clone()
	s.c.persistTournament(ctx, snapshot, nil)
	s.c.Logger.Info("tournament created", zap.String("tournament_key", t.Key), zap.String("name", name))
	return snapshot, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, key string) (*models.Tournament, error) {
	var out *models.Tournament
	err := s.locked(key, func(t *models.Tournament) error {
		out = t.Clone()
		return nil
	})
	return out, err
}

func (s *tournamentService) ListTournaments(ctx context.Context, state *models.GameState) []*models.Tournament {
	var out []*models.Tournament
	for _, key := range s.c.Store.TournamentKeys() {
		_ = s.locked(key, func(t *models.Tournament) error {
			if state == nil || t.State == *state {
				out = append(out, t.Clone())
			}
			return nil
		})
	}
	return out
}

func (s *tournamentService) DeleteTournament(ctx context.Context, key string) error {
	err := s.locked(key, func(t *models.Tournament) error {
		if t.State == models.StateActive {
			return ErrAlreadyStarted
		}
		return translateStoreError(s.c.Store.DeleteTournament(key))
	})
	if err != nil {
		return err
	}
	s.ledger.Forget(ctx, key)
	if err := s.c.Persister.DeleteTournament(ctx, key); err != nil {
		s.c.Logger.Warn("delete persisted tournament", zap.String("tournament_key", key), zap.Error(err))
	}
	return nil
}

func requireCreated(t *models.Tournament) error {
	switch t.State {
	case models.StateActive:
		return ErrAlreadyStarted
	case models.StateEnded:
		return ErrAlreadyEnded
	}
	return nil
}

func (s *tournamentService) SetRegistrationStatus(ctx context.Context, key string, open bool) (*models.Tournament, error) {
	var out *models.Tournament
	err := s.locked(key, func(t *models.Tournament) error {
		if err := requireCreated(t); err != nil {
			return err
		}
		t.RegistrationOpen = open
		out = t.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.c.persistTournament(ctx, out, nil)
	return out, nil
}

func (s *tournamentService) SetMaxParticipants(ctx context.Context, key string, max int) (*models.Tournament, error) {
	var out *models.Tournament
	err := s.locked(key, func(t *models.Tournament) error {
		if err := requireCreated(t); err != nil {
			return err
		}
		if max <= 0 || max < len(t.ParticipantKeys) {
			return ErrInvalidCapacity
		}
		t.MaxParticipants = max
		out = t.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.c.persistTournament(ctx, out, nil)
	return out, nil
}

func registrationAvailable(t *models.Tournament) bool {
	return t.State == models.StateCreated && t.RegistrationOpen && len(t.ParticipantKeys) < t.MaxParticipants
}

func (s *tournamentService) IsRegistrationAvailable(ctx context.Context, key string) (bool, error) {
	var ok bool
	err := s.locked(key, func(t *models.Tournament) error {
		ok = registrationAvailable(t)
		return nil
	})
	return ok, err
}

type registration struct {
	tournament  *models.Tournament
	participant *models.Participant
	standing    *models.Standing
	invitation  *models.Invitation
}

// addPlayerLocked adds p to t; the caller holds the tournament lock and has
// checked availability.
func (s *tournamentService) addPlayerLocked(t *models.Tournament, p *models.Participant) (*registration, error) {
	if t.HasParticipant(p.Key) {
		return nil, ErrAlreadyRegistered
	}
	st, err := s.c.Store.AddStanding(&models.Standing{
		TournamentKey:  t.Key,
		ParticipantKey: p.Key,
		UpdatedAt:      s.c.Clock(),
	})
	if err != nil {
		return nil, translateStoreError(err)
	}
	t.ParticipantKeys = append(t.ParticipantKeys, p.Key)

	reg := &registration{tournament: t.Clone(), participant: p, standing: &models.Standing{}}
	*reg.standing = *st
	if inv, err := s.c.Store.Invitation(t.Key, p.Key); err == nil {
		inv.Status = models.InvitationAccepted
		copied := *inv
		reg.invitation = &copied
	}
	return reg, nil
}

func (s *tournamentService) finishRegistration(ctx context.Context, reg *registration) {
	s.ledger.Seed(ctx, reg.standing)
	s.c.persistTournament(ctx, reg.tournament, nil)
	if err := s.c.Persister.SaveStanding(ctx, reg.standing); err != nil {
		s.c.Logger.Error("persist standing", zap.String("tournament_key", reg.tournament.Key), zap.Error(err))
	}
	if reg.invitation != nil {
		if err := s.c.Persister.SaveInvitation(ctx, reg.invitation); err != nil {
			s.c.Logger.Error("persist invitation", zap.String("tournament_key", reg.tournament.Key), zap.Error(err))
		}
	}
	s.c.sendMail(ctx, reg.participant, reg.tournament, TemplateSuccess)
	s.c.Logger.Info("player registered",
		zap.String("tournament_key", reg.tournament.Key),
		zap.String("participant_key", reg.participant.Key))
}

func (s *tournamentService) participant(key string) (*models.Participant, error) {
	p, err := s.c.Store.Participant(key)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if p.Ghost {
		return nil, ErrParticipantNotFound
	}
	return p, nil
}

func (s *tournamentService) RegisterPlayer(ctx context.Context, tournamentKey, participantKey string) error {
	p, err := s.participant(participantKey)
	if err != nil {
		return err
	}

	var reg *registration
	var closed *models.Tournament
	err = s.locked(tournamentKey, func(t *models.Tournament) error {
		if t.HasParticipant(p.Key) {
			return ErrAlreadyRegistered
		}
		if !registrationAvailable(t) {
			closed = t.Clone()
			return ErrRegistrationClosed
		}
		reg, err = s.addPlayerLocked(t, p)
		return err
	})
	if closed != nil {
		s.c.sendMail(ctx, p, closed, TemplateApology)
	}
	if err != nil {
		return err
	}
	s.finishRegistration(ctx, reg)
	return nil
}

func (s *tournamentService) InvitePlayer(ctx context.Context, tournamentKey, participantKey string) (*models.Invitation, error) {
	p, err := s.participant(participantKey)
	if err != nil {
		return nil, err
	}

	var inv models.Invitation
	var snapshot *models.Tournament
	err = s.locked(tournamentKey, func(t *models.Tournament) error {
		if err := requireCreated(t); err != nil {
			return err
		}
		if t.HasParticipant(p.Key) {
			return ErrAlreadyRegistered
		}
		now := s.c.Clock()
		expires := now.Add(s.invitationTTL)
		if !t.StartDate.IsZero() && t.StartDate.Before(expires) {
			expires = t.StartDate
		}
		stored := &models.Invitation{
			TournamentKey:  t.Key,
			ParticipantKey: p.Key,
			Status:         models.InvitationPending,
			ExpiresAt:      expires,
			CreatedAt:      now,
		}
		s.c.Store.PutInvitation(stored)
		inv = *stored
		snapshot = t.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.c.Persister.SaveInvitation(ctx, &inv); err != nil {
		s.c.Logger.Error("persist invitation", zap.String("tournament_key", tournamentKey), zap.Error(err))
	}
	s.c.sendMail(WithInvitationDeadline(ctx, inv.ExpiresAt), p, snapshot, TemplateParticipate)
	return &inv, nil
}

// AcceptInvitation registers an invited player. Invitations bypass the
// registration-open flag but not the capacity limit.
func (s *tournamentService) AcceptInvitation(ctx context.Context, tournamentKey, participantKey string) error {
	p, err := s.participant(participantKey)
	if err != nil {
		return err
	}

	var reg *registration
	var expired *models.Invitation
	err = s.locked(tournamentKey, func(t *models.Tournament) error {
		inv, err := s.c.Store.Invitation(t.Key, p.Key)
		if err != nil {
			return translateStoreError(err)
		}
		if inv.Status == models.InvitationAccepted || t.HasParticipant(p.Key) {
			return ErrAlreadyRegistered
		}
		if inv.Expired(s.c.Clock()) {
			if inv.Status != models.InvitationExpired {
				inv.Status = models.InvitationExpired
				copied := *inv
				expired = &copied
			}
			return ErrInvitationExpired
		}
		if err := requireCreated(t); err != nil {
			return err
		}
		if len(t.ParticipantKeys) >= t.MaxParticipants {
			return ErrRegistrationClosed
		}
		reg, err = s.addPlayerLocked(t, p)
		return err
	})
	if expired != nil {
		if perr := s.c.Persister.SaveInvitation(ctx, expired); perr != nil {
			s.c.Logger.Error("persist invitation", zap.String("tournament_key", tournamentKey), zap.Error(perr))
		}
	}
	if err != nil {
		return err
	}
	s.finishRegistration(ctx, reg)
	return nil
}

// ExpireInvitations marks overdue pending invitations as expired and returns how many changed.
func (s *tournamentService) ExpireInvitations(ctx context.Context) int {
	now := s.c.Clock()
	var changed []models.Invitation
	for _, key := range s.c.Store.TournamentKeys() {
		_ = s.locked(key, func(t *models.Tournament) error {
			for _, inv := range s.c.Store.Invitations(key) {
				if inv.Status == models.InvitationPending && inv.Expired(now) {
					inv.Status = models.InvitationExpired
					changed = append(changed, *inv)
				}
			}
			return nil
		})
	}
	for i := range changed {
		if err := s.c.Persister.SaveInvitation(ctx, &changed[i]); err != nil {
			s.c.Logger.Error("persist expired invitation", zap.String("tournament_key", changed[i].TournamentKey), zap.Error(err))
		}
	}
	if len(changed) > 0 {
		s.c.Logger.Info("invitations expired", zap.Int("count", len(changed)))
	}
	return len(changed)
}

func (s *tournamentService) AssignRefereeToTournament(ctx context.Context, tournamentKey, refereeKey string) error {
	if _, err := s.participant(refereeKey); err != nil {
		return err
	}
	var snapshot *models.Tournament
	err := s.locked(tournamentKey, func(t *models.Tournament) error {
		if t.HasReferee(refereeKey) {
			return fmt.Errorf("%w to this tournament", ErrRefereeAlreadyAssigned)
		}
		t.RefereeKeys = append(t.RefereeKeys, refereeKey)
		snapshot = t.Clone()
		return nil
	})
	if err != nil {
		return err
	}
	s.c.persistTournament(ctx, snapshot, nil)
	return nil
}

func (s *tournamentService) ListParticipants(ctx context.Context, tournamentKey string) ([]models.ParticipantListing, error) {
	var out []models.ParticipantListing
	err := s.locked(tournamentKey, func(t *models.Tournament) error {
		for _, key := range t.ParticipantKeys {
			if p := s.participantCopy(key); p != nil {
				out = append(out, models.ParticipantListing{Participant: p, Status: models.InvitationAccepted})
			}
		}
		for _, inv := range s.c.Store.Invitations(t.Key) {
			if inv.Status != models.InvitationPending {
				continue
			}
			if p := s.participantCopy(inv.ParticipantKey); p != nil {
				out = append(out, models.ParticipantListing{Participant: p, Status: models.InvitationPending})
			}
		}
		return nil
	})
	return out, err
}

func (s *tournamentService) participantCopy(key string) *models.Participant {
	p, err := s.c.Store.Participant(key)
	if err != nil || p.Ghost {
		return nil
	}
	unlock := s.c.Store.LockParticipants(key)
	defer unlock()
	copied := *p
	return &copied
}

func (s *tournamentService) Leaderboard(ctx context.Context, tournamentKey string) ([]models.LeaderboardEntry, error) {
	return s.ledger.TournamentLeaderboard(ctx, tournamentKey)
}

func (s *tournamentService) OverallLeaderboard(ctx context.Context) []models.LeaderboardEntry {
	return s.ledger.OverallLeaderboard()
}

// State machine

func (s *tournamentService) Start(ctx context.Context, key string) (*models.Tournament, error) {
	var eff effects
	err := s.locked(key, func(t *models.Tournament) error {
		if err := requireCreated(t); err != nil {
			return err
		}
		if len(t.ParticipantKeys) == 0 {
			return ErrNoParticipants
		}
		sched, err := s.generator.Generate(ctx, t)
		if err != nil {
			return err
		}
		if err := t.Transition(models.StateActive); err != nil {
			return err
		}
		t.RegistrationOpen = false
		t.CurrentRound = 1

		eff.tournament = t.Clone()
		for _, m := range sched.Matches {
			eff.matches = append(eff.matches, m.Clone())
		}
		if sched.Ghost != nil {
			eff.participants = append(eff.participants, sched.Ghost)
		}
		eff.scores = sched.Scores
		eff.messages = append(eff.messages, textMessage(MessageTournamentStarted, t.Key, "Tournament started!"))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.apply(ctx, eff)
	s.c.Logger.Info("tournament started",
		zap.String("tournament_key", key),
		zap.Int("rounds", len(eff.tournament.Rounds)))
	return eff.tournament, nil
}

func (s *tournamentService) End(ctx context.Context, key string) (*models.Tournament, error) {
	var eff effects
	err := s.locked(key, func(t *models.Tournament) error {
		switch t.State {
		case models.StateCreated:
			return ErrNotStarted
		case models.StateEnded:
			return ErrAlreadyEnded
		}
		t.RegistrationOpen = false
		if err := t.Transition(models.StateEnded); err != nil {
			return err
		}
		s.completeLocked(t, &eff)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.apply(ctx, eff)
	return eff.tournament, nil
}

// completeLocked records the winners of an ended tournament and queues the announcement.
func (s *tournamentService) completeLocked(t *models.Tournament, eff *effects) {
	standings := s.memoryStandings(t.Key)
	top := leaders(standings)

	t.WinnerKeys = t.WinnerKeys[:0]
	names := make([]string, 0, len(top))
	for _, e := range top {
		t.WinnerKeys = append(t.WinnerKeys, e.ParticipantKey)
		names = append(names, e.Name)
	}

	text := fmt.Sprintf("Tournament '%s' ended!", t.Name)
	switch len(names) {
	case 0:
	case 1:
		text += " The winner is: " + names[0]
	default:
		text += " The winners are: " + strings.Join(names, ", ")
	}

	eff.tournament = t.Clone()
	eff.completed = true
	eff.standings = standings
	eff.messages = append(eff.messages, brackets.WebSocketMessage{
		Type:          MessageTournamentEnded,
		Payload:       TournamentEndedNotification{Message: text, Winners: top},
		TournamentKey: t.Key,
	})
	s.c.Logger.Info("tournament ended", zap.String("tournament_key", t.Key), zap.Strings("winners", t.WinnerKeys))
}

// memoryStandings reads tournament scores straight from the arena, ghost excluded.
func (s *tournamentService) memoryStandings(tournamentKey string) []models.LeaderboardEntry {
	standings := s.c.Store.Standings(tournamentKey)
	entries := make([]models.LeaderboardEntry, 0, len(standings))
	for _, st := range standings {
		p, err := s.c.Store.Participant(st.ParticipantKey)
		if err != nil || p.Ghost {
			continue
		}
		unlock := s.c.Store.LockParticipants(p.Key)
		entries = append(entries, models.LeaderboardEntry{ParticipantKey: p.Key, Name: p.FullName(), Score: st.Score})
		unlock()
	}
	sortLeaderboard(entries)
	return entries
}

func (s *tournamentService) roundFinished(r *models.Round) bool {
	for _, m := range s.c.Store.Matches(r.MatchKeys) {
		unlock := s.c.Store.LockMatch(m.Key)
		state := m.State
		unlock()
		if state != models.StateEnded {
			return false
		}
	}
	return true
}

// startRoundLocked activates the CREATED matches of r and returns copies of the changed ones.
func (s *tournamentService) startRoundLocked(r *models.Round) []*models.Match {
	now := s.c.Clock()
	var changed []*models.Match
	for _, m := range s.c.Store.Matches(r.MatchKeys) {
		unlock := s.c.Store.LockMatch(m.Key)
		if m.State == models.StateCreated {
			m.State = models.StateActive
			m.StartedAt = now
			changed = append(changed, m.Clone())
		}
		unlock()
	}
	return changed
}

func isFinal(t *models.Tournament, r *models.Round) bool {
	return r.Number == len(t.Rounds)
}

func (s *tournamentService) advanceLocked(t *models.Tournament, eff *effects) (*models.Round, error) {
	current := t.Current()
	if t.State != models.StateActive || current == nil {
		return nil, ErrNotStarted
	}

	if isFinal(t, current) {
		if n := len(current.MatchKeys); n > 0 {
			if last, err := s.c.Store.Match(current.MatchKeys[n-1]); err == nil {
				unlock := s.c.Store.LockMatch(last.Key)
				if last.State != models.StateEnded {
					last.State = models.StateEnded
					eff.matches = append(eff.matches, last.Clone())
				}
				unlock()
			}
		}
		if err := current.Transition(models.StateEnded); err != nil {
			return nil, err
		}
		if err := t.Transition(models.StateEnded); err != nil {
			return nil, err
		}
		t.RegistrationOpen = false
		s.completeLocked(t, eff)
		return current.Clone(), nil
	}

	next, ok := t.Round(current.Number + 1)
	if !ok || !s.roundFinished(current) {
		return nil, ErrRoundOngoing
	}
	if err := current.Transition(models.StateEnded); err != nil {
		return nil, err
	}
	if err := next.Transition(models.StateActive); err != nil {
		return nil, err
	}
	eff.matches = append(eff.matches, s.startRoundLocked(next)...)
	t.CurrentRound = next.Number
	eff.tournament = t.Clone()
	eff.messages = append(eff.messages,
		textMessage(MessageRoundStarted, t.Key, fmt.Sprintf("Round %d started!", next.Number)))
	s.c.Logger.Info("round advanced", zap.String("tournament_key", t.Key), zap.Int("round", next.Number))
	return next.Clone(), nil
}

func (s *tournamentService) AdvanceRound(ctx context.Context, key string) (*models.Round, error) {
	var eff effects
	var round *models.Round
	err := s.locked(key, func(t *models.Tournament) error {
		var err error
		round, err = s.advanceLocked(t, &eff)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.apply(ctx, eff)
	return round, nil
}

// AdvanceIfRoundFinished advances only when roundNumber is the current, ACTIVE
// round and every one of its matches has ended. The check and the advance share
// one critical section.
func (s *tournamentService) AdvanceIfRoundFinished(ctx context.Context, key string, roundNumber int) (*models.Round, bool, error) {
	var eff effects
	var round *models.Round
	err := s.locked(key, func(t *models.Tournament) error {
		if t.State != models.StateActive || t.CurrentRound != roundNumber {
			return nil
		}
		current := t.Current()
		if current == nil || current.State != models.StateActive || !s.roundFinished(current) {
			return nil
		}
		var err error
		round, err = s.advanceLocked(t, &eff)
		return err
	})
	if err != nil || round == nil {
		return nil, false, err
	}
	s.apply(ctx, eff)
	return round, true, nil
}

func (s *tournamentService) SetCurrentRound(ctx context.Context, key string, number int) (*models.Round, error) {
	var eff effects
	var round *models.Round
	err := s.locked(key, func(t *models.Tournament) error {
		if t.State != models.StateActive {
			if t.State == models.StateEnded {
				return ErrAlreadyEnded
			}
			return ErrNotStarted
		}
		r, ok := t.Round(number)
		if !ok {
			return ErrRoundNotInTournament
		}
		if number == t.CurrentRound {
			return ErrAlreadyCurrentRound
		}
		if err := r.Transition(models.StateActive); err != nil {
			return err
		}
		t.CurrentRound = number
		eff.matches = s.startRoundLocked(r)
		eff.tournament = t.Clone()
		eff.messages = append(eff.messages,
			textMessage(MessageRoundAboutToStart, t.Key, fmt.Sprintf("Round %d is about to start!", number)))
		round = r.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.apply(ctx, eff)
	return round, nil
}

func (s *tournamentService) StartRound(ctx context.Context, key string, number int) error {
	var changed []*models.Match
	err := s.locked(key, func(t *models.Tournament) error {
		r, ok := t.Round(number)
		if !ok {
			return ErrRoundNotInTournament
		}
		changed = s.startRoundLocked(r)
		return nil
	})
	if err != nil {
		return err
	}
	s.c.persistMatches(ctx, changed...)
	return nil
}

func (s *tournamentService) IsRoundFinished(ctx context.Context, key string, number int) (bool, error) {
	var finished bool
	err := s.locked(key, func(t *models.Tournament) error {
		r, ok := t.Round(number)
		if !ok {
			return ErrRoundNotInTournament
		}
		finished = s.roundFinished(r)
		return nil
	})
	return finished, err
}

func (s *tournamentService) IsFinalRound(ctx context.Context, key string, number int) (bool, error) {
	var final bool
	err := s.locked(key, func(t *models.Tournament) error {
		r, ok := t.Round(number)
		if !ok {
			return ErrRoundNotInTournament
		}
		final = isFinal(t, r)
		return nil
	})
	return final, err
}

func (s *tournamentService) GetCurrentRound(ctx context.Context, key string) (*models.Round, error) {
	var round *models.Round
	err := s.locked(key, func(t *models.Tournament) error {
		current := t.Current()
		if current == nil {
			return ErrNotStarted
		}
		round = current.Clone()
		return nil
	})
	return round, err
}

func (s *tournamentService) GetRound(ctx context.Context, key string, number int) (*models.Round, error) {
	var round *models.Round
	err := s.locked(key, func(t *models.Tournament) error {
		r, ok := t.Round(number)
		if !ok {
			return ErrRoundNotInTournament
		}
		round = r.Clone()
		return nil
	})
	return round, err
}

func (s *tournamentService) ListRounds(ctx context.Context, key string) ([]*models.Round, error) {
	var rounds []*models.Round
	err := s.locked(key, func(t *models.Tournament) error {
		for _, r := range t.OrderedRounds() {
			rounds = append(rounds, r.Clone())
		}
		return nil
	})
	return rounds, err
}

func (s *tournamentService) Status(ctx context.Context, key string) (*TournamentStatus, error) {
	var status *TournamentStatus
	err := s.locked(key, func(t *models.Tournament) error {
		status = &TournamentStatus{Key: t.Key, Name: t.Name, State: t.State, CurrentRound: t.CurrentRound}
		for _, r := range t.OrderedRounds() {
			rs := RoundStatus{Number: r.Number, State: r.State}
			for _, m := range s.c.Store.Matches(r.MatchKeys) {
				unlock := s.c.Store.LockMatch(m.Key)
				rs.Matches = append(rs.Matches, m.Clone())
				unlock()
			}
			status.Rounds = append(status.Rounds, rs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	board, err := s.ledger.TournamentLeaderboard(ctx, key)
	if err != nil {
		return nil, err
	}
	status.Leaderboard = board
	return status, nil
}

func (s *tournamentService) PushStatus(ctx context.Context, key string) error {
	status, err := s.Status(ctx, key)
	if err != nil {
		return err
	}
	s.c.Notifier.Broadcast(brackets.WebSocketMessage{
		Type:          MessageTournamentStatus,
		Payload:       status,
		TournamentKey: key,
	})
	return nil
}

// PushActiveStatuses broadcasts the status of every ACTIVE tournament.
func (s *tournamentService) PushActiveStatuses(ctx context.Context) int {
	active := models.StateActive
	pushed := 0
	for _, t := range s.ListTournaments(ctx, &active) {
		if err := s.PushStatus(ctx, t.Key); err != nil {
			s.c.Logger.Warn("push tournament status", zap.String("tournament_key", t.Key), zap.Error(err))
			continue
		}
		pushed++
	}
	return pushed
}
