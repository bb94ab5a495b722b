package repositories

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/Dosada05/chess-tournament/models"
)

var (
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrRoundNotFound       = errors.New("round not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrStandingNotFound    = errors.New("participant is not part of the tournament")
	ErrInvitationNotFound  = errors.New("invitation not found")
	ErrEmailConflict       = errors.New("email address is already in use")
	ErrKeyConflict         = errors.New("key is already in use")
)

// MemoryStore is the in-process arena of entities addressed by opaque keys.
//
// The store's own RWMutex guards only the index maps. Entity fields are guarded
// by the keyed locks: tournaments (and their rounds) by LockTournament, matches
// by LockMatch, participant and standing scores by LockParticipants. Callers that
// need both a tournament and a match lock take the tournament lock first.
type MemoryStore struct {
	mu           sync.RWMutex
	participants map[string]*models.Participant
	emails       map[string]string
	tournaments  map[string]*models.Tournament
	rounds       map[string]*models.Round
	matches      map[string]*models.Match
	standings    map[string]map[string]*models.Standing
	invitations  map[string]map[string]*models.Invitation

	tournamentLocks  *keyedMutex
	matchLocks       *keyedMutex
	participantLocks *keyedMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		participants:     make(map[string]*models.Participant),
		emails:           make(map[string]string),
		tournaments:      make(map[string]*models.Tournament),
		rounds:           make(map[string]*models.Round),
		matches:          make(map[string]*models.Match),
		standings:        make(map[string]map[string]*models.Standing),
		invitations:      make(map[string]map[string]*models.Invitation),
		tournamentLocks:  newKeyedMutex(),
		matchLocks:       newKeyedMutex(),
		participantLocks: newKeyedMutex(),
	}
}

func (s *MemoryStore) LockTournament(key string) func() { return s.tournamentLocks.Lock(key) }

func (s *MemoryStore) LockMatch(key string) func() { return s.matchLocks.Lock(key) }

func (s *MemoryStore) LockParticipants(keys ...string) func() {
	return s.participantLocks.LockAll(keys...)
}

// Participants

func (s *MemoryStore) AddParticipant(p *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[p.Key]; ok {
		return ErrKeyConflict
	}
	email := strings.ToLower(p.Email)
	if _, ok := s.emails[email]; ok && email != "" {
		return ErrEmailConflict
	}
	s.participants[p.Key] = p
	if email != "" {
		s.emails[email] = p.Key
	}
	return nil
}

func (s *MemoryStore) Participant(key string) (*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[key]
	if !ok {
		return nil, ErrParticipantNotFound
	}
	return p, nil
}

func (s *MemoryStore) ParticipantByEmail(email string) (*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return nil, ErrParticipantNotFound
	}
	return s.participants[key], nil
}

// ListParticipants returns all non-ghost participants ordered by key.
func (s *MemoryStore) ListParticipants() []*models.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		if !p.Ghost {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Tournaments

func (s *MemoryStore) AddTournament(t *models.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tournaments[t.Key]; ok {
		return ErrKeyConflict
	}
	s.tournaments[t.Key] = t
	if _, ok := s.standings[t.Key]; !ok {
		s.standings[t.Key] = make(map[string]*models.Standing)
	}
	return nil
}

func (s *MemoryStore) Tournament(key string) (*models.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tournaments[key]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	return t, nil
}

// TournamentKeys lists every tournament key, sorted.
func (s *MemoryStore) TournamentKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.tournaments))
	for k := range s.tournaments {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DeleteTournament drops the tournament with its rounds, matches, standings and invitations.
func (s *MemoryStore) DeleteTournament(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tournaments[key]
	if !ok {
		return ErrTournamentNotFound
	}
	for _, r := range t.Rounds {
		for _, mk := range r.MatchKeys {
			delete(s.matches, mk)
		}
		delete(s.rounds, r.Key)
	}
	delete(s.tournaments, key)
	delete(s.standings, key)
	delete(s.invitations, key)
	return nil
}

// Rounds and matches

func (s *MemoryStore) AddRound(r *models.Round) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds[r.Key] = r
}

func (s *MemoryStore) Round(key string) (*models.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rounds[key]
	if !ok {
		return nil, ErrRoundNotFound
	}
	return r, nil
}

func (s *MemoryStore) AddMatch(m *models.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[m.Key] = m
}

func (s *MemoryStore) Match(key string) (*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[key]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return m, nil
}

// Matches resolves keys in order, skipping unknown ones.
func (s *MemoryStore) Matches(keys []string) []*models.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Match, 0, len(keys))
	for _, k := range keys {
		if m, ok := s.matches[k]; ok {
			out = append(out, m)
		}
	}
	return out
}

func (s *MemoryStore) MatchKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.matches))
	for k := range s.matches {
		out = append(out, k)
	}
	return out
}

// Standings

// AddStanding creates the tournament-scoped score record if absent and returns it.
func (s *MemoryStore) AddStanding(st *models.Standing) (*models.Standing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byParticipant, ok := s.standings[st.TournamentKey]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	if existing, ok := byParticipant[st.ParticipantKey]; ok {
		return existing, nil
	}
	byParticipant[st.ParticipantKey] = st
	return st, nil
}

func (s *MemoryStore) Standing(tournamentKey, participantKey string) (*models.Standing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byParticipant, ok := s.standings[tournamentKey]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	st, ok := byParticipant[participantKey]
	if !ok {
		return nil, ErrStandingNotFound
	}
	return st, nil
}

func (s *MemoryStore) Standings(tournamentKey string) []*models.Standing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Standing, 0, len(s.standings[tournamentKey]))
	for _, st := range s.standings[tournamentKey] {
		out = append(out, st)
	}
	return out
}

// Invitations

func (s *MemoryStore) PutInvitation(inv *models.Invitation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byParticipant, ok := s.invitations[inv.TournamentKey]
	if !ok {
		byParticipant = make(map[string]*models.Invitation)
		s.invitations[inv.TournamentKey] = byParticipant
	}
	byParticipant[inv.ParticipantKey] = inv
}

func (s *MemoryStore) Invitation(tournamentKey, participantKey string) (*models.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invitations[tournamentKey][participantKey]
	if !ok {
		return nil, ErrInvitationNotFound
	}
	return inv, nil
}

func (s *MemoryStore) Invitations(tournamentKey string) []*models.Invitation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Invitation, 0, len(s.invitations[tournamentKey]))
	for _, inv := range s.invitations[tournamentKey] {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParticipantKey < out[j].ParticipantKey })
	return out
}
