package repositories

import (
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Participants(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.AddParticipant(&models.Participant{Key: "p1", Email: "A@example.com"}))
	require.NoError(t, s.AddParticipant(models.NewGhost("g1", "t1")))

	assert.ErrorIs(t, s.AddParticipant(&models.Participant{Key: "p1"}), ErrKeyConflict)
	assert.ErrorIs(t, s.AddParticipant(&models.Participant{Key: "p2", Email: "a@example.com"}), ErrEmailConflict)

	p, err := s.ParticipantByEmail("a@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.Key)

	_, err = s.Participant("missing")
	assert.ErrorIs(t, err, ErrParticipantNotFound)

	list := s.ListParticipants()
	require.Len(t, list, 1)
	assert.Equal(t, "p1", list[0].Key)
}

func TestMemoryStore_StandingsRequireTournament(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.AddStanding(&models.Standing{TournamentKey: "t1", ParticipantKey: "p1"})
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	require.NoError(t, s.AddTournament(&models.Tournament{Key: "t1"}))
	first, err := s.AddStanding(&models.Standing{TournamentKey: "t1", ParticipantKey: "p1"})
	require.NoError(t, err)
	first.Score = 2

	again, err := s.AddStanding(&models.Standing{TournamentKey: "t1", ParticipantKey: "p1"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, again.Score)

	_, err = s.Standing("t1", "p2")
	assert.ErrorIs(t, err, ErrStandingNotFound)
}

func TestMemoryStore_DeleteTournamentDropsChildren(t *testing.T) {
	s := NewMemoryStore()
	round := &models.Round{Key: "r1", TournamentKey: "t1", Number: 1, MatchKeys: []string{"m1"}}
	require.NoError(t, s.AddTournament(&models.Tournament{Key: "t1", Rounds: map[int]*models.Round{1: round}}))
	s.AddRound(round)
	s.AddMatch(&models.Match{Key: "m1", TournamentKey: "t1"})
	s.PutInvitation(&models.Invitation{TournamentKey: "t1", ParticipantKey: "p1"})

	require.NoError(t, s.DeleteTournament("t1"))
	_, err := s.Match("m1")
	assert.ErrorIs(t, err, ErrMatchNotFound)
	_, err = s.Round("r1")
	assert.ErrorIs(t, err, ErrRoundNotFound)
	assert.Empty(t, s.Invitations("t1"))
	assert.ErrorIs(t, s.DeleteTournament("t1"), ErrTournamentNotFound)
}

func TestKeyedMutex_SameKeyExcludes(t *testing.T) {
	k := newKeyedMutex()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("m1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestKeyedMutex_DifferentKeysDoNotContend(t *testing.T) {
	k := newKeyedMutex()
	unlock := k.Lock("a")
	defer unlock()

	done := make(chan struct{})
	go func() {
		release := k.Lock("b")
		release()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestKeyedMutex_LockAllOrderIndependent(t *testing.T) {
	k := newKeyedMutex()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			k.LockAll("x", "y")()
		}()
		go func() {
			defer wg.Done()
			k.LockAll("y", "x", "y")()
		}()
	}
	wg.Wait()
}

func TestRestore(t *testing.T) {
	round := &models.Round{Key: "r1", TournamentKey: "t1", Number: 1, State: models.StateActive, MatchKeys: []string{"m1"}}
	tour := &models.Tournament{
		Key:             "t1",
		Name:            "Autumn Open",
		State:           models.StateActive,
		ParticipantKeys: []string{"p1", "p2"},
		Rounds:          map[int]*models.Round{1: round},
		CurrentRound:    1,
	}
	snap := &TournamentSnapshot{
		Tournament: tour,
		Matches: []*models.Match{{
			Key: "m1", TournamentKey: "t1", RoundKey: "r1", RoundNumber: 1, State: models.StateActive,
			FirstPlayer: "p1", SecondPlayer: "p2",
		}},
		Standings: []*models.Standing{
			{TournamentKey: "t1", ParticipantKey: "p1", Score: 1},
			{TournamentKey: "t1", ParticipantKey: "p2"},
		},
		Invitations: []*models.Invitation{{TournamentKey: "t1", ParticipantKey: "p3", Status: models.InvitationPending}},
	}
	participants := []*models.Participant{
		{Key: "p1", Email: "p1@example.com"},
		{Key: "p2", Email: "p2@example.com"},
		{Key: "p3", Email: "p3@example.com"},
	}

	s := NewMemoryStore()
	require.NoError(t, Restore(s, participants, []*TournamentSnapshot{snap}))

	got, err := s.Tournament("t1")
	require.NoError(t, err)
	assert.Equal(t, "Autumn Open", got.Name)
	r, err := s.Round("r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, r.MatchKeys)
	m, err := s.Match("m1")
	require.NoError(t, err)
	assert.Equal(t, "p2", m.SecondPlayer)
	st, err := s.Standing("t1", "p1")
	require.NoError(t, err)
	assert.Equal(t, float64(1), st.Score)
	inv, err := s.Invitation("t1", "p3")
	require.NoError(t, err)
	assert.Equal(t, models.InvitationPending, inv.Status)

	err = Restore(s, nil, []*TournamentSnapshot{snap})
	assert.Error(t, err)
}

func TestLookupsReturnStoredPointers(t *testing.T) {
	s := NewMemoryStore()
	p := &models.Participant{Key: "p1", Email: "p1@example.com"}
	require.NoError(t, s.AddParticipant(p))
	m := &models.Match{Key: "m1", TournamentKey: "t1", State: models.StateActive}
	s.AddMatch(m)

	gotP, err := s.Participant("p1")
	require.NoError(t, err)
	assert.Same(t, p, gotP)
	gotM, err := s.Match("m1")
	require.NoError(t, err)
	assert.Same(t, m, gotM)

	unlock := s.LockMatch("m1")
	gotM.State = models.StateEnded
	unlock()
	again, err := s.Match("m1")
	require.NoError(t, err)
	assert.Equal(t, models.StateEnded, again.State)
}
