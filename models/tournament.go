package models

import (
	"sort"
	"time"
)

// Tournament owns its rounds. Rounds is keyed by the 1-based round number.
type Tournament struct {
	Key              string         `json:"key" db:"tournament_key"`
	Name             string         `json:"name" db:"name"`
	State            GameState      `json:"state" db:"state"`
	RegistrationOpen bool           `json:"registration_open" db:"registration_open"`
	MaxParticipants  int            `json:"max_participants" db:"max_participants"`
	StartDate        time.Time      `json:"start_date" db:"start_date"`
	ParticipantKeys  []string       `json:"participant_keys" db:"participant_keys"`
	RefereeKeys      []string       `json:"referee_keys,omitempty" db:"referee_keys"`
	GhostKey         string         `json:"-" db:"ghost_key"`
	Rounds           map[int]*Round `json:"rounds,omitempty" db:"-"`
	CurrentRound     int            `json:"current_round,omitempty" db:"current_round"`
	WinnerKeys       []string       `json:"winner_keys,omitempty" db:"winner_keys"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
}

func (t *Tournament) Transition(to GameState) error {
	return transition("tournament", t.Key, &t.State, to)
}

func (t *Tournament) HasParticipant(key string) bool {
	for _, k := range t.ParticipantKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (t *Tournament) HasReferee(key string) bool {
	for _, k := range t.RefereeKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (t *Tournament) Round(number int) (*Round, bool) {
	r, ok := t.Rounds[number]
	return r, ok
}

// Current returns the current round, or nil before the tournament starts.
func (t *Tournament) Current() *Round {
	if t.CurrentRound == 0 {
		return nil
	}
	return t.Rounds[t.CurrentRound]
}

// OrderedRounds returns rounds sorted by number.
func (t *Tournament) OrderedRounds() []*Round {
	out := make([]*Round, 0, len(t.Rounds))
	for _, r := range t.Rounds {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Clone copies the tournament and its rounds. Matches are referenced by key only.
func (t *Tournament) Clone() *Tournament {
	c := *t
	c.ParticipantKeys = append([]string(nil), t.ParticipantKeys...)
	c.RefereeKeys = append([]string(nil), t.RefereeKeys...)
	c.WinnerKeys = append([]string(nil), t.WinnerKeys...)
	if t.Rounds != nil {
		c.Rounds = make(map[int]*Round, len(t.Rounds))
		for n, r := range t.Rounds {
			c.Rounds[n] = r.Clone()
		}
	}
	return &c
}
