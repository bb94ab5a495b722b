package models

import "time"

type Match struct {
	Key           string       `json:"key" db:"match_key"`
	TournamentKey string       `json:"tournament_key" db:"tournament_key"`
	RoundKey      string       `json:"round_key" db:"round_key"`
	RoundNumber   int          `json:"round_number" db:"round_number"`
	State         GameState    `json:"state" db:"state"`
	FirstPlayer   string       `json:"first_player" db:"first_player"`
	SecondPlayer  string       `json:"second_player" db:"second_player"`
	Referee       string       `json:"referee,omitempty" db:"referee"`
	StartedAt     time.Time    `json:"started_at" db:"started_at"`
	Result        *MatchResult `json:"result,omitempty" db:"-"`
}

// MatchResult holds both self-reports and the final outcome. Result is set once.
type MatchResult struct {
	Key                string `json:"key" db:"result_key"`
	FirstPlayer        string `json:"first_player" db:"first_player"`
	SecondPlayer       string `json:"second_player" db:"second_player"`
	FirstPlayerResult  Result `json:"first_player_result,omitempty" db:"first_player_result"`
	SecondPlayerResult Result `json:"second_player_result,omitempty" db:"second_player_result"`
	Result             Result `json:"result,omitempty" db:"result"`
}

func (m *Match) Transition(to GameState) error {
	return transition("match", m.Key, &m.State, to)
}

func (m *Match) Involves(participantKey string) bool {
	return m.FirstPlayer == participantKey || m.SecondPlayer == participantKey
}

func (m *Match) Opponent(participantKey string) string {
	if m.FirstPlayer == participantKey {
		return m.SecondPlayer
	}
	return m.FirstPlayer
}

func (m *Match) Clone() *Match {
	c := *m
	if m.Result != nil {
		r := *m.Result
		c.Result = &r
	}
	return &c
}
