package models

type Round struct {
	Key           string    `json:"key" db:"round_key"`
	TournamentKey string    `json:"tournament_key" db:"tournament_key"`
	Number        int       `json:"number" db:"number"`
	State         GameState `json:"state" db:"state"`
	MatchKeys     []string  `json:"match_keys" db:"-"`
}

func (r *Round) Transition(to GameState) error {
	return transition("round", r.Key, &r.State, to)
}

func (r *Round) Clone() *Round {
	c := *r
	c.MatchKeys = append([]string(nil), r.MatchKeys...)
	return &c
}
