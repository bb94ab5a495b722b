package models

import "time"

// Standing is a participant's score within one tournament.
type Standing struct {
	TournamentKey  string    `json:"tournament_key" db:"tournament_key"`
	ParticipantKey string    `json:"participant_key" db:"participant_key"`
	Score          float64   `json:"score" db:"score"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type LeaderboardEntry struct {
	ParticipantKey string  `json:"participant_key"`
	Name           string  `json:"name"`
	Score          float64 `json:"score"`
}
