package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleReferee Role = "referee"
	RolePlayer  Role = "player"
)

// Participant is a player identity. Score is the global score across tournaments.
type Participant struct {
	Key       string    `json:"key"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Score     float64   `json:"score"`
	Ghost     bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Participant) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

const ghostEmailPrefix = "GHOST_EMAIL_"

// NewGhost builds the synthetic bye opponent for a tournament.
func NewGhost(key, tournamentKey string) *Participant {
	return &Participant{
		Key:       key,
		Email:     ghostEmailPrefix + tournamentKey,
		FirstName: "Bye",
		Ghost:     true,
		CreatedAt: time.Now().UTC(),
	}
}
