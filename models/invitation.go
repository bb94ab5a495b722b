package models

import "time"

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationExpired  InvitationStatus = "EXPIRED"
)

type Invitation struct {
	TournamentKey  string           `json:"tournament_key" db:"tournament_key"`
	ParticipantKey string           `json:"participant_key" db:"participant_key"`
	Status         InvitationStatus `json:"status" db:"status"`
	ExpiresAt      time.Time        `json:"expires_at" db:"expires_at"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
}

func (i *Invitation) Expired(now time.Time) bool {
	return i.Status == InvitationExpired || (i.Status == InvitationPending && !now.Before(i.ExpiresAt))
}

// ParticipantListing is a tournament participant with their invitation status.
type ParticipantListing struct {
	Participant *Participant     `json:"participant"`
	Status      InvitationStatus `json:"status"`
}
