package services

import (
	"context"

	"github.com/Dosada05/chess-tournament/models"
)

// Persister receives copies of entities after each in-memory change.
// repositories.SnapshotRepository satisfies it.
type Persister interface {
	SaveParticipant(ctx context.Context, p *models.Participant) error
	SaveTournament(ctx context.Context, t *models.Tournament, matches []*models.Match) error
	SaveMatch(ctx context.Context, m *models.Match) error
	SaveStanding(ctx context.Context, st *models.Standing) error
	SaveInvitation(ctx context.Context, inv *models.Invitation) error
	DeleteTournament(ctx context.Context, key string) error
}

type nopPersister struct{}

func (nopPersister) SaveParticipant(context.Context, *models.Participant) error { return nil }
func (nopPersister) SaveTournament(context.Context, *models.Tournament, []*models.Match) error {
	return nil
}
func (nopPersister) SaveMatch(context.Context, *models.Match) error           { return nil }
func (nopPersister) SaveStanding(context.Context, *models.Standing) error     { return nil }
func (nopPersister) SaveInvitation(context.Context, *models.Invitation) error { return nil }
func (nopPersister) DeleteTournament(context.Context, string) error           { return nil }
