package services

import (
	"context"
	"time"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/repositories"
	"go.uber.org/zap"
)

// Archiver stores the final standings of a finished tournament.
type Archiver interface {
	ArchiveStandings(ctx context.Context, t *models.Tournament, standings []models.LeaderboardEntry) error
}

// Collaborators bundles the dependencies shared by the services. Store is
// required and must be the same arena for every service; the other zero values
// fall back to no-op implementations.
type Collaborators struct {
	Store     *repositories.MemoryStore
	Notifier  Notifier
	Mailer    Mailer
	Persister Persister
	Archiver  Archiver
	Keys      KeyGenerator
	Logger    *zap.Logger
	Clock     func() time.Time
}

func (c Collaborators) withDefaults() Collaborators {
	if c.Store == nil {
		panic(ErrMissingStore)
	}
	if c.Notifier == nil {
		c.Notifier = nopNotifier{}
	}
	if c.Mailer == nil {
		c.Mailer = NopMailer{}
	}
	if c.Persister == nil {
		c.Persister = nopPersister{}
	}
	if c.Keys == nil {
		c.Keys = UUIDKeyGenerator{}
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Clock == nil {
		c.Clock = func() time.Time { return time.Now().UTC() }
	}
	return c
}

func (c Collaborators) sendMail(ctx context.Context, p *models.Participant, t *models.Tournament, kind TemplateKind) {
	if err := c.Mailer.Notify(ctx, p, t, kind); err != nil {
		c.Logger.Warn("email notification failed",
			zap.String("tournament_key", t.Key),
			zap.String("participant_key", p.Key),
			zap.String("template", string(kind)),
			zap.Error(err))
	}
}

func (c Collaborators) persistMatches(ctx context.Context, matches ...*models.Match) {
	for _, m := range matches {
		if err := c.Persister.SaveMatch(ctx, m); err != nil {
			c.Logger.Error("persist match", zap.String("match_key", m.Key), zap.Error(err))
		}
	}
}

func (c Collaborators) persistTournament(ctx context.Context, t *models.Tournament, matches []*models.Match) {
	if err := c.Persister.SaveTournament(ctx, t, matches); err != nil {
		c.Logger.Error("persist tournament", zap.String("tournament_key", t.Key), zap.Error(err))
	}
}
