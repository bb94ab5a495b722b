package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/chess-tournament/models"
	"go.uber.org/zap"
)

// StandingsKey is the object key of a tournament's final standings.
func StandingsKey(tournamentKey string) string {
	return fmt.Sprintf("tournaments/%s/standings.json", tournamentKey)
}

type StandingsDocument struct {
	TournamentKey string                    `json:"tournament_key"`
	Name          string                    `json:"name"`
	Rounds        int                       `json:"rounds"`
	WinnerKeys    []string                  `json:"winner_keys"`
	Standings     []models.LeaderboardEntry `json:"standings"`
	ArchivedAt    time.Time                 `json:"archived_at"`
}

// ResultsArchiver uploads final standings as JSON.
type ResultsArchiver struct {
	uploader FileUploader
	logger   *zap.Logger
	now      func() time.Time
}

func NewResultsArchiver(uploader FileUploader, logger *zap.Logger) *ResultsArchiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultsArchiver{uploader: uploader, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

func (a *ResultsArchiver) ArchiveStandings(ctx context.Context, t *models.Tournament, standings []models.LeaderboardEntry) error {
	doc := StandingsDocument{
		TournamentKey: t.Key,
		Name:          t.Name,
		Rounds:        len(t.Rounds),
		WinnerKeys:    t.WinnerKeys,
		Standings:     standings,
		ArchivedAt:    a.now(),
	}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode standings for %s: %w", t.Key, err)
	}

	res, err := a.uploader.Upload(ctx, StandingsKey(t.Key), "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	a.logger.Info("standings archived",
		zap.String("tournament_key", t.Key),
		zap.String("object_key", res.Key),
		zap.String("location", res.Location))
	return nil
}
