package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

// TournamentSnapshot is everything persisted for one tournament.
type TournamentSnapshot struct {
	Tournament  *models.Tournament
	Matches     []*models.Match
	Standings   []*models.Standing
	Invitations []*models.Invitation
}

// SnapshotRepository writes the arena's state through to Postgres and reads it
// back on startup.
type SnapshotRepository interface {
	SaveParticipant(ctx context.Context, p *models.Participant) error
	SaveTournament(ctx context.Context, t *models.Tournament, matches []*models.Match) error
	SaveMatch(ctx context.Context, m *models.Match) error
	SaveStanding(ctx context.Context, st *models.Standing) error
	SaveInvitation(ctx context.Context, inv *models.Invitation) error
	DeleteTournament(ctx context.Context, key string) error
	LoadParticipants(ctx context.Context) ([]*models.Participant, error)
	LoadTournaments(ctx context.Context) ([]*TournamentSnapshot, error)
}

type postgresSnapshotRepository struct {
	db *sql.DB
}

func NewPostgresSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &postgresSnapshotRepository{db: db}
}

func (r *postgresSnapshotRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSnapshotRepository) SaveParticipant(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO participants (participant_key, email, first_name, last_name, score, ghost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (participant_key) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			score = GREATEST(participants.score, EXCLUDED.score)`
	_, err := r.db.ExecContext(ctx, query,
		p.Key, p.Email, p.FirstName, p.LastName, p.Score, p.Ghost, p.CreatedAt)
	return translatePQError(err)
}

// SaveTournament upserts the tournament row, its rounds and the given matches in one transaction.
func (r *postgresSnapshotRepository) SaveTournament(ctx context.Context, t *models.Tournament, matches []*models.Match) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tournament snapshot tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	if err = r.saveTournamentRows(ctx, tx, t); err != nil {
		return err
	}

	for _, m := range matches {
		if err = r.saveMatch(ctx, tx, m); err != nil {
			return err
		}
	}
	return nil
}

// Rows of an ENDED tournament or round are final, and a tournament never
// moves back to an earlier round.
const (
	upsertTournamentQuery = `
		INSERT INTO tournaments (
			tournament_key, name, state, registration_open, max_participants, start_date,
			participant_keys, referee_keys, ghost_key, current_round, winner_keys, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (tournament_key) DO UPDATE SET
			name = EXCLUDED.name,
			state = EXCLUDED.state,
			registration_open = EXCLUDED.registration_open,
			max_participants = EXCLUDED.max_participants,
			start_date = EXCLUDED.start_date,
			participant_keys = EXCLUDED.participant_keys,
			referee_keys = EXCLUDED.referee_keys,
			ghost_key = EXCLUDED.ghost_key,
			current_round = EXCLUDED.current_round,
			winner_keys = EXCLUDED.winner_keys
		WHERE tournaments.state <> 'ENDED'
			AND EXCLUDED.current_round >= tournaments.current_round`

	upsertRoundQuery = `
		INSERT INTO rounds (round_key, tournament_key, number, state)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (round_key) DO UPDATE SET state = EXCLUDED.state
		WHERE rounds.state <> 'ENDED'`
)

func (r *postgresSnapshotRepository) saveTournamentRows(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	exec = r.getExecutor(exec)
	if _, err := exec.ExecContext(ctx, upsertTournamentQuery,
		t.Key, t.Name, t.State, t.RegistrationOpen, t.MaxParticipants, t.StartDate,
		pq.Array(t.ParticipantKeys), pq.Array(t.RefereeKeys), nullString(t.GhostKey),
		t.CurrentRound, pq.Array(t.WinnerKeys), t.CreatedAt,
	); err != nil {
		return translatePQError(err)
	}
	for _, round := range t.OrderedRounds() {
		if _, err := exec.ExecContext(ctx, upsertRoundQuery,
			round.Key, round.TournamentKey, round.Number, round.State,
		); err != nil {
			return translatePQError(err)
		}
	}
	return nil
}

func (r *postgresSnapshotRepository) SaveMatch(ctx context.Context, m *models.Match) error {
	return r.saveMatch(ctx, nil, m)
}

func (r *postgresSnapshotRepository) saveMatch(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	var res models.MatchResult
	if m.Result != nil {
		res = *m.Result
	}
	query := `
		INSERT INTO matches (
			match_key, tournament_key, round_key, round_number, state, first_player, second_player,
			referee, started_at, result_key, first_player_result, second_player_result, result
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (match_key) DO UPDATE SET
			state = EXCLUDED.state,
			referee = EXCLUDED.referee,
			started_at = EXCLUDED.started_at,
			first_player_result = EXCLUDED.first_player_result,
			second_player_result = EXCLUDED.second_player_result,
			result = EXCLUDED.result
		WHERE matches.state <> 'ENDED'`
	_, err := r.getExecutor(exec).ExecContext(ctx, query,
		m.Key, m.TournamentKey, m.RoundKey, m.RoundNumber, m.State, m.FirstPlayer, m.SecondPlayer,
		nullString(m.Referee), m.StartedAt, nullString(res.Key),
		nullString(string(res.FirstPlayerResult)), nullString(string(res.SecondPlayerResult)),
		nullString(string(res.Result)),
	)
	return translatePQError(err)
}

func (r *postgresSnapshotRepository) SaveStanding(ctx context.Context, st *models.Standing) error {
	query := `
		INSERT INTO standings (tournament_key, participant_key, score, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tournament_key, participant_key) DO UPDATE SET
			score = GREATEST(standings.score, EXCLUDED.score),
			updated_at = GREATEST(standings.updated_at, EXCLUDED.updated_at)`
	_, err := r.db.ExecContext(ctx, query, st.TournamentKey, st.ParticipantKey, st.Score, st.UpdatedAt)
	return translatePQError(err)
}

func (r *postgresSnapshotRepository) SaveInvitation(ctx context.Context, inv *models.Invitation) error {
	query := `
		INSERT INTO invitations (tournament_key, participant_key, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tournament_key, participant_key) DO UPDATE SET
			status = EXCLUDED.status,
			expires_at = EXCLUDED.expires_at`
	_, err := r.db.ExecContext(ctx, query,
		inv.TournamentKey, inv.ParticipantKey, inv.Status, inv.ExpiresAt, inv.CreatedAt)
	return translatePQError(err)
}

func (r *postgresSnapshotRepository) DeleteTournament(ctx context.Context, key string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE tournament_key = $1`, key)
	if err != nil {
		return translatePQError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresSnapshotRepository) LoadParticipants(ctx context.Context) ([]*models.Participant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT participant_key, email, first_name, last_name, score, ghost, created_at
		FROM participants`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Participant
	for rows.Next() {
		p := &models.Participant{}
		if err := rows.Scan(&p.Key, &p.Email, &p.FirstName, &p.LastName, &p.Score, &p.Ghost, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const snapshotLoadConcurrency = 8

// LoadTournaments reads every tournament; each tournament's children are loaded concurrently.
func (r *postgresSnapshotRepository) LoadTournaments(ctx context.Context) ([]*TournamentSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT tournament_key, name, state, registration_open, max_participants, start_date,
			participant_keys, referee_keys, ghost_key, current_round, winner_keys, created_at
		FROM tournaments
		ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*TournamentSnapshot
	for rows.Next() {
		t := &models.Tournament{Rounds: make(map[int]*models.Round)}
		var ghost sql.NullString
		if err := rows.Scan(&t.Key, &t.Name, &t.State, &t.RegistrationOpen, &t.MaxParticipants, &t.StartDate,
			pq.Array(&t.ParticipantKeys), pq.Array(&t.RefereeKeys), &ghost, &t.CurrentRound,
			pq.Array(&t.WinnerKeys), &t.CreatedAt); err != nil {
			return nil, err
		}
		t.GhostKey = ghost.String
		snapshots = append(snapshots, &TournamentSnapshot{Tournament: t})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(snapshotLoadConcurrency)
	for _, snap := range snapshots {
		snap := snap
		g.Go(func() error {
			return r.loadChildren(gctx, snap)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *postgresSnapshotRepository) loadChildren(ctx context.Context, snap *TournamentSnapshot) error {
	t := snap.Tournament

	roundRows, err := r.db.QueryContext(ctx, `
		SELECT round_key, number, state FROM rounds WHERE tournament_key = $1 ORDER BY number`, t.Key)
	if err != nil {
		return fmt.Errorf("load rounds of %s: %w", t.Key, err)
	}
	byKey := make(map[string]*models.Round)
	for roundRows.Next() {
		round := &models.Round{TournamentKey: t.Key}
		if err := roundRows.Scan(&round.Key, &round.Number, &round.State); err != nil {
			roundRows.Close()
			return err
		}
		t.Rounds[round.Number] = round
		byKey[round.Key] = round
	}
	roundRows.Close()

	matchRows, err := r.db.QueryContext(ctx, `
		SELECT match_key, round_key, round_number, state, first_player, second_player, referee,
			started_at, result_key, first_player_result, second_player_result, result
		FROM matches WHERE tournament_key = $1 ORDER BY round_number, match_key`, t.Key)
	if err != nil {
		return fmt.Errorf("load matches of %s: %w", t.Key, err)
	}
	defer matchRows.Close()
	for matchRows.Next() {
		m := &models.Match{TournamentKey: t.Key}
		var referee, resultKey, firstRes, secondRes, final sql.NullString
		if err := matchRows.Scan(&m.Key, &m.RoundKey, &m.RoundNumber, &m.State, &m.FirstPlayer, &m.SecondPlayer,
			&referee, &m.StartedAt, &resultKey, &firstRes, &secondRes, &final); err != nil {
			return err
		}
		m.Referee = referee.String
		if resultKey.Valid {
			m.Result = &models.MatchResult{
				Key:                resultKey.String,
				FirstPlayer:        m.FirstPlayer,
				SecondPlayer:       m.SecondPlayer,
				FirstPlayerResult:  models.Result(firstRes.String),
				SecondPlayerResult: models.Result(secondRes.String),
				Result:             models.Result(final.String),
			}
		}
		if round, ok := byKey[m.RoundKey]; ok {
			round.MatchKeys = append(round.MatchKeys, m.Key)
		}
		snap.Matches = append(snap.Matches, m)
	}
	if err := matchRows.Err(); err != nil {
		return err
	}

	standingRows, err := r.db.QueryContext(ctx, `
		SELECT participant_key, score, updated_at FROM standings WHERE tournament_key = $1`, t.Key)
	if err != nil {
		return fmt.Errorf("load standings of %s: %w", t.Key, err)
	}
	defer standingRows.Close()
	for standingRows.Next() {
		st := &models.Standing{TournamentKey: t.Key}
		if err := standingRows.Scan(&st.ParticipantKey, &st.Score, &st.UpdatedAt); err != nil {
			return err
		}
		snap.Standings = append(snap.Standings, st)
	}
	if err := standingRows.Err(); err != nil {
		return err
	}

	invRows, err := r.db.QueryContext(ctx, `
		SELECT participant_key, status, expires_at, created_at FROM invitations WHERE tournament_key = $1`, t.Key)
	if err != nil {
		return fmt.Errorf("load invitations of %s: %w", t.Key, err)
	}
	defer invRows.Close()
	for invRows.Next() {
		inv := &models.Invitation{TournamentKey: t.Key}
		if err := invRows.Scan(&inv.ParticipantKey, &inv.Status, &inv.ExpiresAt, &inv.CreatedAt); err != nil {
			return err
		}
		snap.Invitations = append(snap.Invitations, inv)
	}
	return invRows.Err()
}

// Restore loads the snapshots into the arena.
func Restore(store *MemoryStore, participants []*models.Participant, snapshots []*TournamentSnapshot) error {
	for _, p := range participants {
		if err := store.AddParticipant(p); err != nil {
			return fmt.Errorf("restore participant %s: %w", p.Key, err)
		}
	}
	for _, snap := range snapshots {
		if err := store.AddTournament(snap.Tournament); err != nil {
			return fmt.Errorf("restore tournament %s: %w", snap.Tournament.Key, err)
		}
		for _, round := range snap.Tournament.Rounds {
			store.AddRound(round)
		}
		for _, m := range snap.Matches {
			store.AddMatch(m)
		}
		for _, st := range snap.Standings {
			if _, err := store.AddStanding(st); err != nil {
				return fmt.Errorf("restore standing %s/%s: %w", st.TournamentKey, st.ParticipantKey, err)
			}
		}
		for _, inv := range snap.Invitations {
			store.PutInvitation(inv)
		}
	}
	return nil
}
