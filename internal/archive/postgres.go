package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the finished_games table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS finished_games (
    id           BIGSERIAL PRIMARY KEY,
    started_at   TIMESTAMPTZ NOT NULL,
    finished_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    outcome      TEXT NOT NULL,
    method       TEXT NOT NULL DEFAULT '',
    pgn          TEXT NOT NULL,
    final_fen    TEXT NOT NULL,
    move_count   INTEGER NOT NULL DEFAULT 0,
    engine_plays TEXT NOT NULL DEFAULT 'none',
    strength     INTEGER NOT NULL DEFAULT 0,
    grandmaster  BOOLEAN NOT NULL DEFAULT false
);
CREATE INDEX IF NOT EXISTS idx_finished_games_finished_at ON finished_games(finished_at DESC);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by a PostgreSQL database.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a [PostgresStore] over the given connection or
// pool. The caller is responsible for calling [PostgresStore.Migrate] to
// ensure the schema exists before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL against the database, creating the
// finished_games table and index if they do not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("archive: migrate: %w", err)
	}
	return nil
}

// Save inserts rec and fills in its generated ID and FinishedAt.
func (s *PostgresStore) Save(ctx context.Context, rec *GameRecord) error {
	if rec.PGN == "" {
		return errors.New("archive: record has no PGN")
	}

	const query = `
		INSERT INTO finished_games (
			started_at, outcome, method, pgn, final_fen,
			move_count, engine_plays, strength, grandmaster
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, finished_at`

	err := s.db.QueryRow(ctx, query,
		rec.StartedAt, rec.Outcome, rec.Method, rec.PGN, rec.FinalFEN,
		rec.MoveCount, rec.EnginePlays, rec.Strength, rec.Grandmaster,
	).Scan(&rec.ID, &rec.FinishedAt)
	if err != nil {
		return fmt.Errorf("archive: save: %w", err)
	}
	return nil
}

// Recent returns the most recently finished games, newest first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]GameRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	const query = `
		SELECT id, started_at, finished_at, outcome, method, pgn, final_fen,
		       move_count, engine_plays, strength, grandmaster
		FROM finished_games
		ORDER BY finished_at DESC
		LIMIT $1`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("archive: recent: %w", err)
	}
	defer rows.Close()

	var recs []GameRecord
	for rows.Next() {
		var rec GameRecord
		if err := rows.Scan(
			&rec.ID, &rec.StartedAt, &rec.FinishedAt, &rec.Outcome, &rec.Method,
			&rec.PGN, &rec.FinalFEN, &rec.MoveCount, &rec.EnginePlays,
			&rec.Strength, &rec.Grandmaster,
		); err != nil {
			return nil, fmt.Errorf("archive: recent scan: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: recent: %w", err)
	}
	return recs, nil
}
