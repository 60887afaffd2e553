package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/claude/liftlog/internal/models"
)

// PostgresStore keeps imported trainings in PostgreSQL.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// OpenPostgres migrates the database and creates a connection pool.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if err := RunPostgresMigrations(dsn); err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PostgresStore{Pool: pool}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.Pool.Close()
	return nil
}

func (s *PostgresStore) LoadTrainings(ctx context.Context) ([]models.TrainingRecord, error) {
	rows, err := s.Pool.Query(ctx, `SELECT raw_json FROM trainings ORDER BY position, date`)
	if err != nil {
		return nil, fmt.Errorf("querying trainings: %w", err)
	}
	defer rows.Close()

	out := []models.TrainingRecord{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning training: %w", err)
		}
		var t models.TrainingRecord
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("decoding training: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Import(ctx context.Context, exp *models.Export, opts ImportOptions) (*ImportResult, error) {
	return runImport(ctx, s, exp, opts)
}

// ImportLogs returns the most recent import logs, newest first.
func (s *PostgresStore) ImportLogs(ctx context.Context, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT id, created_at, source, file_hash, received, upserted, removed, status, error_message
		 FROM import_logs
		 ORDER BY created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	defer rows.Close()

	var result []ImportLog
	for rows.Next() {
		var l ImportLog
		if err := rows.Scan(&l.ID, &l.CreatedAt, &l.Source, &l.FileHash, &l.Received,
			&l.Upserted, &l.Removed, &l.Status, &l.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning import log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

func (s *PostgresStore) lastSuccessfulHash(ctx context.Context) (string, error) {
	var hash string
	err := s.Pool.QueryRow(ctx,
		`SELECT file_hash FROM import_logs WHERE status = $1 ORDER BY created_at DESC LIMIT 1`,
		ImportSuccess).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying last import: %w", err)
	}
	return hash, nil
}

func (s *PostgresStore) insertImportLog(ctx context.Context, l ImportLog) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO import_logs (id, source, file_hash, received, upserted, status, error_message)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		l.ID, l.Source, l.FileHash, l.Received, l.Upserted, l.Status, l.ErrorMessage)
	if err != nil {
		return fmt.Errorf("inserting import log: %w", err)
	}
	return nil
}

func (s *PostgresStore) updateImportLog(ctx context.Context, l ImportLog) error {
	_, err := s.Pool.Exec(ctx,
		`UPDATE import_logs SET status = $2, upserted = $3, removed = $4, error_message = $5 WHERE id = $1`,
		l.ID, l.Status, l.Upserted, l.Removed, l.ErrorMessage)
	if err != nil {
		return fmt.Errorf("updating import log %s: %w", l.ID, err)
	}
	return nil
}

func (s *PostgresStore) replaceTrainings(ctx context.Context, rows []TrainingRow) (int64, int64, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	ids := make([]string, 0, len(rows))
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(
			`INSERT INTO trainings (id, position, date, day, label, occurrence, raw_json)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)
			 ON CONFLICT (date, day, label, occurrence) DO UPDATE SET
			   position = EXCLUDED.position,
			   raw_json = EXCLUDED.raw_json,
			   imported_at = now()`,
			r.ID, r.Position, r.Date, r.Day, r.Label, r.Occurrence, json.RawMessage(r.RawJSON))
		ids = append(ids, r.ID.String())
	}
	batch.Queue(`DELETE FROM trainings WHERE id <> ALL($1::uuid[])`, ids)

	br := tx.SendBatch(ctx, batch)
	var upserted int64
	for _, r := range rows {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return 0, 0, fmt.Errorf("upserting training %s: %w", r.Date, err)
		}
		upserted += tag.RowsAffected()
	}
	tag, err := br.Exec()
	if err != nil {
		br.Close()
		return 0, 0, fmt.Errorf("deleting stale trainings: %w", err)
	}
	removed := tag.RowsAffected()
	if err := br.Close(); err != nil {
		return 0, 0, fmt.Errorf("closing batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("committing trainings: %w", err)
	}
	return upserted, removed, nil
}
