package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/claude/liftlog/internal/models"
)

// SQLiteStore keeps imported trainings in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite migrates and opens (or creates) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}
	if err := RunSQLiteMigrations(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, p := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadTrainings returns every stored training in export order.
func (s *SQLiteStore) LoadTrainings(ctx context.Context) ([]models.TrainingRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT raw_json FROM trainings ORDER BY position, date`)
	if err != nil {
		return nil, fmt.Errorf("querying trainings: %w", err)
	}
	defer rows.Close()

	out := []models.TrainingRecord{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning training: %w", err)
		}
		var t models.TrainingRecord
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, fmt.Errorf("decoding training: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Import replaces the stored trainings with those of exp. See ImportOptions
// for skipping.
func (s *SQLiteStore) Import(ctx context.Context, exp *models.Export, opts ImportOptions) (*ImportResult, error) {
	return runImport(ctx, s, exp, opts)
}

// ImportLogs returns the most recent import logs, newest first.
func (s *SQLiteStore) ImportLogs(ctx context.Context, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source, file_hash, received, upserted, removed, status, error_message
		 FROM import_logs
		 ORDER BY rowid DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	defer rows.Close()

	var result []ImportLog
	for rows.Next() {
		var (
			l       ImportLog
			id      string
			created string
		)
		if err := rows.Scan(&id, &created, &l.Source, &l.FileHash, &l.Received, &l.Upserted, &l.Removed, &l.Status, &l.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning import log: %w", err)
		}
		if err := l.ID.UnmarshalText([]byte(id)); err != nil {
			return nil, fmt.Errorf("parsing import log id %q: %w", id, err)
		}
		l.CreatedAt, _ = time.Parse(time.RFC3339, created)
		result = append(result, l)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) lastSuccessfulHash(ctx context.Context) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT file_hash FROM import_logs WHERE status = ? ORDER BY rowid DESC LIMIT 1`,
		ImportSuccess).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying last import: %w", err)
	}
	return hash, nil
}

func (s *SQLiteStore) insertImportLog(ctx context.Context, l ImportLog) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO import_logs (id, source, file_hash, received, upserted, status, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID.String(), l.Source, l.FileHash, l.Received, l.Upserted, l.Status, l.ErrorMessage)
	if err != nil {
		return fmt.Errorf("inserting import log: %w", err)
	}
	return nil
}

func (s *SQLiteStore) updateImportLog(ctx context.Context, l ImportLog) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE import_logs SET status = ?, upserted = ?, removed = ?, error_message = ? WHERE id = ?`,
		l.Status, l.Upserted, l.Removed, l.ErrorMessage, l.ID.String())
	if err != nil {
		return fmt.Errorf("updating import log %s: %w", l.ID, err)
	}
	return nil
}

func (s *SQLiteStore) replaceTrainings(ctx context.Context, rows []TrainingRow) (int64, int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO trainings (id, position, date, day, label, occurrence, raw_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (date, day, label, occurrence) DO UPDATE SET
		   position = excluded.position,
		   raw_json = excluded.raw_json,
		   imported_at = strftime('%Y-%m-%dT%H:%M:%SZ','now')`)
	if err != nil {
		return 0, 0, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	keep := make(map[string]struct{}, len(rows))
	var upserted int64
	for _, r := range rows {
		res, err := stmt.ExecContext(ctx, r.ID.String(), r.Position, r.Date, r.Day, r.Label, r.Occurrence, string(r.RawJSON))
		if err != nil {
			return 0, 0, fmt.Errorf("upserting training %s: %w", r.Date, err)
		}
		affected, _ := res.RowsAffected()
		upserted += affected
		keep[r.ID.String()] = struct{}{}
	}

	stale, err := staleTrainingIDs(ctx, tx, keep)
	if err != nil {
		return 0, 0, err
	}
	var removed int64
	for _, id := range stale {
		res, err := tx.ExecContext(ctx, `DELETE FROM trainings WHERE id = ?`, id)
		if err != nil {
			return 0, 0, fmt.Errorf("deleting training %s: %w", id, err)
		}
		affected, _ := res.RowsAffected()
		removed += affected
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("committing trainings: %w", err)
	}
	return upserted, removed, nil
}

// staleTrainingIDs lists stored training ids missing from keep. The rows are
// drained before returning because the store runs on a single connection.
func staleTrainingIDs(ctx context.Context, tx *sql.Tx, keep map[string]struct{}) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM trainings`)
	if err != nil {
		return nil, fmt.Errorf("listing trainings: %w", err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning training id: %w", err)
		}
		if _, ok := keep[id]; !ok {
			stale = append(stale, id)
		}
	}
	return stale, rows.Err()
}
