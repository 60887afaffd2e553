package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/claude/liftlog/internal/models"
)

// Import log statuses.
const (
	ImportRunning = "running"
	ImportSuccess = "success"
	ImportError   = "error"
	ImportSkipped = "skipped"
)

// ImportLog records one import attempt.
type ImportLog struct {
	ID           uuid.UUID `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Source       string    `json:"source"`
	FileHash     string    `json:"file_hash"`
	Received     int       `json:"received"`
	Upserted     int64     `json:"upserted"`
	Removed      int64     `json:"removed"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"error_message"`
}

// ImportOptions describes where an export came from.
type ImportOptions struct {
	Source string
	// Hash identifies the export content. An import whose hash equals the
	// latest successful import is skipped unless Force is set.
	Hash  string
	Force bool
}

// ImportResult summarizes an import.
type ImportResult struct {
	LogID    uuid.UUID `json:"log_id"`
	Received int       `json:"received"`
	Upserted int64     `json:"upserted"`
	Removed  int64     `json:"removed"`
	Skipped  bool      `json:"skipped"`
}

// TrainingRow is a training ready for a database store. Occurrence counts
// earlier records of the same export with the same date, day and label, so
// repeated sessions keep separate rows.
type TrainingRow struct {
	ID         uuid.UUID
	Position   int
	Date       string
	Day        string
	Label      string
	Occurrence int
	RawJSON    []byte
}

// trainingNamespace seeds the deterministic training IDs.
var trainingNamespace = uuid.MustParse("6f1c2a8e-4d3b-5e7f-9a0b-1c2d3e4f5a6b")

// TrainingRows converts an export into rows keyed by (date, day, label,
// occurrence). Positions follow export order.
func TrainingRows(exp *models.Export) ([]TrainingRow, error) {
	rows := make([]TrainingRow, 0, len(exp.Trainings))
	seen := make(map[string]int, len(exp.Trainings))
	for i := range exp.Trainings {
		t := &exp.Trainings[i]
		raw, err := t.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encoding training %d (%s): %w", i, t.Date, err)
		}
		label := t.Label()
		key := t.Date + "\x00" + t.Day + "\x00" + label
		occ := seen[key]
		seen[key]++
		if occ > 0 {
			key += "\x00" + strconv.Itoa(occ)
		}
		rows = append(rows, TrainingRow{
			ID:         uuid.NewSHA1(trainingNamespace, []byte(key)),
			Position:   i,
			Date:       t.Date,
			Day:        t.Day,
			Label:      label,
			Occurrence: occ,
			RawJSON:    raw,
		})
	}
	return rows, nil
}

// importBackend is the part of a database store the import flow needs.
type importBackend interface {
	lastSuccessfulHash(ctx context.Context) (string, error)
	insertImportLog(ctx context.Context, l ImportLog) error
	updateImportLog(ctx context.Context, l ImportLog) error
	// replaceTrainings upserts rows and deletes every stored training not
	// among them, in one transaction.
	replaceTrainings(ctx context.Context, rows []TrainingRow) (upserted, removed int64, err error)
}

// runImport writes a running import log, replaces the stored collection with
// the export and then marks the log success or error.
func runImport(ctx context.Context, b importBackend, exp *models.Export, opts ImportOptions) (*ImportResult, error) {
	res := &ImportResult{LogID: uuid.New(), Received: len(exp.Trainings)}
	l := ImportLog{
		ID:       res.LogID,
		Source:   opts.Source,
		FileHash: opts.Hash,
		Received: res.Received,
		Status:   ImportRunning,
	}

	if opts.Hash != "" && !opts.Force {
		last, err := b.lastSuccessfulHash(ctx)
		if err != nil {
			return nil, err
		}
		if last == opts.Hash {
			l.Status = ImportSkipped
			if err := b.insertImportLog(ctx, l); err != nil {
				return nil, err
			}
			res.Skipped = true
			return res, nil
		}
	}

	if err := b.insertImportLog(ctx, l); err != nil {
		return nil, err
	}

	rows, err := TrainingRows(exp)
	if err == nil {
		l.Upserted, l.Removed, err = b.replaceTrainings(ctx, rows)
	}
	if err != nil {
		msg := err.Error()
		l.Status = ImportError
		l.ErrorMessage = &msg
		if uerr := b.updateImportLog(ctx, l); uerr != nil {
			return nil, fmt.Errorf("%w (and updating import log: %v)", err, uerr)
		}
		return nil, err
	}

	l.Status = ImportSuccess
	if err := b.updateImportLog(ctx, l); err != nil {
		return nil, err
	}
	res.Upserted = l.Upserted
	res.Removed = l.Removed
	return res, nil
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes is HashFile for content already in memory.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
