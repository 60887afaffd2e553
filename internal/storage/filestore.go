package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/singleflight"

	"github.com/claude/liftlog/internal/models"
)

// FileStore reads the LiftLog JSON export on every call so that a fresh
// export is picked up without a restart. Concurrent calls share one read.
// The returned export must be treated as read-only.
type FileStore struct {
	path  string
	log   *slog.Logger
	reads singleflight.Group
}

// NewFileStore returns a store over the export at path.
func NewFileStore(path string, log *slog.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// Path returns the export file location.
func (s *FileStore) Path() string { return s.path }

// LoadExport reads and decodes the export. A missing or unparsable file is
// logged and yields an empty export, never an error.
func (s *FileStore) LoadExport(_ context.Context) *models.Export {
	v, _, _ := s.reads.Do(s.path, func() (any, error) {
		return s.readExport(), nil
	})
	return v.(*models.Export)
}

func (s *FileStore) readExport() *models.Export {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Warn("data file not found, export your data from LiftLog first", "path", s.path)
		} else {
			s.log.Warn("reading data file failed", "path", s.path, "error", err)
		}
		return models.EmptyExport()
	}
	exp, err := ParseExport(data)
	if err != nil {
		s.log.Warn("parsing data file failed", "path", s.path, "error", err)
		return models.EmptyExport()
	}
	return exp
}

func (s *FileStore) LoadTrainings(ctx context.Context) ([]models.TrainingRecord, error) {
	return s.LoadExport(ctx).Trainings, nil
}

func (s *FileStore) Close() error { return nil }

// ParseExport decodes an export document. Absent arrays become empty.
func ParseExport(data []byte) (*models.Export, error) {
	var exp models.Export
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("decoding export: %w", err)
	}
	if exp.Trainings == nil {
		exp.Trainings = []models.TrainingRecord{}
	}
	if exp.HealthImports == nil {
		exp.HealthImports = []json.RawMessage{}
	}
	return &exp, nil
}
