package importer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/claude/liftlog/internal/exportfile"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	TrainingsReceived int
	TrainingsUpserted int64
	TrainingsRemoved  int64
	Lifting           int
	Cardio            int
	WithHealth        int
}

// Importer reads LiftLog exports and upserts them into a database store.
type Importer struct {
	store  storage.ImportStore
	log    *slog.Logger
	dryRun bool
	force  bool
	stats  Stats
}

// New creates a new Importer. store may be nil in dry-run mode.
func New(store storage.ImportStore, log *slog.Logger, dryRun, force bool) *Importer {
	return &Importer{store: store, log: log, dryRun: dryRun, force: force}
}

// Import processes the export at path. When path is a directory, every
// *.json and *.json.gz file in it is imported in name order. Each export is a
// full snapshot, so the store ends up holding the last file's trainings.
func (imp *Importer) Import(ctx context.Context, path string) (*Stats, error) {
	files, err := exportfile.List(path)
	if err != nil {
		return &imp.stats, err
	}
	if len(files) == 0 {
		return &imp.stats, fmt.Errorf("no export files found in %s", path)
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &imp.stats, err
		}
		if err := imp.importFile(ctx, f); err != nil {
			imp.stats.FilesErrored++
			imp.log.Warn("import failed", "file", f, "error", err)
			if len(files) == 1 {
				return &imp.stats, err
			}
		}
	}
	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, path string) error {
	data, err := exportfile.Read(path)
	if err != nil {
		return err
	}
	exp, err := storage.ParseExport(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	imp.count(exp)

	if imp.dryRun {
		imp.stats.FilesProcessed++
		imp.log.Info("parsed export", "file", path, "trainings", len(exp.Trainings))
		return nil
	}

	res, err := imp.store.Import(ctx, exp, storage.ImportOptions{
		Source: filepath.Base(path),
		Hash:   storage.HashBytes(data),
		Force:  imp.force,
	})
	if err != nil {
		return err
	}
	if res.Skipped {
		imp.stats.FilesSkipped++
		imp.log.Info("export unchanged since last import, skipping", "file", path)
		return nil
	}
	imp.stats.FilesProcessed++
	imp.stats.TrainingsUpserted += res.Upserted
	imp.stats.TrainingsRemoved += res.Removed
	imp.log.Info("imported export", "file", path, "trainings", res.Received, "upserted", res.Upserted, "removed", res.Removed, "import_id", res.LogID)
	return nil
}

func (imp *Importer) count(exp *models.Export) {
	imp.stats.TrainingsReceived += len(exp.Trainings)
	for i := range exp.Trainings {
		t := &exp.Trainings[i]
		if t.IsCardio {
			imp.stats.Cardio++
		} else {
			imp.stats.Lifting++
		}
		if t.Health != nil {
			imp.stats.WithHealth++
		}
	}
}
