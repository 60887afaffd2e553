package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/liftlog/internal/exportfile"
	"github.com/claude/liftlog/internal/models"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	TrainingsSent     int
	TrainingsUpserted int64
	TrainingsRemoved  int64
	ServerSkipped     int
}

// Uploader sends LiftLog exports found at a path to the LiftLog server.
type Uploader struct {
	client *Client
	state  *StateDB
	server string
	dryRun bool
	force  bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. client may be nil in dry-run mode. server keys
// the upload state so one machine can feed several servers.
func New(client *Client, state *StateDB, server string, dryRun, force bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		server: server,
		dryRun: dryRun,
		force:  force,
		log:    log,
	}
}

// Run uploads the export at path, or every *.json and *.json.gz export in
// it when path is a directory.
func (u *Uploader) Run(ctx context.Context, path string) (*Stats, error) {
	files, err := exportfile.List(path)
	if err != nil {
		return &u.stats, err
	}
	if len(files) == 0 {
		return &u.stats, fmt.Errorf("no export files found in %s", path)
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		u.stats.FilesTotal++
		if err := u.uploadFile(ctx, f); err != nil {
			u.log.Warn("upload failed", "file", f, "error", err)
			u.stats.FilesErrored++
		}
	}

	if u.stats.FilesErrored > 0 && u.stats.FilesUploaded == 0 && u.stats.FilesSkipped == 0 {
		return &u.stats, fmt.Errorf("all %d files failed", u.stats.FilesErrored)
	}
	return &u.stats, nil
}

func (u *Uploader) uploadFile(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	hash, err := HashFile(abs)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}

	if !u.force {
		uploaded, err := u.state.IsUploaded(u.server, abs, info.Size(), hash)
		if err != nil {
			return fmt.Errorf("state check: %w", err)
		}
		if uploaded {
			u.log.Debug("already uploaded", "file", abs)
			u.stats.FilesSkipped++
			return nil
		}
	}

	raw, err := exportfile.Read(abs)
	if err != nil {
		return err
	}
	var exp models.Export
	if err := json.Unmarshal(raw, &exp); err != nil {
		return fmt.Errorf("parsing %s: %w", abs, err)
	}

	if u.dryRun {
		u.log.Info("dry run: would upload", "file", abs, "trainings", len(exp.Trainings))
		u.stats.TrainingsSent += len(exp.Trainings)
		u.stats.FilesUploaded++
		return nil
	}

	body, err := Gzip(raw)
	if err != nil {
		return err
	}
	result, err := u.client.SendExport(ctx, body, u.force)
	if err != nil {
		return err
	}

	u.stats.FilesUploaded++
	u.stats.TrainingsSent += result.Received
	u.stats.TrainingsUpserted += result.Upserted
	u.stats.TrainingsRemoved += result.Removed
	if result.Skipped {
		u.stats.ServerSkipped++
	}
	u.log.Info("uploaded", "file", abs, "received", result.Received, "upserted", result.Upserted, "removed", result.Removed, "skipped", result.Skipped)

	if err := u.state.MarkUploaded(u.server, abs, info.Size(), hash); err != nil {
		u.log.Warn("failed to record upload", "file", abs, "error", err)
	}
	return nil
}
