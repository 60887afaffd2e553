package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/importer"
	"github.com/claude/liftlog/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("file", "", "LiftLog export (.json or .json.gz) or a directory of exports (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without writing to the store")
	force := flag.Bool("force", false, "import even when the export matches the last successful import")
	flag.Parse()

	_ = godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-import -config config.yaml -file export.json [-dry-run] [-force]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if _, err := os.Stat(*exportPath); err != nil {
		log.Error("export path does not exist", "path", *exportPath)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store storage.ImportStore
	if *dryRun {
		log.Info("DRY RUN mode: nothing will be written to the store")
	} else {
		store, err = storage.OpenImportStore(ctx, storage.Options{
			Driver:      cfg.Store.Driver,
			SQLitePath:  cfg.Store.SQLitePath,
			PostgresDSN: cfg.Store.Postgres.DSN(),
		})
		if err != nil {
			log.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		log.Info("store opened", "driver", cfg.Store.Driver)
	}

	// Run import
	imp := importer.New(store, log, *dryRun, *force)
	stats, err := imp.Import(ctx, *exportPath)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"trainings_received", stats.TrainingsReceived,
		"trainings_upserted", stats.TrainingsUpserted,
		"trainings_removed", stats.TrainingsRemoved,
		"lifting", stats.Lifting,
		"cardio", stats.Cardio,
		"with_health", stats.WithHealth,
	)
}
