package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/claude/liftlog/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "LiftLog server URL (e.g. https://liftlog.tail1234.ts.net)")
	exportPath := flag.String("file", "", "LiftLog export (.json or .json.gz) or a directory of exports")
	apiKey := flag.String("api-key", "", "server API key (default $LIFTLOG_AUTH_API_KEY)")
	dryRun := flag.Bool("dry-run", false, "parse exports but don't send them")
	force := flag.Bool("force", false, "send exports even when already uploaded")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-upload", Version)
		return
	}

	_ = godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-upload -server <URL> -file <export or dir> [-api-key KEY] [-dry-run] [-force]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
		os.Exit(1)
	}
	*serverURL = strings.TrimRight(*serverURL, "/")

	key := *apiKey
	if key == "" {
		key = os.Getenv("LIFTLOG_AUTH_API_KEY")
	}
	if key == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -api-key or LIFTLOG_AUTH_API_KEY is required\n")
		os.Exit(1)
	}

	// Open state database
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	state, err := upload.OpenStateDB(filepath.Join(homeDir, ".liftlog-upload"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	// Create client (nil in dry-run mode)
	var client *upload.Client
	if *dryRun {
		log.Info("DRY RUN mode: exports will be parsed but not sent")
	} else {
		client = upload.NewClient(*serverURL, key)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	uploader := upload.New(client, state, *serverURL, *dryRun, *force, log)
	stats, err := uploader.Run(ctx, *exportPath)
	printStats(stats)
	if err != nil {
		log.Error("upload failed", "error", err)
		os.Exit(1)
	}
	log.Info("upload complete")
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files uploaded:   %d\n", stats.FilesUploaded)
	fmt.Printf("  Files skipped:    %d (already uploaded)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Trainings sent:   %d\n", stats.TrainingsSent)
	fmt.Printf("  Upserted:         %d\n", stats.TrainingsUpserted)
	fmt.Printf("  Removed:          %d\n", stats.TrainingsRemoved)
	fmt.Printf("  Unchanged on server: %d\n", stats.ServerSkipped)
	fmt.Println()
}
