package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
	"tailscale.com/tsnet"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/server"
	"github.com/claude/liftlog/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	stdio := flag.Bool("stdio", false, "serve MCP over stdin/stdout instead of HTTP")
	remote := flag.String("remote", "", "base URL of a liftlog server to read data from (stdio mode only)")
	flag.Parse()

	_ = godotenv.Load()

	// stdout carries the MCP protocol in stdio mode
	var out io.Writer = os.Stdout
	if *stdio {
		out = os.Stderr
	}

	cfg, err := config.Load(resolveConfigPath(*configPath))
	if err != nil {
		slog.New(slog.NewTextHandler(out, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	log.Info("LiftLog starting", "version", Version)

	if *remote != "" && !*stdio {
		log.Error("-remote requires -stdio")
		os.Exit(1)
	}

	if *stdio {
		if err := runStdio(cfg, *remote, log); err != nil {
			log.Error("stdio server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runHTTP(ctx, cfg, log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// resolveConfigPath falls back to defaults plus env when the default config
// file does not exist. An explicitly passed path must exist.
func resolveConfigPath(path string) string {
	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})
	if !explicit {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return ""
		}
	}
	return path
}

func storeOptions(cfg *config.Config) storage.Options {
	return storage.Options{
		Driver:      cfg.Store.Driver,
		DataFile:    cfg.Data.TrainingsFile,
		SQLitePath:  cfg.Store.SQLitePath,
		PostgresDSN: cfg.Store.Postgres.DSN(),
	}
}

func runStdio(cfg *config.Config, remote string, log *slog.Logger) error {
	var ds mcp.DataSource
	if remote != "" {
		log.Info("reading data from remote server", "url", remote)
		ds = mcp.NewHTTPClient(remote)
	} else {
		store, err := storage.Open(context.Background(), storeOptions(cfg), log)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer store.Close()
		ds = &storage.Library{Trainings: store, Catalog: storage.NewCatalogFile(cfg.Data.CatalogFile)}
	}

	log.Info("serving MCP over stdio", "store", cfg.Store.Driver)
	return mcpserver.ServeStdio(mcp.New(ds, Version, log))
}

func runHTTP(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	store, err := storage.Open(ctx, storeOptions(cfg), log)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()
	log.Info("store opened", "driver", cfg.Store.Driver)

	opts := server.Options{
		Data:    &storage.Library{Trainings: store, Catalog: storage.NewCatalogFile(cfg.Data.CatalogFile)},
		APIKey:  cfg.Auth.APIKey,
		Version: Version,
	}
	if imp, ok := store.(server.Importer); ok && cfg.Auth.APIKey != "" {
		opts.Imports = imp
		log.Info("HTTP import enabled")
	}
	srv := server.New(opts, log)

	// Listen on tsnet or plain TCP
	var listener net.Listener
	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			return fmt.Errorf("tsnet start: %w", err)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			return fmt.Errorf("tsnet listen: %w", err)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
