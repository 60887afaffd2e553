// Package storage loads LiftLog training collections and exercise catalogs.
//
// Three training stores exist: FileStore reads the app's JSON export
// directly, SQLiteStore and PostgresStore hold imported exports. The
// exercise catalog always comes from a JSON file (CatalogFile).
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/liftlog/internal/models"
)

// Store drivers accepted by Open.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// TrainingSource yields the full training collection in export order.
type TrainingSource interface {
	LoadTrainings(ctx context.Context) ([]models.TrainingRecord, error)
}

// CatalogSource yields the exercise catalog in file order.
type CatalogSource interface {
	LoadCatalog(ctx context.Context) (models.Catalog, error)
}

// Store is a TrainingSource that owns resources.
type Store interface {
	TrainingSource
	Close() error
}

// ImportStore is a Store that accepts exports.
type ImportStore interface {
	Store
	Import(ctx context.Context, exp *models.Export, opts ImportOptions) (*ImportResult, error)
}

var (
	_ Store       = (*FileStore)(nil)
	_ ImportStore = (*SQLiteStore)(nil)
	_ ImportStore = (*PostgresStore)(nil)
)

// Options selects and configures a training store.
type Options struct {
	Driver      string
	DataFile    string
	SQLitePath  string
	PostgresDSN string
}

// Open returns the training store for opts.Driver. Database stores are
// migrated before they are returned.
func Open(ctx context.Context, opts Options, log *slog.Logger) (Store, error) {
	switch opts.Driver {
	case DriverFile, "":
		return NewFileStore(opts.DataFile, log), nil
	case DriverSQLite:
		return OpenSQLite(ctx, opts.SQLitePath)
	case DriverPostgres:
		return OpenPostgres(ctx, opts.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

// OpenImportStore is Open restricted to the database drivers.
func OpenImportStore(ctx context.Context, opts Options) (ImportStore, error) {
	switch opts.Driver {
	case DriverSQLite:
		return OpenSQLite(ctx, opts.SQLitePath)
	case DriverPostgres:
		return OpenPostgres(ctx, opts.PostgresDSN)
	default:
		return nil, fmt.Errorf("store driver %q does not support imports", opts.Driver)
	}
}

// Library pairs a training source with a catalog source. It is what the MCP
// and REST layers read from.
type Library struct {
	Trainings TrainingSource
	Catalog   CatalogSource
}

func (l *Library) LoadTrainings(ctx context.Context) ([]models.TrainingRecord, error) {
	return l.Trainings.LoadTrainings(ctx)
}

func (l *Library) LoadCatalog(ctx context.Context) (models.Catalog, error) {
	return l.Catalog.LoadCatalog(ctx)
}
