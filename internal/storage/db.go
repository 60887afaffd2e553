package storage

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/claude/liftlog/internal/storage/migrations"
)

// RunSQLiteMigrations applies all pending SQLite migrations to the database
// file at path.
func RunSQLiteMigrations(path string) error {
	sub, err := fs.Sub(migrations.SQLite, "sqlite")
	if err != nil {
		return fmt.Errorf("opening sqlite migrations: %w", err)
	}
	return runMigrations(sub, "sqlite://"+path)
}

// RunPostgresMigrations applies all pending Postgres migrations.
func RunPostgresMigrations(dsn string) error {
	sub, err := fs.Sub(migrations.Postgres, "postgres")
	if err != nil {
		return fmt.Errorf("opening postgres migrations: %w", err)
	}
	return runMigrations(sub, dsn)
}

func runMigrations(fsys fs.FS, databaseURL string) error {
	src, err := iofs.New(fsys, ".")
	if err != nil {
		return fmt.Errorf("creating migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
