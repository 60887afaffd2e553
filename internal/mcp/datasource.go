package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// DataSource abstracts where trainings and the catalog come from. Both
// *storage.Library (local) and HTTPClient (remote via REST API) satisfy
// this interface.
type DataSource interface {
	LoadTrainings(ctx context.Context) ([]models.TrainingRecord, error)
	LoadCatalog(ctx context.Context) (models.Catalog, error)
}

// Compile-time check: *storage.Library satisfies DataSource.
var _ DataSource = (*storage.Library)(nil)
