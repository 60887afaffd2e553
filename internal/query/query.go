// Package query implements the read-only LiftLog queries: training listing,
// training detail, exercise progress, aggregate stats, personal records and
// catalog search. Every function takes the full in-memory collection and
// never modifies it; results are plain structs ready for JSON or rendering.
package query

import (
	"errors"
	"slices"

	"github.com/claude/liftlog/internal/models"
)

// Outcomes that are not failures: the query ran and found nothing, or the
// caller omitted a required argument.
var (
	ErrNotFound        = errors.New("training not found")
	ErrNoData          = errors.New("no data")
	ErrNoResults       = errors.New("no results")
	ErrInvalidArgument = errors.New("invalid argument")
)

// DefaultLimit applies when a limit is absent or not positive.
const DefaultLimit = 10

// MaxSearchResults caps SearchExercises.
const MaxSearchResults = 20

func limitOrDefault(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	return n
}

// sortedByDate returns a copy of records ordered by date, newest first when
// desc is set. Equal dates keep their collection order.
func sortedByDate(records []models.TrainingRecord, desc bool) []models.TrainingRecord {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b models.TrainingRecord) int {
		c := models.DateKey(a.Date).Compare(models.DateKey(b.Date))
		if desc {
			return -c
		}
		return c
	})
	return out
}
