package query

import (
	"strings"

	"github.com/claude/liftlog/internal/models"
)

// SearchParams filters the catalog. Both filters apply when both are set.
type SearchParams struct {
	// Query matches the exercise name or any muscle, case-insensitive substring.
	Query string
	// Pattern matches the movement pattern exactly.
	Pattern string
}

// SearchExercises returns up to MaxSearchResults catalog entries in catalog
// order. Reserved metadata entries never match.
func SearchExercises(catalog models.Catalog, p SearchParams) ([]models.CatalogEntry, error) {
	q := strings.ToLower(p.Query)
	var out []models.CatalogEntry
	for _, e := range catalog {
		if e.Reserved() {
			continue
		}
		if q != "" && !matchesQuery(e, q) {
			continue
		}
		if p.Pattern != "" && e.Descriptor.Pattern != p.Pattern {
			continue
		}
		out = append(out, e)
		if len(out) == MaxSearchResults {
			break
		}
	}
	if len(out) == 0 {
		return nil, ErrNoResults
	}
	return out, nil
}

func matchesQuery(e models.CatalogEntry, q string) bool {
	if strings.Contains(strings.ToLower(e.Name), q) {
		return true
	}
	for _, m := range e.Descriptor.Muscles {
		if strings.Contains(strings.ToLower(m), q) {
			return true
		}
	}
	return false
}
