package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/claude/liftlog/internal/models"
)

// ErrCatalogUnavailable is returned when the exercise catalog cannot be read
// or decoded.
var ErrCatalogUnavailable = errors.New("exercise catalog unavailable")

// CatalogFile reads the exercise catalog JSON on every call.
type CatalogFile struct {
	path string
}

// NewCatalogFile returns a catalog source over path.
func NewCatalogFile(path string) *CatalogFile {
	return &CatalogFile{path: path}
}

// Path returns the catalog file location.
func (c *CatalogFile) Path() string { return c.path }

func (c *CatalogFile) LoadCatalog(_ context.Context) (models.Catalog, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a catalog object, keeping the key order of the
// document. Reserved keys are kept with an empty descriptor whatever their
// value.
func ParseCatalog(data []byte) (models.Catalog, error) {
	om := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, om); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	catalog := make(models.Catalog, 0, om.Len())
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		entry := models.CatalogEntry{Name: pair.Key}
		if !entry.Reserved() {
			if err := json.Unmarshal(pair.Value, &entry.Descriptor); err != nil {
				return nil, fmt.Errorf("%w: entry %q: %w", ErrCatalogUnavailable, pair.Key, err)
			}
		}
		catalog = append(catalog, entry)
	}
	return catalog, nil
}

// MarshalCatalog encodes a catalog as a JSON object in catalog order, the
// inverse of ParseCatalog.
func MarshalCatalog(catalog models.Catalog) ([]byte, error) {
	om := orderedmap.New[string, models.ExerciseDescriptor](orderedmap.WithCapacity[string, models.ExerciseDescriptor](len(catalog)))
	for _, e := range catalog {
		om.Set(e.Name, e.Descriptor)
	}
	return json.Marshal(om)
}
