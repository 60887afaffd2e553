package models

import "strings"

// ReservedPrefix marks catalog keys that hold metadata rather than exercises.
const ReservedPrefix = "_"

// Movement patterns used by the exercise catalog.
var MovementPatterns = []string{
	"squat", "hinge", "push_horizontal", "push_vertical",
	"pull_horizontal", "pull_vertical", "carry", "isolation",
}

// ExerciseDescriptor describes one catalog exercise.
type ExerciseDescriptor struct {
	Muscles []string `json:"muscles,omitempty"`
	Pattern string   `json:"pattern,omitempty"`
}

// CatalogEntry is a named catalog item. Reserved entries keep their key but
// carry no descriptor.
type CatalogEntry struct {
	Name       string             `json:"name"`
	Descriptor ExerciseDescriptor `json:"descriptor"`
}

// Reserved reports whether the entry is a metadata key.
func (e CatalogEntry) Reserved() bool {
	return strings.HasPrefix(e.Name, ReservedPrefix)
}

// Catalog is the exercise catalog in source order.
type Catalog []CatalogEntry
