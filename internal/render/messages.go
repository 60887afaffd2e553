package render

import "fmt"

// Plain-text replies for queries that ran but had nothing to show.

func NoTraining(date string) string {
	return fmt.Sprintf("No training found on %s", date)
}

func NoProgress(exercise string) string {
	return fmt.Sprintf("No data found for %q", exercise)
}

const (
	NoTrainings        = "No trainings found. Export your data from LiftLog first."
	NoExercises        = "No exercises found"
	CatalogUnavailable = "Could not load the exercise catalog"
)
