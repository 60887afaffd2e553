package query

import (
	"fmt"

	"github.com/claude/liftlog/internal/extract"
	"github.com/claude/liftlog/internal/models"
)

// ProgressParams selects an exercise and the number of most recent points.
type ProgressParams struct {
	Exercise string
	Limit    int
}

// ProgressPoint is the top set of one session.
type ProgressPoint struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

// Progress is the trend of an exercise over its most recent sessions.
type Progress struct {
	Exercise string          `json:"exercise"`
	Points   []ProgressPoint `json:"points"`
	// Trend is last weight minus first weight over Points.
	Trend float64 `json:"trend"`
}

// First returns the oldest point.
func (p *Progress) First() ProgressPoint { return p.Points[0] }

// Last returns the newest point.
func (p *Progress) Last() ProgressPoint { return p.Points[len(p.Points)-1] }

// ExerciseProgress collects the top set of every session where the exercise
// was performed, oldest first, and keeps the last limit points.
func ExerciseProgress(records []models.TrainingRecord, p ProgressParams) (*Progress, error) {
	if p.Exercise == "" {
		return nil, fmt.Errorf("%w: exercise is required", ErrInvalidArgument)
	}

	var points []ProgressPoint
	for _, t := range sortedByDate(records, false) {
		ex := extract.FindPerformed(&t, p.Exercise)
		if ex == nil {
			continue
		}
		pt := ProgressPoint{Date: t.Date}
		if top, ok := extract.FindTopSet(ex); ok {
			pt.Weight = top.Weight.FloatOrZero()
			pt.Reps = top.Reps.Int()
		}
		points = append(points, pt)
	}

	if limit := limitOrDefault(p.Limit); len(points) > limit {
		points = points[len(points)-limit:]
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoData, p.Exercise)
	}

	prog := &Progress{Exercise: p.Exercise, Points: points}
	prog.Trend = prog.Last().Weight - prog.First().Weight
	return prog, nil
}
