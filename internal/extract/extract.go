// Package extract derives per-exercise and per-session metrics from LiftLog
// records: the top working set and the normalized health block.
package extract

import (
	"slices"

	"github.com/claude/liftlog/internal/models"
)

// MainLifts are the four program lifts, in display order.
var MainLifts = []string{"Back Squat", "Bench Press", "Conventional Deadlift", "Push Press"}

// DayLabels are the program day labels, in display order. Day A is the squat
// day, B bench, C deadlift, D push press.
var DayLabels = []string{"A", "B", "C", "D"}

// IsMainLift reports whether name is exactly one of MainLifts.
func IsMainLift(name string) bool {
	return slices.Contains(MainLifts, name)
}

// TopSet is the working set that represents an exercise in a session.
type TopSet struct {
	Weight models.Quantity `json:"weight"`
	Reps   models.Quantity `json:"reps"`
}

// FindTopSet returns the last non-warmup set of ex in set order. It returns
// false when the exercise has no sets or only warmups. The pick is positional:
// the log convention is that the final working set is the top effort.
func FindTopSet(ex *models.ExerciseEntry) (TopSet, bool) {
	if ex == nil {
		return TopSet{}, false
	}
	for i := len(ex.Sets) - 1; i >= 0; i-- {
		s := ex.Sets[i]
		if s.Warmup {
			continue
		}
		return TopSet{Weight: s.Weight, Reps: s.Reps}, true
	}
	return TopSet{}, false
}

// FirstMainLift returns the first exercise in rec whose name is a main lift.
func FirstMainLift(rec *models.TrainingRecord) *models.ExerciseEntry {
	for i := range rec.Exercises {
		if IsMainLift(rec.Exercises[i].Name) {
			return &rec.Exercises[i]
		}
	}
	return nil
}

// FindPerformed returns the first non-skipped exercise in rec named exactly name.
func FindPerformed(rec *models.TrainingRecord, name string) *models.ExerciseEntry {
	for i := range rec.Exercises {
		ex := &rec.Exercises[i]
		if ex.Name == name && !ex.Skipped {
			return ex
		}
	}
	return nil
}

// NormalizeHealth resolves the current and legacy field names of a health
// block into one canonical view. The current name wins whenever it is
// present; missing numbers become zero and a missing duration stays nil.
// It returns nil when the record carries no health block.
func NormalizeHealth(rec *models.TrainingRecord) *models.HealthMetrics {
	h := rec.Health
	if h == nil {
		return nil
	}
	out := &models.HealthMetrics{
		AvgHeartRate: firstPresent(h.AvgHeartRate, h.AvgHr),
		MaxHeartRate: firstPresent(h.MaxHeartRate, h.MaxHr),
		ActiveEnergy: firstPresent(h.ActiveEnergy, h.TotalCal),
	}
	if h.Duration != "" {
		d := h.Duration
		out.Duration = &d
	}
	return out
}

func firstPresent(vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}
