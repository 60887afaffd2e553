package query

import (
	"fmt"

	"github.com/claude/liftlog/internal/extract"
	"github.com/claude/liftlog/internal/models"
)

// ListParams filters ListTrainings. Empty strings disable a filter.
type ListParams struct {
	Day      string
	FromDate string
	ToDate   string
	Limit    int
}

// TrainingSummary is one row of the training listing.
type TrainingSummary struct {
	Date     string                `json:"date"`
	Day      string                `json:"day,omitempty"`
	Lift     string                `json:"lift,omitempty"`
	Week     int                   `json:"week,omitempty"`
	MainLift string                `json:"mainLift,omitempty"`
	TopSet   *extract.TopSet       `json:"topSet"`
	Health   *models.HealthMetrics `json:"health"`
}

// ListTrainings filters by exact day and by an inclusive date range, sorts
// newest first and keeps the first limit rows. The range compares the ISO
// strings directly, which matches chronological order for the fixed-width
// YYYY-MM-DD format.
func ListTrainings(records []models.TrainingRecord, p ListParams) []TrainingSummary {
	var filtered []models.TrainingRecord
	for _, t := range records {
		if p.Day != "" && t.Day != p.Day {
			continue
		}
		if p.FromDate != "" && t.Date < p.FromDate {
			continue
		}
		if p.ToDate != "" && t.Date > p.ToDate {
			continue
		}
		filtered = append(filtered, t)
	}

	sorted := sortedByDate(filtered, true)
	if limit := limitOrDefault(p.Limit); len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]TrainingSummary, 0, len(sorted))
	for i := range sorted {
		t := &sorted[i]
		row := TrainingSummary{
			Date:   t.Date,
			Day:    t.Day,
			Lift:   t.Lift,
			Week:   t.Week,
			Health: extract.NormalizeHealth(t),
		}
		if ex := extract.FirstMainLift(t); ex != nil {
			row.MainLift = ex.Name
			if top, ok := extract.FindTopSet(ex); ok {
				row.TopSet = &top
			}
		}
		out = append(out, row)
	}
	return out
}

// DetailParams selects a single training.
type DetailParams struct {
	Date string
	Day  string
}

// ExerciseView tells a renderer how to show an exercise.
type ExerciseView string

const (
	ViewSkipped  ExerciseView = "skipped"
	ViewCheck    ExerciseView = "check"
	ViewTimed    ExerciseView = "timed"
	ViewStandard ExerciseView = "standard"
)

// SetDetail is a set with its 1-based position in the exercise.
type SetDetail struct {
	Number   int             `json:"number"`
	Warmup   bool            `json:"warmup,omitempty"`
	Weight   models.Quantity `json:"weight,omitempty"`
	Reps     models.Quantity `json:"reps,omitempty"`
	Duration models.Quantity `json:"duration,omitempty"`
}

// ExerciseDetail is one exercise of a training detail.
type ExerciseDetail struct {
	Name  string       `json:"name"`
	View  ExerciseView `json:"view"`
	Equip string       `json:"equip,omitempty"`
	Done  bool         `json:"done,omitempty"`
	Sets  []SetDetail  `json:"sets,omitempty"`
}

// TrainingDetail is the full view of one training.
type TrainingDetail struct {
	Date       string                `json:"date"`
	Day        string                `json:"day,omitempty"`
	Lift       string                `json:"lift,omitempty"`
	Week       int                   `json:"week,omitempty"`
	IsCardio   bool                  `json:"isCardio,omitempty"`
	CardioName string                `json:"cardioName,omitempty"`
	Health     *models.HealthMetrics `json:"health"`
	Exercises  []ExerciseDetail      `json:"exercises"`
	Notes      string                `json:"notes,omitempty"`
}

// TrainingDetails returns the first training (in collection order) whose date
// equals p.Date and, when p.Day is set, whose day equals p.Day.
func TrainingDetails(records []models.TrainingRecord, p DetailParams) (*TrainingDetail, error) {
	if p.Date == "" {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidArgument)
	}
	for i := range records {
		t := &records[i]
		if t.Date != p.Date {
			continue
		}
		if p.Day != "" && t.Day != p.Day {
			continue
		}
		return buildDetail(t), nil
	}
	return nil, fmt.Errorf("%w: no training on %s", ErrNotFound, p.Date)
}

func buildDetail(t *models.TrainingRecord) *TrainingDetail {
	d := &TrainingDetail{
		Date:       t.Date,
		Day:        t.Day,
		Lift:       t.Lift,
		Week:       t.Week,
		IsCardio:   t.IsCardio,
		CardioName: t.CardioName,
		Health:     extract.NormalizeHealth(t),
		Exercises:  make([]ExerciseDetail, 0, len(t.Exercises)),
		Notes:      t.Notes,
	}
	for _, ex := range t.Exercises {
		d.Exercises = append(d.Exercises, buildExercise(ex))
	}
	return d
}

func buildExercise(ex models.ExerciseEntry) ExerciseDetail {
	out := ExerciseDetail{Name: ex.Name, Equip: ex.Equip}
	switch {
	case ex.Skipped:
		out.View = ViewSkipped
		return out
	case ex.Kind == models.KindCheck:
		out.View = ViewCheck
		out.Done = ex.Done
		return out
	case ex.Kind == models.KindTimed:
		out.View = ViewTimed
	default:
		out.View = ViewStandard
	}

	out.Sets = make([]SetDetail, 0, len(ex.Sets))
	for i, s := range ex.Sets {
		sd := SetDetail{Number: i + 1, Warmup: s.Warmup, Weight: s.Weight}
		if out.View == ViewTimed {
			sd.Duration = s.Duration
		} else {
			sd.Reps = s.Reps
		}
		out.Sets = append(out.Sets, sd)
	}
	return out
}
