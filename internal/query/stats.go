package query

import (
	"time"

	"github.com/claude/liftlog/internal/extract"
	"github.com/claude/liftlog/internal/models"
)

// CardioDay stands in for the day label of sessions logged without one.
const CardioDay = "Cardio"

// DayCount is the number of sessions logged on a program day.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// LastTraining identifies the most recent session.
type LastTraining struct {
	Date string `json:"date"`
	Name string `json:"name"`
	Day  string `json:"day"`
}

// Stats aggregates the whole collection.
type Stats struct {
	LiftingSessions int          `json:"liftingSessions"`
	CardioSessions  int          `json:"cardioSessions"`
	PerDay          []DayCount   `json:"perDay"`
	CurrentWeek     int          `json:"currentWeek"`
	ThisWeek        int          `json:"thisWeek"`
	WithHealth      int          `json:"withHealth"`
	Last            LastTraining `json:"last"`
}

// ComputeStats aggregates records as of now. The calendar week starts on the
// most recent Monday at midnight in now's location.
func ComputeStats(records []models.TrainingRecord, now time.Time) (*Stats, error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}

	perDay := make(map[string]int, len(extract.DayLabels))
	for _, d := range extract.DayLabels {
		perDay[d] = 0
	}

	weekStart := StartOfWeek(now)
	s := &Stats{}
	for i := range records {
		t := &records[i]
		if t.IsCardio {
			s.CardioSessions++
		} else {
			s.LiftingSessions++
		}
		if _, ok := perDay[t.Day]; ok {
			perDay[t.Day]++
		}
		if t.Week > s.CurrentWeek {
			s.CurrentWeek = t.Week
		}
		if d, err := models.ParseDate(t.Date, now.Location()); err == nil && !d.Before(weekStart) {
			s.ThisWeek++
		}
		if t.Health != nil {
			s.WithHealth++
		}
	}
	if s.CurrentWeek < 1 {
		s.CurrentWeek = 1
	}
	for _, d := range extract.DayLabels {
		s.PerDay = append(s.PerDay, DayCount{Day: d, Count: perDay[d]})
	}

	last := sortedByDate(records, true)[0]
	s.Last = LastTraining{Date: last.Date, Name: last.Label(), Day: last.Day}
	if s.Last.Day == "" {
		s.Last.Day = CardioDay
	}
	return s, nil
}

// StartOfWeek returns Monday 00:00 of the week containing now.
func StartOfWeek(now time.Time) time.Time {
	offset := (int(now.Weekday()) + 6) % 7
	y, m, d := now.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, now.Location())
}

// Summary is the compact collection overview served as a resource.
type Summary struct {
	Total      int `json:"total"`
	Lifting    int `json:"lifting"`
	Cardio     int `json:"cardio"`
	WithHealth int `json:"withHealth"`
}

// Summarize counts sessions by kind. Unlike ComputeStats it accepts an empty
// collection.
func Summarize(records []models.TrainingRecord) Summary {
	s := Summary{Total: len(records)}
	for i := range records {
		if records[i].IsCardio {
			s.Cardio++
		} else {
			s.Lifting++
		}
		if records[i].Health != nil {
			s.WithHealth++
		}
	}
	return s
}
