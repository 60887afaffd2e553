package query

import (
	"github.com/claude/liftlog/internal/extract"
	"github.com/claude/liftlog/internal/models"
)

// PersonalRecord is the heaviest top set logged for a main lift. Date is nil
// when the lift was never performed.
type PersonalRecord struct {
	Lift   string  `json:"lift"`
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
	Date   *string `json:"date"`
}

// PersonalRecords returns one record per main lift, in MainLifts order. A
// candidate replaces the current best only with a strictly greater weight, so
// on a tie the first one in collection order is kept.
func PersonalRecords(records []models.TrainingRecord) []PersonalRecord {
	out := make([]PersonalRecord, 0, len(extract.MainLifts))
	for _, lift := range extract.MainLifts {
		pr := PersonalRecord{Lift: lift}
		for i := range records {
			t := &records[i]
			top, ok := extract.FindTopSet(extract.FindPerformed(t, lift))
			if !ok {
				continue
			}
			w, ok := top.Weight.Float()
			if !ok || w <= pr.Weight {
				continue
			}
			date := t.Date
			pr.Weight = w
			pr.Reps = top.Reps.Int()
			pr.Date = &date
		}
		out = append(out, pr)
	}
	return out
}
