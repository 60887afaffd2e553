package models

import (
	"encoding/json"
)

// Exercise kinds as written in the LiftLog export. The empty kind is a
// standard weighted exercise.
const (
	KindStandard = ""
	KindCheck    = "check"
	KindTimed    = "timed"
)

// Export is the root JSON document written by the LiftLog app.
type Export struct {
	Trainings     []TrainingRecord  `json:"trainings"`
	HealthImports []json.RawMessage `json:"healthImports"`
}

// EmptyExport is the document used when no export can be read.
func EmptyExport() *Export {
	return &Export{Trainings: []TrainingRecord{}, HealthImports: []json.RawMessage{}}
}

// TrainingRecord is one logged session.
type TrainingRecord struct {
	Date       string          `json:"date"`
	Day        string          `json:"day,omitempty"`
	Lift       string          `json:"lift,omitempty"`
	Week       int             `json:"week,omitempty"`
	IsCardio   bool            `json:"isCardio,omitempty"`
	CardioName string          `json:"cardioName,omitempty"`
	Exercises  []ExerciseEntry `json:"exercises,omitempty"`
	Health     *HealthBlock    `json:"-"`
	Notes      string          `json:"notes,omitempty"`
}

// trainingRecordJSON mirrors TrainingRecord with both health block names.
// Older exports wrote the block as "health", newer ones as "appleHealth".
type trainingRecordJSON struct {
	Date        string          `json:"date"`
	Day         string          `json:"day,omitempty"`
	Lift        string          `json:"lift,omitempty"`
	Week        Quantity        `json:"week,omitempty"`
	IsCardio    bool            `json:"isCardio,omitempty"`
	CardioName  string          `json:"cardioName,omitempty"`
	Exercises   []ExerciseEntry `json:"exercises,omitempty"`
	AppleHealth *HealthBlock    `json:"appleHealth,omitempty"`
	Health      *HealthBlock    `json:"health,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

func (t *TrainingRecord) UnmarshalJSON(data []byte) error {
	var raw trainingRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = TrainingRecord{
		Date:       raw.Date,
		Day:        raw.Day,
		Lift:       raw.Lift,
		Week:       raw.Week.Int(),
		IsCardio:   raw.IsCardio,
		CardioName: raw.CardioName,
		Exercises:  raw.Exercises,
		Health:     raw.AppleHealth,
		Notes:      raw.Notes,
	}
	if t.Health == nil {
		t.Health = raw.Health
	}
	return nil
}

func (t TrainingRecord) MarshalJSON() ([]byte, error) {
	out := trainingRecordJSON{
		Date:        t.Date,
		Day:         t.Day,
		Lift:        t.Lift,
		IsCardio:    t.IsCardio,
		CardioName:  t.CardioName,
		Exercises:   t.Exercises,
		AppleHealth: t.Health,
		Notes:       t.Notes,
	}
	if t.Week != 0 {
		out.Week = QuantityFromInt(t.Week)
	}
	return json.Marshal(out)
}

// Label names the session: the lift for strength days, the cardio name otherwise.
func (t *TrainingRecord) Label() string {
	if t.Lift != "" {
		return t.Lift
	}
	return t.CardioName
}

// ExerciseEntry is one exercise within a session. Kind selects which set
// fields are meaningful: Reps for standard, Duration for timed, Done for check.
type ExerciseEntry struct {
	Name    string     `json:"name"`
	Kind    string     `json:"type,omitempty"`
	Skipped bool       `json:"skipped,omitempty"`
	Equip   string     `json:"equip,omitempty"`
	Sets    []SetEntry `json:"sets,omitempty"`
	Done    bool       `json:"done,omitempty"`
}

// SetEntry is a single set. Weight, Reps and Duration keep the exported text
// because the app writes them as numbers or numeric strings interchangeably.
type SetEntry struct {
	Warmup   bool     `json:"warmup,omitempty"`
	Weight   Quantity `json:"w,omitempty"`
	Reps     Quantity `json:"r,omitempty"`
	Duration Quantity `json:"t,omitempty"`
}

// HealthBlock is the raw wearable summary attached to a session. Each value
// may appear under a current name or a legacy alias; see extract.NormalizeHealth.
type HealthBlock struct {
	AvgHeartRate *float64 `json:"avgHeartRate,omitempty"`
	AvgHr        *float64 `json:"avgHr,omitempty"`
	MaxHeartRate *float64 `json:"maxHeartRate,omitempty"`
	MaxHr        *float64 `json:"maxHr,omitempty"`
	ActiveEnergy *float64 `json:"activeEnergy,omitempty"`
	TotalCal     *float64 `json:"totalCal,omitempty"`
	Duration     string   `json:"duration,omitempty"`
}

// HealthMetrics is the canonical health view after alias resolution.
type HealthMetrics struct {
	AvgHeartRate float64 `json:"avgHeartRate"`
	MaxHeartRate float64 `json:"maxHeartRate"`
	ActiveEnergy float64 `json:"activeEnergy"`
	Duration     *string `json:"duration"`
}
