package query

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/liftlog/internal/models"
)

func ptr(v float64) *float64 { return &v }

func lift(date, day, name string, week int, sets ...models.SetEntry) models.TrainingRecord {
	return models.TrainingRecord{
		Date: date,
		Day:  day,
		Lift: name,
		Week: week,
		Exercises: []models.ExerciseEntry{
			{Name: name, Sets: sets},
		},
	}
}

func set(w, r string) models.SetEntry { return models.SetEntry{Weight: models.Quantity(w), Reps: models.Quantity(r)} }

func warmup(w, r string) models.SetEntry {
	s := set(w, r)
	s.Warmup = true
	return s
}

func sampleRecords() []models.TrainingRecord {
	squat1 := lift("2024-01-01", "A", "Back Squat", 1, warmup("60", "5"), set("100", "5"))
	squat1.Health = &models.HealthBlock{AvgHr: ptr(121.4), MaxHr: ptr(160), TotalCal: ptr(300)}
	squat2 := lift("2024-01-08", "A", "Back Squat", 2, set("105", "5"))
	squat2.Health = &models.HealthBlock{AvgHeartRate: ptr(125), MaxHeartRate: ptr(165), ActiveEnergy: ptr(320), Duration: "58 min"}
	bench := lift("2024-01-03", "B", "Bench Press", 1, set("70", "5"), set("72.5", "3"))
	cardio := models.TrainingRecord{Date: "2024-01-05", IsCardio: true, CardioName: "Zone 2 Run"}
	return []models.TrainingRecord{squat1, bench, cardio, squat2}
}

// --- ListTrainings ---

// TestListTrainingsSortedAndLimited checks the newest-first order and limit.
func TestListTrainingsSortedAndLimited(t *testing.T) {
	records := sampleRecords()
	got := ListTrainings(records, ListParams{Limit: 3})
	require.Len(t, got, 3)
	assert.Equal(t, "2024-01-08", got[0].Date)
	assert.Equal(t, "2024-01-05", got[1].Date)
	assert.Equal(t, "2024-01-03", got[2].Date)

	// Input untouched.
	assert.Equal(t, "2024-01-01", records[0].Date)
}

// TestListTrainingsDayFilterLimitOne is the "three day-A records, limit 1" scenario.
func TestListTrainingsDayFilterLimitOne(t *testing.T) {
	records := []models.TrainingRecord{
		lift("2024-01-01", "A", "Back Squat", 1, set("100", "5")),
		lift("2024-01-15", "A", "Back Squat", 3, set("110", "5")),
		lift("2024-01-08", "A", "Back Squat", 2, set("105", "5")),
		lift("2024-01-20", "B", "Bench Press", 3, set("80", "5")),
	}
	got := ListTrainings(records, ListParams{Day: "A", Limit: 1})
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-15", got[0].Date)
	require.NotNil(t, got[0].TopSet)
	assert.Equal(t, models.Quantity("110"), got[0].TopSet.Weight)
	assert.Equal(t, "Back Squat", got[0].MainLift)
}

// TestListTrainingsDateRange checks the inclusive lexicographic range.
func TestListTrainingsDateRange(t *testing.T) {
	got := ListTrainings(sampleRecords(), ListParams{FromDate: "2024-01-03", ToDate: "2024-01-05"})
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-05", got[0].Date)
	assert.Equal(t, "2024-01-03", got[1].Date)
}

// TestListTrainingsDefaults checks the default limit, health and cardio rows.
func TestListTrainingsDefaults(t *testing.T) {
	var records []models.TrainingRecord
	for i := 1; i <= 15; i++ {
		records = append(records, lift(time.Date(2024, 2, i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), "C", "Conventional Deadlift", 1, set("140", "3")))
	}
	assert.Len(t, ListTrainings(records, ListParams{}), DefaultLimit)
	assert.Len(t, ListTrainings(records, ListParams{Limit: -4}), DefaultLimit)
	assert.Empty(t, ListTrainings(records, ListParams{Day: "D"}))

	got := ListTrainings(sampleRecords(), ListParams{})
	byDate := map[string]TrainingSummary{}
	for _, row := range got {
		byDate[row.Date] = row
	}
	assert.Nil(t, byDate["2024-01-05"].TopSet, "cardio has no main lift")
	assert.Nil(t, byDate["2024-01-05"].Health)
	require.NotNil(t, byDate["2024-01-01"].Health)
	assert.Equal(t, 121.4, byDate["2024-01-01"].Health.AvgHeartRate)
	assert.Equal(t, 300.0, byDate["2024-01-01"].Health.ActiveEnergy)
}

// TestListTrainingsProperty checks length and ordering over random collections.
func TestListTrainingsProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 50; n++ {
		var records []models.TrainingRecord
		for i := 0; i < rng.Intn(30); i++ {
			d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, rng.Intn(200))
			records = append(records, lift(d.Format("2006-01-02"), "A", "Back Squat", 1, set("100", "5")))
		}
		limit := rng.Intn(12) + 1
		got := ListTrainings(records, ListParams{Limit: limit})
		assert.LessOrEqual(t, len(got), limit)
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].Date, got[i].Date)
		}
	}
}

// TestListTrainingsUnparsableDateSortsLast checks that a record with an
// unreadable date is treated as the oldest one.
func TestListTrainingsUnparsableDateSortsLast(t *testing.T) {
	records := []models.TrainingRecord{
		lift("garbage", "A", "Back Squat", 1, set("90", "5")),
		lift("2024-01-08", "A", "Back Squat", 2, set("105", "5")),
		lift("2024-01-01", "A", "Back Squat", 1, set("100", "5")),
	}
	got := ListTrainings(records, ListParams{})
	require.Len(t, got, 3)
	assert.Equal(t, "2024-01-08", got[0].Date)
	assert.Equal(t, "2024-01-01", got[1].Date)
	assert.Equal(t, "garbage", got[2].Date)
}

// --- TrainingDetails ---

// TestTrainingDetailsNotFound is the "2099-01-01" scenario.
func TestTrainingDetailsNotFound(t *testing.T) {
	_, err := TrainingDetails(sampleRecords(), DetailParams{Date: "2099-01-01"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = TrainingDetails(sampleRecords(), DetailParams{Date: "2024-01-01", Day: "B"})
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestTrainingDetailsMissingDate verifies the required argument.
func TestTrainingDetailsMissingDate(t *testing.T) {
	_, err := TrainingDetails(sampleRecords(), DetailParams{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// TestTrainingDetailsViews checks every exercise view and set numbering.
func TestTrainingDetailsViews(t *testing.T) {
	rec := models.TrainingRecord{
		Date: "2024-03-01", Day: "D", Lift: "Push Press", Week: 5,
		Health: &models.HealthBlock{AvgHr: ptr(110)},
		Notes:  "shoulder ok",
		Exercises: []models.ExerciseEntry{
			{Name: "Push Press", Equip: "barbell", Sets: []models.SetEntry{warmup("30", "8"), set("60", "5")}},
			{Name: "Dips", Skipped: true, Sets: []models.SetEntry{set("0", "10")}},
			{Name: "Mobility", Kind: models.KindCheck, Done: true},
			{Name: "Plank", Kind: models.KindTimed, Sets: []models.SetEntry{{Duration: "60"}, {Weight: "10", Duration: "45"}}},
		},
	}
	other := lift("2024-03-01", "A", "Back Squat", 5, set("100", "5"))
	d, err := TrainingDetails([]models.TrainingRecord{other, rec}, DetailParams{Date: "2024-03-01", Day: "D"})
	require.NoError(t, err)

	assert.Equal(t, "Push Press", d.Lift)
	assert.Equal(t, "shoulder ok", d.Notes)
	require.NotNil(t, d.Health)
	assert.Equal(t, 110.0, d.Health.AvgHeartRate)
	require.Len(t, d.Exercises, 4)

	std := d.Exercises[0]
	assert.Equal(t, ViewStandard, std.View)
	assert.Equal(t, "barbell", std.Equip)
	require.Len(t, std.Sets, 2)
	assert.Equal(t, 1, std.Sets[0].Number)
	assert.True(t, std.Sets[0].Warmup)
	assert.Equal(t, 2, std.Sets[1].Number)
	assert.Equal(t, models.Quantity("5"), std.Sets[1].Reps)

	assert.Equal(t, ViewSkipped, d.Exercises[1].View)
	assert.Empty(t, d.Exercises[1].Sets)

	assert.Equal(t, ViewCheck, d.Exercises[2].View)
	assert.True(t, d.Exercises[2].Done)

	timed := d.Exercises[3]
	assert.Equal(t, ViewTimed, timed.View)
	require.Len(t, timed.Sets, 2)
	assert.Equal(t, models.Quantity("45"), timed.Sets[1].Duration)
	assert.Equal(t, models.Quantity(""), timed.Sets[1].Reps)

	// Without a day the first record in collection order wins.
	d, err = TrainingDetails([]models.TrainingRecord{other, rec}, DetailParams{Date: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, "A", d.Day)
}

// --- ExerciseProgress ---

// TestExerciseProgressTrend checks ascending order, coercion and the trend.
func TestExerciseProgressTrend(t *testing.T) {
	p, err := ExerciseProgress(sampleRecords(), ProgressParams{Exercise: "Back Squat"})
	require.NoError(t, err)
	require.Len(t, p.Points, 2)
	assert.Equal(t, ProgressPoint{Date: "2024-01-01", Weight: 100, Reps: 5}, p.Points[0])
	assert.Equal(t, ProgressPoint{Date: "2024-01-08", Weight: 105, Reps: 5}, p.Points[1])
	assert.Equal(t, 5.0, p.Trend)
}

// TestExerciseProgressKeepsLatest checks that the most recent points survive the limit.
func TestExerciseProgressKeepsLatest(t *testing.T) {
	var records []models.TrainingRecord
	for i := 10; i >= 1; i-- {
		d := time.Date(2024, 1, i, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		records = append(records, lift(d, "B", "Bench Press", 1, set(string(models.QuantityFromInt(60+i)), "5")))
	}
	p, err := ExerciseProgress(records, ProgressParams{Exercise: "Bench Press", Limit: 3})
	require.NoError(t, err)
	require.Len(t, p.Points, 3)
	assert.Equal(t, "2024-01-08", p.Points[0].Date)
	assert.Equal(t, "2024-01-10", p.Points[2].Date)
	assert.Equal(t, 2.0, p.Trend)
	for i := 1; i < len(p.Points); i++ {
		assert.LessOrEqual(t, p.Points[i-1].Date, p.Points[i].Date)
	}
}

// TestExerciseProgressEdgeCases covers skipped entries, unparsable weights and no data.
func TestExerciseProgressEdgeCases(t *testing.T) {
	skipped := lift("2024-01-01", "A", "Back Squat", 1, set("100", "5"))
	skipped.Exercises[0].Skipped = true
	junk := lift("2024-01-02", "A", "Back Squat", 1, set("heavy", ""))
	warm := lift("2024-01-03", "A", "Back Squat", 1, warmup("60", "5"))

	p, err := ExerciseProgress([]models.TrainingRecord{skipped, junk, warm}, ProgressParams{Exercise: "Back Squat"})
	require.NoError(t, err)
	require.Len(t, p.Points, 2)
	assert.Equal(t, ProgressPoint{Date: "2024-01-02"}, p.Points[0])
	assert.Equal(t, ProgressPoint{Date: "2024-01-03"}, p.Points[1])
	assert.Zero(t, p.Trend)

	_, err = ExerciseProgress(sampleRecords(), ProgressParams{Exercise: "back squat"})
	assert.ErrorIs(t, err, ErrNoData)

	_, err = ExerciseProgress(sampleRecords(), ProgressParams{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// TestExerciseProgressUnparsableDateFirst checks that a record with an
// unreadable date opens the oldest-first series.
func TestExerciseProgressUnparsableDateFirst(t *testing.T) {
	records := []models.TrainingRecord{
		lift("2024-01-08", "A", "Back Squat", 2, set("105", "5")),
		lift("garbage", "A", "Back Squat", 1, set("90", "5")),
		lift("2024-01-01", "A", "Back Squat", 1, set("100", "5")),
	}
	got, err := ExerciseProgress(records, ProgressParams{Exercise: "Back Squat"})
	require.NoError(t, err)
	require.Len(t, got.Points, 3)
	assert.Equal(t, "garbage", got.Points[0].Date)
	assert.Equal(t, 90.0, got.Points[0].Weight)
	assert.Equal(t, "2024-01-08", got.Points[2].Date)
	assert.Equal(t, 15.0, got.Trend)
}

// --- ComputeStats ---

// TestComputeStatsEmpty is the empty-collection scenario.
func TestComputeStatsEmpty(t *testing.T) {
	_, err := ComputeStats(nil, time.Now())
	assert.ErrorIs(t, err, ErrNoData)
}

// TestComputeStats checks every aggregate against a fixed clock.
func TestComputeStats(t *testing.T) {
	// Wednesday 2024-01-10; the week started Monday 2024-01-08.
	now := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)
	records := sampleRecords()
	records = append(records, models.TrainingRecord{Date: "2024-01-09", Day: "X", Lift: "Odd"})

	s, err := ComputeStats(records, now)
	require.NoError(t, err)
	assert.Equal(t, 4, s.LiftingSessions)
	assert.Equal(t, 1, s.CardioSessions)
	assert.Equal(t, []DayCount{{"A", 2}, {"B", 1}, {"C", 0}, {"D", 0}}, s.PerDay)
	assert.Equal(t, 2, s.CurrentWeek)
	assert.Equal(t, 2, s.ThisWeek)
	assert.Equal(t, 2, s.WithHealth)
	assert.Equal(t, LastTraining{Date: "2024-01-09", Name: "Odd", Day: "X"}, s.Last)
}

// TestComputeStatsCardioLast checks the cardio name and marker and the week default.
func TestComputeStatsCardioLast(t *testing.T) {
	records := []models.TrainingRecord{
		{Date: "2024-05-01", Lift: "Back Squat"},
		{Date: "2024-05-02", IsCardio: true, CardioName: "Bike"},
	}
	s, err := ComputeStats(records, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, s.CurrentWeek)
	assert.Equal(t, 0, s.ThisWeek)
	assert.Equal(t, LastTraining{Date: "2024-05-02", Name: "Bike", Day: CardioDay}, s.Last)
}

// TestStartOfWeek checks Monday and Sunday boundaries.
func TestStartOfWeek(t *testing.T) {
	monday := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	cases := []time.Time{
		time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 14, 23, 59, 0, 0, time.UTC), // Sunday
	}
	for _, now := range cases {
		assert.Equal(t, monday, StartOfWeek(now), "now=%s", now)
	}
}

// --- PersonalRecords ---

// TestPersonalRecordsScenario is the two-squat-sessions scenario.
func TestPersonalRecordsScenario(t *testing.T) {
	records := []models.TrainingRecord{
		lift("2024-01-01", "A", "Back Squat", 1, set("100", "5")),
		lift("2024-01-08", "A", "Back Squat", 2, set("105", "5")),
	}
	prs := PersonalRecords(records)
	require.Len(t, prs, 4)
	assert.Equal(t, "Back Squat", prs[0].Lift)
	assert.Equal(t, 105.0, prs[0].Weight)
	assert.Equal(t, 5, prs[0].Reps)
	require.NotNil(t, prs[0].Date)
	assert.Equal(t, "2024-01-08", *prs[0].Date)

	for _, pr := range prs[1:] {
		assert.Zero(t, pr.Weight, pr.Lift)
		assert.Zero(t, pr.Reps, pr.Lift)
		assert.Nil(t, pr.Date, pr.Lift)
	}
}

// TestPersonalRecordsTieKeepsFirst checks that equal weights do not overwrite.
func TestPersonalRecordsTieKeepsFirst(t *testing.T) {
	records := []models.TrainingRecord{
		lift("2024-02-01", "B", "Bench Press", 1, set("80", "3")),
		lift("2024-01-01", "B", "Bench Press", 1, set("80", "5")),
	}
	prs := PersonalRecords(records)
	require.NotNil(t, prs[1].Date)
	assert.Equal(t, "2024-02-01", *prs[1].Date)
	assert.Equal(t, 3, prs[1].Reps)
}

// TestPersonalRecordsOrderIndependent permutes a collection with distinct weights.
func TestPersonalRecordsOrderIndependent(t *testing.T) {
	records := sampleRecords()
	records = append(records,
		lift("2024-01-12", "C", "Conventional Deadlift", 2, set("150", "3")),
		lift("2024-01-19", "C", "Conventional Deadlift", 3, set("145", "5")),
	)
	skipped := lift("2024-01-20", "A", "Back Squat", 3, set("300", "1"))
	skipped.Exercises[0].Skipped = true
	records = append(records, skipped)

	want, err := json.Marshal(PersonalRecords(records))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 20; i++ {
		shuffled := append([]models.TrainingRecord(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got, err := json.Marshal(PersonalRecords(shuffled))
		require.NoError(t, err)
		assert.JSONEq(t, string(want), string(got))
	}

	prs := PersonalRecords(records)
	assert.Equal(t, 105.0, prs[0].Weight, "skipped 300kg squat must not count")
	assert.Equal(t, 150.0, prs[2].Weight)
}

// --- SearchExercises ---

func sampleCatalog() models.Catalog {
	return models.Catalog{
		{Name: "_meta"},
		{Name: "Back Squat", Descriptor: models.ExerciseDescriptor{Muscles: []string{"quads"}, Pattern: "squat"}},
		{Name: "Bench Press", Descriptor: models.ExerciseDescriptor{Muscles: []string{"chest", "triceps"}, Pattern: "push_horizontal"}},
		{Name: "Front Squat", Descriptor: models.ExerciseDescriptor{Muscles: []string{"Quads", "core"}, Pattern: "squat"}},
		{Name: "Romanian Deadlift", Descriptor: models.ExerciseDescriptor{Muscles: []string{"hamstrings"}, Pattern: "hinge"}},
	}
}

// TestSearchExercisesScenario is the "squat" query scenario.
func TestSearchExercisesScenario(t *testing.T) {
	catalog := models.Catalog{
		{Name: "Back Squat", Descriptor: models.ExerciseDescriptor{Muscles: []string{"quads"}}},
		{Name: "Bench Press"},
	}
	got, err := SearchExercises(catalog, SearchParams{Query: "squat"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Back Squat", got[0].Name)
}

// TestSearchExercisesFilters covers muscle matching, patterns and conjunction.
func TestSearchExercisesFilters(t *testing.T) {
	got, err := SearchExercises(sampleCatalog(), SearchParams{Query: "QUAD"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Back Squat", "Front Squat"}, names(got))

	got, err = SearchExercises(sampleCatalog(), SearchParams{Pattern: "hinge"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Romanian Deadlift"}, names(got))

	got, err = SearchExercises(sampleCatalog(), SearchParams{Query: "core", Pattern: "squat"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Front Squat"}, names(got))

	_, err = SearchExercises(sampleCatalog(), SearchParams{Query: "core", Pattern: "hinge"})
	assert.ErrorIs(t, err, ErrNoResults)

	got, err = SearchExercises(sampleCatalog(), SearchParams{})
	require.NoError(t, err)
	assert.NotContains(t, names(got), "_meta")

	_, err = SearchExercises(sampleCatalog(), SearchParams{Query: "meta"})
	assert.ErrorIs(t, err, ErrNoResults)
}

// TestSearchExercisesTruncates checks the result cap keeps catalog order.
func TestSearchExercisesTruncates(t *testing.T) {
	var catalog models.Catalog
	for i := 0; i < 30; i++ {
		catalog = append(catalog, models.CatalogEntry{Name: "Curl " + string(models.QuantityFromInt(i))})
	}
	got, err := SearchExercises(catalog, SearchParams{Query: "curl"})
	require.NoError(t, err)
	require.Len(t, got, MaxSearchResults)
	assert.Equal(t, "Curl 0", got[0].Name)
	assert.Equal(t, "Curl 19", got[19].Name)
}

func names(entries []models.CatalogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

// TestSummarize checks the resource summary counts.
func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
	assert.Equal(t, Summary{Total: 4, Lifting: 3, Cardio: 1, WithHealth: 2}, Summarize(sampleRecords()))
}
