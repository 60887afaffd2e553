// Package render formats query results as markdown for MCP clients.
// Health numbers are rounded here and nowhere else.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/query"
)

// dayNames labels the program days in the stats tally.
var dayNames = map[string]string{
	"A": "Squat",
	"B": "Bench",
	"C": "Deadlift",
	"D": "Push Press",
}

// Trainings renders the training listing.
func Trainings(rows []query.TrainingSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Trainings (%d)\n\n", len(rows))
	for i, t := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- **%s**", models.FormatDisplayDate(t.Date))
		if t.Day == "" && t.Lift == "" {
			b.WriteString(" | Cardio")
		} else {
			fmt.Fprintf(&b, " | Day %s: %s | Week %d", t.Day, t.Lift, t.Week)
		}
		b.WriteString(" | Top set: ")
		if t.TopSet != nil {
			fmt.Fprintf(&b, "%skg x %s", t.TopSet.Weight, t.TopSet.Reps)
		} else {
			b.WriteString("-")
		}
		if t.Health != nil {
			fmt.Fprintf(&b, " | ❤️ %d bpm | 🔥 %d kcal", round(t.Health.AvgHeartRate), round(t.Health.ActiveEnergy))
		}
	}
	return b.String()
}

// TrainingDetail renders one training with every exercise and set.
func TrainingDetail(d *query.TrainingDetail) string {
	var b strings.Builder
	if d.IsCardio || d.Lift == "" {
		fmt.Fprintf(&b, "## %s (Cardio)\n", d.CardioName)
	} else {
		fmt.Fprintf(&b, "## %s — Day %s\n", d.Lift, d.Day)
	}
	fmt.Fprintf(&b, "**Date:** %s | **Week:** %d\n\n", models.FormatDisplayDate(d.Date), d.Week)

	if h := d.Health; h != nil {
		fmt.Fprintf(&b, "**Apple Health:** ❤️ Avg: %d bpm | Max: %d bpm | 🔥 %d kcal",
			round(h.AvgHeartRate), round(h.MaxHeartRate), round(h.ActiveEnergy))
		if h.Duration != nil {
			fmt.Fprintf(&b, " | ⏱️ %s", *h.Duration)
		}
		b.WriteString("\n\n")
	}

	b.WriteString("### Exercises\n\n")
	for _, ex := range d.Exercises {
		switch ex.View {
		case query.ViewSkipped:
			fmt.Fprintf(&b, "- ~~%s~~ *(skipped)*\n", ex.Name)
		case query.ViewCheck:
			mark := "⬜"
			if ex.Done {
				mark = "✅"
			}
			fmt.Fprintf(&b, "- %s: %s\n", ex.Name, mark)
		default:
			fmt.Fprintf(&b, "- **%s**", ex.Name)
			if ex.Equip != "" {
				fmt.Fprintf(&b, " (%s)", ex.Equip)
			}
			b.WriteString("\n")
			for _, s := range ex.Sets {
				prefix := "  - "
				if s.Warmup {
					prefix = "  - 🔥 "
				}
				if ex.View == query.ViewTimed {
					fmt.Fprintf(&b, "%sSet %d: %skg × %ss\n", prefix, s.Number, orDash(s.Weight), orDash(s.Duration))
				} else {
					fmt.Fprintf(&b, "%sSet %d: %skg × %s reps\n", prefix, s.Number, orDash(s.Weight), orDash(s.Reps))
				}
			}
		}
	}

	if d.Notes != "" {
		fmt.Fprintf(&b, "\n**Notes:** %s\n", d.Notes)
	}
	return b.String()
}

// Progress renders the progress table with its trend line.
func Progress(p *query.Progress) string {
	var b strings.Builder
	first, last := p.First(), p.Last()
	fmt.Fprintf(&b, "## Progress: %s\n\n", p.Exercise)
	fmt.Fprintf(&b, "**Trend:** %s (%s → %s)\n\n", Trend(p.Trend),
		models.FormatDisplayDate(first.Date), models.FormatDisplayDate(last.Date))
	b.WriteString("| Date | Weight | Reps |\n|------|--------|------|\n")
	for _, pt := range p.Points {
		fmt.Fprintf(&b, "| %s | %skg | %d |\n", models.FormatDisplayDate(pt.Date), num(pt.Weight), pt.Reps)
	}
	return b.String()
}

// Trend formats a weight delta: +Xkg, -Xkg or flat.
func Trend(diff float64) string {
	switch {
	case diff > 0:
		return "+" + num(diff) + "kg 📈"
	case diff < 0:
		return num(diff) + "kg 📉"
	default:
		return "flat ➡️"
	}
}

// Stats renders the aggregate block.
func Stats(s *query.Stats) string {
	var b strings.Builder
	b.WriteString("## LiftLog Stats\n\n")
	fmt.Fprintf(&b, "**Total trainings:** %d lifting + %d cardio\n", s.LiftingSessions, s.CardioSessions)
	fmt.Fprintf(&b, "**Current program week:** %d\n", s.CurrentWeek)
	fmt.Fprintf(&b, "**Trained this week:** %dx\n", s.ThisWeek)
	fmt.Fprintf(&b, "**With Apple Health data:** %d trainings\n\n", s.WithHealth)
	b.WriteString("### Per day\n")
	for _, dc := range s.PerDay {
		fmt.Fprintf(&b, "- Day %s (%s): %dx\n", dc.Day, dayNames[dc.Day], dc.Count)
	}
	b.WriteString("\n### Last training\n")
	fmt.Fprintf(&b, "%s — %s (Day %s)", models.FormatDisplayDate(s.Last.Date), s.Last.Name, s.Last.Day)
	return b.String()
}

// PersonalRecords renders the PR table, one row per main lift.
func PersonalRecords(prs []query.PersonalRecord) string {
	var b strings.Builder
	b.WriteString("## Personal Records\n\n")
	b.WriteString("| Exercise | PR | Reps | Date |\n|----------|----|------|------|\n")
	for _, pr := range prs {
		date := "-"
		if pr.Date != nil {
			date = models.FormatDisplayDate(*pr.Date)
		}
		fmt.Fprintf(&b, "| %s | %skg | %d | %s |\n", pr.Lift, num(pr.Weight), pr.Reps, date)
	}
	return b.String()
}

// Exercises renders catalog search results.
func Exercises(entries []models.CatalogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Exercises (%d)\n\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(&b, "- **%s**", e.Name)
		if e.Descriptor.Pattern != "" {
			fmt.Fprintf(&b, " [%s]", e.Descriptor.Pattern)
		}
		if len(e.Descriptor.Muscles) > 0 {
			fmt.Fprintf(&b, " — %s", strings.Join(e.Descriptor.Muscles, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func round(f float64) int {
	return int(math.Round(f))
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// orDash shows an absent or zero set value as "-", so a bodyweight set
// logged with w: 0 reads "-kg".
func orDash(q models.Quantity) string {
	if f, ok := q.Float(); q == "" || (ok && f == 0) {
		return "-"
	}
	return string(q)
}
