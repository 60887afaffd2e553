package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the ISO calendar date used for TrainingRecord.Date.
	DateLayout = "2006-01-02"
	// UnknownDate is displayed when a record carries no date.
	UnknownDate = "unknown"
)

// ErrInvalidDate is returned by ParseDate when no date is present.
var ErrInvalidDate = errors.New("invalid date")

// ParseDate parses an ISO date (or a full RFC 3339 timestamp) in loc.
// An empty string is an error; a present but unparsable string is also
// reported so callers can decide how lenient to be (see DateKey).
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t.In(loc), nil
}

// DateKey returns a sortable value for s. Absent or unparsable dates map to
// the zero time so they sort as the earliest entries.
func DateKey(s string) time.Time {
	t, err := ParseDate(s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatDisplayDate turns "YYYY-MM-DD" into "DD-MM-YYYY". Strings that do not
// have exactly three dash-separated parts are returned unchanged.
func FormatDisplayDate(s string) string {
	if s == "" {
		return UnknownDate
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return s
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0]
}

// ParseDisplayDate reverses FormatDisplayDate.
func ParseDisplayDate(s string) string {
	if s == UnknownDate {
		return ""
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return s
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0]
}
