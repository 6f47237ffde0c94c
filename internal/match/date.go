package match

import (
	"strings"
	"time"
)

// DateLayout is the canonical textual form of MatchRecord.Date
const DateLayout = "2006-01-02"

// sourceLayouts are the date forms the federation pages use, most specific first
var sourceLayouts = []string{
	"2006/01/02 15:04",
	"2006/1/2 15:04",
	"2006/01/02",
	"2006/1/2",
	DateLayout,
}

// ParseDate attempts to parse a source date cell into a time.Time.
// Returns time.Time{} (zero value) if parsing fails.
// Only the calendar date is kept; any time of day is discarded.
func ParseDate(text string) time.Time {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return time.Time{}
	}

	for _, layout := range sourceLayouts {
		t, err := time.Parse(layout, text)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}

	// Some cells carry a weekday or trailing note after the date and time
	if fields := strings.Fields(text); len(fields) > 1 {
		for _, layout := range sourceLayouts {
			if strings.Contains(layout, " ") {
				continue
			}
			if t, err := time.Parse(layout, fields[0]); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			}
		}
	}

	return time.Time{}
}

// FormatDate normalizes a source date cell to YYYY-MM-DD.
// Returns "" if the date cannot be parsed.
func FormatDate(text string) string {
	t := ParseDate(text)
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// Time returns the parsed record date, or the zero time
func (m *MatchRecord) Time() time.Time {
	return ParseDate(m.Date)
}
