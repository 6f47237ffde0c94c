// Package filter narrows a match snapshot down to the records a reader asked for.
//
// Filters combine criteria with AND semantics:
//   - Date range (inclusive, by calendar day)
//   - Competition names (substring matching, case-insensitive)
//   - Venues (substring matching, case-insensitive)
//   - Teams (substring matching against either side, case-insensitive)
//   - Outcome (WIN, LOSS or UNKNOWN)
//   - Pending matches only
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Competitions = []string{"Binaka"}
//	f.Outcome = match.OutcomeWin
//	wins := f.Apply(records)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/larraunpilota/fnp-results/internal/match"
)

// Filter represents match filtering criteria
type Filter struct {
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	Competitions []string `json:"competitions,omitempty"`
	Venues       []string `json:"venues,omitempty"`
	Teams        []string `json:"teams,omitempty"`

	Outcome     match.Outcome `json:"outcome,omitempty"`
	PendingOnly bool          `json:"pending_only,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all records until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Competitions: []string{},
		Venues:       []string{},
		Teams:        []string{},
	}
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Competitions) == 0 &&
		len(f.Venues) == 0 &&
		len(f.Teams) == 0 &&
		f.Outcome == "" &&
		!f.PendingOnly
}

// Matches checks if a record matches all active filter criteria.
// Records whose date cannot be parsed never match a date range.
func (f *Filter) Matches(rec *match.MatchRecord) bool {
	if f.IsEmpty() {
		return true
	}

	if f.DateFrom != nil || f.DateTo != nil {
		day := rec.Time()
		if day.IsZero() {
			return false
		}
		if f.DateFrom != nil && day.Before(truncateDay(*f.DateFrom)) {
			return false
		}
		if f.DateTo != nil && day.After(truncateDay(*f.DateTo)) {
			return false
		}
	}

	if f.Outcome != "" && rec.Outcome != f.Outcome {
		return false
	}

	if f.PendingOnly && !rec.IsPending() {
		return false
	}

	if !containsAny(rec.CompetitionName, f.Competitions) {
		return false
	}

	if !containsAny(rec.Venue, f.Venues) {
		return false
	}

	if len(f.Teams) > 0 && !containsAny(rec.HomeTeam, f.Teams) && !containsAny(rec.AwayTeam, f.Teams) {
		return false
	}

	return true
}

// Apply returns the records matching the filter, preserving their order.
// If the filter is empty, returns the original list unchanged.
func (f *Filter) Apply(records []*match.MatchRecord) []*match.MatchRecord {
	if f.IsEmpty() {
		return records
	}

	filtered := make([]*match.MatchRecord, 0, len(records))
	for _, rec := range records {
		if f.Matches(rec) {
			filtered = append(filtered, rec)
		}
	}

	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "From: 2026-01-01 | To: 2026-03-31 | Competitions: Binaka | Outcome: WIN"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom.Format(match.DateLayout)))
	}
	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo.Format(match.DateLayout)))
	}
	if len(f.Competitions) > 0 {
		parts = append(parts, fmt.Sprintf("Competitions: %s", strings.Join(f.Competitions, ", ")))
	}
	if len(f.Venues) > 0 {
		parts = append(parts, fmt.Sprintf("Venues: %s", strings.Join(f.Venues, ", ")))
	}
	if len(f.Teams) > 0 {
		parts = append(parts, fmt.Sprintf("Teams: %s", strings.Join(f.Teams, ", ")))
	}
	if f.Outcome != "" {
		parts = append(parts, fmt.Sprintf("Outcome: %s", f.Outcome))
	}
	if f.PendingOnly {
		parts = append(parts, "Pending only")
	}

	return strings.Join(parts, " | ")
}

// containsAny reports whether value contains one of the needles (case-insensitive).
// An empty needle list matches everything.
func containsAny(value string, needles []string) bool {
	if len(needles) == 0 {
		return true
	}
	lower := strings.ToLower(value)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(strings.TrimSpace(n))) {
			return true
		}
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
