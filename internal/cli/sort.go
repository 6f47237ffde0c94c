package cli

import (
	"sort"
	"strings"

	"github.com/larraunpilota/fnp-results/internal/match"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate        SortOrder = "date"
	SortByCompetition SortOrder = "competition"
	SortByOutcome     SortOrder = "outcome"
)

// outcomeRank orders outcomes for SortByOutcome
var outcomeRank = map[match.Outcome]int{
	match.OutcomeWin:     0,
	match.OutcomeLoss:    1,
	match.OutcomeUnknown: 2,
}

// sortRecords sorts records in place. Ties keep snapshot order.
func sortRecords(records []*match.MatchRecord, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		sort.SliceStable(records, func(i, j int) bool {
			return compareByDate(records[i], records[j])
		})
	case SortByCompetition:
		sort.SliceStable(records, func(i, j int) bool {
			ci, cj := strings.ToLower(records[i].CompetitionName), strings.ToLower(records[j].CompetitionName)
			if ci != cj {
				return ci < cj
			}
			// If competitions are equal, sort by date
			return compareByDate(records[i], records[j])
		})
	case SortByOutcome:
		sort.SliceStable(records, func(i, j int) bool {
			ri, rj := outcomeRank[records[i].Outcome], outcomeRank[records[j].Outcome]
			if ri != rj {
				return ri < rj
			}
			return compareByDate(records[i], records[j])
		})
	}
}

// compareByDate compares two records by their date
// Returns true if record i should come before record j
func compareByDate(i, j *match.MatchRecord) bool {
	dateI := i.Time()
	dateJ := j.Time()

	// If both dates are valid, compare them
	if !dateI.IsZero() && !dateJ.IsZero() {
		return dateI.Before(dateJ)
	}

	// If only one date is valid, put the valid one first
	if !dateI.IsZero() {
		return true
	}
	return false
}
