package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/larraunpilota/fnp-results/internal/match"
)

// ParseDateRange parses a date range string into start and end times.
//
// Supported formats:
//   - "2026-01-07" - a single day
//   - "2026-01" - an entire month
//   - "2026-01-01..2026-03-31" - an inclusive range; either side may be omitted
//
// Returns (dateFrom, dateTo, error). Times are in UTC at 00:00:00.
func ParseDateRange(input string) (*time.Time, *time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("date range cannot be empty")
	}

	if from, to, ok := strings.Cut(input, ".."); ok {
		var fromPtr, toPtr *time.Time
		if from = strings.TrimSpace(from); from != "" {
			t, err := time.Parse(match.DateLayout, from)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid start date %q: %w", from, err)
			}
			fromPtr = &t
		}
		if to = strings.TrimSpace(to); to != "" {
			t, err := time.Parse(match.DateLayout, to)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid end date %q: %w", to, err)
			}
			toPtr = &t
		}
		if fromPtr == nil && toPtr == nil {
			return nil, nil, fmt.Errorf("date range needs at least one bound")
		}
		if fromPtr != nil && toPtr != nil && fromPtr.After(*toPtr) {
			return nil, nil, fmt.Errorf("start date must be before end date")
		}
		return fromPtr, toPtr, nil
	}

	if day, err := time.Parse(match.DateLayout, input); err == nil {
		return &day, &day, nil
	}

	if month, err := time.Parse("2006-01", input); err == nil {
		last := month.AddDate(0, 1, -1)
		return &month, &last, nil
	}

	return nil, nil, fmt.Errorf("unrecognized date range: %s", input)
}

// ParseOutcome validates an outcome name given on the command line
func ParseOutcome(input string) (match.Outcome, error) {
	switch o := match.Outcome(strings.ToUpper(strings.TrimSpace(input))); o {
	case "":
		return "", nil
	case match.OutcomeWin, match.OutcomeLoss, match.OutcomeUnknown:
		return o, nil
	default:
		return "", fmt.Errorf("invalid outcome: %s (must be WIN, LOSS or UNKNOWN)", input)
	}
}
