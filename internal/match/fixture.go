package match

import (
	"strings"
	"time"
)

// DefaultStartTime is used for fixtures whose time cell is empty
const DefaultStartTime = "18:00"

// Fixture is one announced match from the weekly billboard
type Fixture struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Number      string `json:"number"`
	Venue       string `json:"venue"`
	HomeTeam    string `json:"homeTeam"`
	AwayTeam    string `json:"awayTeam"`
	Competition string `json:"competition"`
}

// Start returns the fixture start in loc, falling back to DefaultStartTime
// when the time cell is missing or malformed. Returns the zero time if the
// date cannot be parsed.
func (f *Fixture) Start(loc *time.Location) time.Time {
	day := ParseDate(f.Date)
	if day.IsZero() {
		return time.Time{}
	}
	if loc == nil {
		loc = time.UTC
	}

	clock, err := time.Parse("15:04", strings.TrimSpace(f.Time))
	if err != nil {
		clock, _ = time.Parse("15:04", DefaultStartTime)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
}

// PendingFixtures turns the records that have no score yet into fixtures so
// they can be exported alongside the billboard. Byes are skipped.
func PendingFixtures(records []*MatchRecord) []*Fixture {
	var fixtures []*Fixture
	for _, rec := range records {
		if !rec.IsPending() || rec.IsBye() {
			continue
		}
		competition := rec.CompetitionName
		if rec.PhaseName != "" && rec.PhaseName != LeaguePhase {
			competition += " - " + rec.PhaseName
		}
		fixtures = append(fixtures, &Fixture{
			Date:        rec.Date,
			Venue:       rec.Venue,
			HomeTeam:    rec.HomeTeam,
			AwayTeam:    rec.AwayTeam,
			Competition: competition,
		})
	}
	return fixtures
}
