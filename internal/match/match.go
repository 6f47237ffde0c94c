package match

import (
	"regexp"
	"strings"
)

// Outcome is the result of a match from the tracked club's point of view
type Outcome string

const (
	OutcomeWin     Outcome = "WIN"
	OutcomeLoss    Outcome = "LOSS"
	OutcomeUnknown Outcome = "UNKNOWN"
)

const (
	// LeaguePhase is the phase label of round-robin pages
	LeaguePhase = "LEAGUE"
	// ByeTeam replaces the missing side of a bye week
	ByeTeam = "BYE"
)

var setPattern = regexp.MustCompile(`^\d+-\d+$`)

// MatchRecord represents one official match involving the tracked club
type MatchRecord struct {
	Date            string   `json:"date"`
	Venue           string   `json:"venue"`
	HomeTeam        string   `json:"homeTeam"`
	AwayTeam        string   `json:"awayTeam"`
	Score           string   `json:"score"`
	Sets            []string `json:"sets"`
	CompetitionName string   `json:"competitionName"`
	PhaseName       string   `json:"phaseName"`
	Outcome         Outcome  `json:"outcome"`
	Official        bool     `json:"official"`
	SourceURL       string   `json:"sourceUrl"`
}

// Key identifies the real-world match behind a record
type Key struct {
	Date     string
	HomeTeam string
	AwayTeam string
	Score    string
}

// String renders the key the way it is logged
func (k Key) String() string {
	return strings.Join([]string{k.Date, k.HomeTeam, k.AwayTeam, k.Score}, "|")
}

// Key returns the natural key of the record
func (m *MatchRecord) Key() Key {
	return Key{
		Date:     m.Date,
		HomeTeam: m.HomeTeam,
		AwayTeam: m.AwayTeam,
		Score:    m.Score,
	}
}

// IsPending reports whether the match has no result yet
func (m *MatchRecord) IsPending() bool {
	return m.Score == ""
}

// IsBye reports whether one side of the record is the bye sentinel
func (m *MatchRecord) IsBye() bool {
	return m.HomeTeam == ByeTeam || m.AwayTeam == ByeTeam
}

// HasSets reports whether the record carries a per-set breakdown
func (m *MatchRecord) HasSets() bool {
	return len(m.Sets) > 0
}

// ValidSet reports whether s is a "<int>-<int>" set score
func ValidSet(s string) bool {
	return setPattern.MatchString(s)
}
