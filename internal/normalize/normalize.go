// Package normalize turns raw scraped rows into canonical match records.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/larraunpilota/fnp-results/internal/alias"
	"github.com/larraunpilota/fnp-results/internal/match"
	"github.com/larraunpilota/fnp-results/internal/scraper"
)

var (
	ErrBadDate     = errors.New("unparseable date")
	ErrMissingTeam = errors.New("missing team")
	ErrNotTracked  = errors.New("tracked club not involved")
)

var (
	scorePattern     = regexp.MustCompile(`(\d+)\s*-\s*(\d+)`)
	parenSetPattern  = regexp.MustCompile(`\(\s*(\d+)\s*-\s*(\d+)\s*\)`)
	bareSetsFragment = regexp.MustCompile(`^\d+-\d+(\s+\d+-\d+)*$`)
)

// Page describes where a row came from
type Page struct {
	URL             string
	CompetitionName string
	PhaseName       string
}

// Normalizer converts RawRows to MatchRecords for one tracked club.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	club    string
	aliases *alias.Table
}

// New creates a Normalizer for club using the given alias table
func New(club string, aliases *alias.Table) *Normalizer {
	return &Normalizer{
		club:    strings.TrimSpace(club),
		aliases: aliases,
	}
}

// Club returns the tracked club name
func (n *Normalizer) Club() string {
	return n.club
}

// Normalize converts one raw row. Rows that cannot be used come back with
// ErrBadDate, ErrMissingTeam or ErrNotTracked and are dropped by the caller.
func (n *Normalizer) Normalize(row scraper.RawRow, page Page) (*match.MatchRecord, error) {
	date := match.FormatDate(row.Date)
	if date == "" {
		return nil, fmt.Errorf("%w: %q", ErrBadDate, alias.Clean(row.Date))
	}

	homeBye := scraper.IsBye(row.Home)
	awayBye := scraper.IsBye(row.Away)

	home := n.team(row.Home, homeBye)
	away := n.team(row.Away, awayBye)
	if home == "" || away == "" {
		return nil, ErrMissingTeam
	}

	homeTracked := !homeBye && n.IsTracked(home)
	awayTracked := !awayBye && n.IsTracked(away)
	if !homeTracked && !awayTracked {
		return nil, fmt.Errorf("%w: %s vs %s", ErrNotTracked, home, away)
	}

	phase := alias.Clean(page.PhaseName)
	if phase == "" && scraper.QueryParam(page.URL, scraper.PhaseParam) == "" {
		phase = match.LeaguePhase
	}

	rec := &match.MatchRecord{
		Date:            date,
		Venue:           alias.Clean(row.Venue),
		HomeTeam:        home,
		AwayTeam:        away,
		Sets:            []string{},
		CompetitionName: alias.Clean(page.CompetitionName),
		PhaseName:       phase,
		Outcome:         match.OutcomeUnknown,
		Official:        true,
		SourceURL:       page.URL,
	}

	if row.Bye || homeBye || awayBye {
		return rec, nil
	}

	homeScore, awayScore, ok := ParseScore(row.Score)
	if !ok {
		return rec, nil
	}
	rec.Score = fmt.Sprintf("%d - %d", homeScore, awayScore)
	rec.Sets = append(ParseSets(row.SetFragments), ParseSetsColumn(row.SetsColumn)...)
	rec.Outcome = Outcome(homeTracked, awayTracked, homeScore, awayScore)

	return rec, nil
}

// IsTracked reports whether a resolved team label belongs to the tracked club
func (n *Normalizer) IsTracked(label string) bool {
	return n.aliases.ContainsTrackedClub(label, n.club)
}

func (n *Normalizer) team(text string, bye bool) string {
	if bye {
		return match.ByeTeam
	}
	return n.aliases.Resolve(text)
}

// ParseScore finds the first "int - int" pair in text
func ParseScore(text string) (int, int, bool) {
	m := scorePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	home, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	away, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return home, away, true
}

// ParseSets collects the parenthesized "int-int" groups of the score cell's
// nested fragments in order. Anything else in a fragment, including a bare
// "int-int", is ignored. Missing sets are never inferred.
func ParseSets(fragments []string) []string {
	sets := []string{}
	for _, fragment := range fragments {
		for _, g := range parenSetPattern.FindAllStringSubmatch(fragment, -1) {
			if set := canonicalSet(g[1], g[2]); match.ValidSet(set) {
				sets = append(sets, set)
			}
		}
	}
	return sets
}

// ParseSetsColumn reads a dedicated sets cell. Parenthesized groups are used
// when present; otherwise the cell must consist only of "int-int" tokens.
func ParseSetsColumn(text string) []string {
	cleaned := alias.Clean(text)
	if cleaned == "" {
		return nil
	}
	if sets := ParseSets([]string{cleaned}); len(sets) > 0 {
		return sets
	}
	if strings.Contains(cleaned, "(") || !bareSetsFragment.MatchString(cleaned) {
		return nil
	}
	var sets []string
	for _, token := range strings.Fields(cleaned) {
		a, b, _ := strings.Cut(token, "-")
		set := canonicalSet(a, b)
		if !match.ValidSet(set) {
			return nil
		}
		sets = append(sets, set)
	}
	return sets
}

func canonicalSet(a, b string) string {
	return strings.TrimSpace(a) + "-" + strings.TrimSpace(b)
}

// Outcome decides the tracked club's result.
//
// A derby between two tracked sides counts as a win. Otherwise the tracked
// side needs the strictly higher score to win.
func Outcome(homeTracked, awayTracked bool, homeScore, awayScore int) match.Outcome {
	switch {
	case homeTracked && awayTracked:
		return match.OutcomeWin
	case homeTracked:
		if homeScore > awayScore {
			return match.OutcomeWin
		}
		return match.OutcomeLoss
	case awayTracked:
		if awayScore > homeScore {
			return match.OutcomeWin
		}
		return match.OutcomeLoss
	default:
		return match.OutcomeUnknown
	}
}
