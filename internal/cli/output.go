package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/larraunpilota/fnp-results/internal/match"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ShowResult contains the records printed by the show command
type ShowResult struct {
	Club       string               `json:"club"`
	Filter     string               `json:"filter"`
	Matches    []*match.MatchRecord `json:"matches"`
	MatchCount int                  `json:"match_count"`
}

// WriteSummary writes the results command summary in the specified format
func WriteSummary(w io.Writer, summary *RunSummary, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, summary)
	case FormatText:
		fmt.Fprintf(w, "Saved %d matches for %s (season %d) to %s\n",
			summary.Matches, summary.Club, summary.Season, summary.Snapshot)
		fmt.Fprintf(w, "  Wins: %d  Losses: %d  Pending: %d  Byes: %d\n",
			summary.Wins, summary.Losses, summary.Pending, summary.Byes)
		fmt.Fprintf(w, "  Pages: %d fetched, %d unavailable, %d without matches\n",
			summary.Crawl.PagesFetched, summary.Crawl.PagesUnavailable, summary.Crawl.PagesEmpty)
		if summary.Frontier.StoppedEarly {
			fmt.Fprintf(w, "  Stopped after competition %d (too many empty ids)\n", summary.Frontier.LastCompetition)
		}
		if summary.Calendar != "" {
			fmt.Fprintf(w, "  Calendar: %s\n", summary.Calendar)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteShow writes the show result in the specified format
func WriteShow(w io.Writer, result *ShowResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		if result.Matches == nil {
			result.Matches = []*match.MatchRecord{}
		}
		return writeJSON(w, result)
	case FormatText:
		return writeShowText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteFixtures writes billboard fixtures in the specified format
func WriteFixtures(w io.Writer, fixtures []*match.Fixture, format OutputFormat) error {
	switch format {
	case FormatJSON:
		if fixtures == nil {
			fixtures = []*match.Fixture{}
		}
		return writeJSON(w, fixtures)
	case FormatText:
		if len(fixtures) == 0 {
			fmt.Fprintln(w, "No fixtures found.")
			return nil
		}
		for _, f := range fixtures {
			clock := f.Time
			if clock == "" {
				clock = "--:--"
			}
			fmt.Fprintf(w, "%s %s  %s - %s\n", f.Date, clock, f.HomeTeam, f.AwayTeam)
			if f.Venue != "" || f.Competition != "" {
				fmt.Fprintf(w, "                  %s\n", joinNonEmpty(" | ", f.Competition, f.Venue))
			}
		}
		fmt.Fprintf(w, "\nTotal: %d fixtures\n", len(fixtures))
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeShowText outputs records as human-readable text
func writeShowText(w io.Writer, result *ShowResult, verbose bool) error {
	if result.MatchCount == 0 {
		fmt.Fprintln(w, "No matches found.")
		return nil
	}

	for _, rec := range result.Matches {
		score := rec.Score
		if score == "" {
			score = "-"
		}
		fmt.Fprintf(w, "%s  %-7s  %s  %s  %s\n", rec.Date, rec.Outcome, rec.HomeTeam, score, rec.AwayTeam)
		if verbose {
			fmt.Fprintf(w, "     Competition: %s\n", joinNonEmpty(" / ", rec.CompetitionName, rec.PhaseName))
			if rec.Venue != "" {
				fmt.Fprintf(w, "     Venue: %s\n", rec.Venue)
			}
			if rec.HasSets() {
				fmt.Fprintf(w, "     Sets: %s\n", strings.Join(rec.Sets, ", "))
			}
			fmt.Fprintf(w, "     Source: %s\n", rec.SourceURL)
		}
	}

	fmt.Fprintf(w, "\nTotal: %d matches", result.MatchCount)
	if result.Filter != "" && result.Filter != "No active filters" {
		fmt.Fprintf(w, " (%s)", result.Filter)
	}
	fmt.Fprintln(w)
	return nil
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
