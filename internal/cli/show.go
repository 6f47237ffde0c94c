package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/larraunpilota/fnp-results/internal/filter"
	"github.com/larraunpilota/fnp-results/internal/storage"
)

var (
	flagDate        string
	flagCompetition []string
	flagVenue       []string
	flagTeam        []string
	flagOutcome     string
	flagPending     bool
	flagSort        string
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored match snapshot",
		Long: `Loads the snapshot written by 'results', applies the filters and prints
the matches sorted by date.

Dates accept a day (2026-01-07), a month (2026-01) or a range (2026-01-01..2026-03-31).`,
		Args: cobra.NoArgs,
		RunE: runShow,
	}

	cmd.Flags().StringVar(&flagDate, "date", "", "Only matches on this day, month or range")
	cmd.Flags().StringSliceVar(&flagCompetition, "competition", nil, "Only competitions containing this text (repeatable)")
	cmd.Flags().StringSliceVar(&flagVenue, "venue", nil, "Only venues containing this text (repeatable)")
	cmd.Flags().StringSliceVar(&flagTeam, "team", nil, "Only matches where a team contains this text (repeatable)")
	cmd.Flags().StringVar(&flagOutcome, "outcome", "", "Only matches with this outcome: win, loss or unknown")
	cmd.Flags().BoolVar(&flagPending, "pending", false, "Only matches without a score")
	cmd.Flags().StringVar(&flagSort, "sort", string(SortByDate), "Sort order: date, competition or outcome")

	return cmd
}

// buildFilter turns the show flags into a record filter
func buildFilter() (*filter.Filter, error) {
	f := filter.NewFilter()

	if flagDate != "" {
		from, to, err := filter.ParseDateRange(flagDate)
		if err != nil {
			return nil, err
		}
		f.DateFrom, f.DateTo = from, to
	}
	if flagOutcome != "" {
		outcome, err := filter.ParseOutcome(flagOutcome)
		if err != nil {
			return nil, err
		}
		f.Outcome = outcome
	}

	f.Competitions = append(f.Competitions, flagCompetition...)
	f.Venues = append(f.Venues, flagVenue...)
	f.Teams = append(f.Teams, flagTeam...)
	f.PendingOnly = flagPending

	return f, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	format, err := parseFormat()
	if err != nil {
		return err
	}

	order := SortOrder(strings.ToLower(flagSort))
	if order != SortByDate && order != SortByCompetition && order != SortByOutcome {
		return fmt.Errorf("invalid sort order: %s (must be 'date', 'competition' or 'outcome')", flagSort)
	}

	f, err := buildFilter()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Output)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}

	records, err := store.LoadMatches()
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	records = f.Apply(records)
	sortRecords(records, order)

	result := &ShowResult{
		Club:       cfg.Club,
		Filter:     f.String(),
		Matches:    records,
		MatchCount: len(records),
	}
	return WriteShow(cmd.OutOrStdout(), result, format, flagVerbose)
}
