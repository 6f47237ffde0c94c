package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/larraunpilota/fnp-results/internal/billboard"
	"github.com/larraunpilota/fnp-results/internal/calendar"
	"github.com/larraunpilota/fnp-results/internal/logger"
	"github.com/larraunpilota/fnp-results/internal/scraper"
	"github.com/larraunpilota/fnp-results/internal/storage"
)

var (
	flagFixturesOutput   string
	flagFixturesCalendar string
)

func newFixturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Scrape the weekly billboard for the club's upcoming matches",
		Args:  cobra.NoArgs,
		RunE:  runFixtures,
	}

	cmd.Flags().StringVar(&flagFixturesOutput, "fixtures-output", "", "Fixtures file (overrides config)")
	cmd.Flags().StringVar(&flagFixturesCalendar, "calendar", "", "Also write the fixtures to this .ics file")

	return cmd
}

func runFixtures(cmd *cobra.Command, args []string) error {
	format, err := parseFormat()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagFixturesOutput != "" {
		cfg.FixturesOutput = flagFixturesOutput
	}
	if flagFixturesCalendar != "" {
		cfg.CalendarOutput = flagFixturesCalendar
	}

	log := newRunLogger(cmd.ErrOrStderr(), cfg)

	store, err := storage.New(cfg.FixturesOutput)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	aliases, err := cfg.AliasTable()
	if err != nil {
		return fmt.Errorf("loading aliases: %w", err)
	}

	fetcher, err := scraper.NewFetcher(cfg.FetcherOptions())
	if err != nil {
		return fmt.Errorf("initializing fetcher: %w", err)
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	fixtures, err := billboard.New(fetcher, cfg.Club, aliases, log).Scrape(ctx, cfg.BillboardPageURL())
	if err != nil {
		return err
	}

	if err := store.WriteFixtures(fixtures); err != nil {
		return fmt.Errorf("saving fixtures: %w", err)
	}

	if cfg.CalendarOutput != "" {
		ics := calendar.GenerateICS(fixtures, cfg.Club)
		if err := storage.WriteFile(cfg.CalendarOutput, []byte(ics)); err != nil {
			return fmt.Errorf("writing calendar: %w", err)
		}
		log.Info("Calendar saved", logger.Fields{"path": cfg.CalendarOutput})
	}

	return WriteFixtures(cmd.OutOrStdout(), fixtures, format)
}
