package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/larraunpilota/fnp-results/internal/calendar"
	"github.com/larraunpilota/fnp-results/internal/config"
	"github.com/larraunpilota/fnp-results/internal/crawler"
	"github.com/larraunpilota/fnp-results/internal/frontier"
	"github.com/larraunpilota/fnp-results/internal/logger"
	"github.com/larraunpilota/fnp-results/internal/match"
	"github.com/larraunpilota/fnp-results/internal/normalize"
	"github.com/larraunpilota/fnp-results/internal/scraper"
	"github.com/larraunpilota/fnp-results/internal/storage"
)

var (
	flagFrom      int
	flagTo        int
	flagStrategy  string
	flagWorkers   int
	flagEmptyStop int
	flagCalendar  string
)

func newResultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Crawl competition pages and write the match snapshot",
		Long: `Crawls every competition and phase page in the configured id range, keeps
the matches of the tracked club, merges duplicates and atomically replaces the
snapshot file. A run interrupted before it finishes leaves the previous
snapshot untouched.`,
		Args: cobra.NoArgs,
		RunE: runResults,
	}

	cmd.Flags().IntVar(&flagFrom, "from", 0, "First competition id (overrides config)")
	cmd.Flags().IntVar(&flagTo, "to", 0, "Last competition id (overrides config)")
	cmd.Flags().StringVar(&flagStrategy, "strategy", "", "Phase strategy: static, discovered or both (overrides config)")
	cmd.Flags().IntVar(&flagWorkers, "workers", 0, "Concurrent page workers (overrides config)")
	cmd.Flags().IntVar(&flagEmptyStop, "empty-stop", 0, "Consecutive empty competitions before stopping (overrides config)")
	cmd.Flags().StringVar(&flagCalendar, "calendar", "", "Also write pending matches to this .ics file")

	return cmd
}

// RunSummary is what the results command reports
type RunSummary struct {
	Club       string         `json:"club"`
	Season     int            `json:"season"`
	Snapshot   string         `json:"snapshot"`
	Calendar   string         `json:"calendar,omitempty"`
	Matches    int            `json:"matches"`
	Wins       int            `json:"wins"`
	Losses     int            `json:"losses"`
	Pending    int            `json:"pending"`
	Byes       int            `json:"byes"`
	Targets    int            `json:"targets"`
	Frontier   frontier.Stats `json:"frontier"`
	Crawl      crawler.Stats  `json:"crawl"`
	Duration   string         `json:"duration"`
	FinishedAt time.Time      `json:"finished_at"`
}

func runResults(cmd *cobra.Command, args []string) error {
	format, err := parseFormat()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagFrom > 0 {
		cfg.Competitions.From = flagFrom
	}
	if flagTo > 0 {
		cfg.Competitions.To = flagTo
	}
	if flagStrategy != "" {
		cfg.Phases.Strategy = flagStrategy
	}
	if flagWorkers > 0 {
		cfg.Workers = flagWorkers
	}
	if flagEmptyStop > 0 {
		cfg.EmptyStop = flagEmptyStop
	}
	if flagCalendar != "" {
		cfg.CalendarOutput = flagCalendar
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := newRunLogger(cmd.ErrOrStderr(), cfg)
	metrics := logger.NewMetrics()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	summary, err := runPipeline(ctx, cfg, log, metrics)
	if err != nil {
		return err
	}

	if flagVerbose {
		log.Info("Run metrics", logger.Fields(metrics.GetSnapshot()))
	}

	return WriteSummary(cmd.OutOrStdout(), summary, format)
}

// runPipeline builds the frontier, crawls it and writes the snapshot. Nothing
// is written when ctx is cancelled.
func runPipeline(ctx context.Context, cfg *config.Config, log *logger.Logger, metrics *logger.Metrics) (*RunSummary, error) {
	start := time.Now()

	store, err := storage.New(cfg.Output)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	aliases, err := cfg.AliasTable()
	if err != nil {
		return nil, fmt.Errorf("loading aliases: %w", err)
	}

	fetcher, err := scraper.NewFetcher(cfg.FetcherOptions())
	if err != nil {
		return nil, fmt.Errorf("initializing fetcher: %w", err)
	}

	log.Info("Starting crawl", logger.Fields{
		"club":         cfg.Club,
		"season":       cfg.Season,
		"competitions": fmt.Sprintf("%d-%d", cfg.Competitions.From, cfg.Competitions.To),
		"strategy":     cfg.Phases.Strategy,
		"workers":      cfg.Workers,
	})

	targets, frontierStats, err := frontier.New(cfg.Frontier(), fetcher, log).Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("building frontier: %w", err)
	}
	metrics.SetGauge("frontier.targets", float64(len(targets)))

	c := crawler.New(fetcher, normalize.New(cfg.Club, aliases), cfg.Workers, log, metrics)
	result, err := c.Run(ctx, targets)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Crawl interrupted, snapshot left unchanged", logger.Fields{
				"records": len(result.Records),
			}, err)
		}
		return nil, fmt.Errorf("crawling: %w", err)
	}

	if err := store.WriteMatches(result.Records); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}

	summary := &RunSummary{
		Club:       cfg.Club,
		Season:     cfg.Season,
		Snapshot:   store.Path(),
		Matches:    len(result.Records),
		Targets:    len(targets),
		Frontier:   frontierStats,
		Crawl:      result.Stats,
		Duration:   time.Since(start).Round(time.Millisecond).String(),
		FinishedAt: time.Now().UTC(),
	}
	for _, rec := range result.Records {
		switch {
		case rec.IsBye():
			summary.Byes++
		case rec.IsPending():
			summary.Pending++
		case rec.Outcome == match.OutcomeWin:
			summary.Wins++
		case rec.Outcome == match.OutcomeLoss:
			summary.Losses++
		}
	}

	if cfg.CalendarOutput != "" {
		fixtures := match.PendingFixtures(result.Records)
		ics := calendar.GenerateICS(fixtures, cfg.Club)
		if err := storage.WriteFile(cfg.CalendarOutput, []byte(ics)); err != nil {
			return nil, fmt.Errorf("writing calendar: %w", err)
		}
		summary.Calendar = cfg.CalendarOutput
	}

	log.Info("Snapshot saved", logger.Fields{
		"path":    store.Path(),
		"matches": summary.Matches,
	})

	return summary, nil
}
