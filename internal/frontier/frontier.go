// Package frontier enumerates the federation pages one crawl visits.
//
// Competition ids are walked in ascending order. Each competition's league page is
// fetched while building the frontier, both to decide whether the id exists and to
// read the phase selector it may carry. Because the id space has no directory
// listing, enumeration stops after a configurable run of consecutive empty ids; a
// sparse but non-empty tail past that run is missed, which is accepted.
package frontier

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/larraunpilota/fnp-results/internal/logger"
	"github.com/larraunpilota/fnp-results/internal/scraper"
)

// Strategy selects how phase ids are found for a competition
type Strategy string

const (
	// StrategyStatic iterates the configured phase id range
	StrategyStatic Strategy = "static"
	// StrategyDiscovered reads the phase selector of the competition page
	StrategyDiscovered Strategy = "discovered"
	// StrategyBoth uses the union of both
	StrategyBoth Strategy = "both"
)

const (
	DefaultEmptyStop    = 120
	DefaultMinPageBytes = 1024
)

// ParseStrategy validates a strategy name
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(name))); s {
	case StrategyStatic, StrategyDiscovered, StrategyBoth:
		return s, nil
	case "":
		return StrategyBoth, nil
	default:
		return "", fmt.Errorf("invalid phase strategy: %s (must be static, discovered or both)", name)
	}
}

// Config describes the id space to crawl
type Config struct {
	BaseURL  string
	Language string
	Season   int

	CompetitionFrom int
	CompetitionTo   int

	Strategy  Strategy
	PhaseFrom int
	PhaseTo   int

	// EmptyStop is the number of consecutive empty competition ids that ends
	// enumeration. Zero or less disables the early stop.
	EmptyStop int
	// MinPageBytes is the smallest body that can be a real results page
	MinPageBytes int
}

// Target is one page to crawl
type Target struct {
	Seq           int
	URL           string
	CompetitionID int
	// PhaseID is zero for league pages
	PhaseID int
	// Page is set when the page was already fetched while building the frontier
	Page *scraper.Page
}

// IsLeague reports whether the target is a competition's league page
func (t Target) IsLeague() bool {
	return t.PhaseID == 0
}

// Stats summarises one frontier build
type Stats struct {
	CompetitionsChecked int  `json:"competitions_checked"`
	CompetitionsEmpty   int  `json:"competitions_empty"`
	StoppedEarly        bool `json:"stopped_early"`
	LastCompetition     int  `json:"last_competition"`
}

// Builder builds the ordered, de-duplicated frontier
type Builder struct {
	cfg     Config
	fetcher scraper.PageFetcher
	log     *logger.Logger
}

// New creates a Builder
func New(cfg Config, fetcher scraper.PageFetcher, log *logger.Logger) *Builder {
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyBoth
	}
	if cfg.MinPageBytes < 0 {
		cfg.MinPageBytes = 0
	}
	if log == nil {
		log = logger.Default()
	}
	return &Builder{cfg: cfg, fetcher: fetcher, log: log}
}

// LeagueURL returns the league page URL of a competition
func (b *Builder) LeagueURL(competitionID int) string {
	return fmt.Sprintf("%s?idioma=%s&%s=%d&temp=%d",
		b.cfg.BaseURL, b.cfg.Language, scraper.CompetitionParam, competitionID, b.cfg.Season)
}

// PhaseURL returns the page URL of one elimination phase of a competition
func (b *Builder) PhaseURL(competitionID, phaseID int) string {
	return fmt.Sprintf("%s?idioma=%s&%s=%d&%s=%d&temp=%d",
		b.cfg.BaseURL, b.cfg.Language, scraper.CompetitionParam, competitionID,
		scraper.PhaseParam, phaseID, b.cfg.Season)
}

// Build walks the competition range and returns the targets in traversal order:
// each competition's league page followed by its phase pages.
//
// Only a cancelled context is returned as an error; the targets built so far are
// returned with it.
func (b *Builder) Build(ctx context.Context) ([]Target, Stats, error) {
	var (
		targets []Target
		stats   Stats
		empty   int
		seen    = make(map[string]bool)
	)

	add := func(t Target) {
		if seen[t.URL] {
			return
		}
		seen[t.URL] = true
		t.Seq = len(targets)
		targets = append(targets, t)
	}

	for id := b.cfg.CompetitionFrom; id <= b.cfg.CompetitionTo; id++ {
		if err := ctx.Err(); err != nil {
			return targets, stats, err
		}

		stats.CompetitionsChecked++
		stats.LastCompetition = id

		leagueURL := b.LeagueURL(id)
		page, phases, err := b.fetchLeague(ctx, leagueURL)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return targets, stats, err
		}
		if page == nil {
			empty++
			stats.CompetitionsEmpty++
			if b.cfg.EmptyStop > 0 && empty >= b.cfg.EmptyStop {
				stats.StoppedEarly = true
				b.log.Info("Stopping competition enumeration", logger.Fields{
					"competition_id":    id,
					"consecutive_empty": empty,
				})
				break
			}
			continue
		}
		empty = 0

		add(Target{URL: leagueURL, CompetitionID: id, Page: page})
		for _, phaseID := range b.phaseIDs(phases) {
			add(Target{URL: b.PhaseURL(id, phaseID), CompetitionID: id, PhaseID: phaseID})
		}
	}

	b.log.Info("Frontier built", logger.Fields{
		"targets":              len(targets),
		"competitions_checked": stats.CompetitionsChecked,
		"competitions_empty":   stats.CompetitionsEmpty,
		"stopped_early":        stats.StoppedEarly,
	})

	return targets, stats, nil
}

// fetchLeague fetches a competition's league page. It returns a nil page when the
// competition looks empty, along with the phase ids the page lists.
func (b *Builder) fetchLeague(ctx context.Context, url string) (*scraper.Page, []int, error) {
	page, err := b.fetcher.Fetch(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		b.log.Warn("Competition page unavailable", logger.Fields{"url": url}, err)
		return nil, nil, err
	}
	if page.Size() < b.cfg.MinPageBytes {
		b.log.Debug("Competition page too small", logger.Fields{"url": url, "bytes": page.Size()})
		return nil, nil, nil
	}

	doc, err := scraper.Parse(page)
	if err != nil {
		b.log.Warn("Competition page unparseable", logger.Fields{"url": url}, err)
		return nil, nil, nil
	}

	phases := doc.PhaseOptions()
	if !doc.HasResults() && len(phases) == 0 {
		b.log.Debug("Competition page has no results", logger.Fields{"url": url})
		return nil, nil, nil
	}

	return page, phases, nil
}

// phaseIDs returns the phase ids to visit for one competition, ascending
func (b *Builder) phaseIDs(discovered []int) []int {
	set := make(map[int]bool)

	if b.cfg.Strategy == StrategyDiscovered || b.cfg.Strategy == StrategyBoth {
		for _, id := range discovered {
			set[id] = true
		}
	}
	if b.cfg.Strategy == StrategyStatic || b.cfg.Strategy == StrategyBoth {
		if b.cfg.PhaseFrom > 0 {
			for id := b.cfg.PhaseFrom; id <= b.cfg.PhaseTo; id++ {
				set[id] = true
			}
		}
	}

	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
