// Package billboard scrapes the federation's weekly fixture billboard
// ("cartelera") and keeps the fixtures of the tracked club.
package billboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/larraunpilota/fnp-results/internal/alias"
	"github.com/larraunpilota/fnp-results/internal/logger"
	"github.com/larraunpilota/fnp-results/internal/match"
	"github.com/larraunpilota/fnp-results/internal/scraper"
)

// MinCells is the smallest row that can describe a fixture
const MinCells = 6

// Scraper reads the billboard page
type Scraper struct {
	fetcher scraper.PageFetcher
	club    string
	aliases *alias.Table
	log     *logger.Logger
}

// New creates a billboard Scraper for club
func New(fetcher scraper.PageFetcher, club string, aliases *alias.Table, log *logger.Logger) *Scraper {
	if log == nil {
		log = logger.Default()
	}
	return &Scraper{
		fetcher: fetcher,
		club:    strings.TrimSpace(club),
		aliases: aliases,
		log:     log,
	}
}

// Scrape fetches the billboard at url and returns the tracked club's fixtures
// in page order
func (s *Scraper) Scrape(ctx context.Context, url string) ([]*match.Fixture, error) {
	page, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching billboard: %w", err)
	}

	fixtures, err := s.Parse(page)
	if err != nil {
		return nil, err
	}

	s.log.Info("Billboard scraped", logger.Fields{
		"url":      url,
		"fixtures": len(fixtures),
	})
	return fixtures, nil
}

// Parse extracts the tracked club's fixtures from a fetched billboard page
func (s *Scraper) Parse(page *scraper.Page) ([]*match.Fixture, error) {
	doc, err := scraper.Parse(page)
	if err != nil {
		return nil, fmt.Errorf("parsing billboard: %w", err)
	}

	var fixtures []*match.Fixture
	doc.Selection().Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() < MinCells {
			return
		}

		text := func(i int) string {
			return alias.Clean(cells.Eq(i).Text())
		}

		home := s.aliases.Resolve(text(4))
		away := s.aliases.Resolve(text(5))
		if !s.aliases.ContainsTrackedClub(home, s.club) && !s.aliases.ContainsTrackedClub(away, s.club) {
			return
		}

		date := match.FormatDate(text(0))
		if date == "" {
			date = text(0)
		}

		f := &match.Fixture{
			Date:     date,
			Time:     text(1),
			Number:   text(2),
			Venue:    text(3),
			HomeTeam: home,
			AwayTeam: away,
		}
		if cells.Length() > MinCells {
			f.Competition = text(6)
		}
		fixtures = append(fixtures, f)
	})

	return fixtures, nil
}
