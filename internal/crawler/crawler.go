// Package crawler runs the fetch, extract and normalize steps over a frontier
// with a bounded pool of workers and merges the results into one canonical list.
package crawler

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/larraunpilota/fnp-results/internal/frontier"
	"github.com/larraunpilota/fnp-results/internal/logger"
	"github.com/larraunpilota/fnp-results/internal/match"
	"github.com/larraunpilota/fnp-results/internal/normalize"
	"github.com/larraunpilota/fnp-results/internal/scraper"
)

const DefaultWorkers = 4

// Stats counts what happened during one crawl
type Stats struct {
	PagesFetched     int `json:"pages_fetched"`
	PagesUnavailable int `json:"pages_unavailable"`
	PagesEmpty       int `json:"pages_empty"`
	RowsExtracted    int `json:"rows_extracted"`
	RowsDropped      int `json:"rows_dropped"`
	RowsUntracked    int `json:"rows_untracked"`
	RecordsRaw       int `json:"records_raw"`
	RecordsMerged    int `json:"records_merged"`
}

// Result is the outcome of a crawl
type Result struct {
	Records []*match.MatchRecord
	Stats   Stats
}

// Crawler processes frontier targets concurrently
type Crawler struct {
	fetcher    scraper.PageFetcher
	normalizer *normalize.Normalizer
	workers    int
	log        *logger.Logger
	metrics    *logger.Metrics
}

// New creates a Crawler. workers <= 0 uses DefaultWorkers.
func New(fetcher scraper.PageFetcher, normalizer *normalize.Normalizer, workers int, log *logger.Logger, metrics *logger.Metrics) *Crawler {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if log == nil {
		log = logger.Default()
	}
	if metrics == nil {
		metrics = logger.NewMetrics()
	}
	return &Crawler{
		fetcher:    fetcher,
		normalizer: normalizer,
		workers:    workers,
		log:        log,
		metrics:    metrics,
	}
}

// pageResult is what one worker produces for one target
type pageResult struct {
	done        bool
	records     []*match.MatchRecord
	fetched     bool
	unavailable bool
	extracted   int
	dropped     int
	untracked   int
}

// Run processes every target and merges the records in frontier order.
//
// Per-page and per-row failures are logged and counted, never returned. When ctx
// is cancelled no further pages are fetched and Run returns the records of the
// pages already processed together with the context error.
func (c *Crawler) Run(ctx context.Context, targets []frontier.Target) (*Result, error) {
	// one slot per target, each written by exactly one worker
	slots := make([]pageResult, len(targets))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i := range targets {
		if gCtx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			res, err := c.processTarget(gCtx, targets[i])
			if err != nil {
				return err
			}
			res.done = true
			slots[i] = res
			return nil
		})
	}

	runErr := g.Wait()

	result := &Result{}
	var collected []*match.MatchRecord
	for _, res := range slots {
		if !res.done {
			continue
		}
		if res.fetched {
			result.Stats.PagesFetched++
		}
		if res.unavailable {
			result.Stats.PagesUnavailable++
		}
		if res.fetched && res.extracted == 0 {
			result.Stats.PagesEmpty++
		}
		result.Stats.RowsExtracted += res.extracted
		result.Stats.RowsDropped += res.dropped
		result.Stats.RowsUntracked += res.untracked
		collected = append(collected, res.records...)
	}

	result.Stats.RecordsRaw = len(collected)
	result.Records = match.Merge(collected)
	result.Stats.RecordsMerged = len(result.Records)

	c.metrics.SetGauge("records.merged", float64(result.Stats.RecordsMerged))
	c.log.Debug("Crawl finished", logger.Fields{
		"club":    c.normalizer.Club(),
		"targets": len(targets),
		"records": result.Stats.RecordsMerged,
	})

	if runErr == nil {
		runErr = ctx.Err()
	}
	return result, runErr
}

// processTarget fetches, extracts and normalizes one page. An unavailable page is
// counted and skipped; any other fetch error, such as a cancelled context, stops
// the run.
func (c *Crawler) processTarget(ctx context.Context, target frontier.Target) (pageResult, error) {
	var res pageResult

	page := target.Page
	if page == nil {
		start := time.Now()
		fetched, err := c.fetcher.Fetch(ctx, target.URL)
		c.metrics.RecordTiming("fetch", time.Since(start))
		if err != nil {
			if !scraper.IsUnavailable(err) {
				return res, err
			}
			c.metrics.IncrCounter("pages.unavailable")
			c.log.Warn("Page unavailable", logger.Fields{"url": target.URL}, err)
			res.unavailable = true
			return res, nil
		}
		page = fetched
	}
	res.fetched = true
	c.metrics.IncrCounter("pages.fetched")

	doc, err := scraper.Parse(page)
	if err != nil {
		c.log.Warn("Page unparseable", logger.Fields{"url": target.URL}, err)
		return res, nil
	}

	rows := doc.Rows()
	res.extracted = len(rows)
	c.metrics.AddCounter("rows.extracted", int64(len(rows)))
	if len(rows) == 0 {
		c.log.Debug("No match rows on page", logger.Fields{"url": target.URL})
		return res, nil
	}

	info := normalize.Page{
		URL:             page.URL,
		CompetitionName: doc.CompetitionName(),
	}
	if name, isPhase := doc.PhaseName(); isPhase {
		info.PhaseName = name
	} else {
		info.PhaseName = match.LeaguePhase
	}

	for _, row := range rows {
		rec, err := c.normalizer.Normalize(row, info)
		switch {
		case errors.Is(err, normalize.ErrNotTracked):
			res.untracked++
			continue
		case err != nil:
			res.dropped++
			c.metrics.IncrCounter("rows.dropped")
			c.log.Debug("Row dropped", logger.Fields{"url": target.URL, "reason": err.Error()})
			continue
		}
		res.records = append(res.records, rec)
	}

	c.log.Debug("Page processed", logger.Fields{
		"url":     target.URL,
		"rows":    len(rows),
		"records": len(res.records),
	})

	return res, nil
}
