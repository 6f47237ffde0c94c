package frontier

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/larraunpilota/fnp-results/internal/logger"
	"github.com/larraunpilota/fnp-results/internal/scraper"
)

const base = "https://www.fnpelota.com/pub/modalidadComp.asp"

const resultsPage = `<html><body><h1>Binaka</h1><table>
<tr><td>2026/01/07</td><td>F</td><td>LARRAUN</td><td>22 - 18</td><td>OBERENA</td></tr>
</table></body></html>`

const phaseOnlyPage = `<html><body><h1>Binaka</h1>
<select name="idFaseEliminatoria"><option value="20615">Final</option><option value="20613">Cuartos</option></select>
</body></html>`

// fakeFetcher serves fixed bodies and records every URL it was asked for
type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	fetched []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*scraper.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, url)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, ok := f.pages[url]
	if !ok {
		return nil, &scraper.UnavailableError{URL: url, StatusCode: 404}
	}
	return &scraper.Page{URL: url, Body: body}, nil
}

func quietLogger() *logger.Logger {
	return logger.New(logger.LevelError, &bytes.Buffer{})
}

func testConfig() Config {
	return Config{
		BaseURL:         base,
		Language:        "eu",
		Season:          2025,
		CompetitionFrom: 1,
		CompetitionTo:   5,
		Strategy:        StrategyDiscovered,
		EmptyStop:       3,
		MinPageBytes:    10,
	}
}

func TestBuild_EarlyStop(t *testing.T) {
	cfg := testConfig()
	b := New(cfg, nil, quietLogger())
	fetcher := &fakeFetcher{pages: map[string]string{
		b.LeagueURL(1): resultsPage,
		b.LeagueURL(2): "",
		b.LeagueURL(3): "<html></html>",
		// id 4 is a 404
		b.LeagueURL(5): resultsPage,
	}}
	b = New(cfg, fetcher, quietLogger())

	targets, stats, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for _, url := range fetcher.fetched {
		if url == b.LeagueURL(5) {
			t.Fatal("competition 5 must never be fetched after the early stop")
		}
	}
	if len(fetcher.fetched) != 4 {
		t.Errorf("fetched %d pages, want 4", len(fetcher.fetched))
	}
	if !stats.StoppedEarly || stats.LastCompetition != 4 {
		t.Errorf("stats = %+v, want early stop after id 4", stats)
	}
	if len(targets) != 1 || targets[0].URL != b.LeagueURL(1) {
		t.Errorf("targets = %+v", targets)
	}
	if targets[0].Page == nil {
		t.Error("league target should carry the page fetched while probing")
	}
}

func TestBuild_EmptyRunResetByResults(t *testing.T) {
	cfg := testConfig()
	b := New(cfg, nil, quietLogger())
	fetcher := &fakeFetcher{pages: map[string]string{
		b.LeagueURL(1): resultsPage,
		b.LeagueURL(3): resultsPage,
		b.LeagueURL(5): resultsPage,
	}}
	b = New(cfg, fetcher, quietLogger())

	targets, stats, err := b.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.StoppedEarly {
		t.Error("gaps shorter than the threshold must not stop enumeration")
	}
	if len(targets) != 3 {
		t.Errorf("expected 3 targets, got %d", len(targets))
	}
}

func TestBuild_PhaseStrategies(t *testing.T) {
	tests := []struct {
		name      string
		strategy  Strategy
		wantPhase []int
	}{
		{"discovered", StrategyDiscovered, []int{20613, 20615}},
		{"static", StrategyStatic, []int{20614, 20615}},
		{"both", StrategyBoth, []int{20613, 20614, 20615}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.CompetitionFrom, cfg.CompetitionTo = 3060, 3060
			cfg.Strategy = tt.strategy
			cfg.PhaseFrom, cfg.PhaseTo = 20614, 20615

			b := New(cfg, nil, quietLogger())
			fetcher := &fakeFetcher{pages: map[string]string{b.LeagueURL(3060): phaseOnlyPage}}
			b = New(cfg, fetcher, quietLogger())

			targets, _, err := b.Build(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if len(targets) == 0 || !targets[0].IsLeague() {
				t.Fatalf("first target must be the league page: %+v", targets)
			}

			var phases []int
			for i, target := range targets {
				if target.Seq != i {
					t.Errorf("target %d has Seq %d", i, target.Seq)
				}
				if target.IsLeague() {
					continue
				}
				phases = append(phases, target.PhaseID)
				if target.URL != b.PhaseURL(3060, target.PhaseID) {
					t.Errorf("URL = %q", target.URL)
				}
				if target.Page != nil {
					t.Error("phase targets are fetched by the crawler")
				}
			}
			if !reflect.DeepEqual(phases, tt.wantPhase) {
				t.Errorf("phases = %v, want %v", phases, tt.wantPhase)
			}
		})
	}
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := New(testConfig(), &fakeFetcher{}, quietLogger())
	_, _, err := b.Build(ctx)
	if err != context.Canceled {
		t.Errorf("Build() error = %v, want context.Canceled", err)
	}
}

func TestURLs(t *testing.T) {
	b := New(testConfig(), nil, quietLogger())

	if got, want := b.LeagueURL(3060), base+"?idioma=eu&idCompeticion=3060&temp=2025"; got != want {
		t.Errorf("LeagueURL() = %q, want %q", got, want)
	}
	want := fmt.Sprintf("%s?idioma=eu&idCompeticion=3060&idFaseEliminatoria=20613&temp=2025", base)
	if got := b.PhaseURL(3060, 20613); got != want {
		t.Errorf("PhaseURL() = %q, want %q", got, want)
	}
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{"static": StrategyStatic, " Discovered ": StrategyDiscovered, "": StrategyBoth} {
		got, err := ParseStrategy(in)
		if err != nil || got != want {
			t.Errorf("ParseStrategy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseStrategy("random"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
