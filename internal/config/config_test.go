package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/larraunpilota/fnp-results/internal/frontier"
	"github.com/larraunpilota/fnp-results/internal/scraper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Club != "LARRAUN" {
		t.Errorf("Club = %q", cfg.Club)
	}
	if cfg.EmptyStop != frontier.DefaultEmptyStop {
		t.Errorf("EmptyStop = %d", cfg.EmptyStop)
	}
	if cfg.RequestInterval != scraper.RequestInterval {
		t.Errorf("RequestInterval = %v", cfg.RequestInterval)
	}
	if cfg.Encoding != "windows-1252" {
		t.Errorf("Encoding = %q", cfg.Encoding)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
club: LARRAUN
season: 2026
competitions:
  from: 3059
  to: 3060
phases:
  strategy: static
  from: 20613
  to: 20616
empty_stop: 3
workers: 2
request_interval: 500ms
timeout: 20s
aliases:
  - match: "A. Balda - U. Arcelus"
    value: "LARRAUN – OBERENA (A. Balda - U. Arcelus)"
output: out/matches.json
log_level: warn
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Season != 2026 {
		t.Errorf("Season = %d", cfg.Season)
	}
	if cfg.Competitions.From != 3059 || cfg.Competitions.To != 3060 {
		t.Errorf("Competitions = %+v", cfg.Competitions)
	}
	if cfg.RequestInterval != 500*time.Millisecond {
		t.Errorf("RequestInterval = %v", cfg.RequestInterval)
	}
	if cfg.Timeout != 20*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Workers != 2 || cfg.EmptyStop != 3 {
		t.Errorf("Workers = %d, EmptyStop = %d", cfg.Workers, cfg.EmptyStop)
	}
	// unset fields keep their defaults
	if cfg.Language != "eu" || cfg.MinPageBytes != frontier.DefaultMinPageBytes {
		t.Errorf("Language = %q, MinPageBytes = %d", cfg.Language, cfg.MinPageBytes)
	}

	fc := cfg.Frontier()
	if fc.Strategy != frontier.StrategyStatic || fc.PhaseFrom != 20613 || fc.PhaseTo != 20616 {
		t.Errorf("Frontier() = %+v", fc)
	}

	opts := cfg.FetcherOptions()
	if opts.Interval != 500*time.Millisecond || opts.UserAgent != scraper.UserAgent {
		t.Errorf("FetcherOptions() = %+v", opts)
	}

	table, err := cfg.AliasTable()
	if err != nil {
		t.Fatalf("AliasTable failed: %v", err)
	}
	if table.Len() != 1 {
		t.Errorf("inline aliases should replace the defaults, got %d entries", table.Len())
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse([]byte("competitions: [1, 2")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.Output != DefaultOutput {
		t.Errorf("Output = %q", cfg.Output)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("club: OBERENA\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Club != "OBERENA" {
		t.Errorf("Club = %q", cfg.Club)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{
			name:      "blank club",
			modify:    func(c *Config) { c.Club = "  " },
			wantField: "club",
		},
		{
			name:      "inverted competition range",
			modify:    func(c *Config) { c.Competitions = RangeConfig{From: 10, To: 5} },
			wantField: "competitions",
		},
		{
			name:      "inverted phase range",
			modify:    func(c *Config) { c.Phases.From, c.Phases.To = 9, 1 },
			wantField: "phases",
		},
		{
			name:      "unknown strategy",
			modify:    func(c *Config) { c.Phases.Strategy = "random" },
			wantField: "phases.strategy",
		},
		{
			name:      "relative base url",
			modify:    func(c *Config) { c.BaseURL = "pub/modalidadComp.asp" },
			wantField: "base_url",
		},
		{
			name:      "bad billboard url",
			modify:    func(c *Config) { c.BillboardURL = "::" },
			wantField: "billboard_url",
		},
		{
			name:      "unknown log level",
			modify:    func(c *Config) { c.LogLevel = "loud" },
			wantField: "log_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !IsValidationError(err) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if ve := err.(*ValidationError); ve.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}

func TestAliasTable(t *testing.T) {
	cfg := Default()
	table, err := cfg.AliasTable()
	if err != nil {
		t.Fatalf("AliasTable failed: %v", err)
	}
	if table.Len() != len(DefaultAliases) {
		t.Errorf("expected default aliases, got %d entries", table.Len())
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "aliases.yaml")
	content := "- match: \"X. Goldaracena - E. Astibia\"\n  value: \"LARRAUN – ABAXITABIDEA (X. Goldaracena - E. Astibia)\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg.AliasFile = path
	table, err = cfg.AliasTable()
	if err != nil {
		t.Fatalf("AliasTable failed: %v", err)
	}
	if table.Len() != 1 {
		t.Errorf("expected 1 entry from file, got %d", table.Len())
	}

	cfg.AliasFile = filepath.Join(dir, "missing.yaml")
	if _, err := cfg.AliasTable(); err == nil {
		t.Error("expected error for missing alias file")
	}
}

func TestBillboardPageURL(t *testing.T) {
	cfg := Default()
	if got := cfg.BillboardPageURL(); got != "https://www.fnpelota.com/pub/cartelera.asp?idioma=eu" {
		t.Errorf("BillboardPageURL() = %q", got)
	}
	cfg.BillboardURL = "https://example.com/c.asp?idioma=es"
	if got := cfg.BillboardPageURL(); got != cfg.BillboardURL {
		t.Errorf("BillboardPageURL() = %q", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvClub, "ARAXES")
	t.Setenv(EnvSeason, "2027")
	t.Setenv(EnvOutput, "env/matches.json")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Parse([]byte("club: LARRAUN\nseason: 2025\nlog_level: error\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Club != "ARAXES" || cfg.Season != 2027 || cfg.Output != "env/matches.json" {
		t.Errorf("environment should override file values: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want the %s value", cfg.LogLevel, EnvLogLevel)
	}
}

func TestLoadEnvFile(t *testing.T) {
	if err := LoadEnvFile(""); err != nil {
		t.Errorf("empty path: %v", err)
	}
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing file should be ignored: %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(EnvUserAgent+"=test-agent/1.0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// register cleanup for the variable godotenv is about to set
	t.Setenv(EnvUserAgent, "")
	os.Unsetenv(EnvUserAgent)

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile failed: %v", err)
	}
	if cfg := Default(); cfg.UserAgent != "test-agent/1.0" {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
}
