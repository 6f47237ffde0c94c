// Package config loads the run configuration from YAML and applies defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/larraunpilota/fnp-results/internal/alias"
	"github.com/larraunpilota/fnp-results/internal/frontier"
	"github.com/larraunpilota/fnp-results/internal/scraper"
)

const (
	DefaultClub         = "LARRAUN"
	DefaultLanguage     = "eu"
	DefaultBaseURL      = "https://www.fnpelota.com/pub/modalidadComp.asp"
	DefaultBillboardURL = "https://www.fnpelota.com/pub/cartelera.asp"
	DefaultOutput       = "data/resultados-larraun.json"
	DefaultFixtures     = "data/cartelera-larraun.json"
	DefaultWorkers      = 4
	DefaultLogLevel     = "info"
)

// DefaultAliases are the pair-to-club conversions used when neither an alias
// file nor inline aliases are configured
var DefaultAliases = []alias.Entry{
	{Match: "D. Centeno - B. Esnaola", Value: "LARRAUN – ARAXES (D. Centeno - B. Esnaola)"},
	{Match: "X. Goldaracena - E. Astibia", Value: "LARRAUN – ABAXITABIDEA (X. Goldaracena - E. Astibia)"},
	{Match: "A. Balda - U. Arcelus", Value: "LARRAUN – OBERENA (A. Balda - U. Arcelus)"},
	{Match: "M. Goikoetxea - G. Uitzi", Value: "LARRAUN – ARAXES (M. Goikoetxea - G. Uitzi)"},
}

// Config holds the whole run configuration.
type Config struct {
	Club         string `yaml:"club"`
	Season       int    `yaml:"season"`
	Language     string `yaml:"language"`
	BaseURL      string `yaml:"base_url"`
	BillboardURL string `yaml:"billboard_url"`

	Competitions RangeConfig `yaml:"competitions"`
	Phases       PhaseConfig `yaml:"phases"`

	EmptyStop    int `yaml:"empty_stop"`
	MinPageBytes int `yaml:"min_page_bytes"`
	Workers      int `yaml:"workers"`

	RequestInterval time.Duration `yaml:"request_interval"`
	Timeout         time.Duration `yaml:"timeout"`
	Encoding        string        `yaml:"encoding"`
	UserAgent       string        `yaml:"user_agent"`

	AliasFile string        `yaml:"alias_file"`
	Aliases   []alias.Entry `yaml:"aliases"`

	Output         string `yaml:"output"`
	FixturesOutput string `yaml:"fixtures_output"`
	CalendarOutput string `yaml:"calendar_output"`

	LogLevel string `yaml:"log_level"`
}

// RangeConfig is an inclusive id range.
type RangeConfig struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// PhaseConfig controls how phase pages are enumerated.
type PhaseConfig struct {
	Strategy string `yaml:"strategy"`
	From     int    `yaml:"from"`
	To       int    `yaml:"to"`
}

// ValidationError reports one invalid configuration field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Message)
}

// Environment variables that override the config file
const (
	EnvClub      = "FNP_CLUB"
	EnvSeason    = "FNP_SEASON"
	EnvOutput    = "FNP_OUTPUT"
	EnvUserAgent = "FNP_USER_AGENT"
	EnvAliasFile = "FNP_ALIAS_FILE"
	EnvLogLevel  = "FNP_LOG_LEVEL"
)

// Default returns a Config with the environment and every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyEnv()
	cfg.defaults()
	return cfg
}

// LoadEnvFile loads KEY=value pairs from a dotenv file into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvClub); v != "" {
		c.Club = v
	}
	if v := os.Getenv(EnvSeason); v != "" {
		if season, err := strconv.Atoi(v); err == nil {
			c.Season = season
		}
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.Output = v
	}
	if v := os.Getenv(EnvUserAgent); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv(EnvAliasFile); v != "" {
		c.AliasFile = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) defaults() {
	if c.Club == "" {
		c.Club = DefaultClub
	}
	if c.Season <= 0 {
		c.Season = 2025
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.BillboardURL == "" {
		c.BillboardURL = DefaultBillboardURL
	}
	if c.Competitions.From <= 0 {
		c.Competitions.From = 3000
	}
	if c.Competitions.To <= 0 {
		c.Competitions.To = 3500
	}
	if c.Phases.Strategy == "" {
		c.Phases.Strategy = string(frontier.StrategyBoth)
	}
	if c.Phases.From <= 0 {
		c.Phases.From = 20613
	}
	if c.Phases.To <= 0 {
		c.Phases.To = 20616
	}
	if c.EmptyStop <= 0 {
		c.EmptyStop = frontier.DefaultEmptyStop
	}
	if c.MinPageBytes <= 0 {
		c.MinPageBytes = frontier.DefaultMinPageBytes
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.RequestInterval <= 0 {
		c.RequestInterval = scraper.RequestInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = scraper.Timeout
	}
	if c.Encoding == "" {
		c.Encoding = scraper.DefaultEncoding
	}
	if c.UserAgent == "" {
		c.UserAgent = scraper.UserAgent
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.FixturesOutput == "" {
		c.FixturesOutput = DefaultFixtures
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Load reads a YAML config file, then applies environment overrides and
// defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data and applies defaults
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyEnv()
	cfg.defaults()
	return cfg, nil
}

// Validate checks the configuration before any page is fetched
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Club) == "" {
		return &ValidationError{Field: "club", Message: "must not be empty"}
	}
	if c.Competitions.From > c.Competitions.To {
		return &ValidationError{Field: "competitions", Message: fmt.Sprintf("from %d is after to %d", c.Competitions.From, c.Competitions.To)}
	}
	if c.Phases.From > c.Phases.To {
		return &ValidationError{Field: "phases", Message: fmt.Sprintf("from %d is after to %d", c.Phases.From, c.Phases.To)}
	}
	if _, err := frontier.ParseStrategy(c.Phases.Strategy); err != nil {
		return &ValidationError{Field: "phases.strategy", Message: err.Error()}
	}
	if err := checkURL("base_url", c.BaseURL); err != nil {
		return err
	}
	if err := checkURL("billboard_url", c.BillboardURL); err != nil {
		return err
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Field: "log_level", Message: fmt.Sprintf("unknown level %q", c.LogLevel)}
	}
	for i, e := range c.Aliases {
		if strings.TrimSpace(e.Match) == "" || strings.TrimSpace(e.Value) == "" {
			return &ValidationError{Field: "aliases", Message: fmt.Sprintf("entry %d needs both match and value", i)}
		}
	}
	return nil
}

func checkURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ValidationError{Field: field, Message: fmt.Sprintf("%q is not an absolute URL", raw)}
	}
	return nil
}

// IsValidationError reports whether err is a configuration problem
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AliasTable builds the alias table: the alias file when set, then inline
// entries, falling back to DefaultAliases when neither is configured
func (c *Config) AliasTable() (*alias.Table, error) {
	var entries []alias.Entry
	if c.AliasFile != "" {
		table, err := alias.Load(c.AliasFile)
		if err != nil {
			return nil, err
		}
		entries = append(entries, table.Entries()...)
	}
	entries = append(entries, c.Aliases...)

	if c.AliasFile == "" && len(c.Aliases) == 0 {
		entries = DefaultAliases
	}
	return alias.New(entries), nil
}

// Frontier returns the frontier builder settings
func (c *Config) Frontier() frontier.Config {
	strategy, _ := frontier.ParseStrategy(c.Phases.Strategy)
	return frontier.Config{
		BaseURL:         c.BaseURL,
		Language:        c.Language,
		Season:          c.Season,
		CompetitionFrom: c.Competitions.From,
		CompetitionTo:   c.Competitions.To,
		Strategy:        strategy,
		PhaseFrom:       c.Phases.From,
		PhaseTo:         c.Phases.To,
		EmptyStop:       c.EmptyStop,
		MinPageBytes:    c.MinPageBytes,
	}
}

// FetcherOptions returns the page fetcher settings
func (c *Config) FetcherOptions() scraper.Options {
	return scraper.Options{
		Timeout:   c.Timeout,
		Interval:  c.RequestInterval,
		UserAgent: c.UserAgent,
		Encoding:  c.Encoding,
	}
}

// BillboardPageURL returns the billboard URL with the configured language
func (c *Config) BillboardPageURL() string {
	if strings.Contains(c.BillboardURL, "?") {
		return c.BillboardURL
	}
	return c.BillboardURL + "?idioma=" + c.Language
}
