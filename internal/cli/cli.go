package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/larraunpilota/fnp-results/internal/config"
	"github.com/larraunpilota/fnp-results/internal/logger"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig  string
	flagEnvFile string
	flagFormat  string
	flagVerbose bool
	flagClub    string
	flagSeason  int
	flagOutput  string
	flagLevel   string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fnp-results",
		Short: "Scrape Navarre pelota federation results for one club",
		Long: `A CLI tool that crawls the fnpelota.com competition pages and builds a
canonical, duplicate-free JSON dataset of the matches played by one club.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Dotenv file with FNP_* overrides (ignored if missing)")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging (same as --log-level debug)")
	cmd.PersistentFlags().StringVar(&flagLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	cmd.PersistentFlags().StringVar(&flagClub, "club", "", "Tracked club (overrides config)")
	cmd.PersistentFlags().IntVar(&flagSeason, "season", 0, "Season year (overrides config)")
	cmd.PersistentFlags().StringVar(&flagOutput, "output", "", "Snapshot file (overrides config)")

	cmd.AddCommand(newResultsCmd())
	cmd.AddCommand(newFixturesCmd())
	cmd.AddCommand(newShowCmd())

	return cmd
}

// loadConfig reads the env file and config file, applies flag overrides and
// validates
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFile(flagEnvFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	if flagClub != "" {
		cfg.Club = flagClub
	}
	if flagSeason > 0 {
		cfg.Season = flagSeason
	}
	if flagOutput != "" {
		cfg.Output = flagOutput
	}
	if flagLevel != "" {
		cfg.LogLevel = flagLevel
	}
	if flagVerbose {
		cfg.LogLevel = string(logger.LevelDebug)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseFormat validates the --format flag
func parseFormat() (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}
	return format, nil
}

// newRunLogger creates the logger for one run, tagged with a fresh run id
func newRunLogger(w io.Writer, cfg *config.Config) *logger.Logger {
	log := logger.New(logger.ParseLevel(cfg.LogLevel), w).With(logger.Fields{"run_id": uuid.NewString()})
	logger.SetDefault(log)
	return log
}

// signalContext cancels on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
		os.Exit(ExitError)
	}
}

// errorMessage formats a command error for stderr. Configuration problems get
// their own prefix so they read apart from crawl failures.
func errorMessage(err error) string {
	if config.IsValidationError(err) {
		return fmt.Sprintf("Configuration error: %v (check --config, the FNP_* environment and flags)", err)
	}
	return fmt.Sprintf("Error: %v", err)
}
