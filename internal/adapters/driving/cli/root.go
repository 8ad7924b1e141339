// Package cli provides the golf-loader command line interface.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
	"github.com/everydaystudy/golf-db-loader/internal/core/ports/driving"
	"github.com/everydaystudy/golf-db-loader/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

// SettingsFactory opens the settings service for a config file path.
// An empty path selects the default location.
type SettingsFactory func(configPath string) (driving.SettingsService, error)

// EngineFactory builds a sync engine for resolved settings. The returned
// closer releases the document store.
type EngineFactory func(ctx context.Context, settings *domain.Settings, opts EngineOptions) (driving.SyncEngine, io.Closer, error)

// EngineOptions carries per-invocation wiring choices.
type EngineOptions struct {
	// MetricsFile receives Prometheus text metrics when set.
	MetricsFile string
}

var (
	newSettings SettingsFactory
	newEngine   EngineFactory

	// settingsService is opened in PersistentPreRunE.
	settingsService driving.SettingsService
)

// Persistent flags.
var (
	configPath string
	verbose    bool
	logFile    string
)

var logCloser io.Closer

var rootCmd = &cobra.Command{
	Use:   "golf-loader",
	Short: "Load golf courses from OpenStreetMap into a document store",
	Long: `golf-loader fetches golf courses for US states from the Overpass API,
normalises them into course documents and syncs them into Firestore or a
local SQLite database. Courses that disappear from OpenStreetMap can be
marked stale and later purged.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.golf-loader/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to a rotating file instead of stderr")
}

// SetFactories installs the wiring used by commands.
func SetFactories(settings SettingsFactory, engine EngineFactory) {
	newSettings = settings
	newEngine = engine
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if logFile != "" {
		logCloser = logger.UseFile(logFile)
	}

	if cmd == versionCmd || newSettings == nil {
		return nil
	}
	svc, err := newSettings(configPath)
	if err != nil {
		return err
	}
	settingsService = svc
	return nil
}

func teardown() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	teardown()
	if err == nil {
		return ExitOK
	}
	rootCmd.PrintErrln("Error:", err)
	return exitCode(err)
}
