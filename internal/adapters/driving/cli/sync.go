package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
	"github.com/everydaystudy/golf-db-loader/internal/core/ports/driving"
	"github.com/everydaystudy/golf-db-loader/internal/logger"
)

// Flags for sync.
var (
	syncStates        []string
	syncAll           bool
	syncDryRun        bool
	syncSkipUnchanged bool
	syncMarkStale     bool
	syncPurgeDays     int
	syncRunID         string
	syncConcurrency   int
	syncSample        int
	syncMetricsFile   string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise golf courses from OpenStreetMap",
	Long: `Fetches golf courses for the selected US states from the Overpass API,
normalises them and writes new or changed courses to the document store.

Without --state every state is synchronised. With --mark-stale, courses in a
successfully fetched state that were not seen by this run are flagged stale.
With --purge-stale-days N, courses stale for at least N days are deleted.

Exit status is 0 when every state completed, 3 when some states could not be
fetched, 2 for invalid flags or settings and 1 when the run aborted.`,
	Example: `  golf-loader sync --state CA --state NV --dry-run
  golf-loader sync --all --skip-unchanged --mark-stale --purge-stale-days 30`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringSliceVarP(&syncStates, "state", "s", nil, "state code to sync (repeatable)")
	syncCmd.Flags().BoolVar(&syncAll, "all", false, "sync every state (default when no --state is given)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "fetch and compare without writing")
	syncCmd.Flags().BoolVar(&syncSkipUnchanged, "skip-unchanged", false, "skip full writes when the fingerprint is unchanged")
	syncCmd.Flags().BoolVar(&syncMarkStale, "mark-stale", false, "flag courses not seen by this run as stale")
	syncCmd.Flags().IntVar(&syncPurgeDays, "purge-stale-days", 0, "delete courses stale for at least N days (0 disables)")
	syncCmd.Flags().StringVar(&syncRunID, "run-id", "", "run identifier (default run-YYYYMMDDHHMMSS-xxxxxxxx)")
	syncCmd.Flags().IntVarP(&syncConcurrency, "concurrency", "c", 1, "states processed in parallel (default from settings)")
	syncCmd.Flags().IntVar(&syncSample, "sample", 10, "documents printed as JSON in a dry run")
	syncCmd.Flags().StringVar(&syncMetricsFile, "metrics-file", "", "write Prometheus metrics for the run to this file")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if settingsService == nil || newEngine == nil {
		return errors.New("sync engine not configured")
	}

	if syncAll && len(syncStates) > 0 {
		return &usageError{err: errors.New("--all and --state cannot be combined")}
	}
	if syncPurgeDays < 0 {
		return &domain.ConfigError{Field: "purge-stale-days", Value: strconv.Itoa(syncPurgeDays), Reason: "must not be negative"}
	}
	if syncSample < 0 {
		return &domain.ConfigError{Field: "sample", Value: strconv.Itoa(syncSample), Reason: "must not be negative"}
	}
	// Unknown codes must fail before the store is opened.
	if _, err := domain.USStates().Resolve(syncStates); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("settings from %s: %w", settingsService.Path(), err)
	}

	concurrency := settings.Sync.Concurrency
	if cmd.Flags().Changed("concurrency") {
		concurrency = syncConcurrency
	}
	if concurrency < 1 {
		return &domain.ConfigError{Field: "concurrency", Value: strconv.Itoa(concurrency), Reason: "must be at least 1"}
	}

	ctx := cmd.Context()
	engine, closer, err := newEngine(ctx, settings, EngineOptions{MetricsFile: syncMetricsFile})
	if err != nil {
		return fmt.Errorf("open %s store: %w", settings.Store.Backend, err)
	}
	defer func() {
		if err := closer.Close(); err != nil {
			logger.Warn("Closing store: %v", err)
		}
	}()

	opts := driving.RunOptions{
		RunID:          syncRunID,
		Partitions:     syncStates,
		Preview:        syncDryRun,
		SkipUnchanged:  syncSkipUnchanged,
		MarkStale:      syncMarkStale,
		PurgeStaleDays: syncPurgeDays,
		Concurrency:    concurrency,
	}
	if syncDryRun {
		opts.SampleSize = syncSample
	}

	summary, runErr := engine.Run(ctx, opts)
	if summary == nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	writeSummary(out, summary, isTerminal(out))
	if syncDryRun && len(summary.Sample) > 0 {
		if err := writeSample(out, summary.Sample); err != nil {
			return fmt.Errorf("write sample: %w", err)
		}
	}

	switch summary.Status {
	case domain.RunOK:
		return nil
	case domain.RunDegraded:
		return &exitError{code: ExitDegraded, err: runErr}
	default:
		return &exitError{code: ExitAborted, err: runErr}
	}
}
