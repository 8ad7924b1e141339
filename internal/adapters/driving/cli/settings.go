package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage loader settings",
	Long: `View and change settings stored in the config file.

Environment variables OVERPASS_API_URL, GOOGLE_CLOUD_PROJECT,
GOOGLE_CLOUD_FIRESTORE_DATABASE, GOOGLE_APPLICATION_CREDENTIALS and
GOLF_LOADER_STORE take precedence over the file.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show resolved settings",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Example: `  golf-loader settings set store.backend sqlite
  golf-loader settings set overpass.rate_per_second 1`,
	Args: usageArgs(cobra.ExactArgs(2)),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("settings from %s: %w", settingsService.Path(), err)
	}

	cmd.Printf("Settings (%s)\n", settingsService.Path())
	cmd.Println()

	cmd.Println("[Overpass]")
	cmd.Printf("  URL: %s\n", settings.Overpass.URL)
	if settings.Overpass.RatePerSecond > 0 {
		cmd.Printf("  Rate: %g requests/s\n", settings.Overpass.RatePerSecond)
	} else {
		cmd.Println("  Rate: unthrottled")
	}
	cmd.Printf("  Timeout: %ds\n", settings.Overpass.TimeoutSeconds)
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Backend: %s\n", settings.Store.Backend)
	cmd.Printf("  Collection: %s\n", settings.Store.Collection)
	cmd.Println()

	cmd.Println("[Firestore]")
	cmd.Printf("  Project: %s\n", orNotSet(settings.Firestore.Project))
	cmd.Printf("  Database: %s\n", orDefault(settings.Firestore.Database, "(default)"))
	cmd.Printf("  Credentials: %s\n", orDefault(settings.Firestore.CredentialsFile, "application default"))
	cmd.Println()

	cmd.Println("[SQLite]")
	cmd.Printf("  Data dir: %s\n", orDefault(settings.SQLite.DataDir, "~/.golf-loader/data"))
	cmd.Println()

	cmd.Println("[Sync]")
	cmd.Printf("  Concurrency: %d\n", settings.Sync.Concurrency)

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("%s updated.\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func orNotSet(s string) string {
	return orDefault(s, "(not set)")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
