package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the blob store, document format, clause dictionary
and journal.

Settings are stored in config.toml in the od-drafter home directory
($OD_DRAFTER_HOME, default ~/.od-drafter). SUPABASE_URL and SUPABASE_KEY
override the stored Supabase credentials.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:     "get",
	Aliases: []string{"show"},
	Short:   "Show current settings",
	Args:    cobra.NoArgs,
	RunE:    runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting. Run 'od-drafter settings keys' for the list of keys.

Examples:
  od-drafter settings set store.backend supabase
  od-drafter settings set store.bucket od-files
  od-drafter settings set documents.format pdf`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runSettingsPath,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List recognised setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsPathCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Backend: %s\n", settings.Store.Backend)
	cmd.Printf("  Bucket: %s\n", settings.Store.Bucket)
	if settings.Store.Path != "" {
		cmd.Printf("  Path: %s\n", settings.Store.Path)
	}
	if settings.Store.URL != "" {
		cmd.Printf("  URL: %s\n", settings.Store.URL)
	}
	if settings.Store.Key != "" {
		cmd.Printf("  Key: %s\n", maskAPIKey(settings.Store.Key))
	}
	if settings.Store.PublicBaseURL != "" {
		cmd.Printf("  Public Base URL: %s\n", settings.Store.PublicBaseURL)
	}
	if settings.Store.CredentialsFile != "" {
		cmd.Printf("  Credentials File: %s\n", settings.Store.CredentialsFile)
	}
	cmd.Printf("  Rate Limit: %d/s\n", settings.Store.RateLimit)
	cmd.Printf("  Timeout: %s\n", settings.Store.Timeout)
	cmd.Println()

	cmd.Println("[Documents]")
	cmd.Printf("  Format: %s\n", settings.Documents.Format)
	cmd.Println()

	cmd.Println("[Clauses]")
	file := settings.Clauses.File
	if file == "" {
		file = "(default)"
	}
	cmd.Printf("  File: %s\n", file)
	cmd.Printf("  Watch: %t\n", settings.Clauses.Watch)
	cmd.Println()

	cmd.Println("[Commit]")
	cmd.Printf("  Collision Retries: %d\n", settings.Commit.CollisionRetries)
	cmd.Println()

	cmd.Println("[Journal]")
	cmd.Printf("  Backend: %s\n", settings.Journal.Backend)
	if settings.Journal.Path != "" {
		cmd.Printf("  Path: %s\n", settings.Journal.Path)
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}

	value := args[1]
	if args[0] == "store.key" {
		value = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", args[0], value)
	return nil
}

func runSettingsPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	cmd.Println(settingsService.Path())
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

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
