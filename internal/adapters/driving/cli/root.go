// Package cli provides the od-drafter command line interface.
package cli

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/od-drafter/internal/core/ports/driving"
	"github.com/custodia-labs/od-drafter/internal/logger"
)

var (
	version = "dev"
	verbose bool

	quoteService    driving.QuoteService
	settingsService driving.SettingsService
	metricsHandler  http.Handler
)

// Services holds the driving ports the commands run against.
// Quote may be nil when the configured store cannot be opened; settings
// commands still work so the configuration can be repaired.
type Services struct {
	Quote    driving.QuoteService
	Settings driving.SettingsService
	Metrics  http.Handler
}

var rootCmd = &cobra.Command{
	Use:   "od-drafter",
	Short: "Versioned drafting for quote documents",
	Long: `od-drafter appends clauses and pricing rows to quote documents kept in a
blob store. Every edit writes a new revision (Q1.docx, Q1_v1.docx, ...)
and repeating an edit that is already present changes nothing.

Run 'od-drafter mcp serve' to expose the editing tools to AI assistants.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
}

// SetVersion sets the version reported by 'od-drafter version'.
func SetVersion(v string) {
	version = v
}

// SetServices injects the services used by the commands.
func SetServices(s Services) {
	quoteService = s.Quote
	settingsService = s.Settings
	metricsHandler = s.Metrics
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
