package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
)

var (
	outputJSON bool

	lineItemName        string
	lineItemDescription string
	lineItemPrice       string

	historyLimit int
)

var clauseCmd = &cobra.Command{
	Use:   "clause",
	Short: "Manage clauses in quote documents",
}

var clauseAddCmd = &cobra.Command{
	Use:   "add [quote-number] [clause-name...]",
	Short: "Append a clause to the latest version of a quote",
	Long: `Appends the clause whose title appears in the given name to the latest
version of the quote and uploads the result as the next version.

If the clause is already present nothing is written.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runClauseAdd,
}

var clauseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available clauses",
	Args:  cobra.NoArgs,
	RunE:  runClauseList,
}

var lineItemCmd = &cobra.Command{
	Use:   "lineitem",
	Short: "Manage pricing rows in quote documents",
}

var lineItemAddCmd = &cobra.Command{
	Use:   "add [quote-number]",
	Short: "Add a row to the pricing table of the latest version",
	Args:  cobra.ExactArgs(1),
	RunE:  runLineItemAdd,
}

var revisionsCmd = &cobra.Command{
	Use:   "revisions [quote-number]",
	Short: "List stored versions of a quote",
	Args:  cobra.ExactArgs(1),
	RunE:  runRevisions,
}

var historyCmd = &cobra.Command{
	Use:   "history [quote-number]",
	Short: "Show recent edit attempts",
	Long:  `Shows journalled edit attempts, newest first. Without a quote number all quotes are shown.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	lineItemAddCmd.Flags().StringVar(&lineItemName, "name", "", "item name")
	lineItemAddCmd.Flags().StringVar(&lineItemDescription, "description", "", "short details")
	lineItemAddCmd.Flags().StringVar(&lineItemPrice, "price", "", "price, e.g. $500.00")

	for _, c := range []*cobra.Command{clauseListCmd, revisionsCmd, historyCmd} {
		c.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
	}
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries")

	clauseCmd.AddCommand(clauseAddCmd)
	clauseCmd.AddCommand(clauseListCmd)
	lineItemCmd.AddCommand(lineItemAddCmd)
	rootCmd.AddCommand(clauseCmd)
	rootCmd.AddCommand(lineItemCmd)
	rootCmd.AddCommand(revisionsCmd)
	rootCmd.AddCommand(historyCmd)
}

func runClauseAdd(cmd *cobra.Command, args []string) error {
	if quoteService == nil {
		return errors.New("quote service not configured")
	}

	out := quoteService.AddClause(cmd.Context(), args[0], strings.Join(args[1:], " "))
	return printOutcome(cmd, out)
}

func runLineItemAdd(cmd *cobra.Command, args []string) error {
	if quoteService == nil {
		return errors.New("quote service not configured")
	}

	out := quoteService.AddLineItem(cmd.Context(), args[0], domain.LineItem{
		Name:        lineItemName,
		Description: lineItemDescription,
		Price:       lineItemPrice,
	})
	return printOutcome(cmd, out)
}

// printOutcome prints a successful outcome, or returns the failure
// message as the command error.
func printOutcome(cmd *cobra.Command, out domain.Outcome) error {
	if !out.OK() {
		return errors.New(out.Message())
	}
	cmd.Println(out.Message())
	if out.PublicURL != "" {
		cmd.Printf("View: %s\n", out.PublicURL)
	}
	return nil
}

func runClauseList(cmd *cobra.Command, _ []string) error {
	if quoteService == nil {
		return errors.New("quote service not configured")
	}

	clauses, err := quoteService.Clauses(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load clauses: %w", err)
	}

	if outputJSON {
		return printJSON(cmd, clauses)
	}

	if len(clauses) == 0 {
		cmd.Println("No clauses configured.")
		return nil
	}
	for _, c := range clauses {
		cmd.Printf("  %s\n", c.Title)
	}
	cmd.Printf("\nTotal: %d clauses\n", len(clauses))
	return nil
}

func runRevisions(cmd *cobra.Command, args []string) error {
	if quoteService == nil {
		return errors.New("quote service not configured")
	}

	revisions, err := quoteService.ListRevisions(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list revisions: %w", err)
	}

	if outputJSON {
		return printJSON(cmd, revisions)
	}

	if len(revisions) == 0 {
		cmd.Printf("No files found for quote %s\n", args[0])
		return nil
	}
	for _, rev := range revisions {
		cmd.Printf("  v%-4d %s\n", rev.Number, rev.Name)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	if quoteService == nil {
		return errors.New("quote service not configured")
	}

	base := ""
	if len(args) == 1 {
		base = args[0]
	}

	records, err := quoteService.History(cmd.Context(), base, historyLimit)
	if errors.Is(err, domain.ErrNotImplemented) {
		return errors.New("journal is disabled (journal.backend = none)")
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if outputJSON {
		return printJSON(cmd, records)
	}

	if len(records) == 0 {
		cmd.Println("No history.")
		return nil
	}
	for i := range records {
		r := &records[i]
		line := fmt.Sprintf("%s  %-8s %-16s %s", r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Base, r.Status, r.Marker)
		switch {
		case r.Revision != "":
			line += "  -> " + r.Revision
		case r.Reason != "":
			line += "  (" + r.Reason + ")"
		}
		cmd.Println(line)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
