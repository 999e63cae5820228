// internal/cli/root.go

// Package cli provides the command-line interface for the quote crawler.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/quotecrawl/internal/app"
	"github.com/law-makers/quotecrawl/internal/config"
	"github.com/law-makers/quotecrawl/internal/crawl"
	"github.com/law-makers/quotecrawl/internal/reqctx"
	"github.com/law-makers/quotecrawl/internal/ui"
)

// NewRootCmd builds the quotecrawl command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quotecrawl",
		Short: "Crawl a paginated quotes listing into a JSON file",
		Long: `Quotecrawl opens the start page in a browser session, extracts every quote
with its author and tags, follows the "Next →" link until there is none,
and writes all records to the output file in page order.`,
		Example: `  # Crawl the JavaScript-rendered listing into quotes.json
  quotecrawl

  # Keep each page's HTML under data_dumps/
  quotecrawl --dump

  # Fetch without a browser and write CSV
  quotecrawl --engine static --start-url http://quotes.toscrape.com/ -o quotes.csv`,
		Version:       "0.1.0",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCrawl,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	config.RegisterFlags(cmd)
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute(ctx context.Context) {
	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", ui.Error("Error:"), err)
		os.Exit(1)
	}
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	ctx := reqctx.WithRunContext(cmd.Context())
	a, err := app.New(ctx, cfg, app.Options{Stderr: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("Failed to close application")
		}
	}()

	result, err := a.Run(ctx)
	if err != nil {
		return err
	}

	if cfg.JSONLog {
		return nil
	}
	printSummary(cmd.OutOrStdout(), result, cfg.Quiet)
	return nil
}

func printSummary(w io.Writer, result *crawl.Result, quiet bool) {
	fmt.Fprintf(w, "%s %d quotes from %d pages saved to %s\n",
		ui.Success("✓"), result.Quotes, result.Pages, ui.Bold(result.Output))
	if quiet {
		return
	}
	if len(result.Dumps) > 0 {
		fmt.Fprintf(w, "  %s\n", ui.Info(fmt.Sprintf("%d page dumps written", len(result.Dumps))))
	}
	fmt.Fprintf(w, "  %s\n", ui.Dim(fmt.Sprintf("stopped: %s, took %s",
		result.Reason, result.Duration.Round(time.Millisecond))))
}
