package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/spiderkit/internal/config"
	"github.com/nao1215/spiderkit/internal/database"
	"github.com/nao1215/spiderkit/internal/report"
)

// NewRunsCmd creates the runs command.
// This command lists and inspects crawl runs stored in the database.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List and inspect past crawl runs",
		Long: `Runs lists crawl runs stored in the local database, newest first.

Every crawl saves its summary and page records unless --no-db was given.
Use --run-id to print the full report of a single stored run, and --pages
to list that run's fetched pages.

Examples:
  # List the 20 most recent runs
  spiderkit runs

  # List every stored run
  spiderkit runs --limit 0

  # Show the full report for one run
  spiderkit runs --run-id 4f9c21aa-...

  # Show the report plus every fetched page
  spiderkit runs --run-id 4f9c21aa-... --pages

  # Machine-readable output
  spiderkit runs --json`,
		Args: cobra.NoArgs,
		RunE: runRunsCmd,
	}

	cmd.Flags().IntP("limit", "l", 20,
		"Maximum number of runs to list (0 lists everything)")
	cmd.Flags().StringP("run-id", "i", "",
		"Show the full report for the run with this ID")
	cmd.Flags().BoolP("pages", "p", false,
		"List the fetched pages of the run selected with --run-id")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")

	return cmd
}

// runRunsCmd executes the runs command.
func runRunsCmd(cmd *cobra.Command, _ []string) error {
	runID, err := cmd.Flags().GetString("run-id")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	withPages, err := cmd.Flags().GetBool("pages")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck // Best effort cleanup

	ctx := context.Background()

	if runID != "" {
		return showRun(ctx, db, runID, withPages, jsonOutput)
	}
	return listRuns(ctx, db, limit, jsonOutput)
}

// listRuns prints the stored run history, newest first.
func listRuns(ctx context.Context, db *database.CrawlDB, limit int, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No stored runs. Run 'spiderkit crawl' first.")
		return nil
	}

	fmt.Printf("%-36s  %-16s  %-19s  %8s  %8s  %s\n",
		"RUN ID", "STRATEGY", "STARTED", "FETCHED", "EMITTED", "REASON")
	fmt.Println(strings.Repeat("-", 110))
	for _, run := range runs {
		fmt.Printf("%-36s  %-16s  %-19s  %8d  %8d  %s\n",
			run.RunID,
			run.Strategy,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.PagesFetched,
			run.PagesEmitted,
			run.TerminationReason,
		)
	}
	return nil
}

// showRun prints the stored report for one run.
func showRun(ctx context.Context, db *database.CrawlDB, runID string, withPages, jsonOutput bool) error {
	summary, err := db.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if summary == nil {
		return fmt.Errorf("run not found: %s (use 'spiderkit runs' to list stored runs)", runID)
	}

	if jsonOutput {
		writer := report.NewJSONWriter(os.Stdout, report.WithPrettyPrint(), report.WithVersion(getVersion()))
		_, err := writer.Write(summary)
		return err
	}

	writer := report.NewSimpleWriter(os.Stdout)
	if _, err := writer.Write(summary); err != nil {
		return err
	}

	if withPages {
		return showPages(ctx, db, runID)
	}
	return nil
}

// showPages lists the stored page rows of a run in fetch order.
func showPages(ctx context.Context, db *database.CrawlDB, runID string) error {
	pages, err := db.GetPages(ctx, runID)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		fmt.Println("No pages stored for this run.")
		return nil
	}

	fmt.Printf("%-19s  %-12s  %5s  %5s  %s\n",
		"FETCHED", "TYPE", "CONF", "DEPTH", "URL")
	fmt.Println(strings.Repeat("-", 90))
	for _, p := range pages {
		fmt.Printf("%-19s  %-12s  %5.2f  %5d  %s\n",
			p.FetchedAt.Format(time.DateTime),
			p.PageType,
			p.Confidence,
			p.Depth,
			p.URL,
		)
	}
	return nil
}
