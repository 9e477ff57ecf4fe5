package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/nozomi-k/webharvest/internal/config"
	"github.com/nozomi-k/webharvest/internal/database"
	"github.com/nozomi-k/webharvest/internal/log"
	"github.com/nozomi-k/webharvest/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past crawl runs from the history database",
		Long: `History lists past runs recorded in the crawl database, newest first.

With --seed, the most recent full report for that seed URL is printed
instead of the run listing.

Examples:
  # List the last 20 runs
  webharvest history

  # Show the latest report for a seed
  webharvest history --seed https://example.com

  # Same, as JSON
  webharvest history --seed https://example.com --json`,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().StringP("seed", "s", "", "Show the latest report for this seed URL")
	cmd.Flags().BoolP("json", "j", false, "Output the seed report as JSON")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	logger := log.NewSecureLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	seed, err := cmd.Flags().GetString("seed")
	if err != nil {
		return err
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	db, err := database.Open(config.XDGDataDir(), database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return fmt.Errorf("no crawl history found (run a crawl first): %w", err)
	}
	defer db.Close()

	if seed != "" {
		return showLatestReport(cmd, db, seed, asJSON)
	}

	return listRuns(cmd, db, limit)
}

// listRuns prints the run history as a table.
func listRuns(cmd *cobra.Command, db *database.CrawlDB, limit int) error {
	runs, err := db.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to load run history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
		return nil
	}

	tbl := table.New("When", "Mode", "Seed", "Visited", "Failed").
		WithWriter(cmd.OutOrStdout())
	for _, run := range runs {
		tbl.AddRow(
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Mode,
			run.Seed,
			run.PagesVisited,
			run.PagesFailed,
		)
	}
	tbl.Print()

	return nil
}

// showLatestReport prints the most recent report stored for a seed.
func showLatestReport(cmd *cobra.Command, db *database.CrawlDB, seed string, asJSON bool) error {
	runReport, err := db.GetLatestRunReport(cmd.Context(), seed)
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}
	if runReport == nil {
		return fmt.Errorf("no runs recorded for %s", seed)
	}

	var writer report.Writer
	if asJSON {
		writer = report.NewJSONWriter(cmd.OutOrStdout())
	} else {
		writer = report.NewSimpleWriter(cmd.OutOrStdout())
	}

	_, err = writer.Write(runReport)
	return err
}
