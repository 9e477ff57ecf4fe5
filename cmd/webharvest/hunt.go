package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nozomi-k/webharvest/internal/config"
	"github.com/nozomi-k/webharvest/internal/log"
)

// NewHuntCmd creates the hunt command.
func NewHuntCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hunt [url...]",
		Short: "Search for a target phrase with depth-bounded crawling",
		Long: `Hunt visits pages breadth-first starting from the seed URL. A page's
links are followed only when its content contains the target phrase
(case-sensitive). The depth budget counts expansions, not link distance:
each page whose links are enqueued consumes one unit, and once the
budget is spent the already-queued pages are still visited but nothing
new is added.

Pages that fail to fetch or answer with a non-success status are
skipped the same way pages without the phrase are; the run continues.

Examples:
  # Find pages mentioning a product name, expanding up to 3 times
  webharvest hunt --phrase "Acme Widget" https://example.com

  # Check just the seed page without following any links
  webharvest hunt --phrase "maintenance" --no-follow https://example.com

  # Deeper hunt with a JSON report
  webharvest hunt --phrase "security" --depth 10 --json https://example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runHuntCmd,
	}

	addCommonFlags(cmd)

	cmd.Flags().StringP("phrase", "P", "",
		"Target phrase to search for (required, case-sensitive)")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum number of link expansions")
	cmd.Flags().Bool("no-follow", false,
		"Never follow links, even on matching pages")

	return cmd
}

// runHuntCmd executes the hunt command.
func runHuntCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	cfg.TargetPhrase, err = cmd.Flags().GetString("phrase")
	if err != nil {
		return err
	}
	if cfg.TargetPhrase == "" {
		return errors.New("a target phrase is required (use --phrase)")
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return err
	}

	noFollow, err := cmd.Flags().GetBool("no-follow")
	if err != nil {
		return err
	}
	cfg.FollowLinks = !noFollow

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runHarvest(ctx, cfg, "hunt", logger)
}
