package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nozomi-k/webharvest/internal/config"
	"github.com/nozomi-k/webharvest/internal/crawler"
	"github.com/nozomi-k/webharvest/internal/database"
	"github.com/nozomi-k/webharvest/internal/fetcher"
	"github.com/nozomi-k/webharvest/internal/log"
	"github.com/nozomi-k/webharvest/internal/model"
	"github.com/nozomi-k/webharvest/internal/pipeline"
	"github.com/nozomi-k/webharvest/internal/probe"
	"github.com/nozomi-k/webharvest/internal/report"
	"github.com/nozomi-k/webharvest/internal/sink"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url...]",
		Short: "Crawl websites and harvest their content",
		Long: `Crawl follows every link on every page depth-first, with no depth
limit, visiting each URL at most once per run. For each fetched page the
headings, paragraphs, meta tags, and form fields are appended to a
per-domain content.txt, email addresses to emails.txt, and referenced
images and videos are downloaded alongside them.

Before the crawl starts, the seed's robots.txt Disallow entries are
reported and a handful of commonly exposed directories are probed. Both
are informational; neither restricts the crawl.

Examples:
  # Crawl a single site
  webharvest crawl https://example.com

  # Crawl several sites concurrently
  webharvest crawl https://example.com https://example.org

  # Skip media downloads and JS scanning, write a JSON report
  webharvest crawl --no-media --no-js-scan --json https://example.com

Configuration file (.webharvest) example:
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
    example.org:
      depth: 5`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	addCommonFlags(cmd)

	return cmd
}

// addCommonFlags registers the flags shared by the crawl and hunt commands.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to fetch per run")
	cmd.Flags().StringP("user-agent", "u", "",
		"Fixed User-Agent header (default: a random browser User-Agent per request)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of seeds crawled concurrently")

	cmd.Flags().StringP("output-dir", "O", config.DefaultOutputDirName,
		"Directory for per-domain artifacts (content.txt, emails.txt, media)")
	cmd.Flags().String("error-log", config.DefaultErrorLogName,
		"Append-only error log file")
	cmd.Flags().Bool("no-media", false,
		"Skip downloading referenced images and videos")
	cmd.Flags().Bool("no-js-scan", false,
		"Skip keyword scanning of inline and external JavaScript")
	cmd.Flags().Bool("no-db", false,
		"Skip recording the run in the crawl history database")

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .webharvest in current or config directory)")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().String("csv", "",
		"Also export visited pages as CSV to the given file")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runHarvest(ctx, cfg, "scrape", logger)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("output-dir")
	if err != nil {
		return nil, err
	}

	cfg.ErrorLogPath, err = cmd.Flags().GetString("error-log")
	if err != nil {
		return nil, err
	}

	noMedia, err := cmd.Flags().GetBool("no-media")
	if err != nil {
		return nil, err
	}
	cfg.DownloadMedia = !noMedia

	noJSScan, err := cmd.Flags().GetBool("no-js-scan")
	if err != nil {
		return nil, err
	}
	cfg.ScanJS = !noJSScan

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	cfg.DBDir = config.XDGDataDir()

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.CSVExport, err = cmd.Flags().GetString("csv")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Positional arguments are the seed URLs
	cfg.Seeds = args

	return cfg, nil
}

// runHarvest executes the traversal in the given mode for every seed.
func runHarvest(ctx context.Context, cfg *config.Config, mode string, logger *slog.Logger) error {
	if len(cfg.Seeds) == 0 {
		return errors.New("no seeds provided (specify one or more URLs as arguments)")
	}

	logger.Info("starting run",
		"mode", mode,
		"seeds", cfg.Seeds,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.CrawlDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	errLog := sink.NewErrorLog(cfg.ErrorLogPath, logger)

	factory := func(seed string) *pipeline.Pipeline {
		return buildPipelineForSeed(seed, mode, cfg, db, errLog, logger)
	}

	if len(cfg.Seeds) > 1 && cfg.BatchSize > 1 {
		return runBatch(ctx, cfg, mode, factory, logger)
	}

	return runSequential(ctx, cfg, mode, factory, logger)
}

// runSequential crawls seeds one at a time with a randomized politeness
// delay between runs.
func runSequential(ctx context.Context, cfg *config.Config, mode string, factory func(string) *pipeline.Pipeline, logger *slog.Logger) error {
	delay := pipeline.NewDelayStep(cfg.MinRunDelay, cfg.MaxRunDelay, logger)

	for i, seed := range cfg.Seeds {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		runReport := model.NewRunReport(seed, mode)
		if cfg.TargetPhrase != "" {
			runReport.TargetPhrase = cfg.TargetPhrase
		}

		fmt.Printf("Crawling %s...\n", seed)
		startTime := time.Now()

		p := factory(seed)
		if err := p.Execute(ctx, runReport); err != nil {
			logger.Error("run failed", "seed", seed, "error", err)
			fmt.Fprintf(os.Stderr, "Run error for %s: %v\n", seed, err)
			continue
		}
		runReport.Finish()

		elapsed := time.Since(startTime)
		fmt.Printf("Run completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, runReport, len(cfg.Seeds) > 1); err != nil {
			logger.Error("report failed", "seed", seed, "error", err)
		}

		if i < len(cfg.Seeds)-1 {
			if err := delay.Do(ctx, runReport); err != nil {
				return err
			}
		}
	}

	return nil
}

// runBatch crawls seeds concurrently using the BatchProcessor.
func runBatch(ctx context.Context, cfg *config.Config, mode string, factory func(string) *pipeline.Pipeline, logger *slog.Logger) error {
	fmt.Printf("Starting batch run of %d seeds (concurrency: %d)...\n\n",
		len(cfg.Seeds), cfg.BatchSize)

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(mode, factory,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	reports, err := bp.ProcessBatch(ctx, cfg.Seeds)

	for i, runReport := range reports {
		if runReport == nil {
			continue
		}
		fmt.Printf("[%d/%d] Run completed: %s\n", i+1, len(cfg.Seeds), runReport.Seed)
		if reportErr := outputReport(cfg, runReport, len(cfg.Seeds) > 1); reportErr != nil {
			logger.Error("report failed", "seed", runReport.Seed, "error", reportErr)
		}
	}

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch run completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// buildPipelineForSeed assembles the per-seed workflow: probes, traversal,
// and persistence, all sharing one fetcher.
func buildPipelineForSeed(seed, mode string, cfg *config.Config, db *database.CrawlDB, errLog *sink.ErrorLog, logger *slog.Logger) *pipeline.Pipeline {
	siteCfg := siteConfigFor(cfg, seed)

	fetchOpts := []fetcher.Option{
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithLogger(logger),
	}
	if cfg.UserAgent != "" {
		fetchOpts = append(fetchOpts, fetcher.WithUserAgent(cfg.UserAgent))
	}
	fetch := fetcher.New(cfg.Timeout, fetchOpts...)

	maxDepth := cfg.MaxDepth
	if siteCfg.Depth > 0 {
		maxDepth = siteCfg.Depth
	}

	spiderOpts := []crawler.SpiderOption{
		crawler.WithFollowLinks(cfg.FollowLinks),
		crawler.WithMaxDepth(maxDepth),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithErrorSink(errLog),
		crawler.WithSpiderLogger(logger),
		crawler.WithRequestOptions(fetcher.RequestOptions{
			Headers:   siteCfg.Headers,
			Cookie:    siteCfg.Cookie,
			UserAgent: siteCfg.UserAgent,
		}),
	}

	// The content sink only matters in scrape mode; hunts record matches
	// without writing artifacts.
	if mode == "scrape" {
		harvestOpts := []sink.HarvesterOption{
			sink.WithHarvesterLogger(logger),
		}
		if cfg.DownloadMedia {
			harvestOpts = append(harvestOpts, sink.WithMediaFetcher(fetch))
		}
		if cfg.ScanJS {
			harvestOpts = append(harvestOpts, sink.WithJSKeywords(cfg.JSKeywords))
		}
		spiderOpts = append(spiderOpts,
			crawler.WithContentSink(sink.NewHarvester(cfg.OutputDir, harvestOpts...)))
	}

	spider := crawler.NewSpider(fetch, spiderOpts...)
	prober := probe.NewProber(fetch, logger)

	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)

	p.AddSteps(
		pipeline.NewRobotsStep(prober),
		pipeline.NewOpenDirStep(prober),
	)

	if mode == "hunt" {
		p.AddStep(pipeline.NewHuntStep(spider, cfg.TargetPhrase))
	} else {
		p.AddStep(pipeline.NewScrapeStep(spider))
	}

	if db != nil {
		p.AddStep(pipeline.NewPersistStep(db, logger))
	}

	return p
}

// siteConfigFor returns the merged site configuration for a seed URL.
func siteConfigFor(cfg *config.Config, seed string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}

	host := seed
	if u, err := url.Parse(seed); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}

	return cfg.SiteConfigs.GetSiteConfig(host)
}

// reportPathFor derives the output path for one seed's report. With a
// single seed the configured path is used as-is. With several seeds the
// seed's hostname is inserted before the extension so consecutive runs
// do not truncate each other's files.
func reportPathFor(path, seed string, multi bool) string {
	if path == "" || !multi {
		return path
	}

	host := seed
	if u, err := url.Parse(seed); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}

	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + host + ext
}

// outputReport outputs the run report in the requested format. multi
// indicates the run covers several seeds, in which case file outputs get
// per-seed names.
func outputReport(cfg *config.Config, runReport *model.RunReport, multi bool) error {
	var output *os.File
	if cfg.ReportFile != "" {
		reportPath := reportPathFor(cfg.ReportFile, runReport.Seed, multi)

		dir := filepath.Dir(reportPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports may contain harvested content that should only be
		// readable by the owner.
		f, err := os.OpenFile(reportPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	if cfg.CSVExport != "" {
		csvPath := reportPathFor(cfg.CSVExport, runReport.Seed, multi)
		if err := exportCSV(csvPath, runReport); err != nil {
			return err
		}
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output)
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output)
	}

	_, err := writer.Write(runReport)
	return err
}

// exportCSV writes the visited-page records to a CSV file.
func exportCSV(path string, runReport *model.RunReport) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	_, err = report.NewCSVWriter(f).Write(runReport)
	return err
}
