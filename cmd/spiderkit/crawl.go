package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/spiderkit/internal/config"
	"github.com/nao1215/spiderkit/internal/database"
	"github.com/nao1215/spiderkit/internal/engine"
	seclog "github.com/nao1215/spiderkit/internal/log"
	"github.com/nao1215/spiderkit/internal/model"
	"github.com/nao1215/spiderkit/internal/report"
	"github.com/nao1215/spiderkit/internal/urlutil"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url...]",
		Short: "Crawl sites and classify every fetched page",
		Long: `Crawl starts from one or more seed URLs, fetches pages within the seeds'
registrable domains, and classifies each page as item, navigation, mixed,
or unknown. The selected strategy decides which pages are emitted for
extraction and which links are followed:

  full             follow everything, emit item and mixed pages (default)
  navigation_only  map the site's category structure, emit nothing
  items_only       emit item pages without following their links
  pagination_only  walk pagination chains, emit item pages along them

Examples:
  # Crawl a shop with the default full strategy
  spiderkit crawl https://shop.example/

  # Discover products only, reading seeds from a file
  spiderkit crawl --strategy items_only --seed-file seeds.txt

  # Crawl two sites side by side with a Markdown report
  spiderkit crawl --round-robin --markdown -o report.md \
      https://shop.example/ https://books.example/

Configuration file (.spiderkit) example:
  defaults:
    requestsPerSecond: 2.0
  sites:
    shop.example:
      cookie: "session_id=abc123"
      depth: 5`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().StringP("strategy", "s", model.StrategyFull.String(),
		"Crawl strategy: full, navigation_only, items_only, or pagination_only")
	cmd.Flags().StringP("seed-file", "f", "",
		"File with one seed URL per line, appended to positional seeds")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum crawl recursion depth (0 fetches only the seeds)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to fetch per run")
	cmd.Flags().DurationP("max-duration", "D", 0,
		"Wall-clock budget for the run (0 means unbounded)")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of fetches in flight at once")
	cmd.Flags().Float64P("rate", "r", config.DefaultRequestsPerSecond,
		"Per-domain request rate in requests per second (0 disables)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().Bool("no-robots", false,
		"Ignore robots.txt (disallowed URLs are respected by default)")
	cmd.Flags().Bool("round-robin", false,
		"Alternate between seed domains on dequeue for multi-site crawls")
	cmd.Flags().Float64("emission-floor", config.DefaultEmissionFloor,
		"Minimum extraction probability for emitting an item")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .spiderkit in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Persistence flags
	cmd.Flags().Bool("no-db", false,
		"Do not save crawl results to the local database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Secure logging: URLs carry session tokens, seed lists carry
	// credentials, and both end up in crawl-decision logs.
	logger := seclog.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
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

// buildCrawlConfig creates a Config from cobra command flags.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Strategy, err = cmd.Flags().GetString("strategy")
	if err != nil {
		return nil, err
	}

	cfg.SeedFile, err = cmd.Flags().GetString("seed-file")
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.MaxDuration, err = cmd.Flags().GetDuration("max-duration")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.RequestsPerSecond, err = cmd.Flags().GetFloat64("rate")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	noRobots, err := cmd.Flags().GetBool("no-robots")
	if err != nil {
		return nil, err
	}
	cfg.RespectRobots = !noRobots

	cfg.DomainRoundRobin, err = cmd.Flags().GetBool("round-robin")
	if err != nil {
		return nil, err
	}

	cfg.EmissionFloor, err = cmd.Flags().GetFloat64("emission-floor")
	if err != nil {
		return nil, err
	}

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

	// Config-file defaults fill in flags the user left untouched.
	// CLI flags always win over the config file.
	if cfg.SiteConfigs.Defaults.Depth > 0 && !cmd.Flags().Changed("depth") {
		cfg.MaxDepth = cfg.SiteConfigs.Defaults.Depth
	}
	if cfg.SiteConfigs.Defaults.RequestsPerSecond > 0 && !cmd.Flags().Changed("rate") {
		cfg.RequestsPerSecond = cfg.SiteConfigs.Defaults.RequestsPerSecond
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	if cfg.SaveToDB {
		cfg.DBDir = config.XDGDataDir()
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments and the seed file together form the seed list
	cfg.Seeds = args
	if cfg.SeedFile != "" {
		seeds, err := config.LoadSeedList(cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load seed file %s: %w", cfg.SeedFile, err)
		}
		cfg.Seeds = append(cfg.Seeds, seeds...)
	}

	return cfg, nil
}

// runCrawl executes one crawl run and writes the report.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	mode, err := cfg.StrategyMode()
	if err != nil {
		return err
	}

	logger.Info("starting crawl",
		"strategy", cfg.Strategy,
		"seeds", len(cfg.Seeds),
		"max_depth", cfg.MaxDepth,
		"max_pages", cfg.MaxPages,
		"save_to_db", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.CrawlDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close() //nolint:errcheck // Best effort cleanup
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	client := &http.Client{Timeout: cfg.Timeout}

	fetcherOpts := []engine.HTTPFetcherOption{
		engine.WithUserAgent(cfg.UserAgent),
		engine.WithMaxBodySize(cfg.MaxBodySize),
	}
	if headers := buildSiteHeaders(cfg.SiteConfigs); len(headers) > 0 {
		fetcherOpts = append(fetcherOpts, engine.WithSiteHeaders(headers))
	}
	fetcher := engine.NewHTTPFetcher(client, fetcherOpts...)

	engineOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithMaxDepth(cfg.MaxDepth),
		engine.WithMaxPages(cfg.MaxPages),
		engine.WithConcurrency(cfg.Concurrency),
		engine.WithEmissionFloor(cfg.EmissionFloor),
		engine.WithKeepPages(),
	}
	if cfg.MaxDuration > 0 {
		engineOpts = append(engineOpts, engine.WithMaxDuration(cfg.MaxDuration))
	}
	if cfg.RequestsPerSecond > 0 {
		engineOpts = append(engineOpts, engine.WithRateLimit(cfg.RequestsPerSecond, 1))
	}
	if cfg.RespectRobots {
		engineOpts = append(engineOpts, engine.WithRobots(engine.NewCachedRobots(client, cfg.UserAgent)))
	}
	if cfg.DomainRoundRobin {
		engineOpts = append(engineOpts, engine.WithDomainRoundRobin())
	}
	if rates := buildDomainRates(cfg.SiteConfigs); len(rates) > 0 {
		engineOpts = append(engineOpts, engine.WithDomainRates(rates))
	}
	if filter := buildURLFilter(cfg.SiteConfigs); filter != nil {
		engineOpts = append(engineOpts, engine.WithURLFilter(filter))
	}
	if db != nil {
		engineOpts = append(engineOpts, engine.WithStore(db))
	}

	eng := engine.New(fetcher, mode, engineOpts...)

	startTime := time.Now()
	summary, err := eng.Run(ctx, cfg.Seeds)
	if err != nil && summary == nil {
		return err
	}
	if err != nil {
		// The crawl itself finished; only persistence failed. Report what
		// we have and surface the error afterwards.
		logger.Error("failed to save run", "error", err)
	}

	fmt.Fprintf(os.Stderr, "Crawl completed in %s\n\n", time.Since(startTime).Round(time.Millisecond))

	if reportErr := outputReport(cfg, summary); reportErr != nil {
		return reportErr
	}
	return err
}

// buildSiteHeaders flattens per-site cookies and headers into the
// per-domain header map the fetcher consumes.
func buildSiteHeaders(sites *config.File) map[string]map[string]string {
	if sites == nil {
		return nil
	}
	headers := make(map[string]map[string]string)
	for domain := range sites.Sites {
		sc := sites.GetSiteConfig(domain)
		merged := make(map[string]string, len(sc.Headers)+1)
		for name, value := range sc.Headers {
			merged[name] = value
		}
		if sc.Cookie != "" {
			merged["Cookie"] = sc.Cookie
		}
		if len(merged) > 0 {
			headers[domain] = merged
		}
	}
	return headers
}

// buildDomainRates collects per-site request-rate overrides.
func buildDomainRates(sites *config.File) map[string]float64 {
	if sites == nil {
		return nil
	}
	rates := make(map[string]float64)
	for domain, sc := range sites.Sites {
		if sc.RequestsPerSecond > 0 {
			rates[domain] = sc.RequestsPerSecond
		}
	}
	return rates
}

// buildURLFilter compiles the ignore/follow glob patterns into a single
// admission predicate, or nil when no site defines any pattern.
func buildURLFilter(sites *config.File) func(string) bool {
	if sites == nil {
		return nil
	}
	hasPatterns := len(sites.Defaults.IgnorePatterns) > 0 || len(sites.Defaults.FollowPatterns) > 0
	for _, sc := range sites.Sites {
		if len(sc.IgnorePatterns) > 0 || len(sc.FollowPatterns) > 0 {
			hasPatterns = true
		}
	}
	if !hasPatterns {
		return nil
	}

	return func(rawURL string) bool {
		sc := sites.GetSiteConfig(urlutil.RegistrableDomain(rawURL))
		if len(sc.IgnorePatterns) == 0 && len(sc.FollowPatterns) == 0 {
			return true
		}
		u, err := url.Parse(rawURL)
		if err != nil {
			return false
		}
		for _, pattern := range sc.IgnorePatterns {
			if ok, _ := path.Match(pattern, u.Path); ok {
				return false
			}
		}
		if len(sc.FollowPatterns) > 0 {
			for _, pattern := range sc.FollowPatterns {
				if ok, _ := path.Match(pattern, u.Path); ok {
					return true
				}
			}
			return false
		}
		return true
	}
}

// outputReport outputs the run summary in the requested format.
func outputReport(cfg *config.Config, summary *model.RunSummary) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports can carry URLs with credentials, so owner-only permissions
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck // Best effort cleanup
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(summary)
	return err
}
