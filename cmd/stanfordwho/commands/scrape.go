package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"stanfordwho-parser/internal/app"
	"stanfordwho-parser/internal/config"
	"stanfordwho-parser/internal/dom"
	"stanfordwho-parser/internal/dom/rodpage"
	"stanfordwho-parser/internal/dom/static"
	"stanfordwho-parser/internal/fetcher"
	"stanfordwho-parser/internal/normalize"
	"stanfordwho-parser/internal/observability"
	"stanfordwho-parser/internal/scraper"
	"stanfordwho-parser/internal/storage"
	csvsink "stanfordwho-parser/internal/storage/csv"
	"stanfordwho-parser/internal/storage/mssql"
)

var scrapeFlags struct {
	url           string
	output        string
	wait          int
	followProfile bool
	noLoginWait   bool
	headless      bool
	static        bool
	maxPages      int
}

func init() {
	f := scrapeCmd.Flags()
	f.StringVar(&scrapeFlags.url, "url", "", "Start URL (http(s) or file://).")
	f.StringVar(&scrapeFlags.output, "output", "", "Output CSV path.")
	f.IntVar(&scrapeFlags.wait, "wait", 0, "Seconds to wait for result cards on each page.")
	f.BoolVar(&scrapeFlags.followProfile, "follow-profile", false, "Open profile pages in a new tab when a card has no email.")
	f.BoolVar(&scrapeFlags.noLoginWait, "no-login-wait", false, "Do not wait for manual sign-in before scraping.")
	f.BoolVar(&scrapeFlags.headless, "headless", false, "Run Chrome headless.")
	f.BoolVar(&scrapeFlags.static, "static", false, "Parse fetched HTML without a browser.")
	f.IntVar(&scrapeFlags.maxPages, "max-pages", 0, "Stop after N pages (0 = all).")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--url <start url>] [--output <people.csv>]",
	Short: "Walks the directory result pages and writes name,email,affiliation,department rows.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(resolveConfigPath())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyScrapeFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid flags: %w", err)
		}

		logger := observability.NewLogger(observability.Options{
			Path:       cfg.Observability.LogPath,
			Level:      cfg.Observability.LogLevel,
			MaxSizeMB:  cfg.Observability.MaxSizeMB,
			MaxBackups: cfg.Observability.MaxBackups,
			MaxAgeDays: cfg.Observability.MaxAgeDays,
		})
		defer func() { _ = logger.Sync() }()

		ctx, cancel := app.GracefulShutdown(cmd.Context(), logger)
		defer cancel()

		started := time.Now()
		res, err := runScrape(ctx, cfg, logger)
		if res.stats != nil {
			printSummary(cfg, res, time.Since(started))
		}
		return err
	},
}

func applyScrapeFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("url") {
		cfg.Scrape.StartURL = scrapeFlags.url
	}
	if f.Changed("output") {
		cfg.Scrape.OutputPath = scrapeFlags.output
	}
	if f.Changed("wait") {
		cfg.Scrape.WaitTimeoutS = scrapeFlags.wait
	}
	if f.Changed("follow-profile") {
		cfg.Scrape.FollowProfile = scrapeFlags.followProfile
	}
	if f.Changed("no-login-wait") {
		cfg.Scrape.SkipLoginWait = scrapeFlags.noLoginWait
	}
	if f.Changed("headless") {
		cfg.Rod.Headless = scrapeFlags.headless
	}
	if f.Changed("static") {
		cfg.Rod.Enabled = !scrapeFlags.static
	}
	if f.Changed("max-pages") {
		cfg.Scrape.MaxPages = scrapeFlags.maxPages
	}
}

type scrapeResult struct {
	stats  *app.SessionStats
	mirror *mssql.Repository
}

// runScrape открывает страницу (и проходит ручной вход) до того, как
// перезаписать выходной CSV.
func runScrape(ctx context.Context, cfg *config.Config, logger *observability.Logger) (scrapeResult, error) {
	var res scrapeResult

	selectors, err := cfg.Selectors()
	if err != nil {
		return res, fmt.Errorf("failed to load selectors: %w", err)
	}

	page, closePage, err := openPage(ctx, cfg, logger)
	if err != nil {
		return res, err
	}
	defer closePage()

	sink, mirror, err := openSink(cfg, logger)
	if err != nil {
		return res, err
	}
	res.mirror = mirror

	norm := normalize.NewNormalizer(normalize.Options{
		TrimNBSP:       cfg.Normalize.TrimNBSP,
		CollapseSpaces: cfg.Normalize.CollapseSpaces,
	})
	s := scraper.NewScraper(selectors, cfg.ScraperOptions(), norm, logger)
	session := app.NewSession(app.SessionOptionsFromConfig(cfg), s, sink, logger)

	res.stats, err = session.Run(ctx, page)
	return res, err
}

// openSink: CSV всегда, SQL Server: дополнительно, если включён.
func openSink(cfg *config.Config, logger *observability.Logger) (storage.RecordSink, *mssql.Repository, error) {
	out, err := csvsink.Create(cfg.Scrape.OutputPath)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Storage.Enabled {
		return out, nil, nil
	}

	repo, err := mssql.NewRepository(cfg.Storage.DSN, cfg.GetCommandTimeout(), cfg.Storage.TxPerPage, logger)
	if err != nil {
		_ = out.Close()
		return nil, nil, fmt.Errorf("failed to open mirror storage: %w", err)
	}
	logger.Info("Mirroring records to SQL Server", "session", repo.SessionID())
	return storage.MultiSink{out, repo}, repo, nil
}

func openPage(ctx context.Context, cfg *config.Config, logger *observability.Logger) (dom.Page, func(), error) {
	if !cfg.Rod.Enabled {
		page, err := static.Open(ctx, fetcher.NewFetcher(cfg, logger), cfg.Scrape.StartURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load start page: %w", err)
		}
		return page, func() {}, nil
	}

	browser, err := rodpage.Launch(ctx, rodpage.Options{
		ChromePath:      cfg.Rod.ChromePath,
		Headless:        cfg.Rod.Headless,
		PageTimeout:     cfg.GetRodPageTimeout(),
		WaitLoadTimeout: cfg.GetRodWaitLoadTimeout(),
	})
	if err != nil {
		return nil, nil, err
	}
	closeBrowser := func() {
		if err := browser.Close(); err != nil {
			logger.Warn("Failed to close browser", "error", err.Error())
		}
	}

	page, err := browser.OpenPage(cfg.Scrape.StartURL)
	if err != nil {
		closeBrowser()
		return nil, nil, err
	}

	if app.NeedsLoginWait(cfg.Scrape.StartURL, cfg.Scrape.SkipLoginWait) {
		if err := app.WaitForManualLogin(ctx, os.Stdin, os.Stdout); err != nil {
			closeBrowser()
			return nil, nil, err
		}
	}
	return page, closeBrowser, nil
}

func printSummary(cfg *config.Config, res scrapeResult, elapsed time.Duration) {
	stats := res.stats
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Pages", "Cards", "Records", "Skipped", "Empty pages", "Duplicates", "Stopped", "Elapsed"})
	t.AppendRow(table.Row{
		stats.Pages, stats.Cards, stats.Records, stats.Skipped,
		stats.EmptyPages, stats.Duplicates, stats.StoppedReason, elapsed.Round(time.Second).String(),
	})
	t.AppendFooter(table.Row{"Output", cfg.Scrape.OutputPath})
	if res.mirror != nil {
		t.AppendFooter(table.Row{"Mirrored", res.mirror.Mirrored(), "Session", res.mirror.SessionID()})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
