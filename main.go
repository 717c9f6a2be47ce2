package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cleantech100-scraper/config"
	"cleantech100-scraper/models"
	"cleantech100-scraper/scraper/cleantech"
	"cleantech100-scraper/scraper/fetch"
	"cleantech100-scraper/services"
	"cleantech100-scraper/storage"
	"cleantech100-scraper/utils"
)

const browserSettle = 2 * time.Second

func main() {
	// ================== Bootstrap ====================
	cfg, err := config.Load()
	if err != nil {
		utils.NewLogger(false).Error("Invalid configuration: %v", err)
		os.Exit(1)
	}
	logger := utils.NewLogger(cfg.Debug)

	logger.Info("Global Cleantech 100 Scraper")
	logger.Info("Fetch mode: %s | Rate delay: %dms | Retries: %d",
		cfg.FetchMode, cfg.RateLimitDelay, cfg.MaxRetries)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, logger)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config, logger *utils.Logger) int {
	// =============== Scraping ===================================
	fetcher, err := newFetcher(cfg)
	if err != nil {
		logger.Error("Failed to start fetcher: %v", err)
		return 1
	}
	defer fetcher.Close()

	scraper := cleantech.NewScraper(cfg, fetcher, logger)
	companies, err := scraper.Scrape(ctx)
	if err != nil {
		logger.Error("Scraping failed: %v", err)
		return 1
	}

	// ========= CSV ===========================
	csvWriter := storage.NewCSVWriter(cfg.CSVFilePath, logger)
	if err := csvWriter.WriteCompanies(companies); err != nil {
		logger.Error("Failed to write CSV: %v", err)
		return 1
	}

	// ========= Databases (optional) ============
	status := 0
	sinks, ok := openSinks(ctx, cfg, logger)
	if !ok {
		status = 1
	}
	for _, sink := range sinks {
		if err := save(ctx, sink.store, companies); err != nil {
			logger.Error("Failed to store companies in %s: %v", sink.name, err)
			status = 1
		}
		closeSink(sink, logger)
	}

	// ==== Summary ============================
	summary := services.NewSummaryService(logger).Generate(companies)
	services.PrintSummary(os.Stdout, summary)

	fmt.Println(" Done! Companies →", cfg.CSVFilePath)
	return status
}

// newFetcher picks the page loader for cfg.FetchMode. Browser pages get
// browserSettle on top of navigation for their scripts to run.
func newFetcher(cfg *config.Config) (fetch.Fetcher, error) {
	timeout := time.Duration(cfg.RequestTimeout) * time.Millisecond
	if cfg.FetchMode == config.FetchModeBrowser {
		browser, err := fetch.NewBrowserFetcher(cfg.UserAgent, browserSettle, timeout)
		if err != nil {
			return nil, err
		}
		return browser, nil
	}
	return fetch.NewHTTPFetcher(cfg.UserAgent, timeout), nil
}

type namedSink struct {
	name  string
	store storage.CompanyStorage
}

// openSinks connects the configured databases; ok is false if any failed
func openSinks(ctx context.Context, cfg *config.Config, logger *utils.Logger) (sinks []namedSink, ok bool) {
	ok = true
	if cfg.DatabaseURL != "" {
		pg, err := storage.NewPostgresWriter(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("Cannot connect to PostgreSQL: %v", err)
			ok = false
		} else {
			sinks = append(sinks, namedSink{"PostgreSQL", pg})
		}
	}
	if cfg.SQLitePath != "" {
		lite, err := storage.NewSQLiteWriter(ctx, cfg.SQLitePath, logger)
		if err != nil {
			logger.Error("Cannot open SQLite: %v", err)
			ok = false
		} else {
			sinks = append(sinks, namedSink{"SQLite", lite})
		}
	}
	return sinks, ok
}

func closeSink(sink namedSink, logger *utils.Logger) {
	if err := sink.store.Close(); err != nil {
		logger.Warn("Failed to close %s: %v", sink.name, err)
	}
}

func save(ctx context.Context, store storage.CompanyStorage, companies []models.Company) error {
	if err := store.CreateTable(ctx); err != nil {
		return err
	}
	return store.SaveCompanies(ctx, companies)
}
