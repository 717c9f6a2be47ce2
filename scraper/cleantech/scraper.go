package cleantech

import (
	"bytes"
	"context"
	"fmt"

	"cleantech100-scraper/config"
	"cleantech100-scraper/models"
	"cleantech100-scraper/scraper/fetch"
	"cleantech100-scraper/utils"
)

// Scraper walks the Global Cleantech 100 list and each company's profile
type Scraper struct {
	cfg         *config.Config
	fetcher     fetch.Fetcher
	logger      *utils.Logger
	rateLimiter *utils.RateLimiter
}

// NewScraper creates a new Scraper
func NewScraper(cfg *config.Config, fetcher fetch.Fetcher, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:         cfg,
		fetcher:     fetcher,
		logger:      logger,
		rateLimiter: utils.NewRateLimiter(cfg.RateLimitDelay),
	}
}

// Scrape is the main entry point. It returns every listed company merged
// with its profile, in list order, or the first error.
func (s *Scraper) Scrape(ctx context.Context) ([]models.Company, error) {
	s.logger.Info("Loading list page %s", s.cfg.ListURL)

	rows, err := s.ScrapeList(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scrape failed: %w", err)
	}
	s.logger.Info("Found %d companies in the list", len(rows))

	companies := make([]models.Company, 0, len(rows))
	for i, row := range rows {
		url, ok := row[models.KeyURL]
		if !ok || url == "" {
			return nil, fmt.Errorf("row %d: %w", i+1, ErrMissingURL)
		}

		if i > 0 {
			s.logger.Debug("Waiting %v before next request", s.rateLimiter.Delay())
		}
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		detail, err := s.ScrapeDetails(ctx, url)
		// the pause is counted from when the page arrived
		s.rateLimiter.Restart()
		if err != nil {
			return nil, fmt.Errorf("company %d (%s): %w", i+1, url, err)
		}

		companies = append(companies, models.Merge(row, detail))
		s.logger.Info("%d added: %s", i+1, companies[len(companies)-1].Name())
	}

	s.logger.Info("Scraping complete. Total companies: %d", len(companies))
	return companies, nil
}

// ScrapeList fetches and parses the ranking table
func (s *Scraper) ScrapeList(ctx context.Context) ([]models.ListRow, error) {
	body, err := s.fetch(ctx, s.cfg.ListURL)
	if err != nil {
		return nil, err
	}
	return ParseList(bytes.NewReader(body), s.cfg.BaseURL)
}

// ScrapeDetails fetches one company page and parses its profile
func (s *Scraper) ScrapeDetails(ctx context.Context, url string) (models.DetailRecord, error) {
	s.logger.Debug("Fetching profile %s", url)
	body, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseDetail(string(body))
}

func (s *Scraper) fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := utils.RetryWithBackoff(ctx, s.cfg.MaxRetries, func() error {
		b, err := s.fetcher.Fetch(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	}, s.logger)
	return body, err
}
