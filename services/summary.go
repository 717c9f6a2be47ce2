package services

import (
	"strings"
	"unicode/utf8"

	"cleantech100-scraper/models"
	"cleantech100-scraper/utils"
)

// SummaryService computes counts from the merged dataset
type SummaryService struct {
	logger *utils.Logger
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Generate counts companies overall, with a video, and per region,
// sector and country
func (s *SummaryService) Generate(companies []models.Company) *models.Summary {
	summary := &models.Summary{
		ByRegion:  make(map[string]int),
		BySector:  make(map[string]int),
		ByCountry: make(map[string]int),
	}

	if len(companies) == 0 {
		s.logger.Warn("No companies to summarize")
		return summary
	}

	for _, c := range companies {
		summary.TotalCompanies++

		// rows without a video carry a bare newline
		if utf8.RuneCountInString(c.Field(models.KeyVideo)) > 10 {
			summary.WithVideo++
		}

		count(summary.ByRegion, c.Field(models.KeyRegion))
		count(summary.BySector, c.Field(models.KeySector))
		count(summary.ByCountry, c.Field(models.KeyCountry))
	}

	return summary
}

func count(m map[string]int, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	m[value]++
}
