package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cleantech100-scraper/models"
	"cleantech100-scraper/utils"
)

// CSVWriter handles writing merged companies to a CSV file
type CSVWriter struct {
	filePath string
	logger   *utils.Logger
}

// NewCSVWriter creates a new CSVWriter
func NewCSVWriter(filePath string, logger *utils.Logger) *CSVWriter {
	return &CSVWriter{filePath: filePath, logger: logger}
}

// Fields returns every key used by any company, sorted. Sorting puts the
// company_ columns ahead of the x_ ones.
func Fields(companies []models.Company) []string {
	seen := make(map[string]bool)
	var fields []string
	for _, c := range companies {
		for k := range c {
			if !seen[k] {
				seen[k] = true
				fields = append(fields, k)
			}
		}
	}
	sort.Strings(fields)
	return fields
}

// WriteCompanies writes one row per company, overwriting the file
func (w *CSVWriter) WriteCompanies(companies []models.Company) error {
	// Ensure output directory exists
	dir := filepath.Dir(w.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(w.filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.UseCRLF = true

	header := Fields(companies)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	row := make([]string, len(header))
	for i, c := range companies {
		for j, field := range header {
			row[j] = c.Field(field)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row %d (%s): %w", i+1, c.URL(), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close CSV file: %w", err)
	}

	w.logger.Info("Companies written to: %s (%d rows, %d columns)", w.filePath, len(companies), len(header))
	return nil
}
