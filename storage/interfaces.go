package storage

import (
	"context"

	"cleantech100-scraper/models"
)

// CompanyStorage is a database sink for merged company records
type CompanyStorage interface {
	CreateTable(ctx context.Context) error
	SaveCompanies(ctx context.Context, companies []models.Company) error
	Close() error
}

var (
	_ CompanyStorage = (*PostgresWriter)(nil)
	_ CompanyStorage = (*SQLiteWriter)(nil)
)
