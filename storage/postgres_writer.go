package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cleantech100-scraper/models"
	"cleantech100-scraper/utils"

	_ "github.com/lib/pq"
)

// PostgresWriter stores merged companies in PostgreSQL as JSONB documents
type PostgresWriter struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresWriter creates a new PostgresWriter and pings the DB
func NewPostgresWriter(ctx context.Context, connStr string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger.Info("Connected to PostgreSQL successfully")
	return &PostgresWriter{db: db, logger: logger}, nil
}

// CreateTable creates the cleantech_companies table if it doesn't exist
func (w *PostgresWriter) CreateTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS cleantech_companies (
		url        TEXT        PRIMARY KEY,
		name       TEXT        NOT NULL DEFAULT '',
		data       JSONB       NOT NULL,
		scraped_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_cleantech_companies_name ON cleantech_companies (name);
	`
	if _, err := w.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	w.logger.Info("Table 'cleantech_companies' is ready")
	return nil
}

// SaveCompanies upserts companies in a single transaction, keyed by detail URL
func (w *PostgresWriter) SaveCompanies(ctx context.Context, companies []models.Company) (err error) {
	if len(companies) == 0 {
		return nil
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cleantech_companies (url, name, data, scraped_at)
		VALUES ($1, $2, $3::jsonb, $4)
		ON CONFLICT (url) DO UPDATE
		SET name = EXCLUDED.name, data = EXCLUDED.data, scraped_at = EXCLUDED.scraped_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, c := range companies {
		doc, docErr := companyDocument(c)
		if docErr != nil {
			return docErr
		}
		if _, err = stmt.ExecContext(ctx, c.URL(), c.Name(), doc, now); err != nil {
			return fmt.Errorf("failed to upsert %s: %w", c.URL(), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.logger.Info("Upserted %d companies into PostgreSQL", len(companies))
	return nil
}

// Close closes the database connection
func (w *PostgresWriter) Close() error {
	if w.db == nil {
		return nil
	}
	return w.db.Close()
}
