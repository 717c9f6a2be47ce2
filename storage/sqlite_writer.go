package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cleantech100-scraper/models"
	"cleantech100-scraper/utils"

	_ "modernc.org/sqlite"
)

// SQLiteWriter stores merged companies in a local SQLite file
type SQLiteWriter struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewSQLiteWriter opens (or creates) the database at path. ":memory:" is
// accepted for a throwaway database.
func NewSQLiteWriter(ctx context.Context, path string, logger *utils.Logger) (*SQLiteWriter, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// one writer, and keeps a :memory: database alive across calls
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	logger.Info("Opened SQLite database %s", path)
	return &SQLiteWriter{db: db, logger: logger}, nil
}

// CreateTable creates the cleantech_companies table if it doesn't exist
func (w *SQLiteWriter) CreateTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS cleantech_companies (
		url        TEXT PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		data       TEXT NOT NULL,
		scraped_at TEXT NOT NULL
	);
	`
	if _, err := w.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// SaveCompanies upserts companies in a single transaction, keyed by detail URL
func (w *SQLiteWriter) SaveCompanies(ctx context.Context, companies []models.Company) (err error) {
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
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE
		SET name = excluded.name, data = excluded.data, scraped_at = excluded.scraped_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
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

	w.logger.Info("Upserted %d companies into SQLite", len(companies))
	return nil
}

// Close closes the database connection
func (w *SQLiteWriter) Close() error {
	if w.db == nil {
		return nil
	}
	return w.db.Close()
}
