package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"custodia/internal/platform/config"
)

// Open connects to PostgreSQL and applies pool settings.
// Returns nil if the URL is empty (postgres not configured; callers fall back
// to the in-memory stores).
func Open(cfg config.PostgresConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
