package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"bond-registry/internal/repository"
)

// Open opens (or creates) a sqlite database at the given path and ensures directories exist.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	// pragmas in the DSN are re-applied whenever the pool reopens the connection
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	return db, nil
}

// Migrate creates every table the application needs. Users come first since
// bonds reference them.
func Migrate(ctx context.Context, users repository.UserRepository, bonds repository.BondRepository) error {
	if err := users.Init(ctx); err != nil {
		return fmt.Errorf("init user repository: %w", err)
	}
	if err := bonds.Init(ctx); err != nil {
		return fmt.Errorf("init bond repository: %w", err)
	}
	return nil
}
