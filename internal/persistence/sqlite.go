package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver for database/sql

	"github.com/spec-kit/offering-registry/internal/config"
)

// SQLite wraps an embedded database file.
type SQLite struct {
	DB     *sql.DB
	path   string
	logger *zap.Logger
}

// NewSQLite opens (creating if needed) the database at cfg.Path with foreign keys enforced.
func NewSQLite(ctx context.Context, cfg config.SQLiteConfig, logger *zap.Logger) (*SQLite, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path not provided")
	}
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := "file:" + cfg.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection, used synchronously.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("opened sqlite database", zap.String("path", cfg.Path))
	return &SQLite{DB: db, path: cfg.Path, logger: logger}, nil
}

// Migrate applies the sqlite schema.
func (s *SQLite) Migrate(ctx context.Context) error {
	return runMigrations(ctx, config.StoreDriverSQLite, func(ctx context.Context, stmt string) error {
		_, err := s.DB.ExecContext(ctx, stmt)
		return err
	}, s.logger)
}

// Ping verifies database connectivity.
func (s *SQLite) Ping(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("sqlite database not configured")
	}
	return s.DB.PingContext(ctx)
}

// Close releases the database handle.
func (s *SQLite) Close() {
	if s != nil && s.DB != nil {
		_ = s.DB.Close()
	}
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}
