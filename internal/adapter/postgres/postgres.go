// Package postgres is the PostgreSQL entry store.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"weightlog/internal/domain"
)

// SchemaVersion is recorded in weightlog_schema. Any other recorded version
// drops and recreates weight_entries.
const SchemaVersion = 1

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
	log *zap.Logger
}

var (
	_ domain.WeightRepository = (*DB)(nil)
	_ domain.Maintainer       = (*DB)(nil)
)

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(ctx context.Context, connStr string, log *zap.Logger) (*DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s, log: log}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	log.Info("postgres store opened")
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	if _, err := d.sql.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS weightlog_schema (version INTEGER NOT NULL);"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var version int
	err := d.sql.QueryRowContext(ctx, "SELECT version FROM weightlog_schema LIMIT 1;").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		version = 0
	case err != nil:
		return fmt.Errorf("migrate: read version: %w", err)
	}

	if version == SchemaVersion {
		return nil
	}
	if version != 0 {
		d.log.Warn("schema version changed, dropping entries", zap.Int("from", version), zap.Int("to", SchemaVersion))
	}

	stmts := []string{
		"DROP TABLE IF EXISTS weight_entries;",
		"CREATE TABLE weight_entries (id BIGSERIAL PRIMARY KEY, weight DOUBLE PRECISION NOT NULL, date BIGINT NOT NULL);",
		"CREATE INDEX idx_weight_entries_date ON weight_entries(date DESC, id DESC);",
		"DELETE FROM weightlog_schema;",
		fmt.Sprintf("INSERT INTO weightlog_schema(version) VALUES (%d);", SchemaVersion),
	}

	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return tx.Commit()
}

// Maintain refreshes planner statistics for the entries table.
func (d *DB) Maintain(ctx context.Context) error {
	if _, err := d.sql.ExecContext(ctx, "ANALYZE weight_entries;"); err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	return nil
}
