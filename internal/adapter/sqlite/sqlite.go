// Package sqlite is the on-disk entry store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"weightlog/internal/domain"
)

// SchemaVersion is stored in PRAGMA user_version. A database carrying any
// other version is dropped and recreated.
const SchemaVersion = 1

// Store wraps a *sql.DB and implements domain.WeightRepository.
type Store struct {
	db         *sql.DB
	log        *zap.Logger
	insertStmt *sql.Stmt
	deleteStmt *sql.Stmt
	listStmt   *sql.Stmt
}

var (
	_ domain.WeightRepository = (*Store)(nil)
	_ domain.Maintainer       = (*Store)(nil)
)

// Open creates the database file if needed, applies the schema and prepares
// statements.
func Open(ctx context.Context, dbPath string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: create db dir: %w", err)
	}

	// busy_timeout waits on locks, WAL lets readers run during a write and
	// NORMAL sync is safe with WAL.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", filepath.Clean(dbPath))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := migrate(ctx, db, log); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, log: log}
	if err := s.prepare(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	log.Info("sqlite store opened", zap.String("path", dbPath))
	return s, nil
}

func migrate(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version;").Scan(&version); err != nil {
		return fmt.Errorf("sqlite: read schema version: %w", err)
	}
	if version != SchemaVersion {
		if version != 0 {
			log.Warn("schema version changed, dropping entries", zap.Int("from", version), zap.Int("to", SchemaVersion))
		}
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS weight_entries;"); err != nil {
			return fmt.Errorf("sqlite: drop: %w", err)
		}
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS weight_entries (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			weight REAL    NOT NULL,
			date   INTEGER NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_weight_entries_date ON weight_entries (date DESC, id DESC);",
		fmt.Sprintf("PRAGMA user_version = %d;", SchemaVersion),
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) prepare(ctx context.Context) error {
	var err error
	if s.insertStmt, err = s.db.PrepareContext(ctx, "INSERT INTO weight_entries (weight, date) VALUES (?, ?);"); err != nil {
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	if s.deleteStmt, err = s.db.PrepareContext(ctx, "DELETE FROM weight_entries WHERE id = ?;"); err != nil {
		return fmt.Errorf("sqlite: prepare delete: %w", err)
	}
	if s.listStmt, err = s.db.PrepareContext(ctx, "SELECT id, weight, date FROM weight_entries ORDER BY date DESC, id DESC;"); err != nil {
		return fmt.Errorf("sqlite: prepare list: %w", err)
	}
	return nil
}

// Close closes prepared statements and the database.
func (s *Store) Close() error {
	for _, st := range []*sql.Stmt{s.insertStmt, s.deleteStmt, s.listStmt} {
		if st != nil {
			_ = st.Close()
		}
	}
	return s.db.Close()
}

// InsertWeight stores an entry and returns its ID.
func (s *Store) InsertWeight(ctx context.Context, weight float64, timestamp int64) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("sqlite: store not initialized")
	}
	if !domain.ValidWeight(weight) {
		return 0, domain.ErrInvalidWeight
	}
	res, err := s.insertStmt.ExecContext(ctx, weight, timestamp)
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert: %w", err)
	}
	return res.LastInsertId()
}

// DeleteWeight removes the entry with id if it exists.
func (s *Store) DeleteWeight(ctx context.Context, id int64) error {
	if _, err := s.deleteStmt.ExecContext(ctx, id); err != nil {
		return fmt.Errorf("sqlite: delete: %w", err)
	}
	return nil
}

// ListWeights returns every entry, newest first.
func (s *Store) ListWeights(ctx context.Context) ([]domain.WeightEntry, error) {
	rows, err := s.listStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	defer rows.Close()

	out := []domain.WeightEntry{}
	for rows.Next() {
		var e domain.WeightEntry
		if err := rows.Scan(&e.ID, &e.Weight, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Maintain truncates the write-ahead log and refreshes planner statistics.
func (s *Store) Maintain(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE);"); err != nil {
		return fmt.Errorf("sqlite: checkpoint: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		return fmt.Errorf("sqlite: optimize: %w", err)
	}
	s.log.Debug("maintenance done")
	return nil
}
