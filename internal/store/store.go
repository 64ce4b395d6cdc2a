// Package store keeps feature records in DuckDB for region queries across
// many annotation files.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"
)

// Store manages a DuckDB connection holding feature records.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path, logger: zap.NewNop()}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// SetLogger sets the logger for load progress messages.
func (s *Store) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path, empty for an in-memory store.
func (s *Store) Path() string {
	return s.path
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS records (
		chrom VARCHAR,
		start_pos BIGINT,
		end_pos BIGINT,
		name VARCHAR,
		score BIGINT,
		strand VARCHAR,
		cds_start BIGINT,
		cds_end BIGINT,
		item_rgb VARCHAR,
		block_count BIGINT,
		block_sizes VARCHAR,
		block_starts VARCHAR,
		attrs VARCHAR,
		source VARCHAR
	)`); err != nil {
		return err
	}

	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS sources (
		path VARCHAR PRIMARY KEY,
		size BIGINT,
		mod_time_ns BIGINT,
		record_count BIGINT
	)`)
	return err
}
