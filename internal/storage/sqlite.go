// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/konomi/internal/interest"
)

const schemaVersion = 1

// SQLiteStorage implements Storage using SQLite. The vector lives in one row
// per category so a partially written update never exists outside an open
// transaction.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS interest_counts (
		interest TEXT PRIMARY KEY,
		count INTEGER NOT NULL CHECK (count >= 0)
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	_, err := db.Exec(
		`INSERT INTO meta (key, value) VALUES ('schema_version', ?)
		 ON CONFLICT(key) DO NOTHING`,
		fmt.Sprintf("%d", schemaVersion),
	)
	return err
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func readCounts(ctx context.Context, q querier) (interest.Vector, error) {
	var v interest.Vector
	rows, err := q.QueryContext(ctx, `SELECT interest, count FROM interest_counts`)
	if err != nil {
		return v, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var count int64
		if err := rows.Scan(&name, &count); err != nil {
			return interest.Vector{}, err
		}
		cat, err := interest.Parse(name)
		if err != nil {
			// Rows written by a newer taxonomy are ignored, not fatal.
			continue
		}
		if count < 0 {
			count = 0
		}
		if count > math.MaxUint32 {
			count = math.MaxUint32
		}
		v[cat] = uint32(count)
	}
	return v, rows.Err()
}

// ReadVector returns the persisted vector; absent rows read as zero counts.
func (s *SQLiteStorage) ReadVector(ctx context.Context) (interest.Vector, error) {
	return readCounts(ctx, s.db)
}

// UpdateVector applies apply to the stored vector and writes every category
// row back in one transaction.
func (s *SQLiteStorage) UpdateVector(ctx context.Context, apply func(interest.Vector) interest.Vector) (interest.Vector, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return interest.Vector{}, err
	}
	defer tx.Rollback()

	current, err := readCounts(ctx, tx)
	if err != nil {
		return interest.Vector{}, err
	}
	next := apply(current)

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO interest_counts (interest, count) VALUES (?, ?)
		 ON CONFLICT(interest) DO UPDATE SET count = excluded.count`,
	)
	if err != nil {
		return interest.Vector{}, err
	}
	defer stmt.Close()

	for _, cat := range interest.All() {
		if _, err := stmt.ExecContext(ctx, cat.String(), int64(next[cat])); err != nil {
			return interest.Vector{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return interest.Vector{}, err
	}
	return next, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
