// Package storage persists finished assessment records. The workflow
// never reads records back; this is a write-side collaborator with
// list/get operations for operators.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kestrelworks/riskflow/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Storage defines the contract for the assessment persistence layer.
type Storage interface {
	SaveAssessment(ctx context.Context, record *model.AssessmentRecord) error
	GetAssessment(ctx context.Context, id string) (*model.AssessmentRecord, error)
	ListAssessments(ctx context.Context, limit int) ([]model.AssessmentRecord, error)
	Migrate(ctx context.Context) error
	Close() error
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath cannot be empty")
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Migrate creates the assessments schema if it does not exist.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS assessments (
		id TEXT PRIMARY KEY,
		entity_name TEXT NOT NULL,
		credit_score INTEGER NOT NULL,
		risk_level TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		record JSON NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assessments_entity ON assessments(entity_name);
	CREATE INDEX IF NOT EXISTS idx_assessments_created ON assessments(created_at);`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create assessments schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
