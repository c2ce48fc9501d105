package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kestrelworks/riskflow/internal/common"
	"github.com/kestrelworks/riskflow/internal/model"
)

// SaveAssessment persists a finished assessment record. The full
// record is stored as JSON alongside queryable columns.
func (s *SQLiteStorage) SaveAssessment(ctx context.Context, record *model.AssessmentRecord) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if record.ID == "" {
		return fmt.Errorf("record ID cannot be empty")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal assessment record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessments (id, entity_name, credit_score, risk_level, created_at, record)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.EntityName, record.CreditScore, string(record.RiskLevel), record.Timestamp, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}

	return nil
}

// GetAssessment loads a single assessment record by ID.
func (s *SQLiteStorage) GetAssessment(ctx context.Context, id string) (*model.AssessmentRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("id cannot be empty")
	}

	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM assessments WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("assessment %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load assessment: %w", err)
	}

	var record model.AssessmentRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assessment record: %w", err)
	}

	return &record, nil
}

// ListAssessments returns the most recent assessment records, newest
// first.
func (s *SQLiteStorage) ListAssessments(ctx context.Context, limit int) ([]model.AssessmentRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM assessments ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.AssessmentRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan assessment row: %w", err)
		}

		var record model.AssessmentRecord
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal assessment record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assessments: %w", err)
	}

	return records, nil
}
