package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/persistence"
)

// SubmissionRepository handles resume-submission database operations. The
// idempotency key is the primary key, which makes duplicate detection a
// plain primary-key lookup.
type SubmissionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSubmissionRepository creates a new submission repository.
func NewSubmissionRepository(db *sql.DB, logger *slog.Logger) *SubmissionRepository {
	return &SubmissionRepository{db: db, logger: logger}
}

// GetByKey returns a submission by idempotency key.
func (r *SubmissionRepository) GetByKey(ctx context.Context, idempotencyKey string) (*models.Submission, error) {
	query := `
		SELECT idempotency_key, id, workflow_id, node_id, execution_id, payload, submitted_at
		FROM submissions
		WHERE idempotency_key = $1
	`

	var (
		submission models.Submission
		payload    []byte
	)

	err := r.db.QueryRowContext(ctx, query, idempotencyKey).Scan(
		&submission.IdempotencyKey, &submission.ID, &submission.WorkflowID,
		&submission.NodeID, &submission.ExecutionID, &payload, &submission.SubmittedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrSubmissionNotFound
		}

		return nil, fmt.Errorf("failed to query submission: %w", err)
	}

	if err := unmarshalNullable(payload, &submission.Payload); err != nil {
		return nil, fmt.Errorf("failed to decode submission payload: %w", err)
	}

	return &submission, nil
}

// Save inserts a submission. A conflicting idempotency key leaves the
// original row untouched.
func (r *SubmissionRepository) Save(ctx context.Context, submission *models.Submission) error {
	payload, err := json.Marshal(submission.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode submission payload: %w", err)
	}

	query := `
		INSERT INTO submissions (idempotency_key, id, workflow_id, node_id, execution_id, payload, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (idempotency_key) DO NOTHING
	`

	_, err = r.db.ExecContext(ctx, query,
		submission.IdempotencyKey, submission.ID, submission.WorkflowID,
		submission.NodeID, submission.ExecutionID, payload, submission.SubmittedAt)
	if err != nil {
		return fmt.Errorf("failed to save submission: %w", err)
	}

	return nil
}
