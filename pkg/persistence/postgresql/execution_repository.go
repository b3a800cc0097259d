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

// ExecutionRepository handles execution-related database operations.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

// Create inserts a new execution row.
func (r *ExecutionRepository) Create(ctx context.Context, execution *models.Execution) error {
	triggerInput, logs, output, metadata, err := encodeExecutionDocuments(execution)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO executions (id, workflow_id, status, trigger_input, logs, waiting_for_node_id, output, metadata, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.ExecContext(ctx, query,
		execution.ID, execution.WorkflowID, execution.Status,
		triggerInput, logs, nullableString(execution.WaitingForNodeID),
		output, metadata, execution.StartedAt, execution.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to create execution %s: %w", execution.ID, err)
	}

	return nil
}

// Update rewrites the mutable fields of an execution row.
func (r *ExecutionRepository) Update(ctx context.Context, execution *models.Execution) error {
	triggerInput, logs, output, metadata, err := encodeExecutionDocuments(execution)
	if err != nil {
		return err
	}

	query := `
		UPDATE executions SET
			status = $2,
			trigger_input = $3,
			logs = $4,
			waiting_for_node_id = $5,
			output = $6,
			metadata = $7,
			finished_at = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		execution.ID, execution.Status, triggerInput, logs,
		nullableString(execution.WaitingForNodeID), output, metadata,
		execution.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to update execution %s: %w", execution.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}

	if affected == 0 {
		return persistence.ErrExecutionNotFound
	}

	return nil
}

// GetByID returns an execution by its ID.
func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.Execution, error) {
	query := `
		SELECT id, workflow_id, status, trigger_input, logs, waiting_for_node_id, output, metadata, started_at, finished_at
		FROM executions
		WHERE id = $1
	`

	var (
		execution        models.Execution
		triggerInput     []byte
		logs             []byte
		waitingForNodeID sql.NullString
		output           []byte
		metadata         []byte
		finishedAt       sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&execution.ID, &execution.WorkflowID, &execution.Status,
		&triggerInput, &logs, &waitingForNodeID, &output, &metadata,
		&execution.StartedAt, &finishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrExecutionNotFound
		}

		return nil, fmt.Errorf("failed to query execution %s: %w", id, err)
	}

	if err := unmarshalNullable(triggerInput, &execution.TriggerInput); err != nil {
		return nil, fmt.Errorf("failed to decode trigger input: %w", err)
	}

	if err := json.Unmarshal(logs, &execution.Logs); err != nil {
		return nil, fmt.Errorf("failed to decode execution logs: %w", err)
	}

	if err := unmarshalNullable(output, &execution.Output); err != nil {
		return nil, fmt.Errorf("failed to decode execution output: %w", err)
	}

	if err := unmarshalNullable(metadata, &execution.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode execution metadata: %w", err)
	}

	execution.WaitingForNodeID = waitingForNodeID.String

	if finishedAt.Valid {
		execution.FinishedAt = &finishedAt.Time
	}

	return &execution, nil
}

func encodeExecutionDocuments(execution *models.Execution) (triggerInput, logs any, output, metadata any, err error) {
	triggerInput, err = marshalNullable(execution.TriggerInput)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to encode trigger input: %w", err)
	}

	encodedLogs, err := json.Marshal(execution.Logs)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to encode execution logs: %w", err)
	}

	output, err = marshalNullable(execution.Output)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to encode execution output: %w", err)
	}

	metadata, err = marshalNullable(execution.Metadata)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to encode execution metadata: %w", err)
	}

	return triggerInput, encodedLogs, output, metadata, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}

	return value
}
