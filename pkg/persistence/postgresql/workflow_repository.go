package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/persistence"
)

// WorkflowRepository handles workflow-related database operations. Nodes
// and edges are stored as JSONB documents alongside the workflow row: the
// engine always reads the whole graph, never individual nodes.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

const workflowColumns = `
	id
  , name
  , description
  , status
  , nodes
  , edges
  , variables
  , metadata
  , owner
  , created_at
  , updated_at
  , deleted_at
`

// GetAll returns all non-deleted workflows.
func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + `
		FROM workflows
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

// GetByID returns a workflow by its ID.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + `
		FROM workflows
		WHERE id = $1 AND deleted_at IS NULL`

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrWorkflowNotFound
		}

		return nil, fmt.Errorf("failed to query workflow %s: %w", id, err)
	}

	return workflow, nil
}

// Save upserts a workflow.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	nodes, err := json.Marshal(workflow.Nodes)
	if err != nil {
		return fmt.Errorf("failed to encode workflow nodes: %w", err)
	}

	edges, err := json.Marshal(workflow.Edges)
	if err != nil {
		return fmt.Errorf("failed to encode workflow edges: %w", err)
	}

	variables, err := marshalNullable(workflow.Variables)
	if err != nil {
		return fmt.Errorf("failed to encode workflow variables: %w", err)
	}

	metadata, err := marshalNullable(workflow.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode workflow metadata: %w", err)
	}

	query := `
		INSERT INTO workflows (id, name, description, status, nodes, edges, variables, metadata, owner, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			nodes = EXCLUDED.nodes,
			edges = EXCLUDED.edges,
			variables = EXCLUDED.variables,
			metadata = EXCLUDED.metadata,
			owner = EXCLUDED.owner,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		workflow.ID, workflow.Name, workflow.Description, workflow.Status,
		nodes, edges, variables, metadata, workflow.Owner,
		workflow.CreatedAt, workflow.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

// Delete soft deletes a workflow.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE workflows SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL",
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}

	if affected == 0 {
		return persistence.ErrWorkflowNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow  models.Workflow
		nodes     []byte
		edges     []byte
		variables []byte
		metadata  []byte
		owner     sql.NullString
		deletedAt sql.NullTime
	)

	err := row.Scan(&workflow.ID, &workflow.Name, &workflow.Description, &workflow.Status,
		&nodes, &edges, &variables, &metadata, &owner,
		&workflow.CreatedAt, &workflow.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(nodes, &workflow.Nodes); err != nil {
		return nil, fmt.Errorf("failed to decode workflow nodes: %w", err)
	}

	if err := json.Unmarshal(edges, &workflow.Edges); err != nil {
		return nil, fmt.Errorf("failed to decode workflow edges: %w", err)
	}

	if err := unmarshalNullable(variables, &workflow.Variables); err != nil {
		return nil, fmt.Errorf("failed to decode workflow variables: %w", err)
	}

	if err := unmarshalNullable(metadata, &workflow.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode workflow metadata: %w", err)
	}

	workflow.Owner = owner.String

	if deletedAt.Valid {
		workflow.DeletedAt = &deletedAt.Time
	}

	return &workflow, nil
}

func marshalNullable(value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	return encoded, nil
}

func unmarshalNullable(raw []byte, target any) error {
	if len(raw) == 0 {
		return nil
	}

	return json.Unmarshal(raw, target)
}
