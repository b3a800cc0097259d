// Package postgresql provides PostgreSQL persistence implementation for
// workflows, executions and submissions.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db             *sql.DB
	logger         *slog.Logger
	workflowRepo   *WorkflowRepository
	executionRepo  *ExecutionRepository
	submissionRepo *SubmissionRepository
}

// NewPersistence creates a new PostgreSQL persistence layer and runs any
// pending migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	if err := database.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())
	if err := migrationManager.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:             database,
		logger:         logger,
		workflowRepo:   NewWorkflowRepository(database, logger),
		executionRepo:  NewExecutionRepository(database, logger),
		submissionRepo: NewSubmissionRepository(database, logger),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db == nil {
		return nil
	}

	if err := p.db.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Workflows returns all non-deleted workflows.
func (p *Persistence) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	return p.workflowRepo.GetAll(ctx)
}

// WorkflowByID returns a workflow by its ID.
func (p *Persistence) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	return p.workflowRepo.GetByID(ctx, id)
}

// SaveWorkflow upserts a workflow.
func (p *Persistence) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	return p.workflowRepo.Save(ctx, workflow)
}

// DeleteWorkflow soft deletes a workflow by setting deleted_at.
func (p *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	return p.workflowRepo.Delete(ctx, id)
}

// CreateExecution inserts a new execution row.
func (p *Persistence) CreateExecution(ctx context.Context, execution *models.Execution) error {
	return p.executionRepo.Create(ctx, execution)
}

// UpdateExecution updates an execution row.
func (p *Persistence) UpdateExecution(ctx context.Context, execution *models.Execution) error {
	return p.executionRepo.Update(ctx, execution)
}

// ExecutionByID returns an execution by its ID.
func (p *Persistence) ExecutionByID(ctx context.Context, id string) (*models.Execution, error) {
	return p.executionRepo.GetByID(ctx, id)
}

// SubmissionByKey returns a submission by idempotency key.
func (p *Persistence) SubmissionByKey(ctx context.Context, idempotencyKey string) (*models.Submission, error) {
	return p.submissionRepo.GetByKey(ctx, idempotencyKey)
}

// SaveSubmission inserts a submission keyed by idempotency key.
func (p *Persistence) SaveSubmission(ctx context.Context, submission *models.Submission) error {
	return p.submissionRepo.Save(ctx, submission)
}
