// Package persistence provides the data storage abstraction for workflows,
// executions and resume submissions.
package persistence

import (
	"context"

	"github.com/fluxohq/fluxo/pkg/models"
)

// WorkflowRepository reads and writes workflow graphs.
type WorkflowRepository interface {
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	DeleteWorkflow(ctx context.Context, id string) error
}

// ExecutionRepository stores per-run state. The coordinator updates the
// execution after every node so a waiting run survives a restart.
type ExecutionRepository interface {
	CreateExecution(ctx context.Context, execution *models.Execution) error
	UpdateExecution(ctx context.Context, execution *models.Execution) error
	ExecutionByID(ctx context.Context, id string) (*models.Execution, error)
}

// SubmissionRepository stores resume submissions keyed by idempotency key.
type SubmissionRepository interface {
	SubmissionByKey(ctx context.Context, idempotencyKey string) (*models.Submission, error)
	SaveSubmission(ctx context.Context, submission *models.Submission) error
}

// Persistence aggregates the repositories behind one backend.
type Persistence interface {
	WorkflowRepository
	ExecutionRepository
	SubmissionRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
