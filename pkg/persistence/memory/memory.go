// Package memory provides an in-memory persistence backend, used by tests
// and by fluxo-run for throwaway executions.
package memory

import (
	"context"
	"sync"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/persistence"
)

// Persistence implements persistence.Persistence with plain maps. Safe for
// concurrent runs; each repository holds its own lock.
type Persistence struct {
	mu          sync.RWMutex
	workflows   map[string]*models.Workflow
	executions  map[string]*models.Execution
	submissions map[string]*models.Submission
}

func NewPersistence() *Persistence {
	return &Persistence{
		workflows:   make(map[string]*models.Workflow),
		executions:  make(map[string]*models.Execution),
		submissions: make(map[string]*models.Submission),
	}
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	return nil
}

func (p *Persistence) Workflows(_ context.Context) ([]*models.Workflow, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	workflows := make([]*models.Workflow, 0, len(p.workflows))
	for _, workflow := range p.workflows {
		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

func (p *Persistence) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	workflow, ok := p.workflows[id]
	if !ok {
		return nil, persistence.ErrWorkflowNotFound
	}

	return workflow, nil
}

func (p *Persistence) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.workflows[workflow.ID] = workflow

	return nil
}

func (p *Persistence) DeleteWorkflow(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.workflows[id]; !ok {
		return persistence.ErrWorkflowNotFound
	}

	delete(p.workflows, id)

	return nil
}

func (p *Persistence) CreateExecution(_ context.Context, execution *models.Execution) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	copied := *execution
	p.executions[execution.ID] = &copied

	return nil
}

func (p *Persistence) UpdateExecution(ctx context.Context, execution *models.Execution) error {
	return p.CreateExecution(ctx, execution)
}

func (p *Persistence) ExecutionByID(_ context.Context, id string) (*models.Execution, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	execution, ok := p.executions[id]
	if !ok {
		return nil, persistence.ErrExecutionNotFound
	}

	copied := *execution

	return &copied, nil
}

func (p *Persistence) SubmissionByKey(_ context.Context, idempotencyKey string) (*models.Submission, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	submission, ok := p.submissions[idempotencyKey]
	if !ok {
		return nil, persistence.ErrSubmissionNotFound
	}

	return submission, nil
}

func (p *Persistence) SaveSubmission(_ context.Context, submission *models.Submission) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.submissions[submission.IdempotencyKey] = submission

	return nil
}
