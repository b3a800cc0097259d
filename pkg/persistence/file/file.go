// Package file provides file-based persistence for workflows, executions
// and resume submissions. Each record is one JSON file under the root
// directory; good enough for local development and single-host deployments.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/persistence"
)

const (
	dirMode  = 0750
	fileMode = 0600
)

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root string
}

// NewPersistence creates a file persistence rooted at the given directory.
// Accepts both plain paths and file:// URLs.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{root: cleanRoot}
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// validateID guards file names against path traversal.
func validateID(id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}

	if strings.Contains(id, "..") || strings.ContainsAny(id, `/\`) {
		return errors.New("id contains invalid characters")
	}

	return nil
}

func (p *Persistence) writeRecord(dir, id string, record any) error {
	if err := validateID(id); err != nil {
		return err
	}

	recordsDir := filepath.Join(p.root, dir)
	if err := os.MkdirAll(recordsDir, dirMode); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", dir, err)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", dir, id, err)
	}

	err = os.WriteFile(filepath.Join(recordsDir, id+".json"), data, fileMode)
	if err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", dir, id, err)
	}

	return nil
}

func (p *Persistence) readRecord(dir, id string, record any, notFound error) error {
	if err := validateID(id); err != nil {
		return err
	}

	data, err := os.ReadFile(filepath.Join(p.root, dir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return notFound
		}

		return fmt.Errorf("failed to read %s/%s: %w", dir, id, err)
	}

	if err := json.Unmarshal(data, record); err != nil {
		return fmt.Errorf("failed to unmarshal %s/%s: %w", dir, id, err)
	}

	return nil
}

// Workflows returns all workflows stored under the root directory.
func (p *Persistence) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	entries, err := os.ReadDir(filepath.Join(p.root, "workflows"))
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.Workflow{}, nil
		}

		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")

		workflow, err := p.WorkflowByID(ctx, id)
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

func (p *Persistence) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow

	err := p.readRecord("workflows", id, &workflow, persistence.ErrWorkflowNotFound)
	if err != nil {
		return nil, err
	}

	return &workflow, nil
}

func (p *Persistence) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	return p.writeRecord("workflows", workflow.ID, workflow)
}

func (p *Persistence) DeleteWorkflow(_ context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(p.root, "workflows", id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return persistence.ErrWorkflowNotFound
		}

		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	return nil
}

func (p *Persistence) CreateExecution(_ context.Context, execution *models.Execution) error {
	return p.writeRecord("executions", execution.ID, execution)
}

func (p *Persistence) UpdateExecution(_ context.Context, execution *models.Execution) error {
	return p.writeRecord("executions", execution.ID, execution)
}

func (p *Persistence) ExecutionByID(_ context.Context, id string) (*models.Execution, error) {
	var execution models.Execution

	err := p.readRecord("executions", id, &execution, persistence.ErrExecutionNotFound)
	if err != nil {
		return nil, err
	}

	return &execution, nil
}

func (p *Persistence) SubmissionByKey(_ context.Context, idempotencyKey string) (*models.Submission, error) {
	var submission models.Submission

	err := p.readRecord("submissions", submissionFileName(idempotencyKey), &submission, persistence.ErrSubmissionNotFound)
	if err != nil {
		return nil, err
	}

	return &submission, nil
}

func (p *Persistence) SaveSubmission(_ context.Context, submission *models.Submission) error {
	return p.writeRecord("submissions", submissionFileName(submission.IdempotencyKey), submission)
}

// submissionFileName makes caller-chosen idempotency keys safe file names.
func submissionFileName(idempotencyKey string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_")

	return replacer.Replace(idempotencyKey)
}
