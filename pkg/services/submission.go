// Package services implements the use cases behind the HTTP API: resuming
// paused runs through form submissions, and serving form definitions.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/persistence"
	"github.com/fluxohq/fluxo/pkg/workflow"
)

// SubmissionService handles the resume half of the pause/resume protocol:
// duplicate detection by idempotency key, payload recording, and
// re-invocation of the coordinator.
type SubmissionService struct {
	persistence persistence.Persistence
	submissions persistence.SubmissionRepository
	executor    *workflow.Executor
	logger      *slog.Logger
}

// NewSubmissionService creates a submission service. The submission
// repository may be a different backend (Redis) than the main persistence.
func NewSubmissionService(p persistence.Persistence, submissions persistence.SubmissionRepository, executor *workflow.Executor, logger *slog.Logger) *SubmissionService {
	if submissions == nil {
		submissions = p
	}

	return &SubmissionService{
		persistence: p,
		submissions: submissions,
		executor:    executor,
		logger:      logger,
	}
}

// SubmitRequest carries one form submission.
type SubmitRequest struct {
	WorkflowID     string
	NodeID         string
	ExecutionID    string
	IdempotencyKey string
	Data           map[string]any
	Files          []any
	Meta           map[string]any
}

// SubmitResult reports what the submission did.
type SubmitResult struct {
	Duplicate bool
	Execution *workflow.Result
}

// Submit resumes a waiting execution with the submitted payload. A repeated
// idempotency key returns the current execution state without re-invoking
// the coordinator.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if req.IdempotencyKey != "" {
		existing, err := s.submissions.SubmissionByKey(ctx, req.IdempotencyKey)
		if err != nil && !persistence.IsSubmissionNotFound(err) {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}

		if existing != nil {
			return s.duplicateResult(ctx, existing)
		}
	}

	execution, err := s.persistence.ExecutionByID(ctx, req.ExecutionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch execution %s: %w", req.ExecutionID, err)
	}

	if execution.Status != models.ExecutionStatusWaiting {
		return nil, fmt.Errorf("execution %s is %s: %w", execution.ID, execution.Status, ErrNotWaiting)
	}

	if execution.WaitingForNodeID != req.NodeID {
		return nil, fmt.Errorf("execution %s waits for node %s, got %s: %w",
			execution.ID, execution.WaitingForNodeID, req.NodeID, ErrNodeMismatch)
	}

	payload, err := s.buildPayload(ctx, req)
	if err != nil {
		return nil, err
	}

	submission := &models.Submission{
		ID:             uuid.New().String(),
		WorkflowID:     req.WorkflowID,
		NodeID:         req.NodeID,
		ExecutionID:    req.ExecutionID,
		IdempotencyKey: req.IdempotencyKey,
		Payload:        payload,
		SubmittedAt:    time.Now().UTC(),
	}

	if req.IdempotencyKey != "" {
		if err := s.submissions.SaveSubmission(ctx, submission); err != nil {
			return nil, fmt.Errorf("failed to record submission: %w", err)
		}
	}

	result, err := s.executor.Execute(ctx, req.WorkflowID, req.ExecutionID, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to resume execution %s: %w", req.ExecutionID, err)
	}

	return &SubmitResult{Execution: result}, nil
}

// buildPayload shapes the submission into the envelope downstream nodes
// consume: the form's identity, the field data, and any attachments.
func (s *SubmissionService) buildPayload(ctx context.Context, req SubmitRequest) (map[string]any, error) {
	wf, err := s.persistence.WorkflowByID(ctx, req.WorkflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workflow %s: %w", req.WorkflowID, err)
	}

	node := wf.NodeByID(req.NodeID)
	if node == nil {
		return nil, fmt.Errorf("node %s not found in workflow %s: %w", req.NodeID, req.WorkflowID, ErrNotFormNode)
	}

	title, _ := node.Config["title"].(string)

	payload := map[string]any{
		"submitted_at": time.Now().UTC().Format(time.RFC3339),
		"form": map[string]any{
			"title": title,
			"id":    node.ID,
		},
		"data": req.Data,
	}

	if len(req.Files) > 0 {
		payload["files"] = req.Files
	}

	if len(req.Meta) > 0 {
		payload["meta"] = req.Meta
	}

	return payload, nil
}

// duplicateResult reports the stored execution state for a repeated
// submission without driving the run forward again.
func (s *SubmissionService) duplicateResult(ctx context.Context, submission *models.Submission) (*SubmitResult, error) {
	s.logger.Info("Duplicate submission ignored",
		"execution_id", submission.ExecutionID, "node_id", submission.NodeID)

	execution, err := s.persistence.ExecutionByID(ctx, submission.ExecutionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch execution %s: %w", submission.ExecutionID, err)
	}

	return &SubmitResult{
		Duplicate: true,
		Execution: &workflow.Result{
			ExecutionID:      execution.ID,
			Status:           execution.Status,
			Output:           execution.Output,
			Logs:             execution.Logs,
			WaitingForNodeID: execution.WaitingForNodeID,
		},
	}, nil
}

// FormDefinition is the public shape of a form node served to frontends.
type FormDefinition struct {
	WorkflowID  string `json:"workflow_id"`
	NodeID      string `json:"node_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Fields      []any  `json:"fields"`
}

// FormByNode returns the form definition for a workflow's form node.
func (s *SubmissionService) FormByNode(ctx context.Context, workflowID, nodeID string) (*FormDefinition, error) {
	wf, err := s.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workflow %s: %w", workflowID, err)
	}

	node := wf.NodeByID(nodeID)
	if node == nil || node.Type != "form" {
		return nil, ErrNotFormNode
	}

	title, _ := node.Config["title"].(string)
	description, _ := node.Config["description"].(string)
	fields, _ := node.Config["fields"].([]any)

	return &FormDefinition{
		WorkflowID:  workflowID,
		NodeID:      nodeID,
		Title:       title,
		Description: description,
		Fields:      fields,
	}, nil
}
