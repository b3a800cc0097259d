package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/persistence"
	"github.com/fluxohq/fluxo/pkg/persistence/memory"
	"github.com/fluxohq/fluxo/pkg/protocol"
	"github.com/fluxohq/fluxo/pkg/registry"
	"github.com/fluxohq/fluxo/pkg/testutil"
	"github.com/fluxohq/fluxo/pkg/workflow"
)

// countingNode counts how many times the post-pause part of the graph runs.
type countingNode struct {
	id    string
	count *int
}

func (n *countingNode) ID() string   { return n.id }
func (n *countingNode) Type() string { return "counting" }

func (n *countingNode) Execute(_ context.Context, _ models.ExecutionContext, input map[string]any) (map[string]any, error) {
	*n.count++

	return input, nil
}

type countingFactory struct {
	count int
}

func (f *countingFactory) Create(_ context.Context, id string, _ map[string]any) (protocol.Node, error) {
	return &countingNode{id: id, count: &f.count}, nil
}

func (f *countingFactory) ID() string             { return "counting" }
func (f *countingFactory) Name() string           { return "Counting" }
func (f *countingFactory) Description() string    { return "Counts executions" }
func (f *countingFactory) Schema() map[string]any { return nil }

type pauseNode struct{ id string }

func (n *pauseNode) ID() string            { return n.id }
func (n *pauseNode) Type() string          { return "form" }
func (n *pauseNode) PausesExecution() bool { return true }

func (n *pauseNode) Execute(_ context.Context, _ models.ExecutionContext, input map[string]any) (map[string]any, error) {
	return input, nil
}

type pauseFactory struct{}

func (f *pauseFactory) Create(_ context.Context, id string, _ map[string]any) (protocol.Node, error) {
	return &pauseNode{id: id}, nil
}

func (f *pauseFactory) ID() string             { return "form" }
func (f *pauseFactory) Name() string           { return "Form" }
func (f *pauseFactory) Description() string    { return "Pauses the run" }
func (f *pauseFactory) Schema() map[string]any { return nil }

func setupPausedRun(t *testing.T) (*SubmissionService, *models.Workflow, *workflow.Result, *countingFactory) {
	t.Helper()

	return setupPausedRunWith(t, nil)
}

func setupPausedRunWith(t *testing.T, submissions persistence.SubmissionRepository) (*SubmissionService, *models.Workflow, *workflow.Result, *countingFactory) {
	t.Helper()

	nodes := []*models.WorkflowNode{
		testutil.CreateTestNode(testutil.WithID("gate"), testutil.WithType("form"),
			testutil.WithConfig(map[string]any{"title": "Approval"})),
		testutil.CreateTestNode(testutil.WithID("after"), testutil.WithType("counting")),
	}
	edges := []*models.Edge{
		testutil.CreateTestEdge("gate", "after"),
	}
	wf := testutil.CreateTestWorkflow(nodes, edges)

	store := memory.NewPersistence()
	require.NoError(t, store.SaveWorkflow(context.Background(), wf))

	logger := slog.New(slog.DiscardHandler)

	counting := &countingFactory{}

	reg := registry.NewRegistry(logger)
	reg.RegisterNode(&pauseFactory{})
	reg.RegisterNode(counting)

	executor := workflow.NewExecutor(store, reg, logger)

	paused, err := executor.Execute(context.Background(), wf.ID, "", map[string]any{"v": 1})
	require.NoError(t, err)
	require.Equal(t, models.ExecutionStatusWaiting, paused.Status)

	service := NewSubmissionService(store, submissions, executor, logger)

	return service, wf, paused, counting
}

// recordingSubmissions wraps a submission repository and counts its use, so
// tests can prove a dedicated backend handles the idempotency checks.
type recordingSubmissions struct {
	inner persistence.SubmissionRepository
	reads int
	saves int
}

func (r *recordingSubmissions) SubmissionByKey(ctx context.Context, idempotencyKey string) (*models.Submission, error) {
	r.reads++

	return r.inner.SubmissionByKey(ctx, idempotencyKey)
}

func (r *recordingSubmissions) SaveSubmission(ctx context.Context, submission *models.Submission) error {
	r.saves++

	return r.inner.SaveSubmission(ctx, submission)
}

func TestSubmit_ResumesWaitingExecution(t *testing.T) {
	service, wf, paused, counting := setupPausedRun(t)

	result, err := service.Submit(context.Background(), SubmitRequest{
		WorkflowID:     wf.ID,
		NodeID:         "gate",
		ExecutionID:    paused.ExecutionID,
		IdempotencyKey: "key-1",
		Data:           map[string]any{"approved": true},
	})
	require.NoError(t, err)

	assert.False(t, result.Duplicate)
	assert.Equal(t, models.ExecutionStatusSuccess, result.Execution.Status)
	assert.Equal(t, 1, counting.count)

	output, ok := result.Execution.Output.(map[string]any)
	require.True(t, ok)

	form, ok := output["form"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Approval", form["title"])
	assert.Equal(t, "gate", form["id"])
	assert.Equal(t, map[string]any{"approved": true}, output["data"])
	assert.NotEmpty(t, output["submitted_at"])
}

func TestSubmit_DuplicateKeyDoesNotReinvoke(t *testing.T) {
	service, wf, paused, counting := setupPausedRun(t)

	req := SubmitRequest{
		WorkflowID:     wf.ID,
		NodeID:         "gate",
		ExecutionID:    paused.ExecutionID,
		IdempotencyKey: "key-1",
		Data:           map[string]any{"approved": true},
	}

	first, err := service.Submit(context.Background(), req)
	require.NoError(t, err)
	require.False(t, first.Duplicate)

	second, err := service.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, second.Duplicate)
	assert.Equal(t, models.ExecutionStatusSuccess, second.Execution.Status)
	// The coordinator ran past the pause point exactly once.
	assert.Equal(t, 1, counting.count)
}

func TestSubmit_UsesDedicatedSubmissionRepository(t *testing.T) {
	submissions := &recordingSubmissions{inner: memory.NewPersistence()}
	service, wf, paused, counting := setupPausedRunWith(t, submissions)

	req := SubmitRequest{
		WorkflowID:     wf.ID,
		NodeID:         "gate",
		ExecutionID:    paused.ExecutionID,
		IdempotencyKey: "key-1",
		Data:           map[string]any{"approved": true},
	}

	first, err := service.Submit(context.Background(), req)
	require.NoError(t, err)
	require.False(t, first.Duplicate)

	second, err := service.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)

	// Both idempotency checks and the single save went through the
	// dedicated repository, and the run resumed exactly once.
	assert.Equal(t, 2, submissions.reads)
	assert.Equal(t, 1, submissions.saves)
	assert.Equal(t, 1, counting.count)
}

func TestSubmit_RejectsNonWaitingExecution(t *testing.T) {
	service, wf, paused, _ := setupPausedRun(t)

	_, err := service.Submit(context.Background(), SubmitRequest{
		WorkflowID:     wf.ID,
		NodeID:         "gate",
		ExecutionID:    paused.ExecutionID,
		IdempotencyKey: "key-1",
		Data:           map[string]any{"approved": true},
	})
	require.NoError(t, err)

	_, err = service.Submit(context.Background(), SubmitRequest{
		WorkflowID:     wf.ID,
		NodeID:         "gate",
		ExecutionID:    paused.ExecutionID,
		IdempotencyKey: "key-2",
		Data:           map[string]any{"approved": false},
	})
	require.Error(t, err)
	assert.True(t, IsNotWaiting(err))
}

func TestSubmit_RejectsWrongNode(t *testing.T) {
	service, wf, paused, _ := setupPausedRun(t)

	_, err := service.Submit(context.Background(), SubmitRequest{
		WorkflowID:  wf.ID,
		NodeID:      "after",
		ExecutionID: paused.ExecutionID,
		Data:        map[string]any{},
	})
	require.Error(t, err)
	assert.True(t, IsNodeMismatch(err))
}

func TestFormByNode_ReturnsDefinition(t *testing.T) {
	service, wf, _, _ := setupPausedRun(t)

	form, err := service.FormByNode(context.Background(), wf.ID, "gate")
	require.NoError(t, err)

	assert.Equal(t, "Approval", form.Title)
	assert.Equal(t, "gate", form.NodeID)
}

func TestFormByNode_RejectsNonFormNode(t *testing.T) {
	service, wf, _, _ := setupPausedRun(t)

	_, err := service.FormByNode(context.Background(), wf.ID, "after")
	require.Error(t, err)
	assert.True(t, IsNotFormNode(err))
}
