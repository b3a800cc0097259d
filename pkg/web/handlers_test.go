package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/persistence/memory"
	"github.com/fluxohq/fluxo/pkg/registry"
	"github.com/fluxohq/fluxo/pkg/services"
	"github.com/fluxohq/fluxo/pkg/testutil"
	"github.com/fluxohq/fluxo/pkg/web"
	"github.com/fluxohq/fluxo/pkg/workflow"
)

func setupTestApp(t *testing.T) (*fiber.App, *memory.Persistence) {
	t.Helper()

	store := memory.NewPersistence()
	logger := slog.New(slog.DiscardHandler)

	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultNodes()

	executor := workflow.NewExecutor(store, reg, logger)
	submissions := services.NewSubmissionService(store, nil, executor, logger)
	handlers := web.NewAPIHandlers(store, executor, submissions, reg)

	app := fiber.New()
	handlers.RegisterRoutes(app)

	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, raw
}

func TestHealth(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/health", nil, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "healthy")
}

func TestSaveWorkflow_RejectsUnknownNodeType(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/workflows", web.SaveWorkflowRequest{
		Name: "Broken Workflow",
		Nodes: []*models.WorkflowNode{
			testutil.CreateTestNode(testutil.WithType("no-such-type")),
		},
	}, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "unknown node type")
}

func TestSaveWorkflow_AndFetch(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/workflows", web.SaveWorkflowRequest{
		Name:   "Order Pipeline",
		Status: models.WorkflowStatusActive,
		Nodes: []*models.WorkflowNode{
			testutil.CreateTestNode(testutil.WithID("start"), testutil.WithType("trigger:manual")),
		},
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Workflow
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created.ID)

	resp, body = doJSON(t, app, http.MethodGet, "/workflows/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched models.Workflow
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, "Order Pipeline", fetched.Name)
	assert.Len(t, fetched.Nodes, 1)
}

func TestDeleteWorkflow(t *testing.T) {
	app, store := setupTestApp(t)

	wf := testutil.CreateTestWorkflow(nil, nil)
	require.NoError(t, store.SaveWorkflow(context.Background(), wf))

	resp, _ := doJSON(t, app, http.MethodDelete, "/workflows/"+wf.ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/workflows/"+wf.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExecute_UnknownWorkflow(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/executions", web.ExecuteRequest{
		WorkflowID: "missing",
	}, nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExecute_RequiresWorkflowID(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/executions", web.ExecuteRequest{}, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func pausedWorkflow(t *testing.T, app *fiber.App, store *memory.Persistence) (*models.Workflow, workflow.Result) {
	t.Helper()

	nodes := []*models.WorkflowNode{
		testutil.CreateTestNode(testutil.WithID("start"), testutil.WithType("trigger:manual"),
			testutil.WithConfig(map[string]any{})),
		testutil.CreateTestNode(testutil.WithID("approval"), testutil.WithType("form"),
			testutil.WithConfig(map[string]any{"title": "Approval"})),
		testutil.CreateTestNode(testutil.WithID("announce"), testutil.WithType("log"),
			testutil.WithConfig(map[string]any{"message": "approved"})),
	}
	edges := []*models.Edge{
		testutil.CreateTestEdge("start", "approval"),
		testutil.CreateTestEdge("approval", "announce"),
	}
	wf := testutil.CreateTestWorkflow(nodes, edges)
	require.NoError(t, store.SaveWorkflow(context.Background(), wf))

	resp, body := doJSON(t, app, http.MethodPost, "/executions", web.ExecuteRequest{
		WorkflowID: wf.ID,
		Input:      map[string]any{"requester": "ada"},
	}, nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var result workflow.Result
	require.NoError(t, json.Unmarshal(body, &result))
	require.Equal(t, models.ExecutionStatusWaiting, result.Status)
	require.Equal(t, "approval", result.WaitingForNodeID)

	return wf, result
}

func TestExecutionLifecycle_PauseFormResume(t *testing.T) {
	app, store := setupTestApp(t)

	wf, paused := pausedWorkflow(t, app, store)

	// The public form endpoint serves the definition while the run waits.
	resp, body := doJSON(t, app, http.MethodGet, "/forms/"+wf.ID+"/approval", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Approval")

	// Submitting resumes and completes the run.
	resp, body = doJSON(t, app, http.MethodPost, "/forms/"+wf.ID+"/approval/submit", web.SubmitFormRequest{
		ExecutionID: paused.ExecutionID,
		Data:        map[string]any{"approved": true},
	}, map[string]string{web.IdempotencyKeyHeader: "req-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var submitResp struct {
		Duplicate bool             `json:"duplicate"`
		Execution *workflow.Result `json:"execution"`
	}
	require.NoError(t, json.Unmarshal(body, &submitResp))
	assert.False(t, submitResp.Duplicate)
	assert.Equal(t, models.ExecutionStatusSuccess, submitResp.Execution.Status)

	// A retried submission with the same key is acknowledged, not re-run.
	resp, body = doJSON(t, app, http.MethodPost, "/forms/"+wf.ID+"/approval/submit", web.SubmitFormRequest{
		ExecutionID: paused.ExecutionID,
		Data:        map[string]any{"approved": true},
	}, map[string]string{web.IdempotencyKeyHeader: "req-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, json.Unmarshal(body, &submitResp))
	assert.True(t, submitResp.Duplicate)

	// Execution state is queryable afterwards.
	resp, body = doJSON(t, app, http.MethodGet, "/executions/"+paused.ExecutionID, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var execution models.Execution
	require.NoError(t, json.Unmarshal(body, &execution))
	assert.Equal(t, models.ExecutionStatusSuccess, execution.Status)
}

func TestSubmitForm_WrongNodeConflicts(t *testing.T) {
	app, store := setupTestApp(t)

	wf, paused := pausedWorkflow(t, app, store)

	resp, _ := doJSON(t, app, http.MethodPost, "/forms/"+wf.ID+"/announce/submit", web.SubmitFormRequest{
		ExecutionID: paused.ExecutionID,
		Data:        map[string]any{},
	}, nil)

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGetForm_NonFormNode(t *testing.T) {
	app, store := setupTestApp(t)

	wf, _ := pausedWorkflow(t, app, store)

	resp, _ := doJSON(t, app, http.MethodGet, "/forms/"+wf.ID+"/announce", nil, nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetNodeTypes(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/nodes", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		NodeTypes []web.NodeTypeInfo `json:"node_types"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))

	ids := make([]string, 0, len(payload.NodeTypes))
	for _, info := range payload.NodeTypes {
		ids = append(ids, info.ID)
	}

	assert.Contains(t, ids, "transform")
	assert.Contains(t, ids, "form")
	assert.Contains(t, ids, "trigger:manual")
}
