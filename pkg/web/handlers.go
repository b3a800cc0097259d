// Package web provides the HTTP API: execution start/resume, workflow CRUD,
// public form endpoints and health.
package web

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/persistence"
	"github.com/fluxohq/fluxo/pkg/registry"
	"github.com/fluxohq/fluxo/pkg/services"
	"github.com/fluxohq/fluxo/pkg/workflow"
)

// IdempotencyKeyHeader carries the caller-chosen duplicate-detection key on
// form submissions.
const IdempotencyKeyHeader = "X-Idempotency-Key"

type APIHandlers struct {
	persistence persistence.Persistence
	executor    *workflow.Executor
	submissions *services.SubmissionService
	registry    *registry.Registry
	validator   *validator.Validate
}

func NewAPIHandlers(
	p persistence.Persistence,
	executor *workflow.Executor,
	submissions *services.SubmissionService,
	reg *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		persistence: p,
		executor:    executor,
		submissions: submissions,
		registry:    reg,
		validator:   validator.New(),
	}
}

// RegisterRoutes mounts all API routes on the app.
func (h *APIHandlers) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.Health)

	app.Post("/executions", h.Execute)
	app.Get("/executions/:id", h.GetExecution)

	app.Get("/workflows", h.GetWorkflows)
	app.Get("/workflows/:id", h.GetWorkflow)
	app.Post("/workflows", h.SaveWorkflow)
	app.Delete("/workflows/:id", h.DeleteWorkflow)

	app.Get("/forms/:workflowID/:nodeID", h.GetForm)
	app.Post("/forms/:workflowID/:nodeID/submit", h.SubmitForm)

	app.Get("/nodes", h.GetNodeTypes)
}

// Health reports the persistence backend's reachability.
func (h *APIHandlers) Health(c fiber.Ctx) error {
	if err := h.persistence.HealthCheck(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{"status": "healthy"})
}

// Execute starts a new run, or resumes a waiting one when execution_id is
// supplied.
func (h *APIHandlers) Execute(c fiber.Ctx) error {
	var req ExecuteRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.executor.Execute(c.Context(), req.WorkflowID, req.ExecutionID, req.Input)
	if err != nil {
		return handleServiceError(c, err)
	}

	status := fiber.StatusOK
	if result.Status == models.ExecutionStatusWaiting {
		status = fiber.StatusAccepted
	}

	return c.Status(status).JSON(result)
}

// GetExecution returns the stored state of one run.
func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "execution ID is required")
	}

	execution, err := h.persistence.ExecutionByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

// GetWorkflows lists all workflows.
func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.persistence.Workflows(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":   workflows,
		"total_count": len(workflows),
	})
}

// GetWorkflow returns one workflow by id.
func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "workflow ID is required")
	}

	wf, err := h.persistence.WorkflowByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(wf)
}

// SaveWorkflow creates or replaces a workflow. Node types must be
// registered; unknown types are rejected before the graph is stored.
func (h *APIHandlers) SaveWorkflow(c fiber.Ctx) error {
	var req SaveWorkflowRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	for _, node := range req.Nodes {
		if node.Type != "" && !h.registry.IsRegistered(node.Type) {
			return badRequest(c, "unknown node type '"+node.Type+"'")
		}
	}

	now := time.Now().UTC()

	wf := &models.Workflow{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Nodes:       req.Nodes,
		Edges:       req.Edges,
		Variables:   req.Variables,
		Metadata:    req.Metadata,
		Owner:       req.Owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if wf.ID == "" {
		wf.ID = uuid.New().String()
	} else if existing, err := h.persistence.WorkflowByID(c.Context(), wf.ID); err == nil {
		wf.CreatedAt = existing.CreatedAt
	}

	if wf.Status == "" {
		wf.Status = models.WorkflowStatusDraft
	}

	if err := h.persistence.SaveWorkflow(c.Context(), wf); err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(wf)
}

// DeleteWorkflow soft deletes a workflow.
func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "workflow ID is required")
	}

	if err := h.persistence.DeleteWorkflow(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetForm serves the public definition of a form node, used by frontends to
// render the form while the run waits.
func (h *APIHandlers) GetForm(c fiber.Ctx) error {
	form, err := h.submissions.FormByNode(c.Context(), c.Params("workflowID"), c.Params("nodeID"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(form)
}

// SubmitForm resumes a waiting run with the submitted data. The
// X-Idempotency-Key header makes retries safe.
func (h *APIHandlers) SubmitForm(c fiber.Ctx) error {
	var req SubmitFormRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.submissions.Submit(c.Context(), services.SubmitRequest{
		WorkflowID:     c.Params("workflowID"),
		NodeID:         c.Params("nodeID"),
		ExecutionID:    req.ExecutionID,
		IdempotencyKey: c.Get(IdempotencyKeyHeader),
		Data:           req.Data,
		Files:          req.Files,
		Meta:           req.Meta,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"duplicate": result.Duplicate,
		"execution": result.Execution,
	})
}

// GetNodeTypes lists the registered node types with their config schemas.
func (h *APIHandlers) GetNodeTypes(c fiber.Ctx) error {
	types := h.registry.NodeTypes()
	sort.Strings(types)

	infos := make([]NodeTypeInfo, 0, len(types))

	for _, nodeType := range types {
		factory, ok := h.registry.Factory(nodeType)
		if !ok {
			continue
		}

		infos = append(infos, NodeTypeInfo{
			ID:          factory.ID(),
			Name:        factory.Name(),
			Description: factory.Description(),
			Schema:      factory.Schema(),
		})
	}

	return c.JSON(fiber.Map{"node_types": infos})
}
