// Package workflow contains the execution coordinator: it compiles a
// workflow graph into an order, drives node execution, resolves each
// node's input from upstream outputs, and implements the pause/resume and
// error-trigger protocols.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/fluxohq/fluxo/pkg/eventbus"
	"github.com/fluxohq/fluxo/pkg/events"
	"github.com/fluxohq/fluxo/pkg/graph"
	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/outputs"
	"github.com/fluxohq/fluxo/pkg/persistence"
	"github.com/fluxohq/fluxo/pkg/protocol"
	"github.com/fluxohq/fluxo/pkg/registry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fluxohq/fluxo/pkg/otelhelper"
)

// Executor coordinates workflow runs. One Executor serves many concurrent
// runs; all per-run state lives on the stack of Execute, so no locking is
// needed.
type Executor struct {
	persistence   persistence.Persistence
	registry      *registry.Registry
	logger        *slog.Logger
	publisher     eventbus.EventPublisher
	tracer        trace.Tracer
	storeCapacity int
}

// Option configures an Executor.
type Option func(*Executor)

// WithStoreCapacity sets the per-run output store capacity.
func WithStoreCapacity(capacity int) Option {
	return func(e *Executor) { e.storeCapacity = capacity }
}

// WithEventBus makes the executor publish execution lifecycle events.
func WithEventBus(publisher eventbus.EventPublisher) Option {
	return func(e *Executor) { e.publisher = publisher }
}

// WithTracer enables a span per run and per node.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Executor) { e.tracer = tracer }
}

func NewExecutor(p persistence.Persistence, r *registry.Registry, logger *slog.Logger, opts ...Option) *Executor {
	executor := &Executor{
		persistence:   p,
		registry:      r,
		logger:        logger,
		storeCapacity: outputs.DefaultCapacity,
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

// Result is what a run returns to its caller: terminal state or a
// resumable reference when the run paused.
type Result struct {
	ExecutionID      string                     `json:"execution_id"`
	Status           models.ExecutionStatus     `json:"status"`
	Output           any                        `json:"output,omitempty"`
	Logs             []models.ExecutionLogEntry `json:"logs"`
	WaitingForNodeID string                     `json:"waiting_for_node_id,omitempty"`
	CacheStats       outputs.Stats              `json:"cache_stats"`
}

// Execute runs a workflow. An empty executionID starts a new run; a
// non-empty one resumes a waiting run whose resume payload has already been
// recorded (input then carries the submission payload). No error escapes
// uncaught: node failures terminate the run as failed with full logs.
func (e *Executor) Execute(ctx context.Context, workflowID, executionID string, input map[string]any) (*Result, error) {
	logger := e.logger.With("workflow_id", workflowID)

	wf, err := e.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workflow %s: %w", workflowID, err)
	}

	resuming := executionID != ""

	execution, err := e.loadOrCreateExecution(ctx, wf, executionID, input)
	if err != nil {
		return nil, err
	}

	logger = logger.With("execution_id", execution.ID)

	if e.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
			attribute.String(otelhelper.WorkflowIDKey, workflowID),
			attribute.String(otelhelper.ExecutionIDKey, execution.ID),
		)
		defer span.End()
	}

	compiled := graph.Compile(wf.Nodes, wf.Edges)
	if len(compiled.Unscheduled) > 0 {
		// Cyclic subgraphs never reach zero pending dependencies; execution
		// proceeds without them.
		logger.Warn("Nodes with unmet dependencies will not run",
			"node_ids", compiled.Unscheduled)
	}

	if e.storeCapacity < len(compiled.Order) {
		logger.Warn("Output store capacity is smaller than the node count; downstream nodes may hit cache misses",
			"capacity", e.storeCapacity, "nodes", len(compiled.Order))
	}

	store := outputs.NewStore(e.storeCapacity)
	store.Set(outputs.KeyTrigger, execution.TriggerInput, true)
	store.Set(outputs.KeyInput, execution.TriggerInput, true)

	startIndex := 0

	if resuming {
		startIndex, err = e.prepareResume(ctx, execution, compiled.Order, store, input)
		if err != nil {
			return nil, err
		}
	}

	e.publish(ctx, execution, events.ExecutionStarted{
		BaseEvent:    e.baseEvent(execution),
		TriggerInput: execution.TriggerInput,
		Resumed:      resuming,
	})

	memBefore := heapAlloc()
	startedAt := time.Now().UTC()

	run := &runState{
		workflow:  wf,
		execution: execution,
		order:     compiled.Order,
		handlers:  compiled.ErrorHandlers,
		incoming:  graph.IncomingEdges(wf.Edges),
		store:     store,
		logger:    logger,
	}

	result, err := e.runLoop(ctx, run, startIndex)
	if err != nil {
		return nil, err
	}

	if result.Status != models.ExecutionStatusWaiting {
		execution.Metadata = map[string]any{
			"cache":             store.Stats(),
			"heap_delta_bytes":  int64(heapAlloc()) - int64(memBefore),
			"order_node_count":  len(compiled.Order),
			"unscheduled_nodes": compiled.Unscheduled,
		}

		now := time.Now().UTC()
		execution.FinishedAt = &now

		if err := e.persistence.UpdateExecution(ctx, execution); err != nil {
			logger.Error("Failed to persist terminal execution state", "error", err)
		}

		switch result.Status {
		case models.ExecutionStatusSuccess:
			e.publish(ctx, execution, events.ExecutionCompleted{
				BaseEvent: e.baseEvent(execution),
				Output:    execution.Output,
				Duration:  time.Since(startedAt),
			})
		case models.ExecutionStatusFailed:
			e.publish(ctx, execution, events.ExecutionFailed{
				BaseEvent:    e.baseEvent(execution),
				FailedNodeID: result.failedNodeID,
				Error:        result.failureMessage,
				Duration:     time.Since(startedAt),
			})
		}

		result.CacheStats = store.Stats()
		store.Clear()
	} else {
		result.CacheStats = store.Stats()
	}

	return &result.Result, nil
}

type runState struct {
	workflow  *models.Workflow
	execution *models.Execution
	order     []*models.WorkflowNode
	handlers  []*models.WorkflowNode
	incoming  map[string][]*models.Edge
	store     *outputs.Store
	logger    *slog.Logger
}

func (e *Executor) loadOrCreateExecution(ctx context.Context, wf *models.Workflow, executionID string, input map[string]any) (*models.Execution, error) {
	if executionID == "" {
		execution := &models.Execution{
			ID:           generateExecutionID(),
			WorkflowID:   wf.ID,
			Status:       models.ExecutionStatusRunning,
			TriggerInput: input,
			Logs:         []models.ExecutionLogEntry{},
			StartedAt:    time.Now().UTC(),
		}

		if err := e.persistence.CreateExecution(ctx, execution); err != nil {
			return nil, fmt.Errorf("failed to create execution: %w", err)
		}

		return execution, nil
	}

	execution, err := e.persistence.ExecutionByID(ctx, executionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch execution %s: %w", executionID, err)
	}

	if execution.Status != models.ExecutionStatusWaiting {
		return nil, fmt.Errorf("execution %s is %s, not waiting: %w", executionID, execution.Status, ErrNotResumable)
	}

	return execution, nil
}

// prepareResume rehydrates the output store from the run's logs, seeds the
// paused node's output with the submission payload (pause points are
// pass-throughs on resume), and returns the index one past the paused node.
func (e *Executor) prepareResume(ctx context.Context, execution *models.Execution, order []*models.WorkflowNode, store *outputs.Store, payload map[string]any) (int, error) {
	waitingNodeID := execution.WaitingForNodeID
	if waitingNodeID == "" {
		return 0, fmt.Errorf("execution %s has no waiting node: %w", execution.ID, ErrNotResumable)
	}

	pausedIndex := -1

	for i, node := range order {
		if node.ID == waitingNodeID {
			pausedIndex = i

			break
		}
	}

	if pausedIndex < 0 {
		return 0, fmt.Errorf("waiting node %s is not in the execution order: %w", waitingNodeID, ErrNotResumable)
	}

	// Replay the latest logged output per node.
	replayed := make(map[string]any)

	for _, entry := range execution.Logs {
		if entry.Status == models.NodeStatusSuccess && entry.Output != nil {
			replayed[entry.NodeID] = entry.Output
		}
	}

	store.Warm(replayed)

	pausedNode := order[pausedIndex]
	store.Set(pausedNode.ID, payload, false)
	appendLog(execution, closedLogEntry(pausedNode, models.NodeStatusSuccess, payload, payload, ""))

	execution.Status = models.ExecutionStatusRunning
	execution.WaitingForNodeID = ""
	execution.TriggerInput = payload

	if err := e.persistence.UpdateExecution(ctx, execution); err != nil {
		return 0, fmt.Errorf("failed to persist resumed execution: %w", err)
	}

	return pausedIndex + 1, nil
}

type loopResult struct {
	Result

	failedNodeID   string
	failureMessage string
}

func (e *Executor) runLoop(ctx context.Context, run *runState, startIndex int) (*loopResult, error) {
	execution := run.execution

	for i := startIndex; i < len(run.order); i++ {
		if err := ctx.Err(); err != nil {
			return e.failRun(ctx, run, run.order[i], fmt.Errorf("run cancelled: %w", err)), nil
		}

		node := run.order[i]

		if node.Disabled {
			appendLog(execution, closedLogEntry(node, models.NodeStatusSkipped, nil, nil, ""))

			continue
		}

		input, err := e.resolveInput(run, node)
		if err != nil {
			return e.failRun(ctx, run, node, err), nil
		}

		instance, err := e.registry.CreateNode(ctx, node.Type, node.ID, node.Config)
		if err != nil {
			return e.failRun(ctx, run, node, err), nil
		}

		// Pause points do not compute a value on first visit: externalize
		// state and hand a resumable reference back to the caller.
		if pauser, ok := instance.(protocol.Pauser); ok && pauser.PausesExecution() {
			return e.pauseRun(ctx, run, node, input)
		}

		output, err := e.executeNode(ctx, run, instance, node, input)
		if err != nil {
			return e.failRun(ctx, run, node, err), nil
		}

		run.store.Set(node.ID, output, false)
		appendLog(execution, closedLogEntry(node, models.NodeStatusSuccess, input, output, ""))
		execution.Output = output

		if err := e.persistence.UpdateExecution(ctx, execution); err != nil {
			run.logger.Error("Failed to persist execution state after node", "node_id", node.ID, "error", err)
		}
	}

	execution.Status = models.ExecutionStatusSuccess

	return &loopResult{Result: Result{
		ExecutionID: execution.ID,
		Status:      execution.Status,
		Output:      execution.Output,
		Logs:        execution.Logs,
	}}, nil
}

func (e *Executor) executeNode(ctx context.Context, run *runState, instance protocol.Node, node *models.WorkflowNode, input map[string]any) (map[string]any, error) {
	if e.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, e.tracer, "node.execute",
			attribute.String(otelhelper.NodeIDKey, node.ID),
			attribute.String(otelhelper.NodeTypeKey, node.Type),
		)
		defer span.End()
	}

	startedAt := time.Now().UTC()

	output, err := instance.Execute(ctx, e.executionContext(run), input)

	status := models.NodeStatusSuccess
	errMessage := ""

	if err != nil {
		status = models.NodeStatusFailed
		errMessage = err.Error()

		if e.tracer != nil {
			otelhelper.SetError(trace.SpanFromContext(ctx), err)
		}
	}

	e.publish(ctx, run.execution, events.NodeFinished{
		BaseEvent:  e.baseEvent(run.execution),
		NodeID:     node.ID,
		NodeType:   node.Type,
		Status:     status,
		DurationMs: time.Since(startedAt).Milliseconds(),
		Error:      errMessage,
	})

	return output, err
}

func (e *Executor) pauseRun(ctx context.Context, run *runState, node *models.WorkflowNode, input map[string]any) (*loopResult, error) {
	execution := run.execution
	execution.Status = models.ExecutionStatusWaiting
	execution.WaitingForNodeID = node.ID

	entry := newLogEntry(node, models.NodeStatusRunning, input)
	appendLog(execution, entry)

	if err := e.persistence.UpdateExecution(ctx, execution); err != nil {
		return nil, fmt.Errorf("failed to persist waiting execution: %w", err)
	}

	e.publish(ctx, execution, events.ExecutionPaused{
		BaseEvent:        e.baseEvent(execution),
		WaitingForNodeID: node.ID,
	})

	run.logger.Info("Execution paused, waiting for external input", "node_id", node.ID)

	return &loopResult{Result: Result{
		ExecutionID:      execution.ID,
		Status:           execution.Status,
		Logs:             execution.Logs,
		WaitingForNodeID: node.ID,
	}}, nil
}

// failRun records the failure, runs error-trigger nodes best-effort, and
// returns the terminal result. No further main-order nodes run.
func (e *Executor) failRun(ctx context.Context, run *runState, node *models.WorkflowNode, cause error) *loopResult {
	execution := run.execution

	run.logger.Error("Node execution failed", "node_id", node.ID, "node_type", node.Type, "error", cause)

	appendLog(execution, closedLogEntry(node, models.NodeStatusFailed, nil, nil, cause.Error()))
	execution.Status = models.ExecutionStatusFailed

	e.runErrorHandlers(ctx, run, node, cause)

	return &loopResult{
		Result: Result{
			ExecutionID: execution.ID,
			Status:      execution.Status,
			Output:      execution.Output,
			Logs:        execution.Logs,
		},
		failedNodeID:   node.ID,
		failureMessage: cause.Error(),
	}
}

// runErrorHandlers invokes error-trigger nodes with a synthetic payload
// describing the failure. A handler's own failure is logged but does not
// re-fail the already-failed run.
func (e *Executor) runErrorHandlers(ctx context.Context, run *runState, failed *models.WorkflowNode, cause error) {
	if len(run.handlers) == 0 {
		return
	}

	syntheticInput := map[string]any{
		"failed_node":   failed.ID,
		"error_message": cause.Error(),
		"error_type":    errorType(cause),
		"workflow_id":   run.workflow.ID,
		"execution_id":  run.execution.ID,
	}

	for _, handler := range run.handlers {
		instance, err := e.registry.CreateNode(ctx, handler.Type, handler.ID, handler.Config)
		if err != nil {
			run.logger.Error("Failed to create error-trigger node", "node_id", handler.ID, "error", err)

			continue
		}

		output, err := instance.Execute(ctx, e.executionContext(run), syntheticInput)
		if err != nil {
			run.logger.Error("Error-trigger node failed", "node_id", handler.ID, "error", err)
			appendLog(run.execution, closedLogEntry(handler, models.NodeStatusFailed, syntheticInput, nil, err.Error()))

			continue
		}

		appendLog(run.execution, closedLogEntry(handler, models.NodeStatusSuccess, syntheticInput, output, ""))
	}
}

func (e *Executor) executionContext(run *runState) models.ExecutionContext {
	return models.ExecutionContext{
		ID:           run.execution.ID,
		WorkflowID:   run.workflow.ID,
		TriggerInput: run.execution.TriggerInput,
		Variables:    run.workflow.Variables,
		Outputs:      run.store,
	}
}

func (e *Executor) baseEvent(execution *models.Execution) events.BaseEvent {
	return events.BaseEvent{
		ID:          uuid.New().String(),
		Timestamp:   time.Now().UTC(),
		WorkflowID:  execution.WorkflowID,
		ExecutionID: execution.ID,
	}
}

func (e *Executor) publish(ctx context.Context, execution *models.Execution, event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(ctx, execution.ID, event); err != nil {
		e.logger.Warn("Failed to publish execution event", "event_type", event.GetType(), "error", err)
	}
}

func errorType(err error) string {
	switch {
	case protocol.IsConfigError(err):
		return "configuration"
	case protocol.IsCacheMiss(err):
		return "cache_miss"
	case protocol.IsSandboxTimeout(err):
		return "sandbox_timeout"
	case protocol.IsSandboxViolation(err):
		return "sandbox_violation"
	default:
		return "execution"
	}
}

func newLogEntry(node *models.WorkflowNode, status models.NodeStatus, input any) models.ExecutionLogEntry {
	return models.ExecutionLogEntry{
		NodeID:    node.ID,
		NodeName:  nodeName(node),
		Status:    status,
		StartedAt: time.Now().UTC(),
		Input:     input,
	}
}

func closedLogEntry(node *models.WorkflowNode, status models.NodeStatus, input, output any, errMessage string) models.ExecutionLogEntry {
	entry := newLogEntry(node, status, input)
	now := time.Now().UTC()
	entry.FinishedAt = &now
	entry.Output = output
	entry.Error = errMessage

	return entry
}

func appendLog(execution *models.Execution, entry models.ExecutionLogEntry) {
	execution.Logs = append(execution.Logs, entry)
}

func nodeName(node *models.WorkflowNode) string {
	if node.Name != "" {
		return node.Name
	}

	return node.Type
}

func generateExecutionID() string {
	return "exec-" + uuid.New().String()
}

func heapAlloc() uint64 {
	var stats runtime.MemStats

	runtime.ReadMemStats(&stats)

	return stats.HeapAlloc
}
