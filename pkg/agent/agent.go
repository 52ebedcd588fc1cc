// Package agent assembles the runtime: a skill registry served over the
// MCP protocol, a shared invocation context, task persistence and
// invocation metrics.
package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/chainweave/agentkit/pkg/a2a"
	"github.com/chainweave/agentkit/pkg/core"
	agenterrors "github.com/chainweave/agentkit/pkg/errors"
	agentmcp "github.com/chainweave/agentkit/pkg/mcp"
	"github.com/chainweave/agentkit/pkg/skills"
	"github.com/chainweave/agentkit/pkg/taskstore"
	"github.com/chainweave/agentkit/pkg/telemetry"
)

// Options configures an Agent. ID is the only required field; a nil
// Store disables persistence and a nil Logger falls back to the default.
type Options struct {
	ID      string
	Version string

	// Custom is the shared startup state (token registry, chain clients)
	// exposed to hooks through the invocation context.
	Custom any

	// Clients maps logical server names to connected remote callers.
	Clients map[string]core.RemoteCaller

	Store   taskstore.Store
	Metrics *telemetry.ToolMetrics
	Logger  *slog.Logger
}

// Agent serves registered skills over MCP and persists their terminal
// tasks.
type Agent struct {
	id       string
	registry *skills.Registry
	server   *agentmcp.Server
	custom   any
	clients  map[string]core.RemoteCaller
	slots    *core.SlotRegistry
	store    taskstore.Store
	metrics  *telemetry.ToolMetrics
	logger   *slog.Logger
}

// New creates an agent runtime.
func New(opts Options) (*Agent, error) {
	if opts.ID == "" {
		return nil, agenterrors.NewValidation("agent id is required")
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		id:       opts.ID,
		registry: skills.NewRegistry(),
		server:   agentmcp.NewServer(opts.ID, version),
		custom:   opts.Custom,
		clients:  opts.Clients,
		slots:    core.NewSlotRegistry(),
		store:    opts.Store,
		metrics:  opts.Metrics,
		logger:   logger,
	}, nil
}

// RegisterSkill adds the skill to the registry and exposes it as an MCP
// tool. The schema is checked first so a rejected skill never lands in
// the registry.
func (a *Agent) RegisterSkill(skill *skills.Skill) error {
	if err := agentmcp.ValidateObjectSchema(skill.Name, skill.InputSchema); err != nil {
		return err
	}
	if err := a.registry.Register(skill); err != nil {
		return err
	}
	return a.server.RegisterTool(skill.Name, skill.Description, skill.InputSchema,
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			return a.handle(ctx, skill, args), nil
		})
}

// Skills returns the registered skills.
func (a *Agent) Skills() []*skills.Skill {
	return a.registry.List()
}

// ServeStdio blocks serving the registered skills on stdio.
func (a *Agent) ServeStdio() error {
	a.logger.Info("agent serving", "agent", a.id, "skills", len(a.registry.List()))
	return a.server.ServeStdio()
}

// handle runs one invocation end to end: invoke, persist, envelope.
// Every outcome becomes a well-formed protocol response.
func (a *Agent) handle(ctx context.Context, skill *skills.Skill, args map[string]any) *mcp.CallToolResult {
	start := time.Now()

	result, err := skills.Invoke(ctx, skill, args, a.newContext())
	if err != nil {
		ae := agenterrors.As(err)
		a.logger.ErrorContext(ctx, "skill invocation failed", "skill", skill.Name, "error", err)
		a.metrics.RecordFailure(ctx, skill.Name, ae)
		a.metrics.RecordInvocation(ctx, skill.Name, "error", time.Since(start))
		return agentmcp.NewErrorResponse(ae.Message, ae.Name)
	}

	state := a.finish(ctx, skill.Name, result)
	a.metrics.RecordInvocation(ctx, skill.Name, state, time.Since(start))

	envelope, err := agentmcp.NewA2AResponse(result, a.id)
	if err != nil {
		a.logger.ErrorContext(ctx, "response encoding failed", "skill", skill.Name, "error", err)
		return agentmcp.NewErrorResponse(err.Error(), agenterrors.NameInternal)
	}
	return envelope
}

// finish persists terminal tasks and returns the outcome label for
// metrics. Persistence failures are logged, never surfaced to the
// caller: the response is already built and valid.
func (a *Agent) finish(ctx context.Context, skillName string, result any) string {
	task, ok := result.(*a2a.Task)
	if !ok {
		return "message"
	}
	state := string(task.Status.State)
	if a.store == nil || !task.Status.State.Terminal() {
		return state
	}

	rec := taskstore.TaskAndHistory{Task: task}
	if task.Status.Message != nil {
		msg := *task.Status.Message
		msg.TaskID = task.ID
		rec.History = []*a2a.Message{&msg}
	}
	if err := a.store.Save(ctx, rec); err != nil {
		a.logger.ErrorContext(ctx, "task persistence failed",
			"skill", skillName, "taskId", task.ID, "error", err)
	}
	return state
}

// newContext builds the per-invocation context over the shared startup
// state.
func (a *Agent) newContext() *core.Context {
	return &core.Context{
		Custom:  a.custom,
		Clients: a.clients,
		Slots:   a.slots,
	}
}
