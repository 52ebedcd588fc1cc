package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/chainweave/agentkit/pkg/a2a"
	"github.com/chainweave/agentkit/pkg/core"
	agenterrors "github.com/chainweave/agentkit/pkg/errors"
	"github.com/chainweave/agentkit/pkg/skills"
	"github.com/chainweave/agentkit/pkg/taskstore"
)

func newTestAgent(t *testing.T, store taskstore.Store) *Agent {
	t.Helper()
	a, err := New(Options{ID: "Test Agent 1.0", Store: store})
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	return a
}

func echoSkill(name string) *skills.Skill {
	return &skills.Skill{
		Name:        name,
		Description: "echoes its input",
		InputSchema: map[string]any{"type": "object"},
		Tools: []core.Tool{core.NewTool(name, "echo", nil,
			func(ctx context.Context, args map[string]any, ec *core.Context) (any, error) {
				return args, nil
			})},
	}
}

func decodeEnvelope(t *testing.T, result *mcp.CallToolResult) (*a2a.Task, string) {
	t.Helper()
	if result.IsError {
		t.Fatalf("unexpected error envelope: %+v", result)
	}
	if len(result.Content) != 1 {
		t.Fatalf("expected one content item, got %d", len(result.Content))
	}
	resource, ok := result.Content[0].(mcp.EmbeddedResource)
	if !ok {
		t.Fatalf("expected an embedded resource, got %T", result.Content[0])
	}
	contents, ok := resource.Resource.(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected text resource contents, got %T", resource.Resource)
	}
	var task a2a.Task
	if err := json.Unmarshal([]byte(contents.Text), &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	return &task, contents.URI
}

func TestAgent_RequiresID(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected an error for a missing id")
	}
}

func TestAgent_HandleWrapsResultAndPersists(t *testing.T) {
	store := taskstore.NewMemoryStore()
	a := newTestAgent(t, store)
	skill := echoSkill("echo")
	if err := a.RegisterSkill(skill); err != nil {
		t.Fatalf("register: %v", err)
	}

	result := a.handle(context.Background(), skill, map[string]any{"q": "hello"})
	task, uri := decodeEnvelope(t, result)

	if task.Status.State != a2a.TaskStateCompleted {
		t.Errorf("state = %s, want completed", task.Status.State)
	}
	if !strings.HasPrefix(uri, "tag:test-agent-1-0,") {
		t.Errorf("uri %q must carry the sanitized agent authority", uri)
	}

	stored, err := store.Load(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("load persisted task: %v", err)
	}
	if stored == nil {
		t.Fatal("terminal task was not persisted")
	}
	if len(stored.History) != 1 || stored.History[0].TaskID != task.ID {
		t.Errorf("persisted history = %+v", stored.History)
	}
}

func TestAgent_FailedTaskCarriesErrorMetadata(t *testing.T) {
	store := taskstore.NewMemoryStore()
	a := newTestAgent(t, store)
	skill := &skills.Skill{
		Name:        "failing",
		Description: "always fails",
		Tools: []core.Tool{core.NewTool("failing", "d", nil,
			func(ctx context.Context, args map[string]any, ec *core.Context) (any, error) {
				return nil, agenterrors.NewTokenNotFound("FAKE")
			})},
	}
	if err := a.RegisterSkill(skill); err != nil {
		t.Fatalf("register: %v", err)
	}

	result := a.handle(context.Background(), skill, nil)
	task, _ := decodeEnvelope(t, result)
	if task.Status.State != a2a.TaskStateFailed {
		t.Fatalf("state = %s, want failed", task.Status.State)
	}
	meta, _ := task.Metadata["error"].(map[string]any)
	if meta["name"] != agenterrors.NameTokenNotFound {
		t.Errorf("error metadata = %v", meta)
	}

	stored, err := store.Load(context.Background(), task.ID)
	if err != nil || stored == nil {
		t.Fatalf("failed task must persist too, got %v/%v", stored, err)
	}
}

func TestAgent_PersistenceFailureDoesNotBreakResponse(t *testing.T) {
	a := newTestAgent(t, failingStore{})
	skill := echoSkill("echo")
	if err := a.RegisterSkill(skill); err != nil {
		t.Fatalf("register: %v", err)
	}

	result := a.handle(context.Background(), skill, map[string]any{"q": "hi"})
	task, _ := decodeEnvelope(t, result)
	if task.Status.State != a2a.TaskStateCompleted {
		t.Errorf("state = %s, want completed despite a store failure", task.Status.State)
	}
}

func TestAgent_RejectsNonObjectSchema(t *testing.T) {
	a := newTestAgent(t, nil)
	skill := echoSkill("bad-schema")
	skill.InputSchema = map[string]any{"type": "string"}
	err := a.RegisterSkill(skill)
	var ae *agenterrors.AgentError
	if !errors.As(err, &ae) || ae.Name != agenterrors.NameUnsupportedSchema {
		t.Fatalf("expected UnsupportedSchemaError, got %v", err)
	}
	if got := a.Skills(); len(got) != 0 {
		t.Errorf("rejected skill must not stay registered, got %d skills", len(got))
	}
}

func TestAgent_DuplicateSkillRejected(t *testing.T) {
	a := newTestAgent(t, nil)
	if err := a.RegisterSkill(echoSkill("dup")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := a.RegisterSkill(echoSkill("dup")); err == nil {
		t.Fatal("duplicate skill must be rejected")
	}
}

// failingStore always errors on save.
type failingStore struct{}

func (failingStore) Save(ctx context.Context, rec taskstore.TaskAndHistory) error {
	return agenterrors.NewInternal("disk full", nil)
}

func (failingStore) Load(ctx context.Context, taskID string) (*taskstore.TaskAndHistory, error) {
	return nil, nil
}

func (failingStore) ListByContext(ctx context.Context, contextID string) ([]*a2a.Task, error) {
	return nil, nil
}
