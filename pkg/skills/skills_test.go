package skills

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/chainweave/agentkit/pkg/a2a"
	"github.com/chainweave/agentkit/pkg/core"
	agenterrors "github.com/chainweave/agentkit/pkg/errors"
)

func echoTool(name string) core.Tool {
	return core.NewTool(name, "echoes its arguments",
		map[string]any{"type": "object"},
		func(ctx context.Context, args map[string]any, ec *core.Context) (any, error) {
			return args, nil
		})
}

func validSkill(name string) *Skill {
	return &Skill{
		Name:        name,
		Description: "a test skill",
		Tools:       []core.Tool{echoTool("echo")},
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(validSkill("wallet-balances")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, ok := reg.Get("wallet-balances"); !ok {
		t.Fatal("registered skill not found")
	}
	if _, ok := reg.Get("absent"); ok {
		t.Fatal("unexpected skill")
	}

	if err := reg.Register(validSkill("wallet-balances")); err == nil {
		t.Fatal("duplicate registration must fail")
	}
}

func TestRegistry_List(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"swap", "balances", "prediction"} {
		if err := reg.Register(validSkill(name)); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	list := reg.List()
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	for i, want := range []string{"balances", "prediction", "swap"} {
		if list[i].Name != want {
			t.Errorf("list[%d] = %s, want %s", i, list[i].Name, want)
		}
	}
}

func TestSkill_Validate(t *testing.T) {
	cases := []struct {
		name  string
		skill *Skill
	}{
		{"empty name", &Skill{Description: "d", Tools: []core.Tool{echoTool("t")}}},
		{"uppercase name", &Skill{Name: "Swap", Description: "d", Tools: []core.Tool{echoTool("t")}}},
		{"trailing hyphen", &Skill{Name: "swap-", Description: "d", Tools: []core.Tool{echoTool("t")}}},
		{"no description", &Skill{Name: "swap", Tools: []core.Tool{echoTool("t")}}},
		{"no tools", &Skill{Name: "swap", Description: "d"}},
		{"long name", &Skill{Name: strings.Repeat("a", 65), Description: "d", Tools: []core.Tool{echoTool("t")}}},
		{"duplicate tools", &Skill{Name: "swap", Description: "d", Tools: []core.Tool{echoTool("t"), echoTool("t")}}},
		{"multi-tool without orchestrator", &Skill{Name: "swap", Description: "d", Tools: []core.Tool{echoTool("a"), echoTool("b")}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.skill.Validate()
			var ae *agenterrors.AgentError
			if !errors.As(err, &ae) || ae.Name != agenterrors.NameValidation {
				t.Errorf("Validate() = %v, want a validation error", err)
			}
		})
	}

	good := &Skill{
		Name:         "multi",
		Description:  "d",
		Tools:        []core.Tool{echoTool("a"), echoTool("b")},
		Orchestrator: StaticOrchestrator{ToolName: "a"},
	}
	if err := good.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestInvoke_WrapsRawResultIntoCompletedTask(t *testing.T) {
	skill := validSkill("echo-skill")
	out, err := Invoke(context.Background(), skill, map[string]any{"q": "hi"}, &core.Context{})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	task, ok := out.(*a2a.Task)
	if !ok {
		t.Fatalf("expected a task, got %T", out)
	}
	if task.Status.State != a2a.TaskStateCompleted {
		t.Errorf("state = %s, want completed", task.Status.State)
	}
	if len(task.Artifacts) != 1 || len(task.Artifacts[0].Parts) != 1 {
		t.Fatalf("expected one data artifact, got %+v", task.Artifacts)
	}
	if task.Artifacts[0].Parts[0].Kind != "data" {
		t.Errorf("part kind = %s, want data", task.Artifacts[0].Parts[0].Kind)
	}
}

func TestInvoke_PassesTerminalTaskThrough(t *testing.T) {
	terminal := a2a.NewErrorTask("fixed", agenterrors.NewValidation("no"), "")
	skill := &Skill{
		Name:        "fixed",
		Description: "d",
		Tools: []core.Tool{core.NewTool("fixed", "d", nil,
			func(ctx context.Context, args map[string]any, ec *core.Context) (any, error) {
				return terminal, nil
			})},
	}
	out, err := Invoke(context.Background(), skill, nil, &core.Context{})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if out != terminal {
		t.Errorf("terminal task must pass through unchanged")
	}
}

func TestInvoke_ToolErrorBecomesFailedTask(t *testing.T) {
	skill := &Skill{
		Name:        "boom",
		Description: "d",
		Tools: []core.Tool{core.NewTool("boom", "d", nil,
			func(ctx context.Context, args map[string]any, ec *core.Context) (any, error) {
				return nil, errors.New("remote exploded")
			})},
	}
	out, err := Invoke(context.Background(), skill, nil, &core.Context{})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	task := out.(*a2a.Task)
	if task.Status.State != a2a.TaskStateFailed {
		t.Fatalf("state = %s, want failed", task.Status.State)
	}
	meta, _ := task.Metadata["error"].(map[string]any)
	if meta["name"] != agenterrors.NameInternal {
		t.Errorf("error metadata = %v, want InternalError", meta)
	}
}

func TestInvoke_PanicBecomesFailedInternalTask(t *testing.T) {
	skill := &Skill{
		Name:        "panicky",
		Description: "d",
		Tools: []core.Tool{core.NewTool("panicky", "d", nil,
			func(ctx context.Context, args map[string]any, ec *core.Context) (any, error) {
				panic("unexpected nil")
			})},
	}
	out, err := Invoke(context.Background(), skill, nil, &core.Context{})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	task, ok := out.(*a2a.Task)
	if !ok {
		t.Fatalf("expected a task, got %T", out)
	}
	if task.Status.State != a2a.TaskStateFailed {
		t.Errorf("state = %s, want failed", task.Status.State)
	}
	if !strings.Contains(task.StatusText(), "unexpected nil") {
		t.Errorf("status %q must carry the panic text", task.StatusText())
	}
}

func TestInvoke_OrchestratorPicksTool(t *testing.T) {
	picked := ""
	mk := func(name string) core.Tool {
		return core.NewTool(name, "d", nil,
			func(ctx context.Context, args map[string]any, ec *core.Context) (any, error) {
				picked = name
				return "done", nil
			})
	}
	skill := &Skill{
		Name:         "multi",
		Description:  "d",
		Tools:        []core.Tool{mk("first"), mk("second")},
		Orchestrator: StaticOrchestrator{ToolName: "second"},
	}
	out, err := Invoke(context.Background(), skill, map[string]any{}, &core.Context{})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if picked != "second" {
		t.Errorf("picked = %q, want second", picked)
	}
	task := out.(*a2a.Task)
	if task.StatusText() != "done" {
		t.Errorf("status = %q, want done", task.StatusText())
	}
}

func TestInvoke_SkillInputVisibleToTools(t *testing.T) {
	var seen map[string]any
	skill := &Skill{
		Name:        "ctx",
		Description: "d",
		Tools: []core.Tool{core.NewTool("ctx", "d", nil,
			func(ctx context.Context, args map[string]any, ec *core.Context) (any, error) {
				seen = ec.SkillInput
				return "ok", nil
			})},
	}
	input := map[string]any{"walletAddress": "0xabc"}
	if _, err := Invoke(context.Background(), skill, input, &core.Context{}); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if seen["walletAddress"] != "0xabc" {
		t.Errorf("skill input not propagated, got %v", seen)
	}
}
