package skills

import (
	"context"
	"fmt"

	"github.com/chainweave/agentkit/pkg/a2a"
	"github.com/chainweave/agentkit/pkg/core"
	agenterrors "github.com/chainweave/agentkit/pkg/errors"
)

// Orchestrator picks which of a skill's tools to run for an input, and
// with what arguments. Implementations may be as small as a static
// mapping or as large as an LLM planner; the boundary treats them as a
// black box.
type Orchestrator interface {
	Plan(ctx context.Context, skill string, input map[string]any, tools []core.Tool) (string, map[string]any, error)
}

// StaticOrchestrator always picks the same tool and forwards the skill
// input as arguments. Enough for tests and single-purpose agents.
type StaticOrchestrator struct {
	ToolName string
}

func (o StaticOrchestrator) Plan(ctx context.Context, skill string, input map[string]any, tools []core.Tool) (string, map[string]any, error) {
	return o.ToolName, input, nil
}

// Invoke runs the skill for one input and always produces exactly one
// task or message. Panics and stray errors become failed tasks with an
// InternalError; terminal values from hooks pass through untouched; raw
// tool results are wrapped into a completed task carrying a data
// artifact.
func Invoke(ctx context.Context, skill *Skill, input map[string]any, ec *core.Context) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = a2a.NewErrorTask(skill.Name,
				agenterrors.NewInternal(fmt.Sprintf("panic in skill %s: %v", skill.Name, r), nil), "")
			err = nil
		}
	}()

	scoped := ec.WithSkillInput(input)

	tool, args, err := selectTool(ctx, skill, input, scoped)
	if err != nil {
		return a2a.NewErrorTask(skill.Name, err, ""), nil
	}

	out, err := tool.Execute(ctx, args, scoped)
	if err != nil {
		return a2a.NewErrorTask(skill.Name, err, ""), nil
	}
	return wrapResult(skill.Name, out), nil
}

func selectTool(ctx context.Context, skill *Skill, input map[string]any, ec *core.Context) (core.Tool, map[string]any, error) {
	if len(skill.Tools) == 1 && skill.Orchestrator == nil {
		return skill.Tools[0], input, nil
	}
	if skill.Orchestrator == nil {
		return nil, nil, agenterrors.NewInternal("skill has no orchestrator", nil)
	}
	name, args, err := skill.Orchestrator.Plan(ctx, skill.Name, input, skill.Tools)
	if err != nil {
		return nil, nil, agenterrors.NewInternal("orchestrator failed to plan", err)
	}
	tool, ok := skill.Tool(name)
	if !ok {
		return nil, nil, agenterrors.NewInternal(fmt.Sprintf("orchestrator chose unknown tool %q", name), nil)
	}
	if args == nil {
		args = input
	}
	return tool, args, nil
}

// wrapResult normalizes a tool outcome into a task or message.
func wrapResult(skillName string, out any) any {
	switch v := out.(type) {
	case *a2a.Task:
		return v
	case *a2a.Message:
		return v
	case nil:
		return a2a.NewSuccessTask(skillName, nil, "", "")
	case string:
		return a2a.NewSuccessTask(skillName, nil, v, "")
	default:
		artifact := a2a.NewArtifact([]a2a.Part{a2a.DataPart(map[string]any{"result": v})}, "result", "")
		return a2a.NewSuccessTask(skillName, []a2a.Artifact{artifact}, "", "")
	}
}
