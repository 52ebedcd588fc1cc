package core

import (
	"context"

	"github.com/chainweave/agentkit/pkg/a2a"
)

// HookResult is the outcome of a before-hook: either continue with a
// (possibly transformed) argument set, or stop the chain with a terminal
// task or message. Modeling this as an explicit sum type means an args map
// can never be mistaken for a terminal value.
type HookResult struct {
	args    map[string]any
	task    *a2a.Task
	message *a2a.Message
}

// Continue resumes the chain with the given arguments. Passing nil keeps
// the current arguments unchanged.
func Continue(args map[string]any) HookResult {
	return HookResult{args: args}
}

// TerminalTask stops the chain; the task is returned to the caller
// unchanged and the base tool never runs.
func TerminalTask(task *a2a.Task) HookResult {
	return HookResult{task: task}
}

// TerminalMessage stops the chain with a clarification message.
func TerminalMessage(message *a2a.Message) HookResult {
	return HookResult{message: message}
}

// Terminal returns the terminal value and true when the result stops the
// chain.
func (r HookResult) Terminal() (any, bool) {
	if r.task != nil {
		return r.task, true
	}
	if r.message != nil {
		return r.message, true
	}
	return nil, false
}

// Args returns the argument set to continue with, or nil when the current
// arguments should be kept.
func (r HookResult) Args() map[string]any {
	return r.args
}

// BeforeHook transforms or validates tool arguments before execution.
// Hooks must treat args as immutable and return new maps (CloneArgs) when
// they add fields. Returning an error signals a programmer error, not a
// business failure; business failures are terminal failed tasks.
type BeforeHook func(ctx context.Context, args map[string]any, ec *Context) (HookResult, error)

// AfterHook transforms the raw result of a tool execution, typically
// parsing a remote response into a validated task.
type AfterHook func(ctx context.Context, result any, ec *Context) (any, error)

// Hooks bundles the wrappers attached to a tool.
type Hooks struct {
	Before BeforeHook
	After  AfterHook
}

// WithHooks wraps a tool with before/after transformations. The wrapped
// tool keeps the base tool's name, description and schema. A before-hook
// returning a terminal value short-circuits: the base tool and the
// after-hook never run.
func WithHooks(tool Tool, hooks Hooks) Tool {
	return &hookedTool{base: tool, hooks: hooks}
}

type hookedTool struct {
	base  Tool
	hooks Hooks
}

func (t *hookedTool) Name() string { return t.base.Name() }

func (t *hookedTool) Description() string { return t.base.Description() }

func (t *hookedTool) InputSchema() map[string]any { return t.base.InputSchema() }

func (t *hookedTool) Execute(ctx context.Context, args map[string]any, ec *Context) (any, error) {
	if t.hooks.Before != nil {
		res, err := t.hooks.Before(ctx, args, ec)
		if err != nil {
			return nil, err
		}
		if terminal, ok := res.Terminal(); ok {
			return terminal, nil
		}
		if next := res.Args(); next != nil {
			args = next
		}
	}

	out, err := t.base.Execute(ctx, args, ec)
	if err != nil {
		return nil, err
	}

	if t.hooks.After != nil {
		return t.hooks.After(ctx, out, ec)
	}
	return out, nil
}

// ComposeBefore chains before-hooks in order. Each hook receives the
// arguments produced by its predecessor; the first terminal result is
// returned immediately and the remaining hooks never run.
func ComposeBefore(hooks ...BeforeHook) BeforeHook {
	return func(ctx context.Context, args map[string]any, ec *Context) (HookResult, error) {
		current := args
		for _, hook := range hooks {
			if hook == nil {
				continue
			}
			res, err := hook(ctx, current, ec)
			if err != nil {
				return HookResult{}, err
			}
			if _, ok := res.Terminal(); ok {
				return res, nil
			}
			if next := res.Args(); next != nil {
				current = next
			}
		}
		return Continue(current), nil
	}
}

// CloneArgs returns a shallow copy of an argument map so hooks can add
// fields without mutating the caller's view.
func CloneArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args)+2)
	for k, v := range args {
		out[k] = v
	}
	return out
}
