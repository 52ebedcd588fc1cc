package core

import "context"

// Tool is the smallest unit of executable capability within a skill. A
// tool's Execute either returns a terminal *a2a.Task / *a2a.Message, or a
// raw intermediate result an after-hook turns into one.
type Tool interface {
	Name() string
	Description() string

	// InputSchema is the JSON-schema shaped parameter declaration exposed
	// to callers. The framework only requires object schemas.
	InputSchema() map[string]any

	Execute(ctx context.Context, args map[string]any, ec *Context) (any, error)
}

// ExecuteFunc is the business logic of a FuncTool.
type ExecuteFunc func(ctx context.Context, args map[string]any, ec *Context) (any, error)

// FuncTool builds a Tool from a plain function.
type FuncTool struct {
	name        string
	description string
	schema      map[string]any
	fn          ExecuteFunc
}

// NewTool creates a FuncTool.
func NewTool(name, description string, schema map[string]any, fn ExecuteFunc) *FuncTool {
	return &FuncTool{name: name, description: description, schema: schema, fn: fn}
}

func (t *FuncTool) Name() string { return t.name }

func (t *FuncTool) Description() string { return t.description }

func (t *FuncTool) InputSchema() map[string]any { return t.schema }

func (t *FuncTool) Execute(ctx context.Context, args map[string]any, ec *Context) (any, error) {
	return t.fn(ctx, args, ec)
}

var _ Tool = (*FuncTool)(nil)
