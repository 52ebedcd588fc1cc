// Package core defines the tool contract, the per-invocation context and
// the hook composition layer the rest of the framework is built on.
package core

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// RemoteCaller invokes a named operation on an external tool server and
// returns the raw protocol envelope. Implementations live outside this
// package; the core only consumes the contract. Protocol-level failures
// surface through the envelope's IsError flag, transport failures as
// native errors.
type RemoteCaller interface {
	CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error)
}

// Context is the per-invocation bundle passed explicitly to every hook and
// tool. It is constructed fresh at the framework boundary for each
// incoming request and discarded afterwards. Custom and Clients are loaded
// once at startup and shared read-only across concurrent invocations.
type Context struct {
	// SkillInput is the validated input to the enclosing skill. Nested
	// hooks may read fields (wallet address, chain preference) the tool
	// arguments do not carry.
	SkillInput map[string]any

	// Custom holds skill/agent-scoped shared state: token registries,
	// chain clients, RPC configuration. Hooks read it, never replace it.
	Custom any

	// Clients maps logical server names to connected remote callers.
	Clients map[string]RemoteCaller

	// Slots coordinates exclusive background work across invocations.
	Slots *SlotRegistry
}

// Client returns the remote caller registered under name.
func (c *Context) Client(name string) (RemoteCaller, bool) {
	if c == nil || c.Clients == nil {
		return nil, false
	}
	caller, ok := c.Clients[name]
	return caller, ok
}

// WithSkillInput returns a shallow copy of the context carrying the given
// skill input. The shared fields keep pointing at the same startup state.
func (c *Context) WithSkillInput(input map[string]any) *Context {
	out := *c
	out.SkillInput = input
	return &out
}

// Shared returns the Custom field typed as S. The second return is false
// when the context carries no shared state of that type; callers treating
// that as fatal should surface it as a programmer error.
func Shared[S any](c *Context) (S, bool) {
	var zero S
	if c == nil || c.Custom == nil {
		return zero, false
	}
	s, ok := c.Custom.(S)
	return s, ok
}
