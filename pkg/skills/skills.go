// Package skills defines the unit an agent exposes to callers: a named
// skill bundling one or more tools, plus the registry and the invocation
// boundary that turns any outcome into exactly one task or message.
package skills

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/chainweave/agentkit/pkg/core"
	agenterrors "github.com/chainweave/agentkit/pkg/errors"
)

const (
	maxNameLen        = 64
	maxDescriptionLen = 1024
)

var namePattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Skill is a caller-facing capability: a description for discovery, an
// input schema for validation, and the tools that implement it. A skill
// with a single tool dispatches directly; one with several needs an
// Orchestrator to pick.
type Skill struct {
	Name         string
	Description  string
	Tags         []string
	InputSchema  map[string]any
	Tools        []core.Tool
	Orchestrator Orchestrator
}

// Tool returns the skill's tool by name.
func (s *Skill) Tool(name string) (core.Tool, bool) {
	for _, tool := range s.Tools {
		if tool.Name() == name {
			return tool, true
		}
	}
	return nil, false
}

// Validate checks the skill definition against the registry's rules.
func (s *Skill) Validate() error {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return agenterrors.NewValidation("skill name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return agenterrors.NewValidation(fmt.Sprintf("skill name exceeds %d characters", maxNameLen))
	}
	if !namePattern.MatchString(name) {
		return agenterrors.NewValidation(fmt.Sprintf("skill name must match %s", namePattern.String())).
			WithDetail("name", name)
	}
	desc := strings.TrimSpace(s.Description)
	if desc == "" {
		return agenterrors.NewValidation("skill description is required").WithDetail("name", name)
	}
	if utf8.RuneCountInString(desc) > maxDescriptionLen {
		return agenterrors.NewValidation(fmt.Sprintf("skill description exceeds %d characters", maxDescriptionLen)).
			WithDetail("name", name)
	}
	if len(s.Tools) == 0 {
		return agenterrors.NewValidation("skill needs at least one tool").WithDetail("name", name)
	}
	seen := make(map[string]bool, len(s.Tools))
	for _, tool := range s.Tools {
		if tool == nil {
			return agenterrors.NewValidation("skill has a nil tool").WithDetail("name", name)
		}
		if seen[tool.Name()] {
			return agenterrors.NewValidation("duplicate tool name").
				WithDetail("name", name).WithDetail("tool", tool.Name())
		}
		seen[tool.Name()] = true
	}
	if len(s.Tools) > 1 && s.Orchestrator == nil {
		return agenterrors.NewValidation("multi-tool skill needs an orchestrator").WithDetail("name", name)
	}
	return nil
}

// Registry holds the skills an agent serves. Registration happens at
// startup; lookups run concurrently afterwards.
type Registry struct {
	mu     sync.RWMutex
	skills map[string]*Skill
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{skills: make(map[string]*Skill)}
}

// Register validates the skill and adds it. Re-registering a name is an
// error.
func (r *Registry) Register(skill *Skill) error {
	if skill == nil {
		return agenterrors.NewValidation("skill is nil")
	}
	if err := skill.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.skills[skill.Name]; exists {
		return agenterrors.NewValidation("skill already registered").WithDetail("name", skill.Name)
	}
	r.skills[skill.Name] = skill
	return nil
}

// Get returns the skill registered under name.
func (r *Registry) Get(name string) (*Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	skill, ok := r.skills[name]
	return skill, ok
}

// List returns the registered skills sorted by name.
func (r *Registry) List() []*Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Skill, 0, len(r.skills))
	for _, skill := range r.skills {
		out = append(out, skill)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
