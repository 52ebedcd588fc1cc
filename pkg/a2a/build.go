package a2a

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	agenterrors "github.com/chainweave/agentkit/pkg/errors"
)

const defaultSuccessText = "Operation completed successfully."

// NewContextID derives a grouping key for related tasks and messages.
// The shape is <skill>-<suffix>-<unix millis>-<random>; it correlates, it
// is not a primary key.
func NewContextID(skill, suffix string) string {
	if suffix == "" {
		suffix = "ctx"
	}
	return fmt.Sprintf("%s-%s-%d-%s", skill, suffix, time.Now().UnixMilli(), randHex(4))
}

// NewSuccessTask builds a completed task with a generated id, a derived
// context id, an agent-authored completion message and the given
// artifacts. An empty text falls back to a default completion message.
func NewSuccessTask(skill string, artifacts []Artifact, text, suffix string) *Task {
	if text == "" {
		text = defaultSuccessText
	}
	contextID := NewContextID(skill, suffix)
	return &Task{
		Kind:      KindTask,
		ID:        uuid.NewString(),
		ContextID: contextID,
		Status:    newStatus(TaskStateCompleted, agentMessage(text, contextID)),
		Artifacts: artifacts,
	}
}

// NewErrorTask builds a failed task whose status message carries the
// error's human-readable text. Structured errors additionally land as
// {name, message, code} under metadata.error.
func NewErrorTask(skill string, err error, suffix string) *Task {
	contextID := NewContextID(skill, suffix)
	ae := agenterrors.As(err)
	text := "unknown error"
	var metadata map[string]any
	if ae != nil {
		// Callers see the structured message, never the wrapped cause.
		text = ae.Message
		metadata = map[string]any{"error": ae.Metadata()}
	}
	return &Task{
		Kind:      KindTask,
		ID:        uuid.NewString(),
		ContextID: contextID,
		Status:    newStatus(TaskStateFailed, agentMessage(text, contextID)),
		Metadata:  metadata,
	}
}

// NewInputRequiredTask builds a task asking the caller to resubmit with
// more input. The text must tell the user what is missing.
func NewInputRequiredTask(skill, text, suffix string) *Task {
	contextID := NewContextID(skill, suffix)
	return &Task{
		Kind:      KindTask,
		ID:        uuid.NewString(),
		ContextID: contextID,
		Status:    newStatus(TaskStateInputRequired, agentMessage(text, contextID)),
	}
}

// MessageOpts carries the optional correlation fields of a message.
type MessageOpts struct {
	ContextID        string
	TaskID           string
	ReferenceTaskIDs []string
	Metadata         map[string]any
}

// NewInfoMessage builds a message with a single text part. An empty role
// defaults to the agent.
func NewInfoMessage(text string, role Role, opts MessageOpts) *Message {
	if role == "" {
		role = RoleAgent
	}
	return &Message{
		Kind:             KindMessage,
		MessageID:        uuid.NewString(),
		Role:             role,
		Parts:            []Part{TextPart(text)},
		ContextID:        opts.ContextID,
		TaskID:           opts.TaskID,
		ReferenceTaskIDs: opts.ReferenceTaskIDs,
		Metadata:         opts.Metadata,
	}
}

// NewArtifact builds an artifact with a fresh id.
func NewArtifact(parts []Part, name, description string) Artifact {
	return Artifact{
		ArtifactID:  uuid.NewString(),
		Name:        name,
		Description: description,
		Parts:       parts,
	}
}

func newStatus(state TaskState, message *Message) TaskStatus {
	return TaskStatus{
		State:     state,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

func agentMessage(text, contextID string) *Message {
	return NewInfoMessage(text, RoleAgent, MessageOpts{ContextID: contextID})
}

func randHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "00000000"[:n*2]
	}
	return hex.EncodeToString(buf)
}
