// Package a2a defines the task and message model every execution path in
// the agent core terminates in, plus the sanctioned constructors for
// building those values.
package a2a

// Kind discriminators carried on the wire so consumers can branch on the
// value shape without schema knowledge.
const (
	KindTask    = "task"
	KindMessage = "message"
)

// TaskState describes the lifecycle state of a task.
type TaskState string

const (
	TaskStateSubmitted     TaskState = "submitted"
	TaskStateWorking       TaskState = "working"
	TaskStateInputRequired TaskState = "input-required"
	TaskStateCompleted     TaskState = "completed"
	TaskStateFailed        TaskState = "failed"
)

// Terminal reports whether a state admits no further transitions.
func (s TaskState) Terminal() bool {
	return s == TaskStateCompleted || s == TaskStateFailed
}

// Role identifies the author of a message.
type Role string

const (
	RoleAgent Role = "agent"
	RoleUser  Role = "user"
)

// Part kinds. Consumers must branch on Kind.
const (
	PartKindText = "text"
	PartKindData = "data"
)

// Part is one content item of a message or artifact: either plain text or
// a structured data map, tagged by Kind.
type Part struct {
	Kind string         `json:"kind"`
	Text string         `json:"text,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

// TextPart builds a text content part.
func TextPart(text string) Part {
	return Part{Kind: PartKindText, Text: text}
}

// DataPart builds a structured data content part.
func DataPart(data map[string]any) Part {
	return Part{Kind: PartKindData, Data: data}
}

// Artifact is a named bundle of parts attached to a completed task to
// carry durable structured output.
type Artifact struct {
	ArtifactID  string         `json:"artifactId"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Parts       []Part         `json:"parts"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Message is a non-task conversational turn, typically a clarification
// request. It is a terminal alternative to a Task, not a Task subtype.
type Message struct {
	Kind             string         `json:"kind"`
	MessageID        string         `json:"messageId"`
	Role             Role           `json:"role"`
	Parts            []Part         `json:"parts"`
	ContextID        string         `json:"contextId,omitempty"`
	TaskID           string         `json:"taskId,omitempty"`
	ReferenceTaskIDs []string       `json:"referenceTaskIds,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// Text returns the concatenated text parts of the message.
func (m *Message) Text() string {
	var out string
	for _, part := range m.Parts {
		if part.Kind != PartKindText {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += part.Text
	}
	return out
}

// TaskStatus pairs a state with the message that explains it and the time
// the state was entered.
type TaskStatus struct {
	State     TaskState `json:"state"`
	Message   *Message  `json:"message,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
}

// Task represents one durable unit of work requested by a caller. Its
// state is set exactly once at construction; transitions are represented
// by constructing a new value.
type Task struct {
	Kind      string         `json:"kind"`
	ID        string         `json:"id"`
	ContextID string         `json:"contextId"`
	Status    TaskStatus     `json:"status"`
	Artifacts []Artifact     `json:"artifacts,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// StatusText returns the text of the status message, if any.
func (t *Task) StatusText() string {
	if t.Status.Message == nil {
		return ""
	}
	return t.Status.Message.Text()
}
