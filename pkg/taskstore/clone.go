package taskstore

import "github.com/chainweave/agentkit/pkg/a2a"

// Deep copies preserve the dynamic types of metadata values, so a loaded
// record compares deep-equal to what was saved and mutations on either
// side never leak through the store boundary.

func cloneRecord(rec TaskAndHistory) TaskAndHistory {
	return TaskAndHistory{
		Task:    cloneTask(rec.Task),
		History: cloneMessages(rec.History),
	}
}

func cloneTask(t *a2a.Task) *a2a.Task {
	if t == nil {
		return nil
	}
	out := *t
	out.Status.Message = cloneMessage(t.Status.Message)
	out.Metadata = cloneMap(t.Metadata)
	if t.Artifacts != nil {
		out.Artifacts = make([]a2a.Artifact, len(t.Artifacts))
		for i, artifact := range t.Artifacts {
			out.Artifacts[i] = cloneArtifact(artifact)
		}
	}
	return &out
}

func cloneArtifact(a a2a.Artifact) a2a.Artifact {
	out := a
	out.Parts = cloneParts(a.Parts)
	out.Metadata = cloneMap(a.Metadata)
	return out
}

func cloneMessages(history []*a2a.Message) []*a2a.Message {
	if history == nil {
		return nil
	}
	out := make([]*a2a.Message, len(history))
	for i, msg := range history {
		out[i] = cloneMessage(msg)
	}
	return out
}

func cloneMessage(m *a2a.Message) *a2a.Message {
	if m == nil {
		return nil
	}
	out := *m
	out.Parts = cloneParts(m.Parts)
	out.Metadata = cloneMap(m.Metadata)
	if m.ReferenceTaskIDs != nil {
		out.ReferenceTaskIDs = append([]string(nil), m.ReferenceTaskIDs...)
	}
	return &out
}

func cloneParts(parts []a2a.Part) []a2a.Part {
	if parts == nil {
		return nil
	}
	out := make([]a2a.Part, len(parts))
	for i, part := range parts {
		out[i] = part
		out[i].Data = cloneMap(part.Data)
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		return cloneMap(value)
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
