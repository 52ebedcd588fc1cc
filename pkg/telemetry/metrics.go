package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	agenterrors "github.com/chainweave/agentkit/pkg/errors"
)

// ToolMetrics tracks skill invocations: volume, failures by error kind,
// and latency.
type ToolMetrics struct {
	invocations metric.Int64Counter
	failures    metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewToolMetrics registers the invocation instruments on the global
// meter provider.
func NewToolMetrics() (*ToolMetrics, error) {
	meter := otel.Meter("agentkit/skills")

	invocations, err := meter.Int64Counter(
		"agentkit.skill.invocations",
		metric.WithDescription("Skill invocations by skill and final task state"),
	)
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter(
		"agentkit.skill.failures",
		metric.WithDescription("Failed skill invocations by skill and error name"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		"agentkit.skill.duration",
		metric.WithDescription("Skill invocation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &ToolMetrics{invocations: invocations, failures: failures, duration: duration}, nil
}

// RecordInvocation records one completed invocation. state is the final
// task state or "message" for clarification replies.
func (m *ToolMetrics) RecordInvocation(ctx context.Context, skill, state string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("skill", skill),
		attribute.String("state", state),
	)
	m.invocations.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("skill", skill)))
}

// RecordFailure records a failed invocation tagged with the structured
// error name when one is available.
func (m *ToolMetrics) RecordFailure(ctx context.Context, skill string, err error) {
	if m == nil || err == nil {
		return
	}
	name := "unknown"
	if ae := agenterrors.As(err); ae != nil {
		name = ae.Name
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("skill", skill),
		attribute.String("error.name", name),
	))
}
