// Package errors provides the typed error taxonomy used across the agent
// core. Every error the core raises carries a short machine-readable name,
// a numeric protocol code, and a human-readable message; ad hoc errors from
// remote calls are wrapped into this shape at the tool boundary.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
)

// Numeric codes are JSON-RPC flavored: the -32700..-32600 range mirrors the
// standard protocol codes, the -32000.. range is reserved for agent errors.
const (
	CodeParse               = -32700
	CodeInvalidRequest      = -32600
	CodeMethodNotFound      = -32601
	CodeInvalidParams       = -32602
	CodeInternal            = -32603
	CodeTaskNotFound        = -32001
	CodeTokenNotFound       = -32004
	CodeUnsupportedSchema   = -32005
	CodeInsufficientBalance = -32006
	CodePrediction          = -32007
)

// Error names surfaced by the core itself.
const (
	NameValidation          = "ValidationError"
	NameInternal            = "InternalError"
	NameTaskNotFound        = "TaskNotFound"
	NameTokenNotFound       = "TokenNotFound"
	NameUnsupportedSchema   = "UnsupportedSchemaError"
	NameInsufficientBalance = "InsufficientBalance"
	NamePrediction          = "PredictionError"
)

// AgentError is the single error shape used across the core.
// It implements the error interface and supports errors.As / errors.Unwrap.
type AgentError struct {
	Name    string
	Code    int
	Message string
	Err     error
	Details map[string]any
}

// New creates an AgentError with the given name, code, message and cause.
func New(name string, code int, msg string, cause error) *AgentError {
	return &AgentError{Name: name, Code: code, Message: msg, Err: cause}
}

// Error implements the error interface.
func (e *AgentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Name, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Name, e.Message)
}

// Unwrap exposes the wrapped cause for error chain traversal.
func (e *AgentError) Unwrap() error {
	return e.Err
}

// WithDetail attaches a key-value pair to the error for logs and task
// metadata. Returns the error for chaining.
func (e *AgentError) WithDetail(key string, value any) *AgentError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *AgentError) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"name":    e.Name,
		"code":    e.Code,
		"message": e.Message,
	}
	if e.Err != nil {
		out["cause"] = e.Err.Error()
	}
	if len(e.Details) > 0 {
		out["details"] = e.Details
	}
	return json.Marshal(out)
}

// Metadata returns the {name, message, code} map stored under
// metadata.error on failed tasks.
func (e *AgentError) Metadata() map[string]any {
	return map[string]any{
		"name":    e.Name,
		"message": e.Message,
		"code":    e.Code,
	}
}

// As coerces any error into an AgentError. Errors that already carry one
// in their chain pass through; everything else is wrapped as an internal
// error keeping the native text as the message.
func As(err error) *AgentError {
	if err == nil {
		return nil
	}
	var ae *AgentError
	if stderrors.As(err, &ae) {
		return ae
	}
	return New(NameInternal, CodeInternal, err.Error(), err)
}

// NewValidation reports invalid or missing input arguments.
func NewValidation(msg string) *AgentError {
	return New(NameValidation, CodeInvalidParams, msg, nil)
}

// NewInternal reports an unexpected failure inside the core.
func NewInternal(msg string, cause error) *AgentError {
	return New(NameInternal, CodeInternal, msg, cause)
}

// NewTaskNotFound reports an unknown task id.
func NewTaskNotFound(taskID string) *AgentError {
	return New(NameTaskNotFound, CodeTaskNotFound, fmt.Sprintf("task %q not found", taskID), nil)
}

// NewTokenNotFound reports a token symbol absent from the registry.
func NewTokenNotFound(symbol string) *AgentError {
	return New(NameTokenNotFound, CodeTokenNotFound, fmt.Sprintf("token %q is not supported", symbol), nil)
}

// NewUnsupportedSchema reports an input schema shape the framework cannot
// expose to callers.
func NewUnsupportedSchema(msg string) *AgentError {
	return New(NameUnsupportedSchema, CodeUnsupportedSchema, msg, nil)
}

// NewInsufficientBalance reports an on-chain balance below the amount a
// tool was asked to move.
func NewInsufficientBalance(msg string) *AgentError {
	return New(NameInsufficientBalance, CodeInsufficientBalance, msg, nil)
}

// NewPrediction reports a failure surfaced by a remote tool server.
func NewPrediction(msg string, cause error) *AgentError {
	return New(NamePrediction, CodePrediction, msg, cause)
}
