// Package errors provides the standardized error taxonomy used by tool adapters,
// the router and the HTTP layer.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Core taxonomy. Extraction, remote and format failures are recovered inside the
// adapter; reasoning bound is recovered by the router; configuration is fatal.
const (
	ErrCodeExtractionFailed       ErrorCode = "EXTRACTION_FAILED"
	ErrCodeRemoteCallFailed       ErrorCode = "REMOTE_CALL_FAILED"
	ErrCodeFormatFailed           ErrorCode = "FORMAT_FAILED"
	ErrCodeReasoningBoundExceeded ErrorCode = "REASONING_BOUND_EXCEEDED"
	ErrCodeConfigurationMissing   ErrorCode = "CONFIGURATION_MISSING"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// Auxiliary codes for the agent, database and session layers.
const (
	ErrCodeLLMCallFailed        ErrorCode = "LLM_CALL_FAILED"
	ErrCodeSQLGenerationFailed  ErrorCode = "SQL_GENERATION_FAILED"
	ErrCodeQueryExecutionFailed ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeSessionStoreFailed   ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeUnknownTool          ErrorCode = "UNKNOWN_TOOL"
)

// StandardError represents a structured application error. For tool failures
// Message carries the user-facing reason that follows the failure prefix.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewExtractionFailedError reports that a required entity could not be found in the query.
func NewExtractionFailedError(field, reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionFailed,
		Message:   reason,
		Details:   fmt.Sprintf("field: %s", field),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRemoteCallFailedError reports a transport error, a non-2xx status or a
// business code other than 0/200. reason is surfaced to the user verbatim.
func NewRemoteCallFailedError(endpoint, reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRemoteCallFailed,
		Message:   reason,
		Details:   fmt.Sprintf("endpoint: %s", endpoint),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFormatFailedError reports a successful response that lacks expected fields.
func NewFormatFailedError(reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFormatFailed,
		Message:   reason,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReasoningBoundExceededError reports that the reasoning loop hit its iteration or time cap.
func NewReasoningBoundExceededError(iterations int, elapsed time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeReasoningBoundExceeded,
		Message:   "Reasoning loop stopped at its bound",
		Details:   fmt.Sprintf("iterations: %d, elapsed: %s", iterations, elapsed.Round(time.Millisecond)),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigurationMissingError reports a required setting that is absent at construction.
func NewConfigurationMissingError(setting string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationMissing,
		Message:   "Required configuration is missing",
		Details:   fmt.Sprintf("setting: %s", setting),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMCallFailedError wraps a failed model inference call.
func NewLLMCallFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMCallFailed,
		Message:   "LLM inference call failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSQLGenerationFailedError wraps a failure to obtain a usable SQL statement.
func NewSQLGenerationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSQLGenerationFailed,
		Message:   "SQL generation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError wraps a database execution failure.
func NewQueryExecutionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreFailedError wraps a session backend failure.
func NewSessionStoreFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store operation failed",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownToolError reports a tool name that is not registered.
func NewUnknownToolError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownTool,
		Message:   "Unknown tool",
		Details:   fmt.Sprintf("tool: %s", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps anything that does not fit the taxonomy.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError normalizes err, unwrapping if a StandardError is in the chain.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code == code
	}
	return false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "EXTRACTION"):
		return "EXTRACTION"
	case strings.Contains(codeStr, "REMOTE"):
		return "REMOTE"
	case strings.Contains(codeStr, "FORMAT"):
		return "FORMAT"
	case strings.Contains(codeStr, "REASONING") || strings.Contains(codeStr, "LLM"):
		return "REASONING"
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "CONFIG"
	case strings.Contains(codeStr, "SQL") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "SESSION"):
		return "DATABASE"
	default:
		return "OTHER"
	}
}
