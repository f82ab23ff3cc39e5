// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrCodeMissingSession   ErrorCode = "MISSING_CUSTOMER_ID"
	ErrCodePromptNotFound   ErrorCode = "PROMPT_NOT_FOUND"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeOperationTimeout ErrorCode = "OPERATION_TIMEOUT"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout     ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound     ErrorCode = "INDEX_NOT_FOUND"
	ErrCodeEmbeddingFailed   ErrorCode = "EMBEDDING_FAILED"

	ErrCodeStoreFailed ErrorCode = "KV_STORE_FAILED"
)

// StandardError represents a structured application error.
//
// Upstream errors (store, index or embedding failures) fail the job with no
// retries so the engine raises an incident. Everything else is thrown as a
// BPMN error the process model can catch.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Upstream  bool                   `json:"upstream"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Incident       bool                   `json:"incident"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message, details string, upstream bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Upstream:  upstream,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Tool input failed validation", details, false, nil)
}

func NewMissingSessionError() *StandardError {
	return newError(ErrCodeMissingSession, "Session customer is not established",
		"customer_id variable is missing or not a positive integer", false, nil)
}

func NewPromptNotFoundError(name string, cause error) *StandardError {
	return newError(ErrCodePromptNotFound, "Prompt not found",
		fmt.Sprintf("prompt %q is not in the store; seed prompts first", name), false, cause)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true, err)
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true, err)
}

func NewQueryTimeoutError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout",
		fmt.Sprintf("queryType: %s", queryType), true, err)
}

func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Concert index query error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true, err)
}

func NewSearchTimeoutError(queryType string, err error) *StandardError {
	return newError(ErrCodeSearchTimeout, "Concert index query timeout",
		fmt.Sprintf("queryType: %s", queryType), true, err)
}

func NewIndexNotFoundError(indexName string, err error) *StandardError {
	return newError(ErrCodeIndexNotFound, "Concert index not found",
		fmt.Sprintf("indexName: %s", indexName), true, err)
}

func NewEmbeddingFailedError(err error) *StandardError {
	return newError(ErrCodeEmbeddingFailed, "Embedding request failed", err.Error(), true, err)
}

func NewStoreFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeStoreFailed, "Key-value store error",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true, err)
}

// NewStoreError classifies a key-value store failure: a deadline becomes an
// operation timeout, anything else a store failure.
func NewStoreError(operation string, err error) *StandardError {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("redis", err)
	}
	return NewStoreFailedError(operation, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeOperationTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true, err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), true, err)
}

// Normalize returns err as a StandardError, wrapping unknown errors as internal.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	return &BPMNError{
		Code:     string(stdErr.Code),
		Message:  stdErr.Message,
		Details:  stdErr.Details,
		Incident: stdErr.Upstream,
		ErrorVariables: map[string]interface{}{
			"errorCategory": GetErrorCategory(stdErr.Code),
			"timestamp":     stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "EMBEDDING"):
		return "AI"
	case strings.Contains(codeStr, "KV_STORE") || strings.Contains(codeStr, "PROMPT") || strings.Contains(codeStr, "PROFILE"):
		return "STORE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "MISSING"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
