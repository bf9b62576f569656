package services

import (
	"errors"
	"fmt"
	"strings"
)

// Stable error codes used for classification, logging, and metrics labels.
const (
	CodeRemoteAccess    = "remote_access"
	CodeExternalService = "external_service"
	CodeValidation      = "validation"
	CodeResource        = "resource"
)

// Error is the typed failure value produced at collaborator boundaries.
// Retryable is decided when the error is constructed, based on the nature
// of the failure, and never recomputed afterwards.
type Error struct {
	Code      string
	Message   string
	Context   map[string]any
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	detail := strings.TrimSpace(e.Message)
	if detail == "" {
		detail = "service failure"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, detail)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewRemoteAccess wraps a failure talking to the remote store. Remote
// failures default to retryable; use NewRemoteAuth for credential failures.
func NewRemoteAccess(op, host, path string, cause error) *Error {
	return &Error{
		Code:      CodeRemoteAccess,
		Message:   op,
		Context:   contextMap("operation", op, "host", host, "path", path),
		Retryable: true,
		Cause:     cause,
	}
}

// NewRemoteAuth wraps an authentication failure against the remote store.
// Retrying with the same credentials cannot succeed.
func NewRemoteAuth(op, host string, cause error) *Error {
	return &Error{
		Code:      CodeRemoteAccess,
		Message:   op + ": authentication failed",
		Context:   contextMap("operation", op, "host", host, "auth", true),
		Retryable: false,
		Cause:     cause,
	}
}

// NewExternalService wraps a failure from an external collaborator
// (transcription engine, record store, object storage). The caller decides
// retryability from what it knows about the failure, typically via
// RetryableHTTPStatus.
func NewExternalService(service, op string, cause error, retryable bool) *Error {
	return &Error{
		Code:      CodeExternalService,
		Message:   service + ": " + op,
		Context:   contextMap("service", service, "operation", op),
		Retryable: retryable,
		Cause:     cause,
	}
}

// NewValidation reports input that can never be processed (oversize file,
// disallowed format). Validation failures are never retryable.
func NewValidation(op, message string, kv ...any) *Error {
	ctx := contextMap(kv...)
	ctx["operation"] = op
	return &Error{
		Code:      CodeValidation,
		Message:   op + ": " + message,
		Context:   ctx,
		Retryable: false,
	}
}

// NewResource wraps a local scratch-storage failure (create, move, write).
func NewResource(op, path string, cause error) *Error {
	return &Error{
		Code:      CodeResource,
		Message:   op,
		Context:   contextMap("operation", op, "path", path),
		Retryable: true,
		Cause:     cause,
	}
}

// Retryable reports whether err may be retried. Unclassified errors are
// retryable by default so unexpected transient conditions still make
// forward progress within the attempt budget.
func Retryable(err error) bool {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Retryable
	}
	return true
}

// CodeOf returns the stable code of err, or empty for unclassified errors.
func CodeOf(err error) string {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Code
	}
	return ""
}

// ContextOf returns the diagnostic context of err, or nil.
func ContextOf(err error) map[string]any {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Context
	}
	return nil
}

// RetryableHTTPStatus reports whether an HTTP status from an external
// service looks transient: server-side failures and rate limiting qualify.
func RetryableHTTPStatus(status int) bool {
	return status == 429 || status == 408 || status >= 500
}

func contextMap(kv ...any) map[string]any {
	ctx := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok || key == "" {
			continue
		}
		ctx[key] = kv[i+1]
	}
	return ctx
}
