package logging

// Field names shared across structured events so downstream tooling can
// rely on stable keys.
const (
	FieldEventType    = "event_type"
	FieldRunID        = "run_id"
	FieldItem         = "item"
	FieldStage        = "stage"
	FieldAttempt      = "attempt"
	FieldErrorCode    = "error_code"
	FieldErrorContext = "error_context"
	FieldRetryable    = "retryable"
	FieldErrorHint    = "error_hint"
	FieldImpact       = "impact"
)
