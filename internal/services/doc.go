// Package services defines the typed failure taxonomy shared by every
// pipeline component and the context helpers used to correlate log events.
//
// Errors are tagged values rather than a type hierarchy: each carries a
// stable code, a context map identifying the failing operation, and a
// retryability flag fixed at construction time. The retry executor
// dispatches on that flag alone.
package services
