package logging

import (
	"context"
	"log/slog"

	"scribe/internal/services"
)

// WithContext returns a logger enriched with the run, item, and stage
// correlation fields carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	attrs := make([]any, 0, 3)
	if runID, ok := services.RunIDFromContext(ctx); ok {
		attrs = append(attrs, String(FieldRunID, runID))
	}
	if item, ok := services.ItemFromContext(ctx); ok {
		attrs = append(attrs, String(FieldItem, item))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		attrs = append(attrs, String(FieldStage, stage))
	}
	if len(attrs) == 0 {
		return logger
	}
	return logger.With(attrs...)
}
