package workflow

import (
	"context"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"scribe/internal/logging"
	"scribe/internal/metrics"
	"scribe/internal/recordstore"
	"scribe/internal/remote"
	"scribe/internal/retry"
	"scribe/internal/services"
	"scribe/internal/services/stt"
	"scribe/internal/staging"
)

// processItem runs the fixed stage sequence for one recording. The returned
// error is item-scoped; the caller records it and moves on.
func (o *Orchestrator) processItem(ctx context.Context, client remote.Client, runID string, item remote.Item) error {
	ctx = services.WithItem(ctx, item.RemotePath)
	logger := logging.WithContext(ctx, o.logger)

	scratch, err := staging.NewItemDir(o.cfg.StagingDir, runID, item.Name)
	if err != nil {
		return services.NewResource("prepare scratch", o.cfg.StagingDir, err)
	}
	defer func() {
		if err := staging.Remove(scratch); err != nil {
			logger.Warn("scratch cleanup failed",
				logging.String("path", scratch),
				logging.Error(err),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
		}
	}()

	source := filepath.Join(scratch, "source"+filepath.Ext(item.Name))
	normalized := filepath.Join(scratch, "normalized.wav")

	if err := o.runStage(ctx, logger, "fetch", func(ctx context.Context) error {
		return retry.DoVoid(ctx, o.retryPolicy(o.remotePolicy, "fetch", logger), func(ctx context.Context) error {
			return client.Fetch(ctx, item.RemotePath, source)
		})
	}); err != nil {
		return err
	}

	if err := o.runStage(ctx, logger, "normalize", func(ctx context.Context) error {
		return retry.DoVoid(ctx, o.retryPolicy(o.externalPolicy, "normalize", logger), func(ctx context.Context) error {
			return o.normalizer.Normalize(ctx, source, normalized)
		})
	}); err != nil {
		return err
	}

	var transcript stt.Result
	if err := o.runStage(ctx, logger, "transcribe", func(ctx context.Context) error {
		var err error
		transcript, err = retry.Do(ctx, o.retryPolicy(o.externalPolicy, "transcribe", logger), func(ctx context.Context) (stt.Result, error) {
			return o.transcriber.Transcribe(ctx, normalized)
		})
		return err
	}); err != nil {
		return err
	}

	var archiveURL string
	if o.archiver != nil {
		key := path.Join(runID, archiveName(item.Name))
		if err := o.runStage(ctx, logger, "archive", func(ctx context.Context) error {
			var err error
			archiveURL, err = retry.Do(ctx, o.retryPolicy(o.externalPolicy, "archive", logger), func(ctx context.Context) (string, error) {
				return o.archiver.Put(ctx, normalized, key)
			})
			return err
		}); err != nil {
			return err
		}
	}

	return o.runStage(ctx, logger, "record", func(ctx context.Context) error {
		return retry.DoVoid(ctx, o.retryPolicy(o.externalPolicy, "record", logger), func(ctx context.Context) error {
			err := o.recorder.SaveTranscript(ctx, recordstore.TranscriptRecord{
				RunID:      runID,
				RemotePath: item.RemotePath,
				Name:       item.Name,
				SizeBytes:  item.SizeBytes,
				ModifiedAt: item.ModifiedAt,
				Transcript: transcript.Text,
				Language:   transcript.Language,
				ArchiveURL: archiveURL,
			})
			if err != nil {
				return services.NewExternalService("recordstore", "save transcript", err, true)
			}
			return nil
		})
	})
}

// runStage wraps one stage with correlation fields and timing events.
func (o *Orchestrator) runStage(ctx context.Context, logger *slog.Logger, name string, fn func(context.Context) error) error {
	ctx = services.WithStage(ctx, name)
	stageLogger := logger.With(logging.String(logging.FieldStage, name))

	stageLogger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))
	start := time.Now()
	if err := fn(ctx); err != nil {
		stageLogger.Warn("stage failed",
			logging.Duration("elapsed", time.Since(start)),
			logging.Error(err),
			logging.String(logging.FieldErrorCode, services.CodeOf(err)),
			logging.String(logging.FieldEventType, "stage_failure"),
		)
		return err
	}
	stageLogger.Debug("stage complete",
		logging.Duration("elapsed", time.Since(start)),
		logging.String(logging.FieldEventType, "stage_complete"),
	)
	return nil
}

// retryPolicy hooks retry attempts into metrics and the run log.
func (o *Orchestrator) retryPolicy(base retry.Policy, operation string, logger *slog.Logger) retry.Policy {
	policy := base
	policy.OnRetry = func(err error, attempt int) {
		o.sink.Inc(metrics.RetryAttempts, map[string]string{"operation": operation})
		logger.Warn("operation failed, waiting to retry",
			logging.String("operation", operation),
			logging.Int(logging.FieldAttempt, attempt),
			logging.Duration("delay", policy.Delay(attempt-1)),
			logging.Error(err),
			logging.String(logging.FieldEventType, "retry_wait"),
		)
	}
	return policy
}

func archiveName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" {
		base = name
	}
	return base + ".wav"
}
