package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"scribe/internal/logging"
	"scribe/internal/metrics"
	"scribe/internal/recordstore"
	"scribe/internal/remote"
	"scribe/internal/retry"
	"scribe/internal/services"
	"scribe/internal/services/stt"
	"scribe/internal/staging"
)

// Normalizer converts a fetched recording into the transcription input
// format.
type Normalizer interface {
	Normalize(ctx context.Context, source, dest string) error
}

// Transcriber produces a transcript from a local audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, localPath string) (stt.Result, error)
}

// Recorder persists run and transcript records.
type Recorder interface {
	StartRun(ctx context.Context, runID string) error
	FinishRun(ctx context.Context, runID string, processed, failed int) error
	SaveTranscript(ctx context.Context, rec recordstore.TranscriptRecord) error
}

// Archiver uploads the normalized recording and returns its public URL.
// Optional; a nil Archiver skips the stage.
type Archiver interface {
	Put(ctx context.Context, localPath, key string) (string, error)
}

// Config holds the per-run settings the orchestrator needs.
type Config struct {
	BasePath      string
	CapCount      int
	StagingDir    string
	CleanStaleAge time.Duration
}

// State is a read-only snapshot of one run's progress.
type State struct {
	Running       bool
	StopRequested bool
	Processed     int
	Failed        int
}

// Orchestrator owns the remote connection and run state for exactly one
// run. Construct a fresh instance per run; state is never reset.
type Orchestrator struct {
	cfg            Config
	connector      remote.Connector
	catalog        *remote.Catalog
	normalizer     Normalizer
	transcriber    Transcriber
	recorder       Recorder
	archiver       Archiver
	sink           metrics.Sink
	logger         *slog.Logger
	remotePolicy   retry.Policy
	externalPolicy retry.Policy

	mu            sync.Mutex
	started       bool
	running       bool
	stopRequested bool
	processed     int
	failed        int
	client        remote.Client
	clientClosed  bool
}

// Deps bundles the collaborators an orchestrator drives.
type Deps struct {
	Connector      remote.Connector
	Catalog        *remote.Catalog
	Normalizer     Normalizer
	Transcriber    Transcriber
	Recorder       Recorder
	Archiver       Archiver
	Metrics        metrics.Sink
	Logger         *slog.Logger
	RemotePolicy   retry.Policy
	ExternalPolicy retry.Policy
}

// New constructs an orchestrator for one run.
func New(cfg Config, deps Deps) *Orchestrator {
	sink := deps.Metrics
	if sink == nil {
		sink = metrics.Nop{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		cfg:            cfg,
		connector:      deps.Connector,
		catalog:        deps.Catalog,
		normalizer:     deps.Normalizer,
		transcriber:    deps.Transcriber,
		recorder:       deps.Recorder,
		archiver:       deps.Archiver,
		sink:           sink,
		logger:         logger,
		remotePolicy:   deps.RemotePolicy,
		externalPolicy: deps.ExternalPolicy,
	}
}

// Start executes the run to completion. It returns an error only for
// run-fatal conditions: a second Start on the same instance, a failed
// remote connection, a failed listing, or a failure to open the run
// record. Item failures are counted and logged, never returned.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return errors.New("run already started; construct a new orchestrator per run")
	}
	o.started = true
	o.running = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
	}()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, o.logger)

	if o.cfg.CleanStaleAge > 0 {
		staging.CleanStale(o.cfg.StagingDir, o.cfg.CleanStaleAge, logger)
	}

	client, err := o.connector.Connect(ctx)
	if err != nil {
		logger.Error("remote connection failed, aborting run",
			logging.Error(err),
			logging.String(logging.FieldErrorCode, services.CodeOf(err)),
			logging.String(logging.FieldEventType, "connect_failed"),
		)
		o.sink.Inc(metrics.Runs, map[string]string{"outcome": "connect_failed"})
		return err
	}
	o.mu.Lock()
	o.client = client
	o.mu.Unlock()
	defer o.closeClient(logger)

	items, err := o.catalog.ListRecent(ctx, client, o.cfg.BasePath, o.cfg.CapCount)
	if err != nil {
		logger.Error("remote listing failed, aborting run",
			logging.Error(err),
			logging.String(logging.FieldErrorCode, services.CodeOf(err)),
			logging.String(logging.FieldEventType, "list_failed"),
		)
		o.sink.Inc(metrics.Runs, map[string]string{"outcome": "list_failed"})
		return err
	}

	if err := o.recorder.StartRun(ctx, runID); err != nil {
		wrapped := services.NewExternalService("recordstore", "start run", err, false)
		logger.Error("could not open run record, aborting run", logging.Error(wrapped))
		o.sink.Inc(metrics.Runs, map[string]string{"outcome": "store_failed"})
		return wrapped
	}

	logger.Info("run started",
		logging.Int("item_count", len(items)),
		logging.String(logging.FieldEventType, "run_start"),
	)

	start := time.Now()
	stopped := false
	for _, item := range items {
		if o.stopFlagSet() {
			stopped = true
			logger.Info("stop requested, ending run at item boundary",
				logging.String(logging.FieldEventType, "run_stopping"),
			)
			break
		}
		if err := o.processItem(ctx, client, runID, item); err != nil {
			o.recordItemFailure(ctx, logger, item, err)
			continue
		}
		o.mu.Lock()
		o.processed++
		o.mu.Unlock()
		o.sink.Inc(metrics.ItemsProcessed, nil)
	}

	o.mu.Lock()
	processed, failed := o.processed, o.failed
	o.mu.Unlock()

	if err := o.recorder.FinishRun(ctx, runID, processed, failed); err != nil {
		logger.Warn("could not finalize run record", logging.Error(err))
	}

	outcome := "completed"
	if stopped {
		outcome = "stopped"
	}
	o.sink.Inc(metrics.Runs, map[string]string{"outcome": outcome})
	logger.Info("run finished",
		logging.Int("processed", processed),
		logging.Int("failed", failed),
		logging.Duration("elapsed", time.Since(start)),
		logging.String("outcome", outcome),
		logging.String(logging.FieldEventType, "run_complete"),
	)
	return nil
}

// Stop requests the run to end and closes the remote connection. The item
// currently in flight finishes (or fails); the next item never starts.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	o.stopRequested = true
	client := o.client
	closed := o.clientClosed
	o.clientClosed = true
	o.mu.Unlock()

	if client != nil && !closed {
		if err := client.Close(); err != nil {
			o.logger.Warn("closing remote connection failed", logging.Error(err))
		}
	}
}

// State returns a snapshot of the run state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return State{
		Running:       o.running,
		StopRequested: o.stopRequested,
		Processed:     o.processed,
		Failed:        o.failed,
	}
}

func (o *Orchestrator) stopFlagSet() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stopRequested
}

func (o *Orchestrator) closeClient(logger *slog.Logger) {
	o.mu.Lock()
	client := o.client
	closed := o.clientClosed
	o.clientClosed = true
	o.mu.Unlock()

	if client == nil || closed {
		return
	}
	if err := client.Close(); err != nil {
		logger.Warn("closing remote connection failed", logging.Error(err))
	}
}

func (o *Orchestrator) recordItemFailure(ctx context.Context, logger *slog.Logger, item remote.Item, err error) {
	o.mu.Lock()
	o.failed++
	o.mu.Unlock()

	code := services.CodeOf(err)
	o.sink.Inc(metrics.ItemsFailed, map[string]string{"code": code})
	logger.Error("recording failed, continuing with next item",
		logging.String(logging.FieldItem, item.RemotePath),
		logging.Error(err),
		logging.String(logging.FieldErrorCode, code),
		logging.Any(logging.FieldErrorContext, services.ContextOf(err)),
		logging.Bool(logging.FieldRetryable, services.Retryable(err)),
		logging.String(logging.FieldEventType, "item_failure"),
	)
}
