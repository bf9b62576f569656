package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"scribe/internal/archive"
	"scribe/internal/config"
	"scribe/internal/deps"
	"scribe/internal/logging"
	"scribe/internal/media"
	"scribe/internal/metrics"
	"scribe/internal/recordstore"
	"scribe/internal/remote"
	"scribe/internal/retry"
	"scribe/internal/services/stt"
	"scribe/internal/workflow"
)

func newRunCommand(cctx *commandContext) *cobra.Command {
	var dryRun bool
	var capOverride int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Ingest and transcribe recent recordings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				LogDir: cfg.Paths.LogDir,
			})
			if err != nil {
				return err
			}

			if err := deps.Verify([]deps.Requirement{
				{Name: "FFmpeg", Command: "ffmpeg", Description: "Normalizes recordings for transcription"},
			}); err != nil {
				return err
			}

			capCount := cfg.Ingest.CapCount
			if capOverride > 0 {
				capCount = capOverride
			}

			connector, basePath := buildConnector(cfg)
			catalog := remote.NewCatalog(policyFrom(cfg.Retry.Remote), cfg.Ingest.AudioExtensions, logger)

			if dryRun {
				return listCandidates(cmd, connector, catalog, basePath, capCount)
			}

			lock := flock.New(filepath.Join(cfg.Paths.LogDir, "scribe.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return errors.New("another scribe run is already in progress")
			}
			defer func() {
				_ = lock.Unlock()
			}()

			store, err := recordstore.Open(cfg.Paths.DatabasePath)
			if err != nil {
				return fmt.Errorf("open record store: %w", err)
			}
			defer store.Close()

			var archiver workflow.Archiver
			if cfg.Archive.Enabled {
				uploader, err := archive.NewUploader(archive.Config{
					Endpoint:  cfg.Archive.Endpoint,
					AccessKey: cfg.Archive.AccessKey,
					SecretKey: cfg.Archive.SecretKey,
					Bucket:    cfg.Archive.Bucket,
					Prefix:    cfg.Archive.Prefix,
					UseSSL:    cfg.Archive.UseSSL,
				})
				if err != nil {
					return fmt.Errorf("configure archive: %w", err)
				}
				archiver = uploader
			}

			sink, stopMetrics := startMetrics(cfg, logger)
			defer stopMetrics()

			orch := workflow.New(
				workflow.Config{
					BasePath:      basePath,
					CapCount:      capCount,
					StagingDir:    cfg.Paths.StagingDir,
					CleanStaleAge: time.Duration(cfg.Ingest.CleanStaleHours) * time.Hour,
				},
				workflow.Deps{
					Connector:  connector,
					Catalog:    catalog,
					Normalizer: media.NewNormalizer(""),
					Transcriber: stt.NewClient(stt.Config{
						URL:            cfg.Transcriber.URL,
						Model:          cfg.Transcriber.Model,
						Language:       cfg.Transcriber.Language,
						TimeoutSeconds: cfg.Transcriber.TimeoutSeconds,
						MaxFileBytes:   cfg.Ingest.MaxFileBytes(),
					}),
					Recorder:       store,
					Archiver:       archiver,
					Metrics:        sink,
					Logger:         logger,
					RemotePolicy:   policyFrom(cfg.Retry.Remote),
					ExternalPolicy: policyFrom(cfg.Retry.External),
				},
			)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				sig, ok := <-sigCh
				if !ok {
					return
				}
				logger.Info("signal received, finishing current item before stopping",
					logging.String("signal", sig.String()),
				)
				orch.Stop()
			}()

			if err := orch.Start(cmd.Context()); err != nil {
				return err
			}

			state := orch.State()
			fmt.Fprintf(cmd.OutOrStdout(), "Run complete: %d processed, %d failed\n", state.Processed, state.Failed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List candidate recordings without processing them")
	cmd.Flags().IntVar(&capOverride, "cap", 0, "Override the configured per-run recording cap")
	return cmd
}

// buildConnector selects the remote backend: an S3-compatible endpoint when
// one is configured, otherwise a local directory (typically a mounted
// share) rooted at base_path.
func buildConnector(cfg *config.Config) (remote.Connector, string) {
	if strings.TrimSpace(cfg.Remote.Endpoint) == "" {
		return remote.NewLocalConnector(cfg.Remote.BasePath), ""
	}
	return remote.NewMinioConnector(remote.MinioConfig{
		Endpoint:  cfg.Remote.Endpoint,
		AccessKey: cfg.Remote.AccessKey,
		SecretKey: cfg.Remote.SecretKey,
		Bucket:    cfg.Remote.Bucket,
		Region:    cfg.Remote.Region,
		UseSSL:    cfg.Remote.UseSSL,
	}), cfg.Remote.BasePath
}

func listCandidates(cmd *cobra.Command, connector remote.Connector, catalog *remote.Catalog, basePath string, capCount int) error {
	client, err := connector.Connect(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()

	items, err := catalog.ListRecent(cmd.Context(), client, basePath, capCount)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No candidate recordings found")
		return nil
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.Name,
			humanize.IBytes(uint64(item.SizeBytes)),
			item.ModifiedAt.Local().Format("2006-01-02 15:04"),
			item.RemotePath,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Name", "Size", "Modified", "Remote Path"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
	))
	return nil
}

func startMetrics(cfg *config.Config, logger *slog.Logger) (metrics.Sink, func()) {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}, func() {}
	}

	prom := metrics.NewPrometheus()
	mux := http.NewServeMux()
	mux.Handle("/metrics", prom.Handler())
	server := &http.Server{Addr: cfg.Metrics.Bind, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics endpoint failed", logging.Error(err))
		}
	}()

	return prom, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}
}

func policyFrom(settings config.RetrySettings) retry.Policy {
	return retry.Policy{
		MaxRetries:  settings.MaxRetries,
		BaseDelay:   time.Duration(settings.BaseDelayMS) * time.Millisecond,
		MaxDelay:    time.Duration(settings.MaxDelayMS) * time.Millisecond,
		Exponential: settings.Exponential,
	}
}
