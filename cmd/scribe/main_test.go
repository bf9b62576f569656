package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"scribe/internal/config"
	"scribe/internal/recordstore"
	"scribe/internal/remote"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"config", "init", "--path", target})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[remote]") {
		t.Fatalf("sample missing remote section:\n%s", data)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "init", "--path", target})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for existing config without --overwrite")
	}
}

func TestBuildConnectorSelectsBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Remote.Endpoint = ""
	cfg.Remote.BasePath = "/mnt/recordings"

	connector, basePath := buildConnector(&cfg)
	if _, ok := connector.(*remote.LocalConnector); !ok {
		t.Fatalf("connector = %T, want LocalConnector for empty endpoint", connector)
	}
	if basePath != "" {
		t.Fatalf("basePath = %q, want empty for local backend", basePath)
	}

	cfg.Remote.Endpoint = "minio.internal:9000"
	cfg.Remote.BasePath = "calls"
	connector, basePath = buildConnector(&cfg)
	if _, ok := connector.(*remote.MinioConnector); !ok {
		t.Fatalf("connector = %T, want MinioConnector", connector)
	}
	if basePath != "calls" {
		t.Fatalf("basePath = %q, want calls", basePath)
	}
}

func TestPolicyFrom(t *testing.T) {
	policy := policyFrom(config.RetrySettings{
		MaxRetries:  3,
		BaseDelayMS: 250,
		MaxDelayMS:  4000,
		Exponential: true,
	})
	if policy.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", policy.MaxRetries)
	}
	if policy.BaseDelay != 250*time.Millisecond {
		t.Errorf("BaseDelay = %v, want 250ms", policy.BaseDelay)
	}
	if policy.MaxDelay != 4*time.Second {
		t.Errorf("MaxDelay = %v, want 4s", policy.MaxDelay)
	}
	if !policy.Exponential {
		t.Error("Exponential should be set")
	}
}

func TestRenderRunsTable(t *testing.T) {
	finished := time.Date(2024, 11, 2, 11, 0, 0, 0, time.UTC)
	runs := []recordstore.Run{
		{ID: "run-a", StartedAt: finished.Add(-time.Hour), FinishedAt: &finished, Processed: 12, Failed: 1},
		{ID: "run-b", StartedAt: finished.Add(time.Hour)},
	}

	rendered := renderRunsTable(runs)
	if !strings.Contains(rendered, "run-a") || !strings.Contains(rendered, "run-b") {
		t.Fatalf("table missing run IDs:\n%s", rendered)
	}
	if !strings.Contains(rendered, "running") {
		t.Fatalf("unfinished run should render as running:\n%s", rendered)
	}
	if !strings.Contains(rendered, "12") {
		t.Fatalf("processed count missing:\n%s", rendered)
	}
}
