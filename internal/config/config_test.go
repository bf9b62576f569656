package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func minimalConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	return `
[paths]
staging_dir = "` + filepath.Join(dir, "staging") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"
database_path = "` + filepath.Join(dir, "scribe.db") + `"

[remote]
endpoint = "storage.example.com"
access_key = "key"
secret_key = "secret"
bucket = "recordings"
`
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, minimalConfig(t))

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Ingest.CapCount != defaultCapCount {
		t.Fatalf("cap_count default = %d", cfg.Ingest.CapCount)
	}
	if !cfg.Retry.Remote.Exponential {
		t.Fatal("remote retry should default to exponential")
	}
	if cfg.Transcriber.URL != defaultTranscriberURL {
		t.Fatalf("transcriber url default = %q", cfg.Transcriber.URL)
	}
}

func TestLoadRejectsMissingRemote(t *testing.T) {
	path := writeConfig(t, `
[paths]
staging_dir = "/tmp/s"
log_dir = "/tmp/l"
database_path = "/tmp/d.db"
`)
	_, _, _, err := Load(path)
	if err == nil {
		t.Fatal("expected validation failure for missing remote settings")
	}
	if !strings.Contains(err.Error(), "remote.endpoint") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadAcceptsLocalSourceDirectory(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
[paths]
staging_dir = "`+filepath.Join(dir, "staging")+`"
log_dir = "`+filepath.Join(dir, "logs")+`"
database_path = "`+filepath.Join(dir, "scribe.db")+`"

[remote]
endpoint = ""
base_path = "`+filepath.Join(dir, "recordings")+`"
`)

	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Remote.Endpoint != "" {
		t.Fatalf("endpoint = %q, want empty for local mode", cfg.Remote.Endpoint)
	}
	if !filepath.IsAbs(cfg.Remote.BasePath) {
		t.Fatalf("base_path not absolute after normalization: %q", cfg.Remote.BasePath)
	}
}

func TestLoadRejectsBadLogFormat(t *testing.T) {
	path := writeConfig(t, minimalConfig(t)+`
[logging]
format = "xml"
`)
	_, _, _, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected log format error, got %v", err)
	}
}

func TestCredentialEnvFallback(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
[paths]
staging_dir = "`+filepath.Join(dir, "staging")+`"
log_dir = "`+filepath.Join(dir, "logs")+`"
database_path = "`+filepath.Join(dir, "scribe.db")+`"

[remote]
endpoint = "storage.example.com"
bucket = "recordings"
`)
	t.Setenv("SCRIBE_REMOTE_ACCESS_KEY", "env-key")
	t.Setenv("SCRIBE_REMOTE_SECRET_KEY", "env-secret")

	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Remote.AccessKey != "env-key" || cfg.Remote.SecretKey != "env-secret" {
		t.Fatalf("credentials not taken from environment: %+v", cfg.Remote)
	}
}

func TestNormalizeExtensions(t *testing.T) {
	got := normalizeExtensions([]string{"MP3", ".WAV", "  ", "wav", ".m4a"})
	want := []string{".mp3", ".wav", ".m4a"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestIngestMaxFileBytes(t *testing.T) {
	if got := (Ingest{MaxFileMiB: 2}).MaxFileBytes(); got != 2*1024*1024 {
		t.Fatalf("MaxFileBytes = %d", got)
	}
	if got := (Ingest{}).MaxFileBytes(); got != 0 {
		t.Fatalf("unlimited MaxFileBytes = %d", got)
	}
}

func TestArchiveRequiresCredentialsWhenEnabled(t *testing.T) {
	path := writeConfig(t, minimalConfig(t)+`
[archive]
enabled = true
`)
	_, _, _, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "archive") {
		t.Fatalf("expected archive validation failure, got %v", err)
	}
}

func TestCreateSampleParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if cfg.Remote.Bucket != "call-recordings" {
		t.Fatalf("sample remote bucket = %q", cfg.Remote.Bucket)
	}
}
