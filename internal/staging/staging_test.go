package staging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"scribe/internal/logging"
)

func TestNewItemDirCreatesDirectory(t *testing.T) {
	root := t.TempDir()

	dir, err := NewItemDir(root, "run-1", "call 2024-11-02.mp3")
	if err != nil {
		t.Fatalf("NewItemDir: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("expected a directory")
	}
	if filepath.Dir(dir) != root {
		t.Errorf("dir %q not under root %q", dir, root)
	}
	if strings.ContainsAny(filepath.Base(dir), " :") {
		t.Errorf("name not sanitized: %q", filepath.Base(dir))
	}
}

func TestNewItemDirRejectsEmptyRoot(t *testing.T) {
	if _, err := NewItemDir("   ", "run-1", "a.mp3"); err == nil {
		t.Fatal("expected error for empty root")
	}
}

func TestNewItemDirStripsPathComponents(t *testing.T) {
	root := t.TempDir()

	dir, err := NewItemDir(root, "run-1", "../escape.mp3")
	if err != nil {
		t.Fatalf("NewItemDir: %v", err)
	}
	if filepath.Dir(dir) != root {
		t.Errorf("dir %q escaped root %q", dir, root)
	}
}

func TestRemove(t *testing.T) {
	root := t.TempDir()
	dir, err := NewItemDir(root, "run-1", "a.mp3")
	if err != nil {
		t.Fatalf("NewItemDir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "audio.wav"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := Remove(dir); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatal("directory should be gone")
	}

	if err := Remove(dir); err != nil {
		t.Fatalf("Remove of missing dir: %v", err)
	}
	if err := Remove(""); err != nil {
		t.Fatalf("Remove of empty path: %v", err)
	}
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	oldDir := filepath.Join(tmpDir, "old-run")
	if err := os.Mkdir(oldDir, 0o755); err != nil {
		t.Fatalf("create old dir: %v", err)
	}
	oldTime := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldDir, oldTime, oldTime); err != nil {
		t.Fatalf("set old time: %v", err)
	}

	recentDir := filepath.Join(tmpDir, "recent-run")
	if err := os.Mkdir(recentDir, 0o755); err != nil {
		t.Fatalf("create recent dir: %v", err)
	}

	result := CleanStale(tmpDir, time.Hour, logging.NewNop())

	if len(result.Removed) != 1 {
		t.Fatalf("expected 1 removed, got %d", len(result.Removed))
	}
	if result.Removed[0] != oldDir {
		t.Errorf("expected %s to be removed, got %s", oldDir, result.Removed[0])
	}
	if _, err := os.Stat(oldDir); !os.IsNotExist(err) {
		t.Error("old directory should have been removed")
	}
	if _, err := os.Stat(recentDir); err != nil {
		t.Error("recent directory should still exist")
	}
}

func TestCleanStaleIgnoresFiles(t *testing.T) {
	tmpDir := t.TempDir()

	oldFile := filepath.Join(tmpDir, "old-file.txt")
	if err := os.WriteFile(oldFile, []byte("test"), 0o644); err != nil {
		t.Fatalf("create file: %v", err)
	}
	oldTime := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldFile, oldTime, oldTime); err != nil {
		t.Fatalf("set old time: %v", err)
	}

	result := CleanStale(tmpDir, time.Hour, logging.NewNop())

	if len(result.Removed) != 0 {
		t.Errorf("expected no removals for files, got %d", len(result.Removed))
	}
	if _, err := os.Stat(oldFile); err != nil {
		t.Error("file should not have been removed")
	}
}
