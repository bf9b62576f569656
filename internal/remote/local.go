package remote

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scribe/internal/fileutil"
	"scribe/internal/services"
)

// LocalConnector serves recordings from a directory tree, typically a
// mounted network share. It is selected when no endpoint is configured.
type LocalConnector struct {
	root string
}

// NewLocalConnector builds a connector rooted at dir.
func NewLocalConnector(dir string) *LocalConnector {
	return &LocalConnector{root: dir}
}

// Connect verifies the root exists and is a directory.
func (c *LocalConnector) Connect(ctx context.Context) (Client, error) {
	root := strings.TrimSpace(c.root)
	if root == "" {
		return nil, services.NewRemoteAccess("connect", "local", "", fmt.Errorf("source directory not configured"))
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, services.NewRemoteAccess("connect", "local", root, err)
	}
	if !info.IsDir() {
		return nil, services.NewRemoteAccess("connect", "local", root,
			fmt.Errorf("%s is not a directory", root))
	}
	return &LocalClient{root: root}, nil
}

// LocalClient adapts a directory tree to the Client interface. Paths given
// to List and Fetch are relative to the root, "/"-separated like remote
// object keys.
type LocalClient struct {
	root string
}

// List returns the immediate children of dir.
func (l *LocalClient) List(ctx context.Context, dir string) ([]Entry, error) {
	full, err := l.resolve(dir)
	if err != nil {
		return nil, err
	}
	children, err := os.ReadDir(full)
	if err != nil {
		return nil, services.NewRemoteAccess("list", "local", dir, err)
	}

	entries := make([]Entry, 0, len(children))
	for _, child := range children {
		entry := Entry{Name: child.Name(), Type: EntryOther}
		switch {
		case child.IsDir():
			entry.Type = EntryDir
		case child.Type().IsRegular():
			entry.Type = EntryFile
			info, err := child.Info()
			if err != nil {
				return nil, services.NewRemoteAccess("list", "local", dir, err)
			}
			entry.Size = info.Size()
			entry.ModTime = info.ModTime()
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Fetch copies remotePath into localPath with integrity verification, so a
// truncated read from a flaky share fails instead of producing a short file.
func (l *LocalClient) Fetch(ctx context.Context, remotePath, localPath string) error {
	full, err := l.resolve(remotePath)
	if err != nil {
		return err
	}
	if err := fileutil.CopyFileVerified(full, localPath); err != nil {
		return services.NewRemoteAccess("fetch", "local", remotePath, err)
	}
	return nil
}

// Close releases the client.
func (l *LocalClient) Close() error {
	return nil
}

func (l *LocalClient) resolve(path string) (string, error) {
	cleaned := filepath.Clean("/" + strings.ReplaceAll(path, "/", string(filepath.Separator)))
	full := filepath.Join(l.root, cleaned)
	if full != l.root && !strings.HasPrefix(full, l.root+string(filepath.Separator)) {
		return "", services.NewRemoteAccess("resolve", "local", path,
			fmt.Errorf("path escapes source root"))
	}
	return full, nil
}
