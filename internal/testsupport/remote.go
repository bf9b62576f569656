// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"scribe/internal/remote"
)

// FakeRemote is an in-memory remote.Client for tests. Paths use "/" as the
// separator with no leading or trailing slashes.
type FakeRemote struct {
	mu       sync.Mutex
	children map[string]map[string]remote.Entry
	closed   bool

	// ListErr and FetchErr, when set, are consulted before serving a call.
	ListErr  func(path string) error
	FetchErr func(remotePath string) error

	listCalls  []string
	fetchCalls []string
}

// NewFakeRemote returns an empty fake store.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{children: map[string]map[string]remote.Entry{"": {}}}
}

// AddFile registers a file and all of its ancestor directories.
func (f *FakeRemote) AddFile(remotePath string, size int64, modTime time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	remotePath = strings.Trim(remotePath, "/")
	dir, name := splitRemote(remotePath)
	f.ensureDir(dir)
	f.children[dir][name] = remote.Entry{Name: name, Type: remote.EntryFile, Size: size, ModTime: modTime}
}

// AddDir registers an empty directory and its ancestors.
func (f *FakeRemote) AddDir(remotePath string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureDir(strings.Trim(remotePath, "/"))
}

func (f *FakeRemote) ensureDir(dir string) {
	if _, ok := f.children[dir]; ok {
		return
	}
	f.children[dir] = map[string]remote.Entry{}
	if dir == "" {
		return
	}
	parent, name := splitRemote(dir)
	f.ensureDir(parent)
	f.children[parent][name] = remote.Entry{Name: name, Type: remote.EntryDir}
}

// List implements remote.Client.
func (f *FakeRemote) List(ctx context.Context, path string) ([]remote.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	path = strings.Trim(path, "/")
	f.listCalls = append(f.listCalls, path)
	if f.ListErr != nil {
		if err := f.ListErr(path); err != nil {
			return nil, err
		}
	}
	kids, ok := f.children[path]
	if !ok {
		return nil, nil
	}
	entries := make([]remote.Entry, 0, len(kids))
	for _, entry := range kids {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Fetch implements remote.Client by writing placeholder audio bytes.
func (f *FakeRemote) Fetch(ctx context.Context, remotePath, localPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	remotePath = strings.Trim(remotePath, "/")
	f.fetchCalls = append(f.fetchCalls, remotePath)
	hook := f.FetchErr
	dir, name := splitRemote(remotePath)
	_, known := f.children[dir][name]
	f.mu.Unlock()

	if hook != nil {
		if err := hook(remotePath); err != nil {
			return err
		}
	}
	if !known {
		return errors.New("no such remote file: " + remotePath)
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(localPath, []byte("fake audio payload"), 0o644)
}

// Close implements remote.Client.
func (f *FakeRemote) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Closed reports whether Close was called.
func (f *FakeRemote) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// ListCalls returns the listing paths requested so far.
func (f *FakeRemote) ListCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.listCalls...)
}

// FetchCalls returns the remote paths fetched so far.
func (f *FakeRemote) FetchCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetchCalls...)
}

// FakeConnector hands out a fixed client or a fixed error.
type FakeConnector struct {
	Client remote.Client
	Err    error
}

// Connect implements remote.Connector.
func (c *FakeConnector) Connect(ctx context.Context) (remote.Client, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Client, nil
}

func splitRemote(remotePath string) (dir, name string) {
	idx := strings.LastIndex(remotePath, "/")
	if idx < 0 {
		return "", remotePath
	}
	return remotePath[:idx], remotePath[idx+1:]
}
