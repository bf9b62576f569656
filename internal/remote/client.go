package remote

import (
	"context"
	"time"
)

// EntryType distinguishes listing results.
type EntryType int

const (
	EntryFile EntryType = iota
	EntryDir
	EntryOther
)

// Entry is one child of a listed remote directory.
type Entry struct {
	Name    string
	Type    EntryType
	Size    int64
	ModTime time.Time
}

// Item is one discoverable unit of remote work. RemotePath is its identity;
// items are immutable once listed.
type Item struct {
	Name       string
	SizeBytes  int64
	ModifiedAt time.Time
	RemotePath string
}

// Client is the remote-store capability the pipeline consumes. Failures
// surface as services remote_access errors.
type Client interface {
	List(ctx context.Context, path string) ([]Entry, error)
	Fetch(ctx context.Context, remotePath, localPath string) error
	Close() error
}

// Connector opens the remote connection an orchestrator owns for the
// lifetime of one run.
type Connector interface {
	Connect(ctx context.Context) (Client, error)
}
