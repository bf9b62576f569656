package remote

import (
	"context"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"scribe/internal/logging"
	"scribe/internal/retry"
)

// Catalog discovers and bounds the candidate recording set. Remote layouts
// are expected to group recordings as category/date-folder/file; layouts
// without date folders are scanned whole.
type Catalog struct {
	policy     retry.Policy
	extensions map[string]struct{}
	logger     *slog.Logger
}

type dateFolder struct {
	path string
	date time.Time
}

// NewCatalog builds a catalog that runs every remote listing through the
// given retry policy and keeps only files with the given audio extensions.
func NewCatalog(policy retry.Policy, extensions []string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = logging.NewNop()
	}
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = struct{}{}
	}
	return &Catalog{policy: policy, extensions: exts, logger: logger}
}

// ListRecent returns at most capCount items under basePath, newest first by
// modification time. Date folders are visited newest-first and the walk
// stops as soon as the cap is reached; when no folder names parse as dates
// the whole tree is scanned instead.
func (c *Catalog) ListRecent(ctx context.Context, client Client, basePath string, capCount int) ([]Item, error) {
	if capCount <= 0 {
		return nil, nil
	}

	categories, err := c.list(ctx, client, basePath)
	if err != nil {
		return nil, err
	}

	var folders []dateFolder
	for _, category := range categories {
		if category.Type != EntryDir {
			continue
		}
		categoryPath := joinRemote(basePath, category.Name)
		children, err := c.list(ctx, client, categoryPath)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if child.Type != EntryDir {
				continue
			}
			date, ok := parseFolderDate(child.Name)
			if !ok {
				c.logger.Debug("folder name is not a date, excluded from dated traversal",
					logging.String("folder", joinRemote(categoryPath, child.Name)),
				)
				continue
			}
			folders = append(folders, dateFolder{path: joinRemote(categoryPath, child.Name), date: date})
		}
	}

	if len(folders) == 0 {
		return c.listRecentFlat(ctx, client, basePath, capCount)
	}

	sort.SliceStable(folders, func(i, j int) bool {
		return folders[i].date.After(folders[j].date)
	})

	var collected []Item
	capReached := false
	for _, folder := range folders {
		if len(collected) >= capCount {
			capReached = true
			break
		}
		// walk compares the limit against the shared accumulator, so the
		// absolute cap is the running-total bound across folders.
		truncated, err := c.walk(ctx, client, folder.path, capCount, &collected)
		if err != nil {
			return nil, err
		}
		if truncated {
			capReached = true
		}
	}

	sortByModTimeDesc(collected)
	if len(collected) > capCount {
		collected = collected[:capCount]
		capReached = true
	}
	if capReached {
		c.logger.Warn("catalog cap reached, older recordings skipped",
			logging.Int("cap", capCount),
			logging.String("base_path", basePath),
		)
	}
	return collected, nil
}

// listRecentFlat is the fallback for layouts that omit the date-folder
// convention: scan the whole tree and keep the newest capCount files.
func (c *Catalog) listRecentFlat(ctx context.Context, client Client, basePath string, capCount int) ([]Item, error) {
	var items []Item
	if _, err := c.walk(ctx, client, basePath, 0, &items); err != nil {
		return nil, err
	}
	sortByModTimeDesc(items)
	if len(items) > capCount {
		c.logger.Warn("catalog cap reached, older recordings skipped",
			logging.Int("cap", capCount),
			logging.Int("skipped", len(items)-capCount),
			logging.String("base_path", basePath),
		)
		items = items[:capCount]
	}
	return items, nil
}

// walk recursively collects audio files under dir into acc. A limit > 0
// short-circuits the walk the moment the running total reaches it; the
// returned flag reports whether entries were left behind. Depth is bounded
// only by the remote tree itself.
func (c *Catalog) walk(ctx context.Context, client Client, dir string, limit int, acc *[]Item) (bool, error) {
	entries, err := c.list(ctx, client, dir)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if limit > 0 && len(*acc) >= limit {
			return true, nil
		}
		switch entry.Type {
		case EntryDir:
			truncated, err := c.walk(ctx, client, joinRemote(dir, entry.Name), limit, acc)
			if err != nil {
				return false, err
			}
			if truncated {
				return true, nil
			}
		case EntryFile:
			if !c.isAudio(entry.Name) {
				continue
			}
			*acc = append(*acc, Item{
				Name:       entry.Name,
				SizeBytes:  entry.Size,
				ModifiedAt: entry.ModTime,
				RemotePath: joinRemote(dir, entry.Name),
			})
		}
	}
	return false, nil
}

func (c *Catalog) list(ctx context.Context, client Client, dir string) ([]Entry, error) {
	policy := c.policy
	policy.OnRetry = func(err error, attempt int) {
		c.logger.Warn("remote listing failed, retrying",
			logging.String(logging.FieldEventType, "retry_wait"),
			logging.String("path", dir),
			logging.Int(logging.FieldAttempt, attempt),
			logging.Error(err),
		)
	}
	return retry.Do(ctx, policy, func(ctx context.Context) ([]Entry, error) {
		return client.List(ctx, dir)
	})
}

func (c *Catalog) isAudio(name string) bool {
	_, ok := c.extensions[strings.ToLower(path.Ext(name))]
	return ok
}

func sortByModTimeDesc(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ModifiedAt.After(items[j].ModifiedAt)
	})
}

func joinRemote(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(part, "/")
		if part != "" {
			cleaned = append(cleaned, part)
		}
	}
	return strings.Join(cleaned, "/")
}
