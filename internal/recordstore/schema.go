package recordstore

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS runs (
        id          TEXT PRIMARY KEY,
        started_at  TEXT NOT NULL,
        finished_at TEXT,
        processed   INTEGER NOT NULL DEFAULT 0,
        failed      INTEGER NOT NULL DEFAULT 0
    )`,
	`CREATE TABLE IF NOT EXISTS transcripts (
        id          INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id      TEXT NOT NULL REFERENCES runs(id),
        remote_path TEXT NOT NULL,
        name        TEXT NOT NULL,
        size_bytes  INTEGER NOT NULL,
        modified_at TEXT NOT NULL,
        transcript  TEXT NOT NULL,
        language    TEXT,
        archive_url TEXT,
        created_at  TEXT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_transcripts_run_id ON transcripts(run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_transcripts_remote_path ON transcripts(remote_path)`,
}

func (s *Store) applySchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
