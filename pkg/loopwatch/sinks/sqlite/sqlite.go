// Package sqlite provides a sink that persists classified error records to
// a local SQLite database for post-mortem trajectory analysis. The detector
// itself stays purely in-memory; this sink only captures telemetry.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/strongdm/ai-loopwatch/pkg/loopwatch"
)

const schema = `
CREATE TABLE IF NOT EXISTS error_records (
	record_id    TEXT PRIMARY KEY,
	episode_id   TEXT NOT NULL DEFAULT '',
	sequence     INTEGER NOT NULL,
	error_type   TEXT NOT NULL,
	message      TEXT NOT NULL,
	file         TEXT NOT NULL DEFAULT '',
	line         INTEGER NOT NULL DEFAULT 0,
	action       TEXT NOT NULL DEFAULT '',
	code_snippet TEXT NOT NULL DEFAULT '',
	traceback    TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_error_records_episode
	ON error_records(episode_id, sequence);
`

// sqliteSink writes records to a SQLite database.
type sqliteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (creating if needed) the database at path and
// prepares the schema. The caller owns the returned sink and must Close it.
func NewSQLiteSink(path string) (loopwatch.Sink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &sqliteSink{db: db}, nil
}

// Write inserts the record, tagged with the episode ID carried by ctx
// (empty when no episode is set). RecordID keys the row, so rewrites of
// the same record are idempotent.
func (s *sqliteSink) Write(ctx context.Context, rec loopwatch.Record) error {
	episodeID, _ := loopwatch.EpisodeIDFromContext(ctx)

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO error_records
		(record_id, episode_id, sequence, error_type, message, file, line, action, code_snippet, traceback)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RecordID, episodeID, rec.Sequence, string(rec.Type), rec.Message,
		rec.File, rec.Line, rec.Action, rec.CodeSnippet, rec.Traceback)
	if err != nil {
		return fmt.Errorf("insert record %s: %w", rec.RecordID, err)
	}
	return nil
}

// Flush is a no-op for the sqlite sink (writes are synchronous).
func (s *sqliteSink) Flush(ctx context.Context) error {
	return nil
}

// Close closes the database handle.
func (s *sqliteSink) Close() error {
	return s.db.Close()
}
