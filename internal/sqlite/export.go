package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/costbook/pkg/types"
)

// Export writes every saved session to path as JSON lines, newest first.
// The file is replaced atomically. Returns the number of records written.
func (b *Backend) Export(ctx context.Context, path string) (int, error) {
	sessions, err := b.List(ctx)
	if err != nil {
		return 0, err
	}

	records := make([]json.RawMessage, 0, len(sessions))
	for _, s := range sessions {
		data, err := json.Marshal(s)
		if err != nil {
			return 0, fmt.Errorf("marshaling session %s: %w", s.ID, err)
		}
		records = append(records, data)
	}

	if err := writeJSONL(path, records); err != nil {
		return 0, fmt.Errorf("exporting sessions: %w", err)
	}
	return len(records), nil
}

// Import upserts the saved sessions in a JSONL file, keeping their ids and
// timestamps. An existing record keeps its own creation time. Browser-store
// records (name, data, millisecond timestamps) are accepted too. Lines that
// are not JSON objects or lack an id are skipped; a record without a
// creation time is stamped now. All records are written in one transaction.
// Returns the number imported.
func (b *Backend) Import(ctx context.Context, path string) (int, error) {
	records, err := readJSONL(path)
	if err != nil {
		return 0, fmt.Errorf("importing sessions: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkAttached(); err != nil {
		return 0, err
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, txFailed("beginning import", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO saved_sessions (session_id, display_name, created_at, updated_at, snapshot)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(session_id) DO UPDATE SET
    display_name = excluded.display_name,
    updated_at = excluded.updated_at,
    snapshot = excluded.snapshot`)
	if err != nil {
		return 0, txFailed("preparing import", err)
	}
	defer stmt.Close()

	imported := 0
	for _, raw := range records {
		rec, err := types.DecodeSavedSession(raw)
		if err != nil {
			continue
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = b.timestamp()
		}
		b.observe(rec.CreatedAt.Truncate(time.Millisecond))
		var updatedAt any
		if rec.UpdatedAt != nil {
			updatedAt = rec.UpdatedAt.UnixMilli()
			b.observe(rec.UpdatedAt.Truncate(time.Millisecond))
		}
		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.DisplayName, rec.CreatedAt.UnixMilli(), updatedAt, rec.Snapshot.Canonical(),
		); err != nil {
			return 0, txFailed("importing session "+rec.ID, err)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, txFailed("committing import", err)
	}
	return imported, nil
}
