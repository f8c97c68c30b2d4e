package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/costbook/pkg/types"
)

const selectSession = `SELECT session_id, display_name, created_at, updated_at, snapshot FROM saved_sessions`

// Create stores snapshot as a new saved session.
func (b *Backend) Create(ctx context.Context, displayName string, snapshot types.Snapshot) (*types.SavedSession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	rec := &types.SavedSession{
		ID:          b.newID(),
		DisplayName: displayName,
		CreatedAt:   b.timestamp(),
		Snapshot:    snapshot.Clone(),
	}

	_, err := b.db.ExecContext(ctx,
		"INSERT INTO saved_sessions (session_id, display_name, created_at, updated_at, snapshot) VALUES (?, ?, ?, NULL, ?)",
		rec.ID, rec.DisplayName, rec.CreatedAt.UnixMilli(), rec.Snapshot.Canonical(),
	)
	if err != nil {
		return nil, txFailed("inserting session", err)
	}
	return rec, nil
}

// Update replaces the snapshot of an existing saved session. A nil
// displayName keeps the stored name. Returns ErrNotFound if id is absent.
func (b *Backend) Update(ctx context.Context, id string, snapshot types.Snapshot, displayName *string) (*types.SavedSession, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, txFailed("beginning transaction", err)
	}
	defer tx.Rollback()

	rec, err := scanSession(tx.QueryRowContext(ctx, selectSession+" WHERE session_id = ?", id))
	if err != nil {
		return nil, err
	}

	if displayName != nil {
		rec.DisplayName = *displayName
	}
	updatedAt := b.timestamp()
	rec.UpdatedAt = &updatedAt
	rec.Snapshot = snapshot.Clone()

	_, err = tx.ExecContext(ctx,
		"UPDATE saved_sessions SET display_name = ?, updated_at = ?, snapshot = ? WHERE session_id = ?",
		rec.DisplayName, updatedAt.UnixMilli(), rec.Snapshot.Canonical(), id,
	)
	if err != nil {
		return nil, txFailed("updating session", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, txFailed("committing update", err)
	}
	return rec, nil
}

// List returns every saved session, most recently modified first. Ties are
// broken by creation time, then by insertion order, newest first.
func (b *Backend) List(ctx context.Context) ([]*types.SavedSession, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	rows, err := b.db.QueryContext(ctx,
		selectSession+" ORDER BY COALESCE(updated_at, created_at) DESC, created_at DESC, rowid DESC")
	if err != nil {
		return nil, txFailed("listing sessions", err)
	}
	defer rows.Close()

	sessions := []*types.SavedSession{}
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, txFailed("listing sessions", err)
	}
	return sessions, nil
}

// Delete removes a saved session. Deleting an absent id succeeds.
func (b *Backend) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkAttached(); err != nil {
		return err
	}

	if _, err := b.db.ExecContext(ctx, "DELETE FROM saved_sessions WHERE session_id = ?", id); err != nil {
		return txFailed("deleting session", err)
	}
	return nil
}

// Get retrieves a saved session by id. Returns ErrNotFound if absent.
func (b *Backend) Get(ctx context.Context, id string) (*types.SavedSession, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkAttached(); err != nil {
		return nil, err
	}
	return scanSession(b.db.QueryRowContext(ctx, selectSession+" WHERE session_id = ?", id))
}

type scanner interface {
	Scan(dest ...any) error
}

// scanSession hydrates one row of selectSession. The stored snapshot goes
// through the defensive decoder like any other serialized record.
func scanSession(row scanner) (*types.SavedSession, error) {
	var (
		rec       types.SavedSession
		createdAt int64
		updatedAt sql.NullInt64
		snapshot  string
	)
	err := row.Scan(&rec.ID, &rec.DisplayName, &createdAt, &updatedAt, &snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, txFailed("scanning session", err)
	}

	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	if updatedAt.Valid {
		t := time.UnixMilli(updatedAt.Int64).UTC()
		rec.UpdatedAt = &t
	}
	rec.Snapshot, err = types.DecodeSnapshot([]byte(snapshot))
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", rec.ID, err)
	}
	return &rec, nil
}
