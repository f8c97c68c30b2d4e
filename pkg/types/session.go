package types

import (
	"context"
	"time"
)

// DefaultDisplayName is used when a session has no usable title.
const DefaultDisplayName = "Untitled"

// SavedSession is a named, durable snapshot. ID and CreatedAt never change
// after creation; UpdatedAt is nil until the first save-over.
type SavedSession struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"display_name"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	Snapshot    Snapshot   `json:"snapshot"`
}

// LastModified returns UpdatedAt when set, CreatedAt otherwise. History is
// ordered by this value, newest first.
func (s *SavedSession) LastModified() time.Time {
	if s.UpdatedAt != nil {
		return *s.UpdatedAt
	}
	return s.CreatedAt
}

// SessionMeta is the lifecycle metadata mirrored next to the autosaved
// draft. An empty BoundSessionID means the draft is not bound to a saved
// session.
type SessionMeta struct {
	BoundSessionID     string `json:"bound_session_id"`
	DisplayName        string `json:"display_name"`
	LastSyncedSnapshot string `json:"last_synced_snapshot"`
}

// SessionStore is the durable record store for saved sessions.
type SessionStore interface {
	// Create stores snapshot under a freshly generated id with CreatedAt set
	// to now and returns the full record.
	Create(ctx context.Context, displayName string, snapshot Snapshot) (*SavedSession, error)

	// Update replaces the snapshot of an existing record, merges displayName
	// when non-nil and sets UpdatedAt to now. CreatedAt is preserved.
	// Returns ErrNotFound if no record has that id.
	Update(ctx context.Context, id string, snapshot Snapshot, displayName *string) (*SavedSession, error)

	// List returns every record, most recently modified first.
	List(ctx context.Context) ([]*SavedSession, error)

	// Delete removes the record. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// Get returns the record with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*SavedSession, error)
}

// Backend is a SessionStore with an attach/detach lifecycle. Operations on
// a detached backend fail with ErrStorageUnavailable.
type Backend interface {
	SessionStore

	// Attach opens the store described by config, creating DataDir if it
	// does not exist. Returns ErrAlreadyAttached if already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	Detach() error
}
