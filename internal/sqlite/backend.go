package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/costbook/pkg/types"
)

// DatabaseFile is the name of the SQLite file inside DataDir.
const DatabaseFile = "costbook.db"

var _ types.Backend = (*Backend)(nil)

// Backend implements types.Backend on a SQLite database in DataDir.
// Each operation is a single statement or transaction; concurrent writes to
// the same record are last-write-wins.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	newID func() string
	now   func() time.Time
	// last is the newest timestamp stored; timestamp never returns one at or
	// before it.
	last time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithClock sets the time source for CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// WithIDGenerator sets the generator for saved-session ids.
func WithIDGenerator(newID func() string) Option {
	return func(b *Backend) { b.newID = newID }
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{newID: generateUUID, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// generateUUID generates a new UUID v7 for saved-session ids.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

// Attach opens (creating if needed) DataDir/costbook.db and migrates its
// schema. Failures wrap ErrStorageUnavailable.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("%w: creating data dir: %w", types.ErrStorageUnavailable, err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("%w: opening database: %w", types.ErrStorageUnavailable, err)
	}
	// SQLite handles concurrency better with a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("%w: connecting to database: %w", types.ErrStorageUnavailable, err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return fmt.Errorf("%w: %w", types.ErrStorageUnavailable, err)
	}

	last, err := latestTimestamp(db)
	if err != nil {
		db.Close()
		return fmt.Errorf("%w: %w", types.ErrStorageUnavailable, err)
	}

	b.db = db
	b.last = last
	b.config = config
	b.attached = true
	return nil
}

// migrate brings the schema to schemaVersion. A database written by a newer
// schema is rejected.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version == schemaVersion {
		return nil
	}
	if version > schemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", version, schemaVersion)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning migration: %w", err)
	}
	defer tx.Rollback()

	for _, ddl := range schemaDDL {
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("setting schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration: %w", err)
	}
	return nil
}

// Detach closes the database. After Detach, all operations return
// ErrStorageUnavailable. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil // idempotent
	}

	db := b.db
	b.db = nil
	b.attached = false
	if db != nil {
		if err := db.Close(); err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
	}
	return nil
}

// DataDir returns the directory of the attached database.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.DataDir
}

// checkAttached returns ErrStorageUnavailable when detached. The caller
// must hold b.mu.
func (b *Backend) checkAttached() error {
	if !b.attached {
		return fmt.Errorf("%w: store is detached", types.ErrStorageUnavailable)
	}
	return nil
}

// timestamp returns the current time at the millisecond precision stored
// in the database, bumped past the newest stored stamp so that every write
// sorts after the one before it. The caller must hold b.mu for writing.
func (b *Backend) timestamp() time.Time {
	t := b.now().UTC().Truncate(time.Millisecond)
	if !t.After(b.last) {
		t = b.last.Add(time.Millisecond)
	}
	b.last = t
	return t
}

// observe advances the monotonic clock past an externally supplied stamp.
// The caller must hold b.mu for writing.
func (b *Backend) observe(t time.Time) {
	if t.After(b.last) {
		b.last = t
	}
}

// latestTimestamp returns the newest created or updated stamp in the store.
func latestTimestamp(db *sql.DB) (time.Time, error) {
	var ms int64
	err := db.QueryRow("SELECT COALESCE(MAX(COALESCE(updated_at, created_at)), 0) FROM saved_sessions").Scan(&ms)
	if err != nil {
		return time.Time{}, fmt.Errorf("reading latest timestamp: %w", err)
	}
	if ms == 0 {
		return time.Time{}, nil
	}
	return time.UnixMilli(ms).UTC(), nil
}

func txFailed(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", types.ErrTransactionFailed, op, err)
}
