// Package sqlite implements the durable saved-session store on SQLite.
package sqlite

// schemaVersion is recorded in PRAGMA user_version.
const schemaVersion = 1

// Schema DDL. Timestamps are Unix milliseconds; updated_at stays NULL until
// the first save-over. snapshot holds the canonical JSON of rows and
// parameters.
const (
	createSavedSessions = `CREATE TABLE IF NOT EXISTS saved_sessions (
    session_id TEXT PRIMARY KEY,
    display_name TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER,
    snapshot TEXT NOT NULL
);`

	idxSavedSessionsCreated  = `CREATE INDEX IF NOT EXISTS idx_saved_sessions_created ON saved_sessions(created_at);`
	idxSavedSessionsModified = `CREATE INDEX IF NOT EXISTS idx_saved_sessions_modified ON saved_sessions(COALESCE(updated_at, created_at));`
)

// schemaDDL lists the statements applied when migrating to schemaVersion.
var schemaDDL = []string{
	createSavedSessions,
	idxSavedSessionsCreated,
	idxSavedSessionsModified,
}
