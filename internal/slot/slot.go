// Package slot keeps the autosaved draft and its lifecycle metadata in a
// best-effort key/value slot. Nothing here returns an error: unavailable
// storage, full disks and corrupt records are logged and otherwise ignored,
// because the in-memory draft stays authoritative.
package slot

import (
	"encoding/json"
	"log/slog"

	"github.com/mesh-intelligence/costbook/pkg/types"
)

// Keys under which the draft and its metadata are stored.
const (
	DraftKey = "costbook-draft.v1"
	MetaKey  = "costbook-draft.meta"
)

// kv is the raw storage a slot reads and writes serialized records through.
type kv interface {
	get(key string) ([]byte, bool, error)
	put(key string, value []byte) error
}

// slot implements the draft slot contract on top of a kv.
type slot struct {
	store  kv
	logger *slog.Logger
}

// LoadDraft returns the autosaved draft. ok is false when nothing usable is
// stored.
func (s slot) LoadDraft() (types.Snapshot, bool) {
	data, ok := s.read(DraftKey)
	if !ok {
		return types.Snapshot{}, false
	}
	snap, err := types.DecodeSnapshot(data)
	if err != nil {
		s.logger.Warn("ignoring unreadable draft", "key", DraftKey, "error", err)
		return types.Snapshot{}, false
	}
	return snap, true
}

// StoreDraft autosaves snap.
func (s slot) StoreDraft(snap types.Snapshot) {
	s.write(DraftKey, []byte(snap.Canonical()))
}

// LoadMeta returns the stored lifecycle metadata.
func (s slot) LoadMeta() (types.SessionMeta, bool) {
	data, ok := s.read(MetaKey)
	if !ok {
		return types.SessionMeta{}, false
	}
	meta, err := types.DecodeSessionMeta(data)
	if err != nil {
		s.logger.Warn("ignoring unreadable session meta", "key", MetaKey, "error", err)
		return types.SessionMeta{}, false
	}
	return meta, true
}

// StoreMeta saves the lifecycle metadata.
func (s slot) StoreMeta(meta types.SessionMeta) {
	data, err := json.Marshal(meta)
	if err != nil {
		s.logger.Warn("cannot encode session meta", "error", err)
		return
	}
	s.write(MetaKey, data)
}

func (s slot) read(key string) ([]byte, bool) {
	data, ok, err := s.store.get(key)
	if err != nil {
		s.logger.Warn("draft slot unavailable", "key", key, "error", err)
		return nil, false
	}
	return data, ok
}

func (s slot) write(key string, data []byte) {
	if err := s.store.put(key, data); err != nil {
		s.logger.Warn("draft slot write failed", "key", key, "error", err)
	}
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
