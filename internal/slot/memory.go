package slot

import (
	"errors"
	"log/slog"
	"sync"
)

// ErrUnavailable is what a Memory slot's storage reports while disabled.
// It never escapes the slot.
var ErrUnavailable = errors.New("slot storage unavailable")

// Memory is an in-process slot. Values are kept serialized so reads go
// through the same defensive decoding as the file slot.
type Memory struct {
	slot
	kv *memoryKV
}

// NewMemory returns an empty in-memory slot. A nil logger uses slog.Default.
func NewMemory(logger *slog.Logger) *Memory {
	kv := &memoryKV{values: map[string][]byte{}}
	return &Memory{slot: slot{store: kv, logger: loggerOrDefault(logger)}, kv: kv}
}

// SetUnavailable makes every subsequent read and write fail until reset.
func (m *Memory) SetUnavailable(unavailable bool) {
	m.kv.mu.Lock()
	defer m.kv.mu.Unlock()
	m.kv.unavailable = unavailable
}

// Raw returns the serialized value under key.
func (m *Memory) Raw(key string) ([]byte, bool) {
	data, ok, _ := m.kv.get(key)
	return data, ok
}

// SetRaw stores a serialized value under key, bypassing encoding.
func (m *Memory) SetRaw(key string, value []byte) {
	m.kv.mu.Lock()
	defer m.kv.mu.Unlock()
	m.kv.values[key] = append([]byte(nil), value...)
}

type memoryKV struct {
	mu          sync.Mutex
	values      map[string][]byte
	unavailable bool
}

func (m *memoryKV) get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return nil, false, ErrUnavailable
	}
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *memoryKV) put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return ErrUnavailable
	}
	m.values[key] = append([]byte(nil), value...)
	return nil
}
