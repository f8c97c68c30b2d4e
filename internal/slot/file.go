package slot

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// File is a slot backed by one JSON file per key in a directory.
type File struct {
	slot
}

// NewFile returns a slot storing its keys as <dir>/<key>.json. The directory
// is created on first write. A nil logger uses slog.Default.
func NewFile(dir string, logger *slog.Logger) *File {
	return &File{slot{store: fileKV{dir: dir}, logger: loggerOrDefault(logger)}}
}

type fileKV struct {
	dir string
}

func (f fileKV) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f fileKV) get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// put replaces the file atomically using the temp-file, fsync, rename
// pattern, so a crash mid-write leaves the previous value readable.
func (f fileKV) put(key string, value []byte) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("creating slot dir: %w", err)
	}
	tmp, err := os.CreateTemp(f.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%s: %w", step, err)
	}

	if _, err := tmp.Write(value); err != nil {
		return fail("writing temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
