package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	store "github.com/jwebster45206/dialogue-engine/pkg/storage"
)

// Subdirectories of the data directory, one per kind of authored file.
const (
	dialoguesDir = "dialogues"
	tagsDir      = "tags"
	pcsDir       = "pcs"
)

// readDataFile reads <dataDir>/<dir>/<name>. A missing file maps to
// store.ErrNotFound so callers can tell it from a read failure.
func (r *RedisStorage) readDataFile(dir, name string) ([]byte, error) {
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("%s %q: %w", dir, name, store.ErrNotFound)
	}
	path := filepath.Join(r.dataDir, dir, name)
	r.logger.Debug("Reading data file", "kind", dir, "full_path", path)

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%s %s: %w", dir, name, store.ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("failed to read %s file %s: %w", dir, name, err)
	}
	return data, nil
}

// listDataFiles returns the sorted names in <dataDir>/<dir> accepted by keep.
// A missing directory lists as empty.
func (r *RedisStorage) listDataFiles(dir string, keep func(name string) bool) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(r.dataDir, dir))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return []string{}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read %s directory: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && keep(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

func isJSONFile(name string) bool {
	return filepath.Ext(name) == ".json"
}
