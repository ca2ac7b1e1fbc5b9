package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const progressFile = "progress.json"

// File is a Store backed by a single JSON object on disk. Every Set and
// Remove rewrites the file.
type File struct {
	mu     sync.RWMutex
	values map[string]string
	path   string
}

// DefaultPath returns ~/.config/paint-by-number/progress.json (or the
// platform equivalent).
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "paint-by-number", progressFile)
}

// OpenFile loads the store at path. A missing file yields an empty store;
// an unreadable or corrupt file is an error.
func OpenFile(path string) (*File, error) {
	f := &File{
		values: make(map[string]string),
		path:   path,
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &f.values); err != nil {
		return nil, fmt.Errorf("corrupt store %s: %w", path, err)
	}
	if f.values == nil {
		f.values = make(map[string]string)
	}
	return f, nil
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Get implements Store.
func (f *File) Get(key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return v, ok, nil
}

// Set implements Store.
func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return f.save()
}

// Remove implements Store.
func (f *File) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; !ok {
		return nil
	}
	delete(f.values, key)
	return f.save()
}

// save writes the values to disk. Callers hold f.mu.
func (f *File) save() error {
	data, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
