// Package store provides the string key-value stores that paint progress is
// persisted through.
package store

import (
	"fmt"
	"strings"
	"sync"

	"paint-by-number/internal/progress"
)

// Keys written by the session. The names match the ones the web version of
// the app used, so an exported browser store can be loaded as is.
const (
	KeyOverlay         = "paintedMask"
	KeyPaintedCounts   = "paintedPixelsByColor"
	KeyTotalCounts     = "totalPixelsByColor"
	KeySelectedSection = "selectedSquare"
	sectionKeyPrefix   = "paintbynumber_progress_"
)

// SectionKey returns the key holding the local progress of a section.
func SectionKey(id progress.SectionID) string {
	return fmt.Sprintf("%s%d_%d", sectionKeyPrefix, id.X, id.Y)
}

// IsSectionKey reports whether key holds section progress.
func IsSectionKey(key string) bool {
	return strings.HasPrefix(key, sectionKeyPrefix)
}

// Store is an opaque string key-value store. Implementations may fail on any
// call; callers treat failures as non-fatal.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get implements Store.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Store.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

// Remove implements Store.
func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}

// Keys returns the stored keys.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	return keys
}
