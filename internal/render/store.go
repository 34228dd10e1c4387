package render

import (
	"slices"
	"sync"
)

// Store holds the artifacts of one run keyed by name.
type Store struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{items: make(map[string][]byte)}
}

// Put stores data under name, replacing any previous artifact.
func (s *Store) Put(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[name] = data
}

// Get returns the artifact stored under name.
func (s *Store) Get(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.items[name]
	return data, ok
}

// Names returns the stored artifact names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.items))
	for name := range s.items {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Size returns the combined size of all artifacts.
func (s *Store) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, data := range s.items {
		total += int64(len(data))
	}
	return total
}

// Retain drops every artifact except the named ones.
func (s *Store) Retain(keep ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.items {
		if !slices.Contains(keep, name) {
			delete(s.items, name)
		}
	}
}
