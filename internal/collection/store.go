package collection

import (
	"slices"
	"strings"
	"sync"
)

// Store holds the cached collections of one record type for one session.
// The owner decides when collections are created and evicted; the
// Synchronizer only patches what is already there.
type Store[T any] struct {
	mu      sync.Mutex
	entries map[Key]*Collection[T]
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{entries: make(map[Key]*Collection[T])}
}

// Put installs (or replaces) the collection fetched for key.
func (s *Store[T]) Put(key Key, c *Collection[T]) {
	cp := c.Clone()
	cp.dedupe()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = cp
}

// Get returns a copy of the collection cached for key.
func (s *Store[T]) Get(key Key) (*Collection[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// Evict drops the collection cached for key.
func (s *Store[T]) Evict(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Len returns the number of cached collections.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Keys returns every cached key in a stable order.
func (s *Store[T]) Keys() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedKeys("", false)
}

// KeysFor returns the cached keys built from the given query name.
func (s *Store[T]) KeysFor(query string) []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedKeys(query, true)
}

func (s *Store[T]) sortedKeys(query string, filter bool) []Key {
	keys := make([]Key, 0, len(s.entries))
	for k := range s.entries {
		if filter && k.query != query {
			continue
		}
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b Key) int {
		return strings.Compare(a.String(), b.String())
	})
	return keys
}

// modify runs fn on the live collection for key while holding the lock.
// It reports whether the key was present.
func (s *Store[T]) modify(key Key, fn func(c *Collection[T])) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.entries[key]
	if !ok {
		return false
	}
	fn(c)
	return true
}
