// Package store holds the client-side view of the bell collection.
//
// The store is replace-only: every successful fetch swaps the entire
// collection and there is no partial in-place mutation. That keeps an
// optimistic editing surface from ever diverging from the authoritative
// snapshot — the last applied snapshot wins, always.
package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/brewmarsh/family-bell/internal/bell"
)

// ErrNotFound is returned when no bell carries the requested id.
var ErrNotFound = errors.New("store: bell not found")

// Store is the canonical client-side bell collection. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	bells []bell.Bell
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// ReplaceAll atomically swaps the entire collection. The stored listing
// order is by firing time ascending; bells with equal times keep the
// relative order they arrived in.
func (s *Store) ReplaceAll(bells []bell.Bell) {
	next := make([]bell.Bell, len(bells))
	for i := range bells {
		next[i] = bells[i].Clone()
	}
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].Time < next[j].Time
	})

	s.mu.Lock()
	s.bells = next
	s.mu.Unlock()
}

// List returns a copy of the collection in time order.
func (s *Store) List() []bell.Bell {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]bell.Bell, len(s.bells))
	for i := range s.bells {
		out[i] = s.bells[i].Clone()
	}
	return out
}

// FindByID returns the bell with the given id.
func (s *Store) FindByID(id string) (bell.Bell, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.bells {
		if s.bells[i].ID == id {
			return s.bells[i].Clone(), nil
		}
	}
	return bell.Bell{}, ErrNotFound
}

// Len returns the number of bells currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bells)
}
