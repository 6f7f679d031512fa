package suspect

import (
	"cmp"
	"slices"
	"sync"

	"github.com/vango-dev/observation/internal/errors"
)

// Store holds suspects by id.
type Store struct {
	mu       sync.RWMutex
	suspects map[string]*Suspect
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{suspects: make(map[string]*Suspect)}
}

// Seed creates a store holding the two demo suspects.
func Seed() *Store {
	s := NewStore()
	s.Add(New("glib", "Glib Butler", 33))
	s.Add(New("jimmy", "Jimmy The Shrimp", 10))
	return s
}

// Add registers a suspect. It fails with E222 if the id is taken.
func (s *Store) Add(suspect *Suspect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.suspects[suspect.ID()]; ok {
		return errors.New("E222").WithDetail(suspect.ID())
	}
	s.suspects[suspect.ID()] = suspect
	return nil
}

// Get returns the suspect with the given id, or an E220 error.
func (s *Store) Get(id string) (*Suspect, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	suspect, ok := s.suspects[id]
	if !ok {
		return nil, errors.New("E220").WithDetail(id)
	}
	return suspect, nil
}

// List returns every suspect sorted by id.
func (s *Store) List() []*Suspect {
	s.mu.RLock()
	out := make([]*Suspect, 0, len(s.suspects))
	for _, suspect := range s.suspects {
		out = append(out, suspect)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Suspect) int {
		return cmp.Compare(a.ID(), b.ID())
	})
	return out
}
