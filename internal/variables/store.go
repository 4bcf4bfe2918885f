// Package variables provides the keyed value bag that backs template
// variables.
package variables

import "sync"

// Store holds named template variables. Lookups of absent keys return nil
// instead of failing.
type Store struct {
	values map[string]any
	mutex  sync.RWMutex
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		values: make(map[string]any),
	}
}

// Get returns the value stored under key, or nil if the key is absent
func (s *Store) Get(key string) any {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.values[key]
}

// Has reports whether key has been set
func (s *Store) Has(key string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	_, exists := s.values[key]
	return exists
}

// GetAll returns a snapshot of every stored variable
func (s *Store) GetAll() map[string]any {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make(map[string]any, len(s.values))
	for key, value := range s.values {
		result[key] = value
	}
	return result
}

// Set inserts or overwrites a single variable
func (s *Store) Set(key string, value any) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.values[key] = value
}

// SetAll merges values into the store. Keys missing from values keep their
// current value.
func (s *Store) SetAll(values map[string]any) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for key, value := range values {
		s.values[key] = value
	}
}

// Len returns the number of stored variables
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.values)
}
