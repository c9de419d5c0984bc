// Package memory implements an in-process Storage backend. Nothing survives
// Detach; it exists for tests and for the "memory" backend setting.
package memory

import (
	"sort"
	"sync"

	"github.com/mesh-intelligence/basket/pkg/types"
)

// Store is a map-backed types.Storage. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	attached bool
	entries  map[string]string

	// Quota, when positive, caps the total bytes of keys plus values.
	// SetItem returns ErrQuotaExceeded when a write would cross it.
	Quota int

	// FailWrites, when non-nil, is returned by SetItem and RemoveItem.
	FailWrites error
	// FailReads, when non-nil, is returned by GetItem.
	FailReads error
}

// New returns an attached, empty Store.
func New() *Store {
	return &Store{attached: true, entries: make(map[string]string)}
}

// NewDetached returns a Store that must be attached before use.
func NewDetached() *Store {
	return &Store{entries: make(map[string]string)}
}

// Attach marks the store usable. The config is validated but otherwise
// ignored.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	s.attached = true
	return nil
}

// Detach drops all entries. Idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attached = false
	s.entries = make(map[string]string)
	return nil
}

func (s *Store) GetItem(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return "", types.ErrStorageDetached
	}
	if s.FailReads != nil {
		return "", s.FailReads
	}
	v, ok := s.entries[key]
	if !ok {
		return "", types.ErrNotFound
	}
	return v, nil
}

func (s *Store) SetItem(key, value string) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return types.ErrStorageDetached
	}
	if s.FailWrites != nil {
		return s.FailWrites
	}
	if s.Quota > 0 {
		used := 0
		for k, v := range s.entries {
			if k != key {
				used += len(k) + len(v)
			}
		}
		if used+len(key)+len(value) > s.Quota {
			return types.ErrQuotaExceeded
		}
	}
	s.entries[key] = value
	return nil
}

func (s *Store) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return types.ErrStorageDetached
	}
	if s.FailWrites != nil {
		return s.FailWrites
	}
	delete(s.entries, key)
	return nil
}

func (s *Store) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, types.ErrStorageDetached
	}
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
