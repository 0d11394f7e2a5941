package memory

import (
	"context"
	"sync"

	"github.com/code-payments/vault-client/pkg/vault/store"
)

type memoryStore struct {
	mu     sync.Mutex
	record *store.Record
}

// New returns a new in memory store.Store
func New() store.Store {
	return &memoryStore{}
}

func (s *memoryStore) reset() {
	s.mu.Lock()
	s.record = nil
	s.mu.Unlock()
}

// Save implements store.Store.Save
func (s *memoryStore) Save(_ context.Context, record *store.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cloned := record.Clone()
	s.record = &cloned

	return nil
}

// Load implements store.Store.Load
func (s *memoryStore) Load(_ context.Context) (*store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.record == nil {
		return nil, store.ErrNoPersistedRecord
	}

	cloned := s.record.Clone()
	return &cloned, nil
}
