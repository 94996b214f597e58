package memory

import (
	"context"
	"fmt"
	"sync"

	"videoforge/internal/ports"
)

// Store keeps status records in process memory. Suitable for single
// instance deployments and tests.
type Store struct {
	mu      sync.RWMutex
	records map[string]ports.StatusRecord
}

func NewStore() *Store {
	return &Store{records: make(map[string]ports.StatusRecord)}
}

func (s *Store) Set(_ context.Context, requestID string, record ports.StatusRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[requestID] = record
	return nil
}

func (s *Store) Get(_ context.Context, requestID string) (ports.StatusRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[requestID]
	if !ok {
		return ports.StatusRecord{}, fmt.Errorf("%w: %s", ports.ErrStatusNotFound, requestID)
	}
	return record, nil
}

func (s *Store) Delete(_ context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, requestID)
	return nil
}
