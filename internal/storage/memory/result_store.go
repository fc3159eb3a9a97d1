package memory

import (
	"context"
	"sort"
	"sync"

	"panel-lab/internal/domain"
	"panel-lab/internal/storage"
)

// RegressionResultStore is an in-memory implementation of
// storage.RegressionResultStore.
type RegressionResultStore struct {
	mu   sync.RWMutex
	data map[string]*domain.RegressionRecord // keyed by label
}

// NewRegressionResultStore creates a new in-memory result store.
func NewRegressionResultStore() *RegressionResultStore {
	return &RegressionResultStore{
		data: make(map[string]*domain.RegressionRecord),
	}
}

// Compile-time interface check.
var _ storage.RegressionResultStore = (*RegressionResultStore)(nil)

// InsertBulk adds multiple records atomically. Fails the entire batch on
// a duplicate label.
func (s *RegressionResultStore) InsertBulk(_ context.Context, records []*domain.RegressionRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.Label == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[r.Label]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[r.Label]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[r.Label] = struct{}{}
	}

	for _, r := range records {
		recordCopy := *r
		s.data[r.Label] = &recordCopy
	}
	return nil
}

// GetAll retrieves every record, ordered by position.
func (s *RegressionResultStore) GetAll(_ context.Context) ([]*domain.RegressionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.RegressionRecord, 0, len(s.data))
	for _, r := range s.data {
		recordCopy := *r
		result = append(result, &recordCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Position < result[j].Position
	})
	return result, nil
}

// GetByLabel retrieves one record. Returns ErrNotFound if absent.
func (s *RegressionResultStore) GetByLabel(_ context.Context, label string) (*domain.RegressionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[label]
	if !ok {
		return nil, storage.ErrNotFound
	}
	recordCopy := *r
	return &recordCopy, nil
}
