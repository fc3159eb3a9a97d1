// Package memory provides in-memory store implementations for tests and
// single-run analyses that do not need persistence.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"panel-lab/internal/domain"
	"panel-lab/internal/storage"
)

// ObservationStore is an in-memory implementation of storage.ObservationStore.
type ObservationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Observation // keyed by (entity_id, period)
}

// NewObservationStore creates a new in-memory observation store.
func NewObservationStore() *ObservationStore {
	return &ObservationStore{
		data: make(map[string]*domain.Observation),
	}
}

// Compile-time interface check.
var _ storage.ObservationStore = (*ObservationStore)(nil)

func observationKey(entityID string, period int) string {
	return fmt.Sprintf("%s|%d", entityID, period)
}

// Insert adds one observation. Returns ErrDuplicateKey if (entity_id, period) exists.
func (s *ObservationStore) Insert(_ context.Context, o *domain.Observation) error {
	if o == nil || o.EntityID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := observationKey(o.EntityID, o.Period)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}
	obsCopy := *o
	s.data[key] = &obsCopy
	return nil
}

// InsertBulk adds multiple observations atomically. Fails the entire
// batch on any duplicate.
func (s *ObservationStore) InsertBulk(_ context.Context, observations []*domain.Observation) error {
	if len(observations) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(observations))
	for _, o := range observations {
		if o == nil || o.EntityID == "" {
			return storage.ErrInvalidInput
		}
		key := observationKey(o.EntityID, o.Period)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, o := range observations {
		obsCopy := *o
		s.data[observationKey(o.EntityID, o.Period)] = &obsCopy
	}
	return nil
}

// GetAll retrieves every observation, ordered by (entity_id, period).
func (s *ObservationStore) GetAll(_ context.Context) ([]*domain.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Observation, 0, len(s.data))
	for _, o := range s.data {
		obsCopy := *o
		result = append(result, &obsCopy)
	}
	sortObservations(result)
	return result, nil
}

// GetByEntity retrieves one entity's observations, ordered by period.
func (s *ObservationStore) GetByEntity(_ context.Context, entityID string) ([]*domain.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Observation
	for _, o := range s.data {
		if o.EntityID == entityID {
			obsCopy := *o
			result = append(result, &obsCopy)
		}
	}
	sortObservations(result)
	return result, nil
}

// GetByPeriodRange retrieves observations with period in [from, to].
func (s *ObservationStore) GetByPeriodRange(_ context.Context, from, to int) ([]*domain.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Observation
	for _, o := range s.data {
		if o.Period >= from && o.Period <= to {
			obsCopy := *o
			result = append(result, &obsCopy)
		}
	}
	sortObservations(result)
	return result, nil
}

func sortObservations(observations []*domain.Observation) {
	sort.Slice(observations, func(i, j int) bool {
		if observations[i].EntityID != observations[j].EntityID {
			return observations[i].EntityID < observations[j].EntityID
		}
		return observations[i].Period < observations[j].Period
	})
}
