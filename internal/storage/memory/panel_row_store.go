package memory

import (
	"context"
	"sort"
	"sync"

	"panel-lab/internal/domain"
	"panel-lab/internal/storage"
)

// PanelRowStore is an in-memory implementation of storage.PanelRowStore.
type PanelRowStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PanelRow // keyed by (entity_id, period)
}

// NewPanelRowStore creates a new in-memory panel row store.
func NewPanelRowStore() *PanelRowStore {
	return &PanelRowStore{
		data: make(map[string]*domain.PanelRow),
	}
}

// Compile-time interface check.
var _ storage.PanelRowStore = (*PanelRowStore)(nil)

// InsertBulk adds multiple rows. Fails the entire batch on duplicate
// (entity_id, period).
func (s *PanelRowStore) InsertBulk(_ context.Context, rows []*domain.PanelRow) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r == nil || r.EntityID == "" {
			return storage.ErrInvalidInput
		}
		key := observationKey(r.EntityID, r.Period)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range rows {
		rowCopy := *r
		s.data[observationKey(r.EntityID, r.Period)] = &rowCopy
	}
	return nil
}

// GetAll retrieves every row, ordered by (entity_id, period).
func (s *PanelRowStore) GetAll(_ context.Context) ([]*domain.PanelRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.PanelRow, 0, len(s.data))
	for _, r := range s.data {
		rowCopy := *r
		result = append(result, &rowCopy)
	}
	sortPanelRows(result)
	return result, nil
}

// GetByEntity retrieves one entity's rows, ordered by period.
func (s *PanelRowStore) GetByEntity(_ context.Context, entityID string) ([]*domain.PanelRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PanelRow
	for _, r := range s.data {
		if r.EntityID == entityID {
			rowCopy := *r
			result = append(result, &rowCopy)
		}
	}
	sortPanelRows(result)
	return result, nil
}

func sortPanelRows(rows []*domain.PanelRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].EntityID != rows[j].EntityID {
			return rows[i].EntityID < rows[j].EntityID
		}
		return rows[i].Period < rows[j].Period
	})
}
