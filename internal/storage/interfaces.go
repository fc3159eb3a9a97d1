package storage

import (
	"context"

	"panel-lab/internal/domain"
)

// ObservationStore provides access to raw firm-year observations.
type ObservationStore interface {
	// Insert adds one observation. Returns ErrDuplicateKey if
	// (entity_id, period) exists.
	Insert(ctx context.Context, o *domain.Observation) error

	// InsertBulk adds multiple observations atomically. Fails the entire
	// batch on any duplicate.
	InsertBulk(ctx context.Context, observations []*domain.Observation) error

	// GetAll retrieves every observation, ordered by (entity_id, period).
	GetAll(ctx context.Context) ([]*domain.Observation, error)

	// GetByEntity retrieves one entity's observations, ordered by period.
	GetByEntity(ctx context.Context, entityID string) ([]*domain.Observation, error)

	// GetByPeriodRange retrieves observations with period in [from, to],
	// ordered by (entity_id, period).
	GetByPeriodRange(ctx context.Context, from, to int) ([]*domain.Observation, error)
}

// PanelRowStore provides access to the enriched panel copy kept for
// downstream inspection.
type PanelRowStore interface {
	// InsertBulk adds multiple rows. Fails the entire batch on duplicate
	// (entity_id, period).
	InsertBulk(ctx context.Context, rows []*domain.PanelRow) error

	// GetAll retrieves every row, ordered by (entity_id, period).
	GetAll(ctx context.Context) ([]*domain.PanelRow, error)

	// GetByEntity retrieves one entity's rows, ordered by period.
	GetByEntity(ctx context.Context, entityID string) ([]*domain.PanelRow, error)
}

// RegressionResultStore provides access to persisted comparison-table rows.
type RegressionResultStore interface {
	// InsertBulk adds multiple records atomically. Fails the entire
	// batch on a duplicate label.
	InsertBulk(ctx context.Context, records []*domain.RegressionRecord) error

	// GetAll retrieves every record, ordered by position.
	GetAll(ctx context.Context) ([]*domain.RegressionRecord, error)

	// GetByLabel retrieves one record. Returns ErrNotFound if absent.
	GetByLabel(ctx context.Context, label string) (*domain.RegressionRecord, error)
}
