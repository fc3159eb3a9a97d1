package postgres

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"panel-lab/internal/domain"
	"panel-lab/internal/storage"
)

// ObservationStore implements storage.ObservationStore using PostgreSQL.
type ObservationStore struct {
	pool *Pool
}

// NewObservationStore creates a new ObservationStore.
func NewObservationStore(pool *Pool) *ObservationStore {
	return &ObservationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ObservationStore = (*ObservationStore)(nil)

const observationColumns = `
	entity_id, period, affected_ratio, total_assets, net_income, total_debt,
	oibdp, depreciation, state
`

const insertObservationQuery = `
	INSERT INTO observations (
		entity_id, period, affected_ratio, total_assets, net_income, total_debt,
		oibdp, depreciation, state
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// Insert adds one observation. Returns ErrDuplicateKey if (entity_id, period) exists.
func (s *ObservationStore) Insert(ctx context.Context, o *domain.Observation) error {
	_, err := s.pool.Exec(ctx, insertObservationQuery, observationArgs(o)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert observation: %w", err)
	}
	return nil
}

// InsertBulk adds multiple observations atomically. Fails the entire
// batch on any duplicate.
func (s *ObservationStore) InsertBulk(ctx context.Context, observations []*domain.Observation) error {
	if len(observations) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, o := range observations {
		if _, err := tx.Exec(ctx, insertObservationQuery, observationArgs(o)...); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert observation in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves every observation, ordered by (entity_id, period).
func (s *ObservationStore) GetAll(ctx context.Context) ([]*domain.Observation, error) {
	query := `SELECT ` + observationColumns + `
		FROM observations
		ORDER BY entity_id ASC, period ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all observations: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// GetByEntity retrieves one entity's observations, ordered by period.
func (s *ObservationStore) GetByEntity(ctx context.Context, entityID string) ([]*domain.Observation, error) {
	query := `SELECT ` + observationColumns + `
		FROM observations
		WHERE entity_id = $1
		ORDER BY period ASC`

	rows, err := s.pool.Query(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("get observations by entity: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// GetByPeriodRange retrieves observations with period in [from, to].
func (s *ObservationStore) GetByPeriodRange(ctx context.Context, from, to int) ([]*domain.Observation, error) {
	query := `SELECT ` + observationColumns + `
		FROM observations
		WHERE period >= $1 AND period <= $2
		ORDER BY entity_id ASC, period ASC`

	rows, err := s.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("get observations by period range: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// observationArgs maps an observation to insert arguments, turning NaN
// into NULL.
func observationArgs(o *domain.Observation) []any {
	return []any{
		o.EntityID,
		o.Period,
		nullableFloat(o.AffectedRatio),
		nullableFloat(o.TotalAssets),
		nullableFloat(o.NetIncome),
		nullableFloat(o.TotalDebt),
		o.OperatingIncome,
		o.Depreciation,
		o.State,
	}
}

func scanObservations(rows pgx.Rows) ([]*domain.Observation, error) {
	var result []*domain.Observation
	for rows.Next() {
		var (
			o                              domain.Observation
			affected, assets, income, debt *float64
		)
		err := rows.Scan(
			&o.EntityID, &o.Period, &affected, &assets, &income, &debt,
			&o.OperatingIncome, &o.Depreciation, &o.State,
		)
		if err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		o.AffectedRatio = floatOrNaN(affected)
		o.TotalAssets = floatOrNaN(assets)
		o.NetIncome = floatOrNaN(income)
		o.TotalDebt = floatOrNaN(debt)
		result = append(result, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}
	return result, nil
}

// nullableFloat converts NaN to NULL for storage.
func nullableFloat(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// floatOrNaN converts NULL back to NaN on load.
func floatOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
