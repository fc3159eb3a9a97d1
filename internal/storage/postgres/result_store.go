package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"panel-lab/internal/domain"
	"panel-lab/internal/storage"
)

// RegressionResultStore implements storage.RegressionResultStore using
// PostgreSQL.
type RegressionResultStore struct {
	pool *Pool
}

// NewRegressionResultStore creates a new RegressionResultStore.
func NewRegressionResultStore(pool *Pool) *RegressionResultStore {
	return &RegressionResultStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RegressionResultStore = (*RegressionResultStore)(nil)

const resultColumns = `
	label, position, dependent, variable, estimate, std_error, p_value,
	ci_lower, ci_upper, r2, n, entity_count, fixed_effects, se_mode,
	failed, failure_reason
`

const insertResultQuery = `
	INSERT INTO regression_results (
		label, position, dependent, variable, estimate, std_error, p_value,
		ci_lower, ci_upper, r2, n, entity_count, fixed_effects, se_mode,
		failed, failure_reason
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
`

// InsertBulk adds multiple records atomically. Fails the entire batch on
// a duplicate label.
func (s *RegressionResultStore) InsertBulk(ctx context.Context, records []*domain.RegressionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		_, err := tx.Exec(ctx, insertResultQuery,
			r.Label, r.Position, r.Dependent, r.Variable,
			nullableFloat(r.Estimate), nullableFloat(r.StdErr), nullableFloat(r.PValue),
			nullableFloat(r.CILower), nullableFloat(r.CIUpper), nullableFloat(r.R2),
			r.N, r.EntityCount, r.FixedEffects, r.SEMode,
			r.Failed, r.FailureReason,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert regression record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves every record, ordered by position.
func (s *RegressionResultStore) GetAll(ctx context.Context) ([]*domain.RegressionRecord, error) {
	query := `SELECT ` + resultColumns + `
		FROM regression_results
		ORDER BY position ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all regression records: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// GetByLabel retrieves one record. Returns ErrNotFound if absent.
func (s *RegressionResultStore) GetByLabel(ctx context.Context, label string) (*domain.RegressionRecord, error) {
	query := `SELECT ` + resultColumns + `
		FROM regression_results
		WHERE label = $1`

	row := s.pool.QueryRow(ctx, query, label)
	r, err := scanResult(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get regression record by label: %w", err)
	}
	return r, nil
}

func scanResults(rows pgx.Rows) ([]*domain.RegressionRecord, error) {
	var result []*domain.RegressionRecord
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan regression record: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate regression records: %w", err)
	}
	return result, nil
}

func scanResult(row pgx.Row) (*domain.RegressionRecord, error) {
	var (
		r                                              domain.RegressionRecord
		estimate, stdErr, pValue, ciLower, ciUpper, r2 *float64
	)
	err := row.Scan(
		&r.Label, &r.Position, &r.Dependent, &r.Variable,
		&estimate, &stdErr, &pValue, &ciLower, &ciUpper, &r2,
		&r.N, &r.EntityCount, &r.FixedEffects, &r.SEMode,
		&r.Failed, &r.FailureReason,
	)
	if err != nil {
		return nil, err
	}
	r.Estimate = floatOrNaN(estimate)
	r.StdErr = floatOrNaN(stdErr)
	r.PValue = floatOrNaN(pValue)
	r.CILower = floatOrNaN(ciLower)
	r.CIUpper = floatOrNaN(ciUpper)
	r.R2 = floatOrNaN(r2)
	return &r, nil
}
