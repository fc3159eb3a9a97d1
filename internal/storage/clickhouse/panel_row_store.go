package clickhouse

import (
	"context"
	"fmt"
	"math"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"panel-lab/internal/domain"
	"panel-lab/internal/storage"
)

// PanelRowStore implements storage.PanelRowStore using ClickHouse.
type PanelRowStore struct {
	conn *Conn
}

// NewPanelRowStore creates a new PanelRowStore.
func NewPanelRowStore(conn *Conn) *PanelRowStore {
	return &PanelRowStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PanelRowStore = (*PanelRowStore)(nil)

const panelRowColumns = `
	entity_id, period, affected_ratio, total_assets, net_income, total_debt, state,
	affected_ratio_lag1, affected_ratio_lag2, at_lag1,
	roa, roa_contemp, log_assets, leverage
`

// InsertBulk adds multiple rows. ClickHouse MergeTree does not enforce
// uniqueness at insert time, so duplicates are checked explicitly before
// the batch is sent.
func (s *PanelRowStore) InsertBulk(ctx context.Context, rows []*domain.PanelRow) error {
	if len(rows) == 0 {
		return nil
	}

	type key struct {
		entityID string
		period   int
	}
	seen := make(map[key]struct{}, len(rows))
	for _, r := range rows {
		if r == nil || r.EntityID == "" {
			return storage.ErrInvalidInput
		}
		k := key{r.EntityID, r.Period}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, r := range rows {
		exists, err := s.exists(ctx, r.EntityID, r.Period)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO panel_rows (`+panelRowColumns+`)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			r.EntityID, int32(r.Period),
			nullableFloat(r.AffectedRatio), nullableFloat(r.TotalAssets),
			nullableFloat(r.NetIncome), nullableFloat(r.TotalDebt), r.State,
			r.AffectedRatioLag1, r.AffectedRatioLag2, r.AssetsLag1,
			r.ROA, r.ROAContemp, r.LogAssets, r.Leverage,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetAll retrieves every row, ordered by (entity_id, period).
func (s *PanelRowStore) GetAll(ctx context.Context) ([]*domain.PanelRow, error) {
	query := `
		SELECT ` + panelRowColumns + `
		FROM panel_rows
		ORDER BY entity_id ASC, period ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query all panel rows: %w", err)
	}
	defer rows.Close()

	return scanPanelRows(rows)
}

// GetByEntity retrieves one entity's rows, ordered by period.
func (s *PanelRowStore) GetByEntity(ctx context.Context, entityID string) ([]*domain.PanelRow, error) {
	query := `
		SELECT ` + panelRowColumns + `
		FROM panel_rows
		WHERE entity_id = ?
		ORDER BY period ASC
	`

	rows, err := s.conn.Query(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("query panel rows by entity: %w", err)
	}
	defer rows.Close()

	return scanPanelRows(rows)
}

func (s *PanelRowStore) exists(ctx context.Context, entityID string, period int) (bool, error) {
	query := `SELECT count() FROM panel_rows WHERE entity_id = ? AND period = ?`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, entityID, int32(period)).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanPanelRows(rows driver.Rows) ([]*domain.PanelRow, error) {
	var result []*domain.PanelRow
	for rows.Next() {
		var (
			r                              domain.PanelRow
			period                         int32
			affected, assets, income, debt *float64
		)
		err := rows.Scan(
			&r.EntityID, &period,
			&affected, &assets, &income, &debt, &r.State,
			&r.AffectedRatioLag1, &r.AffectedRatioLag2, &r.AssetsLag1,
			&r.ROA, &r.ROAContemp, &r.LogAssets, &r.Leverage,
		)
		if err != nil {
			return nil, fmt.Errorf("scan panel row: %w", err)
		}
		r.Period = int(period)
		r.AffectedRatio = floatOrNaN(affected)
		r.TotalAssets = floatOrNaN(assets)
		r.NetIncome = floatOrNaN(income)
		r.TotalDebt = floatOrNaN(debt)
		result = append(result, &r)
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
