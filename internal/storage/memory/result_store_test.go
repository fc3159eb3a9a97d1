package memory

import (
	"context"
	"errors"
	"testing"

	"panel-lab/internal/domain"
	"panel-lab/internal/storage"
)

func record(label string, position int) *domain.RegressionRecord {
	return &domain.RegressionRecord{Label: label, Position: position, Variable: "AFFECTED_RATIO_LAG1"}
}

func TestRegressionResultStore_InsertBulk(t *testing.T) {
	ctx := context.Background()
	store := NewRegressionResultStore()

	if err := store.InsertBulk(ctx, []*domain.RegressionRecord{
		record("Model 2", 1), record("Model 1", 0), record("Model 3", 2),
	}); err != nil {
		t.Fatalf("InsertBulk: %v", err)
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("records = %d, want 3", len(all))
	}
	// Ordered by position, not label or insert order.
	for i, r := range all {
		if r.Position != i {
			t.Errorf("record %d position = %d", i, r.Position)
		}
	}

	if err := store.InsertBulk(ctx, []*domain.RegressionRecord{record("Model 1", 9)}); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestRegressionResultStore_GetByLabel(t *testing.T) {
	ctx := context.Background()
	store := NewRegressionResultStore()
	if err := store.InsertBulk(ctx, []*domain.RegressionRecord{record("Model 1", 0)}); err != nil {
		t.Fatalf("InsertBulk: %v", err)
	}

	r, err := store.GetByLabel(ctx, "Model 1")
	if err != nil {
		t.Fatalf("GetByLabel: %v", err)
	}
	if r.Variable != "AFFECTED_RATIO_LAG1" {
		t.Errorf("variable = %s", r.Variable)
	}

	if _, err := store.GetByLabel(ctx, "absent"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPanelRowStore_InsertBulk(t *testing.T) {
	ctx := context.Background()
	store := NewPanelRowStore()

	roa := 0.11
	rows := []*domain.PanelRow{
		{EntityID: "B", Period: 2001},
		{EntityID: "A", Period: 2002, ROA: &roa},
		{EntityID: "A", Period: 2001},
	}
	if err := store.InsertBulk(ctx, rows); err != nil {
		t.Fatalf("InsertBulk: %v", err)
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("rows = %d, want 3", len(all))
	}
	if all[0].EntityID != "A" || all[0].Period != 2001 || all[2].EntityID != "B" {
		t.Error("rows not ordered by (entity, period)")
	}
	if all[1].ROA == nil || *all[1].ROA != 0.11 {
		t.Errorf("ROA = %v, want 0.11", all[1].ROA)
	}

	if err := store.InsertBulk(ctx, []*domain.PanelRow{{EntityID: "A", Period: 2001}}); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	byEntity, err := store.GetByEntity(ctx, "A")
	if err != nil {
		t.Fatalf("GetByEntity: %v", err)
	}
	if len(byEntity) != 2 {
		t.Errorf("GetByEntity = %d rows, want 2", len(byEntity))
	}
}
