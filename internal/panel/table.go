package panel

import (
	"fmt"
	"math"
)

// Table is a prepared, column-addressable view of the panel. Rows are
// sorted by (entity, period) ascending and stay in that order for the
// lifetime of the table. Missing numeric values are NaN.
//
// A Table is immutable once built by Prepare; every specification reads
// from it without mutating it.
type Table struct {
	entities []string
	periods  []int
	cols     map[string][]float64
	order    []string
	labels   map[string][]string

	// Numerator records which fallback tier supplied the ROA numerator.
	Numerator NumeratorSource

	// entityStart[i] is the index of the first row of the entity that
	// row i belongs to. Lag operations must not cross these boundaries.
	entityStart []int
}

// NumeratorSource identifies the fallback tier used for the ROA numerator.
type NumeratorSource int

const (
	// NumeratorOperatingIncome: OIBDP directly, the Hsu et al. definition.
	NumeratorOperatingIncome NumeratorSource = iota
	// NumeratorIncomePlusDepreciation: net income plus depreciation,
	// a reduced-fidelity OIBDP approximation.
	NumeratorIncomePlusDepreciation
	// NumeratorNetIncome: raw net income, the last-resort approximation.
	NumeratorNetIncome
)

func (s NumeratorSource) String() string {
	switch s {
	case NumeratorOperatingIncome:
		return "OIBDP"
	case NumeratorIncomePlusDepreciation:
		return "NET_INCOME+DEPRECIATION"
	case NumeratorNetIncome:
		return "NET_INCOME"
	default:
		return "UNKNOWN"
	}
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.entities)
}

// EntityIDs returns the entity identifier of every row, in row order.
func (t *Table) EntityIDs() []string {
	return t.entities
}

// Periods returns the period of every row, in row order.
func (t *Table) Periods() []int {
	return t.periods
}

// EntityCount returns the number of distinct entities.
func (t *Table) EntityCount() int {
	seen := make(map[string]struct{}, len(t.entities))
	for _, e := range t.entities {
		seen[e] = struct{}{}
	}
	return len(seen)
}

// Column returns the named numeric column in row order.
func (t *Table) Column(name string) ([]float64, bool) {
	c, ok := t.cols[name]
	return c, ok
}

// Columns returns all numeric column names in insertion order.
func (t *Table) Columns() []string {
	return t.order
}

// Label returns the named categorical column in row order.
func (t *Table) Label(name string) ([]string, bool) {
	l, ok := t.labels[name]
	return l, ok
}

// addColumn registers a numeric column. Length must match the row count.
func (t *Table) addColumn(name string, values []float64) {
	if _, exists := t.cols[name]; !exists {
		t.order = append(t.order, name)
	}
	t.cols[name] = values
}

// lag produces the value of src from the k-th prior row observed for the
// same entity, NaN when fewer than k prior rows exist. The lag basis is
// prior observed rows, not period-k on the calendar: gaps in an entity's
// periods yield the nearest available prior observation. This mirrors the
// source study's groupby-shift and is preserved deliberately.
func (t *Table) lag(src string, k int) ([]float64, error) {
	if k < 1 {
		return nil, fmt.Errorf("lag order must be >= 1, got %d", k)
	}
	col, ok := t.cols[src]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, src)
	}
	out := make([]float64, len(col))
	for i := range col {
		if i-k >= t.entityStart[i] {
			out[i] = col[i-k]
		} else {
			out[i] = math.NaN()
		}
	}
	return out, nil
}

// CompleteCases returns a new table containing only rows with no NaN in
// any of the given columns. The per-specification regression sample is
// built this way; different column sets retain different row counts.
func (t *Table) CompleteCases(columns ...string) (*Table, error) {
	for _, name := range columns {
		if _, ok := t.cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
		}
	}

	keep := make([]int, 0, len(t.entities))
	for i := range t.entities {
		complete := true
		for _, name := range columns {
			if math.IsNaN(t.cols[name][i]) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}

	sub := &Table{
		entities:  make([]string, len(keep)),
		periods:   make([]int, len(keep)),
		cols:      make(map[string][]float64, len(t.cols)),
		order:     append([]string(nil), t.order...),
		labels:    make(map[string][]string, len(t.labels)),
		Numerator: t.Numerator,
	}
	for j, i := range keep {
		sub.entities[j] = t.entities[i]
		sub.periods[j] = t.periods[i]
	}
	for name, col := range t.cols {
		c := make([]float64, len(keep))
		for j, i := range keep {
			c[j] = col[i]
		}
		sub.cols[name] = c
	}
	for name, lab := range t.labels {
		l := make([]string, len(keep))
		for j, i := range keep {
			l[j] = lab[i]
		}
		sub.labels[name] = l
	}
	sub.rebuildEntityStarts()
	return sub, nil
}

// rebuildEntityStarts recomputes per-entity block boundaries. Rows must
// already be sorted by (entity, period).
func (t *Table) rebuildEntityStarts() {
	t.entityStart = make([]int, len(t.entities))
	for i := range t.entities {
		if i > 0 && t.entities[i] == t.entities[i-1] {
			t.entityStart[i] = t.entityStart[i-1]
		} else {
			t.entityStart[i] = i
		}
	}
}
