// Package dataset loads raw firm-year observations from tabular files.
// Column headers follow the study's vocabulary (PERMNO, YEAR,
// AFFECTED_RATIO, ...); missing cells become NaN and drop out later at
// the regression-sample filtering stage.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"panel-lab/internal/domain"
)

// ErrSourceUnavailable marks an input table that cannot be obtained at
// all. No partial result is meaningful; the whole run aborts.
var ErrSourceUnavailable = errors.New("observation source unavailable")

// Recognized column headers, matched case-insensitively.
const (
	headerEntity        = "PERMNO"
	headerPeriod        = "YEAR"
	headerAffectedRatio = "AFFECTED_RATIO"
	headerTotalAssets   = "TOTAL_ASSETS"
	headerNetIncome     = "NET_INCOME"
	headerTotalDebt     = "TOTAL_DEBT"
	headerOIBDP         = "OIBDP"
	headerDepreciation  = "DEPRECIATION"
	headerState         = "STATE"
)

// columnIndex maps recognized headers to their position in the file.
type columnIndex map[string]int

func buildColumnIndex(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		idx[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{headerEntity, headerPeriod} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("missing required column %s", required)
		}
	}
	return idx, nil
}

// LoadCSV reads observations from a CSV file with a header row.
func LoadCSV(path string) ([]*domain.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrSourceUnavailable, path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header of %s: %v", ErrSourceUnavailable, path, err)
	}
	idx, err := buildColumnIndex(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
	}

	var observations []*domain.Observation
	row := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d of %s: %w", row+1, path, err)
		}
		row++

		obs, err := parseRecord(record, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", row, path, err)
		}
		observations = append(observations, obs)
	}

	return observations, nil
}

// parseRecord builds one observation from a row of string cells.
func parseRecord(record []string, idx columnIndex) (*domain.Observation, error) {
	cell := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	entity := cell(headerEntity)
	if entity == "" {
		return nil, fmt.Errorf("empty %s", headerEntity)
	}

	period, err := strconv.Atoi(cell(headerPeriod))
	if err != nil {
		return nil, fmt.Errorf("parse %s %q: %w", headerPeriod, cell(headerPeriod), err)
	}

	obs := &domain.Observation{
		EntityID:      entity,
		Period:        period,
		AffectedRatio: parseFloatCell(cell(headerAffectedRatio)),
		TotalAssets:   parseFloatCell(cell(headerTotalAssets)),
		NetIncome:     parseFloatCell(cell(headerNetIncome)),
		TotalDebt:     parseFloatCell(cell(headerTotalDebt)),
		State:         cell(headerState),
	}

	if _, ok := idx[headerOIBDP]; ok {
		if v := parseFloatCell(cell(headerOIBDP)); !math.IsNaN(v) {
			obs.OperatingIncome = &v
		}
	}
	if _, ok := idx[headerDepreciation]; ok {
		if v := parseFloatCell(cell(headerDepreciation)); !math.IsNaN(v) {
			obs.Depreciation = &v
		}
	}

	return obs, nil
}

// parseFloatCell turns an empty or unparseable cell into NaN; missingness
// propagates instead of failing the load.
func parseFloatCell(s string) float64 {
	if s == "" || strings.EqualFold(s, "NA") || strings.EqualFold(s, "NaN") {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
