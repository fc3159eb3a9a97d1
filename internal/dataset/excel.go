package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"panel-lab/internal/domain"
)

// LoadXLSX reads observations from the first sheet of an XLSX workbook.
// The sheet layout matches the CSV format: a header row followed by one
// row per firm-year.
func LoadXLSX(path string) ([]*domain.Observation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrSourceUnavailable, path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", ErrSourceUnavailable, path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %s of %s: %v", ErrSourceUnavailable, sheets[0], path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s sheet %s is empty", ErrSourceUnavailable, path, sheets[0])
	}

	idx, err := buildColumnIndex(rows[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
	}

	var observations []*domain.Observation
	for i, record := range rows[1:] {
		if isEmptyRow(record) {
			continue
		}
		obs, err := parseRecord(record, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", i+2, path, err)
		}
		observations = append(observations, obs)
	}

	return observations, nil
}

func isEmptyRow(record []string) bool {
	for _, cell := range record {
		if cell != "" {
			return false
		}
	}
	return true
}
