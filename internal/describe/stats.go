// Package describe computes descriptive statistics and the correlation
// matrix over a prepared panel's regression sample.
package describe

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"panel-lab/internal/panel"
)

// Summary holds per-variable descriptive statistics computed over the
// variable's non-missing values.
type Summary struct {
	Variable string
	Count    int
	Mean     float64
	Std      float64
	Min      float64
	P10      float64
	P25      float64
	Median   float64
	P75      float64
	P90      float64
	Max      float64
}

// Summaries computes one Summary per requested column. Missing values are
// skipped, not imputed; a column with no usable values yields NaN moments
// and Count 0.
func Summaries(table *panel.Table, columns []string) ([]Summary, error) {
	out := make([]Summary, 0, len(columns))
	for _, name := range columns {
		col, ok := table.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", panel.ErrUnknownColumn, name)
		}

		values := make([]float64, 0, len(col))
		for _, v := range col {
			if !math.IsNaN(v) {
				values = append(values, v)
			}
		}

		s := Summary{Variable: name, Count: len(values)}
		if len(values) == 0 {
			s.Mean = math.NaN()
			s.Std = math.NaN()
			s.Min = math.NaN()
			s.P10 = math.NaN()
			s.P25 = math.NaN()
			s.Median = math.NaN()
			s.P75 = math.NaN()
			s.P90 = math.NaN()
			s.Max = math.NaN()
			out = append(out, s)
			continue
		}

		sort.Float64s(values)
		s.Mean = stat.Mean(values, nil)
		s.Std = stat.StdDev(values, nil)
		s.Min = values[0]
		s.Max = values[len(values)-1]
		s.P10 = stat.Quantile(0.10, stat.Empirical, values, nil)
		s.P25 = stat.Quantile(0.25, stat.Empirical, values, nil)
		s.Median = stat.Quantile(0.50, stat.Empirical, values, nil)
		s.P75 = stat.Quantile(0.75, stat.Empirical, values, nil)
		s.P90 = stat.Quantile(0.90, stat.Empirical, values, nil)
		out = append(out, s)
	}
	return out, nil
}

// Correlation is a Pearson correlation matrix over listwise-complete rows.
type Correlation struct {
	Columns []string
	// Matrix[i][j] is the correlation of Columns[i] and Columns[j].
	Matrix [][]float64
	// N is the number of complete rows the matrix was computed over.
	N int
}

// CorrelationMatrix computes pairwise Pearson correlations over the rows
// complete in all requested columns, matching the source study's
// listwise-deletion convention.
func CorrelationMatrix(table *panel.Table, columns []string) (*Correlation, error) {
	sample, err := table.CompleteCases(columns...)
	if err != nil {
		return nil, err
	}

	k := len(columns)
	corr := &Correlation{
		Columns: append([]string(nil), columns...),
		Matrix:  make([][]float64, k),
		N:       sample.NumRows(),
	}

	cols := make([][]float64, k)
	for i, name := range columns {
		c, _ := sample.Column(name)
		cols[i] = c
	}

	for i := 0; i < k; i++ {
		corr.Matrix[i] = make([]float64, k)
		for j := 0; j < k; j++ {
			switch {
			case i == j:
				corr.Matrix[i][j] = 1
			case j < i:
				corr.Matrix[i][j] = corr.Matrix[j][i]
			default:
				corr.Matrix[i][j] = stat.Correlation(cols[i], cols[j], nil)
			}
		}
	}
	return corr, nil
}
