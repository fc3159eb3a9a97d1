// Package regress fits ordinary-least-squares and fixed-effects
// specifications over a prepared panel and reports coefficients with
// uncertainty. Entity fixed effects are estimated either with indicator
// columns or with within-entity demeaning; the two are numerically
// equivalent and the cheaper one is chosen per call by entity cardinality.
package regress

import (
	"math"

	"panel-lab/internal/panel"
)

// Fit estimates one specification over the prepared panel. The regression
// sample is the subset of rows with no missing value among the dependent
// variable and the regressors; fixed-effect and cluster columns never
// shrink the sample.
func Fit(table *panel.Table, spec Specification) (*FitResult, error) {
	sample, err := buildSample(table, &spec)
	if err != nil {
		return nil, err
	}
	method := chooseMethod(sample, &spec)
	return fitSample(sample, &spec, method)
}

// buildSample validates the specification's columns and restricts the
// table to complete cases of the dependent variable and regressors.
func buildSample(table *panel.Table, spec *Specification) (*panel.Table, error) {
	required := append([]string{spec.Dependent}, spec.Regressors...)
	for _, name := range required {
		if _, ok := table.Column(name); !ok {
			return nil, &ConfigurationError{Label: spec.Label, Column: name}
		}
	}
	if spec.SEMode == SEClusterGroup {
		if _, ok := table.Label(spec.ClusterColumn); !ok {
			return nil, &ConfigurationError{Label: spec.Label, Column: spec.ClusterColumn}
		}
	}
	return table.CompleteCases(required...)
}

// chooseMethod picks the estimation strategy. Demeaning is preferred when
// entity fixed effects are requested and entity cardinality exceeds the
// square root of the sample size; below that, indicator columns cost
// nothing and keep the intercept identified.
func chooseMethod(sample *panel.Table, spec *Specification) string {
	if !spec.HasFixedEffect(FixedEffectEntity) {
		return methodDummy
	}
	if float64(sample.EntityCount()) > math.Sqrt(float64(sample.NumRows())) {
		return methodWithin
	}
	return methodDummy
}

// fitSample assembles the design matrix and solves it with the given
// estimation strategy.
func fitSample(sample *panel.Table, spec *Specification, method string) (*FitResult, error) {
	d, err := buildDesign(sample, spec, method)
	if err != nil {
		return nil, err
	}
	return solve(d, spec, method)
}

// RunBatch fits every specification in order. A failure local to one
// specification does not abort the rest: the failed position carries a
// result record with Err set, so the comparison table can show a failure
// marker row instead of silently omitting it.
func RunBatch(table *panel.Table, specs []Specification) []*FitResult {
	results := make([]*FitResult, len(specs))
	for i := range specs {
		res, err := Fit(table, specs[i])
		if err != nil {
			res = &FitResult{Spec: specs[i], Err: err}
		}
		results[i] = res
	}
	return results
}
