package regress

import (
	"strings"

	"panel-lab/internal/panel"
)

// FixedEffect names an axis of the panel whose category levels absorb an
// intercept each.
type FixedEffect string

// Fixed-effect axes.
const (
	FixedEffectEntity FixedEffect = "entity"
	FixedEffectPeriod FixedEffect = "period"
)

// SEMode selects the covariance estimator for reported standard errors.
type SEMode string

// Standard-error modes.
const (
	// SEPlain assumes i.i.d. residuals.
	SEPlain SEMode = "plain"
	// SEClusterEntity groups residual contributions by entity before
	// forming the sandwich estimator.
	SEClusterEntity SEMode = "cluster_entity"
	// SEClusterGroup clusters by an arbitrary categorical column
	// (e.g. headquarters state).
	SEClusterGroup SEMode = "cluster_group"
)

// Specification is one model to fit: dependent variable, ordered
// regressors, fixed-effect axes, and standard-error mode.
type Specification struct {
	Label        string
	Dependent    string
	Regressors   []string
	FixedEffects []FixedEffect
	SEMode       SEMode
	// ClusterColumn names the categorical column for SEClusterGroup.
	// Ignored for other modes.
	ClusterColumn string
}

// HasFixedEffect reports whether the axis is requested.
func (s *Specification) HasFixedEffect(axis FixedEffect) bool {
	for _, fe := range s.FixedEffects {
		if fe == axis {
			return true
		}
	}
	return false
}

// FixedEffectsString renders the fixed-effect axes for report rows.
func (s *Specification) FixedEffectsString() string {
	var parts []string
	if s.HasFixedEffect(FixedEffectEntity) {
		parts = append(parts, "firm")
	}
	if s.HasFixedEffect(FixedEffectPeriod) {
		parts = append(parts, "year")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// BaselineLadder returns the study's canonical specification progression:
// pooled OLS, then firm controls, then year fixed effects, then two-way
// fixed effects with entity-clustered standard errors, then a second-lag
// robustness model. The ordering is part of the empirical narrative and
// must be preserved in the comparison table.
func BaselineLadder() []Specification {
	return []Specification{
		{
			Label:      "Model 1: Pooled OLS",
			Dependent:  panel.ColROA,
			Regressors: []string{panel.ColAffectedRatioLag1},
			SEMode:     SEPlain,
		},
		{
			Label:      "Model 2: Firm Controls",
			Dependent:  panel.ColROA,
			Regressors: []string{panel.ColAffectedRatioLag1, panel.ColLogAssets, panel.ColLeverage},
			SEMode:     SEPlain,
		},
		{
			Label:        "Model 3: Year FE",
			Dependent:    panel.ColROA,
			Regressors:   []string{panel.ColAffectedRatioLag1, panel.ColLogAssets, panel.ColLeverage},
			FixedEffects: []FixedEffect{FixedEffectPeriod},
			SEMode:       SEPlain,
		},
		{
			Label:        "Model 4: Two-way FE",
			Dependent:    panel.ColROA,
			Regressors:   []string{panel.ColAffectedRatioLag1, panel.ColLogAssets, panel.ColLeverage},
			FixedEffects: []FixedEffect{FixedEffectEntity, FixedEffectPeriod},
			SEMode:       SEClusterEntity,
		},
		{
			Label:        "Robustness: Second Lag",
			Dependent:    panel.ColROA,
			Regressors:   []string{panel.ColAffectedRatioLag2, panel.ColLogAssets, panel.ColLeverage},
			FixedEffects: []FixedEffect{FixedEffectPeriod},
			SEMode:       SEPlain,
		},
	}
}
