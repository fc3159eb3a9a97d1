package regress

import (
	"fmt"
	"strings"
)

// ConfigurationError marks a specification that references a column the
// prepared panel does not have. It is fatal to that specification only.
type ConfigurationError struct {
	Label  string // specification label
	Column string // missing column
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("specification %q: column %q not present in panel", e.Label, e.Column)
}

// RankDeficiencyError marks a design matrix that is singular or
// under-determined. The fit is rejected instead of returning degenerate
// coefficients. Columns lists implicated design columns when the cause
// could be determined.
type RankDeficiencyError struct {
	Label   string
	N       int // observations in the regression sample
	Params  int // parameters the specification tried to estimate
	Columns []string
}

func (e *RankDeficiencyError) Error() string {
	msg := fmt.Sprintf("specification %q: design matrix rank deficient (n=%d, params=%d)",
		e.Label, e.N, e.Params)
	if len(e.Columns) > 0 {
		msg += ": implicated columns " + strings.Join(e.Columns, ", ")
	}
	return msg
}
