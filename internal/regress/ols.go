package regress

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"panel-lab/internal/panel"
)

// Coefficient is the reported estimate for one design column.
type Coefficient struct {
	Name     string
	Estimate float64
	StdErr   float64
	TStat    float64
	PValue   float64
	CILower  float64
	CIUpper  float64
}

// FitResult holds one fitted specification. A failed fit keeps its result
// record with Err set so batches stay order-complete.
type FitResult struct {
	Spec   Specification
	Method string // "dummy" or "within"

	// Coefficients covers the intercept (dummy estimation only) and the
	// requested regressors. Fixed-effect dummy estimates are not reported.
	Coefficients []Coefficient

	R2          float64
	AdjR2       float64
	N           int
	EntityCount int
	DOF         int

	Err error
}

// Coefficient returns the named coefficient if present.
func (r *FitResult) Coefficient(name string) (Coefficient, bool) {
	for _, c := range r.Coefficients {
		if c.Name == name {
			return c, true
		}
	}
	return Coefficient{}, false
}

// interceptName labels the constant term in dummy estimation.
const interceptName = "CONST"

// design holds the assembled estimation problem.
type design struct {
	y        []float64 // possibly demeaned
	yRaw     []float64 // original dependent values for TSS
	x        *mat.Dense
	names    []string // design column names, aligned with x
	reported int      // first `reported` columns are reported coefficients
	clusters []string // cluster id per row, nil for plain SEs
	absorbed int      // entity effects absorbed by demeaning
	entities int      // distinct entities in the sample
}

// estimation strategies; Fit picks one by entity cardinality.
const (
	methodDummy  = "dummy"
	methodWithin = "within"
)

// buildDesign assembles y and X from the regression sample. The sample
// must already be restricted to complete cases of the required columns.
func buildDesign(sample *panel.Table, spec *Specification, method string) (*design, error) {
	n := sample.NumRows()

	yCol, ok := sample.Column(spec.Dependent)
	if !ok {
		return nil, &ConfigurationError{Label: spec.Label, Column: spec.Dependent}
	}
	y := append([]float64(nil), yCol...)

	var names []string
	var cols [][]float64

	if method == methodDummy {
		intercept := make([]float64, n)
		for i := range intercept {
			intercept[i] = 1
		}
		names = append(names, interceptName)
		cols = append(cols, intercept)
	}

	for _, reg := range spec.Regressors {
		c, ok := sample.Column(reg)
		if !ok {
			return nil, &ConfigurationError{Label: spec.Label, Column: reg}
		}
		names = append(names, reg)
		cols = append(cols, append([]float64(nil), c...))
	}
	reported := len(names)

	if method == methodDummy && spec.HasFixedEffect(FixedEffectEntity) {
		dummyNames, dummyCols := entityDummies(sample)
		names = append(names, dummyNames...)
		cols = append(cols, dummyCols...)
	}
	if spec.HasFixedEffect(FixedEffectPeriod) {
		dummyNames, dummyCols := periodDummies(sample)
		names = append(names, dummyNames...)
		cols = append(cols, dummyCols...)
	}

	d := &design{
		y:        y,
		yRaw:     append([]float64(nil), y...),
		names:    names,
		reported: reported,
		entities: sample.EntityCount(),
	}

	if method == methodWithin {
		// Within-entity demeaning absorbs one intercept per entity;
		// every remaining column is demeaned the same way, which keeps
		// the estimator numerically equivalent to dummy estimation.
		demeanByGroup(d.y, sample.EntityIDs())
		for _, c := range cols {
			demeanByGroup(c, sample.EntityIDs())
		}
		d.absorbed = d.entities
	}

	flat := make([]float64, n*len(cols))
	for i := 0; i < n; i++ {
		for j, c := range cols {
			flat[i*len(cols)+j] = c[i]
		}
	}
	d.x = mat.NewDense(n, len(cols), flat)

	clusters, err := clusterLabels(sample, spec)
	if err != nil {
		return nil, err
	}
	d.clusters = clusters

	return d, nil
}

// entityDummies builds one indicator column per entity level, dropping
// the first level as reference.
func entityDummies(sample *panel.Table) ([]string, [][]float64) {
	ids := sample.EntityIDs()
	levels := distinctStrings(ids)
	names := make([]string, 0, len(levels)-1)
	cols := make([][]float64, 0, len(levels)-1)
	for _, level := range levels[1:] {
		c := make([]float64, len(ids))
		for i, id := range ids {
			if id == level {
				c[i] = 1
			}
		}
		names = append(names, "FIRM_"+level)
		cols = append(cols, c)
	}
	return names, cols
}

// periodDummies builds one indicator column per period level, dropping
// the first level as reference.
func periodDummies(sample *panel.Table) ([]string, [][]float64) {
	periods := sample.Periods()
	levels := distinctInts(periods)
	names := make([]string, 0, len(levels)-1)
	cols := make([][]float64, 0, len(levels)-1)
	for _, level := range levels[1:] {
		c := make([]float64, len(periods))
		for i, p := range periods {
			if p == level {
				c[i] = 1
			}
		}
		names = append(names, fmt.Sprintf("YEAR_%d", level))
		cols = append(cols, c)
	}
	return names, cols
}

// clusterLabels resolves the cluster id of every sample row, or nil for
// plain standard errors.
func clusterLabels(sample *panel.Table, spec *Specification) ([]string, error) {
	switch spec.SEMode {
	case SEPlain, "":
		return nil, nil
	case SEClusterEntity:
		return sample.EntityIDs(), nil
	case SEClusterGroup:
		labels, ok := sample.Label(spec.ClusterColumn)
		if !ok {
			return nil, &ConfigurationError{Label: spec.Label, Column: spec.ClusterColumn}
		}
		for i, l := range labels {
			if l == "" {
				return nil, fmt.Errorf("specification %q: row %d has empty %s cluster label",
					spec.Label, i, spec.ClusterColumn)
			}
		}
		return labels, nil
	default:
		return nil, fmt.Errorf("specification %q: unknown SE mode %q", spec.Label, spec.SEMode)
	}
}

// solve runs the least-squares estimation over an assembled design.
func solve(d *design, spec *Specification, method string) (*FitResult, error) {
	n, p := d.x.Dims()
	dof := n - p - d.absorbed

	if n == 0 || dof <= 0 {
		return nil, &RankDeficiencyError{
			Label:  spec.Label,
			N:      n,
			Params: p + d.absorbed,
		}
	}

	// Normal equations with a Cholesky factorization: failure to
	// factorize is the rank-deficiency signal.
	xtx := gram(d.x)
	var chol mat.Cholesky
	if ok := chol.Factorize(xtx); !ok {
		return nil, &RankDeficiencyError{
			Label:   spec.Label,
			N:       n,
			Params:  p + d.absorbed,
			Columns: suspectColumns(d),
		}
	}

	yVec := mat.NewVecDense(n, d.y)
	xty := mat.NewVecDense(p, nil)
	xty.MulVec(d.x.T(), yVec)

	beta := mat.NewVecDense(p, nil)
	if err := chol.SolveVecTo(beta, xty); err != nil {
		return nil, &RankDeficiencyError{
			Label:   spec.Label,
			N:       n,
			Params:  p + d.absorbed,
			Columns: suspectColumns(d),
		}
	}

	// Residuals and fit statistics. RSS is identical across dummy and
	// within estimation; TSS uses the raw dependent variable so R2 is too.
	fitted := mat.NewVecDense(n, nil)
	fitted.MulVec(d.x, beta)
	rss := 0.0
	residuals := make([]float64, n)
	for i := 0; i < n; i++ {
		residuals[i] = d.y[i] - fitted.AtVec(i)
		rss += residuals[i] * residuals[i]
	}

	meanY := 0.0
	for _, v := range d.yRaw {
		meanY += v
	}
	meanY /= float64(n)
	tss := 0.0
	for _, v := range d.yRaw {
		tss += (v - meanY) * (v - meanY)
	}
	r2 := math.NaN()
	if tss > 0 {
		r2 = 1 - rss/tss
	}
	adjR2 := math.NaN()
	if tss > 0 {
		adjR2 = 1 - (1-r2)*float64(n-1)/float64(dof)
	}

	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, &RankDeficiencyError{
			Label:  spec.Label,
			N:      n,
			Params: p + d.absorbed,
		}
	}

	cov, err := covariance(d, &inv, residuals, rss, dof, spec)
	if err != nil {
		return nil, err
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(dof)}
	tCrit := tDist.Quantile(0.975)

	coeffs := make([]Coefficient, d.reported)
	for j := 0; j < d.reported; j++ {
		est := beta.AtVec(j)
		se := math.Sqrt(cov.At(j, j))
		t := est / se
		coeffs[j] = Coefficient{
			Name:     d.names[j],
			Estimate: est,
			StdErr:   se,
			TStat:    t,
			PValue:   2 * tDist.CDF(-math.Abs(t)),
			CILower:  est - tCrit*se,
			CIUpper:  est + tCrit*se,
		}
	}

	return &FitResult{
		Spec:         *spec,
		Method:       method,
		Coefficients: coeffs,
		R2:           r2,
		AdjR2:        adjR2,
		N:            n,
		EntityCount:  d.entities,
		DOF:          dof,
	}, nil
}

// covariance computes the coefficient covariance matrix: homoskedastic
// for plain SEs, a cluster-robust sandwich otherwise. The cluster
// correction uses the CR1 finite-sample factor with the parameter count
// including absorbed effects, which keeps dummy and within estimation in
// agreement.
func covariance(d *design, inv *mat.SymDense, residuals []float64, rss float64, dof int, spec *Specification) (mat.Matrix, error) {
	n, p := d.x.Dims()

	if d.clusters == nil {
		sigma2 := rss / float64(dof)
		cov := mat.NewDense(p, p, nil)
		cov.Scale(sigma2, inv)
		return cov, nil
	}

	// Score sums per cluster: s_g = sum_{i in g} u_i * x_i.
	scores := make(map[string][]float64)
	for i := 0; i < n; i++ {
		g := d.clusters[i]
		s := scores[g]
		if s == nil {
			s = make([]float64, p)
			scores[g] = s
		}
		for j := 0; j < p; j++ {
			s[j] += residuals[i] * d.x.At(i, j)
		}
	}

	nClusters := len(scores)
	if nClusters < 2 {
		return nil, fmt.Errorf("specification %q: clustered standard errors need at least 2 clusters, got %d",
			spec.Label, nClusters)
	}

	meat := mat.NewDense(p, p, nil)
	for _, s := range scores {
		sv := mat.NewVecDense(p, s)
		var outer mat.Dense
		outer.Outer(1, sv, sv)
		meat.Add(meat, &outer)
	}

	correction := float64(nClusters) / float64(nClusters-1) *
		float64(n-1) / float64(dof)

	cov := mat.NewDense(p, p, nil)
	cov.Product(inv, meat, inv)
	cov.Scale(correction, cov)
	return cov, nil
}

// gram computes X'X as a symmetric matrix.
func gram(x *mat.Dense) *mat.SymDense {
	_, p := x.Dims()
	var prod mat.Dense
	prod.Mul(x.T(), x)
	sym := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			sym.SetSym(i, j, prod.At(i, j))
		}
	}
	return sym
}

// suspectColumns reports design columns likely to cause the deficiency:
// (near-)constant columns and exact duplicates.
func suspectColumns(d *design) []string {
	n, p := d.x.Dims()
	const tol = 1e-12

	var suspects []string
	seen := make(map[string]struct{})
	add := func(name string) {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			suspects = append(suspects, name)
		}
	}

	for j := 0; j < p; j++ {
		if d.names[j] == interceptName {
			continue
		}
		min, max := d.x.At(0, j), d.x.At(0, j)
		for i := 1; i < n; i++ {
			v := d.x.At(i, j)
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		if max-min < tol {
			add(d.names[j])
		}
	}

	for a := 0; a < p; a++ {
		for b := a + 1; b < p; b++ {
			same := true
			for i := 0; i < n; i++ {
				if math.Abs(d.x.At(i, a)-d.x.At(i, b)) > tol {
					same = false
					break
				}
			}
			if same {
				add(d.names[a])
				add(d.names[b])
			}
		}
	}

	return suspects
}

// demeanByGroup subtracts the group mean from every value in place.
// Groups are identified by the aligned key slice.
func demeanByGroup(values []float64, keys []string) {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i, v := range values {
		sums[keys[i]] += v
		counts[keys[i]]++
	}
	for i := range values {
		values[i] -= sums[keys[i]] / float64(counts[keys[i]])
	}
}

func distinctStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func distinctInts(values []int) []int {
	seen := make(map[int]struct{}, len(values))
	var out []int
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}
