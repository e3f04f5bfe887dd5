package lutmap

import "math"

// CostMode selects which metric CostEvaluator ranks cuts by. It is a
// tagged value switched at runtime rather than a CostEvaluator-per-mode
// type hierarchy, per the design note against an interface-per-mode
// split: the three modes share all their state (the same TimingAnalyzer
// and MappingContext), only the comparison changes.
type CostMode int

const (
	// CostDepth ranks by minimum depth, tie-broken by area flow. Used for
	// the driver's first pass.
	CostDepth CostMode = iota
	// CostAreaFlow ranks by minimum area flow, tie-broken by depth. Used
	// for the driver's intermediate passes.
	CostAreaFlow
	// CostExactArea ranks by minimum exact area, tie-broken by depth. Used
	// for the driver's final pass.
	CostExactArea
)

// areaFlowEpsilon is the tolerance below which two area-flow values are
// treated as tied and broken by depth instead.
const areaFlowEpsilon = 1e-6

// CostEvaluator computes and compares the three cost metrics spec.md
// defines for a SingleCut, querying TimingAnalyzer and MappingContext for
// the numbers it combines rather than storing any derived data itself —
// so a cut's cost can never go stale as the surrounding mapping changes.
type CostEvaluator struct {
	timing *TimingAnalyzer
	ctx    *MappingContext
	mode   CostMode
}

// NewCostEvaluator returns an evaluator in CostDepth mode.
func NewCostEvaluator(t *TimingAnalyzer, c *MappingContext) *CostEvaluator {
	return &CostEvaluator{timing: t, ctx: c, mode: CostDepth}
}

// SetMode switches the metric StrictlyPrefers ranks by.
func (e *CostEvaluator) SetMode(m CostMode) { e.mode = m }

// Mode returns the currently active metric.
func (e *CostEvaluator) Mode() CostMode { return e.mode }

// Depth returns the cut's depth: max(Depth(input)) + 1.
func (e *CostEvaluator) Depth(sc SingleCut) int {
	return e.timing.CutDepth(sc.Inputs.Signals())
}

// AreaFlow returns (sum of inputs' exact area + 1) / max(1, fanout refs
// of the cut's output) — the LUT's own unit area amortized over how many
// consumers would share it.
func (e *CostEvaluator) AreaFlow(sc SingleCut) float64 {
	area := 0
	for _, in := range sc.Inputs.Signals() {
		area += e.ctx.ExactArea(in)
	}
	refs := e.ctx.FanoutRefs(sc.Output)
	if refs < 1 {
		refs = 1
	}
	return float64(area+1) / float64(refs)
}

// ExactArea returns the memoized exact LUT count to implement the cut's
// output.
func (e *CostEvaluator) ExactArea(sc SingleCut) int {
	return e.ctx.ExactArea(sc.Output)
}

// StrictlyPrefers reports whether a should sort ahead of b under the
// evaluator's current mode.
func (e *CostEvaluator) StrictlyPrefers(a, b SingleCut) bool {
	switch e.mode {
	case CostDepth:
		return e.preferByDepth(a, b)
	case CostAreaFlow:
		return e.preferByAreaFlow(a, b)
	case CostExactArea:
		return e.preferByExactArea(a, b)
	default:
		return false
	}
}

func (e *CostEvaluator) preferByDepth(a, b SingleCut) bool {
	da, db := e.Depth(a), e.Depth(b)
	if da != db {
		return da < db
	}
	return e.AreaFlow(a) < e.AreaFlow(b)
}

func (e *CostEvaluator) preferByAreaFlow(a, b SingleCut) bool {
	afa, afb := e.AreaFlow(a), e.AreaFlow(b)
	if math.Abs(afa-afb) > areaFlowEpsilon {
		return afa < afb
	}
	return e.Depth(a) < e.Depth(b)
}

func (e *CostEvaluator) preferByExactArea(a, b SingleCut) bool {
	aa, ab := e.ExactArea(a), e.ExactArea(b)
	if aa != ab {
		return aa < ab
	}
	return e.Depth(a) < e.Depth(b)
}
