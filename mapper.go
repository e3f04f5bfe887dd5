package lutmap

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/lutmap6/lutmap/internal/cutqueue"
)

// HeuristicWeights tunes computeStructuralScore's four factors. Defaults
// match the values the original structural-score formula hard-coded.
type HeuristicWeights struct {
	InputCountWeight   float64
	DepthPenaltyWeight float64
	AreaFlowWeight     float64
	InputSharingWeight float64
}

// DefaultHeuristicWeights returns the weights computeStructuralScore uses
// unless overridden.
func DefaultHeuristicWeights() HeuristicWeights {
	return HeuristicWeights{
		InputCountWeight:   1.0,
		DepthPenaltyWeight: 10.0,
		AreaFlowWeight:     5.0,
		InputSharingWeight: -2.0,
	}
}

// findMappableDriverMaxSteps bounds find_mappable_driver's transparent-
// buffer walk; exceeding it raises BudgetExceeded instead of looping
// forever on a malformed alias chain.
const findMappableDriverMaxSteps = 100

// candidatePair is one stage-1 dual-output candidate: a worklist entry
// (Z5) paired with the Z input (I5) that would be sacrificed to make room
// for it.
type candidatePair struct {
	z5Output    Sig
	z5Inputs    Cut
	selectedI5  Sig
	zRemaining  Cut
	score       float64
	z5ToZMap    map[int]int
	dontCareIdx []int
}

// GlobalMapper runs one priority-cut-driven mapping pass over a module,
// discovering single-output LUT6 mappings and, when enabled, dual-output
// LUT6D pairings via the two-stage structural-filter-then-truth-table-
// verify search.
type GlobalMapper struct {
	module Module
	graph  *GraphView
	reg    *Registry
	timing *TimingAnalyzer
	ctx    *MappingContext
	cuts   *CutEnumerator
	truth  *TruthTableEngine
	eval   *CostEvaluator
	log    logrus.FieldLogger

	enableDouble bool
	weights      HeuristicWeights

	stage1Candidates int
	stage2Candidates int
}

// NewGlobalMapper wires together the components a pass needs. enableDouble
// turns on the dual-output search; it is normally left off for the depth
// pass and on for every area-flow/exact-area pass.
func NewGlobalMapper(
	m Module, g *GraphView, reg *Registry, timing *TimingAnalyzer, ctx *MappingContext,
	cuts *CutEnumerator, truth *TruthTableEngine, eval *CostEvaluator,
	enableDouble bool, log logrus.FieldLogger,
) *GlobalMapper {
	return &GlobalMapper{
		module: m, graph: g, reg: reg, timing: timing, ctx: ctx,
		cuts: cuts, truth: truth, eval: eval,
		enableDouble: enableDouble, weights: DefaultHeuristicWeights(), log: log,
	}
}

// SetHeuristicWeights overrides computeStructuralScore's factor weights.
func (m *GlobalMapper) SetHeuristicWeights(w HeuristicWeights) { m.weights = w }

// Run performs one complete mapping pass and returns the resulting
// single/double LUT assignments covering every primitive gate output in
// the module.
func (m *GlobalMapper) Run() (MappingResult, error) {
	single := make(map[Sig]SingleCut)
	double := make(map[[2]Sig]DoubleCut)
	m.stage1Candidates, m.stage2Candidates = 0, 0

	sm := m.module.SigMap()

	var allCombOutputs []Sig
	for _, c := range m.graph.Topo() {
		for _, s := range c.Outputs() {
			allCombOutputs = append(allCombOutputs, sm.Canon(s))
			break
		}
	}

	var poSignals []Sig
	for _, w := range m.module.Wires() {
		if !w.IsOutput() {
			continue
		}
		for i := 0; i < w.Width(); i++ {
			poSignals = append(poSignals, sm.Canon(w.Bit(i)))
		}
	}

	less := func(a, b interface{}) bool {
		return m.eval.StrictlyPrefers(a.(SingleCut), b.(SingleCut))
	}
	q := cutqueue.New(less)
	visited := make(map[Sig]bool)
	paired := make(map[Sig]bool)

	for _, po := range poSignals {
		driver, err := m.findMappableDriver(po)
		if err != nil {
			if m.log != nil {
				m.log.WithField("sig", po).Warn("lutmap: find_mappable_driver budget exceeded")
			}
			continue
		}
		if driver == nil {
			continue
		}
		var out Sig
		for _, s := range driver.Outputs() {
			out = sm.Canon(s)
			break
		}
		if visited[out] {
			continue
		}
		q.Push(m.cuts.BestCut(out))
		visited[out] = true
	}

	for _, out := range allCombOutputs {
		if visited[out] {
			continue
		}
		q.Push(m.cuts.BestCut(out))
		visited[out] = true
	}

	for q.Len() > 0 {
		nowCut := q.Pop().(SingleCut)
		now := nowCut.Output
		if paired[now] {
			// now was already claimed as the Z5 half of an earlier
			// double cut; it was still sitting in the worklist under
			// its own single-output entry when that pairing was made.
			continue
		}

		var dc DoubleCut
		useDouble := false
		if m.enableDouble {
			var err error
			dc, err = m.findBestDoubleCut(now, nowCut, q.Items(), paired)
			if err != nil {
				return MappingResult{}, err
			}
			useDouble = dc.Valid()
		}

		var inputsToExpand []Sig
		if useDouble {
			key := [2]Sig{dc.Output1, dc.Output2}
			double[key] = dc
			visited[dc.Output2] = true
			paired[dc.Output2] = true
			inputsToExpand = dc.Inputs.Signals()
		} else {
			single[now] = nowCut
			inputsToExpand = nowCut.Inputs.Signals()
		}

		for _, in := range inputsToExpand {
			if visited[in] {
				continue
			}
			driver := m.graph.Driver(in)
			if driver == nil || !driver.Type().IsPrimitive() {
				continue
			}
			var driverOut Sig
			for _, s := range driver.Outputs() {
				driverOut = sm.Canon(s)
				break
			}
			if driverOut != in {
				continue
			}
			q.Push(m.cuts.BestCut(driverOut))
			visited[driverOut] = true
		}
	}

	for _, out := range allCombOutputs {
		if visited[out] {
			continue
		}
		single[out] = m.cuts.BestCut(out)
		visited[out] = true
	}

	result := MappingResult{
		Single: single,
		Double: double,
		Stats: MappingStats{
			NumSingleLUTs:    len(single),
			NumDoubleLUTs:    len(double),
			TotalLUTs:        len(single) + len(double),
			Stage1Candidates: m.stage1Candidates,
			Stage2Candidates: m.stage2Candidates,
		},
	}
	return result, nil
}

// findMappableDriver returns the primitive gate driving signal. A
// non-primitive transparent single-input driver is walked through to its
// input; any other non-primitive driver (register, memory port) or no
// driver at all yields nil. CellNot, the only transparent type, is itself
// primitive, so an inverter is returned as the driver, not walked
// through. Exceeding findMappableDriverMaxSteps raises BudgetExceeded.
func (m *GlobalMapper) findMappableDriver(signal Sig) (Cell, error) {
	sm := m.module.SigMap()
	cur := sm.Canon(signal)

	for i := 0; i < findMappableDriverMaxSteps; i++ {
		driver := m.graph.Driver(cur)
		if driver == nil {
			return nil, nil
		}
		if driver.Type().IsPrimitive() {
			return driver, nil
		}
		if driver.Type().IsTransparent() {
			ins, err := CellInputs(m.reg, driver)
			if err == nil && len(ins) == 1 {
				cur = sm.Canon(ins[0])
				continue
			}
		}
		return nil, nil
	}
	return nil, newBudgetExceeded("find_mappable_driver: exceeded %d steps from %v", findMappableDriverMaxSteps, signal)
}

// countSuccessors returns the number of primitive-gate readers
// immediately downstream of signal's LUT output. Used only by the cheap
// stage-1 structural score, never by the stage-2 truth-table check that
// actually guards correctness, so an approximate count cannot produce a
// wrong mapping — only a worse-ranked one.
func (m *GlobalMapper) countSuccessors(signal Sig) int {
	n := 0
	for _, reader := range m.graph.Readers(signal) {
		if reader.Type().IsPrimitive() {
			n++
		}
	}
	return n
}

// checkInputCompatibility reports whether z5Inputs is a subset of
// zRemaining, returning the index mapping from z5Inputs' sorted position
// to zRemaining's sorted position, plus the zRemaining indices z5Inputs
// doesn't use (its don't-care positions once Z and Z5 are compared as
// truth tables over the same input vector).
func checkInputCompatibility(zRemaining, z5Inputs Cut) (map[int]int, []int, bool) {
	zVec := zRemaining.Signals()
	z5Vec := z5Inputs.Signals()

	z5ToZ := make(map[int]int, len(z5Vec))
	usedZ := make(map[int]bool, len(z5Vec))
	for i, s5 := range z5Vec {
		found := false
		for j, sz := range zVec {
			if s5 == sz {
				z5ToZ[i] = j
				usedZ[j] = true
				found = true
				break
			}
		}
		if !found {
			return nil, nil, false
		}
	}

	var dontCare []int
	for j := range zVec {
		if !usedZ[j] {
			dontCare = append(dontCare, j)
		}
	}
	return z5ToZ, dontCare, true
}

// computeStructuralScore is the cheap, truth-table-free ranking used to
// shortlist stage-1 candidates before the expensive stage-2 verification.
// Lower is better.
func (m *GlobalMapper) computeStructuralScore(zOutput, z5Output Sig, mergedInputs Cut) float64 {
	score := float64(mergedInputs.Len()) * m.weights.InputCountWeight

	zDepth := m.timing.Depth(zOutput)
	z5Depth := m.timing.Depth(z5Output)
	mergedDepth := m.timing.CutDepth(mergedInputs.Signals()) + 1
	if mergedDepth > zDepth || mergedDepth > z5Depth {
		score += m.weights.DepthPenaltyWeight
	}

	totalSuccessors := m.countSuccessors(zOutput) + m.countSuccessors(z5Output)
	if totalSuccessors < 1 {
		totalSuccessors = 1
	}
	estimatedAreaFlow := float64(mergedInputs.Len()+1) / float64(totalSuccessors)
	score += estimatedAreaFlow * m.weights.AreaFlowWeight

	zCut := m.cuts.BestCut(zOutput)
	z5Cut := m.cuts.BestCut(z5Output)
	shared := 0
	for _, in := range zCut.Inputs.Signals() {
		if z5Cut.Inputs.Contains(in) {
			shared++
		}
	}
	score += float64(shared) * m.weights.InputSharingWeight

	return score
}

// tableMask returns a bitmask covering exactly the 2^numInputs low-order
// bits a truth table over numInputs variables occupies. Truth tables are
// indexed by combo (2^numInputs possible assignments), so the mask's
// bit width is 2^numInputs, not numInputs itself.
func tableMask(numInputs int) uint64 {
	if numInputs <= 0 {
		return 1
	}
	return uint64(1)<<(uint64(1)<<uint(numInputs)) - 1
}

// verifyTruthTableConstraint checks the exact condition a dual-output
// LUT6D pairing requires: Z5's function must equal Z's function with I5
// (zInputVec's last entry) held at 0, once both are expressed over the
// same input vector. I5 being the most-significant input means Z[I5=0]
// is exactly the lower half of Z's truth table. If Z5 uses fewer real
// inputs than that lower half supports, the extra positions must be
// verified as true don't-cares before comparing the projected function;
// otherwise both tables are compared directly.
func (m *GlobalMapper) verifyTruthTableConstraint(
	zInit, z5Init uint64, zNumInputs, z5NumInputs int,
	dontCareIdx []int,
) bool {
	zRemainingInputs := zNumInputs - 1
	zLowerHalf := zInit & tableMask(zRemainingInputs)

	if z5NumInputs < zRemainingInputs {
		if !m.truth.IsIndependentOf(zLowerHalf, zRemainingInputs, dontCareIdx) {
			return false
		}
		fixed := make(map[int]bool, len(dontCareIdx))
		for _, idx := range dontCareIdx {
			fixed[idx] = false
		}
		projected := m.truth.Project(zLowerHalf, zRemainingInputs, fixed)
		mask := tableMask(z5NumInputs)
		return projected&mask == z5Init&mask
	}

	mask := tableMask(zRemainingInputs)
	return zLowerHalf&mask == z5Init&mask
}

// findBestDoubleCut searches the worklist for a signal Z5 that can share
// Z's (now's) physical LUT, via the original's two-stage filter: a cheap
// structural score ranks every structurally-compatible candidate, and
// only the best few are verified exactly against the truth-table
// constraint a real dual-output LUT6D imposes.
func (m *GlobalMapper) findBestDoubleCut(now Sig, nowCut SingleCut, worklist []interface{}, paired map[Sig]bool) (DoubleCut, error) {
	if nowCut.Inputs.Len() < 2 || nowCut.Inputs.Len() > K {
		return DoubleCut{}, nil
	}

	var candidates []candidatePair

	for _, item := range worklist {
		other := item.(SingleCut)
		if other.Output == now {
			continue
		}
		if paired[other.Output] {
			continue // already claimed by an earlier double cut
		}
		if other.Inputs.Contains(other.Output) {
			continue // self-loop
		}
		if other.Inputs.Len() > K-1 {
			continue
		}

		for _, i5 := range nowCut.Inputs.Signals() {
			if other.Inputs.Contains(i5) {
				continue
			}
			zRemaining := nowCut.Inputs.Without(i5)

			z5ToZ, dontCare, ok := checkInputCompatibility(zRemaining, other.Inputs)
			if !ok {
				continue
			}

			merged, err := zRemaining.Union(other.Inputs)
			if err != nil {
				continue
			}
			merged, err = merged.Union(mustCut(i5))
			if err != nil {
				continue
			}
			if merged.Len() > K {
				continue
			}

			score := m.computeStructuralScore(now, other.Output, merged)
			candidates = append(candidates, candidatePair{
				z5Output:    other.Output,
				z5Inputs:    other.Inputs,
				selectedI5:  i5,
				zRemaining:  zRemaining,
				score:       score,
				z5ToZMap:    z5ToZ,
				dontCareIdx: dontCare,
			})
		}
	}

	m.stage1Candidates += len(candidates)
	if len(candidates) == 0 {
		return DoubleCut{}, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score < candidates[j].score
		}
		if candidates[i].z5Output != candidates[j].z5Output {
			return sigLess(candidates[i].z5Output, candidates[j].z5Output)
		}
		return sigLess(candidates[i].selectedI5, candidates[j].selectedI5)
	})

	const maxForVerification = 5
	if len(candidates) > maxForVerification {
		candidates = candidates[:maxForVerification]
	}

	for _, cand := range candidates {
		m.stage2Candidates++

		zInputVec := append(cand.zRemaining.Signals(), cand.selectedI5)
		zInit, err := m.truth.ComputeInit(now, zInputVec)
		if err != nil {
			return DoubleCut{}, err
		}
		z5InputVec := cand.z5Inputs.Signals()
		z5Init, err := m.truth.ComputeInit(cand.z5Output, z5InputVec)
		if err != nil {
			return DoubleCut{}, err
		}

		if !m.verifyTruthTableConstraint(zInit, z5Init, len(zInputVec), len(z5InputVec), cand.dontCareIdx) {
			continue
		}

		merged, err := cand.zRemaining.Union(cand.z5Inputs)
		if err != nil {
			continue
		}
		merged, err = merged.Union(mustCut(cand.selectedI5))
		if err != nil {
			continue
		}

		return DoubleCut{
			Inputs:     merged,
			Output1:    now,
			Output2:    cand.z5Output,
			SelectedI5: cand.selectedI5,
		}, nil
	}

	return DoubleCut{}, nil
}

func mustCut(s Sig) Cut {
	c, _ := NewCut([]Sig{s})
	return c
}
