package lutmap_test

import (
	"testing"

	"github.com/lutmap6/lutmap"
)

func TestComputePriorityCutsIncludesWholeConeCut(t *testing.T) {
	m, a, b, c, d, y := buildAndOr2()
	p := newPipeline(t, m, lutmap.CostDepth)

	cuts := p.cuts.PriorityCuts(y)
	if len(cuts) == 0 {
		t.Fatalf("y must have at least one priority cut")
	}

	full, _ := lutmap.NewCut([]lutmap.Sig{a, b, c, d})
	found := false
	for _, sc := range cuts {
		if sc.Inputs == full {
			found = true
		}
	}
	if !found {
		t.Errorf("the 4-input cut covering y's whole cone must be among its priority cuts, got %v", cuts)
	}
}

func TestBestCutPrefersShallowerUnderDepthMode(t *testing.T) {
	m, _, _, _, _, y := buildAndOr2()
	p := newPipeline(t, m, lutmap.CostDepth)

	best := p.cuts.BestCut(y)
	if p.eval.Depth(best) != 1 {
		t.Errorf("under CostDepth, BestCut(y) must pick the single-LUT cut of depth 1, got depth %d (%d inputs)",
			p.eval.Depth(best), best.Inputs.Len())
	}
}

func TestBestCutTrivialFallback(t *testing.T) {
	m, a, _, _, _, _ := buildAndOr2()
	p := newPipeline(t, m, lutmap.CostDepth)

	best := p.cuts.BestCut(a)
	if best.Inputs.Len() != 1 || !best.Inputs.Contains(a) {
		t.Errorf("BestCut on a primary input must be its own trivial cut, got %v", best.Inputs.Signals())
	}
}

func TestCutCountRespectsMaxCuts(t *testing.T) {
	m, _, _, _, _, y := buildAndOr2()
	reg := lutmap.NewRegistry()
	graph, err := lutmap.NewGraphView(m, reg, nil)
	if err != nil {
		t.Fatalf("NewGraphView: %v", err)
	}
	timing := lutmap.NewTimingAnalyzer(graph, reg)
	if err := timing.ComputeArrivalTimes(m); err != nil {
		t.Fatalf("ComputeArrivalTimes: %v", err)
	}
	ctx := lutmap.NewMappingContext(m, graph)
	eval := lutmap.NewCostEvaluator(timing, ctx)

	cuts := lutmap.NewCutEnumerator(graph, reg, eval, 1)
	if err := cuts.ComputePriorityCuts(); err != nil {
		t.Fatalf("ComputePriorityCuts: %v", err)
	}
	if got := len(cuts.PriorityCuts(y)); got > 1 {
		t.Errorf("PriorityCuts(y) returned %d cuts, want at most maxCuts=1", got)
	}
}
