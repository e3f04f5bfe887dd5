package lutmap_test

import (
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/lutmap6/lutmap"
	"github.com/lutmap6/lutmap/lutmaptest"
)

// pipeline bundles the collaborators one GlobalMapper pass needs,
// assembled in the same order MapperDriver.Run assembles them, so tests
// that need to drive GlobalMapper directly (to inspect stage1/stage2
// counts, or to disable dual-output search) don't have to re-derive the
// wiring themselves.
type pipeline struct {
	graph  *lutmap.GraphView
	timing *lutmap.TimingAnalyzer
	ctx    *lutmap.MappingContext
	eval   *lutmap.CostEvaluator
	cuts   *lutmap.CutEnumerator
	truth  *lutmap.TruthTableEngine
	reg    *lutmap.Registry
}

func newPipeline(t *testing.T, m lutmap.Module, mode lutmap.CostMode) *pipeline {
	t.Helper()
	reg := lutmap.NewRegistry()
	graph, err := lutmap.NewGraphView(m, reg, logrus.New())
	if err != nil {
		t.Fatalf("NewGraphView: %v", err)
	}
	timing := lutmap.NewTimingAnalyzer(graph, reg)
	if err := timing.ComputeArrivalTimes(m); err != nil {
		t.Fatalf("ComputeArrivalTimes: %v", err)
	}
	timing.ComputeRequiredTimes(m, timing.CriticalDepth())

	ctx := lutmap.NewMappingContext(m, graph)
	eval := lutmap.NewCostEvaluator(timing, ctx)
	eval.SetMode(mode)

	cuts := lutmap.NewCutEnumerator(graph, reg, eval, 20)
	if err := cuts.ComputePriorityCuts(); err != nil {
		t.Fatalf("ComputePriorityCuts: %v", err)
	}

	truth := lutmap.NewTruthTableEngine(graph, reg)

	return &pipeline{graph: graph, timing: timing, ctx: ctx, eval: eval, cuts: cuts, truth: truth, reg: reg}
}

func (p *pipeline) mapper(m lutmap.Module, enableDouble bool) *lutmap.GlobalMapper {
	return lutmap.NewGlobalMapper(m, p.graph, p.reg, p.timing, p.ctx, p.cuts, p.truth, p.eval, enableDouble, logrus.New())
}

// buildAndOr2 wires a two-level AND/OR cone over four primary inputs:
// y = (a AND b) OR (c AND d). Small enough to hand-check its cuts and
// truth tables, big enough to exercise merging across two gate levels.
func buildAndOr2() (*lutmaptest.Module, lutmap.Sig, lutmap.Sig, lutmap.Sig, lutmap.Sig, lutmap.Sig) {
	m := lutmaptest.NewModule()
	a := m.AddInputWire("a", 1).Bit(0)
	b := m.AddInputWire("b", 1).Bit(0)
	c := m.AddInputWire("c", 1).Bit(0)
	d := m.AddInputWire("d", 1).Bit(0)

	ab := m.NextSig()
	m.AddGate(lutmap.CellAnd, "g1", ab, a, b)
	cd := m.NextSig()
	m.AddGate(lutmap.CellAnd, "g2", cd, c, d)
	y := m.NextSig()
	m.AddGate(lutmap.CellOr, "g3", y, ab, cd)

	m.AddOutputWire("y", y)
	return m, a, b, c, d, y
}
