package lutmap_test

import (
	"testing"

	"github.com/lutmap6/lutmap"
	"github.com/lutmap6/lutmap/lutmaptest"
)

func newEmitter(t *testing.T, m lutmap.Module) (*lutmap.NetlistEmitter, *lutmap.GraphView) {
	t.Helper()
	reg := lutmap.NewRegistry()
	graph, err := lutmap.NewGraphView(m, reg, nil)
	if err != nil {
		t.Fatalf("NewGraphView: %v", err)
	}
	truth := lutmap.NewTruthTableEngine(graph, reg)
	return lutmap.NewNetlistEmitter(m, graph, truth), graph
}

func findCellByType(m *lutmaptest.Module, typ lutmap.CellType) lutmap.Cell {
	for _, c := range m.Cells() {
		if c.Type() == typ {
			return c
		}
	}
	return nil
}

func TestEmitSingleProducesLUT6(t *testing.T) {
	m := lutmaptest.NewModule()
	a := m.AddInputWire("a", 1).Bit(0)
	b := m.AddInputWire("b", 1).Bit(0)
	y := m.NextSig()
	m.AddGate(lutmap.CellAnd, "g1", y, a, b)
	m.AddOutputWire("y", y)

	emitter, _ := newEmitter(t, m)
	cut, _ := lutmap.NewCut([]lutmap.Sig{a, b})
	result := lutmap.MappingResult{
		Single: map[lutmap.Sig]lutmap.SingleCut{y: {Inputs: cut, Output: y}},
		Double: map[[2]lutmap.Sig]lutmap.DoubleCut{},
	}
	if err := emitter.Emit(result); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	lut := findCellByType(m, lutmap.CellLUT6)
	if lut == nil {
		t.Fatalf("want a CellLUT6 cell after Emit, got cells=%v", m.Cells())
	}
	init, ok := lut.Param("INIT")
	if !ok {
		t.Fatalf("LUT6 cell missing INIT param")
	}
	// AND(a,b): true only when combo=0b11=3.
	if init.(uint64) != 1<<3 {
		t.Errorf("INIT = %#x, want %#x for AND(a,b)", init, uint64(1)<<3)
	}
	if lut.Input("I0") != a || lut.Input("I1") != b {
		t.Errorf("I0/I1 = %v/%v, want a/b", lut.Input("I0"), lut.Input("I1"))
	}
	for _, port := range []string{"I2", "I3", "I4", "I5"} {
		if lut.Input(port) != lutmap.ConstZero {
			t.Errorf("%s = %v, want ConstZero for an unused input", port, lut.Input(port))
		}
	}
	if lut.Output("Z") != y {
		t.Errorf("Z = %v, want y", lut.Output("Z"))
	}

	if findCellByType(m, lutmap.CellAnd) != nil {
		t.Errorf("original AND gate must be swept after emission")
	}
}

func TestEmitSingleSkipsTrivialCut(t *testing.T) {
	m := lutmaptest.NewModule()
	a := m.AddInputWire("a", 1).Bit(0)
	m.AddOutputWire("a_out", a)

	emitter, _ := newEmitter(t, m)
	cut, _ := lutmap.NewCut([]lutmap.Sig{a})
	result := lutmap.MappingResult{
		Single: map[lutmap.Sig]lutmap.SingleCut{a: {Inputs: cut, Output: a}},
		Double: map[[2]lutmap.Sig]lutmap.DoubleCut{},
	}
	if err := emitter.Emit(result); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(m.Cells()) != 0 {
		t.Errorf("a trivial {a}->a cut must never be materialized as a LUT, got cells=%v", m.Cells())
	}
}

func TestEmitDoubleProducesLUT6D(t *testing.T) {
	m, x0, x1, z, z5 := buildShannonPairNetlist()
	emitter, _ := newEmitter(t, m)

	merged, _ := lutmap.NewCut([]lutmap.Sig{x0, x1})
	result := lutmap.MappingResult{
		Single: map[lutmap.Sig]lutmap.SingleCut{},
		Double: map[[2]lutmap.Sig]lutmap.DoubleCut{
			{z, z5}: {Inputs: merged, Output1: z, Output2: z5, SelectedI5: x1},
		},
	}
	if err := emitter.Emit(result); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	lut := findCellByType(m, lutmap.CellLUT6D)
	if lut == nil {
		t.Fatalf("want a CellLUT6D cell after Emit, got cells=%v", m.Cells())
	}
	if lut.Input("I5") != x1 {
		t.Errorf("I5 = %v, want the selected i5 (x1)", lut.Input("I5"))
	}
	if lut.Input("I0") != x0 {
		t.Errorf("I0 = %v, want x0", lut.Input("I0"))
	}
	if lut.Output("Z") != z || lut.Output("Z5") != z5 {
		t.Errorf("Z/Z5 = %v/%v, want z/z5", lut.Output("Z"), lut.Output("Z5"))
	}

	init, _ := lut.Param("INIT")
	// z[x1=0] = OR(x0,0) = x0, same as z5; z[x1=1] = OR(x0,1) = 1 always.
	if got := init.(uint64) & 0xFFFFFFFF; got != 0xAAAAAAAA {
		t.Errorf("INIT lower 32 bits = %#x, want 0xAAAAAAAA (z[x1=0], matching z5's table)", got)
	}
	if got := init.(uint64) >> 32; got != 0xFFFFFFFF {
		t.Errorf("INIT upper 32 bits = %#x, want 0xFFFFFFFF (z[x1=1] is the constant function 1)", got)
	}
}

func TestEmitDoubleRejectsBrokenPairing(t *testing.T) {
	m := lutmaptest.NewModule()
	x0 := m.AddInputWire("x0", 1).Bit(0)
	x1 := m.AddInputWire("x1", 1).Bit(0)

	z := m.NextSig()
	m.AddGate(lutmap.CellAnd, "gz", z, x0, x1) // z = x0 AND x1; z[x1=0] = 0

	z5 := m.NextSig()
	m.AddGate(lutmap.CellOr, "gz5", z5, x0, x0) // z5 = x0, not always 0

	m.AddOutputWire("z", z)
	m.AddOutputWire("z5", z5)

	emitter, _ := newEmitter(t, m)
	merged, _ := lutmap.NewCut([]lutmap.Sig{x0, x1})
	result := lutmap.MappingResult{
		Single: map[lutmap.Sig]lutmap.SingleCut{},
		Double: map[[2]lutmap.Sig]lutmap.DoubleCut{
			{z, z5}: {Inputs: merged, Output1: z, Output2: z5, SelectedI5: x1},
		},
	}

	err := emitter.Emit(result)
	if err == nil {
		t.Fatalf("want an error for a pairing where z5 != z[i5=0], got none")
	}
	if _, ok := err.(*lutmap.InvariantViolationError); !ok {
		t.Errorf("err = %T (%v), want *lutmap.InvariantViolationError", err, err)
	}
}
