package lutmap_test

import (
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/lutmap6/lutmap"
	"github.com/lutmap6/lutmap/lutmaptest"
)

func TestTopologicalSoundness(t *testing.T) {
	m, _, _, _, _, y := buildAndOr2()
	reg := lutmap.NewRegistry()
	graph, err := lutmap.NewGraphView(m, reg, logrus.New())
	if err != nil {
		t.Fatalf("NewGraphView: %v", err)
	}
	if graph.HasLoop() {
		t.Fatalf("an acyclic netlist must not be reported as looped")
	}

	order := graph.Topo()
	pos := make(map[lutmap.Cell]int, len(order))
	for i, c := range order {
		pos[c] = i
	}
	for _, c := range order {
		ins, err := lutmap.CellInputs(reg, c)
		if err != nil {
			t.Fatalf("CellInputs(%s): %v", c.Name(), err)
		}
		for _, s := range ins {
			if drv := graph.Driver(s); drv != nil && drv.Type().IsPrimitive() {
				if pos[drv] >= pos[c] {
					t.Errorf("gate %s appears before its driver %s in topological order", c.Name(), drv.Name())
				}
			}
		}
	}
	_ = y
}

func TestCombinationalLoopDetected(t *testing.T) {
	m := lutmaptest.NewModule()
	a := m.NextSig()
	b := m.NextSig()
	// a feeds b, b feeds a: a self-sustaining combinational loop with no
	// boundary cell breaking it.
	m.AddGate(lutmap.CellNot, "g1", a, b)
	m.AddGate(lutmap.CellNot, "g2", b, a)

	reg := lutmap.NewRegistry()
	graph, err := lutmap.NewGraphView(m, reg, logrus.New())
	if err != nil {
		t.Fatalf("NewGraphView: %v", err)
	}
	if !graph.HasLoop() {
		t.Errorf("want HasLoop()=true for a two-gate combinational loop")
	}
}
