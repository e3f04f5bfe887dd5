package lutmap_test

import (
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/lutmap6/lutmap"
)

func TestComputeInitMatchesGateFunction(t *testing.T) {
	m, a, b, c, d, y := buildAndOr2()
	reg := lutmap.NewRegistry()
	graph, err := lutmap.NewGraphView(m, reg, logrus.New())
	if err != nil {
		t.Fatalf("NewGraphView: %v", err)
	}
	truth := lutmap.NewTruthTableEngine(graph, reg)

	inputs := []lutmap.Sig{a, b, c, d}
	init, err := truth.ComputeInit(y, inputs)
	if err != nil {
		t.Fatalf("ComputeInit: %v", err)
	}

	for combo := uint64(0); combo < 16; combo++ {
		av := combo&1 != 0
		bv := combo&2 != 0
		cv := combo&4 != 0
		dv := combo&8 != 0
		want := (av && bv) || (cv && dv)
		got := init&(1<<combo) != 0
		if got != want {
			t.Errorf("combo=%04b: ComputeInit bit=%v, want %v", combo, got, want)
		}
	}
}

func TestIsIndependentOf(t *testing.T) {
	truth := lutmap.NewTruthTableEngine(nil, nil)

	// f(x0, x1) = x0, independent of x1 (index 1).
	var init uint64
	for combo := uint64(0); combo < 4; combo++ {
		if combo&1 != 0 {
			init |= 1 << combo
		}
	}
	if !truth.IsIndependentOf(init, 2, []int{1}) {
		t.Errorf("f(x0,x1)=x0 must be independent of x1")
	}
	if truth.IsIndependentOf(init, 2, []int{0}) {
		t.Errorf("f(x0,x1)=x0 must not be independent of x0")
	}
}

func TestProjectFixesInput(t *testing.T) {
	truth := lutmap.NewTruthTableEngine(nil, nil)

	// f(x0, x1) = x0 AND x1
	var init uint64
	init |= 1 << 3 // combo=11 -> true

	// Fix x1 (index 1) = true: remaining function of x0 alone must be x0.
	proj := truth.Project(init, 2, map[int]bool{1: true})
	if proj != 0b10 {
		t.Errorf("Project(AND, x1=1) = %b, want the identity function on x0 (0b10)", proj)
	}

	// Fix x1 = false: remaining function must be the constant-false function.
	proj = truth.Project(init, 2, map[int]bool{1: false})
	if proj != 0 {
		t.Errorf("Project(AND, x1=0) = %b, want the constant-false function (0)", proj)
	}
}

func TestComputeInitRejectsOversizedInputs(t *testing.T) {
	truth := lutmap.NewTruthTableEngine(nil, nil)
	inputs := make([]lutmap.Sig, lutmap.K+1)
	for i := range inputs {
		inputs[i] = lutmap.Sig{Ref: lutmap.SigRef(i)}
	}
	if _, err := truth.ComputeInit(lutmap.Sig{Ref: 100}, inputs); err == nil {
		t.Errorf("want an error computing a truth table over more than K inputs")
	}
}
