package lutmap

// TruthTableEngine computes and manipulates LUT INIT truth tables by
// forward-simulating a signal's fan-in cone with a fixed set of input
// assignments, the same cone-simulation approach the original
// ConstEval-based computer uses, but dispatched through this package's
// own per-type gate table (netlist.go) instead of a generic constant
// evaluator.
type TruthTableEngine struct {
	graph *GraphView
	reg   *Registry
}

// NewTruthTableEngine returns an engine bound to g.
func NewTruthTableEngine(g *GraphView, reg *Registry) *TruthTableEngine {
	return &TruthTableEngine{graph: g, reg: reg}
}

// ComputeInit returns output's truth table over the given ordered inputs:
// bit i of the result is output's value when input j is assigned bit j of
// i. Inputs must be a valid cut for output (every combinational path from
// output terminates at one of them, a primary input, or a constant) or
// the simulation will read an unassigned signal as false.
func (e *TruthTableEngine) ComputeInit(output Sig, inputs []Sig) (uint64, error) {
	n := len(inputs)
	if n > K {
		return 0, newInvariantViolation("computeInit: %d inputs exceeds K=%d", n, K)
	}
	boundary := make(map[Sig]bool, n)
	for _, s := range inputs {
		boundary[s] = true
	}

	var init uint64
	combos := uint64(1) << uint(n)
	for combo := uint64(0); combo < combos; combo++ {
		assign := make(map[Sig]bool, n)
		for i, s := range inputs {
			assign[s] = combo&(1<<uint(i)) != 0
		}
		v, err := e.eval(output, assign, boundary, make(map[Sig]bool))
		if err != nil {
			return 0, err
		}
		if v {
			init |= 1 << combo
		}
	}
	return init, nil
}

// eval computes signal's value given a fixed assignment for the cut's
// boundary inputs, walking backward through drivers and stopping at any
// signal named in boundary, a constant, or a signal with no driver (which
// is treated as an unassigned primary input reading false — a
// misconfigured cut, but not this engine's job to detect).
func (e *TruthTableEngine) eval(s Sig, assign map[Sig]bool, boundary map[Sig]bool, visiting map[Sig]bool) (bool, error) {
	if v, ok := assign[s]; ok {
		return v, nil
	}
	if s == ConstZero {
		return false, nil
	}
	if s == ConstOne {
		return true, nil
	}
	if boundary[s] {
		return false, nil
	}
	if visiting[s] {
		return false, newInvariantViolation("computeInit: combinational loop through %v", s)
	}

	driver := e.graph.Driver(s)
	if driver == nil || !driver.Type().IsPrimitive() {
		return false, nil
	}

	visiting[s] = true
	ins, err := CellInputs(e.reg, driver)
	if err != nil {
		return false, wrapCorruptInput(err, "computeInit: cell %s", driver.Name())
	}
	vals := make([]bool, len(ins))
	for i, in := range ins {
		v, err := e.eval(in, assign, boundary, visiting)
		if err != nil {
			return false, err
		}
		vals[i] = v
	}
	visiting[s] = false

	out, err := Eval(driver.Type(), vals)
	if err != nil {
		return false, wrapCorruptInput(err, "computeInit: cell %s", driver.Name())
	}
	return out, nil
}

// IsIndependentOf reports whether init, a truth table over numInputs
// inputs, is unaffected by flipping any of the given input indices —
// i.e. those inputs are true don't-cares and can be dropped from the
// function's support.
func (e *TruthTableEngine) IsIndependentOf(init uint64, numInputs int, dontCare []int) bool {
	if len(dontCare) == 0 {
		return true
	}
	size := uint64(1) << uint(numInputs)
	for combo := uint64(0); combo < size; combo++ {
		for _, idx := range dontCare {
			flipped := combo ^ (1 << uint(idx))
			if flipped < combo {
				continue
			}
			if bitOf(init, combo) != bitOf(init, flipped) {
				return false
			}
		}
	}
	return true
}

// Project collapses init from numInputs down to numInputs-len(fixed) by
// holding the inputs named in fixed at the given constant values and
// re-indexing the remaining inputs contiguously, preserving their
// relative order.
func (e *TruthTableEngine) Project(init uint64, numInputs int, fixed map[int]bool) uint64 {
	remaining := numInputs - len(fixed)
	size := uint64(1) << uint(remaining)

	var out uint64
	for proj := uint64(0); proj < size; proj++ {
		var full uint64
		projBit := 0
		for i := 0; i < numInputs; i++ {
			if v, ok := fixed[i]; ok {
				if v {
					full |= 1 << uint(i)
				}
				continue
			}
			if proj&(1<<uint(projBit)) != 0 {
				full |= 1 << uint(i)
			}
			projBit++
		}
		if bitOf(init, full) {
			out |= 1 << proj
		}
	}
	return out
}

func bitOf(init uint64, combo uint64) bool { return init&(1<<combo) != 0 }
