package lutmap

import "math"

// gateDelay is the fixed unit-delay model every primitive gate and every
// emitted LUT uses; see Non-goals (no real delay model).
const gateDelay = 1.0

// TimingAnalyzer computes arrival and required times over a GraphView's
// topological order. It is the single source of truth for depth: other
// components always query depth through it rather than recomputing it.
type TimingAnalyzer struct {
	graph *GraphView
	reg   *Registry
	sm    *SigMap

	arrival  map[Sig]float64
	required map[Sig]float64
	critical int
}

// NewTimingAnalyzer returns an analyzer bound to g. ComputeArrivalTimes
// must be called before any query method.
func NewTimingAnalyzer(g *GraphView, reg *Registry) *TimingAnalyzer {
	return &TimingAnalyzer{graph: g, reg: reg}
}

// ComputeArrivalTimes runs the forward pass: primary inputs and constants
// get arrival time 0, every other signal gets max(arrival(inputs)) +
// gateDelay, visited in topological order. Sets CriticalDepth as a
// byproduct.
func (t *TimingAnalyzer) ComputeArrivalTimes(m Module) error {
	t.arrival = make(map[Sig]float64)
	t.sm = m.SigMap()
	sm := t.sm

	for _, w := range m.Wires() {
		if !w.IsInput() {
			continue
		}
		for i := 0; i < w.Width(); i++ {
			t.arrival[sm.Canon(w.Bit(i))] = 0
		}
	}
	t.arrival[ConstZero] = 0
	t.arrival[ConstOne] = 0

	t.critical = 0
	for _, c := range t.graph.Topo() {
		ins, err := CellInputs(t.reg, c)
		if err != nil {
			return wrapCorruptInput(err, "timing: arrival pass")
		}
		var maxIn float64
		for _, s := range ins {
			if at, ok := t.arrival[sm.Canon(s)]; ok && at > maxIn {
				maxIn = at
			}
		}
		at := maxIn + gateDelay
		for _, s := range c.Outputs() {
			t.arrival[sm.Canon(s)] = at
		}
		if d := int(math.Ceil(at)); d > t.critical {
			t.critical = d
		}
	}
	return nil
}

// ComputeRequiredTimes runs the backward pass from targetDepth (normally
// CriticalDepth()): primary outputs get required time targetDepth, and
// every signal feeding a gate takes the minimum of (required(output) -
// gateDelay) over every gate it feeds. ComputeArrivalTimes must have run
// first so the graph's topo/rtopo order and sigmap are populated.
func (t *TimingAnalyzer) ComputeRequiredTimes(m Module, targetDepth int) {
	t.required = make(map[Sig]float64)
	sm := m.SigMap()

	for _, w := range m.Wires() {
		if !w.IsOutput() {
			continue
		}
		for i := 0; i < w.Width(); i++ {
			t.required[sm.Canon(w.Bit(i))] = float64(targetDepth)
		}
	}

	for _, c := range t.graph.RTopo() {
		var out Sig
		for _, s := range c.Outputs() {
			out = sm.Canon(s)
			break
		}
		rt, ok := t.required[out]
		if !ok {
			continue
		}
		ins, err := CellInputs(t.reg, c)
		if err != nil {
			continue
		}
		for _, s := range ins {
			cs := sm.Canon(s)
			inRT := rt - gateDelay
			if cur, ok := t.required[cs]; ok {
				if inRT < cur {
					t.required[cs] = inRT
				}
			} else {
				t.required[cs] = inRT
			}
		}
	}
}

// Depth returns the integer depth of s: ceil(arrival time), 0 for a
// primary input or constant.
func (t *TimingAnalyzer) Depth(s Sig) int {
	at, ok := t.arrival[t.sm.Canon(s)]
	if !ok {
		return 0
	}
	return int(math.Ceil(at))
}

// CutDepth returns the depth a LUT covering the given cut inputs would
// have: max(Depth(input)) + 1.
func (t *TimingAnalyzer) CutDepth(inputs []Sig) int {
	max := 0
	for _, s := range inputs {
		if d := t.Depth(s); d > max {
			max = d
		}
	}
	return max + 1
}

// ArrivalTime returns the precise (pre-ceil) arrival time of s.
func (t *TimingAnalyzer) ArrivalTime(s Sig) float64 { return t.arrival[t.sm.Canon(s)] }

// RequiredTime returns the required time of s, defaulting to
// CriticalDepth for a signal outside any primary output's fan-in cone.
func (t *TimingAnalyzer) RequiredTime(s Sig) float64 {
	if rt, ok := t.required[t.sm.Canon(s)]; ok {
		return rt
	}
	return float64(t.critical)
}

// Slack returns RequiredTime(s) - ArrivalTime(s).
func (t *TimingAnalyzer) Slack(s Sig) float64 { return t.RequiredTime(s) - t.ArrivalTime(s) }

// CriticalDepth returns the circuit's overall depth, computed as a
// byproduct of ComputeArrivalTimes.
func (t *TimingAnalyzer) CriticalDepth() int { return t.critical }
