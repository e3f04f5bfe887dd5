package lutmap

import "github.com/sirupsen/logrus"

// GraphView is a read-only index over a Module's primitive-gate fan-in/
// fan-out structure, plus a topological order over those gates. Boundary
// cells (registers, IO, memories) are tracked as drivers/readers too, so
// their outputs resolve as graph leaves instead of vanishing from lookups,
// but they never appear in the topological order itself: only primitive
// combinational gates do.
//
// MapperDriver builds it once per run and shares it across all passes. It
// does not track mutations: Rebuild re-indexes the module from scratch on
// demand, mirroring the original graph index's own rebuild-on-demand
// rather than incremental-update design.
type GraphView struct {
	module *Module
	reg    *Registry
	log    logrus.FieldLogger

	driver  map[Sig]Cell
	readers map[Sig][]Cell

	topoOrder []Cell
	hasLoop   bool
}

// NewGraphView indexes m's cells. reg classifies cell types; log receives
// a warning if the netlist contains a combinational loop.
func NewGraphView(m Module, reg *Registry, log logrus.FieldLogger) (*GraphView, error) {
	g := &GraphView{module: &m, reg: reg, log: log}
	if err := g.Rebuild(); err != nil {
		return nil, err
	}
	return g, nil
}

// Rebuild re-indexes the module from scratch. Call after NetlistEmitter
// removes or adds cells; a GraphView does not track mutations itself.
func (g *GraphView) Rebuild() error {
	m := *g.module
	g.driver = make(map[Sig]Cell)
	g.readers = make(map[Sig][]Cell)

	sm := m.SigMap()
	for _, c := range m.Cells() {
		for _, s := range c.Outputs() {
			g.driver[sm.Canon(s)] = c
		}
		if c.Type().IsPrimitive() {
			ins, err := CellInputs(g.reg, c)
			if err != nil {
				return wrapCorruptInput(err, "graph: indexing cell %s", c.Name())
			}
			for _, s := range ins {
				cs := sm.Canon(s)
				g.readers[cs] = append(g.readers[cs], c)
			}
		} else {
			for _, s := range c.Inputs() {
				cs := sm.Canon(s)
				g.readers[cs] = append(g.readers[cs], c)
			}
		}
	}
	return g.computeTopoOrder()
}

// Driver returns the cell driving s, or nil if s is a primary input or
// constant.
func (g *GraphView) Driver(s Sig) Cell {
	return g.driver[(*g.module).SigMap().Canon(s)]
}

// Readers returns every cell reading s, in no particular order.
func (g *GraphView) Readers(s Sig) []Cell {
	return g.readers[(*g.module).SigMap().Canon(s)]
}

// Topo returns the primitive gates of the module in topological order
// (every gate after all of its primitive-gate dependencies).
func (g *GraphView) Topo() []Cell { return g.topoOrder }

// RTopo returns the same gates in reverse topological order.
func (g *GraphView) RTopo() []Cell {
	r := make([]Cell, len(g.topoOrder))
	for i, c := range g.topoOrder {
		r[len(r)-1-i] = c
	}
	return r
}

// HasLoop reports whether the last Rebuild detected a combinational loop
// (some primitive gates excluded from Topo because Kahn's algorithm could
// not retire them).
func (g *GraphView) HasLoop() bool { return g.hasLoop }

func (g *GraphView) computeTopoOrder() error {
	m := *g.module
	sm := m.SigMap()

	var primGates []Cell
	for _, c := range m.Cells() {
		if c.Type().IsPrimitive() {
			primGates = append(primGates, c)
		}
	}

	indeg := make(map[Cell]int, len(primGates))
	outSig := make(map[Cell]Sig, len(primGates))
	queue := make([]Cell, 0, len(primGates))

	for _, c := range primGates {
		var out Sig
		for _, s := range c.Outputs() {
			out = sm.Canon(s)
			break
		}
		outSig[c] = out

		ins, err := CellInputs(g.reg, c)
		if err != nil {
			return wrapCorruptInput(err, "graph: topo sort")
		}
		deg := 0
		for _, s := range ins {
			if drv := g.driver[sm.Canon(s)]; drv != nil && drv.Type().IsPrimitive() {
				deg++
			}
		}
		indeg[c] = deg
		if deg == 0 {
			queue = append(queue, c)
		}
	}

	order := make([]Cell, 0, len(primGates))
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		order = append(order, c)

		for _, reader := range g.readers[outSig[c]] {
			if !reader.Type().IsPrimitive() {
				continue
			}
			if _, tracked := indeg[reader]; !tracked {
				continue
			}
			indeg[reader]--
			if indeg[reader] == 0 {
				queue = append(queue, reader)
			}
		}
	}

	g.hasLoop = len(order) != len(primGates)
	if g.hasLoop && g.log != nil {
		g.log.WithField("expected", len(primGates)).WithField("got", len(order)).
			Warn("lutmap: combinational loop detected, excluded gates will not be mapped")
	}
	g.topoOrder = order
	return nil
}
