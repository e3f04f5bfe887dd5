// Package lutmaptest provides an in-memory lutmap.Module/Cell/Wire
// fixture for building small netlists in tests and the demo program,
// plus comparison helpers for the mapper's results.
package lutmaptest

import "github.com/lutmap6/lutmap"

// Module is a minimal in-memory lutmap.Module: a bag of cells and wires
// with no validation beyond what lutmap itself performs. It exists only
// to exercise the mapper; it has no concept of a real HDL or simulation.
type Module struct {
	cells  []*Cell
	wires  []*Wire
	sigmap *lutmap.SigMap
	reg    *lutmap.Registry
	nextID int32
}

// NewModule returns an empty fixture module.
func NewModule() *Module {
	return &Module{sigmap: lutmap.NewSigMap(), reg: lutmap.NewRegistry()}
}

func (m *Module) Cells() []lutmap.Cell {
	out := make([]lutmap.Cell, len(m.cells))
	for i, c := range m.cells {
		out[i] = c
	}
	return out
}

func (m *Module) Wires() []lutmap.Wire {
	out := make([]lutmap.Wire, len(m.wires))
	for i, w := range m.wires {
		out[i] = w
	}
	return out
}

func (m *Module) SigMap() *lutmap.SigMap { return m.sigmap }

func (m *Module) AddCell(typ lutmap.CellType, name string) lutmap.Cell {
	c := &Cell{typ: typ, name: name, conns: make(map[string]lutmap.Sig), params: make(map[string]lutmap.Param)}
	m.cells = append(m.cells, c)
	return c
}

func (m *Module) RemoveCell(c lutmap.Cell) {
	for i, cc := range m.cells {
		if lutmap.Cell(cc) == c {
			m.cells = append(m.cells[:i], m.cells[i+1:]...)
			return
		}
	}
}

// NextSig allocates a fresh, never-before-used Sig. Tests use it to name
// internal nets that don't belong to a declared Wire.
func (m *Module) NextSig() lutmap.Sig {
	m.nextID++
	return lutmap.Sig{Ref: lutmap.SigRef(m.nextID)}
}

// AddInputWire declares a width-wide primary input net, allocating one
// fresh Sig per bit.
func (m *Module) AddInputWire(name string, width int) *Wire {
	w := &Wire{name: name, isInput: true}
	for i := 0; i < width; i++ {
		w.bits = append(w.bits, m.NextSig())
	}
	m.wires = append(m.wires, w)
	return w
}

// AddOutputWire declares a primary output net driven by the given
// already-allocated Sigs, one per bit — a gate's output, typically.
func (m *Module) AddOutputWire(name string, bits ...lutmap.Sig) *Wire {
	w := &Wire{name: name, isOutput: true, bits: append([]lutmap.Sig(nil), bits...)}
	m.wires = append(m.wires, w)
	return w
}

// AddGate adds a primitive gate cell named name, wiring ins to its input
// ports in the Registry's declared order and out to its single output
// port. Panics if typ is not a known primitive type or ins is the wrong
// length — a fixture-construction error, not a runtime one.
func (m *Module) AddGate(typ lutmap.CellType, name string, out lutmap.Sig, ins ...lutmap.Sig) lutmap.Cell {
	ports, err := m.reg.InputPorts(typ)
	if err != nil {
		panic(err)
	}
	if len(ports) != len(ins) {
		panic("lutmaptest: wrong input count for gate " + name)
	}
	c := m.AddCell(typ, name)
	for i, s := range ins {
		c.SetConn(ports[i], s)
	}
	c.SetConn(outputPort, out)
	return c
}

// Cell is a fixture-owned netlist cell. Every connection — input or
// output — goes through the same conns map; Outputs() reports only the
// output ports (Z, plus Z5 on a LUT6D), everything else is an input.
type Cell struct {
	typ    lutmap.CellType
	name   string
	conns  map[string]lutmap.Sig
	params map[string]lutmap.Param
}

// outputPort is the single output port name every primitive gate and
// LUT6 use; LUT6D additionally uses z5OutputPort for its second output.
const outputPort = "Z"
const z5OutputPort = "Z5"

func isOutputPort(typ lutmap.CellType, port string) bool {
	if typ == lutmap.CellLUT6D && port == z5OutputPort {
		return true
	}
	return port == outputPort
}

func (c *Cell) Type() lutmap.CellType { return c.typ }
func (c *Cell) Name() string          { return c.name }

func (c *Cell) Input(port string) lutmap.Sig { return c.conns[port] }

func (c *Cell) Inputs() map[string]lutmap.Sig {
	out := make(map[string]lutmap.Sig)
	for p, s := range c.conns {
		if !isOutputPort(c.typ, p) {
			out[p] = s
		}
	}
	return out
}

func (c *Cell) Output(port string) lutmap.Sig { return c.conns[port] }

func (c *Cell) Outputs() map[string]lutmap.Sig {
	out := make(map[string]lutmap.Sig)
	for p, s := range c.conns {
		if isOutputPort(c.typ, p) {
			out[p] = s
		}
	}
	return out
}

func (c *Cell) SetConn(port string, s lutmap.Sig) { c.conns[port] = s }

func (c *Cell) SetParam(name string, v lutmap.Param) { c.params[name] = v }

func (c *Cell) Param(name string) (lutmap.Param, bool) {
	v, ok := c.params[name]
	return v, ok
}

// Wire is a fixture-owned named net.
type Wire struct {
	name     string
	isInput  bool
	isOutput bool
	bits     []lutmap.Sig
}

func (w *Wire) Name() string         { return w.name }
func (w *Wire) Width() int           { return len(w.bits) }
func (w *Wire) IsInput() bool        { return w.isInput }
func (w *Wire) IsOutput() bool       { return w.isOutput }
func (w *Wire) Bit(i int) lutmap.Sig { return w.bits[i] }
