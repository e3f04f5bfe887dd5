package lutmap

import "github.com/pkg/errors"

// CellType identifies what a Cell computes. The set is split into three
// bands: primitive combinational gates (the only cells CutEnumerator and
// TruthTableEngine ever look inside), boundary cells (primary inputs,
// register outputs, memory ports, unknown blackbox pins — opaque sources
// and sinks the mapper must stop at), and target cells (the LUT6/LUT6D
// shapes NetlistEmitter produces).
type CellType int

const (
	// primitive combinational gates, widest set recovered from the
	// original techlib's truth-table dispatch rather than the narrower
	// AND/OR/XOR/NOT/MUX sketch.
	CellAnd CellType = iota
	CellOr
	CellXor
	CellNand
	CellNor
	CellXnor
	CellNot
	CellAndNot
	CellOrNot
	CellMux

	// boundary cells: opaque to the mapper, always cut leaves.
	CellBoundary

	// target cells emitted by NetlistEmitter.
	CellLUT6
	CellLUT6D
)

// IsPrimitive reports whether t is one of the single-output combinational
// gates the mapper may absorb into a cut.
func (t CellType) IsPrimitive() bool {
	switch t {
	case CellAnd, CellOr, CellXor, CellNand, CellNor, CellXnor, CellNot, CellAndNot, CellOrNot, CellMux:
		return true
	}
	return false
}

// IsTransparent reports whether t is a single-input pass-through cell.
// Only NOT is transparent in this gate set; a same-input AND/OR degenerate
// buffer is not specially recognized, matching the original technique of
// only special-casing inverters. Because NOT is also primitive,
// find_mappable_driver returns an inverter as a mappable driver rather
// than walking through it.
func (t CellType) IsTransparent() bool { return t == CellNot }

// gateFn evaluates a primitive gate's fixed logic function given its
// ordered inputs.
type gateFn func(ins []bool) bool

// gateTable dispatches a primitive CellType to the boolean function it
// implements. MUX is ternary: ins = [a, b, sel], result = sel ? b : a.
var gateTable = map[CellType]gateFn{
	CellAnd:    func(ins []bool) bool { return ins[0] && ins[1] },
	CellOr:     func(ins []bool) bool { return ins[0] || ins[1] },
	CellXor:    func(ins []bool) bool { return ins[0] != ins[1] },
	CellNand:   func(ins []bool) bool { return !(ins[0] && ins[1]) },
	CellNor:    func(ins []bool) bool { return !(ins[0] || ins[1]) },
	CellXnor:   func(ins []bool) bool { return ins[0] == ins[1] },
	CellNot:    func(ins []bool) bool { return !ins[0] },
	CellAndNot: func(ins []bool) bool { return ins[0] && !ins[1] },
	CellOrNot:  func(ins []bool) bool { return ins[0] || !ins[1] },
	CellMux: func(ins []bool) bool {
		if ins[2] {
			return ins[1]
		}
		return ins[0]
	},
}

// Param is a cell attribute value. LUT6/LUT6D cells use it to carry their
// computed INIT truth table; boundary cells may carry host-defined
// metadata the mapper never interprets.
type Param interface{}

// Cell is a single gate, register, or (after emission) LUT in the
// netlist. Implementations are owned by the host; this package never
// constructs one directly except through Module.AddCell.
type Cell interface {
	Type() CellType
	Name() string
	Input(port string) Sig
	Inputs() map[string]Sig
	Output(port string) Sig
	Outputs() map[string]Sig
	SetConn(port string, s Sig)
	SetParam(name string, v Param)
	Param(name string) (Param, bool)
}

// Wire is a named, possibly multi-bit net. The mapper only ever consumes
// wires through the Sigs a Cell exposes; Wire itself exists so a host can
// enumerate primary inputs/outputs when building a GraphView.
type Wire interface {
	Name() string
	Width() int
	IsInput() bool
	IsOutput() bool
	Bit(i int) Sig
}

// Module is the host-owned netlist container this package operates on.
// It is passed by reference everywhere (never copied, never a package
// singleton) per the explicit anti-singleton design this mapper follows.
type Module interface {
	Cells() []Cell
	Wires() []Wire
	SigMap() *SigMap
	AddCell(typ CellType, name string) Cell
	RemoveCell(c Cell)
}

// Registry classifies cell types for components that need to reason
// about a type without depending on a concrete Cell implementation. It
// is constructed once by the host and passed by reference, keeping Cell's
// own interface free of virtual-hierarchy methods (spec design note).
type Registry struct {
	inputPorts map[CellType][]string
}

// NewRegistry returns a Registry preloaded with this package's fixed
// primitive gate set. Hosts extending the boundary cell vocabulary can
// still use it unmodified: boundary cells never need InputPorts.
func NewRegistry() *Registry {
	return &Registry{
		inputPorts: map[CellType][]string{
			CellAnd:    {"a", "b"},
			CellOr:     {"a", "b"},
			CellXor:    {"a", "b"},
			CellNand:   {"a", "b"},
			CellNor:    {"a", "b"},
			CellXnor:   {"a", "b"},
			CellNot:    {"in"},
			CellAndNot: {"a", "b"},
			CellOrNot:  {"a", "b"},
			CellMux:    {"a", "b", "sel"},
		},
	}
}

// InputPorts returns the ordered input port names for a primitive type.
// Order matters: it is the order gateTable's functions expect arguments
// in, and the order CutEnumerator walks a cell's fan-in.
func (r *Registry) InputPorts(t CellType) ([]string, error) {
	p, ok := r.inputPorts[t]
	if !ok {
		return nil, errors.Errorf("registry: no input ports known for cell type %v", t)
	}
	return p, nil
}

// CellInputs returns c's input Sigs in Registry-defined port order.
func CellInputs(r *Registry, c Cell) ([]Sig, error) {
	ports, err := r.InputPorts(c.Type())
	if err != nil {
		return nil, errors.Wrapf(err, "cell %s", c.Name())
	}
	ins := make([]Sig, len(ports))
	for i, p := range ports {
		ins[i] = c.Input(p)
	}
	return ins, nil
}

// Eval evaluates c's fixed primitive function given its inputs in
// Registry port order. It is the single point gateTable is read through.
func Eval(t CellType, ins []bool) (bool, error) {
	fn, ok := gateTable[t]
	if !ok {
		return false, errors.Errorf("eval: cell type %v is not a primitive gate", t)
	}
	return fn(ins), nil
}
