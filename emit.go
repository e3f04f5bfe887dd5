package lutmap

import (
	"sort"
	"strconv"
)

// lutInputPorts are the six input port names every LUT6/LUT6D carries,
// in I0..I5 order.
var lutInputPorts = [K]string{"I0", "I1", "I2", "I3", "I4", "I5"}

// NetlistEmitter materializes a finished MappingResult as LUT6/LUT6D
// cells and removes every primitive gate the mapping consumed. It is the
// only component in this package that mutates the module; everything
// upstream of it only reads.
type NetlistEmitter struct {
	module Module
	graph  *GraphView
	truth  *TruthTableEngine
}

// NewNetlistEmitter returns an emitter bound to m.
func NewNetlistEmitter(m Module, g *GraphView, truth *TruthTableEngine) *NetlistEmitter {
	return &NetlistEmitter{module: m, graph: g, truth: truth}
}

// Emit writes result into the module: one LUT6 per surviving single
// mapping, one LUT6D per double mapping, then deletes every remaining
// primitive gate in a single sweep. If any LUT fails to emit, the cells
// already added are removed again and the module is left as it was.
func (e *NetlistEmitter) Emit(result MappingResult) error {
	before := make(map[Cell]bool)
	for _, c := range e.module.Cells() {
		before[c] = true
	}
	rollback := func(err error) error {
		for _, c := range e.module.Cells() {
			if !before[c] {
				e.module.RemoveCell(c)
			}
		}
		return err
	}

	doubled := make(map[Sig]bool, len(result.Double)*2)
	for key := range result.Double {
		doubled[key[0]] = true
		doubled[key[1]] = true
	}

	for out, sc := range result.Single {
		if doubled[out] {
			continue
		}
		if err := e.emitSingle(out, sc); err != nil {
			return rollback(err)
		}
	}

	for _, dc := range result.Double {
		if err := e.emitDouble(dc); err != nil {
			return rollback(err)
		}
	}

	return e.sweepPrimitives()
}

func (e *NetlistEmitter) emitSingle(out Sig, sc SingleCut) error {
	inputs := sc.Inputs.Signals()
	if len(inputs) == 1 && inputs[0] == out {
		return nil // trivial cut, never materialized
	}
	sort.Slice(inputs, func(i, j int) bool { return sigLess(inputs[i], inputs[j]) })

	init, err := e.truth.ComputeInit(out, inputs)
	if err != nil {
		return wrapInvariantViolation(err, "emit: LUT6 for %v", out)
	}

	c := e.module.AddCell(CellLUT6, lutCellName(out))
	c.SetParam("INIT", init)
	for i, name := range lutInputPorts {
		if i < len(inputs) {
			wireCellPort(c, name, inputs[i])
		} else {
			wireCellPort(c, name, ConstZero)
		}
	}
	wireCellPort(c, "Z", out)
	return nil
}

func (e *NetlistEmitter) emitDouble(dc DoubleCut) error {
	all := dc.Inputs.Signals()
	var nonI5 []Sig
	for _, s := range all {
		if s != dc.SelectedI5 {
			nonI5 = append(nonI5, s)
		}
	}
	sort.Slice(nonI5, func(i, j int) bool { return sigLess(nonI5[i], nonI5[j]) })

	zInputVec := append(append([]Sig(nil), nonI5...), dc.SelectedI5)
	zRaw, err := e.truth.ComputeInit(dc.Output1, zInputVec)
	if err != nil {
		return wrapInvariantViolation(err, "emit: LUT6D Z for %v", dc.Output1)
	}
	zInit := expandZInitTo64(zRaw, len(zInputVec))

	z5Raw, err := e.truth.ComputeInit(dc.Output2, nonI5)
	if err != nil {
		return wrapInvariantViolation(err, "emit: LUT6D Z5 for %v", dc.Output2)
	}
	z5Init := expandInitTo64(z5Raw, len(nonI5))

	// (★): Z5 = Z with I5=0, i.e. Z's lower 32 bits must equal Z5's
	// truth table. Asserted here rather than trusted from the search
	// stage, since this is the last point the emitter can still refuse
	// to materialize a broken pairing.
	if zInit&0xFFFFFFFF != z5Init&0xFFFFFFFF {
		return newInvariantViolation("emit: LUT6D (%v,%v) fails Z5=Z[I5=0]", dc.Output1, dc.Output2)
	}

	c := e.module.AddCell(CellLUT6D, lutCellName(dc.Output1))
	c.SetParam("INIT", zInit)
	for i, name := range lutInputPorts {
		switch {
		case i == K-1:
			wireCellPort(c, name, dc.SelectedI5)
		case i < len(nonI5):
			wireCellPort(c, name, nonI5[i])
		default:
			wireCellPort(c, name, ConstZero)
		}
	}
	wireCellPort(c, "Z", dc.Output1)
	wireCellPort(c, "Z5", dc.Output2)
	return nil
}

func (e *NetlistEmitter) sweepPrimitives() error {
	var toRemove []Cell
	for _, c := range e.module.Cells() {
		if c.Type().IsPrimitive() {
			toRemove = append(toRemove, c)
		}
	}
	for _, c := range toRemove {
		e.module.RemoveCell(c)
	}
	return nil
}

// expandInitTo64 widens a truth table computed over fewer than K inputs
// up to the fixed 64-bit LUT6/LUT6D INIT width: the unused high-order
// input positions are always tied to constant 0, so the existing pattern
// is simply tiled to fill them. Used for Z5 (and any plain LUT6), which
// never has an I5-like input whose position needs special treatment.
func expandInitTo64(raw uint64, numInputs int) uint64 {
	if numInputs >= K {
		return raw
	}
	rawSize := uint64(1) << uint(numInputs)
	var half uint64
	for shift := uint64(0); shift < 32; shift += rawSize {
		half |= raw << shift
	}
	return half | (half << 32)
}

// expandZInitTo64 widens Z's truth table to the full 64-bit LUT6D INIT.
// Unlike expandInitTo64, it cannot tile the raw table uniformly: raw's
// top bit is I5 (zInputVec's last entry), which must land on physical
// port I5 (bit 5), not get folded into the same padding as the unused
// gap ports between the real data inputs and I5. Raw is split into its
// I5=0 and I5=1 halves first, each tiled independently to fill 32 bits,
// then placed as the INIT's lower and upper halves — so the lower 32
// bits come out exactly equal to Z5's own (★) truth table instead of a
// table that still depends on I5.
func expandZInitTo64(raw uint64, zNumInputs int) uint64 {
	if zNumInputs >= K {
		return raw
	}
	nonI5Count := zNumInputs - 1
	rawHalfSize := uint64(1) << uint(nonI5Count)
	halfMask := (uint64(1) << rawHalfSize) - 1

	lowerRaw := raw & halfMask
	upperRaw := (raw >> rawHalfSize) & halfMask

	tile := func(v uint64) uint64 {
		var half uint64
		for shift := uint64(0); shift < 32; shift += rawHalfSize {
			half |= v << shift
		}
		return half
	}
	return tile(lowerRaw) | (tile(upperRaw) << 32)
}

func lutCellName(out Sig) string {
	return "lut_" + strconv.Itoa(int(out.Ref)) + "_" + strconv.Itoa(int(out.Bit))
}

func wireCellPort(c Cell, port string, s Sig) { c.SetConn(port, s) }
