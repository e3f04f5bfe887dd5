package lutmap

// K is the fixed LUT input size this mapper targets. The spec carries no
// provision for K != 6 (see Non-goals), so it is a constant, not a field.
const K = 6

// SigRef is an opaque handle to a wire, assigned by the host. Its only
// contract is equality and a total order; this package never interprets
// its value.
type SigRef int32

// Sig identifies one bit of one wire. Two Sigs compare equal iff they name
// the same bit of the same (already canonicalized) wire.
type Sig struct {
	Ref SigRef
	Bit int32
}

// sentinel refs for the two constant drivers. Real wires from a host are
// expected to use non-negative refs.
const (
	refConstZero SigRef = -1
	refConstOne  SigRef = -2
)

// ConstZero and ConstOne are the constant-0 and constant-1 signals. They are
// valid Sigs: they may appear as cut inputs and have arrival time 0.
var (
	ConstZero = Sig{Ref: refConstZero}
	ConstOne  = Sig{Ref: refConstOne}
)

// IsConst reports whether s is one of the two constant signals.
func (s Sig) IsConst() bool { return s.Ref == refConstZero || s.Ref == refConstOne }

// Less defines the total order used for deterministic sorting everywhere a
// cut's inputs or a LUT's ports need a canonical order.
func (s Sig) Less(o Sig) bool {
	if s.Ref != o.Ref {
		return s.Ref < o.Ref
	}
	return s.Bit < o.Bit
}

func sigLess(a, b Sig) bool { return a.Less(b) }
