package lutmap

import "sort"

// Cut is a set of up to K signals, stored as a sorted, fixed-capacity
// array so that two Cuts with the same signal set compare equal as plain
// Go values and hash identically as map keys — the same trick the
// teacher's `pin` struct uses to get free set/map semantics from a
// comparable struct instead of a real set type.
type Cut struct {
	sigs [K]Sig
	n    int8
}

// NewCut builds a Cut from an unordered, possibly duplicate slice of
// signals. Returns an error if the deduplicated set exceeds K signals.
func NewCut(sigs []Sig) (Cut, error) {
	uniq := make(map[Sig]struct{}, len(sigs))
	for _, s := range sigs {
		uniq[s] = struct{}{}
	}
	if len(uniq) > K {
		return Cut{}, newInvariantViolation("cut: %d inputs exceeds K=%d", len(uniq), K)
	}
	var c Cut
	list := make([]Sig, 0, len(uniq))
	for s := range uniq {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return sigLess(list[i], list[j]) })
	for i, s := range list {
		c.sigs[i] = s
	}
	c.n = int8(len(list))
	return c, nil
}

// Len returns the number of signals in the cut.
func (c Cut) Len() int { return int(c.n) }

// Signals returns the cut's signals in their canonical sorted order.
func (c Cut) Signals() []Sig {
	return append([]Sig(nil), c.sigs[:c.n]...)
}

// Contains reports whether s is one of the cut's signals.
func (c Cut) Contains(s Sig) bool {
	for i := 0; i < int(c.n); i++ {
		if c.sigs[i] == s {
			return true
		}
	}
	return false
}

// Union returns the cut formed by the union of c and o's signals, or an
// error if the result would exceed K signals.
func (c Cut) Union(o Cut) (Cut, error) {
	return NewCut(append(c.Signals(), o.Signals()...))
}

// Without returns a cut with s removed, if present.
func (c Cut) Without(s Sig) Cut {
	list := make([]Sig, 0, c.n)
	for i := 0; i < int(c.n); i++ {
		if c.sigs[i] != s {
			list = append(list, c.sigs[i])
		}
	}
	out, _ := NewCut(list) // never exceeds K: strictly smaller than c
	return out
}

// SingleCut is one candidate implementation of a signal as a single LUT:
// the set of signals that would become its inputs, and the signal it
// drives. No derived data (depth, area flow) is stored on it — that is
// always recomputed on demand by CostEvaluator, so a cached SingleCut can
// never go stale relative to the rest of the mapping state.
type SingleCut struct {
	Inputs Cut
	Output Sig
}

// DoubleCut is a validated dual-output pairing: Output1 (Z) and Output2
// (Z5) share the same physical LUT6D, SelectedI5 is the extra Z input
// chosen to fix Z5 = Z[I5=0], and Inputs is their merged (<=6) input set.
type DoubleCut struct {
	Inputs     Cut
	Output1    Sig
	Output2    Sig
	SelectedI5 Sig
}

// Valid reports whether dc names two distinct outputs (the zero DoubleCut
// returned by a failed search is not valid).
func (dc DoubleCut) Valid() bool {
	return dc.Output1 != dc.Output2
}

// MappingResult is the outcome of one GlobalMapper pass: every signal
// mapped so far, split into single- and dual-output LUTs.
type MappingResult struct {
	Single map[Sig]SingleCut
	Double map[[2]Sig]DoubleCut
	Stats  MappingStats
}

// MappingStats mirrors the pass-level counters the original global
// merger reports after a run.
type MappingStats struct {
	NumSingleLUTs    int
	NumDoubleLUTs    int
	TotalLUTs        int
	Stage1Candidates int
	Stage2Candidates int
}

// CutEnumerator computes, for every primitive gate output in topological
// order, a ranked list of at most P priority cuts.
type CutEnumerator struct {
	graph *GraphView
	reg   *Registry
	eval  *CostEvaluator

	maxCuts int
	cuts    map[Sig][]SingleCut
}

// NewCutEnumerator returns an enumerator bound to g, ranking candidate
// cuts with eval and keeping at most maxCuts per signal.
func NewCutEnumerator(g *GraphView, reg *Registry, eval *CostEvaluator, maxCuts int) *CutEnumerator {
	return &CutEnumerator{graph: g, reg: reg, eval: eval, maxCuts: maxCuts, cuts: make(map[Sig][]SingleCut)}
}

// ComputePriorityCuts (re)computes the priority cuts of every signal
// driven by a primitive gate, in the graph's topological order. Primary
// inputs and constants get no stored cuts; merging and BestCut use the
// trivial cut {s} for them instead. It must be re-run after each
// CostEvaluator mode switch, since ranking depends on the evaluator's
// current mode.
func (k *CutEnumerator) ComputePriorityCuts() error {
	k.cuts = make(map[Sig][]SingleCut)

	for _, c := range k.graph.Topo() {
		var out Sig
		for _, s := range c.Outputs() {
			out = s
			break
		}
		ins, err := CellInputs(k.reg, c)
		if err != nil {
			return wrapCorruptInput(err, "cutenum: gate %s", c.Name())
		}
		cuts, err := k.mergeInputCuts(ins)
		if err != nil {
			return err
		}
		k.selectPriority(out, cuts)
	}
	return nil
}

// mergeInputCuts computes, for a gate with the given ordered inputs, the
// candidate cuts formed by the cartesian merge of each input's own
// priority cuts (or a trivial one-signal cut for an input with none yet —
// a primary input, a constant, or a boundary cell's output). Per the
// original technique, an internal gate never contributes its own output
// as a trivial cut: that would create a self-loop.
func (k *CutEnumerator) mergeInputCuts(inputs []Sig) ([]Cut, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	merged := k.candidateCuts(inputs[0])
	for _, in := range inputs[1:] {
		next := k.candidateCuts(in)
		var combined []Cut
		for _, a := range merged {
			for _, b := range next {
				u, err := a.Union(b)
				if err != nil {
					continue // exceeds K, drop
				}
				combined = append(combined, u)
			}
		}
		merged = dedupCuts(combined)
	}
	return merged, nil
}

// candidateCuts returns every cut a consumer may use when absorbing s:
// the trivial cut {s} (use s as-is, without inlining its own fan-in
// cone) is always on offer, alongside every priority cut already found
// for s (inline s's cone up to that cut's boundary instead). Dropping
// the trivial option whenever s already has enumerated cuts would
// silently remove every shallow, non-inlining cut from every consumer's
// candidate set.
func (k *CutEnumerator) candidateCuts(s Sig) []Cut {
	trivial, _ := NewCut([]Sig{s})
	scs := k.cuts[s]
	if len(scs) == 0 {
		return []Cut{trivial}
	}
	out := make([]Cut, 0, len(scs)+1)
	out = append(out, trivial)
	for _, sc := range scs {
		out = append(out, sc.Inputs)
	}
	return out
}

func dedupCuts(cuts []Cut) []Cut {
	seen := make(map[Cut]struct{}, len(cuts))
	out := make([]Cut, 0, len(cuts))
	for _, c := range cuts {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func (k *CutEnumerator) selectPriority(out Sig, cuts []Cut) {
	if len(cuts) == 0 {
		return
	}
	scs := make([]SingleCut, len(cuts))
	for i, c := range cuts {
		scs[i] = SingleCut{Inputs: c, Output: out}
	}
	sort.Slice(scs, func(i, j int) bool { return k.eval.StrictlyPrefers(scs[i], scs[j]) })
	if len(scs) > k.maxCuts {
		scs = scs[:k.maxCuts]
	}
	k.cuts[out] = scs
}

// PriorityCuts returns signal s's ranked candidate cuts, most preferred
// first.
func (k *CutEnumerator) PriorityCuts(s Sig) []SingleCut { return k.cuts[s] }

// BestCut returns s's top-ranked cut, or the trivial cut {s} if s has
// none (a primary input, constant, or boundary signal).
func (k *CutEnumerator) BestCut(s Sig) SingleCut {
	if scs := k.cuts[s]; len(scs) > 0 {
		return scs[0]
	}
	c, _ := NewCut([]Sig{s})
	return SingleCut{Inputs: c, Output: s}
}
