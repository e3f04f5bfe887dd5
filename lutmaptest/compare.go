package lutmaptest

import (
	"fmt"
	"sort"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/lutmap6/lutmap"
)

// DiffMappingResult returns a human-readable structural diff between want
// and got, ignoring Stats (derived bookkeeping, not part of the mapping's
// identity) and comparing Cut's unexported array fields, which go-cmp
// otherwise refuses to traverse. Returns "" when the two results describe
// the same set of single- and dual-output assignments.
func DiffMappingResult(want, got lutmap.MappingResult) string {
	return cmp.Diff(want, got,
		cmp.AllowUnexported(lutmap.Cut{}),
		cmpopts.IgnoreFields(lutmap.MappingResult{}, "Stats"),
	)
}

// DiffCutSet reports whether want and got cover the same set of output
// signals with equal cuts, independent of slice order.
func DiffCutSet(want, got map[lutmap.Sig]lutmap.SingleCut) string {
	return cmp.Diff(want, got, cmp.AllowUnexported(lutmap.Cut{}))
}

// SortedSignals returns sigs sorted by lutmap.Sig's total order, useful
// for building deterministic test assertions over map keys.
func SortedSignals(sigs []lutmap.Sig) []lutmap.Sig {
	out := append([]lutmap.Sig(nil), sigs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// FormatCut renders a Cut's signals for failure messages.
func FormatCut(c lutmap.Cut) string {
	return fmt.Sprintf("%v", SortedSignals(c.Signals()))
}
