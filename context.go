package lutmap

// MappingContext tracks fan-out reference counts and exact-area
// memoization across a GlobalMapper pass. Its cache is tagged with an
// iteration counter rather than cleared outright, so a stale entry from a
// previous iteration is simply ignored on the next lookup instead of
// paying for a full map reset.
type MappingContext struct {
	module Module
	graph  *GraphView

	fanoutRefs map[Sig]int
	used       map[Sig]bool
	mapping    map[Sig]SingleCut

	exactAreaCache map[Sig]int
	cacheIteration map[Sig]int
	iteration      int

	cacheHits   int
	cacheMisses int
}

// NewMappingContext returns a context bound to m and g, with an empty
// mapping and iteration 0.
func NewMappingContext(m Module, g *GraphView) *MappingContext {
	return &MappingContext{
		module:         m,
		graph:          g,
		fanoutRefs:     make(map[Sig]int),
		used:           make(map[Sig]bool),
		mapping:        make(map[Sig]SingleCut),
		exactAreaCache: make(map[Sig]int),
		cacheIteration: make(map[Sig]int),
	}
}

// IterationBump invalidates the exact-area cache by advancing the
// iteration tag; previously cached entries remain in the map but are no
// longer considered current.
func (c *MappingContext) IterationBump() { c.iteration++ }

// FanoutRefs returns how many mapped LUTs currently reference s as an
// input.
func (c *MappingContext) FanoutRefs(s Sig) int { return c.fanoutRefs[s] }

// IsUsed reports whether s is reachable from a primary output in the
// current mapping.
func (c *MappingContext) IsUsed(s Sig) bool { return c.used[s] }

// CurrentMapping returns s's current SingleCut and whether one exists.
func (c *MappingContext) CurrentMapping(s Sig) (SingleCut, bool) {
	sc, ok := c.mapping[s]
	return sc, ok
}

// ExactArea returns the number of physical LUTs required to implement s
// given the current mapping and fan-out refs, memoized per iteration. A
// primary output or a signal with more than one reference counts its own
// LUT plus the exact area of its cut's inputs. A signal whose LUT has
// fan-out 1 and is not itself a primary output has its area folded into
// its consumer's recursive count rather than counted on its own, matching
// the original "single reference, can be absorbed" rule. Unmapped signals
// count 0.
func (c *MappingContext) ExactArea(s Sig) int {
	if it, ok := c.cacheIteration[s]; ok && it == c.iteration {
		c.cacheHits++
		return c.exactAreaCache[s]
	}
	c.cacheMisses++
	area := c.exactAreaRecursive(s, make(map[Sig]bool))
	c.exactAreaCache[s] = area
	c.cacheIteration[s] = c.iteration
	return area
}

func (c *MappingContext) exactAreaRecursive(s Sig, visited map[Sig]bool) int {
	if visited[s] {
		return 0
	}
	visited[s] = true

	sc, ok := c.mapping[s]
	if !ok {
		return 0
	}

	area := 0
	if c.isPrimaryOutput(s) || c.FanoutRefs(s) > 1 {
		area = 1
	}
	for _, in := range sc.Inputs.Signals() {
		area += c.exactAreaRecursive(in, visited)
	}
	return area
}

func (c *MappingContext) isPrimaryOutput(s Sig) bool {
	sm := c.module.SigMap()
	for _, w := range c.module.Wires() {
		if !w.IsOutput() {
			continue
		}
		for i := 0; i < w.Width(); i++ {
			if sm.Canon(w.Bit(i)) == s {
				return true
			}
		}
	}
	return false
}

// RebuildRefs recomputes fan-out refs and used marks from scratch by
// BFS-walking from the primary outputs over mapping, replacing whatever
// the previous iteration accumulated.
func (c *MappingContext) RebuildRefs(mapping map[Sig]SingleCut) {
	c.fanoutRefs = make(map[Sig]int)
	c.used = make(map[Sig]bool)
	c.mapping = mapping

	sm := c.module.SigMap()
	var outputs []Sig
	for _, w := range c.module.Wires() {
		if !w.IsOutput() {
			continue
		}
		for i := 0; i < w.Width(); i++ {
			outputs = append(outputs, sm.Canon(w.Bit(i)))
		}
	}

	visited := make(map[Sig]bool, len(mapping))
	queue := append([]Sig(nil), outputs...)
	for _, s := range outputs {
		visited[s] = true
	}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		c.used[s] = true

		sc, ok := mapping[s]
		if !ok {
			continue
		}
		for _, in := range sc.Inputs.Signals() {
			c.fanoutRefs[in]++
			if !visited[in] {
				visited[in] = true
				queue = append(queue, in)
			}
		}
	}
}

// Dereference removes s's LUT from the mapping's reference accounting,
// recursively releasing any input that drops to zero references, and
// returns the resulting change in total LUT count (always <= 0).
func (c *MappingContext) Dereference(s Sig) int {
	sc, ok := c.mapping[s]
	if !ok {
		return 0
	}
	delta := 0
	for _, in := range sc.Inputs.Signals() {
		if c.fanoutRefs[in] == 0 {
			continue
		}
		c.fanoutRefs[in]--
		if c.fanoutRefs[in] == 0 {
			if _, ok := c.mapping[in]; ok {
				delta += c.Dereference(in)
			}
		}
	}
	delta--
	c.used[s] = false
	return delta
}

// Reference adds s's LUT back into the mapping's reference accounting,
// recursively pulling in any input whose reference count rises from zero
// to one.
func (c *MappingContext) Reference(s Sig) {
	sc, ok := c.mapping[s]
	if !ok {
		return
	}
	for _, in := range sc.Inputs.Signals() {
		c.fanoutRefs[in]++
		if c.fanoutRefs[in] == 1 {
			if _, ok := c.mapping[in]; ok {
				c.Reference(in)
			}
		}
	}
	c.used[s] = true
}

// CacheHitRate returns the fraction of ExactArea calls served from the
// memoization cache so far.
func (c *MappingContext) CacheHitRate() float64 {
	total := c.cacheHits + c.cacheMisses
	if total == 0 {
		return 0
	}
	return float64(c.cacheHits) / float64(total)
}

// CacheStats returns the raw hit/miss counters.
func (c *MappingContext) CacheStats() (hits, misses int) { return c.cacheHits, c.cacheMisses }
