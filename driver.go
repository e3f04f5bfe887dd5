package lutmap

import "github.com/sirupsen/logrus"

// Options configures a MapperDriver run. K is fixed at 6 by this
// package's Non-goals, so it is not a field here.
type Options struct {
	// MaxPriorityCuts is P in CutEnumerator: how many ranked cuts are
	// kept per signal.
	MaxPriorityCuts int
	// MaxAreaFlowIterations bounds the area-flow phase's convergence
	// loop.
	MaxAreaFlowIterations int
	// EnableDualOutput turns on LUT6D pair discovery. Disabling it makes
	// every pass single-output only, useful for isolating a regression
	// to the dual-output search.
	EnableDualOutput bool
	// Logger receives warnings and per-phase telemetry. A nil Logger
	// defaults to logrus.New(), writing to its normal (stderr) output.
	Logger logrus.FieldLogger
}

// DefaultOptions returns the tuning MapperDriver uses unless overridden.
func DefaultOptions() Options {
	return Options{
		MaxPriorityCuts:       20,
		MaxAreaFlowIterations: 10,
		EnableDualOutput:      true,
	}
}

// Telemetry is the read-only summary MapperDriver accumulates over a run,
// exported for a caller that wants to report or regression-track mapping
// quality.
type Telemetry struct {
	InitialGateCount int
	FinalLUT6Count   int
	FinalLUT6DCount  int

	CacheHits   int
	CacheMisses int

	Stage1Candidates int
	Stage2Candidates int

	AreaFlowIterations int
	// LUTsPerPhase records the total LUT count ("single" + "double")
	// after each completed GlobalMapper pass, one phase per entry.
	LUTsPerPhase []int
}

// CacheHitRate derives the exact-area memoization hit rate from the raw
// counters rather than storing the ratio redundantly.
func (t Telemetry) CacheHitRate() float64 {
	total := t.CacheHits + t.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(t.CacheHits) / float64(total)
}

// MapperDriver runs the fixed three-phase schedule (depth, then up to
// MaxAreaFlowIterations area-flow iterations, then one exact-area pass)
// and hands the converged mapping to NetlistEmitter.
type MapperDriver struct {
	module  Module
	reg     *Registry
	opts    Options
	log     logrus.FieldLogger
	telem   Telemetry
	graph   *GraphView
	timing  *TimingAnalyzer
	ctx     *MappingContext
}

// NewMapperDriver wires up a driver for m. reg classifies the module's
// cell types.
func NewMapperDriver(m Module, reg *Registry, opts Options) *MapperDriver {
	log := opts.Logger
	if log == nil {
		log = logrus.New()
	}
	return &MapperDriver{module: m, reg: reg, opts: opts, log: log}
}

// Run executes the full three-phase mapping schedule and emits the
// result into the module. Returns the accumulated Telemetry. On a
// CorruptInput or InvariantViolation error the module is left unmodified
// (the emitter never runs).
func (d *MapperDriver) Run() (Telemetry, error) {
	var err error
	d.graph, err = NewGraphView(d.module, d.reg, d.log)
	if err != nil {
		return d.telem, err
	}
	d.timing = NewTimingAnalyzer(d.graph, d.reg)
	if err := d.timing.ComputeArrivalTimes(d.module); err != nil {
		return d.telem, err
	}
	d.timing.ComputeRequiredTimes(d.module, d.timing.CriticalDepth())
	d.ctx = NewMappingContext(d.module, d.graph)

	for _, c := range d.graph.Topo() {
		if c.Type().IsPrimitive() {
			d.telem.InitialGateCount++
		}
	}

	result, err := d.runPhase(CostDepth, false)
	if err != nil {
		return d.telem, err
	}
	d.recordPhase(result)

	prevTotal := result.Stats.TotalLUTs
	for i := 0; i < d.opts.MaxAreaFlowIterations; i++ {
		d.ctx.IterationBump()
		d.ctx.RebuildRefs(combinedMapping(result))

		result, err = d.runPhase(CostAreaFlow, d.opts.EnableDualOutput)
		if err != nil {
			return d.telem, err
		}
		d.recordPhase(result)
		d.telem.AreaFlowIterations++

		delta := result.Stats.TotalLUTs - prevTotal
		if delta < 0 {
			delta = -delta
		}
		prevTotal = result.Stats.TotalLUTs
		if delta <= 1 {
			break
		}
	}

	d.ctx.IterationBump()
	d.ctx.RebuildRefs(combinedMapping(result))
	result, err = d.runPhase(CostExactArea, d.opts.EnableDualOutput)
	if err != nil {
		return d.telem, err
	}
	d.recordPhase(result)

	// GlobalMapper seeds a worklist entry for every primitive gate output
	// so cost ranking sees the whole netlist, but a gate whose cut got
	// inlined into a consumer's merged cut never needed a LUT of its own.
	// RebuildRefs's used set is exactly the set reachable from a primary
	// output through the converged mapping; prune everything else before
	// it reaches the emitter.
	d.ctx.IterationBump()
	d.ctx.RebuildRefs(combinedMapping(result))
	result = pruneUnusedMappings(result, d.ctx)

	emitter := NewNetlistEmitter(d.module, d.graph, NewTruthTableEngine(d.graph, d.reg))
	if err := emitter.Emit(result); err != nil {
		return d.telem, err
	}

	d.telem.FinalLUT6Count = result.Stats.NumSingleLUTs
	d.telem.FinalLUT6DCount = result.Stats.NumDoubleLUTs
	d.telem.Stage1Candidates = result.Stats.Stage1Candidates
	d.telem.Stage2Candidates = result.Stats.Stage2Candidates
	hits, misses := d.ctx.CacheStats()
	d.telem.CacheHits, d.telem.CacheMisses = hits, misses

	return d.telem, nil
}

func (d *MapperDriver) runPhase(mode CostMode, enableDouble bool) (MappingResult, error) {
	eval := NewCostEvaluator(d.timing, d.ctx)
	eval.SetMode(mode)

	truth := NewTruthTableEngine(d.graph, d.reg)
	cuts := NewCutEnumerator(d.graph, d.reg, eval, d.opts.MaxPriorityCuts)
	if err := cuts.ComputePriorityCuts(); err != nil {
		return MappingResult{}, err
	}

	mapper := NewGlobalMapper(d.module, d.graph, d.reg, d.timing, d.ctx, cuts, truth, eval, enableDouble, d.log)
	return mapper.Run()
}

func (d *MapperDriver) recordPhase(result MappingResult) {
	d.telem.LUTsPerPhase = append(d.telem.LUTsPerPhase, result.Stats.TotalLUTs)
	if d.log != nil {
		d.log.WithField("phase", len(d.telem.LUTsPerPhase)).
			WithField("luts", result.Stats.TotalLUTs).
			Info("lutmap: phase complete")
	}
}

// pruneUnusedMappings drops every single or double mapping ctx does not
// mark used, i.e. every LUT that isn't reachable from a primary output
// through the mapping ctx was just rebuilt from. A double cut survives
// if either of its two outputs is used, since dropping one half of a
// LUT6D still requires materializing the other.
func pruneUnusedMappings(result MappingResult, ctx *MappingContext) MappingResult {
	single := make(map[Sig]SingleCut, len(result.Single))
	for s, sc := range result.Single {
		if ctx.IsUsed(s) {
			single[s] = sc
		}
	}
	double := make(map[[2]Sig]DoubleCut, len(result.Double))
	for key, dc := range result.Double {
		if ctx.IsUsed(dc.Output1) || ctx.IsUsed(dc.Output2) {
			double[key] = dc
		}
	}
	return MappingResult{
		Single: single,
		Double: double,
		Stats: MappingStats{
			NumSingleLUTs:    len(single),
			NumDoubleLUTs:    len(double),
			TotalLUTs:        len(single) + len(double),
			Stage1Candidates: result.Stats.Stage1Candidates,
			Stage2Candidates: result.Stats.Stage2Candidates,
		},
	}
}

// combinedMapping flattens a MappingResult's single and double tables
// into one Sig->SingleCut view, giving each DoubleCut's two outputs an
// entry that shares the DoubleCut's merged input set — this is what
// MappingContext.RebuildRefs walks between phases.
func combinedMapping(result MappingResult) map[Sig]SingleCut {
	combined := make(map[Sig]SingleCut, len(result.Single)+len(result.Double)*2)
	for s, sc := range result.Single {
		combined[s] = sc
	}
	for _, dc := range result.Double {
		combined[dc.Output1] = SingleCut{Inputs: dc.Inputs, Output: dc.Output1}
		combined[dc.Output2] = SingleCut{Inputs: dc.Inputs, Output: dc.Output2}
	}
	return combined
}
