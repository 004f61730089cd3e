// Package analyzer orchestrates the whole-program run: call-graph ordering,
// points-to solving, class hierarchy, and the context-sensitive
// interprocedural fixpoint over function summaries. One AnalysisContext owns
// every cache for one run; nothing is process-wide.
package analyzer

import (
	"errors"
	"fmt"
	"reflect"

	log "github.com/sirupsen/logrus"

	"github.com/agheieff/RegionAI-sub002/callgraph"
	"github.com/agheieff/RegionAI-sub002/cfg"
	"github.com/agheieff/RegionAI-sub002/cha"
	"github.com/agheieff/RegionAI-sub002/domain"
	"github.com/agheieff/RegionAI-sub002/lang"
	"github.com/agheieff/RegionAI-sub002/pass"
	"github.com/agheieff/RegionAI-sub002/pointer"
	"github.com/agheieff/RegionAI-sub002/summary"
)

// RecursionRefinementCap bounds the extra fixpoint passes a recursive SCC
// gets after its first. Two passes let a self-call observe its own first
// summary and stabilize; anything still moving is frozen at its last safe
// over-approximation.
const RecursionRefinementCap = 2

// DefaultMaxContextsPerFunction bounds context explosion: once a function
// has this many distinct argument-state contexts, further ones collapse into
// the TOP context.
const DefaultMaxContextsPerFunction = 16

// Config carries the per-run knobs.
type Config struct {
	MaxContextsPerFunction int
	RecursionRefinementCap int
}

// AnalysisContext is one analysis run. It implements pass.CallResolver so
// the intraprocedural engine can ask it about call sites.
type AnalysisContext struct {
	conf      Config
	prog      *lang.Program
	cg        *callgraph.Graph
	pta       *pointer.Analysis
	hierarchy *cha.Hierarchy
	cfgs      map[string]*cfg.CFG
	invalid   map[string]bool

	summaries     map[string]*summary.FnSummary
	fingerprints  map[string]summary.Fingerprint
	inProgress    map[string]bool
	timesAnalyzed map[string]int
	contextCount  map[string]int
	budgetWarned  map[string]bool
	worklist      []CallContext

	errors    []AnalysisError
	warnings  []Warning
	capped    bool
	exhausted bool
}

// NewAnalysisContext builds every per-run structure: per-function CFGs, the
// call graph, the solved points-to relation, and the class hierarchy. A
// program with no functions at all is the one unrecoverable input error.
func NewAnalysisContext(prog *lang.Program, conf Config) (*AnalysisContext, error) {
	if conf.MaxContextsPerFunction == 0 {
		conf.MaxContextsPerFunction = DefaultMaxContextsPerFunction
	}
	if conf.RecursionRefinementCap == 0 {
		conf.RecursionRefinementCap = RecursionRefinementCap
	}
	a := &AnalysisContext{
		conf:          conf,
		prog:          prog,
		cfgs:          make(map[string]*cfg.CFG),
		invalid:       make(map[string]bool),
		summaries:     make(map[string]*summary.FnSummary),
		fingerprints:  make(map[string]summary.Fingerprint),
		inProgress:    make(map[string]bool),
		timesAnalyzed: make(map[string]int),
		contextCount:  make(map[string]int),
		budgetWarned:  make(map[string]bool),
	}
	a.cg = callgraph.Build(prog)
	if len(a.cg.Funcs) == 0 {
		return nil, errors.New("program contains no function definitions")
	}
	for name, fn := range a.cg.Funcs {
		if err := lang.ValidateFunc(fn); err != nil {
			a.errors = append(a.errors, AnalysisError{Fn: name, Msg: err.Error()})
			a.invalid[name] = true
			continue
		}
		a.cfgs[name] = cfg.Build(fn)
	}
	a.pta = pointer.NewAnalysis(prog, a.cg)
	a.pta.Solve()
	a.hierarchy = cha.Build(prog)
	return a, nil
}

// Run drives the interprocedural fixpoint: SCCs bottom-up, a worklist of
// pending call contexts, and capped refinement passes for recursive SCCs.
func (a *AnalysisContext) Run() *Result {
	for i, scc := range a.cg.SCCs {
		recursive := len(scc) > 1 || a.cg.IsRecursive(scc[0])
		passes := 1
		if recursive {
			passes = 1 + a.conf.RecursionRefinementCap
		}
		log.Debugf("scc %d %v: recursive=%v", i, scc, recursive)

		for p := 0; p < passes; p++ {
			changed := false
			for _, fn := range scc {
				ctx := a.topContextFor(fn)
				key := ctx.Key()
				old := a.summaries[key]
				if p > 0 {
					delete(a.summaries, key)
				}
				s := a.SummaryFor(ctx)
				if old == nil || !summariesEqual(old, s) {
					changed = true
				}
			}
			if !changed {
				break
			}
			if recursive && p == passes-1 {
				a.capped = true
				a.warnf(scc[0], "recursive cluster %v frozen after %d refinement passes", scc, passes)
			}
		}
		a.drainWorklist()
	}
	a.drainWorklist()
	return a.finish()
}

func (a *AnalysisContext) topContextFor(fn string) CallContext {
	return TopContext(fn, len(a.cg.Funcs[fn].Params))
}

func (a *AnalysisContext) drainWorklist() {
	for len(a.worklist) > 0 {
		ctx := a.worklist[len(a.worklist)-1]
		a.worklist = a.worklist[:len(a.worklist)-1]
		if _, ok := a.summaries[ctx.Key()]; ok {
			continue
		}
		a.SummaryFor(ctx)
	}
}

// SummaryFor returns the memoized summary for a context, analyzing at most
// once per distinct context. A context currently being analyzed returns its
// best-known stand-in instead of recursing forever.
func (a *AnalysisContext) SummaryFor(ctx CallContext) *summary.FnSummary {
	key := ctx.Key()
	if s, ok := a.summaries[key]; ok {
		return s
	}
	if a.inProgress[key] {
		return a.bestKnown(ctx)
	}
	a.inProgress[key] = true
	s := a.analyze(ctx)
	delete(a.inProgress, key)
	a.summaries[key] = s
	if _, seen := a.fingerprints[key]; !seen {
		a.contextCount[ctx.Fn]++
	}
	a.fingerprints[key] = summary.Derive(s, a.cg.IsRecursive(ctx.Fn))
	return s
}

// bestKnown is the recursion breaker: the TOP-context summary if one exists,
// otherwise the fully conservative one.
func (a *AnalysisContext) bestKnown(ctx CallContext) *summary.FnSummary {
	if s, ok := a.summaries[a.topContextFor(ctx.Fn).Key()]; ok {
		return s
	}
	return summary.Conservative(ctx.Fn)
}

// TimesAnalyzed reports how many concrete fixpoint runs a function has had
// across all contexts.
func (a *AnalysisContext) TimesAnalyzed(fn string) int { return a.timesAnalyzed[fn] }

// NumParams exposes a function's arity for context construction.
func (a *AnalysisContext) NumParams(fn string) int {
	if f := a.cg.Funcs[fn]; f != nil {
		return len(f.Params)
	}
	return 0
}

func (a *AnalysisContext) analyze(ctx CallContext) *summary.FnSummary {
	fn := a.cg.Funcs[ctx.Fn]
	g := a.cfgs[ctx.Fn]
	if fn == nil || g == nil || a.invalid[ctx.Fn] {
		a.warnf(ctx.Fn, "no analyzable body: conservative summary")
		return summary.Conservative(ctx.Fn)
	}

	entry := domain.NewState()
	for i, p := range fn.Params {
		entry.Set(p, ctx.Args[i])
	}
	fp := pass.NewFnPass(fn, g, entry, a)
	fp.Run()
	a.timesAnalyzed[ctx.Fn]++
	for _, w := range fp.Warnings {
		a.warnings = append(a.warnings, Warning{Fn: ctx.Fn, Msg: w})
	}

	s := &summary.FnSummary{
		Fn: ctx.Fn,
		Return: summary.ReturnSummary{
			Value:         fp.ReturnValue,
			AlwaysReturns: fp.AlwaysReturns,
			MayThrow:      fp.MayThrow,
		},
		ReturnsParam: fp.ReturnsParam,
	}
	for i, p := range fn.Params {
		s.Params = append(s.Params, summary.ParamSummary{Name: p, Value: ctx.Args[i]})
	}
	s.SetFromMaps(fp.ModifiedGlobals, fp.ModifiedParams)
	s.Effects.PerformsIO = fp.PerformsIO
	s.Effects.CallsExternal = fp.CallsExternal
	a.deriveConditions(s)
	log.Debugf("summary %s: %s", ctx.Key(), s)
	return s
}

// deriveConditions renders narrowing facts as human-readable pre- and
// postconditions.
func (a *AnalysisContext) deriveConditions(s *summary.FnSummary) {
	for _, p := range s.Params {
		if !p.Value.IsTop() {
			s.Preconditions = append(s.Preconditions,
				fmt.Sprintf("param %s: %s", p.Name, p.Value))
		}
	}
	if s.Return.AlwaysReturns {
		s.Postconditions = append(s.Postconditions, "always returns")
	}
	if k, ok := s.Return.Value.Range.IsConst(); ok {
		s.Postconditions = append(s.Postconditions, fmt.Sprintf("returns constant %d", k))
	}
	if s.Return.Value.Null == domain.NotNull {
		s.Postconditions = append(s.Postconditions, "returns non-null")
	}
	for _, g := range s.Effects.ModifiedGlobals {
		s.Postconditions = append(s.Postconditions, "modifies global "+g)
	}
}

func summariesEqual(x, y *summary.FnSummary) bool {
	return x.Return.Value.Equal(y.Return.Value) &&
		x.Return.AlwaysReturns == y.Return.AlwaysReturns &&
		x.Return.MayThrow == y.Return.MayThrow &&
		reflect.DeepEqual(x.Effects, y.Effects)
}

func (a *AnalysisContext) warnf(fn, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Warn(msg)
	a.warnings = append(a.warnings, Warning{Fn: fn, Msg: msg})
}

func (a *AnalysisContext) finish() *Result {
	res := &Result{
		Summaries:        make(map[string]*summary.FnSummary),
		ContextSummaries: a.summaries,
		Fingerprints:     a.fingerprints,
		CallGraph:        a.cg,
		PointsTo:         a.pta,
		Hierarchy:        a.hierarchy,
		Errors:           a.errors,
		Warnings:         a.warnings,
		Termination:      Converged,
	}
	for name := range a.cg.Funcs {
		if s, ok := a.summaries[a.topContextFor(name).Key()]; ok {
			res.Summaries[name] = s
		}
	}
	for _, w := range a.pta.Warnings {
		res.Warnings = append(res.Warnings, Warning{Msg: w})
	}
	for _, w := range a.hierarchy.Warnings {
		res.Warnings = append(res.Warnings, Warning{Msg: w})
	}
	switch {
	case a.capped:
		res.Termination = RecursionCapped
	case a.exhausted:
		res.Termination = BudgetExhausted
	}
	return res
}
