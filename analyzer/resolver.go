package analyzer

import (
	"github.com/agheieff/RegionAI-sub002/callgraph"
	"github.com/agheieff/RegionAI-sub002/domain"
	"github.com/agheieff/RegionAI-sub002/lang"
	"github.com/agheieff/RegionAI-sub002/pass"
	"github.com/agheieff/RegionAI-sub002/summary"
)

// ResolveCall implements pass.CallResolver. Calls whose argument states are
// not yet summarized are deferred onto the context worklist and answered
// with a sound stand-in for this pass; the worklist re-drives analysis until
// no new contexts appear.
func (a *AnalysisContext) ResolveCall(caller string, call *lang.Expr, args []domain.Value) pass.CallEffect {
	if call.Recv != nil {
		return a.resolveDynamic(caller, call, args)
	}
	fn, ok := a.cg.Funcs[call.Name]
	if !ok {
		a.warnf(caller, "unresolved call to %s: assuming external", call.Name)
		return pass.TopEffect()
	}

	ctx := NewCallContext(call.Name, args, len(fn.Params))
	if s, ok := a.summaries[ctx.Key()]; ok {
		return effectFrom(fn, s, 0)
	}
	if !ctx.IsTop() && a.contextCount[call.Name] >= a.conf.MaxContextsPerFunction {
		if !a.budgetWarned[call.Name] {
			a.budgetWarned[call.Name] = true
			a.exhausted = true
			a.warnf(caller, "context budget for %s exhausted: merging into TOP context", call.Name)
		}
	} else if !a.inProgress[ctx.Key()] {
		a.worklist = append(a.worklist, ctx)
	}

	// Best known answer for this pass: the TOP-context summary when present,
	// otherwise fully conservative.
	if s, ok := a.summaries[a.topContextFor(call.Name).Key()]; ok {
		return effectFrom(fn, s, 0)
	}
	return pass.TopEffect()
}

// resolveDynamic handles method calls: receiver points-to facts intersected
// with the class hierarchy give the possible targets, whose effects join as
// a disjunction.
func (a *AnalysisContext) resolveDynamic(caller string, call *lang.Expr, args []domain.Value) pass.CallEffect {
	if call.Recv.Kind != lang.ExprName {
		a.warnf(caller, "dynamic call .%s on non-variable receiver: conservative", call.Name)
		return pass.TopEffect()
	}
	objs := a.pta.PointedObjects(caller, call.Recv.Name)
	targets := a.hierarchy.ResolveCall(objs, call.Name)
	if len(targets) == 0 {
		a.warnf(caller, "no dispatch targets for %s.%s: conservative", call.Recv.Name, call.Name)
		return pass.TopEffect()
	}

	joined := pass.CallEffect{Return: domain.BottomValue()}
	for _, t := range targets {
		key := callgraph.MethodKey(t.Class, t.Method.Name)
		mfn := a.cg.Funcs[key]
		if mfn == nil {
			joined = joinEffects(joined, pass.TopEffect())
			continue
		}
		margs := append([]domain.Value{domain.ObjectValue()}, args...)
		ctx := NewCallContext(key, margs, len(mfn.Params))
		if s, ok := a.summaries[ctx.Key()]; ok {
			joined = joinEffects(joined, effectFrom(mfn, s, 1))
			continue
		}
		if !a.inProgress[ctx.Key()] {
			a.worklist = append(a.worklist, ctx)
		}
		if s, ok := a.summaries[a.topContextFor(key).Key()]; ok {
			joined = joinEffects(joined, effectFrom(mfn, s, 1))
		} else {
			joined = joinEffects(joined, pass.TopEffect())
		}
	}
	return joined
}

// effectFrom converts a callee summary into the caller-visible call effect.
// argShift maps callee parameter indices onto caller argument indices: 1 for
// methods, whose first parameter is the receiver.
func effectFrom(fn *lang.FuncDef, s *summary.FnSummary, argShift int) pass.CallEffect {
	eff := pass.CallEffect{
		Return:          s.Return.Value,
		MayThrow:        s.Return.MayThrow,
		PerformsIO:      s.Effects.PerformsIO,
		CallsExternal:   s.Effects.CallsExternal,
		ModifiedGlobals: s.Effects.ModifiedGlobals,
	}
	for _, name := range s.Effects.ModifiedParams {
		for i, p := range fn.Params {
			if p == name && i-argShift >= 0 {
				eff.ModifiedParams = append(eff.ModifiedParams, i-argShift)
			}
		}
	}
	return eff
}

func joinEffects(x, y pass.CallEffect) pass.CallEffect {
	out := pass.CallEffect{
		Return:        domain.JoinValue(x.Return, y.Return),
		MayThrow:      x.MayThrow || y.MayThrow,
		PerformsIO:    x.PerformsIO || y.PerformsIO,
		CallsExternal: x.CallsExternal || y.CallsExternal,
	}
	out.ModifiedGlobals = unionStrings(x.ModifiedGlobals, y.ModifiedGlobals)
	out.ModifiedParams = unionInts(x.ModifiedParams, y.ModifiedParams)
	return out
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func unionInts(a, b []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, v := range append(append([]int{}, a...), b...) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
