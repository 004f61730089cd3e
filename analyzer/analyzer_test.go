package analyzer

import (
	"strings"
	"testing"

	"github.com/agheieff/RegionAI-sub002/domain"
	"github.com/agheieff/RegionAI-sub002/lang"
	"github.com/agheieff/RegionAI-sub002/summary"
)

func mustContext(t *testing.T, prog *lang.Program, conf Config) *AnalysisContext {
	t.Helper()
	ac, err := NewAnalysisContext(prog, conf)
	if err != nil {
		t.Fatalf("NewAnalysisContext: %v", err)
	}
	return ac
}

func identityProgram() *lang.Program {
	return &lang.Program{Functions: []*lang.FuncDef{
		lang.Func("id", []string{"v"}, lang.Return(lang.Name("v"))),
	}}
}

func TestContextSeparation(t *testing.T) {
	ac := mustContext(t, identityProgram(), Config{})

	intCtx := NewCallContext("id", []domain.Value{domain.IntValue(41)}, 1)
	nullCtx := NewCallContext("id", []domain.Value{domain.NullValue()}, 1)

	s1 := ac.SummaryFor(intCtx)
	if k, ok := s1.Return.Value.Range.IsConst(); !ok || k != 41 {
		t.Errorf("id(41) returns %s, want constant 41", s1.Return.Value)
	}
	s2 := ac.SummaryFor(nullCtx)
	if s2.Return.Value.Null != domain.DefinitelyNull {
		t.Errorf("id(null) returns %s, want definitely-null", s2.Return.Value)
	}

	// Same context again must hit the cache, not re-analyze.
	if s3 := ac.SummaryFor(NewCallContext("id", []domain.Value{domain.IntValue(41)}, 1)); s3 != s1 {
		t.Error("repeated context should return the memoized summary")
	}
	if n := ac.TimesAnalyzed("id"); n != 2 {
		t.Errorf("id analyzed %d times, want exactly 2", n)
	}
}

func TestIdentityFingerprint(t *testing.T) {
	ac := mustContext(t, identityProgram(), Config{})
	res := ac.Run()
	fp := res.Fingerprints[TopContext("id", 1).Key()]
	if !fp.Has(summary.TagIdentity) || !fp.Has(summary.TagPure) {
		t.Errorf("fingerprint = %s, want IDENTITY and PURE", fp)
	}
	if res.Termination != Converged {
		t.Errorf("termination = %s, want converged", res.Termination)
	}
}

func TestInfiniteLoopFingerprint(t *testing.T) {
	prog := &lang.Program{Functions: []*lang.FuncDef{
		lang.Func("spin", nil,
			lang.While(lang.BoolLit(true), []*lang.Stmt{lang.Pass()})),
	}}
	ac := mustContext(t, prog, Config{})
	res := ac.Run()
	fp := res.Fingerprints[TopContext("spin", 0).Key()]
	if !fp.Has(summary.TagMayNotReturn) {
		t.Errorf("fingerprint = %s, want MAY_NOT_RETURN", fp)
	}
	if fp.Has(summary.TagConstantReturn) {
		t.Error("a diverging function has no constant return")
	}
}

func factorialProgram() *lang.Program {
	return &lang.Program{Functions: []*lang.FuncDef{
		lang.Func("fact", []string{"n"},
			lang.If(lang.BinOp("<=", lang.Name("n"), lang.IntLit(1)),
				[]*lang.Stmt{lang.Return(lang.IntLit(1))},
				[]*lang.Stmt{lang.Return(lang.BinOp("*", lang.Name("n"),
					lang.Call("fact", lang.BinOp("-", lang.Name("n"), lang.IntLit(1)))))}),
		),
	}}
}

func TestRecursionTerminates(t *testing.T) {
	ac := mustContext(t, factorialProgram(), Config{})
	res := ac.Run()

	fp := res.Fingerprints[TopContext("fact", 1).Key()]
	if !fp.Has(summary.TagRecursive) {
		t.Errorf("fingerprint = %s, want RECURSIVE", fp)
	}

	for _, n := range []int64{5, 0, -1} {
		s := ac.SummaryFor(NewCallContext("fact", []domain.Value{domain.IntValue(n)}, 1))
		if s.Return.Value.Null != domain.NotNull {
			t.Errorf("fact(%d) returns %s, want not-null", n, s.Return.Value)
		}
	}
	// Base-case contexts collapse to the constant.
	s := ac.SummaryFor(NewCallContext("fact", []domain.Value{domain.IntValue(0)}, 1))
	if k, ok := s.Return.Value.Range.IsConst(); !ok || k != 1 {
		t.Errorf("fact(0) returns %s, want constant 1", s.Return.Value)
	}
}

func TestDynamicDispatch(t *testing.T) {
	prog := &lang.Program{
		Functions: []*lang.FuncDef{
			lang.Func("driver", nil,
				lang.Assign("x", lang.New("C")),
				lang.Assign("y", lang.MethodCall(lang.Name("x"), "m")),
				lang.Return(lang.Name("y")),
			),
		},
		Classes: []*lang.ClassDef{
			lang.Class("A", nil, lang.Func("m", []string{"self"}, lang.Return(lang.IntLit(1)))),
			lang.Class("B", []string{"A"}, lang.Func("m", []string{"self"}, lang.Return(lang.IntLit(2)))),
			lang.Class("C", []string{"B"}),
		},
	}
	ac := mustContext(t, prog, Config{})
	res := ac.Run()

	objs := res.PointsTo.PointedObjects("driver", "x")
	if len(objs) != 1 || objs[0].Name != "C" {
		t.Fatalf("x points to %v, want the C allocation", objs)
	}
	targets := res.Hierarchy.ResolveCall(objs, "m")
	if len(targets) != 1 || targets[0].Class != "B" {
		t.Errorf("dispatch = %v, want the B override", targets)
	}
	for _, fn := range []string{"driver", "A.m", "B.m"} {
		if res.Summaries[fn] == nil {
			t.Errorf("no summary for %s", fn)
		}
	}
}

func TestGlobalEffectPropagates(t *testing.T) {
	prog := &lang.Program{Functions: []*lang.FuncDef{
		lang.Func("bump", nil,
			lang.Global("counter"),
			lang.Assign("counter", lang.IntLit(1)),
		),
		lang.Func("caller", nil, lang.ExprStmt(lang.Call("bump"))),
	}}
	ac := mustContext(t, prog, Config{})
	res := ac.Run()

	bump := res.Summaries["bump"]
	if len(bump.Effects.ModifiedGlobals) != 1 || bump.Effects.ModifiedGlobals[0] != "counter" {
		t.Errorf("bump globals = %v, want [counter]", bump.Effects.ModifiedGlobals)
	}
	caller := res.Summaries["caller"]
	if len(caller.Effects.ModifiedGlobals) != 1 || caller.Effects.ModifiedGlobals[0] != "counter" {
		t.Errorf("effect did not propagate to caller: %v", caller.Effects.ModifiedGlobals)
	}
	fp := res.Fingerprints[TopContext("bump", 0).Key()]
	if !fp.Has(summary.TagModifiesGlobal) {
		t.Errorf("fingerprint = %s, want MODIFIES_GLOBALS", fp)
	}
}

func TestContextBudget(t *testing.T) {
	prog := &lang.Program{Functions: []*lang.FuncDef{
		lang.Func("count", []string{"n"},
			lang.If(lang.BinOp("<=", lang.Name("n"), lang.IntLit(0)),
				[]*lang.Stmt{lang.Return(lang.IntLit(0))},
				[]*lang.Stmt{lang.Return(lang.Call("count",
					lang.BinOp("-", lang.Name("n"), lang.IntLit(1))))}),
		),
		lang.Func("main", nil,
			lang.Assign("x", lang.Call("count", lang.IntLit(100))),
		),
	}}
	ac := mustContext(t, prog, Config{MaxContextsPerFunction: 3})
	res := ac.Run()
	if res.Termination != BudgetExhausted {
		t.Errorf("termination = %s, want budget-exhausted", res.Termination)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w.Msg, "context budget") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a budget warning, got %v", res.Warnings)
	}
	// The analysis still answers, just less precisely.
	if res.Summaries["count"] == nil || res.Summaries["main"] == nil {
		t.Error("budget exhaustion must not drop summaries")
	}
}

func TestEmptyProgramRejected(t *testing.T) {
	if _, err := NewAnalysisContext(&lang.Program{}, Config{}); err == nil {
		t.Fatal("a program with no functions is an input error")
	}
}

func TestInvalidFunctionIsolated(t *testing.T) {
	prog := &lang.Program{Functions: []*lang.FuncDef{
		{Name: "broken", Body: []*lang.Stmt{{Kind: lang.StmtAssign}}},
		lang.Func("good", nil, lang.Return(lang.IntLit(1))),
	}}
	ac := mustContext(t, prog, Config{})
	res := ac.Run()
	if len(res.Errors) != 1 || res.Errors[0].Fn != "broken" {
		t.Errorf("errors = %v, want one for broken", res.Errors)
	}
	good := res.Summaries["good"]
	if good == nil {
		t.Fatal("the valid function must still be analyzed")
	}
	if k, ok := good.Return.Value.Range.IsConst(); !ok || k != 1 {
		t.Errorf("good returns %s, want constant 1", good.Return.Value)
	}
	// The broken function degrades to a conservative summary.
	if broken := res.Summaries["broken"]; broken == nil || !broken.Return.Value.IsTop() {
		t.Errorf("broken summary = %v, want conservative TOP", broken)
	}
}
