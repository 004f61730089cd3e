package callgraph

import (
	"testing"

	"github.com/agheieff/RegionAI-sub002/lang"
)

func TestBottomUpOrder(t *testing.T) {
	// a -> b -> c: callees must be ordered before their callers.
	prog := &lang.Program{Functions: []*lang.FuncDef{
		lang.Func("a", nil, lang.ExprStmt(lang.Call("b"))),
		lang.Func("b", nil, lang.ExprStmt(lang.Call("c"))),
		lang.Func("c", nil, lang.Return(lang.IntLit(1))),
	}}
	g := Build(prog)
	if len(g.SCCs) != 3 {
		t.Fatalf("got %d sccs, want 3", len(g.SCCs))
	}
	if !(g.SCCIndex("c") < g.SCCIndex("b") && g.SCCIndex("b") < g.SCCIndex("a")) {
		t.Errorf("scc order not bottom-up: c=%d b=%d a=%d",
			g.SCCIndex("c"), g.SCCIndex("b"), g.SCCIndex("a"))
	}
	if len(g.EntryPoints) != 1 || g.EntryPoints[0] != "a" {
		t.Errorf("entry points = %v, want [a]", g.EntryPoints)
	}
}

func TestMutualRecursionOneSCC(t *testing.T) {
	prog := &lang.Program{Functions: []*lang.FuncDef{
		lang.Func("even", []string{"n"}, lang.Return(lang.Call("odd", lang.Name("n")))),
		lang.Func("odd", []string{"n"}, lang.Return(lang.Call("even", lang.Name("n")))),
	}}
	g := Build(prog)
	if g.SCCIndex("even") != g.SCCIndex("odd") {
		t.Error("mutually recursive functions must share an SCC")
	}
	if !g.IsRecursive("even") || !g.IsRecursive("odd") {
		t.Error("both cycle members are recursive")
	}
	// Nothing outside the cycle calls them: fall back to all functions.
	if len(g.EntryPoints) != 2 {
		t.Errorf("entry points = %v, want both", g.EntryPoints)
	}
}

func TestSelfRecursion(t *testing.T) {
	prog := &lang.Program{Functions: []*lang.FuncDef{
		lang.Func("f", []string{"n"}, lang.Return(lang.Call("f", lang.Name("n")))),
		lang.Func("g", nil, lang.Return(lang.IntLit(0))),
	}}
	cg := Build(prog)
	if !cg.IsRecursive("f") {
		t.Error("direct self-call is recursive")
	}
	if cg.IsRecursive("g") {
		t.Error("g has no cycle")
	}
}

func TestMethodsAndDynamicSites(t *testing.T) {
	prog := &lang.Program{
		Functions: []*lang.FuncDef{
			lang.Func("driver", nil,
				lang.Assign("c", lang.New("C")),
				lang.ExprStmt(lang.MethodCall(lang.Name("c"), "run")),
			),
		},
		Classes: []*lang.ClassDef{
			lang.Class("C", nil, lang.Func("run", []string{"self"}, lang.Return(lang.IntLit(1)))),
		},
	}
	g := Build(prog)
	if g.Funcs[MethodKey("C", "run")] == nil {
		t.Fatal("method not collected under its class key")
	}
	sites := g.CallSitesIn("driver")
	if len(sites) != 1 {
		t.Fatalf("got %d call sites, want 1", len(sites))
	}
	if !sites[0].Dynamic {
		t.Error("method call should be a dynamic site")
	}
}

func TestUnknownCalleeIsDynamic(t *testing.T) {
	prog := &lang.Program{Functions: []*lang.FuncDef{
		lang.Func("f", nil, lang.ExprStmt(lang.Call("missing"))),
	}}
	g := Build(prog)
	sites := g.CallSitesIn("f")
	if len(sites) != 1 || !sites[0].Dynamic || sites[0].Callee != "" {
		t.Errorf("unknown callee should yield one dynamic site, got %+v", sites)
	}
}
