package pointer

import (
	"testing"

	"github.com/agheieff/RegionAI-sub002/callgraph"
	"github.com/agheieff/RegionAI-sub002/lang"
)

func solve(prog *lang.Program) *Analysis {
	a := NewAnalysis(prog, callgraph.Build(prog))
	a.Solve()
	return a
}

func TestCopyAliases(t *testing.T) {
	prog := &lang.Program{Functions: []*lang.FuncDef{
		lang.Func("f", nil,
			lang.Assign("a", lang.New("T")),
			lang.Assign("b", lang.Name("a")),
			lang.Assign("c", lang.New("T")),
		),
	}}
	a := solve(prog)
	if !a.MayAlias("f", "a", "f", "b") {
		t.Error("b copies a: they must alias")
	}
	if a.MayAlias("f", "a", "f", "c") {
		t.Error("distinct allocation sites must not alias")
	}
	objs := a.PointedObjects("f", "a")
	if len(objs) != 1 || objs[0].Kind != HeapLoc || objs[0].Name != "T" {
		t.Errorf("a points to %v, want one T object", objs)
	}
}

func TestFieldSensitivity(t *testing.T) {
	prog := &lang.Program{Functions: []*lang.FuncDef{
		lang.Func("f", nil,
			lang.Assign("p", lang.New("Box")),
			lang.AssignAttr(lang.Name("p"), "item", lang.New("Thing")),
			lang.Assign("q", lang.Attribute(lang.Name("p"), "item")),
			lang.AssignAttr(lang.Name("p"), "other", lang.New("Other")),
			lang.Assign("r", lang.Attribute(lang.Name("p"), "other")),
		),
	}}
	a := solve(prog)
	q := a.PointedObjects("f", "q")
	if len(q) != 1 || q[0].Name != "Thing" {
		t.Errorf("q points to %v, want the Thing object", q)
	}
	if a.MayAlias("f", "q", "f", "r") {
		t.Error("distinct fields of one object must not alias")
	}
}

func TestFlowThroughCall(t *testing.T) {
	// wrap returns its argument; the caller's result aliases what it passed.
	prog := &lang.Program{Functions: []*lang.FuncDef{
		lang.Func("wrap", []string{"v"}, lang.Return(lang.Name("v"))),
		lang.Func("g", nil,
			lang.Assign("x", lang.New("T")),
			lang.Assign("y", lang.Call("wrap", lang.Name("x"))),
		),
	}}
	a := solve(prog)
	if !a.MayAlias("g", "x", "g", "y") {
		t.Error("value returned through wrap must alias the argument")
	}
}

func TestFlowThroughMethodCall(t *testing.T) {
	// wrap hands back its argument, called through dynamic dispatch.
	prog := &lang.Program{
		Functions: []*lang.FuncDef{
			lang.Func("main", nil,
				lang.Assign("c", lang.New("C")),
				lang.Assign("x", lang.New("T")),
				lang.Assign("y", lang.MethodCall(lang.Name("c"), "wrap", lang.Name("x"))),
			),
		},
		Classes: []*lang.ClassDef{
			lang.Class("C", nil,
				lang.Func("wrap", []string{"self", "v"}, lang.Return(lang.Name("v")))),
		},
	}
	a := solve(prog)
	v := a.PointedObjects("C.wrap", "v")
	if len(v) != 1 || v[0].Name != "T" {
		t.Errorf("method parameter v points to %v, want the caller's T object", v)
	}
	if !a.MayAlias("main", "x", "main", "y") {
		t.Error("value returned through a method must alias the argument")
	}
}

func TestGlobalFlow(t *testing.T) {
	prog := &lang.Program{Functions: []*lang.FuncDef{
		lang.Func("set", nil,
			lang.Global("shared"),
			lang.Assign("shared", lang.New("T")),
		),
		lang.Func("get", nil,
			lang.Global("shared"),
			lang.Assign("local", lang.Name("shared")),
		),
	}}
	a := solve(prog)
	if len(a.PointedObjects("get", "local")) != 1 {
		t.Error("global store in one function must reach loads in another")
	}
	// Alias queries resolve declared globals the same way PointsTo does.
	if !a.MayAlias("set", "shared", "get", "local") {
		t.Error("a declared global must alias the local it was loaded into")
	}
}

func TestReceiverBinding(t *testing.T) {
	prog := &lang.Program{
		Functions: []*lang.FuncDef{
			lang.Func("main", nil, lang.Assign("c", lang.New("C"))),
		},
		Classes: []*lang.ClassDef{
			lang.Class("C", nil, lang.Func("m", []string{"self"}, lang.Return(lang.Name("self")))),
		},
	}
	a := solve(prog)
	self := a.PointedObjects("C.m", "self")
	if len(self) != 1 || self[0].Name != "C" {
		t.Errorf("self points to %v, want the C allocation", self)
	}
}
