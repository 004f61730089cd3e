package cha

import (
	"reflect"
	"testing"

	"github.com/agheieff/RegionAI-sub002/lang"
	"github.com/agheieff/RegionAI-sub002/pointer"
)

func diamondProgram() *lang.Program {
	// A is the root; B and C both derive from A; D derives from both.
	return &lang.Program{Classes: []*lang.ClassDef{
		lang.Class("A", nil, lang.Func("m", []string{"self"}, lang.Return(lang.IntLit(1)))),
		lang.Class("B", []string{"A"}, lang.Func("m", []string{"self"}, lang.Return(lang.IntLit(2)))),
		lang.Class("C", []string{"A"}),
		lang.Class("D", []string{"B", "C"}),
	}}
}

func TestLinearization(t *testing.T) {
	h := Build(diamondProgram())
	got := h.Class("D").MRO
	want := []string{"D", "B", "A", "C", "object"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MRO(D) = %v, want %v", got, want)
	}
	if got := h.Class("A").MRO; !reflect.DeepEqual(got, []string{"A", "object"}) {
		t.Errorf("MRO(A) = %v", got)
	}
}

func TestResolveMethodWalksMRO(t *testing.T) {
	h := Build(diamondProgram())
	tgt, ok := h.ResolveMethod("D", "m")
	if !ok {
		t.Fatal("D should inherit m")
	}
	if tgt.Class != "B" {
		t.Errorf("D.m resolves to %s, want the B override", tgt.Class)
	}
	tgt, ok = h.ResolveMethod("C", "m")
	if !ok || tgt.Class != "A" {
		t.Errorf("C.m should fall back to A, got %v ok=%v", tgt, ok)
	}
	if _, ok := h.ResolveMethod("A", "absent"); ok {
		t.Error("undeclared method must not resolve")
	}
}

func TestResolveCallWithReceiverObjects(t *testing.T) {
	h := Build(diamondProgram())
	objs := []pointer.Location{{Kind: pointer.HeapLoc, Name: "D", Site: 1}}
	targets := h.ResolveCall(objs, "m")
	if len(targets) != 1 || targets[0].Class != "B" {
		t.Errorf("dispatch on D = %v, want just B.m", targets)
	}

	// Two possible receiver classes give a disjunction of targets.
	objs = append(objs, pointer.Location{Kind: pointer.HeapLoc, Name: "A", Site: 2})
	targets = h.ResolveCall(objs, "m")
	if len(targets) != 2 {
		t.Fatalf("dispatch on {D,A} = %v, want two targets", targets)
	}
	if targets[0].Class != "A" || targets[1].Class != "B" {
		t.Errorf("targets = %v, want A.m and B.m", targets)
	}
}

func TestResolveCallUnknownReceiver(t *testing.T) {
	h := Build(diamondProgram())
	targets := h.ResolveCall(nil, "m")
	// No points-to facts: every declaring class is a candidate.
	if len(targets) != 2 {
		t.Errorf("fallback dispatch = %v, want the two declarations", targets)
	}
	if len(h.Warnings) == 0 {
		t.Error("untyped receiver should be warned about")
	}
}

func TestResolveAttribute(t *testing.T) {
	prog := &lang.Program{Classes: []*lang.ClassDef{
		{Name: "Base", Attrs: []string{"size"}},
		{Name: "Derived", Bases: []string{"Base"}, Attrs: []string{"extra"}},
	}}
	h := Build(prog)
	if got := h.ResolveAttribute("Derived", "extra"); got != "Derived" {
		t.Errorf("extra declared by %q, want Derived", got)
	}
	if got := h.ResolveAttribute("Derived", "size"); got != "Base" {
		t.Errorf("size declared by %q, want Base", got)
	}
	if got := h.ResolveAttribute("Derived", "absent"); got != "" {
		t.Errorf("absent attribute resolved to %q", got)
	}
}

func TestInheritanceCycleWarned(t *testing.T) {
	prog := &lang.Program{Classes: []*lang.ClassDef{
		lang.Class("X", []string{"Y"}),
		lang.Class("Y", []string{"X"}),
	}}
	h := Build(prog)
	if len(h.Warnings) == 0 {
		t.Error("inheritance cycle must produce a warning")
	}
	if h.Class("X").MRO == nil {
		t.Error("cyclic class still gets a truncated MRO")
	}
}
