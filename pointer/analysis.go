package pointer

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/tools/container/intsets"

	"github.com/agheieff/RegionAI-sub002/callgraph"
	"github.com/agheieff/RegionAI-sub002/lang"
)

// loadConstraint is dst = base.Field; storeConstraint is base.Field = src.
// Both are resolved lazily as objects flow into pts(base).
type loadConstraint struct {
	base  int
	field string
	dst   int
}

type storeConstraint struct {
	base  int
	field string
	src   int
}

// Analysis holds the constraint graph and the growing points-to sets.
// Constraint generation is one linear pass per function; Solve then
// propagates to a fixpoint.
type Analysis struct {
	prog *lang.Program
	cg   *callgraph.Graph

	locs    []Location
	index   map[Location]int
	pts     []*intsets.Sparse
	prevPTS []*intsets.Sparse
	copyTo  []*intsets.Sparse

	loads    map[int][]loadConstraint
	stores   map[int][]storeConstraint
	fieldIDs map[Location]int

	work intsets.Sparse
	temp int

	Warnings []string
}

// NewAnalysis generates all constraints for the program. Call Solve before
// querying.
func NewAnalysis(prog *lang.Program, cg *callgraph.Graph) *Analysis {
	a := &Analysis{
		prog:     prog,
		cg:       cg,
		index:    make(map[Location]int),
		loads:    make(map[int][]loadConstraint),
		stores:   make(map[int][]storeConstraint),
		fieldIDs: make(map[Location]int),
	}
	for name, fn := range cg.Funcs {
		a.genFunc(name, fn)
	}
	a.bindReceivers()
	log.Debugf("points-to: %d locations, %d load + %d store constraint groups",
		len(a.locs), len(a.loads), len(a.stores))
	return a
}

// loc interns a location and returns its dense id.
func (a *Analysis) loc(l Location) int {
	if id, ok := a.index[l]; ok {
		return id
	}
	id := len(a.locs)
	a.index[l] = id
	a.locs = append(a.locs, l)
	a.pts = append(a.pts, &intsets.Sparse{})
	a.prevPTS = append(a.prevPTS, &intsets.Sparse{})
	a.copyTo = append(a.copyTo, &intsets.Sparse{})
	return id
}

func (a *Analysis) tempLoc(fn string) int {
	a.temp++
	return a.loc(stackLoc(fn, fmt.Sprintf("$t%d", a.temp)))
}

// varLoc resolves a name inside fn: globals declared with a global statement
// get the global location, everything else is a stack slot.
func (a *Analysis) varLoc(fn, name string, globals map[string]bool) int {
	if globals[name] {
		return a.loc(globalLoc(name))
	}
	return a.loc(stackLoc(fn, name))
}

func (a *Analysis) addAddressOf(dst, obj int) {
	if a.pts[dst].Insert(obj) {
		a.work.Insert(dst)
	}
}

// addCopy installs the subset edge src ⊆ dst and pushes anything already
// known about src across it.
func (a *Analysis) addCopy(src, dst int) {
	if src == dst || !a.copyTo[src].Insert(dst) {
		return
	}
	if a.pts[dst].UnionWith(a.pts[src]) {
		a.work.Insert(dst)
	}
}

func (a *Analysis) genFunc(name string, fn *lang.FuncDef) {
	globals := make(map[string]bool)
	collectGlobalDecls(fn.Body, globals)
	a.genStmts(name, fn.Body, globals)
}

func collectGlobalDecls(stmts []*lang.Stmt, into map[string]bool) {
	for _, s := range stmts {
		if s.Kind == lang.StmtGlobal {
			into[s.Target] = true
		}
		collectGlobalDecls(s.Body, into)
		collectGlobalDecls(s.Else, into)
		collectGlobalDecls(s.Handler, into)
	}
}

func (a *Analysis) genStmts(fn string, stmts []*lang.Stmt, globals map[string]bool) {
	for _, s := range stmts {
		switch s.Kind {
		case lang.StmtAssign:
			if v := a.valueNode(fn, s.Value, globals); v >= 0 {
				a.addCopy(v, a.varLoc(fn, s.Target, globals))
			}
		case lang.StmtAssignAttr:
			v := a.valueNode(fn, s.Value, globals)
			base := a.valueNode(fn, s.Object, globals)
			if v >= 0 && base >= 0 {
				a.stores[base] = append(a.stores[base], storeConstraint{base: base, field: s.Attr, src: v})
			}
		case lang.StmtReturn:
			if s.Value != nil {
				if v := a.valueNode(fn, s.Value, globals); v >= 0 {
					a.addCopy(v, a.loc(stackLoc(fn, retName)))
				}
			}
		case lang.StmtExpr:
			a.valueNode(fn, s.Expr, globals)
		case lang.StmtIf, lang.StmtWhile, lang.StmtTry:
			if s.Cond != nil {
				a.valueNode(fn, s.Cond, globals)
			}
			a.genStmts(fn, s.Body, globals)
			a.genStmts(fn, s.Else, globals)
			a.genStmts(fn, s.Handler, globals)
		}
	}
}

// valueNode returns the location id holding the expression's value, or -1
// for values that can never point anywhere (numbers, comparisons).
func (a *Analysis) valueNode(fn string, e *lang.Expr, globals map[string]bool) int {
	if e == nil {
		return -1
	}
	switch e.Kind {
	case lang.ExprName:
		return a.varLoc(fn, e.Name, globals)
	case lang.ExprNew:
		obj := a.loc(heapLoc(e.Pos, e.Name))
		t := a.tempLoc(fn)
		a.addAddressOf(t, obj)
		return t
	case lang.ExprAttribute:
		base := a.valueNode(fn, e.Recv, globals)
		if base < 0 {
			return -1
		}
		t := a.tempLoc(fn)
		a.loads[base] = append(a.loads[base], loadConstraint{base: base, field: e.Name, dst: t})
		return t
	case lang.ExprCall:
		return a.genCall(fn, e, globals)
	case lang.ExprBinOp:
		a.valueNode(fn, e.Left, globals)
		a.valueNode(fn, e.Right, globals)
		return -1
	}
	return -1
}

func (a *Analysis) genCall(fn string, e *lang.Expr, globals map[string]bool) int {
	argNodes := make([]int, len(e.Args))
	for i, arg := range e.Args {
		argNodes[i] = a.valueNode(fn, arg, globals)
	}
	if e.Recv != nil {
		a.valueNode(fn, e.Recv, globals)
		t := a.tempLoc(fn)
		// Precise targets are the dispatch layer's job; here every class
		// declaring the method is a possible callee, so bind arguments and
		// return flow for each, mirroring bindReceivers.
		for _, cls := range a.prog.Classes {
			for _, m := range cls.Methods {
				if m.Name != e.Name {
					continue
				}
				key := callgraph.MethodKey(cls.Name, m.Name)
				for i, v := range argNodes {
					if i+1 >= len(m.Params) {
						break
					}
					if v >= 0 {
						a.addCopy(v, a.loc(stackLoc(key, m.Params[i+1])))
					}
				}
				a.addCopy(a.loc(stackLoc(key, retName)), t)
			}
		}
		return t
	}
	callee, ok := a.cg.Funcs[e.Name]
	if !ok {
		a.warnf("call to unknown function %s in %s ignored by points-to", e.Name, fn)
		return a.tempLoc(fn)
	}
	for i, v := range argNodes {
		if i >= len(callee.Params) {
			break
		}
		if v >= 0 {
			a.addCopy(v, a.loc(stackLoc(e.Name, callee.Params[i])))
		}
	}
	t := a.tempLoc(fn)
	a.addCopy(a.loc(stackLoc(e.Name, retName)), t)
	return t
}

// bindReceivers seeds every method's self parameter with all allocation
// sites of its class. Allocation sites are syntactic, so all heap locations
// exist once generation finishes.
func (a *Analysis) bindReceivers() {
	for _, cls := range a.prog.Classes {
		var objs []int
		for id, l := range a.locs {
			if l.Kind == HeapLoc && l.Name == cls.Name {
				objs = append(objs, id)
			}
		}
		for _, m := range cls.Methods {
			if len(m.Params) == 0 {
				continue
			}
			self := a.loc(stackLoc(callgraph.MethodKey(cls.Name, m.Name), m.Params[0]))
			for _, obj := range objs {
				a.addAddressOf(self, obj)
			}
		}
	}
}

func (a *Analysis) warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Warn(msg)
	a.Warnings = append(a.Warnings, msg)
}
