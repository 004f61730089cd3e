// Package callgraph collects call sites, entry points, and a bottom-up SCC
// order over a program's functions. The order drives interprocedural
// analysis: callees are summarized before their callers, and mutually
// recursive clusters surface as one SCC for iterative re-analysis.
package callgraph

import (
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/twmb/algoimpl/go/graph"

	"github.com/agheieff/RegionAI-sub002/lang"
)

// CallSite is one syntactic call inside Caller. Callee is empty for dynamic
// (method or unknown-target) calls, which are resolved later against the
// class hierarchy.
type CallSite struct {
	Caller  string
	Callee  string
	Call    *lang.Expr
	Dynamic bool
}

// Graph is the whole-program call graph. SCCs lists strongly-connected
// components callees-first (Tarjan emits components in reverse topological
// order of the condensation), which is exactly bottom-up analysis order.
type Graph struct {
	Funcs       map[string]*lang.FuncDef
	Out         map[string][]*CallSite
	In          map[string][]string
	EntryPoints []string
	SCCs        [][]string

	sccOf map[string]int
}

// MethodKey names a class method in the function map.
func MethodKey(class, method string) string { return class + "." + method }

// Build walks every function and method body once, records call sites, then
// computes the SCC condensation order.
func Build(prog *lang.Program) *Graph {
	g := &Graph{
		Funcs: make(map[string]*lang.FuncDef),
		Out:   make(map[string][]*CallSite),
		In:    make(map[string][]string),
		sccOf: make(map[string]int),
	}
	for _, fn := range prog.Functions {
		g.Funcs[fn.Name] = fn
	}
	for _, cls := range prog.Classes {
		for _, m := range cls.Methods {
			g.Funcs[MethodKey(cls.Name, m.Name)] = m
		}
	}

	for name, fn := range g.Funcs {
		g.collectCalls(name, fn.Body)
	}
	g.findEntryPoints()
	g.orderSCCs()
	log.Debugf("call graph: %d functions, %d entry points, %d sccs",
		len(g.Funcs), len(g.EntryPoints), len(g.SCCs))
	return g
}

func (g *Graph) collectCalls(caller string, stmts []*lang.Stmt) {
	for _, s := range stmts {
		for _, e := range []*lang.Expr{s.Object, s.Value, s.Cond, s.Expr} {
			g.collectCallExprs(caller, e)
		}
		g.collectCalls(caller, s.Body)
		g.collectCalls(caller, s.Else)
		g.collectCalls(caller, s.Handler)
	}
}

func (g *Graph) collectCallExprs(caller string, e *lang.Expr) {
	if e == nil {
		return
	}
	if e.Kind == lang.ExprCall {
		site := &CallSite{Caller: caller, Call: e}
		if e.Recv == nil {
			if _, ok := g.Funcs[e.Name]; ok {
				site.Callee = e.Name
				g.In[e.Name] = append(g.In[e.Name], caller)
			} else {
				site.Dynamic = true
			}
		} else {
			site.Dynamic = true
		}
		g.Out[caller] = append(g.Out[caller], site)
	}
	g.collectCallExprs(caller, e.Left)
	g.collectCallExprs(caller, e.Right)
	g.collectCallExprs(caller, e.Recv)
	for _, a := range e.Args {
		g.collectCallExprs(caller, a)
	}
}

// findEntryPoints marks functions nobody calls. A program where everything is
// called from something (one big cycle) falls back to all functions.
func (g *Graph) findEntryPoints() {
	for name := range g.Funcs {
		if len(g.In[name]) == 0 {
			g.EntryPoints = append(g.EntryPoints, name)
		}
	}
	if len(g.EntryPoints) == 0 {
		for name := range g.Funcs {
			g.EntryPoints = append(g.EntryPoints, name)
		}
	}
	sort.Strings(g.EntryPoints)
}

func (g *Graph) orderSCCs() {
	cg := graph.New(graph.Directed)
	nodes := make(map[string]graph.Node, len(g.Funcs))
	names := make([]string, 0, len(g.Funcs))
	for name := range g.Funcs {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic node creation order
	for _, name := range names {
		n := cg.MakeNode()
		*n.Value = name
		nodes[name] = n
	}
	for _, name := range names {
		for _, site := range g.Out[name] {
			if site.Callee != "" {
				if err := cg.MakeEdge(nodes[name], nodes[site.Callee]); err != nil {
					log.Warnf("call graph edge %s -> %s: %v", name, site.Callee, err)
				}
			}
		}
	}
	for _, comp := range cg.StronglyConnectedComponents() {
		var scc []string
		for _, n := range comp {
			scc = append(scc, (*n.Value).(string))
		}
		sort.Strings(scc)
		idx := len(g.SCCs)
		for _, name := range scc {
			g.sccOf[name] = idx
		}
		g.SCCs = append(g.SCCs, scc)
	}
}

// SCCIndex returns the index of the SCC containing fn in bottom-up order.
func (g *Graph) SCCIndex(fn string) int { return g.sccOf[fn] }

// IsRecursive reports whether fn sits in a call cycle: a multi-member SCC or
// a direct self-call.
func (g *Graph) IsRecursive(fn string) bool {
	if len(g.SCCs[g.sccOf[fn]]) > 1 {
		return true
	}
	for _, site := range g.Out[fn] {
		if site.Callee == fn {
			return true
		}
	}
	return false
}

// CallSitesIn returns fn's outgoing call sites.
func (g *Graph) CallSitesIn(fn string) []*CallSite { return g.Out[fn] }
