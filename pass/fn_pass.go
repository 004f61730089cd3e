// Package pass runs the intraprocedural abstract interpretation: a worklist
// fixpoint over one function's CFG, with widening at loop headers so
// iteration terminates regardless of loop bounds.
package pass

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/agheieff/RegionAI-sub002/cfg"
	"github.com/agheieff/RegionAI-sub002/domain"
	"github.com/agheieff/RegionAI-sub002/lang"
)

// CallEffect is what a resolved call contributes to the caller: its abstract
// return value plus the callee's observable side effects.
type CallEffect struct {
	Return          domain.Value
	MayThrow        bool
	PerformsIO      bool
	CallsExternal   bool
	ModifiedGlobals []string
	// ModifiedParams holds indices of arguments whose pointees the callee
	// may mutate.
	ModifiedParams []int
}

// TopEffect is the maximally conservative call effect, used for callees the
// resolver cannot account for.
func TopEffect() CallEffect {
	return CallEffect{Return: domain.TopValue(), MayThrow: true, CallsExternal: true}
}

// CallResolver supplies callee behavior to the engine. The interprocedural
// analyzer implements it with context-sensitive summaries; a nil resolver
// degrades every call to TopEffect.
type CallResolver interface {
	ResolveCall(caller string, call *lang.Expr, args []domain.Value) CallEffect
}

type edgeKey struct{ from, to int }

// FnPass analyzes one function under one entry state. Results (return value,
// side effects, per-block states) are read off after Run.
type FnPass struct {
	Fn       *lang.FuncDef
	Cfg      *cfg.CFG
	Entry    domain.State
	Resolver CallResolver

	edgeStates map[edgeKey]domain.State
	inStates   map[int]domain.State
	visits     map[int]int
	seen       map[int]bool
	globals    map[string]bool
	params     map[string]int

	ReturnValue     domain.Value
	ReturnsParam    string // set when every return is the same bare parameter
	AlwaysReturns   bool
	MayThrow        bool
	PerformsIO      bool
	CallsExternal   bool
	ModifiedGlobals map[string]bool
	ModifiedParams  map[string]bool
	Warnings        []string

	sawReturn bool
	widened   bool
}

// NewFnPass prepares an analysis of fn under the given entry state. A nil
// entry analyzes the unconstrained context: every parameter starts at TOP.
func NewFnPass(fn *lang.FuncDef, g *cfg.CFG, entry domain.State, resolver CallResolver) *FnPass {
	if entry == nil {
		entry = domain.NewState()
		for _, prm := range fn.Params {
			entry.Set(prm, domain.TopValue())
		}
	}
	p := &FnPass{
		Fn:              fn,
		Cfg:             g,
		Entry:           entry,
		Resolver:        resolver,
		edgeStates:      make(map[edgeKey]domain.State),
		inStates:        make(map[int]domain.State),
		visits:          make(map[int]int),
		seen:            make(map[int]bool),
		globals:         make(map[string]bool),
		params:          make(map[string]int),
		ReturnValue:     domain.BottomValue(),
		ModifiedGlobals: make(map[string]bool),
		ModifiedParams:  make(map[string]bool),
	}
	for i, name := range fn.Params {
		p.params[name] = i
	}
	collectGlobals(fn.Body, p.globals)
	return p
}

func collectGlobals(stmts []*lang.Stmt, into map[string]bool) {
	for _, s := range stmts {
		if s.Kind == lang.StmtGlobal {
			into[s.Target] = true
		}
		collectGlobals(s.Body, into)
		collectGlobals(s.Else, into)
		collectGlobals(s.Handler, into)
	}
}

// Run iterates the worklist to a fixpoint. Each dequeued block joins its
// predecessor edge states, applies its statements in order, then pushes
// per-edge exit states narrowed by the block's branch condition; loop
// headers switch from join to widening past the threshold.
func (p *FnPass) Run() {
	work := []int{p.Cfg.Entry.Index}
	for len(work) > 0 {
		idx := work[len(work)-1]
		work = work[:len(work)-1]
		blk := p.Cfg.Blocks[idx]

		in := p.computeIn(blk)
		if blk.IsLoopHeader {
			p.visits[idx]++
			if p.visits[idx] > domain.WidenThreshold {
				w := domain.Widen(p.inStates[idx], in)
				if !w.Equal(in) {
					p.widened = true
				}
				in = w
			}
		}
		if p.seen[idx] && in.Equal(p.inStates[idx]) {
			continue
		}
		p.seen[idx] = true
		p.inStates[idx] = in
		log.Debugf("%s %s: in=%s", p.Cfg.Fn, blk, in)

		out := p.transferBlock(blk, in.Copy())
		for _, succ := range blk.Succs {
			st := out
			if blk.Branch != nil {
				switch succ {
				case blk.TrueSucc:
					st = p.narrow(out, blk.Branch, true)
				case blk.FalseSucc:
					st = p.narrow(out, blk.Branch, false)
				}
			}
			if succ == p.Cfg.Exit && !endsInReturn(blk) && st != nil {
				// Falling off the end returns null implicitly.
				p.recordReturn(domain.NullValue(), "")
			}
			key := edgeKey{blk.Index, succ.Index}
			if !st.Equal(p.edgeStates[key]) || !p.seen[succ.Index] {
				p.edgeStates[key] = st
				work = append(work, succ.Index)
			}
		}
	}
	p.finish()
}

func (p *FnPass) computeIn(blk *cfg.Block) domain.State {
	if blk == p.Cfg.Entry {
		return p.Entry.Copy()
	}
	var in domain.State
	for _, pred := range blk.Preds {
		in = domain.Merge(in, p.edgeStates[edgeKey{pred.Index, blk.Index}])
	}
	return in
}

func endsInReturn(blk *cfg.Block) bool {
	n := len(blk.Stmts)
	return n > 0 && blk.Stmts[n-1].Kind == lang.StmtReturn
}

func (p *FnPass) finish() {
	if p.Cfg.Entry == p.Cfg.Exit {
		// Empty body: control falls straight through.
		p.recordReturn(domain.NullValue(), "")
		p.AlwaysReturns = true
	} else {
		exitIn := p.computeIn(p.Cfg.Exit)
		p.AlwaysReturns = exitIn != nil
		if exitIn == nil {
			p.warnf("exit of %s is unreachable: function may not return", p.Cfg.Fn)
		}
	}
	if p.widened {
		p.warnf("loop bounds in %s widened to ±inf", p.Cfg.Fn)
	}
	for _, blk := range p.Cfg.Blocks {
		if !p.seen[blk.Index] && blk != p.Cfg.Exit {
			p.warnf("unreachable block %d in %s", blk.Index, p.Cfg.Fn)
		}
	}
	if !p.sawReturn {
		p.ReturnValue = domain.NullValue()
	}
}

// ExitState is the state flowing into the exit block, nil if unreachable.
func (p *FnPass) ExitState() domain.State {
	if p.Cfg.Entry == p.Cfg.Exit {
		return p.Entry
	}
	return p.computeIn(p.Cfg.Exit)
}

// BlockState returns the fixpoint entry state of a block, nil when the block
// was never reached.
func (p *FnPass) BlockState(index int) domain.State {
	return p.inStates[index]
}

func (p *FnPass) recordReturn(v domain.Value, param string) {
	if !p.sawReturn {
		p.ReturnsParam = param
		p.sawReturn = true
	} else if p.ReturnsParam != param {
		p.ReturnsParam = ""
	}
	p.ReturnValue = domain.JoinValue(p.ReturnValue, v)
}

func (p *FnPass) warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Warn(msg)
	p.Warnings = append(p.Warnings, msg)
}
