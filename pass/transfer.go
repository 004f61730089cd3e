package pass

import (
	log "github.com/sirupsen/logrus"

	"github.com/agheieff/RegionAI-sub002/cfg"
	"github.com/agheieff/RegionAI-sub002/domain"
	"github.com/agheieff/RegionAI-sub002/lang"
)

// transferBlock applies every statement of the block to st in order. A nil
// state is unreachable and passes through untouched.
func (p *FnPass) transferBlock(blk *cfg.Block, st domain.State) domain.State {
	if st == nil {
		return nil
	}
	for _, s := range blk.Stmts {
		st = p.transferStmt(st, s)
		if st == nil {
			break
		}
	}
	return st
}

func (p *FnPass) transferStmt(st domain.State, s *lang.Stmt) domain.State {
	switch s.Kind {
	case lang.StmtAssign:
		v := p.evalExpr(st, s.Value)
		st.Set(s.Target, v)
		if p.globals[s.Target] {
			p.ModifiedGlobals[s.Target] = true
		}

	case lang.StmtAssignAttr:
		p.evalExpr(st, s.Value)
		recv := p.evalExpr(st, s.Object)
		p.checkDeref(recv, s.Attr)
		if root := rootName(s.Object); root != "" {
			if _, ok := p.params[root]; ok {
				p.ModifiedParams[root] = true
			} else if p.globals[root] {
				p.ModifiedGlobals[root] = true
			}
		}

	case lang.StmtReturn:
		param := ""
		v := domain.NullValue()
		if s.Value != nil {
			v = p.evalExpr(st, s.Value)
			if s.Value.Kind == lang.ExprName {
				if _, ok := p.params[s.Value.Name]; ok {
					param = s.Value.Name
				}
			}
		}
		p.recordReturn(v, param)

	case lang.StmtExpr:
		p.evalExpr(st, s.Expr)

	case lang.StmtGlobal, lang.StmtPass:
		// No state change.
	}
	return st
}

// rootName walks an attribute chain to its base variable, "" if the base is
// not a plain name.
func rootName(e *lang.Expr) string {
	for e != nil {
		switch e.Kind {
		case lang.ExprName:
			return e.Name
		case lang.ExprAttribute:
			e = e.Recv
		default:
			return ""
		}
	}
	return ""
}

func (p *FnPass) evalExpr(st domain.State, e *lang.Expr) domain.Value {
	if e == nil {
		return domain.TopValue()
	}
	switch e.Kind {
	case lang.ExprName:
		return st.Get(e.Name)
	case lang.ExprIntLit:
		return domain.IntValue(e.Int)
	case lang.ExprBoolLit:
		if e.Bool {
			return domain.IntValue(1)
		}
		return domain.IntValue(0)
	case lang.ExprStrLit, lang.ExprNew:
		return domain.ObjectValue()
	case lang.ExprNullLit:
		return domain.NullValue()
	case lang.ExprBinOp:
		return p.evalBinOp(st, e)
	case lang.ExprCall:
		return p.evalCall(st, e)
	case lang.ExprAttribute:
		recv := p.evalExpr(st, e.Recv)
		p.checkDeref(recv, e.Name)
		return domain.TopValue()
	}
	return domain.TopValue()
}

func (p *FnPass) evalBinOp(st domain.State, e *lang.Expr) domain.Value {
	l := p.evalExpr(st, e.Left)
	r := p.evalExpr(st, e.Right)
	switch e.Op {
	case "+":
		return domain.Value{
			Sign:  domain.SignAdd(l.Sign, r.Sign),
			Null:  domain.NotNull,
			Range: domain.AddInterval(l.Range, r.Range),
		}
	case "-":
		return domain.Value{
			Sign:  domain.SignAdd(l.Sign, domain.SignNeg(r.Sign)),
			Null:  domain.NotNull,
			Range: domain.SubInterval(l.Range, r.Range),
		}
	case "*":
		return domain.Value{
			Sign:  domain.SignMul(l.Sign, r.Sign),
			Null:  domain.NotNull,
			Range: domain.MulInterval(l.Range, r.Range),
		}
	case "/", "%":
		if r.Range.Contains(0) || r.Sign == domain.SignZero || r.Sign == domain.SignTop {
			p.MayThrow = true
			p.warnf("possible division by zero in %s", p.Cfg.Fn)
		}
		return domain.Value{Sign: domain.SignTop, Null: domain.NotNull, Range: domain.TopInterval()}
	case "==", "!=", "<", "<=", ">", ">=":
		return boolValue()
	case "and", "or":
		// Short-circuit operators yield one of their operands.
		return domain.JoinValue(l, r)
	}
	return domain.TopValue()
}

func boolValue() domain.Value {
	iv := domain.Interval{Lo: 0, Hi: 1}
	return domain.Value{Sign: domain.SignOfInterval(iv), Null: domain.NotNull, Range: iv}
}

func (p *FnPass) evalCall(st domain.State, e *lang.Expr) domain.Value {
	args := make([]domain.Value, len(e.Args))
	for i, a := range e.Args {
		args[i] = p.evalExpr(st, a)
	}
	if e.Recv != nil {
		recv := p.evalExpr(st, e.Recv)
		p.checkDeref(recv, e.Name)
	} else if lang.IsIOBuiltin(e.Name) {
		p.PerformsIO = true
		return domain.TopValue()
	}

	var eff CallEffect
	if p.Resolver != nil {
		eff = p.Resolver.ResolveCall(p.Cfg.Fn, e, args)
	} else {
		eff = TopEffect()
	}
	p.MayThrow = p.MayThrow || eff.MayThrow
	p.PerformsIO = p.PerformsIO || eff.PerformsIO
	p.CallsExternal = p.CallsExternal || eff.CallsExternal
	for _, g := range eff.ModifiedGlobals {
		p.ModifiedGlobals[g] = true
	}
	for _, i := range eff.ModifiedParams {
		if i < len(e.Args) && e.Args[i].Kind == lang.ExprName {
			if _, ok := p.params[e.Args[i].Name]; ok {
				p.ModifiedParams[e.Args[i].Name] = true
			}
		}
	}
	return eff.Return
}

func (p *FnPass) checkDeref(recv domain.Value, member string) {
	switch recv.Null {
	case domain.DefinitelyNull:
		p.MayThrow = true
		p.warnf("null dereference of .%s in %s", member, p.Cfg.Fn)
	case domain.Nullable:
		p.MayThrow = true
		log.Debugf("possibly-null dereference of .%s in %s", member, p.Cfg.Fn)
	}
}

// narrow refines st along one branch of cond. It returns nil when the branch
// is infeasible under st.
func (p *FnPass) narrow(st domain.State, cond *lang.Expr, branch bool) domain.State {
	if st == nil || cond == nil {
		return st
	}
	switch cond.Kind {
	case lang.ExprBoolLit:
		if cond.Bool != branch {
			return nil
		}
		return st
	case lang.ExprIntLit:
		if (cond.Int != 0) != branch {
			return nil
		}
		return st
	case lang.ExprNullLit:
		if branch {
			return nil
		}
		return st
	case lang.ExprName:
		return p.narrowTruthy(st, cond.Name, branch)
	case lang.ExprBinOp:
		switch cond.Op {
		case "==", "!=", "<", "<=", ">", ">=":
			return p.narrowCompare(st, cond, branch)
		case "and":
			if branch {
				return p.narrow(p.narrow(st, cond.Left, true), cond.Right, true)
			}
		case "or":
			if !branch {
				return p.narrow(p.narrow(st, cond.Left, false), cond.Right, false)
			}
		}
	}
	return st
}

// narrowTruthy refines a bare `if x:` test. Truthy excludes null and zero;
// falsy pins a known-non-null value to zero.
func (p *FnPass) narrowTruthy(st domain.State, name string, branch bool) domain.State {
	v := st.Get(name)
	out := st.Copy()
	if branch {
		if v.Null == domain.DefinitelyNull || v.Sign == domain.SignZero {
			return nil
		}
		nv := v
		nv.Null = domain.NotNull
		nv.Range = nv.Range.ExcludeConst(0)
		if nv.Range.IsBottom() && !v.Range.IsBottom() {
			return nil
		}
		nv.Sign = domain.MeetSign(nv.Sign, domain.SignOfInterval(nv.Range))
		out.Set(name, nv)
		return out
	}
	if v.Null == domain.NotNull {
		// Falsy and non-null: the value is zero.
		nv := v
		nv.Range = domain.MeetInterval(v.Range, domain.ConstInterval(0))
		if nv.Range.IsBottom() && !v.Range.IsBottom() {
			return nil
		}
		nv.Sign = domain.MeetSign(v.Sign, domain.SignZero)
		out.Set(name, nv)
	}
	return out
}

func flipOp(op string) string {
	switch op {
	case "<":
		return ">"
	case "<=":
		return ">="
	case ">":
		return "<"
	case ">=":
		return "<="
	}
	return op // == and != are symmetric
}

func negateOp(op string) string {
	switch op {
	case "==":
		return "!="
	case "!=":
		return "=="
	case "<":
		return ">="
	case "<=":
		return ">"
	case ">":
		return "<="
	case ">=":
		return "<"
	}
	return op
}

func (p *FnPass) narrowCompare(st domain.State, cond *lang.Expr, branch bool) domain.State {
	op := cond.Op
	if !branch {
		op = negateOp(op)
	}
	out := st
	if cond.Left.Kind == lang.ExprName {
		rhs := p.evalExpr(st, cond.Right)
		out = applyCompare(out, cond.Left.Name, op, rhs, cond.Right.Kind == lang.ExprNullLit)
	}
	if out != nil && cond.Right.Kind == lang.ExprName {
		lhs := p.evalExpr(st, cond.Left)
		out = applyCompare(out, cond.Right.Name, flipOp(op), lhs, cond.Left.Kind == lang.ExprNullLit)
	}
	return out
}

// applyCompare narrows one named variable by `name op rhs`, returning nil for
// an infeasible constraint. rhsIsNull distinguishes the null literal from an
// expression that merely may be null.
func applyCompare(st domain.State, name, op string, rhs domain.Value, rhsIsNull bool) domain.State {
	if st == nil {
		return nil
	}
	v := st.Get(name)
	nv := v

	ordered := op == "<" || op == "<=" || op == ">" || op == ">="
	if ordered && rhs.Range.IsBottom() {
		// Nothing numeric to compare against.
		return st
	}

	switch op {
	case "==":
		if rhsIsNull {
			if v.Null == domain.NotNull {
				return nil
			}
			nv = domain.NullValue()
		} else {
			nv.Range = domain.MeetInterval(v.Range, rhs.Range)
			if nv.Range.IsBottom() && !v.Range.IsBottom() && !rhs.Range.IsBottom() {
				return nil
			}
			nv.Sign = domain.MeetSign(v.Sign, rhs.Sign)
			nv.Null = domain.NotNull
		}
	case "!=":
		if rhsIsNull {
			if v.Null == domain.DefinitelyNull {
				return nil
			}
			nv.Null = domain.NotNull
		} else if k, ok := rhs.Range.IsConst(); ok {
			nv.Range = v.Range.ExcludeConst(k)
			if nv.Range.IsBottom() && !v.Range.IsBottom() {
				return nil
			}
			nv.Sign = domain.MeetSign(v.Sign, domain.SignOfInterval(nv.Range))
		}
	case "<":
		nv.Range = v.Range.LimitLT(rhs.Range.Hi)
		nv.Null = domain.NotNull
	case "<=":
		nv.Range = v.Range.LimitHi(rhs.Range.Hi)
		nv.Null = domain.NotNull
	case ">":
		nv.Range = v.Range.LimitGT(rhs.Range.Lo)
		nv.Null = domain.NotNull
	case ">=":
		nv.Range = v.Range.LimitLo(rhs.Range.Lo)
		nv.Null = domain.NotNull
	}

	if ordered {
		if nv.Range.IsBottom() && !v.Range.IsBottom() {
			return nil
		}
		nv.Sign = domain.MeetSign(v.Sign, domain.SignOfInterval(nv.Range))
	}

	out := st.Copy()
	out.Set(name, nv)
	return out
}
