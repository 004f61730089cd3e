package lang

import "sync/atomic"

// Constructor helpers. Front ends and tests assemble trees with these instead
// of filling struct fields by hand; each helper sets exactly the fields its
// kind uses.

var nextPos atomic.Int64

// site hands out fresh position ids so hand-built trees still have distinct
// allocation/call sites, even when built from parallel tests.
func site() int {
	return int(nextPos.Add(1))
}

func Name(name string) *Expr        { return &Expr{Kind: ExprName, Name: name, Pos: site()} }
func IntLit(v int64) *Expr          { return &Expr{Kind: ExprIntLit, Int: v, Pos: site()} }
func StrLit(s string) *Expr         { return &Expr{Kind: ExprStrLit, Str: s, Pos: site()} }
func BoolLit(b bool) *Expr          { return &Expr{Kind: ExprBoolLit, Bool: b, Pos: site()} }
func NullLit() *Expr                { return &Expr{Kind: ExprNullLit, Pos: site()} }
func New(class string) *Expr        { return &Expr{Kind: ExprNew, Name: class, Pos: site()} }
func Attribute(recv *Expr, name string) *Expr {
	return &Expr{Kind: ExprAttribute, Recv: recv, Name: name, Pos: site()}
}

func BinOp(op string, left, right *Expr) *Expr {
	return &Expr{Kind: ExprBinOp, Op: op, Left: left, Right: right, Pos: site()}
}

func Call(callee string, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, Name: callee, Args: args, Pos: site()}
}

// MethodCall builds recv.name(args...).
func MethodCall(recv *Expr, name string, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, Recv: recv, Name: name, Args: args, Pos: site()}
}

func Assign(target string, value *Expr) *Stmt {
	return &Stmt{Kind: StmtAssign, Target: target, Value: value, Pos: site()}
}

func AssignAttr(object *Expr, attr string, value *Expr) *Stmt {
	return &Stmt{Kind: StmtAssignAttr, Object: object, Attr: attr, Value: value, Pos: site()}
}

func If(cond *Expr, body, els []*Stmt) *Stmt {
	return &Stmt{Kind: StmtIf, Cond: cond, Body: body, Else: els, Pos: site()}
}

func While(cond *Expr, body []*Stmt) *Stmt {
	return &Stmt{Kind: StmtWhile, Cond: cond, Body: body, Pos: site()}
}

func Return(value *Expr) *Stmt { return &Stmt{Kind: StmtReturn, Value: value, Pos: site()} }

func ExprStmt(e *Expr) *Stmt { return &Stmt{Kind: StmtExpr, Expr: e, Pos: site()} }

func Try(body, handler []*Stmt) *Stmt {
	return &Stmt{Kind: StmtTry, Body: body, Handler: handler, Pos: site()}
}

func Global(name string) *Stmt { return &Stmt{Kind: StmtGlobal, Target: name, Pos: site()} }

func Pass() *Stmt { return &Stmt{Kind: StmtPass, Pos: site()} }

func Func(name string, params []string, body ...*Stmt) *FuncDef {
	return &FuncDef{Name: name, Params: params, Body: body}
}

func Class(name string, bases []string, methods ...*FuncDef) *ClassDef {
	return &ClassDef{Name: name, Bases: bases, Methods: methods}
}
