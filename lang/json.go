package lang

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSON wire form of a Program, the hand-off format from external parsers.
// Node kinds are spelled out as strings so dumps stay readable.

type jsonProgram struct {
	Functions []*jsonFunc  `json:"functions"`
	Classes   []*jsonClass `json:"classes,omitempty"`
}

type jsonFunc struct {
	Name   string      `json:"name"`
	Params []string    `json:"params"`
	Body   []*jsonStmt `json:"body"`
}

type jsonClass struct {
	Name    string      `json:"name"`
	Bases   []string    `json:"bases,omitempty"`
	Methods []*jsonFunc `json:"methods,omitempty"`
	Attrs   []string    `json:"attrs,omitempty"`
}

type jsonStmt struct {
	Kind    string      `json:"kind"`
	Target  string      `json:"target,omitempty"`
	Object  *jsonExpr   `json:"object,omitempty"`
	Attr    string      `json:"attr,omitempty"`
	Value   *jsonExpr   `json:"value,omitempty"`
	Cond    *jsonExpr   `json:"cond,omitempty"`
	Body    []*jsonStmt `json:"body,omitempty"`
	Else    []*jsonStmt `json:"else,omitempty"`
	Handler []*jsonStmt `json:"handler,omitempty"`
	Expr    *jsonExpr   `json:"expr,omitempty"`
	Pos     int         `json:"pos,omitempty"`
}

type jsonExpr struct {
	Kind  string      `json:"kind"`
	Name  string      `json:"name,omitempty"`
	Int   int64       `json:"int,omitempty"`
	Str   string      `json:"str,omitempty"`
	Bool  bool        `json:"bool,omitempty"`
	Op    string      `json:"op,omitempty"`
	Left  *jsonExpr   `json:"left,omitempty"`
	Right *jsonExpr   `json:"right,omitempty"`
	Recv  *jsonExpr   `json:"recv,omitempty"`
	Args  []*jsonExpr `json:"args,omitempty"`
	Pos   int         `json:"pos,omitempty"`
}

var stmtKinds = map[string]StmtKind{
	"assign":      StmtAssign,
	"assign-attr": StmtAssignAttr,
	"if":          StmtIf,
	"while":       StmtWhile,
	"return":      StmtReturn,
	"expr":        StmtExpr,
	"try":         StmtTry,
	"global":      StmtGlobal,
	"pass":        StmtPass,
}

var exprKinds = map[string]ExprKind{
	"name":      ExprName,
	"int":       ExprIntLit,
	"str":       ExprStrLit,
	"bool":      ExprBoolLit,
	"null":      ExprNullLit,
	"binop":     ExprBinOp,
	"call":      ExprCall,
	"attribute": ExprAttribute,
	"new":       ExprNew,
}

// DecodeProgram reads a JSON-encoded Program. Unknown node kinds are decode
// errors; the engine never guesses at malformed input.
func DecodeProgram(r io.Reader) (*Program, error) {
	var jp jsonProgram
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&jp); err != nil {
		return nil, fmt.Errorf("decoding program: %w", err)
	}
	prog := &Program{}
	for _, jf := range jp.Functions {
		fn, err := decodeFunc(jf)
		if err != nil {
			return nil, err
		}
		prog.Functions = append(prog.Functions, fn)
	}
	for _, jc := range jp.Classes {
		cls := &ClassDef{Name: jc.Name, Bases: jc.Bases, Attrs: jc.Attrs}
		for _, jm := range jc.Methods {
			m, err := decodeFunc(jm)
			if err != nil {
				return nil, err
			}
			cls.Methods = append(cls.Methods, m)
		}
		prog.Classes = append(prog.Classes, cls)
	}
	return prog, nil
}

func decodeFunc(jf *jsonFunc) (*FuncDef, error) {
	body, err := decodeStmts(jf.Body)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", jf.Name, err)
	}
	return &FuncDef{Name: jf.Name, Params: jf.Params, Body: body}, nil
}

func decodeStmts(js []*jsonStmt) ([]*Stmt, error) {
	var out []*Stmt
	for _, j := range js {
		s, err := decodeStmt(j)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeStmt(j *jsonStmt) (*Stmt, error) {
	kind, ok := stmtKinds[j.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown statement kind %q", j.Kind)
	}
	s := &Stmt{Kind: kind, Target: j.Target, Attr: j.Attr, Pos: j.Pos}
	var err error
	if s.Object, err = decodeExpr(j.Object); err != nil {
		return nil, err
	}
	if s.Value, err = decodeExpr(j.Value); err != nil {
		return nil, err
	}
	if s.Cond, err = decodeExpr(j.Cond); err != nil {
		return nil, err
	}
	if s.Expr, err = decodeExpr(j.Expr); err != nil {
		return nil, err
	}
	if s.Body, err = decodeStmts(j.Body); err != nil {
		return nil, err
	}
	if s.Else, err = decodeStmts(j.Else); err != nil {
		return nil, err
	}
	if s.Handler, err = decodeStmts(j.Handler); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeExpr(j *jsonExpr) (*Expr, error) {
	if j == nil {
		return nil, nil
	}
	kind, ok := exprKinds[j.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown expression kind %q", j.Kind)
	}
	e := &Expr{Kind: kind, Name: j.Name, Int: j.Int, Str: j.Str, Bool: j.Bool, Op: j.Op, Pos: j.Pos}
	var err error
	if e.Left, err = decodeExpr(j.Left); err != nil {
		return nil, err
	}
	if e.Right, err = decodeExpr(j.Right); err != nil {
		return nil, err
	}
	if e.Recv, err = decodeExpr(j.Recv); err != nil {
		return nil, err
	}
	for _, ja := range j.Args {
		a, err := decodeExpr(ja)
		if err != nil {
			return nil, err
		}
		e.Args = append(e.Args, a)
	}
	return e, nil
}
