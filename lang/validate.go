package lang

import "fmt"

// ValidateFunc checks that a function body is structurally sound: every
// statement and expression carries the fields its kind requires. The
// analyzer records a per-function error and skips analysis on failure.
func ValidateFunc(fn *FuncDef) error {
	if fn.Name == "" {
		return fmt.Errorf("function with empty name")
	}
	return validateStmts(fn.Name, fn.Body)
}

func validateStmts(fn string, stmts []*Stmt) error {
	for _, s := range stmts {
		if s == nil {
			return fmt.Errorf("%s: nil statement", fn)
		}
		switch s.Kind {
		case StmtAssign:
			if s.Target == "" || s.Value == nil {
				return fmt.Errorf("%s: assignment missing target or value", fn)
			}
		case StmtAssignAttr:
			if s.Object == nil || s.Attr == "" || s.Value == nil {
				return fmt.Errorf("%s: attribute assignment missing object, attribute, or value", fn)
			}
		case StmtIf, StmtWhile:
			if s.Cond == nil {
				return fmt.Errorf("%s: %s without condition", fn, s.Kind)
			}
		case StmtExpr:
			if s.Expr == nil {
				return fmt.Errorf("%s: expression statement without expression", fn)
			}
		case StmtGlobal:
			if s.Target == "" {
				return fmt.Errorf("%s: global statement without name", fn)
			}
		case StmtReturn, StmtTry, StmtPass:
			// No required fields.
		default:
			return fmt.Errorf("%s: unknown statement kind %d", fn, s.Kind)
		}
		for _, e := range []*Expr{s.Object, s.Value, s.Cond, s.Expr} {
			if err := validateExpr(fn, e); err != nil {
				return err
			}
		}
		for _, body := range [][]*Stmt{s.Body, s.Else, s.Handler} {
			if err := validateStmts(fn, body); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateExpr(fn string, e *Expr) error {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case ExprName:
		if e.Name == "" {
			return fmt.Errorf("%s: name reference without name", fn)
		}
	case ExprBinOp:
		if e.Left == nil || e.Right == nil || e.Op == "" {
			return fmt.Errorf("%s: binary operator missing operand or op", fn)
		}
	case ExprCall:
		if e.Name == "" {
			return fmt.Errorf("%s: call without callee name", fn)
		}
	case ExprAttribute:
		if e.Recv == nil || e.Name == "" {
			return fmt.Errorf("%s: attribute access missing receiver or name", fn)
		}
	case ExprNew:
		if e.Name == "" {
			return fmt.Errorf("%s: allocation without class name", fn)
		}
	case ExprIntLit, ExprStrLit, ExprBoolLit, ExprNullLit:
		// Literals are always well-formed.
	default:
		return fmt.Errorf("%s: unknown expression kind %d", fn, e.Kind)
	}
	for _, sub := range []*Expr{e.Left, e.Right, e.Recv} {
		if err := validateExpr(fn, sub); err != nil {
			return err
		}
	}
	for _, a := range e.Args {
		if err := validateExpr(fn, a); err != nil {
			return err
		}
	}
	return nil
}
