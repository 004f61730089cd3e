// Package lang defines the generic syntax trees consumed by the analysis
// engine. The concrete parser is an external collaborator; anything that can
// produce these nodes (a front end, the JSON decoder in this package, or a
// test) can drive the analyzer.
package lang

// StmtKind enumerates every statement shape the engine understands.
type StmtKind int

const (
	StmtAssign StmtKind = iota // Target = Value
	StmtAssignAttr             // Object.Attr = Value
	StmtIf                     // if Cond: Body else: Else
	StmtWhile                  // while Cond: Body
	StmtReturn                 // return Value (nil Value = bare return)
	StmtExpr                   // expression statement
	StmtTry                    // try: Body except: Handler
	StmtGlobal                 // global Target
	StmtPass
)

func (k StmtKind) String() string {
	switch k {
	case StmtAssign:
		return "assign"
	case StmtAssignAttr:
		return "assign-attr"
	case StmtIf:
		return "if"
	case StmtWhile:
		return "while"
	case StmtReturn:
		return "return"
	case StmtExpr:
		return "expr"
	case StmtTry:
		return "try"
	case StmtGlobal:
		return "global"
	case StmtPass:
		return "pass"
	}
	return "unknown"
}

// ExprKind enumerates every expression shape the engine understands.
type ExprKind int

const (
	ExprName ExprKind = iota
	ExprIntLit
	ExprStrLit
	ExprBoolLit
	ExprNullLit
	ExprBinOp     // Left Op Right
	ExprCall      // Func(Args...) or Recv.Name(Args...) when Recv != nil
	ExprAttribute // Recv.Name
	ExprNew       // allocation of class Name at site Pos
)

func (k ExprKind) String() string {
	switch k {
	case ExprName:
		return "name"
	case ExprIntLit:
		return "int"
	case ExprStrLit:
		return "str"
	case ExprBoolLit:
		return "bool"
	case ExprNullLit:
		return "null"
	case ExprBinOp:
		return "binop"
	case ExprCall:
		return "call"
	case ExprAttribute:
		return "attribute"
	case ExprNew:
		return "new"
	}
	return "unknown"
}

// Stmt is a single statement node. Which fields are meaningful depends on
// Kind; unused fields stay zero.
type Stmt struct {
	Kind    StmtKind
	Target  string  // Assign, Global
	Object  *Expr   // AssignAttr base
	Attr    string  // AssignAttr field name
	Value   *Expr   // Assign, AssignAttr, Return
	Cond    *Expr   // If, While
	Body    []*Stmt // If then-branch, While body, Try body
	Else    []*Stmt // If else-branch
	Handler []*Stmt // Try handler
	Expr    *Expr   // ExprStmt
	Pos     int
}

// Expr is a single expression node.
type Expr struct {
	Kind  ExprKind
	Name  string // Name ref, attribute/method name, callee name, class name
	Int   int64
	Str   string
	Bool  bool
	Op    string // BinOp: + - * / % == != < <= > >= and or
	Left  *Expr
	Right *Expr
	Recv  *Expr // Attribute base, method-call receiver
	Args  []*Expr
	Pos   int // also serves as the allocation/call site id
}

// FuncDef is one function definition.
type FuncDef struct {
	Name   string
	Params []string
	Body   []*Stmt
}

// ClassDef is one class declaration with its direct bases.
type ClassDef struct {
	Name    string
	Bases   []string
	Methods []*FuncDef
	Attrs   []string
}

// Program is a whole parsed program, the unit of one analysis run.
type Program struct {
	Functions []*FuncDef
	Classes   []*ClassDef
}

// Function returns the named function definition, or nil.
func (p *Program) Function(name string) *FuncDef {
	for _, fn := range p.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// Builtins whose calls the engine treats as I/O rather than external code.
var ioBuiltins = map[string]bool{
	"print": true,
	"input": true,
	"open":  true,
	"write": true,
	"read":  true,
}

// IsIOBuiltin reports whether a callee name denotes a known I/O builtin.
func IsIOBuiltin(name string) bool {
	return ioBuiltins[name]
}
