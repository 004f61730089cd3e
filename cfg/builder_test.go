package cfg

import (
	"testing"

	"github.com/agheieff/RegionAI-sub002/lang"
)

func TestEmptyBody(t *testing.T) {
	g := Build(lang.Func("empty", nil))
	if g.Entry != g.Exit {
		t.Error("empty body should collapse entry and exit")
	}
	if len(g.Blocks) != 1 {
		t.Errorf("got %d blocks, want 1", len(g.Blocks))
	}
}

func TestStraightLine(t *testing.T) {
	g := Build(lang.Func("f", nil,
		lang.Assign("x", lang.IntLit(1)),
		lang.Return(lang.Name("x")),
	))
	if len(g.Entry.Stmts) != 2 {
		t.Errorf("entry holds %d stmts, want 2", len(g.Entry.Stmts))
	}
	if len(g.Entry.Succs) != 1 || g.Entry.Succs[0] != g.Exit {
		t.Error("return should flow straight to exit")
	}
}

func TestIfElseDiamond(t *testing.T) {
	g := Build(lang.Func("f", []string{"n"},
		lang.If(lang.BinOp("<", lang.Name("n"), lang.IntLit(0)),
			[]*lang.Stmt{lang.Assign("x", lang.IntLit(1))},
			[]*lang.Stmt{lang.Assign("x", lang.IntLit(2))}),
		lang.Return(lang.Name("x")),
	))
	cond := g.Entry
	if cond.Branch == nil {
		t.Fatal("entry should end in a branch")
	}
	if cond.TrueSucc == nil || cond.FalseSucc == nil || cond.TrueSucc == cond.FalseSucc {
		t.Fatal("branch needs distinct true/false successors")
	}
	// Both arms must rejoin before the return.
	join := cond.TrueSucc.Succs[0]
	if cond.FalseSucc.Succs[0] != join {
		t.Error("then and else arms should merge at one join block")
	}
	if len(join.Preds) != 2 {
		t.Errorf("join has %d preds, want 2", len(join.Preds))
	}
}

func TestWhileLoopShape(t *testing.T) {
	g := Build(lang.Func("f", []string{"n"},
		lang.Assign("x", lang.IntLit(0)),
		lang.While(lang.BinOp("<", lang.Name("x"), lang.Name("n")),
			[]*lang.Stmt{lang.Assign("x", lang.BinOp("+", lang.Name("x"), lang.IntLit(1)))}),
		lang.Return(lang.Name("x")),
	))
	var header *Block
	for _, b := range g.Blocks {
		if b.IsLoopHeader {
			header = b
		}
	}
	if header == nil {
		t.Fatal("no loop header marked")
	}
	if header.Branch == nil || header.TrueSucc == nil || header.FalseSucc == nil {
		t.Fatal("loop header must branch on the loop condition")
	}
	backEdge := false
	for _, s := range header.TrueSucc.Succs {
		if s == header {
			backEdge = true
		}
	}
	if !backEdge {
		t.Error("loop body should branch back to the header")
	}
	if len(header.Preds) < 2 {
		t.Errorf("header has %d preds, want entry plus back edge", len(header.Preds))
	}
}

func TestCodeAfterReturnIsUnreachable(t *testing.T) {
	g := Build(lang.Func("f", nil,
		lang.Return(lang.IntLit(1)),
		lang.Assign("x", lang.IntLit(2)),
	))
	found := false
	for _, b := range g.Blocks {
		if b != g.Entry && len(b.Preds) == 0 && len(b.Stmts) > 0 {
			found = true
		}
	}
	if !found {
		t.Error("statements after return should land in a block with no predecessors")
	}
}

func TestTryHandlerEdges(t *testing.T) {
	g := Build(lang.Func("f", nil,
		lang.Try(
			[]*lang.Stmt{lang.Assign("x", lang.IntLit(1))},
			[]*lang.Stmt{lang.Assign("x", lang.IntLit(2))}),
		lang.Return(lang.Name("x")),
	))
	// The handler must be reachable: some block other than the body's normal
	// successor flows into it.
	var handler *Block
	for _, b := range g.Blocks {
		if len(b.Stmts) == 1 && b.Stmts[0].Kind == lang.StmtAssign && b.Stmts[0].Value.Int == 2 {
			handler = b
		}
	}
	if handler == nil {
		t.Fatal("handler block not found")
	}
	if len(handler.Preds) == 0 {
		t.Error("handler should be reachable from the try body")
	}
}
