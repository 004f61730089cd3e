package cfg

import (
	log "github.com/sirupsen/logrus"

	"github.com/agheieff/RegionAI-sub002/lang"
)

// Build constructs the CFG for one function by structural descent over its
// statement list. Each statement is visited exactly once; block splits happen
// at every branch and loop boundary.
func Build(fn *lang.FuncDef) *CFG {
	g := &CFG{Fn: fn.Name}
	entry := g.newBlock("entry")
	g.Entry = entry

	if len(fn.Body) == 0 {
		// Empty body: one block serves as both entry and exit.
		g.Exit = entry
		return g
	}

	g.Exit = g.newBlock("exit")
	b := builder{g: g}
	last := b.buildStmts(fn.Body, entry)
	if last != nil {
		g.addEdge(last, g.Exit)
	}
	log.Debugf("cfg for %s: %d blocks", fn.Name, len(g.Blocks))
	return g
}

type builder struct {
	g *CFG
}

// buildStmts threads the statement list through cur, returning the block
// control falls out of, or nil when every path has returned.
func (b *builder) buildStmts(stmts []*lang.Stmt, cur *Block) *Block {
	for _, s := range stmts {
		if cur == nil {
			// Unreachable code after a return still gets a block so the
			// fixpoint engine can flag it, but control never rejoins.
			cur = b.g.newBlock("unreachable")
		}
		switch s.Kind {
		case lang.StmtAssign, lang.StmtAssignAttr, lang.StmtExpr, lang.StmtGlobal, lang.StmtPass:
			cur.Stmts = append(cur.Stmts, s)

		case lang.StmtReturn:
			cur.Stmts = append(cur.Stmts, s)
			b.g.addEdge(cur, b.g.Exit)
			cur = nil

		case lang.StmtIf:
			cur = b.buildIf(s, cur)

		case lang.StmtWhile:
			cur = b.buildWhile(s, cur)

		case lang.StmtTry:
			cur = b.buildTry(s, cur)
		}
	}
	return cur
}

func (b *builder) buildIf(s *lang.Stmt, cur *Block) *Block {
	cur.Branch = s.Cond
	thenB := b.g.newBlock("if.then")
	elseB := b.g.newBlock("if.else")
	cur.TrueSucc, cur.FalseSucc = thenB, elseB
	b.g.addEdge(cur, thenB)
	b.g.addEdge(cur, elseB)

	thenEnd := b.buildStmts(s.Body, thenB)
	elseEnd := b.buildStmts(s.Else, elseB)
	if thenEnd == nil && elseEnd == nil {
		return nil
	}
	join := b.g.newBlock("if.done")
	if thenEnd != nil {
		b.g.addEdge(thenEnd, join)
	}
	if elseEnd != nil {
		b.g.addEdge(elseEnd, join)
	}
	return join
}

func (b *builder) buildWhile(s *lang.Stmt, cur *Block) *Block {
	header := b.g.newBlock("while.header")
	header.IsLoopHeader = true
	header.Branch = s.Cond
	b.g.addEdge(cur, header)

	body := b.g.newBlock("while.body")
	after := b.g.newBlock("while.done")
	header.TrueSucc, header.FalseSucc = body, after
	b.g.addEdge(header, body)
	b.g.addEdge(header, after)

	bodyEnd := b.buildStmts(s.Body, body)
	if bodyEnd != nil {
		// Back-edge into the header.
		b.g.addEdge(bodyEnd, header)
	}
	return after
}

// buildTry lowers a try/except to an edge from the protected block into the
// handler: any statement in the body may transfer there.
func (b *builder) buildTry(s *lang.Stmt, cur *Block) *Block {
	body := b.g.newBlock("try.body")
	handler := b.g.newBlock("try.handler")
	b.g.addEdge(cur, body)
	b.g.addEdge(body, handler)

	bodyEnd := b.buildStmts(s.Body, body)
	handlerEnd := b.buildStmts(s.Handler, handler)
	if bodyEnd == nil && handlerEnd == nil {
		return nil
	}
	join := b.g.newBlock("try.done")
	if bodyEnd != nil {
		b.g.addEdge(bodyEnd, join)
	}
	if handlerEnd != nil {
		b.g.addEdge(handlerEnd, join)
	}
	return join
}
