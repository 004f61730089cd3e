// Package cfg builds per-function control-flow graphs from statement trees.
// Graphs are built once and never mutated afterwards.
package cfg

import (
	"fmt"

	"github.com/agheieff/RegionAI-sub002/lang"
)

// Block is a maximal straight-line run of statements. A block that ends in a
// branch records the condition and its true/false successors so the fixpoint
// engine can narrow states per edge.
type Block struct {
	Index   int
	Comment string
	Stmts   []*lang.Stmt

	Preds []*Block
	Succs []*Block

	// Branch is the condition ending this block, nil for unconditional
	// fallthrough. TrueSucc/FalseSucc are only set when Branch is set.
	Branch    *lang.Expr
	TrueSucc  *Block
	FalseSucc *Block

	IsLoopHeader bool
}

func (b *Block) String() string {
	return fmt.Sprintf("block %d (%s)", b.Index, b.Comment)
}

// CFG is one function's control-flow graph: a unique entry, a unique exit,
// and the block set. The exit collects every return edge and the normal
// fall-off-the-end edge.
type CFG struct {
	Fn     string
	Entry  *Block
	Exit   *Block
	Blocks []*Block
}

func (g *CFG) addEdge(from, to *Block) {
	from.Succs = append(from.Succs, to)
	to.Preds = append(to.Preds, from)
}

func (g *CFG) newBlock(comment string) *Block {
	b := &Block{Index: len(g.Blocks), Comment: comment}
	g.Blocks = append(g.Blocks, b)
	return b
}
