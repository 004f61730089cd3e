package analyzer

import (
	"fmt"
	"strings"

	"github.com/agheieff/RegionAI-sub002/domain"
)

// CallContext identifies one calling scenario: the function plus the
// abstract states of its arguments. Two contexts are equal iff their
// argument fingerprints are structurally equal; the string key is the
// memoization key for the summary cache.
type CallContext struct {
	Fn   string
	Args []domain.Value
	// CallSite optionally splits contexts per site; zero merges all sites
	// with the same argument states.
	CallSite int
}

// NewCallContext builds a context over the given argument values, padding
// missing arguments with TOP.
func NewCallContext(fn string, args []domain.Value, nparams int) CallContext {
	full := make([]domain.Value, nparams)
	for i := range full {
		if i < len(args) {
			full[i] = args[i]
		} else {
			full[i] = domain.TopValue()
		}
	}
	return CallContext{Fn: fn, Args: full}
}

// TopContext is the unconstrained entry context: every parameter TOP.
func TopContext(fn string, nparams int) CallContext {
	return NewCallContext(fn, nil, nparams)
}

// Key is the cache key. Contexts with equal keys are the same scenario.
func (c CallContext) Key() string {
	var b strings.Builder
	b.WriteString(c.Fn)
	b.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(a.Fingerprint())
	}
	b.WriteByte(')')
	if c.CallSite != 0 {
		fmt.Fprintf(&b, "@%d", c.CallSite)
	}
	return b.String()
}

// IsTop reports whether every argument is unconstrained.
func (c CallContext) IsTop() bool {
	for _, a := range c.Args {
		if !a.IsTop() {
			return false
		}
	}
	return true
}
