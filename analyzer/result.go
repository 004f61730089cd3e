package analyzer

import (
	"github.com/agheieff/RegionAI-sub002/callgraph"
	"github.com/agheieff/RegionAI-sub002/cha"
	"github.com/agheieff/RegionAI-sub002/pointer"
	"github.com/agheieff/RegionAI-sub002/summary"
)

// TerminationReason says how the interprocedural fixpoint ended. It is a
// result value the caller inspects, never an error or a panic.
type TerminationReason int

const (
	Converged TerminationReason = iota
	BudgetExhausted
	RecursionCapped
)

func (t TerminationReason) String() string {
	switch t {
	case Converged:
		return "converged"
	case BudgetExhausted:
		return "budget-exhausted"
	case RecursionCapped:
		return "recursion-capped"
	}
	return "unknown"
}

// AnalysisError is a fatal-to-one-function failure; the rest of the run
// proceeds.
type AnalysisError struct {
	Fn  string
	Msg string
}

func (e AnalysisError) Error() string { return e.Fn + ": " + e.Msg }

// Warning records a non-fatal precision loss.
type Warning struct {
	Fn  string
	Msg string
}

// Result is everything one analysis run produced.
type Result struct {
	// Summaries holds each function's default (TOP) context summary.
	Summaries map[string]*summary.FnSummary
	// ContextSummaries holds every summarized context by its key.
	ContextSummaries map[string]*summary.FnSummary
	// Fingerprints are keyed the same way as ContextSummaries.
	Fingerprints map[string]summary.Fingerprint

	CallGraph *callgraph.Graph
	PointsTo  *pointer.Analysis
	Hierarchy *cha.Hierarchy

	Errors      []AnalysisError
	Warnings    []Warning
	Termination TerminationReason
}
