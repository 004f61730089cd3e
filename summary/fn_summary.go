// Package summary defines reusable abstractions of a function's behavior:
// the per-context FnSummary and the semantic fingerprint derived from it.
package summary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agheieff/RegionAI-sub002/domain"
)

// ParamSummary is the abstract value one parameter held at entry for the
// summarized context.
type ParamSummary struct {
	Name  string
	Value domain.Value
}

// ReturnSummary abstracts every value the function can return in a context.
type ReturnSummary struct {
	Value         domain.Value
	AlwaysReturns bool
	MayThrow      bool
}

// SideEffects records a function's observable effects beyond its return
// value. Sets are sorted for stable output.
type SideEffects struct {
	ModifiedGlobals []string
	ModifiedParams  []string
	PerformsIO      bool
	CallsExternal   bool
}

func (se SideEffects) None() bool {
	return len(se.ModifiedGlobals) == 0 && len(se.ModifiedParams) == 0 &&
		!se.PerformsIO && !se.CallsExternal
}

// FnSummary is one function's behavior under one calling context.
type FnSummary struct {
	Fn             string
	Params         []ParamSummary
	Return         ReturnSummary
	Effects        SideEffects
	Preconditions  []string
	Postconditions []string

	// ReturnsParam names the parameter a pure identity function hands back.
	ReturnsParam string
}

// Conservative is the summary of a callee the analysis could not resolve:
// TOP return, assumed throwing, assumed external.
func Conservative(fn string) *FnSummary {
	return &FnSummary{
		Fn: fn,
		Return: ReturnSummary{
			Value:    domain.TopValue(),
			MayThrow: true,
		},
		Effects: SideEffects{CallsExternal: true},
	}
}

// SetFromMaps fills the effect sets from the pass's accumulation maps.
func (s *FnSummary) SetFromMaps(globals, params map[string]bool) {
	s.Effects.ModifiedGlobals = sortedKeys(globals)
	s.Effects.ModifiedParams = sortedKeys(params)
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *FnSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(", s.Fn)
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s", p.Name, p.Value)
	}
	fmt.Fprintf(&b, ") -> %s", s.Return.Value)
	if !s.Return.AlwaysReturns {
		b.WriteString(" [may not return]")
	}
	if s.Return.MayThrow {
		b.WriteString(" [may throw]")
	}
	return b.String()
}
