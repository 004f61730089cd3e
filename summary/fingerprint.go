package summary

import (
	"sort"
	"strings"

	"github.com/agheieff/RegionAI-sub002/domain"
)

// Tag is one behavioral property of a function in a context.
type Tag string

const (
	TagPure           Tag = "PURE"
	TagIdentity       Tag = "IDENTITY"
	TagConstantReturn Tag = "CONSTANT_RETURN"
	TagMayNotReturn   Tag = "MAY_NOT_RETURN"
	TagNullableReturn Tag = "NULLABLE_RETURN"
	TagModifiesGlobal Tag = "MODIFIES_GLOBALS"
	TagPerformsIO     Tag = "PERFORMS_IO"
	TagMayThrow       Tag = "MAY_THROW"
	TagRecursive      Tag = "RECURSIVE"
)

// Fingerprint is an immutable set of behavior tags attached to a call
// context. Compute it once per context via Derive and cache it.
type Fingerprint map[Tag]bool

func (f Fingerprint) Has(t Tag) bool { return f[t] }

func (f Fingerprint) String() string {
	tags := make([]string, 0, len(f))
	for t := range f {
		tags = append(tags, string(t))
	}
	sort.Strings(tags)
	return strings.Join(tags, ",")
}

// Derive computes the fingerprint of a summary. recursive comes from the
// call graph (SCC membership), the rest reads off the summary itself.
func Derive(s *FnSummary, recursive bool) Fingerprint {
	f := make(Fingerprint)
	if s.Effects.None() {
		f[TagPure] = true
	}
	if s.ReturnsParam != "" && s.Effects.None() {
		f[TagIdentity] = true
	}
	if !s.Return.AlwaysReturns {
		f[TagMayNotReturn] = true
	} else if _, ok := s.Return.Value.Range.IsConst(); ok {
		f[TagConstantReturn] = true
	} else if s.Return.Value.Null == domain.DefinitelyNull {
		// Always returning null is a constant return too.
		f[TagConstantReturn] = true
	}
	switch s.Return.Value.Null {
	case domain.DefinitelyNull, domain.Nullable:
		f[TagNullableReturn] = true
	}
	if len(s.Effects.ModifiedGlobals) > 0 {
		f[TagModifiesGlobal] = true
	}
	if s.Effects.PerformsIO {
		f[TagPerformsIO] = true
	}
	if s.Return.MayThrow {
		f[TagMayThrow] = true
	}
	if recursive {
		f[TagRecursive] = true
	}
	return f
}
