package domain

import (
	"sort"
	"strings"
)

// State maps variable names to abstract values. A nil State is the
// unreachable (bottom) state; a missing entry reads as Top.
type State map[string]Value

func NewState() State { return make(State) }

// Get returns the tracked value, or Top for untracked variables.
func (s State) Get(name string) Value {
	if s == nil {
		return BottomValue()
	}
	if v, ok := s[name]; ok {
		return v
	}
	return TopValue()
}

// Set records a value. Storing into a nil (unreachable) state is a no-op.
func (s State) Set(name string, v Value) {
	if s == nil {
		return
	}
	s[name] = v
}

// Copy is a deep, independent clone. Mutating the copy never affects the
// original, which branch merging relies on.
func (s State) Copy() State {
	if s == nil {
		return nil
	}
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge joins two states pointwise over the union of their variables.
// Unreachable inputs are join identities.
func Merge(a, b State) State {
	if a == nil {
		return b.Copy()
	}
	if b == nil {
		return a.Copy()
	}
	out := make(State)
	for name, av := range a {
		out[name] = JoinValue(av, b.Get(name))
	}
	for name, bv := range b {
		if _, ok := a[name]; !ok {
			out[name] = JoinValue(a.Get(name), bv)
		}
	}
	return out
}

// Widen applies the widening operator pointwise, extrapolating any variable
// whose range is still growing.
func Widen(old, new State) State {
	if old == nil {
		return new.Copy()
	}
	if new == nil {
		return old.Copy()
	}
	out := make(State)
	for name, ov := range old {
		out[name] = WidenValue(ov, new.Get(name))
	}
	for name, nv := range new {
		if _, ok := old[name]; !ok {
			out[name] = WidenValue(old.Get(name), nv)
		}
	}
	return out
}

// Equal reports whether two states track the same variables with equal
// values.
func (s State) Equal(o State) bool {
	if s == nil || o == nil {
		return (s == nil) == (o == nil)
	}
	if len(s) != len(o) {
		return false
	}
	for k, v := range s {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

func (s State) String() string {
	if s == nil {
		return "⊥"
	}
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(s[k].String())
	}
	b.WriteByte('}')
	return b.String()
}
