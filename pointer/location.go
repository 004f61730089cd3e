// Package pointer implements a whole-program, flow-insensitive,
// field-sensitive Andersen points-to analysis. Abstract locations are
// interned to dense ids; points-to sets are sparse bitsets over those ids and
// only ever grow, so the subset-constraint solver terminates without
// widening.
package pointer

import "fmt"

// LocKind tags the abstract location variants.
type LocKind int

const (
	StackLoc  LocKind = iota // local variable Name in function Fn
	HeapLoc                  // object allocated at Site, of class Name
	GlobalLoc                // global variable Name
	FieldLoc                 // field Name of the object with id Base
)

// Location is one abstract memory location. The struct is comparable and
// doubles as its own interning key.
type Location struct {
	Kind LocKind
	Name string
	Fn   string
	Site int
	Base int
}

func (l Location) String() string {
	switch l.Kind {
	case StackLoc:
		return fmt.Sprintf("%s.%s", l.Fn, l.Name)
	case HeapLoc:
		return fmt.Sprintf("alloc@%d(%s)", l.Site, l.Name)
	case GlobalLoc:
		return fmt.Sprintf("global:%s", l.Name)
	case FieldLoc:
		return fmt.Sprintf("n%d.%s", l.Base, l.Name)
	}
	return "?"
}

func stackLoc(fn, name string) Location { return Location{Kind: StackLoc, Fn: fn, Name: name} }
func heapLoc(site int, class string) Location {
	return Location{Kind: HeapLoc, Site: site, Name: class}
}
func globalLoc(name string) Location { return Location{Kind: GlobalLoc, Name: name} }

// retName is the synthetic variable holding a function's return value.
const retName = "$ret"
