package pointer

import (
	log "github.com/sirupsen/logrus"
	"golang.org/x/tools/container/intsets"
)

// Solve propagates subset constraints to a fixpoint with difference
// propagation: each node remembers the points-to set it last pushed and only
// forwards the delta. Sets are monotone non-decreasing over a finite
// universe, so the loop terminates.
func (a *Analysis) Solve() {
	var x int
	var delta intsets.Sparse
	for a.work.TakeMin(&x) {
		n := x
		delta.Difference(a.pts[n], a.prevPTS[n])
		if delta.IsEmpty() {
			continue
		}
		a.prevPTS[n].Copy(a.pts[n])

		// Simple copy edges.
		for _, dst := range a.copyTo[n].AppendTo(nil) {
			if a.pts[dst].UnionWith(&delta) {
				a.work.Insert(dst)
			}
		}

		// Field transfer: each object newly reaching n materializes its own
		// field location for every load/store hanging off n.
		newObjs := delta.AppendTo(nil)
		for _, c := range a.loads[n] {
			for _, obj := range newObjs {
				if a.locs[obj].Kind != HeapLoc {
					continue
				}
				a.addCopy(a.fieldLoc(obj, c.field), c.dst)
			}
		}
		for _, c := range a.stores[n] {
			for _, obj := range newObjs {
				if a.locs[obj].Kind != HeapLoc {
					continue
				}
				a.addCopy(c.src, a.fieldLoc(obj, c.field))
			}
		}
	}
	log.Debugf("points-to solved: %d locations", len(a.locs))
}

// fieldLoc interns the object-specific field location, preserving field
// sensitivity for shapes discovered during solving.
func (a *Analysis) fieldLoc(obj int, field string) int {
	key := Location{Kind: FieldLoc, Name: field, Base: obj}
	if id, ok := a.fieldIDs[key]; ok {
		return id
	}
	id := a.loc(key)
	a.fieldIDs[key] = id
	return id
}

// varID resolves a variable to its location id: the function's stack slot if
// one exists, else the global of the same name.
func (a *Analysis) varID(fn, name string) (int, bool) {
	if id, ok := a.index[stackLoc(fn, name)]; ok {
		return id, true
	}
	id, ok := a.index[globalLoc(name)]
	return id, ok
}

// PointsTo returns the locations a function-local variable may point to.
func (a *Analysis) PointsTo(fn, name string) []Location {
	id, ok := a.varID(fn, name)
	if !ok {
		return nil
	}
	var out []Location
	for _, x := range a.pts[id].AppendTo(nil) {
		out = append(out, a.locs[x])
	}
	return out
}

// MayAlias reports whether the two variables' points-to sets intersect.
func (a *Analysis) MayAlias(fn1, var1, fn2, var2 string) bool {
	id1, ok1 := a.varID(fn1, var1)
	id2, ok2 := a.varID(fn2, var2)
	if !ok1 || !ok2 {
		return false
	}
	var isect intsets.Sparse
	isect.Intersection(a.pts[id1], a.pts[id2])
	return !isect.IsEmpty()
}

// PointedObjects returns just the heap objects reachable from a variable.
func (a *Analysis) PointedObjects(fn, name string) []Location {
	var out []Location
	for _, l := range a.PointsTo(fn, name) {
		if l.Kind == HeapLoc {
			out = append(out, l)
		}
	}
	return out
}
