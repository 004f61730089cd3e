// Package cha builds the class hierarchy and resolves polymorphic calls
// against it, driven by points-to facts for the receiver.
package cha

import (
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/agheieff/RegionAI-sub002/lang"
	"github.com/agheieff/RegionAI-sub002/pointer"
)

// ClassInfo is one declared class with its linearized resolution order:
// self, then each base's own order merged by first occurrence, then the
// implicit object root.
type ClassInfo struct {
	Name    string
	Bases   []string
	Methods map[string]*lang.FuncDef
	Attrs   []string
	MRO     []string
}

// MethodTarget is one possible outcome of a dynamic dispatch: the class
// whose declaration is selected and the method body itself.
type MethodTarget struct {
	Class  string
	Method *lang.FuncDef
}

// Hierarchy indexes every declared class. Built once per analysis run.
type Hierarchy struct {
	classes  map[string]*ClassInfo
	Warnings []string
}

const rootClass = "object"

// Build indexes the program's classes and precomputes each linearization.
func Build(prog *lang.Program) *Hierarchy {
	h := &Hierarchy{classes: make(map[string]*ClassInfo)}
	for _, cls := range prog.Classes {
		info := &ClassInfo{
			Name:    cls.Name,
			Bases:   cls.Bases,
			Methods: make(map[string]*lang.FuncDef),
			Attrs:   cls.Attrs,
		}
		for _, m := range cls.Methods {
			info.Methods[m.Name] = m
		}
		h.classes[cls.Name] = info
	}
	for name := range h.classes {
		h.linearize(name, make(map[string]bool))
	}
	return h
}

// linearize fills in the MRO, guarding against inheritance cycles.
func (h *Hierarchy) linearize(name string, inProgress map[string]bool) []string {
	info := h.classes[name]
	if info == nil {
		return []string{name}
	}
	if info.MRO != nil {
		return info.MRO
	}
	if inProgress[name] {
		h.warnf("inheritance cycle through class %s", name)
		return []string{name}
	}
	inProgress[name] = true

	order := []string{name}
	seen := map[string]bool{name: true}
	for _, base := range info.Bases {
		for _, c := range h.linearize(base, inProgress) {
			if !seen[c] && c != rootClass {
				seen[c] = true
				order = append(order, c)
			}
		}
	}
	order = append(order, rootClass)
	delete(inProgress, name)
	info.MRO = order
	return order
}

// Class returns the named class, nil if undeclared.
func (h *Hierarchy) Class(name string) *ClassInfo { return h.classes[name] }

// ResolveMethod walks the class's resolution order and returns the first
// declaration of method.
func (h *Hierarchy) ResolveMethod(class, method string) (MethodTarget, bool) {
	info := h.classes[class]
	if info == nil {
		return MethodTarget{}, false
	}
	for _, c := range info.MRO {
		if ci := h.classes[c]; ci != nil {
			if m, ok := ci.Methods[method]; ok {
				return MethodTarget{Class: c, Method: m}, true
			}
		}
	}
	return MethodTarget{}, false
}

// ResolveCall resolves a polymorphic call: each heap object the receiver may
// point at contributes the first declarer of method along its class's
// resolution order. Multiple entries are a disjunction of possible targets.
// An unknown receiver degrades to every class declaring the method, recorded
// as a precision-loss warning.
func (h *Hierarchy) ResolveCall(receiverObjs []pointer.Location, method string) []MethodTarget {
	classes := make(map[string]bool)
	for _, obj := range receiverObjs {
		if obj.Kind == pointer.HeapLoc && obj.Name != "" {
			classes[obj.Name] = true
		}
	}
	if len(classes) == 0 {
		h.warnf("untyped receiver for .%s: assuming all declaring classes", method)
		return h.allDeclaring(method)
	}

	var out []MethodTarget
	seen := make(map[string]bool)
	for class := range classes {
		if t, ok := h.ResolveMethod(class, method); ok && !seen[t.Class] {
			seen[t.Class] = true
			out = append(out, t)
		}
	}
	sortTargets(out)
	return out
}

// ResolveAttribute returns the class along the resolution order that declares
// the attribute, "" when no class in the chain does.
func (h *Hierarchy) ResolveAttribute(class, attr string) string {
	info := h.classes[class]
	if info == nil {
		return ""
	}
	for _, c := range info.MRO {
		if ci := h.classes[c]; ci != nil {
			for _, a := range ci.Attrs {
				if a == attr {
					return c
				}
			}
		}
	}
	return ""
}

func (h *Hierarchy) allDeclaring(method string) []MethodTarget {
	var out []MethodTarget
	for name, info := range h.classes {
		if m, ok := info.Methods[method]; ok {
			out = append(out, MethodTarget{Class: name, Method: m})
		}
	}
	sortTargets(out)
	return out
}

func sortTargets(ts []MethodTarget) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].Class < ts[j].Class })
}

func (h *Hierarchy) warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Warn(msg)
	h.Warnings = append(h.Warnings, msg)
}
