package lang

import (
	"maps"
	"slices"
)

// Env is an immutable scope of variable bindings.
//
// A child scope shadows its parent without modifying it, so bindings
// introduced by a loop iteration disappear once the iteration ends.
// A nil *Env is a valid empty scope.
type Env struct {
	parent *Env
	vars   map[string]Value
}

// NewEnv returns a root scope holding a copy of vars.
func NewEnv(vars map[string]Value) *Env {
	e := &Env{vars: make(map[string]Value, len(vars))}
	maps.Copy(e.vars, vars)

	return e
}

// Child returns a scope that binds name to v on top of e.
func (e *Env) Child(name string, v Value) *Env {
	return &Env{parent: e, vars: map[string]Value{name: v}}
}

// With returns a scope that adds vars on top of e.
func (e *Env) With(vars map[string]Value) *Env {
	c := NewEnv(vars)
	c.parent = e

	return c
}

// Lookup returns the innermost binding of name.
func (e *Env) Lookup(name string) (Value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}

	return Value{}, false
}

// Names returns the sorted names visible in e.
func (e *Env) Names() []string {
	seen := make(map[string]struct{})

	for s := e; s != nil; s = s.parent {
		for name := range s.vars {
			seen[name] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(seen))
}
