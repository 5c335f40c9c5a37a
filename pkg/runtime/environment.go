package runtime

import (
	"fmt"
	"sort"
)

// Environment provides lexical scoping for Kestrel runtime values. An
// environment belongs to one Thread; it is not safe for concurrent mutation.
type Environment struct {
	values map[string]Value
	parent *Environment
	depth  int
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	depth := 0
	if parent != nil {
		depth = parent.depth + 1
	}
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
		depth:  depth,
	}
}

// Parent exposes the lexical parent (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Depth is the number of parents above this scope.
func (e *Environment) Depth() int {
	return e.depth
}

// Extend opens a child scope.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}

// Unwind walks up to the ancestor at the given depth. A depth at or below the
// current one is a no-op past the root.
func (e *Environment) Unwind(depth int) *Environment {
	env := e
	for env.depth > depth && env.parent != nil {
		env = env.parent
	}
	return env
}

// Define inserts or shadows a binding in the current scope.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Assign updates an existing binding in the first scope where it appears.
func (e *Environment) Assign(name string, value Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			env.values[name] = value
			return nil
		}
	}
	return fmt.Errorf("undefined variable '%s'", name)
}

// AssignExisting assigns a name if it exists anywhere in the scope chain.
// Returns true when the assignment succeeded.
func (e *Environment) AssignExisting(name string, value Value) bool {
	return e.Assign(name, value) == nil
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("undefined variable '%s'", name)
}

// Has reports whether the binding exists anywhere in the scope chain.
func (e *Environment) Has(name string) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			return true
		}
	}
	return false
}

// HasInCurrentScope reports whether the binding exists in the current scope.
func (e *Environment) HasInCurrentScope(name string) bool {
	_, ok := e.values[name]
	return ok
}

// Keys returns the bindings in sorted order (useful for determinism in tests).
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
