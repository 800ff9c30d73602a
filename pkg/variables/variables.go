// Package variables holds the install-time variable bindings that conditions
// are evaluated against.
package variables

import (
	"os"
	"sort"
)

// Variables is a mutable set of string bindings
type Variables struct {
	values map[string]string
}

// New creates a Variables set seeded with initial
func New(initial map[string]string) *Variables {
	v := &Variables{values: make(map[string]string, len(initial))}
	for k, val := range initial {
		v.values[k] = val
	}
	return v
}

// Get returns the value bound to name
func (v *Variables) Get(name string) (string, bool) {
	if v == nil {
		return "", false
	}
	val, ok := v.values[name]
	return val, ok
}

// Value returns the value bound to name, or "" when unbound
func (v *Variables) Value(name string) string {
	val, _ := v.Get(name)
	return val
}

// Set binds name to value
func (v *Variables) Set(name, value string) {
	v.values[name] = value
}

// Unset removes the binding for name
func (v *Variables) Unset(name string) {
	delete(v.values, name)
}

// Names returns all bound names in sorted order
func (v *Variables) Names() []string {
	if v == nil {
		return nil
	}
	names := make([]string, 0, len(v.values))
	for k := range v.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bindings
func (v *Variables) Len() int {
	if v == nil {
		return 0
	}
	return len(v.values)
}

// Clone returns an independent copy
func (v *Variables) Clone() *Variables {
	if v == nil {
		return New(nil)
	}
	return New(v.values)
}

// Map returns a copy of the bindings
func (v *Variables) Map() map[string]string {
	return v.Clone().values
}

// Substitute replaces $NAME and ${NAME} references with their bound values.
// References to unbound names are kept as ${NAME}.
func (v *Variables) Substitute(s string) string {
	return os.Expand(s, func(name string) string {
		if val, ok := v.Get(name); ok {
			return val
		}
		return "${" + name + "}"
	})
}
