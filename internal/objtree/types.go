package objtree

import (
	"sync"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/ident"
)

// registry memoises canonical *Type handles by symbolic name, so that
// coercion-table lookups compare types by pointer/
// field equality after the first resolution instead of by string
// comparison every time.
var (
	registryMu sync.Mutex
	registry   = map[string]*Type{}
)

// Intern resolves name to its canonical *Type, creating it on first
// use. Subsequent calls with the same name return the identical
// pointer.
func Intern(name string, verilog, array bool) *Type {
	registryMu.Lock()
	defer registryMu.Unlock()
	if t, ok := registry[name]; ok {
		return t
	}
	t := &Type{Name: name, Verilog: verilog, Array: array}
	registry[name] = t
	return t
}

// InternRange is Intern for a scalar range type carrying static
// bounds, consulted by the folder's T'LOW/T'HIGH handling.
func InternRange(name string, low, high int64) *Type {
	registryMu.Lock()
	defer registryMu.Unlock()
	if t, ok := registry[name]; ok {
		return t
	}
	t := &Type{Name: name, HasRange: true, Low: low, High: high, Constrained: true}
	registry[name] = t
	return t
}

// InternEnum is Intern for an enumeration type, recording its
// literals in declaration order for the override text parser.
func InternEnum(name string, literals []ident.Ident) *Type {
	registryMu.Lock()
	defer registryMu.Unlock()
	if t, ok := registry[name]; ok {
		return t
	}
	t := &Type{Name: name, Constrained: true, EnumLiterals: literals}
	registry[name] = t
	return t
}

// InternSubtype is Intern for a fully constrained subtype
// indication, e.g. an array type with an explicit index range.
func InternSubtype(name string, verilog, array bool) *Type {
	registryMu.Lock()
	defer registryMu.Unlock()
	if t, ok := registry[name]; ok {
		return t
	}
	t := &Type{Name: name, Verilog: verilog, Array: array, Constrained: true}
	registry[name] = t
	return t
}
