// Package library is the library manager: it finds design units by
// qualified name and returns objects together with a modification
// timestamp. A file-backed implementation parses VHDL sources with
// tree-sitter; an in-memory implementation is used by tests and by
// callers that already have a design tree.
package library

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/ident"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// Unit bundles a design object with the bookkeeping the architecture
// chooser needs: its modification time. The chooser's file and line
// tie-breaks read the object's Pos.
type Unit struct {
	Name    string // fully qualified, lower-case, e.g. "work.foo-rtl"
	Object  *objtree.Object
	ModTime time.Time
}

// Library is the narrow interface elaboration consumes. A production
// implementation resolves logical library names to physical paths and
// lazily parses sources; this module only needs lookup-by-name and
// library-wide scan.
type Library interface {
	// Lookup finds a single unit by its exact qualified name
	// ("work.foo" or "work.foo-rtl"). ok is false if absent.
	Lookup(qualifiedName string) (Unit, bool)

	// UnitsOf returns every unit whose name, once its "-suffix" is
	// stripped, equals entityName and whose Object.Kind matches kind.
	// Used by the architecture chooser.
	UnitsOf(libraryName, entityName string, kind objtree.Kind) []Unit

	// ForAll scans every unit in libraryName regardless of name,
	// for the synthesis-relaxation fallback.
	ForAll(libraryName string) []Unit
}

// InMemory is a Library backed by a plain map, the seam tests and
// the root drivers' callers populate directly with literal Unit
// values instead of parsing real source text.
type InMemory struct {
	mu    sync.RWMutex
	units map[string]Unit
}

// NewInMemory creates an empty in-memory library.
func NewInMemory() *InMemory {
	return &InMemory{units: make(map[string]Unit)}
}

// Add registers a unit, keyed by its lower-cased Name.
func (l *InMemory) Add(u Unit) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.units[strings.ToLower(u.Name)] = u
}

func (l *InMemory) Lookup(qualifiedName string) (Unit, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	u, ok := l.units[strings.ToLower(qualifiedName)]
	return u, ok
}

func (l *InMemory) UnitsOf(libraryName, entityName string, kind objtree.Kind) []Unit {
	l.mu.RLock()
	defer l.mu.RUnlock()

	prefix := strings.ToLower(libraryName) + "."
	target := strings.ToLower(entityName)

	var out []Unit
	for name, u := range l.units {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if u.Object == nil || u.Object.Kind != kind {
			continue
		}
		rest := name[len(prefix):]
		base := rest
		if i := strings.IndexByte(rest, '-'); i >= 0 {
			base = rest[:i]
		}
		if base == target {
			out = append(out, u)
		}
	}
	return out
}

func (l *InMemory) ForAll(libraryName string) []Unit {
	l.mu.RLock()
	defer l.mu.RUnlock()

	prefix := strings.ToLower(libraryName) + "."
	var out []Unit
	for name, u := range l.units {
		if strings.HasPrefix(name, prefix) {
			out = append(out, u)
		}
	}
	return out
}

// QualifiedName lower-case-joins a library name with a unit name
// into "library.unit".
func QualifiedName(libraryName string, unitIdent ident.Ident) string {
	return fmt.Sprintf("%s.%s", strings.ToLower(libraryName), strings.ToLower(unitIdent.String()))
}
