// Package override implements the generic-override table: an
// ordered list of (qualified-name, textual-value) pairs, consumed
// destructively during elaboration.
package override

import (
	"strings"
	"sync"
)

// Entry is one override pair as supplied by the "-gNAME=VALUE" CLI
// surface, upstream of this core.
type Entry struct {
	Name  string // fully qualified dotted instance path, lower-cased
	Value string
	used  bool
}

// Table is the override table. It is safe to share a single Table
// across an elaboration run; the recursor consumes from it as it
// descends.
type Table struct {
	mu      sync.Mutex
	entries []*Entry
}

// New creates an empty override table.
func New() *Table {
	return &Table{}
}

// Set registers an override. The name is lower-cased before storage
// so that later lookups by the recursor's lower-cased dotted path
// compare correctly.
func (t *Table) Set(name, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, &Entry{Name: strings.ToLower(name), Value: value})
}

// Consume looks up qualifiedName, the dot-joined chain of enclosing
// instance identifiers plus the generic's own identifier, already
// lower-cased by the caller. It returns the first unconsumed match
// in insertion order and marks it used; a consumed entry is never
// returned again, and never-consumed entries surface in Unused.
func (t *Table) Consume(qualifiedName string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	name := strings.ToLower(qualifiedName)
	for _, e := range t.entries {
		if e.used {
			continue
		}
		if e.Name == name {
			e.used = true
			return e.Value, true
		}
	}
	return "", false
}

// Unused returns the names of every override never consumed, for the
// root driver's teardown warning.
func (t *Table) Unused() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for _, e := range t.entries {
		if !e.used {
			out = append(out, e.Name)
		}
	}
	return out
}
