// Package model is the run-time model: it owns scopes and private
// data blobs, nested 1:1 with output blocks. It is a narrow data
// structure, not a simulator.
package model

import "github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"

// Scope is one level of the run-time model, created under its parent
// when elaboration pushes a scope and torn down exactly
// once when that scope pops.
type Scope struct {
	Parent *Scope
	Path   string // the hierarchical inst_name this scope was pushed for

	// Private holds opaque per-scope data the folder consults when
	// eagerly folding a generic actual, keyed by declaration pointer
	// identity.
	Private map[*objtree.Object]interface{}

	children []*Scope
}

// Model owns the scope tree for one elaboration run.
type Model struct {
	root *Scope
}

// New creates an empty Model.
func New() *Model {
	return &Model{}
}

// Push creates a new Scope nested under parent (nil for the root
// scope) and returns it. Scope lifetime is strictly nested: callers
// must Pop exactly the scopes they Push.
func (m *Model) Push(parent *Scope, path string) *Scope {
	s := &Scope{Parent: parent, Path: path, Private: map[*objtree.Object]interface{}{}}
	if parent == nil {
		m.root = s
	} else {
		parent.children = append(parent.children, s)
	}
	return s
}

// Pop finalises s, freeing its private data. It is a no-op on a nil
// scope so callers can defer Pop unconditionally.
func (s *Scope) Pop() {
	if s == nil {
		return
	}
	s.Private = nil
}

// Root returns the model's root scope, or nil if nothing has been
// pushed yet.
func (m *Model) Root() *Scope {
	return m.root
}

// SetPrivate stores a blob under decl in s's private data.
func (s *Scope) SetPrivate(decl *objtree.Object, v interface{}) {
	if s.Private == nil {
		s.Private = map[*objtree.Object]interface{}{}
	}
	s.Private[decl] = v
}

// GetPrivate retrieves a blob previously stored with SetPrivate,
// searching outward through parent scopes if absent locally, the
// lookup eager generic folding performs.
func (s *Scope) GetPrivate(decl *objtree.Object) (interface{}, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Private == nil {
			continue
		}
		if v, ok := cur.Private[decl]; ok {
			return v, true
		}
	}
	return nil, false
}
