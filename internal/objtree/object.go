// Package objtree models the design-object tree that elaboration
// reads and mutates. It is a narrow stand-in for the
// external tree-builder collaborator: a data model, not a parser.
package objtree

import (
	"fmt"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/ident"
)

// Pos is a source location, used by the architecture chooser's
// line-number tie-break and by diagnostics.
type Pos struct {
	File string
	Line int
}

func (p Pos) String() string {
	if p.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Type is a canonical type handle. Coercion tables are keyed by
// symbolic names and resolved once to *Type pointers so that
// thereafter matching is pointer/field equality rather than string
// comparison.
type Type struct {
	Name        string // e.g. "STD_LOGIC", "STD_ULOGIC", "LOGIC", "NET_VALUE"
	Verilog     bool   // true if this is a Verilog-side type
	Array       bool   // true for array types (LOGIC_ARRAY, NET_ARRAY, WIRE_ARRAY)
	Constrained bool   // fully constrained subtype, required before an unconnected port may default to Open

	// HasRange/Low/High describe a scalar range type's static bounds,
	// consulted when folding T'LOW/T'HIGH attribute references in
	// for-generate discrete ranges.
	HasRange  bool
	Low, High int64

	// EnumLiterals lists an enumeration type's literals in declaration
	// order, consulted by the generic-override text parser to resolve
	// an enum or character-array actual.
	EnumLiterals []ident.Ident

	// ElementType is a character array's element type, consulted when
	// a character-array actual is rebuilt as a String of character
	// Refs.
	ElementType *Type
}

// Equal reports whether two type handles denote the same type.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.Name == o.Name && t.Verilog == o.Verilog && t.Array == o.Array
}

func (t *Type) String() string {
	if t == nil {
		return "<no type>"
	}
	return t.Name
}

// Param is one entry of a genmap or port map.
type Param struct {
	Kind  ParamKind
	Pos   int         // position, meaningful when Kind == ParamPos
	Name  ident.Ident // formal name, meaningful when Kind == ParamNamed
	Value *Object
}

// Object is a VHDL-side design-tree node.
type Object struct {
	Kind Kind
	Pos  Pos

	Ident  ident.Ident // primary identifier
	Ident2 ident.Ident // secondary identifier (e.g. component kind on a Spec)

	// InstName/Dotted carry the hierarchical path and dotted mangled
	// name a KindBlock was elaborated under, stamped once at
	// creation so a finished tree can be walked without re-deriving
	// them from the recursion that built it.
	InstName string
	Dotted   string

	Class   Class
	SubKind LitKind

	Type  *Type
	Ref   *Object // referenced declaration, for Ref/instance/binding nodes
	Value *Object // literal payload, or generic's default value

	Ports    []*Object
	Generics []*Object
	Decls    []*Object
	Stmts    []*Object
	Params   []Param
	GenMaps  []Param

	Children []*Object // aggregate elements, string character refs, etc.

	Direction Direction
	Family    GenericFamily

	Flags Flags

	// IntVal/RealVal hold a folded scalar literal's value when
	// Kind == KindLiteral. Which one is meaningful is determined by
	// SubKind (LitInt/LitPhysical use IntVal, LitReal uses RealVal).
	IntVal  int64
	RealVal float64

	// Verilog back-pointer: set on a Verilog wrapper node (KindVerilog).
	VNode *VNode
}

// New creates an Object of the given kind at pos.
func New(kind Kind, pos Pos) *Object {
	return &Object{Kind: kind, Pos: pos}
}

// Copy performs a shallow, fresh-identity copy of o: a new *Object
// with the same field values, but independent slice backing arrays so
// that fixup can rewrite the copy without mutating o.
// It does not deep-copy children; callers that need the full subtree
// duplicated call CopyTree.
func (o *Object) Copy() *Object {
	if o == nil {
		return nil
	}
	n := *o
	n.Ports = append([]*Object(nil), o.Ports...)
	n.Generics = append([]*Object(nil), o.Generics...)
	n.Decls = append([]*Object(nil), o.Decls...)
	n.Stmts = append([]*Object(nil), o.Stmts...)
	n.Params = append([]Param(nil), o.Params...)
	n.GenMaps = append([]Param(nil), o.GenMaps...)
	n.Children = append([]*Object(nil), o.Children...)
	return &n
}

// CopyTree recursively duplicates o and everything it owns (Decls,
// Stmts, Generics), giving every node in the subtree a fresh
// identity. Ports are deliberately NOT deep-copied: the ports list
// of an output block equals the entity's port list by identity,
// shared, never copied.
func (o *Object) CopyTree() *Object {
	if o == nil {
		return nil
	}
	n := o.Copy()
	n.Generics = copyObjSlice(o.Generics)
	n.Decls = copyObjSlice(o.Decls)
	n.Stmts = copyObjSlice(o.Stmts)
	return n
}

func copyObjSlice(in []*Object) []*Object {
	if in == nil {
		return nil
	}
	out := make([]*Object, len(in))
	for i, c := range in {
		out[i] = c.CopyTree()
	}
	return out
}

// HasIdent reports whether o carries an identifier of its own, as
// opposed to being an anonymous sub-generic of an array-type
// generic.
func (o *Object) HasIdent() bool {
	return o != nil && !o.Ident.IsNil()
}
