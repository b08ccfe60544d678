// Package bind implements the four binding-builder constructors:
// VHDL default binding, VHDL explicit (configuration/spec) binding,
// VHDL-component-into-Verilog-module (mixed) binding, and
// Verilog-instance-into-Verilog-module binding. Each constructor
// produces a *Binding consumed once by the elaboration recursor
// (internal/elab) to thread ports and generics into the output
// block, then discarded.
package bind

import (
	"github.com/robert-at-pretension-io/vhdl-elab/internal/diag"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/ident"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/library"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// Binding is the resolved outcome of a binding indication:
// "{ ident, loc, ref, class=Entity, genmaps[], params[] }".
type Binding struct {
	Ident   ident.Ident
	Loc     objtree.Pos
	Ref     *objtree.Object // the bound Arch (or Verilog module wrapper)
	Class   objtree.Class
	GenMaps []objtree.Param
	Params  []objtree.Param
}

// newBinding creates a Binding defaulted to Class Entity.
func newBinding(id ident.Ident, loc objtree.Pos, ref *objtree.Object) *Binding {
	return &Binding{Ident: id, Loc: loc, Ref: ref, Class: objtree.ClassEntity}
}

// Resolution is the outcome of attempting the default binding.
// When the library match is a Verilog module rather than a
// VHDL entity, Module is set and the caller must fall through to the
// mixed binding builder (MixedComponentToModule) instead of using
// Binding.
type Resolution struct {
	Binding *Binding
	Module  *objtree.VNode
}

// DefaultVHDL builds the VHDL default binding, LRM 93 §5.2.2 with
// the synthesis-tool relaxation. component is the
// instance's Component design object; workingLibrary is the context's
// current working library name.
func DefaultVHDL(sink *diag.Sink, lib library.Library, workingLibrary string, component *objtree.Object) (*Resolution, bool) {
	name := component.Ident.String()

	var found *library.Unit
	if u, ok := lib.Lookup(library.QualifiedName(workingLibrary, component.Ident)); ok {
		found = &u
	} else {
		// Synthesis relaxation: library-wide scan, accept first match.
		for _, u := range lib.ForAll(workingLibrary) {
			if u.Object != nil && u.Object.Ident.String() == name {
				uu := u
				found = &uu
				break
			}
		}
	}

	if found == nil {
		sink.Errorf(component.Pos.String(), "no entity or module named %s found in library %s", name, workingLibrary)
		return nil, false
	}

	if found.Object.Kind == objtree.KindVerilog {
		return &Resolution{Module: found.Object.VNode}, true
	}

	b := newBinding(found.Object.Ident, found.Object.Pos, found.Object)
	if !matchGenerics(sink, component, found.Object, b) {
		return nil, false
	}
	if !matchPorts(sink, component, found.Object, b) {
		return nil, false
	}
	checkShape(b)
	return &Resolution{Binding: b}, true
}

// matchGenerics matches every entity generic to a component generic by
// case-insensitive identifier; require class and type equality;
// C_PACKAGE generics get a fresh Ref to the matched formal; missing
// component counterparts fall back to the entity generic's default
// (if any) or error.
func matchGenerics(sink *diag.Sink, component, entity *objtree.Object, b *Binding) bool {
	ok := true
	for i, eg := range entity.Generics {
		cg := findByIdentCI(component.Generics, eg.Ident)
		if cg == nil {
			if eg.Value != nil {
				b.GenMaps = append(b.GenMaps, objtree.Param{Kind: objtree.ParamPos, Pos: i, Value: defaultGenericValue(eg)})
				continue
			}
			sink.Errorf(entity.Pos.String(), "generic %s of entity %s has no default and no matching generic on component %s",
				eg.Ident, entity.Ident, component.Ident)
			ok = false
			continue
		}
		if cg.Class != eg.Class {
			sink.Errorf(cg.Pos.String(), "generic %s: component %s declares class %s but entity %s declares class %s",
				eg.Ident, component.Ident, cg.Class, entity.Ident, eg.Class)
			ok = false
			continue
		}
		if eg.Class == objtree.ClassPackage {
			b.GenMaps = append(b.GenMaps, objtree.Param{Kind: objtree.ParamPos, Pos: i, Value: &objtree.Object{
				Kind: objtree.KindRef, Pos: cg.Pos, Ref: cg,
			}})
			continue
		}
		if eg.Type != nil && cg.Type != nil && !eg.Type.Equal(cg.Type) {
			sink.Errorf(cg.Pos.String(), "generic %s: type mismatch between component %s and entity %s",
				eg.Ident, component.Ident, entity.Ident)
			ok = false
			continue
		}
		b.GenMaps = append(b.GenMaps, objtree.Param{Kind: objtree.ParamPos, Pos: i, Value: &objtree.Object{
			Kind: objtree.KindRef, Pos: cg.Pos, Ref: cg,
		}})
	}
	return ok
}

// defaultGenericValue reuses a literal default verbatim, and turns
// a non-literal default into Open. The Open substitution is not
// strictly LRM-conformant but is kept as-is.
func defaultGenericValue(eg *objtree.Object) *objtree.Object {
	if eg.Value != nil && eg.Value.Kind == objtree.KindLiteral {
		return eg.Value
	}
	return &objtree.Object{Kind: objtree.KindOpen, Pos: eg.Pos}
}

// matchPorts matches every entity port by identifier to a component
// port, requiring type
// equality; for missing component ports permit Open only when the
// entity port has a default or is an out with fully constrained type.
func matchPorts(sink *diag.Sink, component, entity *objtree.Object, b *Binding) bool {
	ok := true
	for i, ep := range entity.Ports {
		cp := findByIdentCI(component.Ports, ep.Ident)
		if cp == nil {
			if ep.Value != nil {
				b.Params = append(b.Params, objtree.Param{Kind: objtree.ParamPos, Pos: i, Value: &objtree.Object{Kind: objtree.KindOpen, Pos: ep.Pos}})
				continue
			}
			if ep.Direction == objtree.DirOut && ep.Type != nil && ep.Type.Constrained {
				b.Params = append(b.Params, objtree.Param{Kind: objtree.ParamPos, Pos: i, Value: &objtree.Object{Kind: objtree.KindOpen, Pos: ep.Pos}})
				continue
			}
			sink.Errorf(entity.Pos.String(), "port %s of entity %s has no default, is not a constrained out port, and has no matching port on component %s",
				ep.Ident, entity.Ident, component.Ident)
			ok = false
			continue
		}
		if ep.Type != nil && cp.Type != nil && !ep.Type.Equal(cp.Type) {
			sink.Errorf(cp.Pos.String(), "port %s: type mismatch between component %s and entity %s",
				ep.Ident, component.Ident, entity.Ident)
			ok = false
			continue
		}
		b.Params = append(b.Params, objtree.Param{Kind: objtree.ParamPos, Pos: i, Value: &objtree.Object{
			Kind: objtree.KindRef, Pos: cp.Pos, Ref: cp,
		}})
	}
	return ok
}

func findByIdentCI(list []*objtree.Object, id ident.Ident) *objtree.Object {
	for _, o := range list {
		if ident.CaseEqual(o.Ident, id) {
			return o
		}
	}
	return nil
}
