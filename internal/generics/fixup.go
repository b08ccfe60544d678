package generics

import (
	"github.com/robert-at-pretension-io/vhdl-elab/internal/diag"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// Substitution is the mapping instance_fixup applies to a freshly
// copied architecture: formal type/subprogram/package
// declarations to their actuals.
type Substitution struct {
	Types       map[*objtree.Type]*objtree.Type
	Subprograms map[*objtree.Object]*objtree.Object
	Packages    map[*objtree.Object]*objtree.Object
}

func newSubstitution() *Substitution {
	return &Substitution{
		Types:       map[*objtree.Type]*objtree.Type{},
		Subprograms: map[*objtree.Object]*objtree.Object{},
		Packages:    map[*objtree.Object]*objtree.Object{},
	}
}

// IsEmpty reports whether the substitution has nothing to rewrite,
// the case the recursor uses to decide whether a component with only
// constant generics must NOT trigger new_instance cloning.
func (s *Substitution) IsEmpty() bool {
	return len(s.Types) == 0 && len(s.Subprograms) == 0 && len(s.Packages) == 0
}

// BuildSubstitution walks entity's generics against the resolved
// genmap and produces the Substitution instance_fixup applies, one
// mapping per non-constant generic family.
func BuildSubstitution(sink *diag.Sink, entity *objtree.Object, genmaps []objtree.Param) *Substitution {
	sub := newSubstitution()

	byPos := make(map[int]*objtree.Object, len(genmaps))
	for _, p := range genmaps {
		if p.Kind == objtree.ParamPos {
			byPos[p.Pos] = p.Value
		}
	}

	for i, formal := range entity.Generics {
		actual := byPos[i]
		if actual == nil {
			continue
		}
		switch formal.Family {
		case objtree.GenericType:
			mapType(sub, formal, actual)

		case objtree.GenericArrayType:
			mapType(sub, formal, actual)
			mapArraySubGenerics(sub, formal, actual)

		case objtree.GenericSubprogram:
			if actual.Kind == objtree.KindRef && actual.Ref != nil {
				sub.Subprograms[formal] = actual.Ref
			} else {
				sink.Errorf(formal.Pos.String(), "subprogram generic %s's actual is not a subprogram reference", formal.Ident)
			}

		case objtree.GenericPackage:
			mapPackage(sink, sub, formal, actual)
		}
	}

	return sub
}

func mapType(sub *Substitution, formal, actual *objtree.Object) {
	if formal.Type == nil || actual.Type == nil {
		return
	}
	sub.Types[formal.Type] = actual.Type
}

// mapArraySubGenerics maps the first anonymous (!HasIdent)
// sub-generic of a GTYPE_ARRAY formal to the actual array type's
// element type. Index-type sub-generics are not mapped: this core's
// simplified Type has no per-index-range tracking.
func mapArraySubGenerics(sub *Substitution, formal, actual *objtree.Object) {
	if actual.Type == nil || actual.Type.ElementType == nil {
		return
	}
	for _, sg := range formal.Generics {
		if sg.HasIdent() {
			continue
		}
		if sg.Type != nil {
			sub.Types[sg.Type] = actual.Type.ElementType
		}
		break
	}
}

// mapPackage performs the package-generic fixup: map the formal
// package decl to the actual, then each sub-declaration of the
// formal package to the corresponding sub-declaration of the actual
// (same order, same kinds). Nested package generics are handled one
// level deep only; a recursive descent is a known gap.
func mapPackage(sink *diag.Sink, sub *Substitution, formal, actual *objtree.Object) {
	actualPkg := actual.Ref
	if actual.Kind == objtree.KindRef {
		actualPkg = actual.Ref
	} else {
		actualPkg = actual
	}
	if actualPkg == nil {
		sink.Errorf(formal.Pos.String(), "package generic %s's actual does not reference a package", formal.Ident)
		return
	}

	sub.Packages[formal] = actualPkg

	if len(formal.Decls) != len(actualPkg.Decls) {
		sink.Errorf(formal.Pos.String(), "package generic %s: formal package declares %d sub-declarations but actual %s declares %d",
			formal.Ident, len(formal.Decls), actualPkg.Ident, len(actualPkg.Decls))
		return
	}

	for i, formalDecl := range formal.Decls {
		actualDecl := actualPkg.Decls[i]
		if formalDecl.Kind != actualDecl.Kind {
			sink.Errorf(formalDecl.Pos.String(),
				"package generic %s: sub-declaration %d kind mismatch (formal %s, actual %s)",
				formal.Ident, i, formalDecl.Kind, actualDecl.Kind)
			continue
		}
		sub.Packages[formalDecl] = actualDecl

		switch formalDecl.Family {
		case objtree.GenericSubprogram:
			// Use the actual package's own genmap at this position.
			if i < len(actualPkg.GenMaps) && actualPkg.GenMaps[i].Value != nil && actualPkg.GenMaps[i].Value.Kind == objtree.KindRef {
				sub.Subprograms[formalDecl] = actualPkg.GenMaps[i].Value.Ref
			}
		case objtree.GenericType:
			if formalDecl.Type != nil && actualDecl.Type != nil {
				sub.Types[formalDecl.Type] = actualDecl.Type
			}
		}
	}
}

// Apply rewrites every reference to a substituted type, subprogram,
// or package declaration found anywhere in root's subtree, in place.
// It is applied to the copied architecture exactly once.
func Apply(sub *Substitution, root *objtree.Object) {
	if root == nil || sub.IsEmpty() {
		return
	}
	visited := map[*objtree.Object]bool{}
	applyRec(sub, root, visited)
}

func applyRec(sub *Substitution, o *objtree.Object, visited map[*objtree.Object]bool) {
	if o == nil || visited[o] {
		return
	}
	visited[o] = true

	if o.Type != nil {
		if t, ok := sub.Types[o.Type]; ok {
			o.Type = t
		}
	}
	if o.Ref != nil {
		if s, ok := sub.Subprograms[o.Ref]; ok {
			o.Ref = s
		} else if p, ok := sub.Packages[o.Ref]; ok {
			o.Ref = p
		}
	}

	for _, c := range o.Ports {
		applyRec(sub, c, visited)
	}
	for _, c := range o.Generics {
		applyRec(sub, c, visited)
	}
	for _, c := range o.Decls {
		applyRec(sub, c, visited)
	}
	for _, c := range o.Stmts {
		applyRec(sub, c, visited)
	}
	for _, c := range o.Children {
		applyRec(sub, c, visited)
	}
	for _, p := range o.Params {
		applyRec(sub, p.Value, visited)
	}
	for _, p := range o.GenMaps {
		applyRec(sub, p.Value, visited)
	}
}
