// Package generics implements the generic resolver and instance
// fixup: matching actual values to formals, folding
// scalar expressions, consuming overrides, and building the
// substitution map that instance_fixup applies to a freshly copied
// architecture.
package generics

import (
	"strings"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/diag"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/foldeval"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/genparse"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/override"
)

// Resolve walks entity's generic list in order and produces a
// matching genmap of P_POS parameters. Priorities per formal:
// (1) positional actual from actualGenMaps[i], (2) the formal's
// default, (3) an override from overrides, consumed exactly once,
// wins regardless of which of the first two supplied a value.
//
// qualPrefix is the fully qualified, dot-separated, lower-cased
// instance path the override table matches against.
//
// parentInstCtx supplies outer generics already folded to literals,
// consulted when an actual references an enclosing level's generic.
// The returned InstanceContext extends it with every generic at this
// level that resolved to a literal, for the caller to pass down when
// recursing and for the global simplifier to substitute references
// to that generic throughout the copied architecture.
func Resolve(
	sink *diag.Sink,
	folder foldeval.Folder,
	jit foldeval.JIT,
	overrides *override.Table,
	parentInstCtx foldeval.InstanceContext,
	entity *objtree.Object,
	actualGenMaps []objtree.Param,
	qualPrefix string,
) (genmaps []objtree.Param, generics foldeval.InstanceContext) {
	generics = foldeval.InstanceContext{}
	for k, v := range parentInstCtx {
		generics[k] = v
	}

	byPos := make(map[int]*objtree.Object, len(actualGenMaps))
	for _, p := range actualGenMaps {
		if p.Kind == objtree.ParamPos {
			byPos[p.Pos] = p.Value
		}
	}

	for i, formal := range entity.Generics {
		actual := byPos[i]
		if actual == nil {
			actual = formal.Value
		}

		qualified := qualPrefix + "." + strings.ToLower(formal.Ident.String())
		if text, ok := overrides.Consume(qualified); ok {
			parsed, err := genparse.Parse(formal, text)
			if err != nil {
				sink.Errorf(formal.Pos.String(), "generic override for %s: %v", qualified, err)
			} else {
				actual = parsed
			}
		}

		if isEagerFoldCandidate(actual) && isScalarFamily(formal.Family) {
			if folded, ok := folder.TryFold(actual, parentInstCtx, jit); ok {
				actual = folded
			}
		}

		genmaps = append(genmaps, objtree.Param{Kind: objtree.ParamPos, Pos: i, Value: actual})

		if actual != nil && actual.Kind == objtree.KindLiteral {
			generics[formal] = actual
		}
	}

	return genmaps, generics
}

// isEagerFoldCandidate reports whether o is a ref, array/record
// element ref, or function-call value, the shapes worth handing to
// the folder eagerly.
func isEagerFoldCandidate(o *objtree.Object) bool {
	if o == nil {
		return false
	}
	switch o.Kind {
	case objtree.KindRef, objtree.KindArrayRef, objtree.KindRecordRef, objtree.KindFCall:
		return true
	default:
		return false
	}
}

func isScalarFamily(f objtree.GenericFamily) bool {
	return f == objtree.GenericScalar
}
