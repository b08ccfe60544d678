// Package genparse parses generic-override textual values: given a
// formal generic's type and the text from the "-gNAME=VALUE"
// surface, produce the tree node the resolver substitutes in place
// of the override.
package genparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/ident"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// Parse dispatches on formal's type family: enum -> Ref to the
// matching enum literal; integer/physical -> Literal with
// LitInt/LitPhysical; real -> Literal with LitReal; character array ->
// String built of character Refs with subtype computed from the
// actual element sequence. All other types are rejected.
func Parse(formal *objtree.Object, text string) (*objtree.Object, error) {
	t := formal.Type
	switch formal.Family {
	case objtree.GenericEnum:
		return parseEnum(formal, t, text)
	case objtree.GenericScalar:
		return parseScalar(formal, t, text)
	case objtree.GenericCharArray:
		return parseCharArray(formal, t, text)
	default:
		return nil, fmt.Errorf("generic %s: overrides are not supported for type family %v", formal.Ident, formal.Family)
	}
}

func parseEnum(formal *objtree.Object, t *objtree.Type, text string) (*objtree.Object, error) {
	lit, ok := matchEnumLiteral(t, text)
	if !ok {
		return nil, fmt.Errorf("generic %s: %q is not a literal of type %s", formal.Ident, text, t)
	}
	return &objtree.Object{Kind: objtree.KindRef, Pos: formal.Pos, Ref: &objtree.Object{Kind: objtree.KindLiteral, Ident: lit, Type: t}}, nil
}

func matchEnumLiteral(t *objtree.Type, text string) (ident.Ident, bool) {
	if t == nil {
		return ident.Nil, false
	}
	for _, lit := range t.EnumLiterals {
		if ident.CaseEqual(lit, ident.New(text)) {
			return lit, true
		}
	}
	return ident.Nil, false
}

func parseScalar(formal *objtree.Object, t *objtree.Type, text string) (*objtree.Object, error) {
	subKind := objtree.LitInt
	if isPhysicalType(t) {
		subKind = objtree.LitPhysical
	} else if isRealType(t) {
		subKind = objtree.LitReal
	}

	switch subKind {
	case objtree.LitReal:
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, fmt.Errorf("generic %s: %q is not a valid real literal: %w", formal.Ident, text, err)
		}
		return &objtree.Object{Kind: objtree.KindLiteral, Pos: formal.Pos, SubKind: objtree.LitReal, RealVal: v, Type: t}, nil
	default:
		v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("generic %s: %q is not a valid %s literal: %w", formal.Ident, text, subKindName(subKind), err)
		}
		return &objtree.Object{Kind: objtree.KindLiteral, Pos: formal.Pos, SubKind: subKind, IntVal: v, Type: t}, nil
	}
}

func parseCharArray(formal *objtree.Object, t *objtree.Type, text string) (*objtree.Object, error) {
	elem := t.ElementType
	out := &objtree.Object{Kind: objtree.KindString, Pos: formal.Pos, Type: computeStringSubtype(t, len(text))}
	for _, r := range text {
		child := &objtree.Object{Kind: objtree.KindRef, Pos: formal.Pos, Type: elem}
		if lit, ok := matchEnumLiteral(elem, string(r)); ok {
			child.Ident = lit
		} else {
			child.Ident = ident.New(string(r))
		}
		out.Children = append(out.Children, child)
	}
	return out, nil
}

// computeStringSubtype builds the index-constrained subtype for a
// character-array actual of length n.
func computeStringSubtype(elementArrayType *objtree.Type, n int) *objtree.Type {
	return objtree.InternRange(fmt.Sprintf("%s(0 to %d)", elementArrayType.Name, n-1), 0, int64(n-1))
}

func isPhysicalType(t *objtree.Type) bool {
	return t != nil && strings.Contains(strings.ToLower(t.Name), "time")
}

func isRealType(t *objtree.Type) bool {
	return t != nil && strings.Contains(strings.ToLower(t.Name), "real")
}

func subKindName(k objtree.LitKind) string {
	switch k {
	case objtree.LitReal:
		return "real"
	case objtree.LitPhysical:
		return "physical"
	default:
		return "integer"
	}
}
