package generics

import (
	"testing"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/diag"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/foldeval"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/ident"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/override"
)

func intGeneric(name string, def int64) *objtree.Object {
	return &objtree.Object{
		Kind:   objtree.KindGenericDecl,
		Ident:  ident.New(name),
		Family: objtree.GenericScalar,
		Value:  &objtree.Object{Kind: objtree.KindLiteral, SubKind: objtree.LitInt, IntVal: def},
	}
}

// TestResolveOverrideWinsOverDefaultAndReportsUnused: WIDTH
// overridden to 16, UNUSED left unconsumed.
func TestResolveOverrideWinsOverDefaultAndReportsUnused(t *testing.T) {
	entity := &objtree.Object{
		Ident:    ident.New("top"),
		Generics: []*objtree.Object{intGeneric("WIDTH", 8)},
	}

	overrides := override.New()
	overrides.Set("top.WIDTH", "16")
	overrides.Set("top.UNUSED", "7")

	sink := diag.NewSink()
	folder := foldeval.NewScalarFolder()

	genmaps, generics := Resolve(sink, folder, nil, overrides, nil, entity, nil, "top")
	if len(genmaps) != 1 || genmaps[0].Value.IntVal != 16 {
		t.Fatalf("expected WIDTH=16, got %+v", genmaps)
	}
	if generics[entity.Generics[0]].IntVal != 16 {
		t.Fatalf("expected ctx.generics to record the literal 16")
	}

	unused := overrides.Unused()
	if len(unused) != 1 || unused[0] != "top.unused" {
		t.Fatalf("expected top.unused to remain unconsumed, got %v", unused)
	}
}

func TestResolvePositionalActualBeatsDefault(t *testing.T) {
	entity := &objtree.Object{
		Ident:    ident.New("top"),
		Generics: []*objtree.Object{intGeneric("WIDTH", 8)},
	}
	actual := []objtree.Param{
		{Kind: objtree.ParamPos, Pos: 0, Value: &objtree.Object{Kind: objtree.KindLiteral, SubKind: objtree.LitInt, IntVal: 32}},
	}

	sink := diag.NewSink()
	folder := foldeval.NewScalarFolder()
	overrides := override.New()

	genmaps, _ := Resolve(sink, folder, nil, overrides, nil, entity, actual, "top.u1")
	if genmaps[0].Value.IntVal != 32 {
		t.Fatalf("expected positional actual 32, got %d", genmaps[0].Value.IntVal)
	}
}

func TestBuildSubstitutionEmptyForConstantGenericsOnly(t *testing.T) {
	entity := &objtree.Object{Generics: []*objtree.Object{intGeneric("WIDTH", 8)}}
	genmaps := []objtree.Param{{Kind: objtree.ParamPos, Pos: 0, Value: &objtree.Object{Kind: objtree.KindLiteral, IntVal: 8}}}

	sink := diag.NewSink()
	sub := BuildSubstitution(sink, entity, genmaps)
	if !sub.IsEmpty() {
		t.Fatalf("expected an empty substitution for a purely constant generic list")
	}
}

func TestBuildSubstitutionMapsTypeGeneric(t *testing.T) {
	formalType := &objtree.Type{Name: "T"}
	actualType := objtree.Intern("INTEGER", false, false)

	formal := &objtree.Object{Family: objtree.GenericType, Type: formalType, Ident: ident.New("T")}
	entity := &objtree.Object{Generics: []*objtree.Object{formal}}
	genmaps := []objtree.Param{{Kind: objtree.ParamPos, Pos: 0, Value: &objtree.Object{Kind: objtree.KindTypeRef, Type: actualType}}}

	sink := diag.NewSink()
	sub := BuildSubstitution(sink, entity, genmaps)
	if sub.IsEmpty() {
		t.Fatalf("expected a non-empty substitution")
	}
	if sub.Types[formalType] != actualType {
		t.Fatalf("expected formal type T to map to actual INTEGER")
	}
}
