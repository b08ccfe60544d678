package elab

import (
	"strconv"
	"strings"
	"testing"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/coerce"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/diag"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/foldeval"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/ident"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/library"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/lower"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/modcache"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/model"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/override"
)

// newTestDeps builds a Deps wired entirely with the in-memory/basic
// collaborators, the same seam bind_test.go and generics tests use
// instead of parsing real source text.
func newTestDeps(t *testing.T, lib library.Library) *Deps {
	t.Helper()
	ct, err := coerce.New()
	if err != nil {
		t.Fatalf("coerce.New: %v", err)
	}
	return &Deps{
		Library:        lib,
		WorkingLibrary: "work",
		Folder:         foldeval.NewScalarFolder(),
		Registry:       lower.NewRegistry(),
		Lowerer:        lower.NewBasic(),
		Vlog:           lower.NewBasic(),
		Analyser:       lower.NewBasicAnalyser(),
		ModCache:       modcache.New(),
		Model:          model.New(),
		Coerce:         ct,
		Overrides:      override.New(),
		Sink:           diag.NewSink(),
		Options:        DefaultOptions(),
	}
}

func intType() *objtree.Type {
	return objtree.Intern("INTEGER", false, false)
}

func literal(i int64) *objtree.Object {
	return &objtree.Object{Kind: objtree.KindLiteral, SubKind: objtree.LitInt, IntVal: i, Type: intType()}
}

// buildUpCounter is a one-entity/one-architecture design with a single
// WIDTH generic of type INTEGER and no ports or statements, used by
// several tests below as the top-level unit.
func buildUpCounter(width int64) (entity, arch *objtree.Object) {
	widthFormal := &objtree.Object{
		Kind: objtree.KindGenericDecl, Ident: ident.New("WIDTH"),
		Family: objtree.GenericScalar, Type: intType(), Value: literal(width),
	}
	entity = &objtree.Object{
		Kind:     objtree.KindEntity,
		Ident:    ident.New("UP_COUNTER"),
		Generics: []*objtree.Object{widthFormal},
	}
	arch = &objtree.Object{
		Kind:   objtree.KindArch,
		Ident:  ident.New("RTL"),
		Ident2: ident.New("UP_COUNTER"),
	}
	return entity, arch
}

// TestElaborateTopLevelOverrideConsumedAndUnusedWarned: invoking
// elaboration with WIDTH=16 on a design whose
// only generic is WIDTH, plus a stray UNUSED=7 override, consumes
// WIDTH and warns that UNUSED was never consumed.
func TestElaborateTopLevelOverrideConsumedAndUnusedWarned(t *testing.T) {
	entity, arch := buildUpCounter(8)

	lib := library.NewInMemory()
	lib.Add(library.Unit{Name: "work.up_counter", Object: entity})
	lib.Add(library.Unit{Name: "work.up_counter-rtl", Object: arch})

	d := newTestDeps(t, lib)
	d.Overrides.Set("up_counter.width", "16")
	d.Overrides.Set("up_counter.unused", "7")

	result := Elaborate(d, entity)
	if result == nil {
		t.Fatalf("expected a non-nil elaborated tree, got errors: %v", d.Sink.All())
	}

	if len(result.Stmts) != 1 {
		t.Fatalf("expected exactly one top-level block, got %d", len(result.Stmts))
	}
	top := result.Stmts[0]
	if len(top.GenMaps) != 1 || top.GenMaps[0].Value.IntVal != 16 {
		t.Fatalf("expected WIDTH to resolve to the override value 16, got %+v", top.GenMaps)
	}

	foundUnusedWarning := false
	for _, diagEntry := range d.Sink.All() {
		if diagEntry.Severity == diag.SeverityWarning && strings.Contains(diagEntry.Message, "not used") {
			foundUnusedWarning = true
		}
	}
	if !foundUnusedWarning {
		t.Fatalf("expected a warning for the unconsumed UNUSED override, got: %v", d.Sink.All())
	}
}

// buildForGenerateDesign wraps a for-generate statement ranging 1..3
// directly in an architecture's statement list, with an empty body, so
// the only observable effect of expansion is the set of child blocks
// it produces.
func buildForGenerateDesign() (entity, arch *objtree.Object) {
	entity = &objtree.Object{Kind: objtree.KindEntity, Ident: ident.New("TOP")}

	genvar := &objtree.Object{Kind: objtree.KindGenericDecl, Ident: ident.New("I"), Type: intType()}
	forGen := &objtree.Object{
		Kind:  objtree.KindForGenerate,
		Ident: ident.New("GEN"),
		Decls: []*objtree.Object{genvar},
		Children: []*objtree.Object{
			literal(1),
			literal(3),
		},
	}
	arch = &objtree.Object{
		Kind:   objtree.KindArch,
		Ident:  ident.New("RTL"),
		Ident2: ident.New("TOP"),
		Stmts:  []*objtree.Object{forGen},
	}
	return entity, arch
}

// TestForGenerateExpandsThreeIndexedChildren: a for-generate over
// 1 to 3 produces exactly three child
// blocks, named gen(1)/gen(2)/gen(3) in the hierarchical path, with
// the iteration value folded into each child's sole genmap.
func TestForGenerateExpandsThreeIndexedChildren(t *testing.T) {
	entity, arch := buildForGenerateDesign()

	lib := library.NewInMemory()
	lib.Add(library.Unit{Name: "work.top", Object: entity})
	lib.Add(library.Unit{Name: "work.top-rtl", Object: arch})

	d := newTestDeps(t, lib)

	result := Elaborate(d, entity)
	if result == nil {
		t.Fatalf("expected a non-nil elaborated tree, got errors: %v", d.Sink.All())
	}

	top := result.Stmts[0]
	if len(top.Stmts) != 3 {
		t.Fatalf("expected three for-generate child blocks, got %d", len(top.Stmts))
	}
	for i, child := range top.Stmts {
		want := int64(i + 1)
		if len(child.GenMaps) != 1 || child.GenMaps[0].Value.IntVal != want {
			t.Fatalf("child %d: expected genmap iteration value %d, got %+v", i, want, child.GenMaps)
		}
	}
}

// TestForGenerateDescendingRangeProducesNoChildren: an empty
// (low > high) range expands to zero blocks and no error.
func TestForGenerateDescendingRangeProducesNoChildren(t *testing.T) {
	entity, arch := buildForGenerateDesign()
	arch.Stmts[0].Children = []*objtree.Object{literal(3), literal(1)}

	lib := library.NewInMemory()
	lib.Add(library.Unit{Name: "work.top", Object: entity})
	lib.Add(library.Unit{Name: "work.top-rtl", Object: arch})

	d := newTestDeps(t, lib)

	result := Elaborate(d, entity)
	if result == nil || d.Sink.HasErrors() {
		t.Fatalf("expected success with no children, got errors: %v", d.Sink.All())
	}
	top := result.Stmts[0]
	if len(top.Stmts) != 0 {
		t.Fatalf("expected zero child blocks, got %d", len(top.Stmts))
	}
}

// TestElaborateDepthGuardFiresExactlyOnce: a design that
// instantiates itself without bound trips the
// recursion cap, Elaborate returns nil, and exactly one "maximum
// instantiation depth" error is recorded (not one per level past the
// cap).
func TestElaborateDepthGuardFiresExactlyOnce(t *testing.T) {
	entity := &objtree.Object{Kind: objtree.KindEntity, Ident: ident.New("SELF")}
	arch := &objtree.Object{Kind: objtree.KindArch, Ident: ident.New("RTL"), Ident2: ident.New("SELF")}

	selfInst := &objtree.Object{
		Kind:  objtree.KindInstance,
		Ident: ident.New("U0"),
		Ref:   entity,
	}
	arch.Stmts = []*objtree.Object{selfInst}

	lib := library.NewInMemory()
	lib.Add(library.Unit{Name: "work.self", Object: entity})
	lib.Add(library.Unit{Name: "work.self-rtl", Object: arch})

	d := newTestDeps(t, lib)
	d.Options = &Options{MaxDepth: 4}

	result := Elaborate(d, entity)
	if result != nil {
		t.Fatalf("expected nil result once the depth cap trips")
	}

	depthErrors := 0
	for _, de := range d.Sink.All() {
		if de.Severity == diag.SeverityError && strings.Contains(de.Message, "maximum instantiation depth") {
			depthErrors++
		}
	}
	if depthErrors != 1 {
		t.Fatalf("expected exactly one depth-guard error, got %d: %v", depthErrors, d.Sink.All())
	}
}

// TestElaborateVerilogRootLowersTopModule exercises the Verilog root
// driver path on a bare module with no ports.
func TestElaborateVerilogRootLowersTopModule(t *testing.T) {
	mod := &objtree.VNode{Kind: objtree.VKindModule, Ident: ident.New("TOP")}
	top := &objtree.Object{Kind: objtree.KindVerilog, Ident: ident.New("TOP"), VNode: mod}

	lib := library.NewInMemory()
	d := newTestDeps(t, lib)

	result := Elaborate(d, top)
	if result == nil {
		t.Fatalf("expected a non-nil elaborated tree, got errors: %v", d.Sink.All())
	}
	if len(result.Stmts) != 1 {
		t.Fatalf("expected exactly one top-level block, got %d", len(result.Stmts))
	}
}

// TestBuildResultFlattensInstancesAndGenerics exercises the relational
// export over the for-generate design, checking that each expanded
// child block surfaces its dotted name and folded generic value as a
// flat row.
func TestBuildResultFlattensInstancesAndGenerics(t *testing.T) {
	entity, arch := buildForGenerateDesign()

	lib := library.NewInMemory()
	lib.Add(library.Unit{Name: "work.top", Object: entity})
	lib.Add(library.Unit{Name: "work.top-rtl", Object: arch})

	d := newTestDeps(t, lib)
	result := Elaborate(d, entity)
	if result == nil {
		t.Fatalf("expected a non-nil elaborated tree, got errors: %v", d.Sink.All())
	}

	out := BuildResult(result, d.Sink)
	if len(out.Instances) != 4 {
		t.Fatalf("expected 4 rows (1 architecture + 3 generate iterations), got %d: %+v", len(out.Instances), out.Instances)
	}
	if len(out.Generics) != 3 {
		t.Fatalf("expected 3 generic rows (one per generate iteration), got %d: %+v", len(out.Generics), out.Generics)
	}
	for i, g := range out.Generics {
		if g.Value != strconv.Itoa(i+1) {
			t.Fatalf("generic row %d: expected value %d, got %q", i, i+1, g.Value)
		}
	}
}

// TestElaborateQualifiesSubprogramNames: a subprogram declared inside
// an instantiated architecture gets a fresh prefix-qualified name on
// the copy, so instances never share a subprogram symbol, and the
// library's master copy keeps its own spelling.
func TestElaborateQualifiesSubprogramNames(t *testing.T) {
	entity, arch := buildUpCounter(8)
	arch.Decls = []*objtree.Object{{
		Kind:  objtree.KindSubprogram,
		Class: objtree.ClassSubprogram,
		Ident: ident.New("clamp"),
	}}

	lib := library.NewInMemory()
	lib.Add(library.Unit{Name: "work.up_counter", Object: entity})
	lib.Add(library.Unit{Name: "work.up_counter-rtl", Object: arch})

	d := newTestDeps(t, lib)
	root := Elaborate(d, entity)
	if root == nil {
		t.Fatalf("Elaborate returned nil: %v", d.Sink.All())
	}

	top := root.Stmts[0]
	if len(top.Decls) != 1 {
		t.Fatalf("expected the subprogram decl on the output block, got %d decls", len(top.Decls))
	}
	if got := top.Decls[0].Ident.String(); got != "up_counter(rtl).clamp" {
		t.Errorf("subprogram decl = %q, want up_counter(rtl).clamp", got)
	}
	if arch.Decls[0].Ident.String() != "clamp" {
		t.Errorf("renaming must not touch the library's master copy, got %q", arch.Decls[0].Ident)
	}
}
