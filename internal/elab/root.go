package elab

import (
	"strings"
	"sync"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/bind"
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

// Deps bundles every external collaborator, assembled once by the
// caller and handed to Elaborate. It is the seam a test populates
// with in-memory fakes (library.InMemory, lower.Basic,
// foldeval.ScalarFolder) instead of parsing real source text.
type Deps struct {
	Library        library.Library
	WorkingLibrary string
	Folder         foldeval.Folder
	JIT            foldeval.JIT
	Registry       *lower.Registry
	Lowerer        lower.Lowerer
	Vlog           lower.VlogLower
	Analyser       lower.Analyser
	ModCache       *modcache.Cache
	Model          *model.Model
	Coerce         *coerce.Table
	Overrides      *override.Table
	Sink           *diag.Sink
	Options        *Options
}

func newRootCtx(d *Deps) *Ctx {
	return &Ctx{
		Library:        d.Library,
		WorkingLibrary: d.WorkingLibrary,
		Folder:         d.Folder,
		JIT:            d.JIT,
		Registry:       d.Registry,
		Lowerer:        d.Lowerer,
		Vlog:           d.Vlog,
		Analyser:       d.Analyser,
		ModCache:       d.ModCache,
		Model:          d.Model,
		Coerce:         d.Coerce,
		Overrides:      d.Overrides,
		Sink:           d.Sink,
		Options:        d.Options,
	}
}

// Elaborate is the root driver. top's language (a VHDL Entity/Arch/
// Configuration, or a Verilog module wrapped as KindVerilog) selects
// the entry point. The returned tree is nil iff any error was
// recorded; a Fatal trace anywhere in the descent is recovered here
// and terminates elaboration immediately.
func Elaborate(d *Deps, top *objtree.Object) (result *objtree.Object) {
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(diag.Fatal)
			if !ok {
				panic(r)
			}
			d.Sink.Errorf(f.Location, "%s", f.Message)
			result = nil
		}
	}()

	c := newRootCtx(d)

	var elabRoot *objtree.Object
	var topUnitName string

	if top != nil && top.Kind == objtree.KindVerilog {
		elabRoot, topUnitName = runVerilogRoot(c, top)
	} else {
		elabRoot, topUnitName = runVHDLRoot(c, top)
	}

	teardown(d, topUnitName)

	if d.Sink.HasErrors() {
		return nil
	}
	if !checkArtifactShape(d.Sink, elabRoot) {
		return nil
	}
	return elabRoot
}

var (
	artifactGuardOnce sync.Once
	artifactGuard     *diag.SchemaGuard
)

// checkArtifactShape validates the finished tree against the embedded
// schema: a "<top>.elab" name and exactly one top-level block child.
// The projection crosses the same boundary the lowering consumers
// read, so a shape mismatch surfaces here instead of downstream.
func checkArtifactShape(sink *diag.Sink, root *objtree.Object) bool {
	artifactGuardOnce.Do(func() {
		g, err := diag.NewSchemaGuard()
		if err != nil {
			diag.Fatalf("<artifact-schema>", "%v", err)
		}
		artifactGuard = g
	})

	shape := map[string]interface{}{"name": strings.ToLower(root.Ident.String())}
	if len(root.Stmts) == 1 {
		top := root.Stmts[0]
		shape["top"] = map[string]interface{}{
			"kind": top.Kind.String(),
			"name": strings.ToLower(top.Ident.String()),
		}
	}
	if err := artifactGuard.ValidateArtifact(shape); err != nil {
		sink.Errorf("<root>", "elaboration artifact has invalid shape: %v", err)
		return false
	}
	return true
}

// runVHDLRoot is the VHDL entry point: accept Entity (pick
// arch), Arch (use directly), or Configuration (unwrap); build a
// top-level binding that supplies only defaults or overrides, leaving
// ports Open (unconstrained unconnected ports are errors); recurse as
// an architecture.
func runVHDLRoot(c *Ctx, top *objtree.Object) (*objtree.Object, string) {
	if top == nil {
		diag.Fatalf("<root>", "unreachable: nil top-level unit")
	}

	var entity, arch, config *objtree.Object
	switch top.Kind {
	case objtree.KindEntity:
		entity = top
		arch = library.ChooseArchitecture(c.Library, c.Sink, c.WorkingLibrary, entity.Ident.String(), top.Pos.String())
	case objtree.KindArch:
		arch = top
		entity = resolveEntityOf(c, arch)
	case objtree.KindConfiguration:
		bc, ok := bind.UnwrapConfiguration(c.Sink, top)
		if !ok {
			return nil, ""
		}
		arch = bc.Ref
		if arch == nil {
			c.Sink.Errorf(top.Pos.String(), "configuration %s's block configuration names no architecture", top.Ident)
			return nil, ""
		}
		entity = resolveEntityOf(c, arch)
		config = top
	default:
		c.Sink.Errorf(top.Pos.String(), "unsupported top-level unit kind %s", top.Kind)
		return nil, ""
	}
	if entity == nil || arch == nil {
		return nil, ""
	}

	elabRoot := &objtree.Object{Kind: objtree.KindBlock, Pos: top.Pos, Ident: ident.New(entity.Ident.String() + ".elab")}
	c.Out = elabRoot

	elaborateArchitecture(c, archCall{
		Label:  entity.Ident,
		Entity: entity,
		Arch:   arch,
		Config: config,
		Loc:    top.Pos,
	})

	if len(elabRoot.Stmts) == 0 {
		return elabRoot, ""
	}
	return elabRoot, elabRoot.Stmts[0].Ident.String()
}

// runVerilogRoot is the Verilog entry point: resolve the
// module cache entry and elaborate the module with a null binding
// (no port connections at all).
func runVerilogRoot(c *Ctx, top *objtree.Object) (*objtree.Object, string) {
	mod := top.VNode
	if mod == nil {
		diag.Fatalf(top.Pos.String(), "unreachable: Verilog root has no module")
	}

	entry, err := c.ModCache.Get(c.Vlog, c.Registry, mod, translateModuleToBlock)
	if err != nil {
		c.Sink.Errorf(top.Pos.String(), "lowering module %s: %v", mod.Ident, err)
		return nil, ""
	}

	elabRoot := &objtree.Object{Kind: objtree.KindBlock, Pos: top.Pos, Ident: ident.New(mod.Ident.String() + ".elab")}
	c.Out = elabRoot

	child := c.child()
	rootInstName := extendLabel("", mod.Ident.String())
	rootDotted := extendDotted("", mod.Ident.String())
	child.Out = &objtree.Object{Kind: objtree.KindBlock, Pos: mod.Pos, Ident: entry.Block.Ident, Ports: entry.Block.Ports, InstName: rootInstName, Dotted: rootDotted}
	child.InstName = rootInstName
	child.Dotted = rootDotted
	c.Out.Stmts = append(c.Out.Stmts, child.Out)

	pushScope(child, objtree.KindVerilog)
	defer popScope(child)

	unit, err := child.Lowerer.Lower(child.Registry, child.Out, entry.Shape)
	if err != nil {
		child.Sink.Errorf(top.Pos.String(), "lowering %s: %v", child.InstName, err)
		return elabRoot, ""
	}
	child.Lowered = unit

	return elabRoot, child.Out.Ident.String()
}

// teardown closes out a run: free the module cache (it owns its
// entries), warn about unused overrides, and flush the top-level
// unit from the registry.
func teardown(d *Deps, topUnitName string) {
	d.ModCache.Free()

	for _, name := range d.Overrides.Unused() {
		d.Sink.Warnf("<root>", "generic value for %s not used", name)
	}
	logUnusedOverrides(d.Options, d.Overrides.Unused())

	if topUnitName != "" {
		d.Registry.Flush(topUnitName)
	}
}
