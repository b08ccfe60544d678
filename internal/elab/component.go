package elab

import (
	"strings"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/bind"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/generics"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/ident"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/library"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// elaborateComponent elaborates a component instance: locate the
// applicable spec, derive or default the binding, clone if any
// non-constant generic demands it, then descend.
func elaborateComponent(c *Ctx, inst, component *objtree.Object) {
	logPhase(c, "component")

	spec := findSpec(inst, c.Config, component)

	var entity, arch, config *objtree.Object
	var genMapsActual, paramsActual []objtree.Param
	var label ident.Ident

	if spec != nil && spec.Ref != nil && spec.Ref.Kind == objtree.KindBinding {
		b, ok := bind.ExplicitVHDL(c.Sink, spec.Ref)
		if !ok {
			return
		}
		arch = b.Ref
		if arch == nil {
			c.Sink.Errorf(spec.Pos.String(), "binding indication for %s resolves to nothing", component.Ident)
			return
		}
		entity = resolveEntityOf(c, arch)
		genMapsActual, paramsActual = b.GenMaps, b.Params
		label = b.Ident
	} else {
		if c.Options != nil && c.Options.DisableDefaultBinding {
			c.Sink.Errorf(inst.Pos.String(), "component %s has no explicit binding and default binding resolution is disabled", component.Ident)
			return
		}
		res, ok := bind.DefaultVHDL(c.Sink, c.Library, c.WorkingLibrary, component)
		if !ok {
			return
		}
		if res.Module != nil {
			elaborateMixedBinding(c, inst, component, res.Module)
			return
		}
		entityFound := res.Binding.Ref
		arch = library.ChooseArchitecture(c.Library, c.Sink, c.WorkingLibrary, entityFound.Ident.String(), inst.Pos.String())
		entity = resolveEntityOf(c, arch)
		genMapsActual, paramsActual = res.Binding.GenMaps, res.Binding.Params
		label = inst.Ident
	}

	if entity == nil {
		return
	}

	// Per-use cloning: when the component has any non-constant generic
	// (type/subprogram/package), i.e. generics.BuildSubstitution is not
	// empty, component is replaced by a fresh deep copy; an all-constant
	// component is not copied. Nothing below reads component, so the
	// copy does not reach the output: elaborateArchitecture works from
	// entity, arch and the genmaps resolved above.
	if sub := generics.BuildSubstitution(c.Sink, entity, genMapsActual); !sub.IsEmpty() {
		component = component.CopyTree()
	}

	elaborateArchitecture(c, archCall{
		Label:         label,
		Entity:        entity,
		Arch:          arch,
		Config:        config,
		GenMapsActual: genMapsActual,
		ParamsActual:  paramsActual,
		Loc:           inst.Pos,
	})
}

// findSpec locates the applicable spec: an explicit Spec attached to
// the instance wins; otherwise search the enclosing BlockConfig for a
// Spec keyed by ident2 (the component kind) plus either the instance's
// own label or the reserved word ALL.
func findSpec(inst, config, component *objtree.Object) *objtree.Object {
	if inst.Ref != nil && inst.Ref.Kind == objtree.KindSpec {
		return inst.Ref
	}
	if config == nil {
		return nil
	}
	for _, d := range config.Decls {
		if d.Kind != objtree.KindSpec {
			continue
		}
		if !strings.EqualFold(d.Ident2.String(), component.Ident.String()) {
			continue
		}
		if d.Ident.IsNil() || strings.EqualFold(d.Ident.String(), "ALL") || strings.EqualFold(d.Ident.String(), inst.Ident.String()) {
			return d
		}
	}
	return nil
}

// resolveEntityOf looks up arch's primary entity by its Ident2 (the
// entity-name half of the library's "<entity>-<arch>" unit naming, see
// internal/library/fileload.go's archUnitName).
func resolveEntityOf(c *Ctx, arch *objtree.Object) *objtree.Object {
	if u, ok := c.Library.Lookup(library.QualifiedName(c.WorkingLibrary, arch.Ident2)); ok {
		return u.Object
	}
	c.Sink.Errorf(arch.Pos.String(), "architecture %s names an entity %s that cannot be found in library %s",
		arch.Ident, arch.Ident2, c.WorkingLibrary)
	return nil
}

// elaborateMixedBinding binds a VHDL component directly to a cached
// Verilog module, the fallthrough default binding takes when the
// referenced object turns out to be Verilog.
func elaborateMixedBinding(c *Ctx, inst, component *objtree.Object, mod *objtree.VNode) {
	logPhase(c, "mixed-binding")

	if c.nextDepthExceeded() {
		c.Sink.Errorf(inst.Pos.String(), "maximum instantiation depth of %d reached", c.Options.maxDepth())
		return
	}

	entry, err := c.ModCache.Get(c.Vlog, c.Registry, mod, translateModuleToBlock)
	if err != nil {
		c.Sink.Errorf(inst.Pos.String(), "lowering module %s: %v", mod.Ident, err)
		return
	}

	binding, ok := bind.MixedComponentToModule(c.Sink, c.Coerce, component, mod)
	if !ok {
		return
	}

	label := inst.Ident
	instName := extendPrimaryArch(extendLabel(c.InstName, label.String()), mod.Ident.String(), mod.Ident.String())
	dotted := extendDotted(c.Dotted, label.String())

	child := c.child()
	child.Out = &objtree.Object{Kind: objtree.KindBlock, Pos: mod.Pos, Ident: entry.Block.Ident, Ports: entry.Block.Ports, InstName: instName, Dotted: dotted}
	child.InstName = instName
	child.Dotted = dotted
	c.Out.Stmts = append(c.Out.Stmts, child.Out)

	pushScope(child, objtree.KindVerilog)
	defer popScope(child)

	hintDone := childHint(child, binding.GenMaps)
	defer hintDone()

	if child.Sink.HasErrors() {
		return
	}
	child.Out.Params = binding.Params

	unit, err := child.Lowerer.Lower(child.Registry, child.Out, entry.Shape)
	if err != nil {
		child.Sink.Errorf(mod.Pos.String(), "lowering instance %s: %v", instName, err)
		return
	}
	child.Lowered = unit
}
