package elab

import (
	"github.com/robert-at-pretension-io/vhdl-elab/internal/bind"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/diag"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/library"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// ElaborateStatements elaborates a statement list belonging to an
// architecture, block, or generate body, dispatched by statement
// kind in source order.
func ElaborateStatements(c *Ctx, stmts []*objtree.Object) {
	for _, stmt := range stmts {
		elaborateStatement(c, stmt)
	}
}

func elaborateStatement(c *Ctx, stmt *objtree.Object) {
	switch stmt.Kind {
	case objtree.KindInstance:
		elaborateInstance(c, stmt)
	case objtree.KindForGenerate:
		elaborateForGenerate(c, stmt)
	case objtree.KindIfGenerate:
		elaborateIfGenerate(c, stmt)
	case objtree.KindCaseGenerate:
		elaborateCaseGenerate(c, stmt)
	case objtree.KindProcess, objtree.KindPSL:
		elaborateProcessOrPSL(c, stmt)
	case objtree.KindVerilog:
		elaborateVerilogStatement(c, stmt)
	default:
		diag.Fatalf(stmt.Pos.String(), "unreachable: unexpected statement kind %s in elaboration recursor", stmt.Kind)
	}
}

// elaborateInstance descends into an instance; the referenced design
// unit decides the path.
func elaborateInstance(c *Ctx, inst *objtree.Object) {
	target := inst.Ref
	if target == nil {
		diag.Fatalf(inst.Pos.String(), "unreachable: instance %s has no resolved reference", inst.Ident)
	}

	switch target.Kind {
	case objtree.KindEntity:
		arch := library.ChooseArchitecture(c.Library, c.Sink, c.WorkingLibrary, target.Ident.String(), inst.Pos.String())
		elaborateArchitecture(c, archCall{
			Label: inst.Ident, Entity: target, Arch: arch,
			GenMapsActual: inst.GenMaps, ParamsActual: inst.Params, Loc: inst.Pos,
		})

	case objtree.KindArch:
		entity := resolveEntityOf(c, target)
		if entity == nil {
			return
		}
		elaborateArchitecture(c, archCall{
			Label: inst.Ident, Entity: entity, Arch: target,
			GenMapsActual: inst.GenMaps, ParamsActual: inst.Params, Loc: inst.Pos,
		})

	case objtree.KindComponent:
		elaborateComponent(c, inst, target)

	case objtree.KindConfiguration:
		bc, ok := bind.UnwrapConfiguration(c.Sink, target)
		if !ok {
			return
		}
		arch := bc.Ref
		if arch == nil {
			c.Sink.Errorf(target.Pos.String(), "configuration %s's block configuration names no architecture", target.Ident)
			return
		}
		entity := resolveEntityOf(c, arch)
		if entity == nil {
			return
		}
		elaborateArchitecture(c, archCall{
			Label: inst.Ident, Entity: entity, Arch: arch, Config: target,
			GenMapsActual: inst.GenMaps, ParamsActual: inst.Params, Loc: inst.Pos,
		})

	default:
		diag.Fatalf(inst.Pos.String(), "unreachable: instance %s references unexpected kind %s", inst.Ident, target.Kind)
	}
}

// elaborateProcessOrPSL handles a process or PSL directive: lower
// into the current lowered unit and copy it verbatim into the output
// block, with no further descent. Lowering itself happens once per
// scope (architecture.go's call to Lowerer.Lower); here the statement
// is simply carried into the block untouched.
func elaborateProcessOrPSL(c *Ctx, stmt *objtree.Object) {
	c.Out.Stmts = append(c.Out.Stmts, stmt.Copy())
}

// elaborateVerilogStatement handles a wrapped Verilog statement: a
// module-instance wrapper resolves its module, checks the
// case-sensitive module name, fetches the module cache entry, and
// builds a Verilog binding; anything else is copied through.
func elaborateVerilogStatement(c *Ctx, stmt *objtree.Object) {
	vnode := stmt.VNode
	if vnode == nil || vnode.Kind != objtree.VKindModInst {
		c.Out.Stmts = append(c.Out.Stmts, stmt.Copy())
		return
	}

	mod := vnode.Ref
	if mod == nil {
		u, ok := c.Library.Lookup(library.QualifiedName(c.WorkingLibrary, vnode.ModuleName))
		if !ok || u.Object == nil || u.Object.VNode == nil {
			c.Sink.Errorf(vnode.Pos.String(), "no module named %s found in library %s", vnode.ModuleName, c.WorkingLibrary)
			return
		}
		mod = u.Object.VNode
	}

	if mod.Ident.String() != vnode.ModuleName.String() {
		c.Sink.PushHint("library names are not case sensitive")
		c.Sink.Errorf(vnode.Pos.String(), "instance %s names module %q but the library resolved %q (case mismatch)",
			vnode.Ident, vnode.ModuleName, mod.Ident)
		c.Sink.PopHint()
		return
	}

	entry, err := c.ModCache.Get(c.Vlog, c.Registry, mod, translateModuleToBlock)
	if err != nil {
		c.Sink.Errorf(vnode.Pos.String(), "lowering module %s: %v", mod.Ident, err)
		return
	}

	vnode.Ref = mod
	binding, ok := bind.VerilogInstance(c.Sink, c.Coerce, c.Out, vnode)
	if !ok {
		return
	}

	instName := extendPrimaryArch(extendLabel(c.InstName, vnode.Ident.String()), mod.Ident.String(), mod.Ident.String())
	dotted := extendDotted(c.Dotted, vnode.Ident.String())

	if c.nextDepthExceeded() {
		c.Sink.Errorf(vnode.Pos.String(), "maximum instantiation depth of %d reached", c.Options.maxDepth())
		return
	}

	child := c.child()
	child.Out = &objtree.Object{Kind: objtree.KindBlock, Pos: vnode.Pos, Ident: entry.Block.Ident, Ports: entry.Block.Ports, Params: binding.Params, InstName: instName, Dotted: dotted}
	child.InstName = instName
	child.Dotted = dotted
	c.Out.Stmts = append(c.Out.Stmts, child.Out)

	pushScope(child, objtree.KindVerilog)
	defer popScope(child)

	unit, err := child.Lowerer.Lower(child.Registry, child.Out, entry.Shape)
	if err != nil {
		child.Sink.Errorf(vnode.Pos.String(), "lowering instance %s: %v", instName, err)
		return
	}
	child.Lowered = unit
}
