package elab

import (
	"github.com/robert-at-pretension-io/vhdl-elab/internal/diag"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/generics"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/ident"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// archCall bundles the inputs to elaborateArchitecture, gathered by
// whichever caller resolved a binding (direct instance, explicit spec,
// default binding, or a root driver).
type archCall struct {
	Label                       ident.Ident
	Entity, Arch, Config        *objtree.Object
	GenMapsActual, ParamsActual []objtree.Param
	Loc                         objtree.Pos
}

// elaborateArchitecture runs the deterministic phase order: entity
// context -> arch context -> generics -> fixup -> simplify -> ports
// -> entity decls -> arch decls -> drivers -> lower -> entity stmts
// -> arch stmts. Each phase is gated on the sink's error count.
func elaborateArchitecture(c *Ctx, call archCall) {
	if c.nextDepthExceeded() {
		c.Sink.Errorf(call.Loc.String(), "maximum instantiation depth of %d reached", c.Options.maxDepth())
		return
	}

	instName := extendPrimaryArch(extendLabel(c.InstName, call.Label.String()), call.Entity.Ident.String(), call.Arch.Ident.String())
	dotted := extendDotted(c.Dotted, call.Label.String())

	// elab_copy (step 2): fresh copies under the context prefix,
	// reusing the flag union the input carried, with every locally
	// declared subprogram renamed per instance.
	prefix := [2]ident.Ident{call.Arch.Ident, call.Entity.Ident}
	entityCopy, archCopy, configCopy := copyUnit(prefix, call.Entity, call.Arch, call.Config)

	child := c.child()
	child.Out = &objtree.Object{Kind: objtree.KindBlock, Pos: call.Arch.Pos, Ident: archCopy.Ident, InstName: instName, Dotted: dotted}
	child.Config = configCopy
	child.InstName = instName
	child.Dotted = dotted
	child.Prefix = prefix
	c.Out.Stmts = append(c.Out.Stmts, child.Out)

	logPhase(child, "architecture")

	pushScope(child, call.Arch.Kind)
	defer popScope(child)

	hintDone := childHint(child, call.GenMapsActual)
	defer hintDone()

	// entity context / arch context: elab_context would preload every
	// referenced library here; this core has no separate preload step
	// since internal/library resolves lazily on demand.

	genmaps, foldedGenerics := generics.Resolve(child.Sink, child.Folder, child.JIT, child.Overrides, c.FoldContext(), entityCopy, call.GenMapsActual, dotted)
	child.Generics = foldedGenerics
	child.Out.GenMaps = genmaps

	sub := generics.BuildSubstitution(child.Sink, entityCopy, genmaps)
	generics.Apply(sub, entityCopy)
	generics.Apply(sub, archCopy)

	simplify(child, entityCopy)
	simplify(child, archCopy)

	if child.Sink.HasErrors() {
		return
	}

	child.Out.Params = matchPortsDirect(child, entityCopy, call.ParamsActual)
	child.Out.Ports = entityCopy.Ports

	if child.Sink.HasErrors() {
		return
	}
	child.Out.Decls = concatObjects(entityCopy.Decls, archCopy.Decls)

	allStmts := concatObjects(entityCopy.Stmts, archCopy.Stmts)
	child.Drivers = child.Analyser.Drivers(allStmts)

	if child.Sink.HasErrors() {
		return
	}
	unit, err := child.Lowerer.Lower(child.Registry, child.Out, nil)
	if err != nil {
		child.Sink.Errorf(call.Arch.Pos.String(), "lowering %s: %v", instName, err)
		return
	}
	child.Lowered = unit

	if child.Sink.HasErrors() {
		return
	}
	ElaborateStatements(child, entityCopy.Stmts)
	ElaborateStatements(child, archCopy.Stmts)
}

// matchPortsDirect matches ports: actuals already positionally
// aligned with entity's port order (by bind.DefaultVHDL/
// ExplicitVHDL, or supplied directly by a caller that built no
// Binding at all) fill entity.Ports by index; any port left
// unconnected defaults to Open if its type is fully constrained,
// otherwise an unconstrained unconnected port is an error.
func matchPortsDirect(c *Ctx, entity *objtree.Object, actual []objtree.Param) []objtree.Param {
	byPos := make(map[int]*objtree.Object, len(actual))
	for _, p := range actual {
		if p.Kind == objtree.ParamPos {
			byPos[p.Pos] = p.Value
		}
	}

	out := make([]objtree.Param, len(entity.Ports))
	for i, p := range entity.Ports {
		v := byPos[i]
		if v == nil {
			if p.Type == nil || !p.Type.Constrained {
				c.Sink.Errorf(p.Pos.String(), "port %s has unconstrained type and is not connected", p.Ident)
			}
			v = &objtree.Object{Kind: objtree.KindOpen, Pos: p.Pos}
		}
		out[i] = objtree.Param{Kind: objtree.ParamPos, Pos: i, Value: v}
	}
	return out
}

func concatObjects(a, b []*objtree.Object) []*objtree.Object {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make([]*objtree.Object, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// childHint wraps diag.WithInstanceHint for a context's own dotted
// label, used by every level that introduces a new scope.
func childHint(c *Ctx, genmaps []objtree.Param) func() {
	return diag.WithInstanceHint(c.Sink, c.InstName, genmaps)
}
