package elab

import (
	"github.com/robert-at-pretension-io/vhdl-elab/internal/model"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// pushScope emits a Hier decl into the output
// block carrying the original source kind, the hierarchical path, and
// the dotted name, and creates the scope in the model under the
// parent scope. Scope lifetime is strictly nested: callers must call
// popScope exactly once, on every exit path.
func pushScope(c *Ctx, sourceKind objtree.Kind) {
	hier := &objtree.Object{
		Kind:  objtree.KindHier,
		Pos:   c.Out.Pos,
		Ident: c.Out.Ident,
		Value: &objtree.Object{Kind: sourceKind, Pos: c.Out.Pos},
	}
	c.Out.Decls = append(c.Out.Decls, hier)

	c.Scope = c.Model.Push(parentScopeOf(c), c.InstName)
}

// parentScopeOf returns the enclosing context's scope, or nil at the
// root.
func parentScopeOf(c *Ctx) *model.Scope {
	if c.Parent == nil {
		return nil
	}
	return c.Parent.Scope
}

// popScope undoes pushScope: frees the
// generics hash, the driver set, and finalises the lowered unit with
// the unit registry. It is idempotent-safe to call on a nil Lowered
// (nothing attached yet when an early error aborted this level).
func popScope(c *Ctx) {
	if c.Lowered != nil {
		if err := c.Registry.Finalize(c.Lowered); err != nil {
			diagFatalOnDoubleFinalize(c, err)
		}
	}
	c.Generics = nil
	c.Drivers = nil
	c.Scope.Pop()
}

func diagFatalOnDoubleFinalize(c *Ctx, err error) {
	c.Sink.Errorf(c.Out.Pos.String(), "%v", err)
}
