package elab

import (
	"strconv"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/foldeval"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// Generate-statement nodes use a small set of conventions on top of
// the shared objtree.Object shape, documented here rather than adding
// dedicated fields for a single statement family:
//
//   - for-generate: Decls[0] is the genvar formal; Children[0]/[1] are
//     the range's low/high bound expressions; Stmts is the body.
//   - if-generate: Children holds one branch Object per alternative in
//     source order; a branch's Value is its condition (nil for the
//     trailing else); Stmts is that branch's body.
//   - case-generate: Value is the selector expression; Children holds
//     one alternative Object per choice list, whose own Children are
//     the literal choice values and whose Stmts is that alternative's
//     body.

// elaborateForGenerate expands a for-generate statement.
func elaborateForGenerate(c *Ctx, gen *objtree.Object) {
	if len(gen.Decls) != 1 || len(gen.Children) != 2 {
		c.Sink.Errorf(gen.Pos.String(), "for-generate %s is malformed", gen.Ident)
		return
	}
	genvar := gen.Decls[0]

	lo, hi, ok := foldeval.FoldRange(c.Folder, gen.Children[0], gen.Children[1], c.FoldContext(), c.JIT)
	if !ok {
		c.Sink.Errorf(gen.Pos.String(), "for-generate %s has a non-static range", gen.Ident)
		return
	}

	// low > high expands to zero child blocks without error.
	for i := lo; i <= hi; i++ {
		if !runForGenerateIteration(c, gen, genvar, i) {
			return
		}
	}
}

func runForGenerateIteration(c *Ctx, gen *objtree.Object, genvar *objtree.Object, i int64) bool {
	if c.nextDepthExceeded() {
		c.Sink.Errorf(gen.Pos.String(), "maximum instantiation depth of %d reached", c.Options.maxDepth())
		return false
	}

	instName := extendIndexedLabel(c.InstName, gen.Ident.String(), i)
	dotted := extendDotted(c.Dotted, gen.Ident.String()+"("+strconv.FormatInt(i, 10)+")")

	iterLit := &objtree.Object{Kind: objtree.KindLiteral, Pos: gen.Pos, SubKind: objtree.LitInt, IntVal: i, Type: genvar.Type}

	child := c.child()
	child.Out = &objtree.Object{
		Kind:     objtree.KindBlock,
		Pos:      gen.Pos,
		Ident:    gen.Ident,
		GenMaps:  []objtree.Param{{Kind: objtree.ParamPos, Pos: 0, Value: iterLit}},
		InstName: instName,
		Dotted:   dotted,
	}
	child.InstName = instName
	child.Dotted = dotted
	child.Generics = mergeGenerics(c.FoldContext(), genvar, iterLit)
	c.Out.Stmts = append(c.Out.Stmts, child.Out)

	pushScope(child, objtree.KindForGenerate)
	defer popScope(child)

	body := copyWithRenaming(gen.Stmts)
	simplifySlice(child, body)
	child.Drivers = child.Analyser.Drivers(body)

	if child.Sink.HasErrors() {
		return true
	}
	unit, err := child.Lowerer.Lower(child.Registry, child.Out, nil)
	if err != nil {
		child.Sink.Errorf(gen.Pos.String(), "lowering %s: %v", instName, err)
		return true
	}
	child.Lowered = unit

	// lowering sees the block before statement descent populates
	// child.Out.Stmts; statements elaborate only after the unit is
	// lowered.
	ElaborateStatements(child, body)
	return true
}

// elaborateIfGenerate expands an if-generate: recurse into
// the first true branch, or the else branch if present. No true
// branch and no else emits no block and no error.
func elaborateIfGenerate(c *Ctx, gen *objtree.Object) {
	for _, branch := range gen.Children {
		if branch.Value == nil {
			runGenerateBranch(c, gen, branch)
			return
		}
		lit, ok := c.Folder.TryFold(branch.Value, c.FoldContext(), c.JIT)
		if !ok {
			c.Sink.Errorf(branch.Value.Pos.String(), "if-generate %s has a non-static condition", gen.Ident)
			return
		}
		if lit.IntVal != 0 {
			runGenerateBranch(c, gen, branch)
			return
		}
	}
}

// elaborateCaseGenerate expands a case-generate: resolve
// the chosen alternative via EvalCase; no match emits nothing.
func elaborateCaseGenerate(c *Ctx, gen *objtree.Object) {
	alternatives := make([][]*objtree.Object, len(gen.Children))
	for i, alt := range gen.Children {
		alternatives[i] = alt.Children
	}
	idx := c.Folder.EvalCase(gen.Value, alternatives, c.FoldContext(), c.JIT)
	if idx < 0 || idx >= len(gen.Children) {
		return
	}
	runGenerateBranch(c, gen, gen.Children[idx])
}

// runGenerateBranch builds the single child block an if-generate or
// case-generate's chosen branch produces, named after the generate
// label alone, unindexed, unlike for-generate's per-iteration
// blocks.
func runGenerateBranch(c *Ctx, gen, branch *objtree.Object) {
	if c.nextDepthExceeded() {
		c.Sink.Errorf(gen.Pos.String(), "maximum instantiation depth of %d reached", c.Options.maxDepth())
		return
	}

	instName := extendLabel(c.InstName, gen.Ident.String())
	dotted := extendDotted(c.Dotted, gen.Ident.String())

	child := c.child()
	child.Out = &objtree.Object{Kind: objtree.KindBlock, Pos: gen.Pos, Ident: gen.Ident, InstName: instName, Dotted: dotted}
	child.InstName = instName
	child.Dotted = dotted
	c.Out.Stmts = append(c.Out.Stmts, child.Out)

	pushScope(child, gen.Kind)
	defer popScope(child)

	body := copyWithRenaming(branch.Stmts)
	simplifySlice(child, body)
	child.Drivers = child.Analyser.Drivers(body)

	if child.Sink.HasErrors() {
		return
	}
	unit, err := child.Lowerer.Lower(child.Registry, child.Out, nil)
	if err != nil {
		child.Sink.Errorf(gen.Pos.String(), "lowering %s: %v", instName, err)
		return
	}
	child.Lowered = unit

	ElaborateStatements(child, body)
}

func mergeGenerics(outer foldeval.InstanceContext, genvar, value *objtree.Object) foldeval.InstanceContext {
	merged := foldeval.InstanceContext{}
	for k, v := range outer {
		merged[k] = v
	}
	merged[genvar] = value
	return merged
}
