package elab

import "github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"

// simplify is the global simplifier run after instance fixup:
// substitute references to a literal-valued generic throughout the
// copied architecture with that literal, using the context's folded
// generic map.
func simplify(c *Ctx, root *objtree.Object) {
	if root == nil || len(c.Generics) == 0 {
		return
	}
	simplifySlice(c, root.Decls)
	simplifySlice(c, root.Stmts)
	simplifySlice(c, root.Generics)
	simplifySlice(c, root.Ports)
	simplifyParams(c, root.Params)
	simplifyParams(c, root.GenMaps)
}

func simplifySlice(c *Ctx, list []*objtree.Object) {
	for _, o := range list {
		substituteInPlace(c, o)
	}
}

func simplifyParams(c *Ctx, list []objtree.Param) {
	for i := range list {
		if lit, ok := resolveLiteral(c, list[i].Value); ok {
			list[i].Value = lit
		} else {
			substituteInPlace(c, list[i].Value)
		}
	}
}

// substituteInPlace rewrites o's own Ref-typed children in place when
// they refer to a simplified generic, then recurses into o's
// structure.
func substituteInPlace(c *Ctx, o *objtree.Object) {
	if o == nil {
		return
	}
	if o.Ref != nil {
		if lit, ok := resolveLiteral(c, &objtree.Object{Kind: objtree.KindRef, Ref: o.Ref}); ok {
			o.Kind = objtree.KindLiteral
			o.SubKind = lit.SubKind
			o.IntVal = lit.IntVal
			o.RealVal = lit.RealVal
			o.Type = lit.Type
			o.Ref = nil
			return
		}
	}
	simplifySlice(c, o.Decls)
	simplifySlice(c, o.Stmts)
	simplifySlice(c, o.Children)
	simplifyParams(c, o.Params)
	simplifyParams(c, o.GenMaps)
}

// resolveLiteral reports whether o is a Ref to a generic that has
// already been folded to a literal at this level, returning that
// literal.
func resolveLiteral(c *Ctx, o *objtree.Object) (*objtree.Object, bool) {
	if o == nil || o.Kind != objtree.KindRef || o.Ref == nil {
		return nil, false
	}
	lit, ok := c.Generics[o.Ref]
	return lit, ok
}
