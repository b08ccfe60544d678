package elab

import "github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"

// translateModuleToBlock is the language-crossing translation step
// behind the module cache: a synthetic VHDL Block
// with location and name copied from mod, its port list mirrored as
// VHDL PortDecl nodes (direction and type carried over verbatim) so
// that downstream VHDL-side port matching (internal/bind) can treat a
// cached Verilog module exactly like an entity's port list.
func translateModuleToBlock(mod *objtree.VNode) *objtree.Object {
	block := &objtree.Object{
		Kind:  objtree.KindBlock,
		Pos:   mod.Pos,
		Ident: mod.Ident,
	}
	block.Ports = make([]*objtree.Object, len(mod.Ports))
	for i, vp := range mod.Ports {
		block.Ports[i] = &objtree.Object{
			Kind:      objtree.KindPortDecl,
			Pos:       vp.Pos,
			Ident:     vp.Ident2,
			Direction: vp.Direction,
			Type:      vp.Type,
		}
	}
	return block
}
