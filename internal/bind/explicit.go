package bind

import (
	"github.com/robert-at-pretension-io/vhdl-elab/internal/diag"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// ExplicitVHDL builds a binding supplied by a Spec
// or Configuration/BlockConfig is used as-is, after resolving the
// architecture through the config tree.
//
// node is the KindBinding object attached to the instance's Spec (or
// the Spec/instance's own binding indication); it already carries
// ident/loc/genmaps/params populated by the parser, per "used as-is".
// If node.Ref is a Configuration rather than an Arch directly, the
// architecture is located via a depth-1 lookup: the configuration's
// first declaration is its root BlockConfig, whose Ref is the
// architecture.
func ExplicitVHDL(sink *diag.Sink, node *objtree.Object) (*Binding, bool) {
	ref := node.Ref
	if ref != nil && ref.Kind == objtree.KindConfiguration {
		bc, ok := UnwrapConfiguration(sink, ref)
		if !ok {
			return nil, false
		}
		ref = bc.Ref
	}

	b := newBinding(node.Ident, node.Pos, ref)
	b.Class = node.Class
	b.GenMaps = node.GenMaps
	b.Params = node.Params
	checkShape(b)
	return b, true
}

// UnwrapConfiguration performs the depth-1 BlockConfig lookup: a
// Configuration's first declaration is its root BlockConfig.
// Multi-declaration configurations are unimplemented and surface a
// diagnostic instead of silently proceeding.
func UnwrapConfiguration(sink *diag.Sink, config *objtree.Object) (*objtree.Object, bool) {
	if len(config.Decls) != 1 {
		sink.Errorf(config.Pos.String(),
			"configuration %s has %d declarations; only a single root block configuration is supported",
			config.Ident, len(config.Decls))
		return nil, false
	}
	bc := config.Decls[0]
	if bc.Kind != objtree.KindBlockConfig {
		sink.Errorf(config.Pos.String(), "configuration %s's sole declaration is not a block configuration", config.Ident)
		return nil, false
	}
	return bc, true
}
