// Package lower provides the narrow interfaces for the lowering pass,
// the driver analyser, and the unit registry collaborators,
// plus minimal concrete implementations sufficient to exercise
// elaboration end-to-end.
package lower

import (
	"fmt"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// Shape is the opaque handle the module cache stores for a lowered
// Verilog module.
type Shape struct {
	ModuleName string
	PortCount  int
}

// Unit is a lowered design unit bound to the registry.
type Unit struct {
	Name  string // dotted name, matches the owning Ctx's dotted field
	Block *objtree.Object
	Shape *Shape
	final bool
}

// Lowerer is the narrow interface elaboration consumes for the
// lowering pass: given a block and an optional shape, produce a
// lowered unit bound to registry.
type Lowerer interface {
	Lower(registry *Registry, block *objtree.Object, shape *Shape) (*Unit, error)
}

// VlogLower is the narrow interface the module cache consumes,
// standing in for "vlog_lower(registry, mir, mod)".
type VlogLower interface {
	LowerModule(registry *Registry, mod *objtree.VNode) (*Shape, error)
}

// Basic is a minimal concrete Lowerer/VlogLower: it wraps the block
// (or module) without performing any real IR generation, sufficient
// to drive the elaboration recursor's phase ordering and exercise
// the registry end to end.
type Basic struct{}

// NewBasic creates a Basic lowerer.
func NewBasic() *Basic { return &Basic{} }

func (b *Basic) Lower(registry *Registry, block *objtree.Object, shape *Shape) (*Unit, error) {
	if block == nil {
		return nil, fmt.Errorf("lower: nil block")
	}
	u := &Unit{Name: block.Ident.String(), Block: block, Shape: shape}
	registry.Bind(u)
	return u, nil
}

func (b *Basic) LowerModule(registry *Registry, mod *objtree.VNode) (*Shape, error) {
	if mod == nil {
		return nil, fmt.Errorf("lower: nil module")
	}
	return &Shape{ModuleName: mod.Ident.String(), PortCount: len(mod.Ports)}, nil
}
