package objtree

import "github.com/robert-at-pretension-io/vhdl-elab/internal/ident"

// VKind is a Verilog node's kind tag. Verilog nodes have a kind set
// disjoint from the VHDL Kind enumeration.
type VKind int

const (
	VKindInvalid VKind = iota
	VKindModule
	VKindModInst  // V_MOD_INST
	VKindPortDecl // V_PORT_DECL
	VKindRef      // V_REF
	VKindStmt
)

func (k VKind) String() string {
	switch k {
	case VKindModule:
		return "module"
	case VKindModInst:
		return "mod-inst"
	case VKindPortDecl:
		return "port-decl"
	case VKindRef:
		return "ref"
	case VKindStmt:
		return "stmt"
	default:
		return "invalid"
	}
}

// VNode is a Verilog-side design node.
type VNode struct {
	Kind VKind
	Pos  Pos

	Ident  ident.Ident // the node's own name
	Ident2 ident.Ident // e.g. the port's formal name, case-sensitive

	Direction Direction
	Type      *Type

	Ports []*VNode // V_PORT_DECL children of a module, in source order
	Ref   *VNode   // module a V_MOD_INST refers to

	// Conns holds a V_MOD_INST's positional port connections, aligned
	// index-for-index with Ref.Ports.
	Conns []*VNode

	ModuleName ident.Ident // instantiated module's name, case-sensitive
}

// NewV creates a VNode of the given kind.
func NewV(kind VKind, pos Pos) *VNode {
	return &VNode{Kind: kind, Pos: pos}
}
