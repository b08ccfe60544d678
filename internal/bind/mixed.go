package bind

import (
	"github.com/robert-at-pretension-io/vhdl-elab/internal/coerce"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/diag"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/ident"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// MixedComponentToModule binds a VHDL
// component instance to a Verilog module, converting across the type
// systems with the coercion tables. module.Ports is indexed
// in source order, and that same index is used against the synthetic
// VHDL block built by the module cache by the caller; the
// index itself is not threaded through Binding.
func MixedComponentToModule(sink *diag.Sink, ct *coerce.Table, component *objtree.Object, module *objtree.VNode) (*Binding, bool) {
	matched := make([]bool, len(component.Ports))
	haveNamed := false
	ok := true

	b := newBinding(module.Ident, module.Pos, nil)
	b.Class = objtree.ClassComponent

	for _, vp := range module.Ports {
		cp, idx := findComponentPortExact(component.Ports, vp.Ident2)
		if cp == nil {
			sink.Errorf(component.Pos.String(), "component %s has no port named %s matching module %s's port %s (case-sensitive)",
				component.Ident, vp.Ident2, module.Ident, vp.Ident2)
			ok = false
			continue
		}
		matched[idx] = true

		ref := &objtree.Object{Kind: objtree.KindRef, Pos: cp.Pos, Ref: cp, Type: cp.Type}

		switch vp.Direction {
		case objtree.DirIn:
			m, found := ct.LookupMixed(cp.Type, vp.Type, coerce.DirInput)
			if !found {
				sink.Errorf(cp.Pos.String(), "no coercion from %s to %s for input port %s", cp.Type, vp.Type, vp.Ident2)
				ok = false
				continue
			}
			conv := &objtree.Object{Kind: objtree.KindConvFunc, Pos: cp.Pos, Ident: ident.New(m.Func), Ref: ref, Type: m.Result}
			if !haveNamed {
				b.Params = append(b.Params, objtree.Param{Kind: objtree.ParamPos, Pos: len(b.Params), Value: conv})
			} else {
				b.Params = append(b.Params, objtree.Param{Kind: objtree.ParamNamed, Name: vp.Ident2, Value: conv})
			}

		case objtree.DirOut:
			m, found := ct.LookupMixed(vp.Type, cp.Type, coerce.DirOutput)
			if !found {
				sink.Errorf(cp.Pos.String(), "no coercion from %s to %s for output port %s", vp.Type, cp.Type, vp.Ident2)
				ok = false
				continue
			}
			conv := &objtree.Object{Kind: objtree.KindConvFunc, Pos: cp.Pos, Ident: ident.New(m.Func), Ref: ref, Type: m.Result}
			b.Params = append(b.Params, objtree.Param{Kind: objtree.ParamNamed, Name: vp.Ident2, Value: conv})
			haveNamed = true

		default:
			sink.Errorf(vp.Pos.String(), "module %s port %s has unsupported direction for mixed binding", module.Ident, vp.Ident2)
			ok = false
		}
	}

	for i, cp := range component.Ports {
		if !matched[i] {
			sink.Errorf(cp.Pos.String(), "component %s port %s is not connected by module %s", component.Ident, cp.Ident, module.Ident)
			ok = false
		}
	}

	if ok {
		checkShape(b)
	}
	return b, ok
}

// findComponentPortExact matches case-sensitively on Ident, the one
// binding direction where case is not folded, unlike the default
// VHDL binding's case-insensitive identifier matching.
func findComponentPortExact(ports []*objtree.Object, name ident.Ident) (*objtree.Object, int) {
	target := name.String()
	for i, p := range ports {
		if p.Ident.String() == target {
			return p, i
		}
	}
	return nil, -1
}
