package bind

import (
	"github.com/robert-at-pretension-io/vhdl-elab/internal/coerce"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/diag"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/ident"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// VerilogInstance binds a Verilog instance
// into a Verilog module. Port-count mismatch is a hard (continuable)
// error. Each positional connection resolves against outBlock's ports
// then its decls; a connection naming neither is a core invariant
// violation (the parser should never have produced it), raised as
// diag.Fatal.
func VerilogInstance(sink *diag.Sink, ct *coerce.Table, outBlock *objtree.Object, inst *objtree.VNode) (*Binding, bool) {
	module := inst.Ref
	if len(inst.Conns) != len(module.Ports) {
		sink.Errorf(inst.Pos.String(), "instance %s connects %d ports but module %s declares %d",
			inst.Ident, len(inst.Conns), module.Ident, len(module.Ports))
		return nil, false
	}

	b := newBinding(module.Ident, inst.Pos, nil)
	b.Class = objtree.ClassDefault
	haveNamed := false
	ok := true

	for i, conn := range inst.Conns {
		decl := resolveSignal(outBlock, conn.Ident)
		if decl == nil {
			diag.Fatalf(inst.Pos.String(), "connection %s of instance %s resolves to neither a port nor a declaration",
				conn.Ident, inst.Ident)
		}

		portDecl := module.Ports[i]
		ref := &objtree.Object{Kind: objtree.KindRef, Pos: decl.Pos, Ref: decl, Type: decl.Type}

		value := ref
		if decl.Type != nil && portDecl.Type != nil && !decl.Type.Equal(portDecl.Type) {
			from, to := decl.Type, portDecl.Type
			if portDecl.Direction != objtree.DirIn {
				from, to = portDecl.Type, decl.Type
			}
			m, found := ct.LookupVerilog(from, to)
			if !found {
				sink.Errorf(decl.Pos.String(), "no coercion from %s to %s connecting %s to port %s",
					from, to, conn.Ident, portDecl.Ident2)
				ok = false
				continue
			}
			value = &objtree.Object{Kind: objtree.KindConvFunc, Pos: decl.Pos, Ident: ident.New(m.Func), Ref: ref, Type: m.Result}
		}

		if decl.Type != nil && portDecl.Type != nil && decl.Type.Equal(portDecl.Type) && !haveNamed {
			b.Params = append(b.Params, objtree.Param{Kind: objtree.ParamPos, Pos: len(b.Params), Value: value})
		} else {
			b.Params = append(b.Params, objtree.Param{Kind: objtree.ParamNamed, Name: portDecl.Ident2, Value: value})
			haveNamed = true
		}
	}

	if ok {
		checkShape(b)
	}
	return b, ok
}

// resolveSignal looks up name against outBlock's ports, then its
// decls.
func resolveSignal(outBlock *objtree.Object, name ident.Ident) *objtree.Object {
	for _, p := range outBlock.Ports {
		if ident.CaseEqual(p.Ident, name) {
			return p
		}
	}
	for _, d := range outBlock.Decls {
		if ident.CaseEqual(d.Ident, name) {
			return d
		}
	}
	return nil
}
