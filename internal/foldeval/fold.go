// Package foldeval is the constant folder: given a tree, an optional
// instance context, and a JIT handle, it returns a folded tree or
// reports failure. This package only defines the narrow interface the recursor and the generic resolver
// call through; a concrete scalar folder is provided for literals,
// generic references, simple arithmetic, and T'LOW/T'HIGH attribute
// references, enough to drive static generate-range/condition
// evaluation.
package foldeval

import (
	"go/constant"
	"go/token"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// JIT is the opaque handle the real evaluator dispatches expensive
// work through; elaboration never looks inside it.
type JIT interface{}

// InstanceContext supplies the formal-generic-to-literal map a fold
// consults to substitute generic references, keyed by the formal
// Object's pointer identity.
type InstanceContext map[*objtree.Object]*objtree.Object

// Folder is the narrow interface elaboration consumes.
type Folder interface {
	// TryFold attempts to fold o to a literal. ok is false if o is
	// not statically foldable.
	TryFold(o *objtree.Object, instCtx InstanceContext, jit JIT) (*objtree.Object, bool)

	// MustFold folds o, returning ok=false for the caller to turn
	// into a static-evaluation diagnostic. Unlike TryFold it is used
	// where a non-static range or condition is an error in the input,
	// so the failure is a continuable diagnostic rather than a
	// diag.Fatal trace.
	MustFold(o *objtree.Object, instCtx InstanceContext, jit JIT) (*objtree.Object, bool)

	// EvalCase resolves a case-generate's chosen alternative, given
	// the folded selector value and a list of candidate literal
	// values aligned with alternatives. It returns the index of the
	// matching alternative, or -1 when no alternative applies and the
	// case-generate emits nothing.
	EvalCase(selector *objtree.Object, alternatives [][]*objtree.Object, instCtx InstanceContext, jit JIT) int
}

// ScalarFolder is a concrete Folder for integer/physical/real scalar
// expressions: literals, generic references, +/-/*  between folded
// operands, and T'LOW/T'HIGH attribute references against a Type's
// static range. It is built on go/constant, the package the Go
// compiler itself uses to fold typed and untyped scalar constants.
type ScalarFolder struct{}

// NewScalarFolder creates a ScalarFolder.
func NewScalarFolder() *ScalarFolder { return &ScalarFolder{} }

func (f *ScalarFolder) TryFold(o *objtree.Object, instCtx InstanceContext, jit JIT) (*objtree.Object, bool) {
	v, ok := f.foldConst(o, instCtx)
	if !ok {
		return nil, false
	}
	return valueToLiteral(o, v), true
}

func (f *ScalarFolder) MustFold(o *objtree.Object, instCtx InstanceContext, jit JIT) (*objtree.Object, bool) {
	return f.TryFold(o, instCtx, jit)
}

func (f *ScalarFolder) EvalCase(selector *objtree.Object, alternatives [][]*objtree.Object, instCtx InstanceContext, jit JIT) int {
	sel, ok := f.foldConst(selector, instCtx)
	if !ok {
		return -1
	}
	for i, alt := range alternatives {
		for _, choice := range alt {
			cv, ok := f.foldConst(choice, instCtx)
			if ok && constant.Compare(sel, token.EQL, cv) {
				return i
			}
		}
	}
	return -1
}

// foldConst recursively reduces o to a go/constant.Value, or reports
// ok=false if o is not statically foldable.
func (f *ScalarFolder) foldConst(o *objtree.Object, instCtx InstanceContext) (constant.Value, bool) {
	if o == nil {
		return nil, false
	}
	switch o.Kind {
	case objtree.KindLiteral:
		return literalToConst(o), true

	case objtree.KindRef:
		if actual, ok := instCtx[o.Ref]; ok {
			return f.foldConst(actual, instCtx)
		}
		if o.Ref != nil && o.Ref.Value != nil {
			return f.foldConst(o.Ref.Value, instCtx)
		}
		return nil, false

	case objtree.KindAttrRef:
		return f.foldAttr(o)

	case objtree.KindFCall:
		return f.foldCall(o, instCtx)

	default:
		return nil, false
	}
}

func (f *ScalarFolder) foldAttr(o *objtree.Object) (constant.Value, bool) {
	if o.Type == nil || !o.Type.HasRange {
		return nil, false
	}
	switch o.Ident.String() {
	case "LOW":
		return constant.MakeInt64(o.Type.Low), true
	case "HIGH":
		return constant.MakeInt64(o.Type.High), true
	default:
		return nil, false
	}
}

func (f *ScalarFolder) foldCall(o *objtree.Object, instCtx InstanceContext) (constant.Value, bool) {
	if len(o.Children) != 2 {
		return nil, false
	}
	lhs, ok := f.foldConst(o.Children[0], instCtx)
	if !ok {
		return nil, false
	}
	rhs, ok := f.foldConst(o.Children[1], instCtx)
	if !ok {
		return nil, false
	}
	var op token.Token
	switch o.Ident.String() {
	case "+":
		op = token.ADD
	case "-":
		op = token.SUB
	case "*":
		op = token.MUL
	case "/":
		op = token.QUO
	default:
		return nil, false
	}
	return constant.BinaryOp(lhs, op, rhs), true
}

func literalToConst(o *objtree.Object) constant.Value {
	switch o.SubKind {
	case objtree.LitReal:
		return constant.MakeFloat64(o.RealVal)
	default:
		return constant.MakeInt64(o.IntVal)
	}
}

func valueToLiteral(like *objtree.Object, v constant.Value) *objtree.Object {
	out := &objtree.Object{
		Kind: objtree.KindLiteral,
		Pos:  like.Pos,
		Type: like.Type,
	}
	switch v.Kind() {
	case constant.Float:
		f, _ := constant.Float64Val(v)
		out.SubKind = objtree.LitReal
		out.RealVal = f
	default:
		i, _ := constant.Int64Val(v)
		out.SubKind = objtree.LitInt
		out.IntVal = i
	}
	return out
}

// FoldRange evaluates a for-generate's discrete range, folding
// T'LOW/T'HIGH attribute refs or concrete bounds, to integer values.
// ok is false for a non-static range, which callers report as a
// continuable diagnostic.
func FoldRange(folder Folder, low, high *objtree.Object, instCtx InstanceContext, jit JIT) (lo, hi int64, ok bool) {
	loLit, ok1 := folder.TryFold(low, instCtx, jit)
	hiLit, ok2 := folder.TryFold(high, instCtx, jit)
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	return loLit.IntVal, hiLit.IntVal, true
}
