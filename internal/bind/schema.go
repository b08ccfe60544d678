package bind

import (
	"strings"
	"sync"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/diag"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

var (
	guardOnce sync.Once
	guard     *diag.SchemaGuard
)

// checkShape validates b's JSON-serialisable projection against the
// embedded binding schema before the recursor consumes it. A failure
// here is a core invariant violation, never user input: every
// constructor is supposed to emit a well-formed genmap/param list.
func checkShape(b *Binding) {
	guardOnce.Do(func() {
		g, err := diag.NewSchemaGuard()
		if err != nil {
			diag.Fatalf("<binding-schema>", "%v", err)
		}
		guard = g
	})
	if err := guard.ValidateBinding(shapeOf(b)); err != nil {
		diag.Fatalf(b.Loc.String(), "unreachable: binding %s has invalid shape: %v", b.Ident, err)
	}
}

func shapeOf(b *Binding) map[string]interface{} {
	return map[string]interface{}{
		"ident":   strings.ToLower(b.Ident.String()),
		"class":   b.Class.String(),
		"genmaps": paramShapes(b.GenMaps),
		"params":  paramShapes(b.Params),
	}
}

func paramShapes(params []objtree.Param) []interface{} {
	out := make([]interface{}, 0, len(params))
	for _, p := range params {
		if p.Kind == objtree.ParamNamed {
			out = append(out, map[string]interface{}{"kind": "named", "name": strings.ToLower(p.Name.String())})
			continue
		}
		out = append(out, map[string]interface{}{"kind": "pos", "pos": p.Pos})
	}
	return out
}
