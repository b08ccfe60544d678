// Package coerce implements the coercion tables: the static
// VHDL<->Verilog and Verilog<->Verilog type-conversion lookups
// consumed by the mixed-language and Verilog-into-Verilog binding
// builders in internal/bind. The tables are compiled once into a
// Rego policy and evaluated per lookup via a prepared query.
package coerce

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/open-policy-agent/opa/rego"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

//go:embed coerce.rego
var policySrc string

// Direction distinguishes the two VHDL<->Verilog coercion
// directions of a mixed binding.
type Direction string

const (
	DirInput  Direction = "input"  // component (VHDL) value -> Verilog input port
	DirOutput Direction = "output" // Verilog output port value -> component (VHDL) value
)

// Table evaluates both coercion tables against the embedded policy.
type Table struct {
	mixed   rego.PreparedEvalQuery
	verilog rego.PreparedEvalQuery
}

// New compiles the embedded coercion policy once.
func New() (*Table, error) {
	ctx := context.Background()

	mixed, err := rego.New(
		rego.Module("coerce.rego", policySrc),
		rego.Query("data.elab.coerce.mixed_match"),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("preparing mixed coercion query: %w", err)
	}

	verilog, err := rego.New(
		rego.Module("coerce.rego", policySrc),
		rego.Query("data.elab.coerce.verilog_match"),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("preparing verilog coercion query: %w", err)
	}

	return &Table{mixed: mixed, verilog: verilog}, nil
}

// Match is a resolved coercion: the conversion function's symbolic
// name and its canonical result type, which becomes the type of the
// ConvFunc node wrapping the converted value.
type Match struct {
	Func   string
	Result *objtree.Type
}

// LookupMixed resolves a VHDL<->Verilog coercion keyed on (from, to,
// direction). ok is false for an unmatched pair, which callers turn
// into a binding error.
func (t *Table) LookupMixed(from, to *objtree.Type, dir Direction) (Match, bool) {
	return t.eval(t.mixed, from, to, string(dir))
}

// LookupVerilog resolves a Verilog<->Verilog coercion keyed on (from,
// to), direction-agnostic.
func (t *Table) LookupVerilog(from, to *objtree.Type) (Match, bool) {
	return t.eval(t.verilog, from, to, "")
}

func (t *Table) eval(q rego.PreparedEvalQuery, from, to *objtree.Type, direction string) (Match, bool) {
	if from == nil || to == nil {
		return Match{}, false
	}
	input := map[string]interface{}{
		"from": from.Name,
		"to":   to.Name,
	}
	if direction != "" {
		input["direction"] = direction
	}

	rs, err := q.Eval(context.Background(), rego.EvalInput(input))
	if err != nil || len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return Match{}, false
	}
	entry, ok := rs[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return Match{}, false
	}
	funcName, _ := entry["func"].(string)
	resultName, _ := entry["result"].(string)
	if funcName == "" || resultName == "" {
		return Match{}, false
	}
	return Match{Func: funcName, Result: objtree.Intern(resultName, to.Verilog, to.Array)}, true
}
