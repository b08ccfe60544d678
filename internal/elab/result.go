package elab

import (
	"sort"
	"strconv"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/diag"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// ElabResult is the relational export of one elaboration run: flat
// row tables built from the elaborated tree and the diagnostics sink.
type ElabResult struct {
	Instances   []InstanceRow   `json:"instances"`
	Generics    []GenericRow    `json:"generics"`
	Diagnostics []DiagnosticRow `json:"diagnostics"`
}

// InstanceRow is one elaborated block: its hierarchical path, dotted
// name, and the entity/architecture (or Verilog module) it resolved
// to.
type InstanceRow struct {
	InstName string `json:"inst_name"`
	Dotted   string `json:"dotted"`
	Unit     string `json:"unit"`
}

// GenericRow is one resolved generic value on an elaborated block.
type GenericRow struct {
	Dotted string `json:"dotted"`
	Pos    int    `json:"pos"`
	Value  string `json:"value"`
}

// DiagnosticRow mirrors diag.Diagnostic's shape for JSON export.
type DiagnosticRow struct {
	Severity string `json:"severity"`
	Location string `json:"location"`
	Message  string `json:"message"`
}

// BuildResult flattens root (the tree Elaborate returned) and sink's
// recorded diagnostics into an ElabResult. root may be nil (a failed
// run still reports its diagnostics).
func BuildResult(root *objtree.Object, sink *diag.Sink) *ElabResult {
	res := &ElabResult{}
	collectInstances(root, res)
	for _, d := range sink.All() {
		res.Diagnostics = append(res.Diagnostics, DiagnosticRow{
			Severity: d.Severity.String(),
			Location: d.Location,
			Message:  d.Message,
		})
	}
	sort.SliceStable(res.Instances, func(i, j int) bool { return res.Instances[i].Dotted < res.Instances[j].Dotted })
	return res
}

// collectInstances walks o's Stmts looking for nested Block objects;
// every child block this package builds, whatever produced it
// (architecture, component, generate iteration, Verilog instance),
// carries its own InstName/Dotted stamped at creation.
func collectInstances(o *objtree.Object, res *ElabResult) {
	if o == nil {
		return
	}
	for _, stmt := range o.Stmts {
		if stmt.Kind != objtree.KindBlock {
			continue
		}
		row := InstanceRow{InstName: stmt.InstName, Dotted: stmt.Dotted, Unit: stmt.Ident.String()}
		res.Instances = append(res.Instances, row)
		for _, g := range stmt.GenMaps {
			res.Generics = append(res.Generics, GenericRow{Dotted: row.Dotted, Pos: g.Pos, Value: literalText(g.Value)})
		}
		collectInstances(stmt, res)
	}
}

func literalText(v *objtree.Object) string {
	if v == nil {
		return ""
	}
	switch v.SubKind {
	case objtree.LitReal:
		return strconv.FormatFloat(v.RealVal, 'g', -1, 64)
	default:
		return strconv.FormatInt(v.IntVal, 10)
	}
}
