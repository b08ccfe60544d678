package diag

import (
	"fmt"
	"strings"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// WithInstanceHint pushes the "while elaborating instance" hint: the
// instance's dotted label, then, when genmaps is non-empty, one more
// line listing every generic actual comma-separated, pretty-printed
// (literals verbatim; refs by name; aggregates expanded to "(...)";
// open actuals as "open"; unknown kinds rendered as "...").
// Returns a function that pops it; callers defer the return value so
// the hint is removed on every exit path.
func WithInstanceHint(s *Sink, label string, genmaps []objtree.Param) func() {
	s.PushHint(fmt.Sprintf("while elaborating instance %s", label))
	if summary := summarizeGenerics(genmaps); summary != "" {
		s.PushHint(summary)
		return func() {
			s.PopHint()
			s.PopHint()
		}
	}
	return func() { s.PopHint() }
}

func summarizeGenerics(genmaps []objtree.Param) string {
	if len(genmaps) == 0 {
		return ""
	}
	parts := make([]string, 0, len(genmaps))
	for _, p := range genmaps {
		parts = append(parts, prettyPrint(p.Value))
	}
	return strings.Join(parts, ", ")
}

// prettyPrint renders a generic actual the way elab_hint_fn does:
// literals verbatim, refs by name, aggregates as "(...)", anything
// else as "...".
func prettyPrint(o *objtree.Object) string {
	if o == nil {
		return "..."
	}
	switch o.Kind {
	case objtree.KindLiteral:
		if !o.Ident.IsNil() {
			return o.Ident.String()
		}
		if o.SubKind == objtree.LitReal {
			return fmt.Sprint(o.RealVal)
		}
		return fmt.Sprint(o.IntVal)
	case objtree.KindRef:
		if !o.Ident.IsNil() {
			return o.Ident.String()
		}
		if o.Ref != nil && !o.Ref.Ident.IsNil() {
			return o.Ref.Ident.String()
		}
		return "..."
	case objtree.KindAggregate:
		return "(...)"
	case objtree.KindOpen:
		return "open"
	default:
		return "..."
	}
}
