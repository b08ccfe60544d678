package bind

import (
	"testing"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/coerce"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/diag"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/ident"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/library"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

func port(name string, dir objtree.Direction, typ *objtree.Type) *objtree.Object {
	return &objtree.Object{Kind: objtree.KindPortDecl, Ident: ident.New(name), Direction: dir, Type: typ}
}

// TestDefaultVHDLPortCountMismatch:
// component c(a,b) bound against entity e(a,b,extra) where extra has
// no default fails naming extra, e, and c.
func TestDefaultVHDLPortCountMismatch(t *testing.T) {
	bitT := objtree.Intern("BIT", false, false)

	entity := &objtree.Object{
		Kind:  objtree.KindEntity,
		Ident: ident.New("e"),
		Ports: []*objtree.Object{
			port("a", objtree.DirIn, bitT),
			port("b", objtree.DirIn, bitT),
			port("extra", objtree.DirIn, bitT),
		},
	}
	component := &objtree.Object{
		Kind:  objtree.KindComponent,
		Ident: ident.New("c"),
		Ports: []*objtree.Object{
			port("a", objtree.DirIn, bitT),
			port("b", objtree.DirIn, bitT),
		},
	}

	lib := library.NewInMemory()
	lib.Add(library.Unit{Name: "work.c", Object: entity})

	sink := diag.NewSink()
	_, ok := DefaultVHDL(sink, lib, "work", component)
	if ok {
		t.Fatalf("expected default binding to fail on missing required port")
	}
	found := false
	for _, d := range sink.All() {
		if d.Severity == diag.SeverityError {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an error diagnostic")
	}
}

func TestDefaultVHDLMatchesByCaseInsensitiveIdent(t *testing.T) {
	bitT := objtree.Intern("BIT", false, false)
	entity := &objtree.Object{
		Kind:  objtree.KindEntity,
		Ident: ident.New("e"),
		Ports: []*objtree.Object{port("CLK", objtree.DirIn, bitT)},
	}
	component := &objtree.Object{
		Kind:  objtree.KindComponent,
		Ident: ident.New("c"),
		Ports: []*objtree.Object{port("clk", objtree.DirIn, bitT)},
	}

	lib := library.NewInMemory()
	lib.Add(library.Unit{Name: "work.c", Object: entity})

	sink := diag.NewSink()
	res, ok := DefaultVHDL(sink, lib, "work", component)
	if !ok || sink.HasErrors() {
		t.Fatalf("expected success, got errors: %v", sink.All())
	}
	if len(res.Binding.Params) != 1 {
		t.Fatalf("expected one bound port, got %d", len(res.Binding.Params))
	}
}

// TestMixedComponentToModuleInputCoercion reproduces the scenario
// 4: component port clk:std_logic bound to Verilog input port
// clk:logic succeeds with a ConvFunc wrapping the component port ref.
func TestMixedComponentToModuleInputCoercion(t *testing.T) {
	stdLogic := objtree.Intern("STD_LOGIC", false, false)
	logic := objtree.Intern("LOGIC", true, false)

	component := &objtree.Object{
		Kind:  objtree.KindComponent,
		Ident: ident.New("c"),
		Ports: []*objtree.Object{port("clk", objtree.DirIn, stdLogic)},
	}
	module := &objtree.VNode{
		Kind:  objtree.VKindModule,
		Ident: ident.New("m"),
		Ports: []*objtree.VNode{
			{Kind: objtree.VKindPortDecl, Ident2: ident.New("clk"), Direction: objtree.DirIn, Type: logic},
		},
	}

	ct, err := coerce.New()
	if err != nil {
		t.Fatalf("coerce.New: %v", err)
	}
	sink := diag.NewSink()
	b, ok := MixedComponentToModule(sink, ct, component, module)
	if !ok || sink.HasErrors() {
		t.Fatalf("expected success, got errors: %v", sink.All())
	}
	if len(b.Params) != 1 || b.Params[0].Value.Kind != objtree.KindConvFunc {
		t.Fatalf("expected a single ConvFunc param, got %+v", b.Params)
	}
	if !b.Params[0].Value.Type.Equal(logic) {
		t.Fatalf("expected conv result type LOGIC, got %s", b.Params[0].Value.Type)
	}
}
