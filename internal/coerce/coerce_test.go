package coerce

import (
	"testing"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

// TestLookupMixedInputCoercion: a
// component port "clk : std_logic" bound to a Verilog input port
// "clk : logic" must resolve a VHDL->Verilog coercion whose result
// type is LOGIC.
func TestLookupMixedInputCoercion(t *testing.T) {
	tab, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	stdLogic := objtree.Intern("STD_LOGIC", false, false)
	logic := objtree.Intern("LOGIC", true, false)

	m, ok := tab.LookupMixed(stdLogic, logic, DirInput)
	if !ok {
		t.Fatalf("expected STD_LOGIC->LOGIC input coercion to resolve")
	}
	if !m.Result.Equal(logic) {
		t.Fatalf("expected result type LOGIC, got %s", m.Result)
	}
}

func TestLookupMixedOutputCoercion(t *testing.T) {
	tab, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logic := objtree.Intern("LOGIC", true, false)
	stdUlogic := objtree.Intern("STD_ULOGIC", false, false)

	m, ok := tab.LookupMixed(logic, stdUlogic, DirOutput)
	if !ok {
		t.Fatalf("expected LOGIC->STD_ULOGIC output coercion to resolve")
	}
	if !m.Result.Equal(stdUlogic) {
		t.Fatalf("expected result type STD_ULOGIC, got %s", m.Result)
	}
}

func TestLookupMixedUnmatchedPair(t *testing.T) {
	tab, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	bitType := objtree.Intern("BIT", false, false)
	logic := objtree.Intern("LOGIC", true, false)

	if _, ok := tab.LookupMixed(bitType, logic, DirInput); ok {
		t.Fatalf("expected no coercion for BIT->LOGIC")
	}
}

func TestLookupVerilogArrayCoercion(t *testing.T) {
	tab, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	netArray := objtree.Intern("NET_ARRAY", true, true)
	logicArray := objtree.Intern("LOGIC_ARRAY", true, true)

	m, ok := tab.LookupVerilog(netArray, logicArray)
	if !ok {
		t.Fatalf("expected NET_ARRAY->LOGIC_ARRAY coercion to resolve")
	}
	if m.Func != "net_array_to_logic_array" {
		t.Fatalf("unexpected func name %q", m.Func)
	}
}
