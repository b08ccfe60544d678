package diag

import (
	"strings"
	"testing"
)

func newGuard(t *testing.T) *SchemaGuard {
	t.Helper()
	g, err := NewSchemaGuard()
	if err != nil {
		t.Fatalf("NewSchemaGuard: %v", err)
	}
	return g
}

func TestSchemaGuardAcceptsWellFormedBinding(t *testing.T) {
	g := newGuard(t)
	b := map[string]interface{}{
		"ident": "u1",
		"class": "entity",
		"genmaps": []interface{}{
			map[string]interface{}{"kind": "pos", "pos": 0},
		},
		"params": []interface{}{
			map[string]interface{}{"kind": "named", "name": "clk"},
		},
	}
	if err := g.ValidateBinding(b); err != nil {
		t.Errorf("well-formed binding rejected: %v", err)
	}
}

func TestSchemaGuardRejectsBadGenMapKind(t *testing.T) {
	g := newGuard(t)
	b := map[string]interface{}{
		"ident": "u1",
		"class": "entity",
		"genmaps": []interface{}{
			map[string]interface{}{"kind": "positional", "pos": 0},
		},
		"params": []interface{}{},
	}
	if err := g.ValidateBinding(b); err == nil {
		t.Errorf("expected genmap kind %q to fail validation", "positional")
	}
}

func TestSchemaGuardAcceptsArtifactWithTopBlock(t *testing.T) {
	g := newGuard(t)
	a := map[string]interface{}{
		"name": "counter.elab",
		"top":  map[string]interface{}{"kind": "block", "name": "rtl"},
	}
	if err := g.ValidateArtifact(a); err != nil {
		t.Errorf("well-formed artifact rejected: %v", err)
	}
}

func TestSchemaGuardRejectsArtifactWithoutTopBlock(t *testing.T) {
	g := newGuard(t)
	if err := g.ValidateArtifact(map[string]interface{}{"name": "counter.elab"}); err == nil {
		t.Errorf("expected artifact with no top block to fail validation")
	}
}

func TestSchemaGuardRejectsArtifactNameWithoutSuffix(t *testing.T) {
	g := newGuard(t)
	a := map[string]interface{}{
		"name": "counter",
		"top":  map[string]interface{}{"kind": "block", "name": "rtl"},
	}
	err := g.ValidateArtifact(a)
	if err == nil {
		t.Fatalf("expected artifact name without .elab suffix to fail validation")
	}
	if !strings.Contains(err.Error(), "schema validation failed") {
		t.Errorf("unexpected error: %v", err)
	}
}
