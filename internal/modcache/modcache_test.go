package modcache

import (
	"testing"

	"github.com/robert-at-pretension-io/vhdl-elab/internal/ident"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/lower"
	"github.com/robert-at-pretension-io/vhdl-elab/internal/objtree"
)

func TestGetIsIdempotent(t *testing.T) {
	c := New()
	registry := lower.NewRegistry()
	vlog := lower.NewBasic()
	mod := &objtree.VNode{Kind: objtree.VKindModule, Ident: ident.New("m")}

	calls := 0
	translate := func(m *objtree.VNode) *objtree.Object {
		calls++
		return &objtree.Object{Kind: objtree.KindBlock, Ident: m.Ident, Pos: m.Pos}
	}

	e1, err := c.Get(vlog, registry, mod, translate)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	e2, err := c.Get(vlog, registry, mod, translate)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if e1 != e2 {
		t.Fatalf("expected the same cached entry on repeated Get")
	}
	if calls != 1 {
		t.Fatalf("expected translate to run once, ran %d times", calls)
	}
}

func TestFreeClearsEntries(t *testing.T) {
	c := New()
	registry := lower.NewRegistry()
	vlog := lower.NewBasic()
	mod := &objtree.VNode{Kind: objtree.VKindModule, Ident: ident.New("m")}
	translate := func(m *objtree.VNode) *objtree.Object {
		return &objtree.Object{Kind: objtree.KindBlock, Ident: m.Ident}
	}

	e1, _ := c.Get(vlog, registry, mod, translate)
	c.Free()
	e2, _ := c.Get(vlog, registry, mod, translate)
	if e1 == e2 {
		t.Fatalf("expected a fresh entry after Free")
	}
}
